package host

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/sqlite-bind/engine"
	"github.com/viant/sqlite-bind/value"
)

// ErrUnknownHandle is returned for handles the host never issued or has
// already released.
var ErrUnknownHandle = errors.New("host: unknown handle")

// Host maps handles to open connections and prepared statements.
//
// Closing a connection or finalizing a statement keeps its handle, so later
// calls fail with engine.ErrClosed or engine.ErrFinalized the way they would
// on the script object. Release forgets a handle for good; releasing a
// connection also forgets the handles of its statements.
type Host struct {
	mu     sync.Mutex
	conns  map[string]*engine.Conn
	stmts  map[string]*engine.Stmt
	owner  map[string]string // statement handle -> connection handle
	opts   []engine.Option
	newID  func() string
	logger *slog.Logger
}

// New creates an empty Host.
func New(opts ...Option) *Host {
	o := newOptions(opts)
	openOpts := append([]engine.Option{engine.WithLogger(o.logger)}, o.openOpts...)
	return &Host{
		conns:  make(map[string]*engine.Conn),
		stmts:  make(map[string]*engine.Stmt),
		owner:  make(map[string]string),
		opts:   openOpts,
		newID:  o.newID,
		logger: o.logger,
	}
}

func (h *Host) conn(db string) (*engine.Conn, error) {
	h.mu.Lock()
	c, ok := h.conns[db]
	h.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: connection %q", ErrUnknownHandle, db)
	}
	return c, nil
}

func (h *Host) stmt(st string) (*engine.Stmt, error) {
	h.mu.Lock()
	s, ok := h.stmts[st]
	h.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: statement %q", ErrUnknownHandle, st)
	}
	return s, nil
}

// engineFailure reports whether err is a status the engine reported, as
// opposed to misuse of a handle.
func engineFailure(err error) bool {
	var e *engine.Error
	return errors.As(err, &e)
}

// Open opens name and returns its connection handle.
func (h *Host) Open(name string) (string, error) {
	c, err := engine.Open(name, h.opts...)
	if err != nil {
		return "", err
	}
	id := h.newID()
	h.mu.Lock()
	h.conns[id] = c
	h.mu.Unlock()
	return id, nil
}

// Exec runs sql and reports whether every statement in it succeeded. The
// reason for a false result is available from ErrorMessage.
func (h *Host) Exec(db, sql string) (bool, error) {
	c, err := h.conn(db)
	if err != nil {
		return false, err
	}
	if err := c.Exec(sql); err != nil {
		if engineFailure(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Prepare compiles the first statement in sql and returns its handle. The
// handle is empty both when sql holds no statement and when it fails to
// compile; ErrorMessage tells the two apart.
func (h *Host) Prepare(db, sql string) (string, error) {
	c, err := h.conn(db)
	if err != nil {
		return "", err
	}
	s, err := c.Prepare(sql)
	switch {
	case errors.Is(err, engine.ErrEmptyStatement):
		return "", nil
	case engineFailure(err):
		h.logger.Debug("host prepare failed", "db", db, "error", err)
		return "", nil
	case err != nil:
		return "", err
	}
	id := h.newID()
	h.mu.Lock()
	h.stmts[id] = s
	h.owner[id] = db
	h.mu.Unlock()
	return id, nil
}

// LastInsertRowID returns the rowid of the connection's most recent insert.
func (h *Host) LastInsertRowID(db string) (int64, error) {
	c, err := h.conn(db)
	if err != nil {
		return 0, err
	}
	return c.LastInsertRowID()
}

// ErrorMessage returns the engine message for the connection's last failure.
func (h *Host) ErrorMessage(db string) (string, error) {
	c, err := h.conn(db)
	if err != nil {
		return "", err
	}
	return c.ErrorMessage()
}

// Close closes the connection, finalizing its statements. Closing a closed
// connection is a no-op.
func (h *Host) Close(db string) error {
	c, err := h.conn(db)
	if err != nil {
		return err
	}
	return c.Close()
}

// Bind sets a parameter and returns the native status, 0 on success.
func (h *Host) Bind(st string, index int, v value.Value) (int, error) {
	s, err := h.stmt(st)
	if err != nil {
		return 0, err
	}
	err = s.Bind(index, v)
	if err != nil && !engineFailure(err) {
		return int(engine.ErrCode(err)), err
	}
	return int(engine.ErrCode(err)), nil
}

// Step advances the statement and returns "row", "done" or "busy". Any other
// engine status yields "", with the reason in ErrorMessage.
func (h *Host) Step(st string) (string, error) {
	s, err := h.stmt(st)
	if err != nil {
		return "", err
	}
	res, err := s.Step()
	if err != nil {
		if engineFailure(err) {
			h.logger.Debug("host step failed", "stmt", st, "error", err)
			return "", nil
		}
		return "", err
	}
	return res.String(), nil
}

// ColumnValue reads column index of the current row.
func (h *Host) ColumnValue(st string, index int) (value.Value, error) {
	s, err := h.stmt(st)
	if err != nil {
		return value.Null(), err
	}
	return s.ColumnValue(index)
}

// ColumnText reads column index of the current row as text.
func (h *Host) ColumnText(st string, index int) (string, error) {
	s, err := h.stmt(st)
	if err != nil {
		return "", err
	}
	return s.ColumnText(index)
}

// ColumnName returns the name of result column index.
func (h *Host) ColumnName(st string, index int) (string, error) {
	s, err := h.stmt(st)
	if err != nil {
		return "", err
	}
	return s.ColumnName(index)
}

// ColumnCount returns the number of result columns.
func (h *Host) ColumnCount(st string) (int, error) {
	s, err := h.stmt(st)
	if err != nil {
		return 0, err
	}
	return s.ColumnCount()
}

// BindParameterCount returns the largest parameter index.
func (h *Host) BindParameterCount(st string) (int, error) {
	s, err := h.stmt(st)
	if err != nil {
		return 0, err
	}
	return s.BindParameterCount()
}

// BindParameterName returns the name of parameter index, "" when nameless.
func (h *Host) BindParameterName(st string, index int) (string, error) {
	s, err := h.stmt(st)
	if err != nil {
		return "", err
	}
	return s.BindParameterName(index)
}

// BindParameterIndex returns the index of the named parameter, 0 if absent.
func (h *Host) BindParameterIndex(st, name string) (int, error) {
	s, err := h.stmt(st)
	if err != nil {
		return 0, err
	}
	return s.BindParameterIndex(name)
}

// Reset rewinds the statement, keeping its bindings.
func (h *Host) Reset(st string) (bool, error) {
	s, err := h.stmt(st)
	if err != nil {
		return false, err
	}
	return succeeded(s.Reset())
}

// ClearBindings sets every parameter of the statement to NULL.
func (h *Host) ClearBindings(st string) (bool, error) {
	s, err := h.stmt(st)
	if err != nil {
		return false, err
	}
	return succeeded(s.ClearBindings())
}

// Finalize releases the statement. Finalizing twice is a no-op.
func (h *Host) Finalize(st string) (bool, error) {
	s, err := h.stmt(st)
	if err != nil {
		return false, err
	}
	return succeeded(s.Finalize())
}

func succeeded(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case engineFailure(err):
		return false, nil
	}
	return false, err
}

// Release closes or finalizes the object behind handle and forgets the
// handle. It is what a runtime calls when the script object is collected;
// unknown handles are ignored.
func (h *Host) Release(handle string) error {
	h.mu.Lock()
	c, isConn := h.conns[handle]
	s, isStmt := h.stmts[handle]
	delete(h.conns, handle)
	delete(h.stmts, handle)
	delete(h.owner, handle)
	if isConn {
		for st, db := range h.owner {
			if db == handle {
				delete(h.stmts, st)
				delete(h.owner, st)
			}
		}
	}
	h.mu.Unlock()
	switch {
	case isConn:
		return c.Close()
	case isStmt:
		return s.Finalize()
	}
	return nil
}

// Shutdown closes every connection and forgets every handle.
func (h *Host) Shutdown() error {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[string]*engine.Conn)
	h.stmts = make(map[string]*engine.Stmt)
	h.owner = make(map[string]string)
	h.mu.Unlock()
	var errs []error
	for id, c := range conns {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", id, err))
		}
	}
	if len(conns) > 0 {
		h.logger.Debug("host shut down", "connections", len(conns))
	}
	return errors.Join(errs...)
}
