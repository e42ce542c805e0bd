package engine

import (
	"math"
	"strconv"

	"modernc.org/libc"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/viant/sqlite-bind/value"
)

// StepResult is the outcome of a successful Step.
type StepResult int

const (
	// Row means a result row is available to the column readers.
	Row StepResult = iota + 1
	// Done means execution finished; there are no more rows.
	Done
	// Busy means the engine could not take a lock. The statement is left
	// as it was and the caller decides whether and when to retry.
	Busy
)

func (r StepResult) String() string {
	switch r {
	case Row:
		return "row"
	case Done:
		return "done"
	case Busy:
		return "busy"
	}
	return ""
}

type stmtState uint8

const (
	stateReady stmtState = iota
	stateRow
	stateDone
)

// Stmt is a prepared statement produced by Conn.Prepare.
//
// A Stmt moves between Ready, HasRow and Done as it is stepped and reset.
// After Finalize every method but Finalize returns ErrFinalized.
type Stmt struct {
	conn  *Conn
	pstmt uintptr // *sqlite3.Xsqlite3_stmt, zero once finalized
	state stmtState
}

// lock acquires the connection mutex and reports ErrFinalized for a
// finalized statement, in which case the mutex is not held.
func (s *Stmt) lock() error {
	s.conn.mu.Lock()
	if s.pstmt == 0 {
		s.conn.mu.Unlock()
		return ErrFinalized
	}
	return nil
}

func (s *Stmt) unlock() { s.conn.mu.Unlock() }

func (s *Stmt) tls() *libc.TLS { return s.conn.tls }

func (s *Stmt) fail(op string, rc int32) error {
	return errorFor(s.conn.tls, s.conn.db, op, rc)
}

// Bind sets parameter index (1-based) to v. Text and blobs are copied by
// the engine before Bind returns.
//
// A native failure comes back as an *Error whose Code is the status the
// engine reported, e.g. ResultRange for a bad index; ErrCode recovers it.
func (s *Stmt) Bind(index int, v value.Value) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.unlock()
	return s.bindLocked(index, v)
}

func (s *Stmt) bindLocked(index int, v value.Value) error {
	if index < 0 || index > math.MaxInt32 {
		return &Error{Op: "bind", Code: ResultRange, Msg: "parameter index " + strconv.Itoa(index) + " out of range"}
	}
	tls, i := s.tls(), int32(index)
	var rc int32
	switch v.Kind() {
	case value.KindNull:
		rc = sqlite3.Xsqlite3_bind_null(tls, s.pstmt, i)
	case value.KindBool, value.KindInt32:
		rc = sqlite3.Xsqlite3_bind_int(tls, s.pstmt, i, int32(v.Int64()))
	case value.KindInt64:
		rc = sqlite3.Xsqlite3_bind_int64(tls, s.pstmt, i, v.Int64())
	case value.KindFloat:
		rc = sqlite3.Xsqlite3_bind_double(tls, s.pstmt, i, v.Float64())
	case value.KindText:
		text := v.Text()
		if len(text) > math.MaxInt32 {
			return &Error{Op: "bind", Code: ResultTooBig, Msg: "text too big"}
		}
		p, err := cbytes(tls, []byte(text))
		if err != nil {
			return err
		}
		rc = sqlite3.Xsqlite3_bind_text(tls, s.pstmt, i, p, int32(len(text)), transient)
		free(tls, p)
	case value.KindBlob:
		blob := v.Bytes()
		if len(blob) > math.MaxInt32 {
			return &Error{Op: "bind", Code: ResultTooBig, Msg: "blob too big"}
		}
		p, err := cbytes(tls, blob)
		if err != nil {
			return err
		}
		rc = sqlite3.Xsqlite3_bind_blob(tls, s.pstmt, i, p, int32(len(blob)), transient)
		free(tls, p)
	default:
		return &Error{Op: "bind", Code: ResultMismatch, Msg: "unsupported value kind " + v.Kind().String()}
	}
	if rc != sqlite3.SQLITE_OK {
		return s.fail("bind", rc)
	}
	return nil
}

// BindNamed binds v to the parameter called name, prefix included
// (":id", "@id", "$id" or "?1"). An unknown name is reported as ResultRange.
func (s *Stmt) BindNamed(name string, v value.Value) error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.unlock()
	index, err := s.parameterIndexLocked(name)
	if err != nil {
		return err
	}
	if index == 0 {
		return &Error{Op: "bind", Code: ResultRange, Msg: "no parameter named " + name}
	}
	return s.bindLocked(index, v)
}

// Step advances the statement by one row.
//
// Busy is a normal outcome, not an error. Any status other than row, done
// or busy is returned as an *Error and should be treated as fatal for the
// current execution; Reset before reusing the statement.
func (s *Stmt) Step() (StepResult, error) {
	if err := s.lock(); err != nil {
		return 0, err
	}
	defer s.unlock()
	switch rc := sqlite3.Xsqlite3_step(s.tls(), s.pstmt); rc {
	case sqlite3.SQLITE_ROW:
		s.state = stateRow
		return Row, nil
	case sqlite3.SQLITE_DONE:
		s.state = stateDone
		return Done, nil
	case sqlite3.SQLITE_BUSY:
		s.state = stateReady
		return Busy, nil
	default:
		s.state = stateDone
		return 0, s.fail("step", rc)
	}
}

// ColumnCount returns the number of columns in the result set; zero for
// statements that return no data.
func (s *Stmt) ColumnCount() (int, error) {
	if err := s.lock(); err != nil {
		return 0, err
	}
	defer s.unlock()
	return int(sqlite3.Xsqlite3_column_count(s.tls(), s.pstmt)), nil
}

// ColumnName returns the name of result column index (0-based).
func (s *Stmt) ColumnName(index int) (string, error) {
	if err := s.lock(); err != nil {
		return "", err
	}
	defer s.unlock()
	if err := s.checkColumn(index); err != nil {
		return "", err
	}
	return libc.GoString(sqlite3.Xsqlite3_column_name(s.tls(), s.pstmt, int32(index))), nil
}

func (s *Stmt) checkColumn(index int) error {
	if index < 0 || index >= int(sqlite3.Xsqlite3_column_count(s.tls(), s.pstmt)) {
		return ErrColumnRange
	}
	return nil
}

func (s *Stmt) checkRow(index int) error {
	if s.state != stateRow {
		return ErrNoRow
	}
	return s.checkColumn(index)
}

// ColumnType returns the storage class of column index in the current row:
// KindNull, KindInt64, KindFloat, KindText or KindBlob.
func (s *Stmt) ColumnType(index int) (value.Kind, error) {
	if err := s.lock(); err != nil {
		return value.KindNull, err
	}
	defer s.unlock()
	if err := s.checkRow(index); err != nil {
		return value.KindNull, err
	}
	return s.columnKind(index), nil
}

func (s *Stmt) columnKind(index int) value.Kind {
	switch sqlite3.Xsqlite3_column_type(s.tls(), s.pstmt, int32(index)) {
	case sqlite3.SQLITE_INTEGER:
		return value.KindInt64
	case sqlite3.SQLITE_FLOAT:
		return value.KindFloat
	case sqlite3.SQLITE_BLOB:
		return value.KindBlob
	case sqlite3.SQLITE_NULL:
		return value.KindNull
	}
	return value.KindText
}

// ColumnValue reads column index of the current row. The variant follows
// the cell's dynamic storage class, not the declared column type. Text and
// blobs are copied out, so the result stays valid after the next Step.
//
// ErrNoRow is returned unless the last Step returned Row.
func (s *Stmt) ColumnValue(index int) (value.Value, error) {
	if err := s.lock(); err != nil {
		return value.Null(), err
	}
	defer s.unlock()
	if err := s.checkRow(index); err != nil {
		return value.Null(), err
	}
	tls, i := s.tls(), int32(index)
	switch s.columnKind(index) {
	case value.KindInt64:
		return value.Int64(sqlite3.Xsqlite3_column_int64(tls, s.pstmt, i)), nil
	case value.KindFloat:
		return value.Float(sqlite3.Xsqlite3_column_double(tls, s.pstmt, i)), nil
	case value.KindBlob:
		p := sqlite3.Xsqlite3_column_blob(tls, s.pstmt, i)
		n := int(sqlite3.Xsqlite3_column_bytes(tls, s.pstmt, i))
		return value.Blob(goBytes(p, n)), nil
	case value.KindNull:
		return value.Null(), nil
	}
	return value.Text(s.columnTextLocked(index)), nil
}

// ColumnText reads column index of the current row converted to text by the
// engine. NULL reads as "".
func (s *Stmt) ColumnText(index int) (string, error) {
	if err := s.lock(); err != nil {
		return "", err
	}
	defer s.unlock()
	if err := s.checkRow(index); err != nil {
		return "", err
	}
	return s.columnTextLocked(index), nil
}

func (s *Stmt) columnTextLocked(index int) string {
	tls, i := s.tls(), int32(index)
	p := sqlite3.Xsqlite3_column_text(tls, s.pstmt, i)
	n := int(sqlite3.Xsqlite3_column_bytes(tls, s.pstmt, i))
	return string(goBytes(p, n))
}

// BindParameterCount returns the largest parameter index in the statement.
func (s *Stmt) BindParameterCount() (int, error) {
	if err := s.lock(); err != nil {
		return 0, err
	}
	defer s.unlock()
	return int(sqlite3.Xsqlite3_bind_parameter_count(s.tls(), s.pstmt)), nil
}

// BindParameterName returns the name of parameter index (1-based) with its
// prefix, or "" for nameless "?" parameters and indexes out of range.
func (s *Stmt) BindParameterName(index int) (string, error) {
	if err := s.lock(); err != nil {
		return "", err
	}
	defer s.unlock()
	if index < 0 || index > math.MaxInt32 {
		return "", nil
	}
	return libc.GoString(sqlite3.Xsqlite3_bind_parameter_name(s.tls(), s.pstmt, int32(index))), nil
}

// BindParameterIndex returns the index of the parameter called name, or 0
// when no parameter has that name. 0 is never a valid index.
func (s *Stmt) BindParameterIndex(name string) (int, error) {
	if err := s.lock(); err != nil {
		return 0, err
	}
	defer s.unlock()
	return s.parameterIndexLocked(name)
}

func (s *Stmt) parameterIndexLocked(name string) (int, error) {
	zName, err := libc.CString(name)
	if err != nil {
		return 0, err
	}
	defer free(s.tls(), zName)
	return int(sqlite3.Xsqlite3_bind_parameter_index(s.tls(), s.pstmt, zName)), nil
}

// Reset rewinds the statement to Ready. Bound values are kept.
func (s *Stmt) Reset() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.unlock()
	s.state = stateReady
	if rc := sqlite3.Xsqlite3_reset(s.tls(), s.pstmt); rc != sqlite3.SQLITE_OK {
		return s.fail("reset", rc)
	}
	return nil
}

// ClearBindings sets every parameter back to NULL. The execution position
// is not changed.
func (s *Stmt) ClearBindings() error {
	if err := s.lock(); err != nil {
		return err
	}
	defer s.unlock()
	if rc := sqlite3.Xsqlite3_clear_bindings(s.tls(), s.pstmt); rc != sqlite3.SQLITE_OK {
		return s.fail("clear_bindings", rc)
	}
	return nil
}

// Finalize releases the statement. Finalizing a finalized statement is a
// no-op returning nil. Conn.Close finalizes every statement still open on the
// connection, so after Close this is that same no-op.
func (s *Stmt) Finalize() error {
	s.conn.mu.Lock()
	defer s.conn.mu.Unlock()
	if s.pstmt == 0 {
		return nil
	}
	return s.finalizeLocked()
}

// finalizeLocked finalizes and unregisters s; the connection mutex is held.
// sqlite3_finalize echoes the error of the last failed step, which says
// nothing about the release itself, so that code is not reported.
func (s *Stmt) finalizeLocked() error {
	pstmt := s.pstmt
	s.pstmt = 0
	s.state = stateDone
	delete(s.conn.stmts, s)
	if rc := sqlite3.Xsqlite3_finalize(s.conn.tls, pstmt); rc == sqlite3.SQLITE_MISUSE {
		return s.fail("finalize", rc)
	}
	return nil
}
