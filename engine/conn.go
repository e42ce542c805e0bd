package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"modernc.org/libc"
	sqlite3 "modernc.org/sqlite/lib"
)

// Conn is an open connection to a SQLite database.
//
// Every native call made through a Conn or one of its statements holds the
// connection mutex, so a Conn and its statements may be shared between
// goroutines but are only ever driven by one of them at a time.
type Conn struct {
	mu     sync.Mutex
	tls    *libc.TLS
	db     uintptr // *sqlite3.Xsqlite3, zero once closed
	name   string
	stmts  map[*Stmt]struct{}
	logger *slog.Logger
}

// Open opens or creates the database named by name. Pass ":memory:" for a
// private in-memory database; URI filenames are accepted with the default
// flags.
//
// On failure nothing is left allocated and the returned error is an *Error
// with Op "open" and the engine's status code.
func Open(name string, opts ...Option) (*Conn, error) {
	o := newOptions(opts)
	tls := libc.NewTLS()
	db, err := openV2(tls, name, o.vfs, int32(o.flags))
	if err != nil {
		tls.Close()
		o.logger.Debug("sqlite open failed", "name", name, "error", err)
		return nil, err
	}
	c := &Conn{
		tls:    tls,
		db:     db,
		name:   name,
		stmts:  make(map[*Stmt]struct{}),
		logger: o.logger,
	}
	if o.busyTimeout > 0 {
		if err := c.SetBusyTimeout(o.busyTimeout); err != nil {
			c.Close()
			return nil, err
		}
	}
	c.logger.Debug("sqlite opened", "name", name)
	return c, nil
}

// openV2 wraps sqlite3_open_v2. The engine may hand back a handle even when
// opening fails so that the message can be read; it is closed here.
func openV2(tls *libc.TLS, name, vfsName string, flags int32) (_ uintptr, err error) {
	var p, s, vfs uintptr
	defer func() {
		free(tls, p)
		free(tls, s)
		free(tls, vfs)
	}()
	if p, err = malloc(tls, ptrSize); err != nil {
		return 0, err
	}
	storePtr(p, 0)
	if s, err = libc.CString(name); err != nil {
		return 0, err
	}
	if vfsName != "" {
		if vfs, err = libc.CString(vfsName); err != nil {
			return 0, err
		}
	}
	rc := sqlite3.Xsqlite3_open_v2(tls, s, p, flags, vfs)
	db := loadPtr(p)
	if rc != sqlite3.SQLITE_OK {
		e := errorFor(tls, db, "open", rc)
		e.Msg = fmt.Sprintf("%q: %s", name, e.Msg)
		if db != 0 {
			sqlite3.Xsqlite3_close_v2(tls, db)
		}
		return 0, e
	}
	if db == 0 {
		return 0, &Error{Op: "open", Code: ResultNoMem, Msg: fmt.Sprintf("%q: cannot allocate connection", name)}
	}
	return db, nil
}

// Name returns the name the connection was opened with.
func (c *Conn) Name() string { return c.name }

// Exec runs every statement in sql, discarding any rows. It suits DDL and
// one-shot statements; use Prepare when parameters or rows are needed.
func (c *Conn) Exec(sql string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == 0 {
		return ErrClosed
	}
	zSQL, err := libc.CString(sql)
	if err != nil {
		return err
	}
	defer free(c.tls, zSQL)
	if rc := sqlite3.Xsqlite3_exec(c.tls, c.db, zSQL, 0, 0, 0); rc != sqlite3.SQLITE_OK {
		return errorFor(c.tls, c.db, "exec", rc)
	}
	return nil
}

// Prepare compiles the first statement in sql.
//
// ErrEmptyStatement is returned when sql contains nothing to execute;
// compilation failures are an *Error carrying the engine code.
func (c *Conn) Prepare(sql string) (*Stmt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == 0 {
		return nil, ErrClosed
	}
	pstmt, err := c.prepareV2(sql)
	if err != nil {
		c.logger.Debug("sqlite prepare failed", "name", c.name, "error", err)
		return nil, err
	}
	if pstmt == 0 {
		return nil, ErrEmptyStatement
	}
	s := &Stmt{conn: c, pstmt: pstmt}
	c.stmts[s] = struct{}{}
	return s, nil
}

func (c *Conn) prepareV2(sql string) (_ uintptr, err error) {
	var zSQL, ppstmt uintptr
	defer func() {
		free(c.tls, zSQL)
		free(c.tls, ppstmt)
	}()
	if zSQL, err = libc.CString(sql); err != nil {
		return 0, err
	}
	if ppstmt, err = malloc(c.tls, ptrSize); err != nil {
		return 0, err
	}
	storePtr(ppstmt, 0)
	if rc := sqlite3.Xsqlite3_prepare_v2(c.tls, c.db, zSQL, -1, ppstmt, 0); rc != sqlite3.SQLITE_OK {
		return 0, errorFor(c.tls, c.db, "prepare", rc)
	}
	return loadPtr(ppstmt), nil
}

// LastInsertRowID returns the rowid of the most recent successful insert on
// this connection, or 0 if there has been none.
func (c *Conn) LastInsertRowID() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == 0 {
		return 0, ErrClosed
	}
	return sqlite3.Xsqlite3_last_insert_rowid(c.tls, c.db), nil
}

// Changes returns the number of rows modified by the most recently
// completed INSERT, UPDATE or DELETE.
func (c *Conn) Changes() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == 0 {
		return 0, ErrClosed
	}
	return int(sqlite3.Xsqlite3_changes(c.tls, c.db)), nil
}

// ErrorMessage returns the engine's message for the most recent failed
// call on this connection. It is only meaningful right after that call.
func (c *Conn) ErrorMessage() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == 0 {
		return "", ErrClosed
	}
	return libc.GoString(sqlite3.Xsqlite3_errmsg(c.tls, c.db)), nil
}

// SetBusyTimeout sets how long a step waits on a locked database before it
// reports Busy. Zero or less disables waiting.
func (c *Conn) SetBusyTimeout(d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == 0 {
		return ErrClosed
	}
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	if ms > 1<<31-1 {
		ms = 1<<31 - 1
	}
	if rc := sqlite3.Xsqlite3_busy_timeout(c.tls, c.db, int32(ms)); rc != sqlite3.SQLITE_OK {
		return errorFor(c.tls, c.db, "busy_timeout", rc)
	}
	return nil
}

// Close finalizes every statement still open on the connection and then
// closes it. Closing a closed connection is a no-op.
func (c *Conn) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == 0 {
		return nil
	}
	if n := len(c.stmts); n > 0 {
		c.logger.Warn("sqlite close finalizing outstanding statements", "name", c.name, "count", n)
		for s := range c.stmts {
			s.finalizeLocked()
		}
	}
	var err error
	if rc := sqlite3.Xsqlite3_close_v2(c.tls, c.db); rc != sqlite3.SQLITE_OK {
		err = errorFor(c.tls, c.db, "close", rc)
	}
	c.db = 0
	c.tls.Close()
	c.tls = nil
	c.logger.Debug("sqlite closed", "name", c.name)
	return err
}

// With opens name, passes the connection to fn and closes it when fn
// returns, whatever the outcome.
func With(name string, fn func(*Conn) error, opts ...Option) (err error) {
	c, err := Open(name, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(c)
}

// WithStmt prepares sql, passes the statement to fn and finalizes it when
// fn returns, whatever the outcome.
func (c *Conn) WithStmt(sql string, fn func(*Stmt) error) (err error) {
	s, err := c.Prepare(sql)
	if err != nil {
		return err
	}
	defer func() {
		if ferr := s.Finalize(); ferr != nil && err == nil {
			err = ferr
		}
	}()
	return fn(s)
}
