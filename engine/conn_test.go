package engine

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/viant/sqlite-bind/value"
)

func openMemory(t *testing.T) *Conn {
	t.Helper()
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestOpenClose(t *testing.T) {
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	if c.Name() != ":memory:" {
		t.Fatalf("Name() = %q", c.Name())
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	var nilConn *Conn
	if err := nilConn.Close(); err != nil {
		t.Fatalf("nil Close failed: %v", err)
	}
}

func TestOpenFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "db.sqlite")
	c, err := Open(path)
	if err == nil {
		c.Close()
		t.Fatalf("Open(%s) succeeded, want error", path)
	}
	if ErrCode(err) != ResultCantOpen {
		t.Fatalf("Open error code = %s, want %s (%v)", ErrCode(err), ResultCantOpen, err)
	}
	var e *Error
	if !errors.As(err, &e) || e.Op != "open" {
		t.Fatalf("Open error = %#v, want *Error with Op open", err)
	}
}

func TestOpenReadOnlyMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")
	if _, err := Open(path, WithFlags(OpenReadOnly)); ErrCode(err) != ResultCantOpen {
		t.Fatalf("read-only Open of missing file = %v, want %s", err, ResultCantOpen)
	}
}

func TestExec(t *testing.T) {
	c := openMemory(t)
	if err := c.Exec("CREATE TABLE t(a, b, c); INSERT INTO t VALUES (1, 2, 3);"); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	id, err := c.LastInsertRowID()
	if err != nil || id != 1 {
		t.Fatalf("LastInsertRowID = %d, %v; want 1", id, err)
	}
	n, err := c.Changes()
	if err != nil || n != 1 {
		t.Fatalf("Changes = %d, %v; want 1", n, err)
	}

	err = c.Exec("SELEC 1")
	if err == nil {
		t.Fatalf("Exec of invalid SQL succeeded")
	}
	if ErrCode(err) != ResultError {
		t.Fatalf("Exec error code = %s, want %s", ErrCode(err), ResultError)
	}
	msg, err := c.ErrorMessage()
	if err != nil {
		t.Fatalf("ErrorMessage failed: %v", err)
	}
	if !strings.Contains(msg, "syntax error") {
		t.Fatalf("ErrorMessage = %q, want syntax error", msg)
	}
}

func TestPrepareEmpty(t *testing.T) {
	c := openMemory(t)
	for _, sql := range []string{"", "   ", "-- nothing here", ";"} {
		s, err := c.Prepare(sql)
		if !errors.Is(err, ErrEmptyStatement) {
			t.Fatalf("Prepare(%q) = %v, %v; want ErrEmptyStatement", sql, s, err)
		}
	}
}

func TestPrepareCompileError(t *testing.T) {
	c := openMemory(t)
	_, err := c.Prepare("SELECT * FROM missing_table")
	if err == nil {
		t.Fatalf("Prepare of unknown table succeeded")
	}
	if errors.Is(err, ErrEmptyStatement) {
		t.Fatalf("compile failure reported as empty statement")
	}
	if ErrCode(err) != ResultError {
		t.Fatalf("Prepare error code = %s, want %s", ErrCode(err), ResultError)
	}
	if !strings.Contains(err.Error(), "no such table") {
		t.Fatalf("Prepare error = %v, want no such table", err)
	}
}

func TestClosedConn(t *testing.T) {
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	c.Close()
	if err := c.Exec("SELECT 1"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Exec after Close = %v, want ErrClosed", err)
	}
	if _, err := c.Prepare("SELECT 1"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Prepare after Close = %v, want ErrClosed", err)
	}
	if _, err := c.LastInsertRowID(); !errors.Is(err, ErrClosed) {
		t.Fatalf("LastInsertRowID after Close = %v, want ErrClosed", err)
	}
	if _, err := c.ErrorMessage(); !errors.Is(err, ErrClosed) {
		t.Fatalf("ErrorMessage after Close = %v, want ErrClosed", err)
	}
}

func TestCloseFinalizesStatements(t *testing.T) {
	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	s1, err := c.Prepare("SELECT 1")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	s2, err := c.Prepare("SELECT 2")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if res, err := s1.Step(); err != nil || res != Row {
		t.Fatalf("Step = %v, %v; want row", res, err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close with outstanding statements failed: %v", err)
	}
	for _, s := range []*Stmt{s1, s2} {
		if _, err := s.Step(); !errors.Is(err, ErrFinalized) {
			t.Fatalf("Step after Close = %v, want ErrFinalized", err)
		}
		if err := s.Finalize(); err != nil {
			t.Fatalf("Finalize after Close failed: %v", err)
		}
	}
}

func TestWith(t *testing.T) {
	var kept *Conn
	var stmt *Stmt
	err := With(":memory:", func(c *Conn) error {
		kept = c
		return c.WithStmt("SELECT 40 + 2", func(s *Stmt) error {
			stmt = s
			if _, err := s.Step(); err != nil {
				return err
			}
			v, err := s.ColumnValue(0)
			if err != nil {
				return err
			}
			if !v.Equal(value.Int(42)) {
				t.Errorf("ColumnValue = %v, want 42", v)
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}
	if _, err := stmt.ColumnCount(); !errors.Is(err, ErrFinalized) {
		t.Fatalf("statement not finalized after WithStmt: %v", err)
	}
	if err := kept.Exec("SELECT 1"); !errors.Is(err, ErrClosed) {
		t.Fatalf("connection not closed after With: %v", err)
	}

	boom := errors.New("boom")
	if err := With(":memory:", func(*Conn) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("With = %v, want callback error", err)
	}
}

func TestBusy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "busy.db")
	writer, err := Open(path)
	if err != nil {
		t.Fatalf("Open writer failed: %v", err)
	}
	defer writer.Close()
	reader, err := Open(path)
	if err != nil {
		t.Fatalf("Open reader failed: %v", err)
	}
	defer reader.Close()

	if err := writer.Exec("CREATE TABLE t(a INTEGER); INSERT INTO t VALUES (7);"); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	s, err := reader.Prepare("SELECT a FROM t")
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	defer s.Finalize()

	if err := writer.Exec("BEGIN EXCLUSIVE"); err != nil {
		t.Fatalf("BEGIN EXCLUSIVE failed: %v", err)
	}
	res, err := s.Step()
	if err != nil {
		t.Fatalf("Step under exclusive lock failed: %v", err)
	}
	if res != Busy {
		t.Fatalf("Step under exclusive lock = %s, want busy", res)
	}
	if err := writer.Exec("COMMIT"); err != nil {
		t.Fatalf("COMMIT failed: %v", err)
	}
	s.Reset()
	if res, err := s.Step(); err != nil || res != Row {
		t.Fatalf("Step after COMMIT = %s, %v; want row", res, err)
	}
}

func TestBusyTimeoutOption(t *testing.T) {
	c, err := Open(":memory:", WithBusyTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("Open with busy timeout failed: %v", err)
	}
	defer c.Close()
	if err := c.SetBusyTimeout(0); err != nil {
		t.Fatalf("SetBusyTimeout failed: %v", err)
	}
}
