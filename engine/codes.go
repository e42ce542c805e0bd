package engine

import (
	"errors"
	"fmt"
	"strconv"

	sqlite3 "modernc.org/sqlite/lib"
)

// ResultCode is a primary SQLite result code as returned by the native API.
//
// https://www.sqlite.org/rescode.html
type ResultCode int

const (
	ResultOK         ResultCode = sqlite3.SQLITE_OK
	ResultError      ResultCode = sqlite3.SQLITE_ERROR
	ResultInternal   ResultCode = sqlite3.SQLITE_INTERNAL
	ResultPerm       ResultCode = sqlite3.SQLITE_PERM
	ResultAbort      ResultCode = sqlite3.SQLITE_ABORT
	ResultBusy       ResultCode = sqlite3.SQLITE_BUSY
	ResultLocked     ResultCode = sqlite3.SQLITE_LOCKED
	ResultNoMem      ResultCode = sqlite3.SQLITE_NOMEM
	ResultReadOnly   ResultCode = sqlite3.SQLITE_READONLY
	ResultInterrupt  ResultCode = sqlite3.SQLITE_INTERRUPT
	ResultIOErr      ResultCode = sqlite3.SQLITE_IOERR
	ResultCorrupt    ResultCode = sqlite3.SQLITE_CORRUPT
	ResultNotFound   ResultCode = sqlite3.SQLITE_NOTFOUND
	ResultFull       ResultCode = sqlite3.SQLITE_FULL
	ResultCantOpen   ResultCode = sqlite3.SQLITE_CANTOPEN
	ResultProtocol   ResultCode = sqlite3.SQLITE_PROTOCOL
	ResultEmpty      ResultCode = sqlite3.SQLITE_EMPTY
	ResultSchema     ResultCode = sqlite3.SQLITE_SCHEMA
	ResultTooBig     ResultCode = sqlite3.SQLITE_TOOBIG
	ResultConstraint ResultCode = sqlite3.SQLITE_CONSTRAINT
	ResultMismatch   ResultCode = sqlite3.SQLITE_MISMATCH
	ResultMisuse     ResultCode = sqlite3.SQLITE_MISUSE
	ResultNoLFS      ResultCode = sqlite3.SQLITE_NOLFS
	ResultAuth       ResultCode = sqlite3.SQLITE_AUTH
	ResultFormat     ResultCode = sqlite3.SQLITE_FORMAT
	ResultRange      ResultCode = sqlite3.SQLITE_RANGE
	ResultNotADB     ResultCode = sqlite3.SQLITE_NOTADB
	ResultNotice     ResultCode = sqlite3.SQLITE_NOTICE
	ResultWarning    ResultCode = sqlite3.SQLITE_WARNING
	ResultRow        ResultCode = sqlite3.SQLITE_ROW
	ResultDone       ResultCode = sqlite3.SQLITE_DONE
)

var codeNames = map[ResultCode]string{
	ResultOK:         "SQLITE_OK",
	ResultError:      "SQLITE_ERROR",
	ResultInternal:   "SQLITE_INTERNAL",
	ResultPerm:       "SQLITE_PERM",
	ResultAbort:      "SQLITE_ABORT",
	ResultBusy:       "SQLITE_BUSY",
	ResultLocked:     "SQLITE_LOCKED",
	ResultNoMem:      "SQLITE_NOMEM",
	ResultReadOnly:   "SQLITE_READONLY",
	ResultInterrupt:  "SQLITE_INTERRUPT",
	ResultIOErr:      "SQLITE_IOERR",
	ResultCorrupt:    "SQLITE_CORRUPT",
	ResultNotFound:   "SQLITE_NOTFOUND",
	ResultFull:       "SQLITE_FULL",
	ResultCantOpen:   "SQLITE_CANTOPEN",
	ResultProtocol:   "SQLITE_PROTOCOL",
	ResultEmpty:      "SQLITE_EMPTY",
	ResultSchema:     "SQLITE_SCHEMA",
	ResultTooBig:     "SQLITE_TOOBIG",
	ResultConstraint: "SQLITE_CONSTRAINT",
	ResultMismatch:   "SQLITE_MISMATCH",
	ResultMisuse:     "SQLITE_MISUSE",
	ResultNoLFS:      "SQLITE_NOLFS",
	ResultAuth:       "SQLITE_AUTH",
	ResultFormat:     "SQLITE_FORMAT",
	ResultRange:      "SQLITE_RANGE",
	ResultNotADB:     "SQLITE_NOTADB",
	ResultNotice:     "SQLITE_NOTICE",
	ResultWarning:    "SQLITE_WARNING",
	ResultRow:        "SQLITE_ROW",
	ResultDone:       "SQLITE_DONE",
}

func (c ResultCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return "SQLITE_UNKNOWN(" + strconv.Itoa(int(c)) + ")"
}

// IsSuccess reports whether c is ResultOK, ResultRow or ResultDone.
func (c ResultCode) IsSuccess() bool {
	return c == ResultOK || c == ResultRow || c == ResultDone
}

var (
	// ErrClosed is returned by operations on a closed connection.
	ErrClosed = errors.New("sqlite: connection closed")
	// ErrFinalized is returned by operations on a finalized statement.
	ErrFinalized = errors.New("sqlite: statement finalized")
	// ErrEmptyStatement is returned by Prepare when the SQL text holds no
	// statement (empty input, whitespace or comments only).
	ErrEmptyStatement = errors.New("sqlite: no statement to prepare")
	// ErrNoRow is returned by column readers when the last Step did not
	// produce a row.
	ErrNoRow = errors.New("sqlite: no current row")
	// ErrColumnRange is returned for a column index outside the result.
	ErrColumnRange = errors.New("sqlite: column index out of range")
)

// Error is a failure reported by the engine. Code is the native status and
// Msg the engine's message for the connection at the time of failure.
type Error struct {
	Op   string
	Code ResultCode
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("sqlite: %s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("sqlite: %s: %s (%s)", e.Op, e.Msg, e.Code)
}

// ErrCode returns the native status carried by err: ResultOK for nil, the
// code of an *Error anywhere in the chain, and ResultError for anything else.
func ErrCode(err error) ResultCode {
	if err == nil {
		return ResultOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ResultError
}
