// Package engine drives SQLite through its C call surface, as exposed by the
// transpiled modernc.org/sqlite/lib, without cgo.
//
// A Conn owns one native connection and the statements prepared on it. A
// Stmt is stepped one row at a time:
//
//	err := engine.With(":memory:", func(c *engine.Conn) error {
//		return c.WithStmt("SELECT 1", func(s *engine.Stmt) error {
//			res, err := s.Step()
//			...
//		})
//	})
//
// Parameters and columns use value.Value. Native failures are reported as
// *Error values carrying the engine's ResultCode. Busy is a step result, not
// an error; the package never retries on its own.
//
// OpenDB gives a database/sql view of the same files for code that prefers
// the standard interface.
package engine
