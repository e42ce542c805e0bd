package engine

import (
	"database/sql"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// OpenDB opens name through database/sql using the modernc.org/sqlite
// driver. The driver runs on the same engine build as Conn, so files written
// through either are read back identically by the other.
//
// For file-based databases, pass a path like "./db.sqlite". For in-memory
// databases, pass ":memory:"; such a database is private to the *sql.DB and
// not visible to a Conn.
func OpenDB(dsn string) (*sql.DB, error) { return sql.Open("sqlite", dsn) }
