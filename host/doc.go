// Package host is the object table a script runtime binds against.
//
// Connections and statements are handed out as opaque string handles. The
// methods keep the sentinel conventions scripts expect: Exec reports a
// success flag, Prepare an empty handle (null on the wire) when nothing was
// compiled, Step one of "row", "done" or "busy" or an empty string, and Bind
// the native status code. Failures that a script can only learn about
// through ErrorMessage are not Go errors; misuse such as an unknown handle or
// a finalized statement is.
//
// HandleRequest exposes the same table over JSON for runtimes that talk to
// the host over a pipe.
package host
