package engine

import (
	"fmt"
	"unsafe"

	"modernc.org/libc"
	"modernc.org/libc/sys/types"
	sqlite3 "modernc.org/sqlite/lib"
)

const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// transient is SQLITE_TRANSIENT: the engine copies bound text and blobs
// before the bind call returns.
const transient = ^uintptr(0)

func malloc(tls *libc.TLS, n int) (uintptr, error) {
	if p := libc.Xmalloc(tls, types.Size_t(n)); p != 0 || n == 0 {
		return p, nil
	}
	return 0, fmt.Errorf("sqlite: cannot allocate %d bytes of memory", n)
}

func free(tls *libc.TLS, p uintptr) {
	if p != 0 {
		libc.Xfree(tls, p)
	}
}

// cbytes copies b into C memory with a trailing NUL so that the pointer is
// never zero, even for empty input.
func cbytes(tls *libc.TLS, b []byte) (uintptr, error) {
	p, err := malloc(tls, len(b)+1)
	if err != nil {
		return 0, err
	}
	mem := (*libc.RawMem)(unsafe.Pointer(p))[: len(b)+1 : len(b)+1]
	copy(mem, b)
	mem[len(b)] = 0
	return p, nil
}

// goBytes copies n bytes of engine memory into a new Go slice.
func goBytes(p uintptr, n int) []byte {
	out := make([]byte, n)
	if p != 0 && n > 0 {
		copy(out, (*libc.RawMem)(unsafe.Pointer(p))[:n:n])
	}
	return out
}

func loadPtr(p uintptr) uintptr { return *(*uintptr)(unsafe.Pointer(p)) }

func storePtr(p, v uintptr) { *(*uintptr)(unsafe.Pointer(p)) = v }

// errorFor builds an *Error for rc from the connection's current message.
func errorFor(tls *libc.TLS, db uintptr, op string, rc int32) *Error {
	msg := libc.GoString(sqlite3.Xsqlite3_errstr(tls, rc))
	if db != 0 {
		if m := libc.GoString(sqlite3.Xsqlite3_errmsg(tls, db)); m != "" {
			msg = m
		}
	}
	return &Error{Op: op, Code: ResultCode(rc), Msg: msg}
}
