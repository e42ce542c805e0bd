package engine

import (
	"log/slog"
	"time"

	sqlite3 "modernc.org/sqlite/lib"
)

// OpenFlags are the sqlite3_open_v2 flags.
//
// https://www.sqlite.org/c3ref/open.html
type OpenFlags int32

const (
	OpenReadOnly  OpenFlags = sqlite3.SQLITE_OPEN_READONLY
	OpenReadWrite OpenFlags = sqlite3.SQLITE_OPEN_READWRITE
	OpenCreate    OpenFlags = sqlite3.SQLITE_OPEN_CREATE
	OpenURI       OpenFlags = sqlite3.SQLITE_OPEN_URI
	OpenMemory    OpenFlags = sqlite3.SQLITE_OPEN_MEMORY
	OpenNoMutex   OpenFlags = sqlite3.SQLITE_OPEN_NOMUTEX
	OpenFullMutex OpenFlags = sqlite3.SQLITE_OPEN_FULLMUTEX
)

// DefaultOpenFlags create the database file when missing and accept URI
// filenames.
const DefaultOpenFlags = OpenReadWrite | OpenCreate | OpenURI | OpenFullMutex

// Option configures Open.
type Option func(*options)

type options struct {
	flags       OpenFlags
	vfs         string
	busyTimeout time.Duration
	logger      *slog.Logger
}

func newOptions(opts []Option) *options {
	o := &options{flags: DefaultOpenFlags}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithFlags replaces the open flags. Zero keeps DefaultOpenFlags.
func WithFlags(flags OpenFlags) Option {
	return func(o *options) {
		if flags != 0 {
			o.flags = flags
		}
	}
}

// WithVFS selects a registered VFS by name.
func WithVFS(name string) Option {
	return func(o *options) { o.vfs = name }
}

// WithBusyTimeout sets how long the engine waits on a locked database before
// a step reports Busy. The default of zero reports Busy immediately.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.busyTimeout = d
		}
	}
}

// WithLogger sets the logger; slog.Default() is used otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}
