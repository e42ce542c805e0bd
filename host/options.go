package host

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/viant/sqlite-bind/engine"
)

// Option configures a Host.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	openOpts []engine.Option
	newID    func() string
}

func newOptions(opts []Option) *options {
	o := &options{newID: uuid.NewString}
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

// WithLogger sets the logger used by the host and the connections it opens.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithOpenOptions adds engine options applied to every Open.
func WithOpenOptions(opts ...engine.Option) Option {
	return func(o *options) { o.openOpts = append(o.openOpts, opts...) }
}

// WithIDGenerator replaces the handle generator, uuid.NewString by default.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newID = fn
		}
	}
}
