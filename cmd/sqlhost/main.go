// Command sqlhost serves the SQLite object table over a pipe: one JSON
// request per line on stdin, one JSON response per line on stdout. Logs go
// to stderr.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/viant/sqlite-bind/engine"
	"github.com/viant/sqlite-bind/host"
)

const maxRequestSize = 64 << 20

func main() {
	busyTimeout := flag.Duration("busy-timeout", 0, "how long a step waits on a locked database before reporting busy")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	readOnly := flag.Bool("read-only", false, "open every database read-only")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q: %v\n", *logLevel, err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	h := host.New(host.WithLogger(logger), host.WithOpenOptions(openOptions(*busyTimeout, *readOnly)...))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- serve(os.Stdin, os.Stdout, h) }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		logger.Info("sqlhost interrupted")
	}
	if serr := h.Shutdown(); serr != nil {
		logger.Error("sqlhost shutdown failed", "error", serr)
	}
	if err != nil {
		logger.Error("sqlhost stopped", "error", err)
		os.Exit(1)
	}
}

func openOptions(busyTimeout time.Duration, readOnly bool) []engine.Option {
	opts := []engine.Option{engine.WithBusyTimeout(busyTimeout)}
	if readOnly {
		opts = append(opts, engine.WithFlags(engine.OpenReadOnly|engine.OpenURI|engine.OpenFullMutex))
	}
	return opts
}

// serve answers requests from r on w until r is exhausted.
func serve(r io.Reader, w io.Writer, h *host.Host) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestSize)
	out := bufio.NewWriter(w)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp, err := h.HandleRequest(line)
		if err != nil {
			return err
		}
		if _, err := out.Write(append(resp, '\n')); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}
	return nil
}
