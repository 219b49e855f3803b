// Package logging builds the structured loggers used across shipdoc.
//
// There is no package-level logger. A logger is built once per process with
// New, scoped to a pipeline run with ForRun, and carried to the parsing code
// through the context:
//
//	base, closer, err := logging.New(logging.Options{Level: "debug"})
//	defer closer.Close()
//	log, runID := logging.ForRun(base)
//	ctx := logging.WithLogger(context.Background(), log)
//
// Code that receives a context calls FromContext, which returns a logger that
// discards everything when none was attached.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Options configures New.
type Options struct {
	// Level is one of "debug", "info", "warn", "error". Default "info".
	Level string

	// Format is "text" or "json". Default "text".
	Format string

	// Output is an optional file path. Records are written to it in addition
	// to Stderr.
	Output string

	// Stderr overrides the console writer. Nil means os.Stderr.
	Stderr io.Writer
}

type ctxKey struct{}

var discard = slog.New(slog.DiscardHandler)

// New creates a logger from opts. The returned Closer releases the log file
// when Output is set and is a no-op otherwise.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = os.Stderr
	if opts.Stderr != nil {
		w = opts.Stderr
	}

	var closer io.Closer = nopCloser{}
	if opts.Output != "" {
		if dir := filepath.Dir(opts.Output); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(opts.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(w, f)
		closer = f
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(opts.Format) {
	case "", "text":
		handler = slog.NewTextHandler(w, handlerOpts)
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default:
		closer.Close()
		return nil, nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	return slog.New(handler), closer, nil
}

// ParseLevel converts a config level name to a slog.Level.
// The empty string maps to info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// ForRun returns base bound to a fresh run identifier, plus that identifier.
func ForRun(base *slog.Logger) (*slog.Logger, string) {
	if base == nil {
		base = discard
	}
	id := uuid.NewString()
	return base.With(slog.String("run_id", id)), id
}

// WithLogger returns a copy of ctx carrying log.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// FromContext returns the logger attached to ctx, or a discarding logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return discard
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
