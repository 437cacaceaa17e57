package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/lmittmann/tint"
)

// Options configures the global logger.
type Options struct {
	// Level may be "debug", "info", "warn", or "error" (default "info").
	Level string
	// Format may be "json", "text", or "color" (default "json").
	Format string
	// FluentHost enables a Fluent Bit sink alongside stdout when set.
	FluentHost string
	FluentPort int
	// Tag prefixes Fluent Bit tags, e.g. "propmap-api.info".
	Tag string
	// Writer defaults to os.Stdout.
	Writer io.Writer
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initialises the global slog default logger and returns a function
// that flushes and closes any remote sink.
func Setup(opts Options) (func() error, error) {
	lvl := ParseLevel(opts.Level)
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}

	handler := NewHandler(w, lvl, opts.Format)
	closer := func() error { return nil }

	if opts.FluentHost != "" {
		client, err := fluent.New(fluent.Config{
			FluentHost:   opts.FluentHost,
			FluentPort:   opts.FluentPort,
			Async:        true,
			MaxRetry:     3,
			TagPrefix:    opts.Tag,
			WriteTimeout: 3 * time.Second,
		})
		if err != nil {
			slog.SetDefault(slog.New(handler))
			return closer, err
		}
		handler = &fanout{handlers: []slog.Handler{handler, NewFluentHandler(client, lvl)}}
		closer = client.Close
	}

	slog.SetDefault(slog.New(handler))
	return closer, nil
}

// NewHandler returns the local handler for a format.
func NewHandler(w io.Writer, lvl slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.NewTextHandler(w, opts)
	case "color":
		return tint.NewHandler(w, &tint.Options{Level: lvl, TimeFormat: "2006-01-02 15:04:05"})
	default:
		return slog.NewJSONHandler(w, opts)
	}
}

// fanout sends each record to every handler that accepts its level.
type fanout struct {
	handlers []slog.Handler
}

func (f *fanout) Enabled(ctx context.Context, lvl slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, lvl) {
			return true
		}
	}
	return false
}

func (f *fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &fanout{handlers: hs}
}

func (f *fanout) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &fanout{handlers: hs}
}
