package main

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// errorTee is the console handler with error records copied to a second
// sink. The console level never exceeds info, so its Enabled covers both.
type errorTee struct {
	slog.Handler
	sink slog.Handler
}

func (t errorTee) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		// losing the copy is acceptable, losing the console line is not
		_ = t.sink.Handle(ctx, r.Clone())
	}
	return t.Handler.Handle(ctx, r)
}

func (t errorTee) WithAttrs(attrs []slog.Attr) slog.Handler {
	return errorTee{Handler: t.Handler.WithAttrs(attrs), sink: t.sink.WithAttrs(attrs)}
}

func (t errorTee) WithGroup(name string) slog.Handler {
	return errorTee{Handler: t.Handler.WithGroup(name), sink: t.sink.WithGroup(name)}
}

// newLogger builds the console logger for env. A nil errs disables the copy.
func newLogger(env string, console, errs io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if env == envProd {
		opts.Level = slog.LevelInfo
	}

	var h slog.Handler = slog.NewTextHandler(console, opts)
	if env == envDev {
		h = slog.NewJSONHandler(console, opts)
	}

	if errs != nil {
		h = errorTee{Handler: h, sink: slog.NewJSONHandler(errs, &slog.HandlerOptions{Level: slog.LevelError})}
	}

	return slog.New(h)
}

func setupLogger(env, errorLog string) *slog.Logger {
	if errorLog == "" {
		return newLogger(env, os.Stdout, nil)
	}

	f, err := os.OpenFile(errorLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log := newLogger(env, os.Stdout, nil)
		log.Warn("error log disabled", slog.String("path", errorLog), slog.String("error", err.Error()))
		return log
	}

	return newLogger(env, os.Stdout, f)
}
