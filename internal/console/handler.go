package console

import (
	"context"
	"errors"
	"log/slog"
)

// TeeHandler sends each record to every handler that accepts its level.
type TeeHandler []slog.Handler

func (h TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h TeeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range h {
		if handler.Enabled(ctx, r.Level) {
			errs = append(errs, handler.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	tee := make(TeeHandler, 0, len(h))
	for _, handler := range h {
		tee = append(tee, handler.WithAttrs(attrs))
	}
	return tee
}

func (h TeeHandler) WithGroup(name string) slog.Handler {
	tee := make(TeeHandler, 0, len(h))
	for _, handler := range h {
		tee = append(tee, handler.WithGroup(name))
	}
	return tee
}
