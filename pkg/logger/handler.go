package logger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// ContextExtractor returns an attribute carried by ctx, if there is one.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// ContextHandler adds the attributes found by its extractors to every record.
// Extractors run per record, so a logger created once still picks up the
// request and job of the context it logs with.
type ContextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// NewContextHandler wraps next. Nil extractors are dropped.
func NewContextHandler(next slog.Handler, extractors ...ContextExtractor) *ContextHandler {
	return &ContextHandler{
		next:       next,
		extractors: slices.DeleteFunc(slices.Clone(extractors), func(e ContextExtractor) bool { return e == nil }),
	}
}

// Enabled implements slog.Handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, extract := range h.extractors {
		if attr, ok := extract(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}

// fanout writes each record to every enabled handler. A failing handler does
// not keep the record from the others.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(f, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

func (f fanout) Handle(ctx context.Context, rec slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, rec.Level) {
			errs = append(errs, h.Handle(ctx, rec.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}
