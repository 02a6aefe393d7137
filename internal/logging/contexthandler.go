package logging

import (
	"context"
	"log/slog"
)

// ContextProvider returns attributes added to every record. It runs at log time,
// so the values are always current.
type ContextProvider func() []slog.Attr

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying the id of the request being served.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx by WithRequestID.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

// ContextHandler tags records with the request id found in their context and with
// whatever the provider reports, then passes them on.
type ContextHandler struct {
	next     slog.Handler
	provider ContextProvider
}

// NewContextHandler wraps next. provider may be nil.
func NewContextHandler(next slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{next: next, provider: provider}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := RequestID(ctx); ok {
		r.AddAttrs(slog.String("request_id", id))
	}
	if h.provider != nil {
		r.AddAttrs(h.provider()...)
	}
	return h.next.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewContextHandler(h.next.WithAttrs(attrs), h.provider)
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return NewContextHandler(h.next.WithGroup(name), h.provider)
}
