package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ContextAttrs returns log attributes carried by a request context, such as its request id.
type ContextAttrs func(ctx context.Context) []slog.Attr

// NewLogger returns a slog.Logger configured from GO_ENV and LOG_LEVEL, writing to stdout.
// Every record logged with a context is enriched with the attributes the extractors find in it.
func NewLogger(extractors ...ContextAttrs) *slog.Logger {
	return newLogger(os.Stdout, os.Getenv("GO_ENV"), os.Getenv("LOG_LEVEL"), extractors...)
}

func newLogger(w io.Writer, env, level string, extractors ...ContextAttrs) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewContextHandler(handler, extractors...))
}

// parseLevel accepts debug, info, warn and error; anything else is info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type contextHandler struct {
	slog.Handler
	extractors []ContextAttrs
}

// NewContextHandler wraps h so that records carry the attributes extracted from their context.
func NewContextHandler(h slog.Handler, extractors ...ContextAttrs) slog.Handler {
	if len(extractors) == 0 {
		return h
	}
	return &contextHandler{Handler: h, extractors: extractors}
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		r = r.Clone()
		for _, extract := range h.extractors {
			r.AddAttrs(extract(ctx)...)
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), extractors: h.extractors}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), extractors: h.extractors}
}
