package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "warn", "error"
}

// ConsoleHandler is a slog.Handler that forwards records to a render's
// web console and to the server's own handler
type ConsoleHandler struct {
	renderID    string
	next        slog.Handler
	consoleChan chan<- ConsoleMessage
	attrs       []slog.Attr
}

// NewConsoleLogger creates a logger for a specific render. Records go to
// next (if non-nil) and, without blocking, to consoleChan.
func NewConsoleLogger(renderID string, next slog.Handler, consoleChan chan<- ConsoleMessage) *slog.Logger {
	return slog.New(&ConsoleHandler{
		renderID:    renderID,
		next:        next,
		consoleChan: consoleChan,
	}).With("render", renderID)
}

func (h *ConsoleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level >= slog.LevelInfo {
		return true
	}
	return h.next != nil && h.next.Enabled(ctx, level)
}

func (h *ConsoleHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.next != nil && h.next.Enabled(ctx, r.Level) {
		if err := h.next.Handle(ctx, r); err != nil {
			return err
		}
	}

	if h.consoleChan == nil {
		return nil
	}

	var b strings.Builder
	b.WriteString(r.Message)
	write := func(a slog.Attr) bool {
		if a.Key == "render" {
			return true
		}
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(write)

	select {
	case h.consoleChan <- ConsoleMessage{
		Message:   b.String(),
		Timestamp: r.Time,
		Level:     strings.ToLower(r.Level.String()),
	}:
	default:
		// Channel full, skip (don't block)
	}
	return nil
}

func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	if h.next != nil {
		clone.next = h.next.WithAttrs(attrs)
	}
	return &clone
}

func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if h.next != nil {
		clone.next = h.next.WithGroup(name)
	}
	return &clone
}
