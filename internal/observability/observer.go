// Package observability carries pricing events to structured logs and
// Prometheus metrics.
package observability

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"
)

// EventType identifies the kind of event, e.g. "pricing.model.built".
type EventType string

const (
	EventModelBuilt      EventType = "pricing.model.built"
	EventCompareDone     EventType = "pricing.compare.done"
	EventReportRendered  EventType = "pricing.report.rendered"
	EventScheduleImport  EventType = "pricing.schedule.imported"
	EventRequestRejected EventType = "pricing.request.rejected"
	EventConfigUpdated   EventType = "pricing.config.updated"
)

// Event is emitted once per pricing operation.
type Event struct {
	Type      EventType
	Level     slog.Level
	Timestamp time.Time
	// Operation is the tool or endpoint that produced the event.
	Operation string
	Duration  time.Duration
	Err       error
	Data      map[string]any
}

// Observer receives events for logging or metrics.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// Noop discards every event.
type Noop struct{}

func (Noop) OnEvent(context.Context, Event) {}

// Multi fans out events to multiple observers.
type Multi struct {
	observers []Observer
}

// NewMulti forwards events to all non-nil observers.
func NewMulti(observers ...Observer) *Multi {
	filtered := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			filtered = append(filtered, obs)
		}
	}
	return &Multi{observers: filtered}
}

func (m *Multi) OnEvent(ctx context.Context, event Event) {
	for _, obs := range m.observers {
		obs.OnEvent(ctx, event)
	}
}

// ParseLevel maps debug, info, warn and error onto slog levels. Unknown
// values fall back to info.
func ParseLevel(s string) slog.Level {
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

// NewLogger returns a text logger for local development and a JSON logger
// otherwise, both writing to stderr.
func NewLogger(level string, dev bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if dev {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
