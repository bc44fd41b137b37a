package store

import (
	"io"
	"log/slog"
	"time"
)

// ActionEvent captures lightweight telemetry for one store action.
type ActionEvent struct {
	Action   string
	EntityID string
	Success  bool
	Err      error
	Duration time.Duration
}

// Observer receives store action events.
type Observer interface {
	ObserveAction(event ActionEvent)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) ObserveAction(ActionEvent) {}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver writes store action events to the provided writer.
func NewLogObserver(w io.Writer) Observer {
	if w == nil {
		return NoopObserver{}
	}
	return &logObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logObserver) ObserveAction(event ActionEvent) {
	attrs := []any{
		"action", event.Action,
		"entity_id", event.EntityID,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.Error("store_action", attrs...)
		return
	}
	o.logger.Info("store_action", attrs...)
}

// observe reports an action's outcome to the configured observer.
func (s *Store) observe(action, entityID string, start time.Time, err error) {
	s.observer.ObserveAction(ActionEvent{
		Action:   action,
		EntityID: entityID,
		Success:  err == nil,
		Err:      err,
		Duration: time.Since(start),
	})
}
