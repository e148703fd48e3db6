// Package audit records one trail event per authorized mutating request.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/staffdir/staffdir/internal/platform/db"
)

// Event is a single audit trail entry.
type Event struct {
	ID       string
	ActorID  int64
	Method   string
	Resource string
	Path     string
	At       time.Time
}

// Recorder writes audit events on the caller-provided querier so the event
// commits or rolls back with the mutation it describes. A nil Recorder
// discards events.
type Recorder struct {
	logger *slog.Logger
}

// NewRecorder constructs a Recorder.
func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// Record inserts an audit event for the given actor and operation.
func (r *Recorder) Record(ctx context.Context, q db.Querier, actorID int64, method, resource, path string) error {
	if r == nil {
		return nil
	}
	event := Event{
		ID:       uuid.NewString(),
		ActorID:  actorID,
		Method:   method,
		Resource: resource,
		Path:     path,
		At:       time.Now().UTC(),
	}
	_, err := q.Exec(ctx,
		`INSERT INTO audit_events (id, actor_id, method, resource, path, at) VALUES ($1, $2, $3, $4, $5, $6)`,
		event.ID, event.ActorID, event.Method, event.Resource, event.Path, event.At,
	)
	if err != nil {
		return err
	}
	if r.logger != nil {
		r.logger.Info("audit",
			slog.Int64("actor", event.ActorID),
			slog.String("method", event.Method),
			slog.String("resource", event.Resource),
		)
	}
	return nil
}
