// Package telemetry defines the events the backend emits about account recovery and HTTP traffic,
// and the best-effort plumbing that ships them (OTel logs, Kafka, Loki).
package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the backend.
const (
	EventPasswordReset = "password_reset"
	EventHTTPRequest   = "http_request"
	EventGRPCRequest   = "grpc_request"
)

// Event is a single telemetry event. It is serialized as JSON for Kafka and Loki.
type Event struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Source    string          `json:"source"`
	RecordID  string          `json:"record_id,omitempty"`
	Status    string          `json:"status,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEvent returns an event with a fresh id and the current UTC time. metadata is marshaled to JSON;
// a nil metadata or a marshal failure leaves Metadata empty.
func NewEvent(eventType, source string, metadata any) *Event {
	e := &Event{
		ID:        uuid.New().String(),
		EventType: eventType,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			e.Metadata = raw
		}
	}
	return e
}

// EventEmitter emits telemetry events (e.g. to OTel Logs or Kafka). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}

// Multi returns an EventEmitter that forwards each event to every non-nil emitter and returns the
// first error it saw.
func Multi(emitters ...EventEmitter) EventEmitter {
	out := make(multiEmitter, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

type multiEmitter []EventEmitter

func (m multiEmitter) Emit(ctx context.Context, event *Event) error {
	var firstErr error
	for _, e := range m {
		if err := e.Emit(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
