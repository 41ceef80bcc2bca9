// Package producer defines the interface for emitting telemetry events to a broker (Kafka).
package producer

import (
	"context"

	"ai-planner/backend/internal/telemetry"
)

// Producer emits telemetry events. Callers use it best-effort: log and ignore errors.
// Every Producer is also a telemetry.EventEmitter.
type Producer interface {
	// Emit sends a single telemetry event. Implementations may block briefly; use telemetry.EmitAsync from handlers.
	Emit(ctx context.Context, event *telemetry.Event) error
	// Close releases resources (e.g. Kafka writer). Safe to call if already closed.
	Close() error
}

var (
	_ Producer               = (*KafkaProducer)(nil)
	_ telemetry.EventEmitter = Producer(nil)
)
