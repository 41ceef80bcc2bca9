package producer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"

	"ai-planner/backend/internal/telemetry"
)

type fakeWriter struct {
	msgs     []kafka.Message
	writeErr error
	closed   int
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("expected a deadline on the write context")
	}
	w.msgs = append(w.msgs, msgs...)
	return w.writeErr
}

func (w *fakeWriter) Close() error {
	w.closed++
	return nil
}

func TestNewKafkaProducer_Disabled(t *testing.T) {
	if p := NewKafkaProducer(nil, "topic"); p != nil {
		t.Error("expected nil producer without brokers")
	}
	if p := NewKafkaProducer([]string{"localhost:9092"}, ""); p != nil {
		t.Error("expected nil producer without topic")
	}
}

func TestNewKafkaProducer_Configured(t *testing.T) {
	p := NewKafkaProducer([]string{"localhost:9092"}, "planner-telemetry")
	if p == nil {
		t.Fatal("expected producer")
	}
	if p.Topic() != "planner-telemetry" {
		t.Errorf("Topic() = %q", p.Topic())
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestKafkaProducer_Emit(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaProducer{writer: w, topic: "t"}
	event := telemetry.NewEvent(telemetry.EventPasswordReset, "recovery", nil)
	event.RecordID = "u1"

	if err := p.Emit(context.Background(), event); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != telemetry.EventPasswordReset {
		t.Errorf("key = %q, want %q", msg.Key, telemetry.EventPasswordReset)
	}
	var got telemetry.Event
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.RecordID != "u1" || got.ID != event.ID {
		t.Errorf("payload = %+v", got)
	}
}

func TestKafkaProducer_EmitError(t *testing.T) {
	w := &fakeWriter{writeErr: errors.New("broker down")}
	p := &KafkaProducer{writer: w, topic: "t"}
	if err := p.Emit(context.Background(), telemetry.NewEvent("x", "y", nil)); err == nil {
		t.Fatal("expected error")
	}
}

func TestKafkaProducer_NilSafety(t *testing.T) {
	var p *KafkaProducer
	if err := p.Emit(context.Background(), telemetry.NewEvent("x", "y", nil)); err != nil {
		t.Errorf("nil Emit: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}

	w := &fakeWriter{}
	p = &KafkaProducer{writer: w}
	if err := p.Emit(context.Background(), nil); err != nil {
		t.Errorf("Emit(nil): %v", err)
	}
	_ = p.Close()
	_ = p.Close()
	if w.closed != 1 {
		t.Errorf("closed = %d, want 1", w.closed)
	}
}
