package notify

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestOutbox_SendAndLatest(t *testing.T) {
	o := NewOutbox(time.Minute)
	ctx := context.Background()

	d, err := o.Send(ctx, "628123456789", "first")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if d.Provider != "outbox" {
		t.Errorf("Provider = %q, want outbox", d.Provider)
	}
	if _, err := o.Send(ctx, "628123456789", "second"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	msg, ok := o.Latest(ctx, "628123456789")
	if !ok {
		t.Fatal("Latest should return the message after Send")
	}
	if msg.Text != "second" {
		t.Errorf("Text = %q, want %q", msg.Text, "second")
	}
	if msg.SentAt.IsZero() {
		t.Error("SentAt should be set")
	}
}

func TestOutbox_LatestMissing(t *testing.T) {
	o := NewOutbox(0)
	if o.ttl != DefaultOutboxTTL {
		t.Errorf("ttl = %v, want %v", o.ttl, DefaultOutboxTTL)
	}
	if _, ok := o.Latest(context.Background(), "6200"); ok {
		t.Error("Latest should return false for unknown phone")
	}
}

func TestOutbox_Expired(t *testing.T) {
	o := NewOutbox(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	o.nowF = func() time.Time { return now }
	ctx := context.Background()

	if _, err := o.Send(ctx, "62811", "code"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	now = now.Add(2 * time.Minute)

	if _, ok := o.Latest(ctx, "62811"); ok {
		t.Error("Latest should return false for expired message")
	}
	o.mu.RLock()
	_, present := o.m["62811"]
	o.mu.RUnlock()
	if present {
		t.Error("expired entry should be removed")
	}
}

func TestOutbox_SendValidation(t *testing.T) {
	o := NewOutbox(time.Minute)
	if _, err := o.Send(context.Background(), "", "x"); err != ErrMissingRecipient {
		t.Errorf("err = %v, want ErrMissingRecipient", err)
	}
	if _, err := o.Send(context.Background(), "62", ""); err != ErrMissingRecipient {
		t.Errorf("err = %v, want ErrMissingRecipient", err)
	}
}

func TestOutbox_ConcurrentAccess(t *testing.T) {
	o := NewOutbox(time.Minute)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		phone := "6281" + strconv.Itoa(i)
		go func() {
			defer wg.Done()
			_, _ = o.Send(ctx, phone, "123456")
		}()
		go func() {
			defer wg.Done()
			o.Latest(ctx, phone)
		}()
	}
	wg.Wait()
}
