package notify

import (
	"context"
	"sync"
	"time"
)

// DefaultOutboxTTL is how long a message stays readable in the outbox.
const DefaultOutboxTTL = 10 * time.Minute

// Message is a message captured by the Outbox.
type Message struct {
	Phone  string    `json:"phone"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

type outboxEntry struct {
	msg       Message
	expiresAt time.Time
}

// Outbox is a development Gateway: messages are kept in memory, the latest per phone, until they
// expire. Nothing leaves the process. Never enabled when APP_ENV=production.
type Outbox struct {
	mu   sync.RWMutex
	m    map[string]outboxEntry
	ttl  time.Duration
	nowF func() time.Time
}

// NewOutbox returns an empty outbox whose messages expire after ttl (DefaultOutboxTTL when ttl <= 0).
func NewOutbox(ttl time.Duration) *Outbox {
	if ttl <= 0 {
		ttl = DefaultOutboxTTL
	}
	return &Outbox{
		m:    make(map[string]outboxEntry),
		ttl:  ttl,
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Send stores message as the latest message for phone.
func (o *Outbox) Send(ctx context.Context, phone, message string) (*Delivery, error) {
	if phone == "" || message == "" {
		return nil, ErrMissingRecipient
	}
	now := o.nowF()
	o.mu.Lock()
	o.m[phone] = outboxEntry{
		msg:       Message{Phone: phone, Text: message, SentAt: now},
		expiresAt: now.Add(o.ttl),
	}
	o.mu.Unlock()
	return &Delivery{Provider: "outbox"}, nil
}

// Latest returns the last message sent to phone if present and not expired.
func (o *Outbox) Latest(ctx context.Context, phone string) (Message, bool) {
	o.mu.RLock()
	e, ok := o.m[phone]
	o.mu.RUnlock()
	if !ok {
		return Message{}, false
	}
	if !e.expiresAt.After(o.nowF()) {
		o.mu.Lock()
		if cur, ok := o.m[phone]; ok && !cur.expiresAt.After(o.nowF()) {
			delete(o.m, phone)
		}
		o.mu.Unlock()
		return Message{}, false
	}
	return e.msg, true
}
