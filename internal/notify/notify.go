// Package notify delivers text messages to phone numbers over WhatsApp (Fonnte) or, in development,
// into an in-memory outbox.
package notify

import (
	"context"
	"fmt"
)

// Gateway sends one message to one recipient. phone is in canonical form (digits, country code first).
type Gateway interface {
	Send(ctx context.Context, phone, message string) (*Delivery, error)
}

// Delivery is the provider's acknowledgement of an accepted message.
type Delivery struct {
	// Provider names the gateway that accepted the message (e.g. "fonnte", "outbox").
	Provider string
	// Detail is the decoded provider response, if any.
	Detail map[string]any
}

// DeliveryError reports a message the provider refused or could not be reached for.
type DeliveryError struct {
	Provider   string
	StatusCode int    // HTTP status; 0 when the request never completed
	Reason     string // provider reason or transport error text
	Body       string // raw provider response, trimmed
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: send failed status=%d reason=%s", e.Provider, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("%s: send failed: %s", e.Provider, e.Reason)
}
