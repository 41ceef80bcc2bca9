package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultFonnteBaseURL is the hosted Fonnte API.
	DefaultFonnteBaseURL = "https://api.fonnte.com"
	defaultCountryCode   = "62"
	defaultAuthScheme    = "Bearer"
	defaultTimeout       = 10 * time.Second
	maxBodyLog           = 512
)

// ErrMissingRecipient is returned when phone or message is empty.
var ErrMissingRecipient = errors.New("fonnte: phone and message are required")

// FonnteClient sends WhatsApp messages via the Fonnte API.
type FonnteClient struct {
	APIKey      string
	BaseURL     string
	AuthScheme  string
	CountryCode string
	HTTPClient  *http.Client
}

// NewFonnteClient returns a client for the given API key. Empty baseURL, authScheme, and countryCode
// fall back to the hosted API, "Bearer", and "62".
func NewFonnteClient(apiKey, baseURL, authScheme, countryCode string) *FonnteClient {
	if baseURL == "" {
		baseURL = DefaultFonnteBaseURL
	}
	if authScheme == "" {
		authScheme = defaultAuthScheme
	}
	if countryCode == "" {
		countryCode = defaultCountryCode
	}
	return &FonnteClient{
		APIKey:      apiKey,
		BaseURL:     strings.TrimSuffix(baseURL, "/"),
		AuthScheme:  authScheme,
		CountryCode: countryCode,
		HTTPClient:  &http.Client{Timeout: defaultTimeout},
	}
}

// Endpoint returns the send URL. A local mock (localhost or port 5000) exposes /messages; the hosted
// provider exposes /send.
func (c *FonnteClient) Endpoint() string {
	if strings.Contains(c.BaseURL, "localhost") || strings.Contains(c.BaseURL, ":5000") {
		return c.BaseURL + "/messages"
	}
	return c.BaseURL + "/send"
}

type fonnteRequest struct {
	Target      string `json:"target"`
	Message     string `json:"message"`
	CountryCode string `json:"countryCode"`
}

// Send posts message to phone. A non-2xx status, or a 2xx body with "status": false, yields a
// *DeliveryError carrying the provider's reason. Does not log the message, which may hold a credential.
func (c *FonnteClient) Send(ctx context.Context, phone, message string) (*Delivery, error) {
	if c.APIKey == "" {
		return nil, &DeliveryError{Provider: "fonnte", Reason: "API key not configured"}
	}
	if phone == "" || message == "" {
		return nil, ErrMissingRecipient
	}
	raw, err := json.Marshal(fonnteRequest{Target: phone, Message: message, CountryCode: c.CountryCode})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", strings.TrimSpace(c.AuthScheme+" "+c.APIKey))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &DeliveryError{Provider: "fonnte", Reason: err.Error()}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var detail map[string]any
	_ = json.Unmarshal(body, &detail)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &DeliveryError{
			Provider:   "fonnte",
			StatusCode: resp.StatusCode,
			Reason:     reasonOf(detail, resp.Status),
			Body:       truncate(string(body)),
		}
	}
	if accepted, isBool := detail["status"].(bool); isBool && !accepted {
		return nil, &DeliveryError{
			Provider:   "fonnte",
			StatusCode: resp.StatusCode,
			Reason:     reasonOf(detail, "rejected by provider"),
			Body:       truncate(string(body)),
		}
	}
	return &Delivery{Provider: "fonnte", Detail: detail}, nil
}

func reasonOf(detail map[string]any, fallback string) string {
	for _, k := range []string{"reason", "detail", "message"} {
		if s, ok := detail[k].(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

func truncate(s string) string {
	if len(s) > maxBodyLog {
		return s[:maxBodyLog]
	}
	return s
}
