package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"ai-planner/backend/internal/telemetry"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type chanEmitter chan *telemetry.Event

func (c chanEmitter) Emit(_ context.Context, ev *telemetry.Event) error {
	c <- ev
	return nil
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(LoggingMiddleware(zap.New(core)))
	r.GET("/x", func(c *gin.Context) {
		assert.NotNil(t, Logger(c, nil))
		c.Status(http.StatusTeapot)
	})

	const incoming = "2b1f4a1e-7c1d-4c55-9a59-0c8f6f7c2d11"
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, incoming, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid\nforged")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid\nforged", w.Header().Get(RequestIDHeader))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	entries := logs.FilterMessage("Request completed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, incoming, entries[0].ContextMap()["request_id"])
	assert.EqualValues(t, http.StatusTeapot, entries[0].ContextMap()["status"])
}

func TestLogger_Fallback(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	fallback := zap.NewNop()
	assert.Same(t, fallback, Logger(c, fallback))
}

func TestTelemetryMiddleware(t *testing.T) {
	em := make(chanEmitter, 4)
	r := gin.New()
	r.Use(LoggingMiddleware(zap.NewNop()))
	r.Use(TelemetryMiddleware(em, nil, map[string]bool{"/healthz": true}))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/operator/reset-password", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/operator/reset-password", nil))

	select {
	case ev := <-em:
		assert.Equal(t, telemetry.EventHTTPRequest, ev.EventType)
		assert.Equal(t, "404", ev.Status)
		var meta httpRequestMetadata
		require.NoError(t, json.Unmarshal(ev.Metadata, &meta))
		assert.Equal(t, "/api/operator/reset-password", meta.Route)
		assert.Equal(t, http.MethodPost, meta.Method)
		assert.NotEmpty(t, meta.RequestID)
	case <-time.After(2 * time.Second):
		t.Fatal("no telemetry event")
	}
	select {
	case ev := <-em:
		t.Errorf("unexpected second event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
