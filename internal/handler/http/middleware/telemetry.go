package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-planner/backend/internal/telemetry"
)

// httpRequestMetadata is the JSON shape stored in Event.Metadata for http_request events.
type httpRequestMetadata struct {
	Method     string `json:"method"`
	Route      string `json:"route"`
	StatusCode int    `json:"status_code"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
	RequestID  string `json:"request_id,omitempty"`
}

// TelemetryMiddleware emits an http_request event after each request. Best-effort; a nil emitter
// disables it. Paths in skip (e.g. /healthz) are not reported.
func TelemetryMiddleware(emitter telemetry.EventEmitter, logger *zap.Logger, skip map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if emitter == nil || skip[c.Request.URL.Path] {
			return
		}
		status := c.Writer.Status()
		event := telemetry.NewEvent(telemetry.EventHTTPRequest, "http_middleware", httpRequestMetadata{
			Method:     c.Request.Method,
			Route:      c.FullPath(),
			StatusCode: status,
			DurationMs: time.Since(start).Milliseconds(),
			ClientIP:   c.ClientIP(),
			RequestID:  c.GetString(RequestIDKey),
		})
		event.Status = strconv.Itoa(status)
		telemetry.EmitAsync(emitter, logger, event)
	}
}
