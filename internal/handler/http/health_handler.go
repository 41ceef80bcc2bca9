package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// StatusChecker reports the serving status shared with the gRPC health service.
type StatusChecker interface {
	Status(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus
}

// HealthHandler handles GET /healthz.
type HealthHandler struct {
	checker StatusChecker
}

// NewHealthHandler returns a handler over checker; a nil checker always reports SERVING.
func NewHealthHandler(checker StatusChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Healthz writes {"status": "SERVING"} or 503 with {"status": "NOT_SERVING"}.
func (h *HealthHandler) Healthz(c *gin.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if h.checker != nil {
		status = h.checker.Status(c.Request.Context())
	}
	code := http.StatusOK
	if status != healthpb.HealthCheckResponse_SERVING {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status.String()})
}
