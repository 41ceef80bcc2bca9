// Package handler implements the standard gRPC health service for the backend.
package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the health service name reported for the recovery backend. The empty name
// (overall server health) is answered the same way.
const ServiceName = "aiplanner.Backend"

const pingTimeout = 3 * time.Second

// Pinger checks a dependency (the directory store).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server implements grpc.health.v1.Health. Check returns NOT_SERVING when the pinger fails;
// Watch and List stay unimplemented.
type Server struct {
	healthpb.UnimplementedHealthServer
	pinger Pinger
	logger *zap.Logger
}

// NewServer returns a health server. pinger and logger may be nil; a nil pinger always reports SERVING.
func NewServer(pinger Pinger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{pinger: pinger, logger: logger}
}

// Check reports readiness for the empty service name or ServiceName.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}
	return &healthpb.HealthCheckResponse{Status: s.Status(ctx)}, nil
}

// Status pings the dependency and maps the result to a serving status. Also used by GET /healthz.
func (s *Server) Status(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	if s.pinger == nil {
		return healthpb.HealthCheckResponse_SERVING
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.pinger.Ping(ctx); err != nil {
		s.logger.Warn("health: directory ping failed", zap.Error(err))
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}
