// Package server builds the gRPC server that exposes backend health.
package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	healthhandler "ai-planner/backend/internal/health/handler"
	"ai-planner/backend/internal/server/interceptors"
	"ai-planner/backend/internal/telemetry"
)

// Deps holds optional dependencies for the gRPC server.
type Deps struct {
	// Health answers grpc.health.v1.Health. If nil, a server without a pinger (always SERVING) is used.
	Health *healthhandler.Server
	// Emitter receives a grpc_request event per RPC. If nil, no events are emitted.
	Emitter telemetry.EventEmitter
	Logger  *zap.Logger
}

// skipTelemetry lists methods polled by orchestrators; emitting for them would flood the pipeline.
var skipTelemetry = map[string]bool{
	healthpb.Health_Check_FullMethodName: true,
	healthpb.Health_Watch_FullMethodName: true,
}

// NewServer returns a gRPC server with OTel instrumentation, the telemetry interceptor, the health
// service and reflection registered.
func NewServer(deps Deps) *grpc.Server {
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(interceptors.TelemetryUnary(deps.Emitter, deps.Logger, skipTelemetry)),
	)
	RegisterServices(s, deps)
	reflection.Register(s)
	return s
}

// RegisterServices registers the health service with the given registrar.
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	h := deps.Health
	if h == nil {
		h = healthhandler.NewServer(nil, deps.Logger)
	}
	healthpb.RegisterHealthServer(s, h)
}
