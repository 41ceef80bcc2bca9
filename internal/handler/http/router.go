// Package http is the gin HTTP API of the backend.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-planner/backend/internal/handler/http/middleware"
	"ai-planner/backend/internal/planner"
	"ai-planner/backend/internal/telemetry"
)

// Banner is the body of GET /.
const Banner = "AI Planner Backend is running"

// Deps holds what the router needs. Users and Operators are required; the rest are optional.
type Deps struct {
	Users     Recoverer
	Operators Recoverer
	Generator planner.Generator
	// Relay backs POST /api/notify/fonnte; the route is not registered when nil.
	Relay Sender
	// Outbox enables GET /dev/outbox/:phone when set.
	Outbox  OutboxReader
	Health  StatusChecker
	Emitter telemetry.EventEmitter
	Started time.Time
	Logger  *zap.Logger
}

// telemetrySkip lists paths polled by orchestrators.
var telemetrySkip = map[string]bool{"/healthz": true}

// SetupRouter builds the gin engine with middleware and all routes.
func SetupRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Started.IsZero() {
		deps.Started = time.Now()
	}

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CorsMiddleware())
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.TelemetryMiddleware(deps.Emitter, logger, telemetrySkip))

	resetHandler := NewResetHandler(deps.Users, deps.Operators, logger)
	aiHandler := NewAIHandler(deps.Generator, deps.Started, logger)
	healthHandler := NewHealthHandler(deps.Health)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, Banner)
	})
	router.GET("/healthz", healthHandler.Healthz)

	api := router.Group("/api")
	{
		operator := api.Group("/operator")
		{
			operator.POST("/reset-password", resetHandler.ResetPassword)
			operator.POST("/reset-password-legacy", resetHandler.ResetPasswordLegacy)
		}

		ai := api.Group("/ai")
		{
			ai.POST("/generate-schedule", aiHandler.GenerateSchedule)
			ai.GET("/models", aiHandler.ListModels)
			ai.GET("/ping", aiHandler.Ping)
		}

		if deps.Relay != nil {
			notifyHandler := NewNotifyHandler(deps.Relay, logger)
			api.POST("/notify/fonnte", notifyHandler.Send)
		}
	}

	if deps.Outbox != nil {
		devHandler := NewDevHandler(deps.Outbox)
		router.GET("/dev/outbox/:phone", devHandler.LatestMessage)
	}

	router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not Found")
	})
	return router
}
