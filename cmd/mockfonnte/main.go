// mockfonnte is a local stand-in for the Fonnte WhatsApp API. It accepts POST /messages and
// POST /send, logs the target and answers with a success body. Point FONNTE_BASE_URL at it.
package main

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-planner/backend/internal/config"
	"ai-planner/backend/internal/logger"
)

type sendRequest struct {
	Target      string `json:"target" form:"target"`
	Message     string `json:"message" form:"message"`
	CountryCode string `json:"countryCode" form:"countryCode"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog, err := logger.NewLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.IsProduction() {
		zlog.Fatal("mockfonnte must not run with APP_ENV=production")
	}
	gin.SetMode(gin.ReleaseMode)
	zlog.Info("mock fonnte listening", zap.String("addr", cfg.MockFonnteAddr))
	if err := http.ListenAndServe(cfg.MockFonnteAddr, newRouter(zlog)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zlog.Fatal("mock fonnte stopped", zap.Error(err))
	}
}

func newRouter(logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	h := func(c *gin.Context) {
		var req sendRequest
		if err := c.ShouldBind(&req); err != nil || req.Target == "" {
			c.JSON(http.StatusBadRequest, gin.H{"status": false, "reason": "target invalid"})
			return
		}
		logger.Info("received message",
			zap.String("path", c.FullPath()),
			zap.String("target", req.Target),
			zap.Int("message_len", len(req.Message)),
		)
		c.JSON(http.StatusOK, gin.H{
			"status":   true,
			"success":  true,
			"provider": "mock-fonnte",
			"detail":   "success! message in queue",
			"target":   []string{req.Target},
		})
	}
	r.POST("/messages", h)
	r.POST("/send", h)
	return r
}
