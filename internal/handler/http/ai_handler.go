package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-planner/backend/internal/planner"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// AIHandler serves the planning assistant endpoints.
type AIHandler struct {
	generator planner.Generator
	started   time.Time
	logger    *zap.Logger
}

// NewAIHandler returns a handler over generator. started is the process start time reported by Ping.
func NewAIHandler(generator planner.Generator, started time.Time, logger *zap.Logger) *AIHandler {
	if generator == nil {
		generator = planner.Unconfigured{}
	}
	return &AIHandler{generator: generator, started: started, logger: logger.Named("ai_handler")}
}

// GenerateSchedule handles POST /api/ai/generate-schedule.
func (h *AIHandler) GenerateSchedule(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "prompt is required in request body"})
		return
	}
	gen, err := h.generator.Generate(c.Request.Context(), req.Prompt, planner.ScheduleOptions())
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, "AI service error", err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ai": gen})
}

// ListModels handles GET /api/ai/models.
func (h *AIHandler) ListModels(c *gin.Context) {
	models, err := h.generator.ListModels(c.Request.Context())
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, "Models list error", err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": models})
}

// Ping handles GET /api/ai/ping.
func (h *AIHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "uptime": time.Since(h.started).Seconds()})
}
