package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-planner/backend/internal/notify"
	"ai-planner/backend/internal/phone"
)

// Sender delivers a message to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, message string) (*notify.Delivery, error)
}

const (
	msgInvalidBody     = "invalid JSON body"
	msgRelayIncomplete = "to and message required"
)

type notifyRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// NotifyHandler relays operator messages through the WhatsApp gateway. It is mounted only when
// NOTIFY_RELAY_ENABLED is set.
type NotifyHandler struct {
	gateway Sender
	logger  *zap.Logger
}

// NewNotifyHandler returns a handler over gateway.
func NewNotifyHandler(gateway Sender, logger *zap.Logger) *NotifyHandler {
	return &NotifyHandler{gateway: gateway, logger: logger.Named("notify_handler")}
}

// Send handles POST /api/notify/fonnte.
func (h *NotifyHandler) Send(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, http.StatusBadRequest, msgInvalidBody, err, h.logger)
		return
	}
	to := phone.Normalize(req.To)
	if to == "" || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgRelayIncomplete})
		return
	}
	delivery, err := h.gateway.Send(c.Request.Context(), to, req.Message)
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, "Fonnte service error", err, h.logger)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "provider": delivery.Provider, "data": delivery.Detail})
}
