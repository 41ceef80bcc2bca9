package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-planner/backend/internal/notify"
	"ai-planner/backend/internal/phone"
)

// OutboxReader returns the last message sent to a phone number by the development gateway.
type OutboxReader interface {
	Latest(ctx context.Context, phone string) (notify.Message, bool)
}

// DevHandler exposes the development outbox. It is only routed when NOTIFY_DRIVER=outbox.
type DevHandler struct {
	outbox OutboxReader
}

// NewDevHandler returns a handler over outbox.
func NewDevHandler(outbox OutboxReader) *DevHandler {
	return &DevHandler{outbox: outbox}
}

// LatestMessage handles GET /dev/outbox/:phone.
func (h *DevHandler) LatestMessage(c *gin.Context) {
	msg, ok := h.outbox.Latest(c.Request.Context(), phone.Normalize(c.Param("phone")))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no message for this number"})
		return
	}
	c.JSON(http.StatusOK, msg)
}
