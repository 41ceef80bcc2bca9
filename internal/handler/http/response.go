package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-planner/backend/internal/handler/http/middleware"
)

// ResetResponse is the body of the reset-password endpoints. It never carries the new password.
type ResetResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Code         string `json:"code,omitempty"`
	Notification string `json:"notification,omitempty"`
}

// ErrorResponse is the body of failed AI and notify calls.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RespondWithResetError writes a failed reset response and logs it on the request logger.
func RespondWithResetError(c *gin.Context, statusCode int, message, errorCode string, err error, logger *zap.Logger) {
	fields := []zap.Field{
		zap.Int("status_code", statusCode),
		zap.String("error_code", errorCode),
		zap.String("path", c.Request.URL.Path),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	log := middleware.Logger(c, logger)
	if statusCode >= 500 {
		log.Error("API error response", fields...)
	} else {
		log.Info("API error response", fields...)
	}
	c.JSON(statusCode, ResetResponse{Success: false, Message: message, Code: errorCode})
}

// RespondWithError writes an ErrorResponse and logs it on the request logger.
func RespondWithError(c *gin.Context, statusCode int, message string, err error, logger *zap.Logger) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	fields := []zap.Field{
		zap.Int("status_code", statusCode),
		zap.String("error_message", message),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	}
	log := middleware.Logger(c, logger)
	if statusCode >= 500 {
		log.Error("API error response", fields...)
	} else {
		log.Info("API error response", fields...)
	}
	c.JSON(statusCode, resp)
}
