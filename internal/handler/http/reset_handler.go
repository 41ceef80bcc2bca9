package http

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ai-planner/backend/internal/recovery"
)

// Messages shown to the operator console.
const (
	msgPhoneRequired = "Nomor wajib diisi"
	msgPhoneInvalid  = "Nomor tidak valid"
	msgNotFound      = "Nomor tidak ditemukan"
	msgUnavailable   = "Layanan direktori sedang tidak tersedia, coba lagi nanti"
	msgPersistence   = "Gagal menyimpan password baru"
	msgInternal      = "Terjadi kesalahan pada server"
)

// Recoverer runs one account recovery for a raw phone number.
type Recoverer interface {
	Recover(ctx context.Context, raw string) (*recovery.Result, error)
}

type resetRequest struct {
	Nomor phoneField `json:"nomor"`
}

// phoneField accepts a phone number sent as a JSON string or a JSON number.
type phoneField string

func (p *phoneField) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = phoneField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("nomor must be a string or a number")
	}
	if _, err := n.Int64(); err == nil {
		*p = phoneField(n.String())
		return nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) {
		return errors.New("nomor must be a whole number")
	}
	*p = phoneField(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// ResetHandler serves the reset-password endpoints. Users and Operators may be the same type bound
// to different collections.
type ResetHandler struct {
	users     Recoverer
	operators Recoverer
	logger    *zap.Logger
}

// NewResetHandler returns a handler over the users and operator directories.
func NewResetHandler(users, operators Recoverer, logger *zap.Logger) *ResetHandler {
	return &ResetHandler{users: users, operators: operators, logger: logger.Named("reset_handler")}
}

// ResetPassword handles POST /api/operator/reset-password (users directory).
func (h *ResetHandler) ResetPassword(c *gin.Context) {
	h.reset(c, h.users)
}

// ResetPasswordLegacy handles POST /api/operator/reset-password-legacy (operator directory).
// Unlike the route it replaces, the response does not include the generated password.
func (h *ResetHandler) ResetPasswordLegacy(c *gin.Context) {
	h.reset(c, h.operators)
}

func (h *ResetHandler) reset(c *gin.Context, svc Recoverer) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(string(req.Nomor)) == "" {
		RespondWithResetError(c, http.StatusBadRequest, msgPhoneRequired, "invalid_input", err, h.logger)
		return
	}

	res, err := svc.Recover(c.Request.Context(), string(req.Nomor))
	if err != nil {
		status, message, code := mapRecoveryError(err)
		RespondWithResetError(c, status, message, code, err, h.logger)
		return
	}

	notification := "sent"
	if !res.Notified() {
		notification = "failed"
	}
	c.JSON(http.StatusOK, ResetResponse{
		Success:      true,
		Message:      res.Message(),
		Notification: notification,
	})
}

func mapRecoveryError(err error) (int, string, string) {
	switch {
	case errors.Is(err, recovery.ErrInvalidInput):
		return http.StatusBadRequest, msgPhoneInvalid, "invalid_input"
	case errors.Is(err, recovery.ErrNotFound):
		return http.StatusNotFound, msgNotFound, "not_found"
	case errors.Is(err, recovery.ErrUpstreamUnavailable):
		return http.StatusBadGateway, msgUnavailable, "upstream_unavailable"
	case errors.Is(err, recovery.ErrPersistence):
		return http.StatusInternalServerError, msgPersistence, "persistence_error"
	default:
		return http.StatusInternalServerError, msgInternal, "internal_error"
	}
}
