package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homepath/api/internal/services"
)

// AuthHandler signs clients in by text message code and admins by password.
type AuthHandler struct {
	responder
	otpService   services.IOTPService
	adminService services.IAdminService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(otpService services.IOTPService, adminService services.IAdminService, timeout time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		responder:    newResponder(logger, "auth", timeout),
		otpService:   otpService,
		adminService: adminService,
	}
}

// RequestOTP handles POST /api/auth/otp/request.
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var in services.OTPRequestInput
	if !bind(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.otpService.RequestCode(ctx, in.PhoneNumber); err != nil {
		h.serviceError(c, err, "otp request failed")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

// VerifyOTP handles POST /api/auth/otp/verify and returns a client token with
// the user id the client's journey progress is kept under.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var in services.OTPVerifyInput
	if !bind(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	token, userID, err := h.otpService.VerifyCode(ctx, in.PhoneNumber, in.Code)
	if err != nil {
		h.serviceError(c, err, "otp verify failed")
		return
	}
	ok(c, http.StatusOK, gin.H{"token": token, "userId": userID})
}

// AdminLogin handles POST /api/admin/login.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var in services.AdminLoginInput
	if !bind(c, &in) {
		return
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	token, admin, err := h.adminService.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		h.serviceError(c, err, "admin login failed")
		return
	}
	ok(c, http.StatusOK, gin.H{"token": token, "admin": admin})
}
