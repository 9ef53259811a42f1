package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"homepath/api/internal/api/handlers"
	"homepath/api/internal/models"
	"homepath/api/internal/services"
)

func setupAuthRouter(otp services.IOTPService, admin services.IAdminService) http.Handler {
	h := handlers.NewAuthHandler(otp, admin, 0, zap.NewNop())
	r := newEngine()
	r.POST("/api/auth/otp/request", h.RequestOTP)
	r.POST("/api/auth/otp/verify", h.VerifyOTP)
	r.POST("/api/admin/login", h.AdminLogin)
	return r
}

func TestAuthHandler_RequestOTP(t *testing.T) {
	mockOTP := new(MockOTPService)
	router := setupAuthRouter(mockOTP, new(MockAdminService))
	mockOTP.On("RequestCode", mock.Anything, "604-555-0100").Return(nil).Once()
	mockOTP.On("RequestCode", mock.Anything, "604-555-0100").Return(services.ErrResendTooSoon).Once()

	w := performRequest(router, "POST", "/api/auth/otp/request", map[string]string{"phoneNumber": "604-555-0100"})
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = performRequest(router, "POST", "/api/auth/otp/request", map[string]string{"phoneNumber": "604-555-0100"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	mockOTP.AssertExpectations(t)
}

func TestAuthHandler_VerifyOTP(t *testing.T) {
	mockOTP := new(MockOTPService)
	router := setupAuthRouter(mockOTP, new(MockAdminService))
	mockOTP.On("VerifyCode", mock.Anything, "+16045550100", "123456").Return("client.jwt", "+16045550100", nil)
	mockOTP.On("VerifyCode", mock.Anything, "+16045550100", "000000").Return("", "", services.ErrInvalidCode)
	mockOTP.On("VerifyCode", mock.Anything, "+16045550100", "111111").Return("", "", services.ErrTooManyAttempts)

	w := performRequest(router, "POST", "/api/auth/otp/verify", map[string]string{"phoneNumber": "+16045550100", "code": "123456"})
	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "client.jwt", data["token"])
	assert.Equal(t, "+16045550100", data["userId"])

	w = performRequest(router, "POST", "/api/auth/otp/verify", map[string]string{"phoneNumber": "+16045550100", "code": "000000"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(router, "POST", "/api/auth/otp/verify", map[string]string{"phoneNumber": "+16045550100", "code": "111111"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestAuthHandler_VerifyOTP_MalformedCode(t *testing.T) {
	mockOTP := new(MockOTPService)
	router := setupAuthRouter(mockOTP, new(MockAdminService))

	w := performRequest(router, "POST", "/api/auth/otp/verify", map[string]string{"phoneNumber": "+16045550100", "code": "12ab"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be exactly 6 characters", fieldsOf(t, decode(t, w))["code"])
	mockOTP.AssertNotCalled(t, "VerifyCode")
}

func TestAuthHandler_AdminLogin(t *testing.T) {
	mockAdmin := new(MockAdminService)
	router := setupAuthRouter(new(MockOTPService), mockAdmin)
	mockAdmin.On("Authenticate", mock.Anything, "ops@homepath.example.com", "correct horse").
		Return("admin.jwt", &models.AdminUser{ID: "admin-1", Email: "ops@homepath.example.com", PasswordHash: "$2a$secret"}, nil)
	mockAdmin.On("Authenticate", mock.Anything, "ops@homepath.example.com", "guess").
		Return("", nil, services.ErrInvalidCredentials)

	w := performRequest(router, "POST", "/api/admin/login", map[string]string{"email": "ops@homepath.example.com", "password": "correct horse"})
	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "admin.jwt", data["token"])
	assert.NotContains(t, data["admin"], "password")

	w = performRequest(router, "POST", "/api/admin/login", map[string]string{"email": "ops@homepath.example.com", "password": "guess"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
