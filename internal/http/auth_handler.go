package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dataset-market/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de autenticación.
type AuthHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
}

func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		authServ: authServ,
	}
}

// Register maneja POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email           string `json:"email" binding:"required,email"`
		Username        string `json:"username" binding:"required"`
		Password        string `json:"password" binding:"required,min=8"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.authServ.Register(c.Request.Context(), service.RegisterInput{
		Email:           req.Email,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.writeAuthError(c, err, "register")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user created, verification code sent by email"})
}

// VerifyRegister maneja POST /auth/register/verify.
func (h *AuthHandler) VerifyRegister(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"omitempty,email"`
		Username string `json:"username"`
		Code     string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid verify register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	tokens, err := h.authServ.VerifyRegisterOTP(c.Request.Context(), service.VerifyOTPInput{
		Email:    req.Email,
		Username: req.Username,
		Code:     req.Code,
	})
	if err != nil {
		h.writeAuthError(c, err, "verify register otp")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "account verified", "tokens": tokens})
}

// ResendRegisterOTP maneja POST /auth/register/resend.
func (h *AuthHandler) ResendRegisterOTP(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid resend otp request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.authServ.ResendRegisterOTP(c.Request.Context(), req.Identifier); err != nil {
		h.writeAuthError(c, err, "resend register otp")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "new verification code sent by email"})
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	tokens, err := h.authServ.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		h.writeAuthError(c, err, "login")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "login ok", "tokens": tokens})
}

// RefreshToken maneja POST /auth/refresh.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid refresh request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	tokens, err := h.authServ.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeAuthError(c, err, "refresh token")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "tokens refreshed", "tokens": tokens})
}

// RequestPasswordReset maneja POST /auth/forgot-password/request.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Identifier string `json:"identifier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid password reset request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.authServ.RequestPasswordReset(c.Request.Context(), req.Identifier); err != nil {
		h.writeAuthError(c, err, "request password reset")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password reset code sent by email"})
}

// VerifyResetOTP maneja POST /auth/forgot-password/verify.
func (h *AuthHandler) VerifyResetOTP(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"omitempty,email"`
		Username string `json:"username"`
		Code     string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid verify reset otp request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.authServ.VerifyResetOTP(c.Request.Context(), service.VerifyOTPInput{
		Email:    req.Email,
		Username: req.Username,
		Code:     req.Code,
	})
	if err != nil {
		h.writeAuthError(c, err, "verify reset otp")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "code valid, proceed to set a new password"})
}

// ResetPassword maneja POST /auth/forgot-password/reset.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Identifier         string `json:"identifier" binding:"required"`
		Code               string `json:"code" binding:"required"`
		NewPassword        string `json:"new_password" binding:"required,min=8"`
		ConfirmNewPassword string `json:"confirm_new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reset password request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.authServ.ResetPassword(c.Request.Context(), service.ResetPasswordInput{
		Identifier:         req.Identifier,
		Code:               req.Code,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	})
	if err != nil {
		h.writeAuthError(c, err, "reset password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated, please log in again"})
}

func (h *AuthHandler) writeAuthError(c *gin.Context, err error, op string) {
	var cooldown *service.CooldownError
	switch {
	case errors.As(err, &cooldown):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":               cooldown.Error(),
			"retry_after_seconds": cooldown.RemainingSeconds,
		})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	case errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrNoPassword),
		errors.Is(err, service.ErrSamePassword),
		errors.Is(err, service.ErrOTPInvalid),
		errors.Is(err, service.ErrOTPExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrAlreadyVerified):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrNotVerified),
		errors.Is(err, service.ErrRefreshInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmailSendFailure):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "email delivery unavailable"})
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
