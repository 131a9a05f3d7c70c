package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	authgate "github.com/kesparza-dev/authgate"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type requestResetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email         string `json:"email"`
	Code          string `json:"code"`
	RecoveryToken string `json:"recovery_token"`
	NewPassword   string `json:"new_password"`
}

const serviceVersion = "1.0.0"

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "authgate",
		"version": serviceVersion,
		"status":  "ok",
	})
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, authgate.ErrValidation)
		return
	}

	result, err := s.engine.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":          "account created",
		"email":            result.Email,
		"username":         result.Username,
		"provisioning_uri": result.ProvisioningURI,
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, authgate.ErrValidation)
		return
	}

	result, err := s.engine.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":        result.Token,
		"username":     result.Username,
		"requires_mfa": result.RequiresMFA,
	})
}

func (s *Server) handleVerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, authgate.ErrValidation)
		return
	}

	result, err := s.engine.VerifyMFA(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "otp verified",
		"token":   result.Token,
	})
}

func (s *Server) handleVerifyToken(c *gin.Context) {
	claims, err := s.engine.VerifyToken(c.GetHeader("Authorization"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email":    claims.Email,
		"username": claims.Username,
		"mfa":      claims.MFAVerified,
	})
}

func (s *Server) handleRequestPasswordReset(c *gin.Context) {
	var req requestResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, authgate.ErrValidation)
		return
	}

	if err := s.engine.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}

	// Same body for known and unknown accounts.
	c.JSON(http.StatusOK, gin.H{"message": "if the account exists, recovery may proceed"})
}

func (s *Server) handleVerifyRecoveryOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, authgate.ErrValidation)
		return
	}

	result, err := s.engine.VerifyRecoveryOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recovery_token": result.RecoveryToken})
}

func (s *Server) handleResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, authgate.ErrValidation)
		return
	}

	err := s.engine.ResetPassword(c.Request.Context(), req.Email, req.Code, req.RecoveryToken, req.NewPassword)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// writeError maps engine sentinels to HTTP statuses with one generic
// message per status.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, gin.H{"error": messageFor(status)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, authgate.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, authgate.ErrInvalidCredentials),
		errors.Is(err, authgate.ErrMFACodeInvalid),
		errors.Is(err, authgate.ErrRecoveryTokenInvalid),
		errors.Is(err, authgate.ErrTokenMalformed),
		errors.Is(err, authgate.ErrTokenExpired),
		errors.Is(err, authgate.ErrTokenSignatureInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, authgate.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, authgate.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, authgate.ErrLoginRateLimited),
		errors.Is(err, authgate.ErrOTPRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not found"
	case http.StatusConflict:
		return "account already exists"
	case http.StatusTooManyRequests:
		return "too many attempts"
	default:
		return "internal error"
	}
}
