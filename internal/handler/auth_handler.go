package handler

import (
	"errors"
	"log"
	"net/http"

	"heritage_auth/internal/model"
	"heritage_auth/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService service.AuthService
	otpService  service.OTPService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, otpService service.OTPService) *AuthHandler {
	return &AuthHandler{authService: authService, otpService: otpService}
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields), errors.Is(err, service.ErrWeakPassword):
			fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserAlreadyExists):
			fail(c, http.StatusConflict, err.Error())
		default:
			log.Printf("Error during registration: %v", err)
			fail(c, http.StatusInternalServerError, "failed to register user")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user.Public(),
		"token":   token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			fail(c, http.StatusBadRequest, "email and password required")
		case errors.Is(err, service.ErrInvalidCredentials):
			fail(c, http.StatusUnauthorized, err.Error())
		default:
			log.Printf("Error during login: %v", err)
			fail(c, http.StatusInternalServerError, "failed to login")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user.Public(),
		"token":   token,
	})
}

// List returns all users' public view. Gated behind a valid bearer token by
// route registration.
func (h *AuthHandler) List(c *gin.Context) {
	entries, err := h.authService.List(c.Request.Context())
	if err != nil {
		log.Printf("Error listing users: %v", err)
		fail(c, http.StatusInternalServerError, "failed to list users")
		return
	}
	if entries == nil {
		entries = []model.UserListEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": entries})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		fail(c, http.StatusBadRequest, "email required")
		return
	}

	if _, err := h.otpService.Initiate(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrNoSuchAccount) {
			fail(c, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("Error initiating password reset: %v", err)
		fail(c, http.StatusInternalServerError, "failed to initiate password reset")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "otp generated and (simulated) sent to email"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.OTP == "" {
		fail(c, http.StatusBadRequest, "email and otp required")
		return
	}

	if err := h.otpService.VerifyAndReset(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword), errors.Is(err, service.ErrInvalidOTP), errors.Is(err, service.ErrExpiredOTP):
			fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNoSuchAccount):
			fail(c, http.StatusNotFound, err.Error())
		default:
			log.Printf("Error resetting password: %v", err)
			fail(c, http.StatusInternalServerError, "failed to reset password")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "password reset successful"})
}

// DeleteUser removes an account by email (admin-only administrative action)
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	email := c.Param("email")
	if email == "" {
		fail(c, http.StatusBadRequest, "email required")
		return
	}

	if err := h.authService.DeleteUser(c.Request.Context(), email); err != nil {
		if errors.Is(err, service.ErrNoSuchAccount) {
			fail(c, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("Error deleting user: %v", err)
		fail(c, http.StatusInternalServerError, "failed to delete user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "user deleted"})
}

// Ping is a liveness probe
func (h *AuthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// RegisterAuthRoutes registers the HTTP surface under the /api base path.
// The list and delete endpoints require a valid bearer token; delete
// additionally requires the admin role.
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, adminMW gin.HandlerFunc) {
	rg.GET("/ping", h.Ping)

	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/forgot", h.ForgotPassword)
		authGroup.POST("/reset", h.ResetPassword)
		authGroup.GET("/list", authMW, h.List)
		authGroup.DELETE("/users/:email", authMW, adminMW, h.DeleteUser)
	}
}
