package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
	"github.com/cvmatch/cvmatch-backend/internal/domain/usecase/auth"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/api/dto"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/api/middleware"
)

const oauthStateCookie = "oauth_state"

// AuthHandler serves registration, login and account recovery endpoints
type AuthHandler struct {
	authService *auth.Service
	frontendURL string
	logger      coreport.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, frontendURL string, logger coreport.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, fmt.Errorf("%w: %s", errs.ErrInvalidRequest, err.Error()))
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, fmt.Errorf("%w: %s", errs.ErrInvalidRequest, err.Error()))
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		Token: session.Token,
		User:  dto.NewUserResponse(session.User),
	})
}

// GoogleLogin handles GET /api/auth/google/login. It sets a one-shot state
// cookie and redirects the browser to the Google consent screen.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state := uuid.NewString()
	c.SetCookie(oauthStateCookie, state, 300, "/", "", true, true)
	c.Redirect(http.StatusTemporaryRedirect, h.authService.GoogleLoginURL(state))
}

// GoogleCallback handles GET /api/auth/google/callback. On success the
// browser is redirected back to the frontend with the session token; on
// failure it is redirected to the frontend login page with an error flag.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	expectedState, err := c.Cookie(oauthStateCookie)
	if err != nil || c.Query("state") != expectedState {
		h.logger.Warn("OAuth callback with bad state", map[string]any{
			"client_ip": c.ClientIP(),
		})
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?error=oauth_state")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", true, true)

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?error=oauth_denied")
		return
	}

	session, err := h.authService.GoogleCallback(c.Request.Context(), code)
	if err != nil {
		h.logger.Error("OAuth callback failed", map[string]any{
			"error": err.Error(),
		})
		c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/login?error=oauth_failed")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/auth/callback?token="+session.Token)
}

// ForgotPassword handles POST /api/auth/forgot-password. The response is
// the same whether or not the email belongs to an account.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, fmt.Errorf("%w: %s", errs.ErrInvalidRequest, err.Error()))
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{
		Message: "If the email exists, a password reset link has been sent",
	})
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, fmt.Errorf("%w: %s", errs.ErrInvalidRequest, err.Error()))
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password updated"})
}

// VerifyEmail handles GET /api/auth/verify-email/:token
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Param("token")
	if err := h.authService.VerifyEmail(c.Request.Context(), token); err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Email verified"})
}
