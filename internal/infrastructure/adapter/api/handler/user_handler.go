package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	errs "github.com/cvmatch/cvmatch-backend/internal/domain/error"
	coreport "github.com/cvmatch/cvmatch-backend/internal/domain/port/core"
	"github.com/cvmatch/cvmatch-backend/internal/domain/usecase/user"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/api/dto"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/api/middleware"
)

// UserHandler serves the authenticated account endpoints
type UserHandler struct {
	userService *user.Service
	logger      coreport.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *user.Service, logger coreport.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Me handles GET /api/user/me
func (h *UserHandler) Me(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.WriteError(c, errs.ErrTokenInvalid)
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), current)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProfileResponse{
		User:              dto.NewUserResponse(profile.User),
		RemainingAnalyses: profile.Remaining,
	})
}

// Credits handles GET /api/user/credits
func (h *UserHandler) Credits(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.WriteError(c, errs.ErrTokenInvalid)
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), current)
	if err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CreditsResponse{RemainingAnalyses: profile.Remaining})
}

// Update handles PUT /api/user/update
func (h *UserHandler) Update(c *gin.Context) {
	current, ok := middleware.CurrentUser(c)
	if !ok {
		middleware.WriteError(c, errs.ErrTokenInvalid)
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.WriteError(c, fmt.Errorf("%w: %s", errs.ErrInvalidRequest, err.Error()))
		return
	}

	if err := h.userService.UpdateName(c.Request.Context(), current, req.Name); err != nil {
		middleware.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(current))
}
