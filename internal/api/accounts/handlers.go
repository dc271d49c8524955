// Package accounts exposes user registration, login, and profile endpoints.
package accounts

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gatherhub/gatherhub/internal/api/httperr"
	"github.com/gatherhub/gatherhub/internal/auth"
	"github.com/gatherhub/gatherhub/internal/config"
	"github.com/gatherhub/gatherhub/internal/db/models"
	"github.com/gatherhub/gatherhub/internal/middleware"
	"github.com/gatherhub/gatherhub/internal/services"
)

// Handler serves the account endpoints.
type Handler struct {
	users       *services.UserService
	memberships *services.MembershipService
	authCfg     config.AuthConfig
}

// NewHandler creates a new accounts handler.
func NewHandler(users *services.UserService, memberships *services.MembershipService, authCfg config.AuthConfig) *Handler {
	return &Handler{users: users, memberships: memberships, authCfg: authCfg}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	Password    string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateUserRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

// userResponse strips the password hash from API responses.
type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Active      bool   `json:"active"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, Active: u.Active}
}

// Register handles POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, display_name, and password are required"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, h.authCfg.TokenTTL)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": toUserResponse(user)})
}

// GetUser handles GET /api/v1/users/:id
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateUser handles PUT /api/v1/users/:id. Users may only update their own
// profile; the display name is the only mutable attribute.
func (h *Handler) UpdateUser(c *gin.Context) {
	id := c.Param("id")
	if middleware.CurrentUserID(c) != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "users may only update their own profile"})
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "display_name is required"})
		return
	}

	if err := h.users.UpdateDisplayName(c.Request.Context(), id, req.DisplayName); err != nil {
		httperr.Write(c, err)
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// ListUserMemberships handles GET /api/v1/users/:id/memberships
func (h *Handler) ListUserMemberships(c *gin.Context) {
	memberships, err := h.memberships.ListByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memberships": memberships})
}
