// Package orgs exposes organization and membership endpoints. Creating an
// organization also creates the creator's ACTIVE membership atomically; the
// split between AlreadyExists (name or pair taken) and InvalidArgument
// (malformed input) is decided in the service layer and surfaced here via
// httperr.
package orgs

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gatherhub/gatherhub/internal/api/httperr"
	"github.com/gatherhub/gatherhub/internal/db/models"
	"github.com/gatherhub/gatherhub/internal/middleware"
	"github.com/gatherhub/gatherhub/internal/services"
)

// Handler serves the organization and membership endpoints.
type Handler struct {
	orgs        *services.OrganizationService
	memberships *services.MembershipService
}

// NewHandler creates a new orgs handler.
func NewHandler(orgs *services.OrganizationService, memberships *services.MembershipService) *Handler {
	return &Handler{orgs: orgs, memberships: memberships}
}

type createOrgRequest struct {
	Name string `json:"name" binding:"required"`
}

type updateOrgRequest struct {
	Name string `json:"name" binding:"required"`
}

type createMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Status string `json:"status"`
}

type updateMemberRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateOrganization handles POST /api/v1/organizations. The authenticated
// user becomes the creator and its first ACTIVE member.
func (h *Handler) CreateOrganization(c *gin.Context) {
	var req createOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	org, err := h.orgs.Create(c.Request.Context(), req.Name, middleware.CurrentUserID(c))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, org)
}

// GetOrganization handles GET /api/v1/organizations/:id
func (h *Handler) GetOrganization(c *gin.Context) {
	org, err := h.orgs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

// ListOrganizations handles GET /api/v1/organizations
func (h *Handler) ListOrganizations(c *gin.Context) {
	limit, offset := pagination(c)
	orgList, err := h.orgs.List(c.Request.Context(), limit, offset)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizations": orgList})
}

// UpdateOrganization handles PUT /api/v1/organizations/:id
func (h *Handler) UpdateOrganization(c *gin.Context) {
	var req updateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	org, err := h.orgs.Update(c.Request.Context(), c.Param("id"), req.Name, middleware.CurrentUserID(c))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, org)
}

// DeleteOrganization handles DELETE /api/v1/organizations/:id
func (h *Handler) DeleteOrganization(c *gin.Context) {
	if err := h.orgs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateMember handles POST /api/v1/organizations/:id/members. Any of the
// three statuses may be supplied; it defaults to ACTIVE.
func (h *Handler) CreateMember(c *gin.Context) {
	var req createMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	m, err := h.memberships.Create(c.Request.Context(), c.Param("id"), req.UserID, models.MembershipStatus(req.Status))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// ListMembers handles GET /api/v1/organizations/:id/members
func (h *Handler) ListMembers(c *gin.Context) {
	members, err := h.memberships.ListByOrg(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// UpdateMember handles PUT /api/v1/organizations/:id/members/:userId.
// Only ACTIVE and SUSPENDED are accepted here: INVITED is an initial state
// that cannot be re-entered through the update endpoint.
func (h *Handler) UpdateMember(c *gin.Context) {
	var req updateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	status := models.MembershipStatus(req.Status)
	if status != models.MembershipActive && status != models.MembershipSuspended {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be ACTIVE or SUSPENDED"})
		return
	}

	m, err := h.memberships.UpdateStatus(c.Request.Context(), c.Param("id"), c.Param("userId"), status)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// DeleteMember handles DELETE /api/v1/organizations/:id/members/:userId
func (h *Handler) DeleteMember(c *gin.Context) {
	if err := h.memberships.Delete(c.Request.Context(), c.Param("id"), c.Param("userId")); err != nil {
		httperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// pagination reads limit/offset query parameters with sane bounds.
func pagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
