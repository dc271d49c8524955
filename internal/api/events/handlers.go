// Package events exposes event and attendee endpoints, including the public
// conflict query. Deletion and attendee removal are creator-gated; RSVP
// changes are self-gated. The authorization decisions live in the service
// layer — handlers only supply the acting user from the request context.
package events

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gatherhub/gatherhub/internal/api/httperr"
	"github.com/gatherhub/gatherhub/internal/db/models"
	"github.com/gatherhub/gatherhub/internal/middleware"
	"github.com/gatherhub/gatherhub/internal/services"
)

// Handler serves the event and attendee endpoints.
type Handler struct {
	events    *services.EventService
	attendees *services.AttendeeService
}

// NewHandler creates a new events handler.
func NewHandler(events *services.EventService, attendees *services.AttendeeService) *Handler {
	return &Handler{events: events, attendees: attendees}
}

type eventRequest struct {
	Title          string    `json:"title" binding:"required"`
	Description    *string   `json:"description"`
	StartTime      time.Time `json:"start_time" binding:"required"`
	EndTime        time.Time `json:"end_time" binding:"required"`
	Capacity       *int      `json:"capacity"`
	Location       *string   `json:"location"`
	OrganizationID *string   `json:"organization_id"`
}

type inviteRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	RSVPStatus string `json:"rsvp_status"`
}

type rsvpRequest struct {
	RSVPStatus string `json:"rsvp_status" binding:"required"`
}

func (r *eventRequest) toModel() *models.Event {
	return &models.Event{
		Title:          r.Title,
		Description:    r.Description,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Capacity:       r.Capacity,
		Location:       r.Location,
		OrganizationID: r.OrganizationID,
	}
}

// CreateEvent handles POST /api/v1/events. The authenticated user becomes
// the event's creator.
func (h *Handler) CreateEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, start_time, and end_time are required"})
		return
	}

	ev := req.toModel()
	ev.CreatedBy = middleware.CurrentUserID(c)

	created, err := h.events.Create(c.Request.Context(), ev)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetEvent handles GET /api/v1/events/:id
func (h *Handler) GetEvent(c *gin.Context) {
	ev, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// ListEvents handles GET /api/v1/events
func (h *Handler) ListEvents(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	eventList, err := h.events.List(c.Request.Context(), limit, offset)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": eventList})
}

// UpdateEvent handles PUT /api/v1/events/:id
func (h *Handler) UpdateEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, start_time, and end_time are required"})
		return
	}

	ev, err := h.events.Update(c.Request.Context(), c.Param("id"), req.toModel())
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// DeleteEvent handles DELETE /api/v1/events/:id. Only the creator may
// delete; anyone else gets 403.
func (h *Handler) DeleteEvent(c *gin.Context) {
	if err := h.events.Delete(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c)); err != nil {
		httperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FindConflicts handles GET /api/v1/events/conflicts?start=&end=. Both
// parameters are RFC 3339 timestamps; the result is every event whose
// half-open interval intersects [start, end).
func (h *Handler) FindConflicts(c *gin.Context) {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must be an RFC 3339 timestamp"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end must be an RFC 3339 timestamp"})
		return
	}

	conflicts, err := h.events.FindConflicting(c.Request.Context(), start, end)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conflicts": conflicts})
}

// InviteAttendee handles POST /api/v1/events/:id/attendees
func (h *Handler) InviteAttendee(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	a, err := h.attendees.Invite(c.Request.Context(), &models.Attendee{
		EventID: c.Param("id"),
		UserID:  req.UserID,
		RSVP:    models.RSVPStatus(req.RSVPStatus),
	})
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

// ListAttendees handles GET /api/v1/events/:id/attendees
func (h *Handler) ListAttendees(c *gin.Context) {
	attendeeList, err := h.attendees.ListByEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendees": attendeeList})
}

// UpdateRSVP handles PUT /api/v1/events/:id/attendees/:userId/rsvp. The
// service rejects the change unless the acting user is the attendee.
func (h *Handler) UpdateRSVP(c *gin.Context) {
	var req rsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rsvp_status is required"})
		return
	}

	eventID, userID := c.Param("id"), c.Param("userId")
	err := h.attendees.UpdateRSVP(c.Request.Context(), eventID, userID,
		middleware.CurrentUserID(c), models.RSVPStatus(req.RSVPStatus))
	if err != nil {
		httperr.Write(c, err)
		return
	}

	a, err := h.attendees.Get(c.Request.Context(), eventID, userID)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// DeleteAttendee handles DELETE /api/v1/events/:id/attendees/:userId. Only
// the event's creator may remove attendees.
func (h *Handler) DeleteAttendee(c *gin.Context) {
	err := h.attendees.Delete(c.Request.Context(), c.Param("id"), c.Param("userId"),
		middleware.CurrentUserID(c))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
