// Package api assembles the Gin engine: repositories, services, middleware,
// and route registration all happen here so cmd/server stays thin.
package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/gatherhub/gatherhub/internal/api/accounts"
	"github.com/gatherhub/gatherhub/internal/api/events"
	"github.com/gatherhub/gatherhub/internal/api/orgs"
	"github.com/gatherhub/gatherhub/internal/config"
	"github.com/gatherhub/gatherhub/internal/db/repositories"
	"github.com/gatherhub/gatherhub/internal/jobs"
	"github.com/gatherhub/gatherhub/internal/middleware"
	"github.com/gatherhub/gatherhub/internal/services"
)

// Background bundles the long-running pieces the router starts so the server
// can stop them on shutdown.
type Background struct {
	Stats        *jobs.StatsCollector
	redisLimiter *middleware.RedisRateLimiter
	memLimiter   *middleware.RateLimiter
}

// Start launches the background workers; they stop when ctx is cancelled.
func (b *Background) Start(ctx context.Context) {
	if b.Stats != nil {
		b.Stats.Start(ctx)
	}
}

// Close releases limiter resources.
func (b *Background) Close() {
	if b.memLimiter != nil {
		b.memLimiter.Stop()
	}
	if b.redisLimiter != nil {
		b.redisLimiter.Close() //nolint:errcheck
	}
}

// NewRouter builds the Gin engine with all middleware and routes registered.
func NewRouter(cfg *config.Config, db *sql.DB) (*gin.Engine, *Background, error) {
	// Event and attendee repositories run on sqlx over the same pool.
	sqlxDB := sqlx.NewDb(db, "postgres")

	userRepo := repositories.NewUserRepository(db)
	orgRepo := repositories.NewOrganizationRepository(db)
	memberRepo := repositories.NewMembershipRepository(db)
	eventRepo := repositories.NewEventRepository(sqlxDB)
	attendeeRepo := repositories.NewAttendeeRepository(sqlxDB)
	auditRepo := repositories.NewAuditRepository(db)

	userSvc := services.NewUserService(userRepo)
	orgSvc := services.NewOrganizationService(db, orgRepo, memberRepo, userRepo)
	memberSvc := services.NewMembershipService(db, memberRepo)
	eventSvc := services.NewEventService(sqlxDB, eventRepo, orgRepo,
		services.ConflictPolicy(cfg.Events.ConflictPolicy))
	attendeeSvc := services.NewAttendeeService(attendeeRepo, eventRepo, userRepo, memberRepo)

	accountsHandler := accounts.NewHandler(userSvc, memberSvc, cfg.Auth)
	orgsHandler := orgs.NewHandler(orgSvc, memberSvc)
	eventsHandler := events.NewHandler(eventSvc, attendeeSvc)

	bg := &Background{
		Stats: jobs.NewStatsCollector(userRepo, orgRepo, memberRepo, eventRepo, attendeeRepo,
			cfg.Telemetry.StatsInterval),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))

	if cfg.Security.RateLimiting.Enabled {
		limitMW, err := buildRateLimiter(cfg.Security.RateLimiting, bg)
		if err != nil {
			return nil, nil, err
		}
		router.Use(limitMW)
	}

	if cfg.Audit.Enabled {
		router.Use(middleware.AuditMiddleware(cfg.Audit, auditRepo))
	}

	router.GET("/healthz", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Unauthenticated: registration and login.
	v1.POST("/auth/register", accountsHandler.Register)
	v1.POST("/auth/login", accountsHandler.Login)

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware())

	authed.GET("/users/:id", accountsHandler.GetUser)
	authed.PUT("/users/:id", accountsHandler.UpdateUser)
	authed.GET("/users/:id/memberships", accountsHandler.ListUserMemberships)

	authed.POST("/organizations", orgsHandler.CreateOrganization)
	authed.GET("/organizations", orgsHandler.ListOrganizations)
	authed.GET("/organizations/:id", orgsHandler.GetOrganization)
	authed.PUT("/organizations/:id", orgsHandler.UpdateOrganization)
	authed.DELETE("/organizations/:id", orgsHandler.DeleteOrganization)

	authed.POST("/organizations/:id/members", orgsHandler.CreateMember)
	authed.GET("/organizations/:id/members", orgsHandler.ListMembers)
	authed.PUT("/organizations/:id/members/:userId", orgsHandler.UpdateMember)
	authed.DELETE("/organizations/:id/members/:userId", orgsHandler.DeleteMember)

	// The conflicts route must be registered before /events/:id so Gin does
	// not treat "conflicts" as an event ID.
	authed.GET("/events/conflicts", eventsHandler.FindConflicts)
	authed.POST("/events", eventsHandler.CreateEvent)
	authed.GET("/events", eventsHandler.ListEvents)
	authed.GET("/events/:id", eventsHandler.GetEvent)
	authed.PUT("/events/:id", eventsHandler.UpdateEvent)
	authed.DELETE("/events/:id", eventsHandler.DeleteEvent)

	authed.POST("/events/:id/attendees", eventsHandler.InviteAttendee)
	authed.GET("/events/:id/attendees", eventsHandler.ListAttendees)
	authed.PUT("/events/:id/attendees/:userId/rsvp", eventsHandler.UpdateRSVP)
	authed.DELETE("/events/:id/attendees/:userId", eventsHandler.DeleteAttendee)

	return router, bg, nil
}

// buildRateLimiter selects the memory or Redis limiter from config.
func buildRateLimiter(cfg config.RateLimitingConfig, bg *Background) (gin.HandlerFunc, error) {
	switch cfg.Backend {
	case "redis":
		rl, err := middleware.NewRedisRateLimiter(cfg.RedisURL, cfg.RequestsPerMinute, cfg.Burst)
		if err != nil {
			return nil, fmt.Errorf("failed to build redis rate limiter: %w", err)
		}
		bg.redisLimiter = rl
		return middleware.RedisRateLimitMiddleware(rl), nil
	default:
		limitCfg := middleware.DefaultRateLimitConfig()
		limitCfg.RequestsPerMinute = cfg.RequestsPerMinute
		limitCfg.BurstSize = cfg.Burst
		rl := middleware.NewRateLimiter(limitCfg)
		bg.memLimiter = rl
		return middleware.RateLimitMiddleware(rl), nil
	}
}
