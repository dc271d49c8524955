// audit.go provides Gin middleware that records mutating API requests to the
// audit_logs table after the handler completes.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gatherhub/gatherhub/internal/config"
	"github.com/gatherhub/gatherhub/internal/db/models"
	"github.com/gatherhub/gatherhub/internal/db/repositories"
	"github.com/gatherhub/gatherhub/internal/safego"
)

// auditWriteTimeout bounds the background insert so a slow database cannot
// pile up goroutines.
const auditWriteTimeout = 5 * time.Second

// AuditMiddleware returns a Gin handler that writes one audit_logs row per
// request after the handler chain finishes. By default only mutating methods
// (POST, PUT, PATCH, DELETE) are recorded; cfg.LogReadOperations adds GETs and
// cfg.LogFailedRequests controls whether 4xx/5xx responses are kept.
//
// The insert happens on a background goroutine so audit persistence never adds
// latency to the request path. A dropped audit row is logged, not fatal.
func AuditMiddleware(cfg config.AuditConfig, audits *repositories.AuditRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if !cfg.Enabled {
			return
		}

		method := c.Request.Method
		if method == http.MethodGet && !cfg.LogReadOperations {
			return
		}
		status := c.Writer.Status()
		if status >= 400 && !cfg.LogFailedRequests {
			return
		}

		entry := &models.AuditLog{
			Action: method + " " + routeTemplate(c),
			Status: status,
		}
		if userID := CurrentUserID(c); userID != "" {
			entry.UserID = &userID
		}
		if ip := c.ClientIP(); ip != "" {
			entry.IPAddress = &ip
		}
		if rt, rid := resourceFromPath(c); rt != "" {
			entry.ResourceType = &rt
			if rid != "" {
				entry.ResourceID = &rid
			}
		}

		safego.Go(func() {
			ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
			defer cancel()
			if err := audits.Create(ctx, entry); err != nil {
				slog.Warn("audit log write failed", "action", entry.Action, "error", err)
			}
		})
	}
}

// routeTemplate returns the matched Gin route pattern, or the raw path for
// unmatched requests.
func routeTemplate(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}

// resourceFromPath derives (resource type, resource id) from the matched
// route. For /api/v1/events/:id it yields ("events", "<id>"); collection
// routes yield an empty id.
func resourceFromPath(c *gin.Context) (string, string) {
	segments := strings.Split(strings.Trim(c.FullPath(), "/"), "/")
	// Skip the /api/v1 prefix when present.
	for len(segments) > 0 && (segments[0] == "api" || strings.HasPrefix(segments[0], "v")) {
		segments = segments[1:]
	}
	if len(segments) == 0 || segments[0] == "" {
		return "", ""
	}

	resource := segments[0]
	for _, seg := range segments[1:] {
		if strings.HasPrefix(seg, ":") {
			return resource, c.Param(strings.TrimPrefix(seg, ":"))
		}
		resource = seg
	}
	return resource, ""
}
