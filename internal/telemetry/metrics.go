// Package telemetry provides application-level observability for GatherHub.
//
// All metrics are registered against the default Prometheus registry and are
// served on the side-channel HTTP server started by cmd/server (default port
// 9090, path GET /metrics). The endpoint is not part of the Gin router, so it
// never competes with API traffic or passes through rate limiting.
//
// HTTP metrics use c.FullPath() (the route template, e.g.
// /api/v1/organizations/:id/members/:userID) rather than the raw URL so that
// user-supplied path segments do not inflate label cardinality.
package telemetry

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gatherhub/gatherhub/internal/safego"
)

var (
	// HTTPRequestsTotal counts requests by method, route template, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route template.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// SchedulingConflictsTotal counts event writes rejected by the interval
	// overlap check.
	SchedulingConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gatherhub_scheduling_conflicts_total",
			Help: "Total number of event creates/updates rejected due to an overlapping interval.",
		},
	)

	// EntityCount reports current entity totals, refreshed periodically by the
	// stats collector job.
	EntityCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gatherhub_entities",
			Help: "Current number of stored entities, by entity type.",
		},
		[]string{"entity"},
	)

	// MembershipsByStatus reports membership counts per status, refreshed by
	// the stats collector job.
	MembershipsByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gatherhub_memberships",
			Help: "Current number of memberships, by status.",
		},
		[]string{"status"},
	)

	// DBConnectionsOpen reports the database pool's open connection count.
	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gatherhub_db_connections_open",
			Help: "Open connections in the database pool.",
		},
	)
)

// StartDBPoolGauge polls the database pool every interval and exports the
// open-connection count. It returns when ctx is cancelled.
func StartDBPoolGauge(ctx context.Context, db *sql.DB, interval time.Duration) {
	safego.Go(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Debug("stopping db pool gauge")
				return
			case <-ticker.C:
				DBConnectionsOpen.Set(float64(db.Stats().OpenConnections))
			}
		}
	})
}
