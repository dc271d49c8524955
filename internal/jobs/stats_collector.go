// Package jobs contains background workers that run alongside the HTTP
// server for the lifetime of the process.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/gatherhub/gatherhub/internal/db/repositories"
	"github.com/gatherhub/gatherhub/internal/safego"
	"github.com/gatherhub/gatherhub/internal/telemetry"
)

// StatsCollector periodically refreshes the entity-count and
// membership-status Prometheus gauges from the database.
type StatsCollector struct {
	users       *repositories.UserRepository
	orgs        *repositories.OrganizationRepository
	memberships *repositories.MembershipRepository
	events      *repositories.EventRepository
	attendees   *repositories.AttendeeRepository
	interval    time.Duration
}

// NewStatsCollector creates a collector that refreshes every interval.
func NewStatsCollector(
	users *repositories.UserRepository,
	orgs *repositories.OrganizationRepository,
	memberships *repositories.MembershipRepository,
	events *repositories.EventRepository,
	attendees *repositories.AttendeeRepository,
	interval time.Duration,
) *StatsCollector {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatsCollector{
		users:       users,
		orgs:        orgs,
		memberships: memberships,
		events:      events,
		attendees:   attendees,
		interval:    interval,
	}
}

// Start runs the collector until ctx is cancelled. One refresh happens
// immediately so gauges are populated before the first tick.
func (s *StatsCollector) Start(ctx context.Context) {
	safego.Go(func() {
		s.Collect(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Debug("stopping stats collector")
				return
			case <-ticker.C:
				s.Collect(ctx)
			}
		}
	})
}

// Collect performs one refresh. Individual query failures are logged and the
// remaining gauges still update; stale gauge values are preferable to a
// crashed collector.
func (s *StatsCollector) Collect(ctx context.Context) {
	if n, err := s.users.Count(ctx); err != nil {
		slog.Warn("stats: counting users failed", "error", err)
	} else {
		telemetry.EntityCount.WithLabelValues("users").Set(float64(n))
	}

	if n, err := s.orgs.Count(ctx); err != nil {
		slog.Warn("stats: counting organizations failed", "error", err)
	} else {
		telemetry.EntityCount.WithLabelValues("organizations").Set(float64(n))
	}

	if n, err := s.events.Count(ctx); err != nil {
		slog.Warn("stats: counting events failed", "error", err)
	} else {
		telemetry.EntityCount.WithLabelValues("events").Set(float64(n))
	}

	if n, err := s.events.CountUpcoming(ctx); err != nil {
		slog.Warn("stats: counting upcoming events failed", "error", err)
	} else {
		telemetry.EntityCount.WithLabelValues("events_upcoming").Set(float64(n))
	}

	if n, err := s.attendees.Count(ctx); err != nil {
		slog.Warn("stats: counting attendees failed", "error", err)
	} else {
		telemetry.EntityCount.WithLabelValues("attendees").Set(float64(n))
	}

	counts, err := s.memberships.CountByStatus(ctx)
	if err != nil {
		slog.Warn("stats: counting memberships failed", "error", err)
		return
	}
	for status, n := range counts {
		telemetry.MembershipsByStatus.WithLabelValues(string(status)).Set(float64(n))
	}
}
