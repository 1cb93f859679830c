// Package metrics has the prometheus collectors exported by contriboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	SyncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contriboard_sync_runs_total",
		Help: "Total number of orchestration runs by outcome.",
	}, []string{"outcome"})

	RepositorySyncsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contriboard_repository_syncs_total",
		Help: "Total number of repository pipelines by repository and final status.",
	}, []string{"repository", "status"})

	RepositorySyncDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "contriboard_repository_sync_seconds",
		Help:    "Time spent syncing one repository.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	}, []string{"repository"})

	ActivitiesIngestedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contriboard_activities_ingested_total",
		Help: "Total number of new activities written to the store.",
	}, []string{"repository"})

	EventsDiscardedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contriboard_events_discarded_total",
		Help: "Total number of raw events discarded during normalization.",
	}, []string{"reason"})

	ContributorsRecomputedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contriboard_contributors_recomputed_total",
		Help: "Total number of contributor aggregates recomputed.",
	})

	SnapshotsCapturedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "contriboard_snapshots_captured_total",
		Help: "Total number of contributor snapshots written.",
	})

	CredentialsExhausted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "contriboard_credentials_exhausted",
		Help: "Current number of source credentials waiting for a rate limit reset.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contriboard_http_requests_total",
		Help: "Total number of HTTP requests served by route and status code.",
	}, []string{"route", "code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "contriboard_http_request_seconds",
		Help:    "Latency of HTTP requests by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)
