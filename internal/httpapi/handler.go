// Package httpapi serves contributor aggregates and the sync trigger over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/huangsam/contriboard/core"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reader is the read side of the engine. Handlers only project its results.
type Reader interface {
	ListContributors(ctx context.Context, filter schema.ContributorFilter) (schema.ContributorPage, error)
	GetContributor(ctx context.Context, username string) (schema.ContributorDetail, error)
	Timeline(ctx context.Context, filter schema.ActivityFilter, page, limit int) (schema.ActivityTimeline, error)
	BuildLeaderboard(ctx context.Context, t schema.LeaderboardType, limit int) (schema.Leaderboard, error)
	BuildRanking(ctx context.Context, q core.RankingQuery) (schema.RankingPage, error)
	Stats(ctx context.Context) (schema.StatsSummary, error)
	Analytics(ctx context.Context, username, repository string, from, until time.Time) (schema.ContributorAnalytics, error)
}

// Syncer runs one full orchestration pass.
type Syncer interface {
	Run(ctx context.Context) (schema.RunSummary, error)
}

type Handler struct {
	Reader  Reader
	Syncer  Syncer
	Secret  string
	Origins []string
	Clock   contract.Clock
	Log     *slog.Logger
}

func NewHandler(reader Reader, syncer Syncer, cfg *contract.Config, log *slog.Logger) *Handler {
	if log == nil {
		log = contract.DiscardLogger()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Handler{
		Reader:  reader,
		Syncer:  syncer,
		Secret:  cfg.TriggerSecret,
		Origins: origins,
		Clock:   contract.SystemClock{},
		Log:     log,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: h.Origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(instrument)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		h.writeError(w, "not_found", &apiError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		h.writeError(w, "method_not_allowed", &apiError{Status: http.StatusMethodNotAllowed, Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/contributors", func(r chi.Router) {
			r.Get("/", h.handleContributorList)
			r.Get("/{username}", h.handleContributorGet)
			r.Get("/{username}/timeline", h.handleContributorTimeline)
			r.Get("/{username}/analytics", h.handleAnalytics)
		})
		r.Get("/analytics", h.handleAnalytics)
		r.Get("/activities", h.handleActivities)
		r.Get("/leaderboard", h.handleLeaderboard)
		r.Get("/leaderboard/{type}", h.handleLeaderboard)
		r.Get("/rankings/{mode}", h.handleRanking)
		r.Get("/stats", h.handleStats)

		r.Get("/sync", h.handleSync)
		r.Post("/sync", h.handleSync)
	})

	return r
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Log.Warn("failed to encode response", slog.Any("err", err))
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   h.Clock.Now().Format(time.RFC3339),
	})
}
