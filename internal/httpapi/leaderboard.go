package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/huangsam/contriboard/core"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
)

const defaultLeaderboardLimit = 10

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	const handlerName = "leaderboard"

	board := schema.LeaderboardType(strings.ToLower(chi.URLParam(r, "type")))
	if board == "" {
		board = schema.LeaderboardType(strings.ToLower(r.URL.Query().Get("type")))
	}
	limit, err := intQuery(r, "limit", defaultLeaderboardLimit)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	if limit == 0 {
		limit = defaultLeaderboardLimit
	}
	limit = min(limit, contract.MaxResultLimit)

	result, err := h.Reader.BuildLeaderboard(r.Context(), board, limit)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleRanking(w http.ResponseWriter, r *http.Request) {
	const handlerName = "ranking"

	page, err := intQuery(r, "page", 1)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	limit, err := intQuery(r, "limit", contract.DefaultResultLimit)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}

	q := r.URL.Query()
	result, err := h.Reader.BuildRanking(r.Context(), core.RankingQuery{
		Mode:       schema.LeaderboardType(strings.ToLower(chi.URLParam(r, "mode"))),
		Period:     schema.RankingPeriod(strings.ToLower(q.Get("period"))),
		Repository: q.Get("repo"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	const handlerName = "stats"

	stats, err := h.Reader.Stats(r.Context())
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}
