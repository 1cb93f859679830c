package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/huangsam/contriboard/core"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
)

func (h *Handler) handleContributorList(w http.ResponseWriter, r *http.Request) {
	const handlerName = "contributor_list"

	sortBy, asc, err := sortQuery(r)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	limit, err := intQuery(r, "limit", contract.DefaultResultLimit)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	offset, err := intQuery(r, "offset", 0)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	page, err := intQuery(r, "page", 0)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	if page > 0 && limit > 0 {
		offset = (page - 1) * limit
	}

	q := r.URL.Query()
	result, err := h.Reader.ListContributors(r.Context(), schema.ContributorFilter{
		Repository: q.Get("repo"),
		Search:     strings.TrimSpace(q.Get("search")),
		SortBy:     sortBy,
		Ascending:  asc,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleContributorGet(w http.ResponseWriter, r *http.Request) {
	const handlerName = "contributor_get"

	username := chi.URLParam(r, "username")
	detail, err := h.Reader.GetContributor(r.Context(), username)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	h.writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleContributorTimeline(w http.ResponseWriter, r *http.Request) {
	const handlerName = "contributor_timeline"

	username := chi.URLParam(r, "username")
	if _, err := h.Reader.GetContributor(r.Context(), username); err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	filter, page, limit, err := activityFilterFrom(r)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	filter.Username = username
	timeline, err := h.Reader.Timeline(r.Context(), filter, page, limit)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	h.writeJSON(w, http.StatusOK, timeline)
}

// handleAnalytics serves one contributor's breakdown under /contributors and
// the whole data set under /analytics.
func (h *Handler) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	const handlerName = "analytics"

	start, err := timeQuery(r, "start")
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	end, err := timeQuery(r, "end")
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	q := r.URL.Query()
	timeline := schema.AnalyticsTimeline(strings.ToLower(q.Get("timeline")))
	from, until, err := core.AnalyticsRange(timeline, start, end, h.Clock.Now())
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	result, err := h.Reader.Analytics(r.Context(), chi.URLParam(r, "username"), q.Get("repo"), from, until)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}
