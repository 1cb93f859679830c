package httpapi

import (
	"net/http"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
)

// activityFilterFrom reads repo, type, since, until, page and limit.
func activityFilterFrom(r *http.Request) (schema.ActivityFilter, int, int, error) {
	types, err := typesQuery(r, "type")
	if err != nil {
		return schema.ActivityFilter{}, 0, 0, err
	}
	since, err := timeQuery(r, "since")
	if err != nil {
		return schema.ActivityFilter{}, 0, 0, err
	}
	until, err := timeQuery(r, "until")
	if err != nil {
		return schema.ActivityFilter{}, 0, 0, err
	}
	if !since.IsZero() && !until.IsZero() && until.Before(since) {
		return schema.ActivityFilter{}, 0, 0, badRequest("until must not be before since")
	}
	page, err := intQuery(r, "page", 1)
	if err != nil {
		return schema.ActivityFilter{}, 0, 0, err
	}
	limit, err := intQuery(r, "limit", contract.DefaultResultLimit)
	if err != nil {
		return schema.ActivityFilter{}, 0, 0, err
	}
	filter := schema.ActivityFilter{
		Username:   r.URL.Query().Get("username"),
		Repository: r.URL.Query().Get("repo"),
		Types:      types,
		Since:      since,
		Until:      until,
	}
	return filter, page, limit, nil
}

func (h *Handler) handleActivities(w http.ResponseWriter, r *http.Request) {
	const handlerName = "activities"

	filter, page, limit, err := activityFilterFrom(r)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	timeline, err := h.Reader.Timeline(r.Context(), filter, page, limit)
	if err != nil {
		h.writeError(w, handlerName, err)
		return
	}
	h.writeJSON(w, http.StatusOK, timeline)
}
