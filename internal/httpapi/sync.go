package httpapi

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/huangsam/contriboard/schema"
)

// authorized checks the bearer token against the trigger secret in constant time.
func (h *Handler) authorized(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.Secret)) == 1
}

func runMessage(summary schema.RunSummary) string {
	skipped := 0
	for _, r := range summary.Results {
		if r.Skipped {
			skipped++
		}
	}
	msg := fmt.Sprintf("Synced %d repositories: %d failed, %d skipped", len(summary.Results), summary.Failed(), skipped)
	if summary.Cancelled {
		msg += " (cancelled)"
	}
	return msg
}

// handleSync runs one orchestration pass. Repositories already syncing are
// reported as skipped, so concurrent triggers are harmless.
func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	const handlerName = "sync"

	now := h.Clock.Now()
	if h.Secret == "" {
		h.Log.Warn("sync trigger refused, no trigger secret configured")
		h.writeJSON(w, http.StatusServiceUnavailable, syncResponse{Message: "Sync trigger is disabled", Timestamp: now})
		return
	}
	if !h.authorized(r) {
		h.Log.Warn("sync trigger refused", slog.String("handler", handlerName), slog.String("remote", r.RemoteAddr))
		h.writeJSON(w, http.StatusUnauthorized, syncResponse{Message: "Unauthorized", Timestamp: now})
		return
	}

	summary, err := h.Syncer.Run(r.Context())
	if err != nil {
		ae := toAPIError(err)
		h.Log.Error("sync run failed", slog.String("handler", handlerName), slog.Any("err", err))
		h.writeJSON(w, ae.Status, syncResponse{Message: "Sync failed: " + ae.Message, Timestamp: h.Clock.Now()})
		return
	}

	h.writeJSON(w, http.StatusOK, syncResponse{
		Success:   summary.Failed() == 0 && !summary.Cancelled,
		Message:   runMessage(summary),
		Timestamp: h.Clock.Now(),
		RunID:     summary.RunID,
		Cancelled: summary.Cancelled,
		Results:   summary.Results,
	})
}
