//go:build integration

// Package integration contains integration tests for contriboard.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
// Or use: make test-integration
package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/contriboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHistory serves a small, recent history for every repository:
// carol commits twice, dave opens a PR that carol approves, and a bot commits once.
func fakeHistory(t *testing.T) *httptest.Server {
	day := func(n int) string { return time.Now().UTC().AddDate(0, 0, -n).Format(time.RFC3339) }
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.Trim(r.URL.Path, "/")
		switch {
		case strings.HasPrefix(path, "users/"):
			login := strings.TrimPrefix(path, "users/")
			fmt.Fprintf(w, `{"login":%q,"id":7,"type":"User"}`, login)
		case strings.HasSuffix(path, "/commits"):
			fmt.Fprintf(w, `[
				{"sha":"c1","author":{"login":"carol"},"commit":{"author":{"date":%q}}},
				{"sha":"c2","author":{"login":"carol"},"commit":{"author":{"date":%q}}},
				{"sha":"c3","author":{"login":"renovate[bot]"},"commit":{"author":{"date":%q}}}
			]`, day(3), day(2), day(2))
		case strings.HasSuffix(path, "/pulls"):
			fmt.Fprintf(w, `[{"number":5,"user":{"login":"dave"},"created_at":%q,"updated_at":%q}]`, day(4), day(1))
		case strings.HasSuffix(path, "/pulls/5/reviews"):
			fmt.Fprintf(w, `[{"id":11,"user":{"login":"carol"},"state":"APPROVED","submitted_at":%q}]`, day(1))
		default:
			fmt.Fprint(w, `[]`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestSyncAndLeaderboardVerification syncs from a fake API and checks the
// leaderboard against the weighted activity counts.
func TestSyncAndLeaderboardVerification(t *testing.T) {
	srv := fakeHistory(t)
	env := []string{
		"CONTRIBOARD_TOKENS=token-a,token-b",
		"CONTRIBOARD_API_BASE_URL=" + srv.URL,
		"CONTRIBOARD_DB_BACKEND=sqlite",
		"CONTRIBOARD_DB_CONNECT=" + filepath.Join(t.TempDir(), "verify.db"),
		"CONTRIBOARD_REPOSITORIES=acme/widgets",
	}

	out, err := runCommand(t, env, "sync", "--output", "json")
	require.NoError(t, err)
	var summary schema.RunSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Len(t, summary.Results, 1)
	assert.Equal(t, schema.SyncIdle, summary.Results[0].Status)
	assert.Equal(t, 1, summary.Results[0].Discarded, "bot commit is dropped")

	out, err = runCommand(t, env, "leaderboard", "--output", "json")
	require.NoError(t, err)
	var board schema.Leaderboard
	require.NoError(t, json.Unmarshal([]byte(out), &board))
	require.Len(t, board.Entries, 2)

	weights := schema.GetDefaultWeights()
	scores := map[string]float64{}
	for _, e := range board.Entries {
		scores[e.Username] = e.Score
	}
	assert.InDelta(t, 2*weights[schema.Commit]+weights[schema.ReviewApproved], scores["carol"], 1e-9)
	assert.InDelta(t, weights[schema.PROpened], scores["dave"], 1e-9)
	assert.Equal(t, "carol", board.Entries[0].Username)

	// A second sync stores nothing new and leaves scores unchanged.
	_, err = runCommand(t, env, "sync", "--output", "json")
	require.NoError(t, err)
	out, err = runCommand(t, env, "contributor", "carol", "--output", "json")
	require.NoError(t, err)
	var detail schema.ContributorDetail
	require.NoError(t, json.Unmarshal([]byte(out), &detail))
	assert.InDelta(t, scores["carol"], detail.Contributor.Totals.ActivityScore, 1e-9)
	assert.Equal(t, 1, detail.Rank)
}
