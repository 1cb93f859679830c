package httpapi_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/contriboard/core"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/httpapi"
	"github.com/huangsam/contriboard/internal/iocache"
	"github.com/huangsam/contriboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	eips   = "ethereum/EIPs"
	secret = "s3cret"
)

var now = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func activity(user string, typ schema.ActivityType, ref string, at time.Time) schema.Activity {
	return schema.Activity{
		ID:           schema.ActivityID(eips, typ, ref),
		Username:     user,
		Repository:   eips,
		ActivityType: typ,
		EntityRef:    ref,
		Timestamp:    at,
	}
}

// newTestServer wires a handler over a seeded SQLite store: alice scores 14
// from recent work and bob scores 20 from two merges a month and a half ago.
func newTestServer(t *testing.T, syncer httpapi.Syncer, triggerSecret string) http.Handler {
	t.Helper()
	ctx := context.Background()
	store, err := iocache.NewStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.UpsertActivities(ctx, []schema.Activity{
		activity("alice", schema.Commit, "commit:a", now.AddDate(0, 0, -3)),
		activity("alice", schema.Commit, "commit:b", now.AddDate(0, 0, -2)),
		activity("alice", schema.Commit, "commit:c", now.AddDate(0, 0, -1)),
		activity("alice", schema.PROpened, "pr:1", now.AddDate(0, 0, -1)),
		activity("bob", schema.PRMerged, "pr:2", now.AddDate(0, 0, -45)),
		activity("bob", schema.PRMerged, "pr:3", now.AddDate(0, 0, -46)),
	})
	require.NoError(t, err)

	cfg := &contract.Config{
		Repositories:  []string{eips},
		Weights:       schema.GetDefaultWeights(),
		TriggerSecret: triggerSecret,
		DBBackend:     schema.SQLiteBackend,
	}
	engine := core.NewEngine(cfg, store, contract.FixedClock{T: now}, nil)
	_, err = engine.RecomputeAll(ctx)
	require.NoError(t, err)

	handler := httpapi.NewHandler(engine, syncer, cfg, contract.DiscardLogger())
	handler.Clock = contract.FixedClock{T: now}
	return handler.Router()
}

func do(t *testing.T, h http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestHandler_ReadEndpoints(t *testing.T) {
	h := newTestServer(t, nil, "")

	t.Run("health", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	})

	t.Run("contributors sorted by score", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/contributors?limit=1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[schema.ContributorPage](t, w)
		assert.Equal(t, 2, page.Total)
		require.Len(t, page.Contributors, 1)
		assert.Equal(t, "bob", page.Contributors[0].Username)
	})

	t.Run("contributors ascending with page", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/contributors?sortOrder=asc&limit=1&page=2", nil)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[schema.ContributorPage](t, w)
		require.Len(t, page.Contributors, 1)
		assert.Equal(t, "bob", page.Contributors[0].Username)
		assert.Equal(t, 1, page.Offset)
	})

	t.Run("contributor detail", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/contributors/alice", nil)
		require.Equal(t, http.StatusOK, w.Code)
		detail := decode[schema.ContributorDetail](t, w)
		assert.Equal(t, 2, detail.Rank)
		assert.InDelta(t, 14.0, detail.Contributor.Totals.ActivityScore, 1e-9)
		assert.NotNil(t, detail.Snapshots)
	})

	t.Run("contributor timeline", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/contributors/alice/timeline?limit=3", nil)
		require.Equal(t, http.StatusOK, w.Code)
		timeline := decode[schema.ActivityTimeline](t, w)
		assert.Equal(t, 4, timeline.Total)
		assert.Len(t, timeline.Activities, 3)
		assert.True(t, timeline.HasMore)
	})

	t.Run("activities by type and window", func(t *testing.T) {
		since := now.AddDate(0, 0, -2).Format(time.DateOnly)
		w := do(t, h, http.MethodGet, "/api/activities?type=commit,pr_opened&since="+since, nil)
		require.Equal(t, http.StatusOK, w.Code)
		timeline := decode[schema.ActivityTimeline](t, w)
		assert.Equal(t, 3, timeline.Total)
		for _, a := range timeline.Activities {
			assert.Equal(t, "alice", a.Username)
		}
	})

	t.Run("leaderboard", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/leaderboard/commits", nil)
		require.Equal(t, http.StatusOK, w.Code)
		board := decode[schema.Leaderboard](t, w)
		assert.Equal(t, schema.CommitsBoard, board.Type)
		require.NotEmpty(t, board.Entries)
		assert.Equal(t, "alice", board.Entries[0].Username)
	})

	t.Run("default leaderboard", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/leaderboard", nil)
		require.Equal(t, http.StatusOK, w.Code)
		board := decode[schema.Leaderboard](t, w)
		assert.Equal(t, schema.OverallBoard, board.Type)
		assert.Equal(t, 2, board.Count)
	})

	t.Run("weekly ranking", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/rankings/overall?period=weekly", nil)
		require.Equal(t, http.StatusOK, w.Code)
		ranking := decode[schema.RankingPage](t, w)
		require.Len(t, ranking.Entries, 1)
		assert.Equal(t, "alice", ranking.Entries[0].Username)
		assert.Equal(t, 1, ranking.Pagination.Total)
	})

	t.Run("stats", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/stats", nil)
		require.Equal(t, http.StatusOK, w.Code)
		stats := decode[schema.StatsSummary](t, w)
		assert.Equal(t, 2, stats.TotalContributors)
		assert.Equal(t, 6, stats.TotalActivities)
		assert.InDelta(t, 34.0, stats.TotalScore, 1e-9)
	})
}

func TestHandler_Analytics(t *testing.T) {
	h := newTestServer(t, nil, "")

	tests := []struct {
		name       string
		target     string
		wantTotal  int
		wantByType []schema.TypeCount
		wantByDate []schema.DailyActivity
	}{
		{
			name:      "contributor defaults to thirty days",
			target:    "/api/contributors/alice/analytics",
			wantTotal: 4,
			wantByType: []schema.TypeCount{
				{ActivityType: schema.Commit, Count: 3},
				{ActivityType: schema.PROpened, Count: 1},
			},
			wantByDate: []schema.DailyActivity{
				{Date: "2025-05-29", Commits: 1},
				{Date: "2025-05-30", Commits: 1},
				{Date: "2025-05-31", Commits: 1, PullRequests: 1},
			},
		},
		{
			name:       "older merges fall outside thirty days",
			target:     "/api/contributors/bob/analytics?timeline=30d",
			wantByType: []schema.TypeCount{},
			wantByDate: []schema.DailyActivity{},
		},
		{
			name:       "all time",
			target:     "/api/contributors/bob/analytics?timeline=all",
			wantTotal:  2,
			wantByType: []schema.TypeCount{{ActivityType: schema.PRMerged, Count: 2}},
			wantByDate: []schema.DailyActivity{
				{Date: "2025-04-16", PullRequests: 1},
				{Date: "2025-04-17", PullRequests: 1},
			},
		},
		{
			name:       "custom range covers whole months",
			target:     "/api/contributors/bob/analytics?timeline=custom&start=2025-04-20&end=2025-04-21",
			wantTotal:  2,
			wantByType: []schema.TypeCount{{ActivityType: schema.PRMerged, Count: 2}},
			wantByDate: []schema.DailyActivity{
				{Date: "2025-04-16", PullRequests: 1},
				{Date: "2025-04-17", PullRequests: 1},
			},
		},
		{
			name:       "repository filter",
			target:     "/api/contributors/alice/analytics?timeline=month&repo=acme/widgets",
			wantByType: []schema.TypeCount{},
			wantByDate: []schema.DailyActivity{},
		},
		{
			name:      "every contributor over a year",
			target:    "/api/analytics?timeline=YEAR",
			wantTotal: 6,
			wantByType: []schema.TypeCount{
				{ActivityType: schema.Commit, Count: 3},
				{ActivityType: schema.PROpened, Count: 1},
				{ActivityType: schema.PRMerged, Count: 2},
			},
			wantByDate: []schema.DailyActivity{
				{Date: "2025-04-16", PullRequests: 1},
				{Date: "2025-04-17", PullRequests: 1},
				{Date: "2025-05-29", Commits: 1},
				{Date: "2025-05-30", Commits: 1},
				{Date: "2025-05-31", Commits: 1, PullRequests: 1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodGet, tt.target, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			got := decode[schema.ContributorAnalytics](t, w)
			assert.Equal(t, tt.wantTotal, got.Total)
			assert.Equal(t, tt.wantByType, got.ActivityByType)
			assert.Equal(t, tt.wantByDate, got.ActivityByDate)
		})
	}
}

func TestHandler_Errors(t *testing.T) {
	h := newTestServer(t, nil, "")

	tests := []struct {
		name           string
		method         string
		target         string
		expectedStatus int
		expectedCode   string
	}{
		{"unknown contributor", http.MethodGet, "/api/contributors/ghost", http.StatusNotFound, "NOT_FOUND"},
		{"unknown contributor timeline", http.MethodGet, "/api/contributors/ghost/timeline", http.StatusNotFound, "NOT_FOUND"},
		{"bad sort key", http.MethodGet, "/api/contributors?sortBy=karma", http.StatusBadRequest, "BAD_REQUEST"},
		{"bad sort order", http.MethodGet, "/api/contributors?sortOrder=up", http.StatusBadRequest, "BAD_REQUEST"},
		{"bad limit", http.MethodGet, "/api/contributors?limit=ten", http.StatusBadRequest, "BAD_REQUEST"},
		{"bad activity type", http.MethodGet, "/api/activities?type=STAR", http.StatusBadRequest, "BAD_REQUEST"},
		{"bad date", http.MethodGet, "/api/activities?since=yesterday", http.StatusBadRequest, "BAD_REQUEST"},
		{"inverted window", http.MethodGet, "/api/activities?since=2025-05-02&until=2025-05-01", http.StatusBadRequest, "BAD_REQUEST"},
		{"bad leaderboard", http.MethodGet, "/api/leaderboard/karma", http.StatusBadRequest, "BAD_REQUEST"},
		{"bad period", http.MethodGet, "/api/rankings/overall?period=yearly", http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown contributor analytics", http.MethodGet, "/api/contributors/ghost/analytics", http.StatusNotFound, "NOT_FOUND"},
		{"bad timeline", http.MethodGet, "/api/analytics?timeline=decade", http.StatusBadRequest, "BAD_REQUEST"},
		{"custom timeline without end", http.MethodGet, "/api/analytics?timeline=custom&start=2025-04-01", http.StatusBadRequest, "BAD_REQUEST"},
		{"bad analytics start", http.MethodGet, "/api/analytics?timeline=custom&start=april&end=2025-05-01", http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound, "NOT_FOUND"},
		{"wrong method", http.MethodPut, "/api/sync", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.target, nil)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			body := decode[errorBody](t, w)
			assert.Equal(t, tt.expectedCode, body.Error.Code)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestHandler_Sync(t *testing.T) {
	summary := schema.RunSummary{
		RunID: "run-1",
		Results: []schema.RepoOutcome{
			{Repository: eips, Status: schema.SyncIdle, ActivitiesProcessed: 4},
			{Repository: "ethereum/ERCs", Status: schema.SyncFailed, Error: "rate limited"},
			{Repository: "ethereum/RIPs", Status: schema.SyncRunning, Skipped: true},
		},
	}
	bearer := http.Header{"Authorization": {"Bearer " + secret}}

	tests := []struct {
		name           string
		method         string
		secret         string
		header         http.Header
		mockBehavior   func(s *httpapi.MockSyncer)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "Success: GET",
			method: http.MethodGet,
			secret: secret,
			header: bearer,
			mockBehavior: func(s *httpapi.MockSyncer) {
				s.On("Run", mock.Anything).Return(summary, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"runId":"run-1"`,
		},
		{
			name:   "Success: POST",
			method: http.MethodPost,
			secret: secret,
			header: bearer,
			mockBehavior: func(s *httpapi.MockSyncer) {
				s.On("Run", mock.Anything).Return(summary, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "Synced 3 repositories: 1 failed, 1 skipped",
		},
		{
			name:           "Unauthorized: missing header",
			method:         http.MethodPost,
			secret:         secret,
			mockBehavior:   func(*httpapi.MockSyncer) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"success":false`,
		},
		{
			name:           "Unauthorized: wrong secret",
			method:         http.MethodPost,
			secret:         secret,
			header:         http.Header{"Authorization": {"Bearer nope"}},
			mockBehavior:   func(*httpapi.MockSyncer) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Unauthorized",
		},
		{
			name:           "Disabled: no secret configured",
			method:         http.MethodPost,
			header:         bearer,
			mockBehavior:   func(*httpapi.MockSyncer) {},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   "disabled",
		},
		{
			name:   "Failure: configuration error",
			method: http.MethodPost,
			secret: secret,
			header: bearer,
			mockBehavior: func(s *httpapi.MockSyncer) {
				s.On("Run", mock.Anything).Return(schema.RunSummary{}, fmt.Errorf("%w: %w", contract.ErrConfig, contract.ErrNoCredentials)).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "Sync failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syncer := new(httpapi.MockSyncer)
			tt.mockBehavior(syncer)
			h := newTestServer(t, syncer, tt.secret)

			w := do(t, h, tt.method, "/api/sync", tt.header)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			syncer.AssertExpectations(t)
		})
	}
}

func TestHandler_SyncResponseShape(t *testing.T) {
	syncer := new(httpapi.MockSyncer)
	syncer.On("Run", mock.Anything).Return(schema.RunSummary{
		RunID:   "run-2",
		Results: []schema.RepoOutcome{{Repository: eips, Status: schema.SyncIdle}},
	}, nil)
	h := newTestServer(t, syncer, secret)

	w := do(t, h, http.MethodPost, "/api/sync", http.Header{"Authorization": {"Bearer " + secret}})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success   bool                 `json:"success"`
		Message   string               `json:"message"`
		Timestamp time.Time            `json:"timestamp"`
		RunID     string               `json:"runId"`
		Results   []schema.RepoOutcome `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "run-2", body.RunID)
	assert.False(t, body.Timestamp.IsZero())
	require.Len(t, body.Results, 1)
	assert.Equal(t, schema.SyncIdle, body.Results[0].Status)
}

func TestHandler_MetricsAndCORS(t *testing.T) {
	h := newTestServer(t, nil, "")
	do(t, h, http.MethodGet, "/api/stats", nil)

	w := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `contriboard_http_requests_total{code="200",route="/api/stats"}`))

	preflight := do(t, h, http.MethodOptions, "/api/stats", http.Header{
		"Origin":                        {"https://example.org"},
		"Access-Control-Request-Method": {http.MethodGet},
	})
	assert.Equal(t, "*", preflight.Header().Get("Access-Control-Allow-Origin"))
}
