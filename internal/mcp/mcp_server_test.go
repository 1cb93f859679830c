package mcp_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/contriboard/core"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/iocache"
	mcp_internal "github.com/huangsam/contriboard/internal/mcp"
	"github.com/huangsam/contriboard/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *server.MCPServer {
	t.Helper()
	ctx := context.Background()
	store, err := iocache.NewStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "mcp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	const repo = "ethereum/EIPs"
	mk := func(user string, typ schema.ActivityType, ref string, daysAgo int) schema.Activity {
		return schema.Activity{
			ID:           schema.ActivityID(repo, typ, ref),
			Username:     user,
			Repository:   repo,
			ActivityType: typ,
			EntityRef:    ref,
			Timestamp:    now.AddDate(0, 0, -daysAgo),
		}
	}
	_, err = store.UpsertActivities(ctx, []schema.Activity{
		mk("alice", schema.Commit, "commit:a", 2),
		mk("alice", schema.PROpened, "pr:1", 1),
		mk("bob", schema.PRMerged, "pr:2", 3),
	})
	require.NoError(t, err)

	cfg := &contract.Config{Repositories: []string{repo}, Weights: schema.GetDefaultWeights()}
	engine := core.NewEngine(cfg, store, contract.FixedClock{T: now}, nil)
	_, err = engine.RecomputeAll(ctx)
	require.NoError(t, err)
	return mcp_internal.NewMCPServer(engine, contract.FixedClock{T: now})
}

func call(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)
	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotEmpty(t, res.Content)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerTools(t *testing.T) {
	s := newTestServer(t)

	t.Run("get_leaderboard", func(t *testing.T) {
		res := call(t, s, "get_leaderboard", map[string]any{"type": "overall", "limit": 1.0})
		require.False(t, res.IsError, text(res))
		var board schema.Leaderboard
		require.NoError(t, json.Unmarshal([]byte(text(res)), &board))
		require.Len(t, board.Entries, 1)
		assert.Equal(t, "bob", board.Entries[0].Username)
	})

	t.Run("get_ranking", func(t *testing.T) {
		res := call(t, s, "get_ranking", map[string]any{"mode": "commits", "period": "weekly"})
		require.False(t, res.IsError, text(res))
		var page schema.RankingPage
		require.NoError(t, json.Unmarshal([]byte(text(res)), &page))
		assert.Equal(t, schema.WeeklyPeriod, page.Period)
		require.NotEmpty(t, page.Entries)
		assert.Equal(t, "alice", page.Entries[0].Username)
	})

	t.Run("get_contributor", func(t *testing.T) {
		res := call(t, s, "get_contributor", map[string]any{"username": "alice"})
		require.False(t, res.IsError, text(res))
		var detail schema.ContributorDetail
		require.NoError(t, json.Unmarshal([]byte(text(res)), &detail))
		assert.Equal(t, "alice", detail.Contributor.Username)
		assert.Equal(t, 2, detail.Rank)
	})

	t.Run("search_contributors", func(t *testing.T) {
		res := call(t, s, "search_contributors", map[string]any{"search": "bo"})
		require.False(t, res.IsError, text(res))
		var page schema.ContributorPage
		require.NoError(t, json.Unmarshal([]byte(text(res)), &page))
		require.Len(t, page.Contributors, 1)
		assert.Equal(t, "bob", page.Contributors[0].Username)
	})

	t.Run("get_contributor_analytics", func(t *testing.T) {
		tests := []struct {
			name       string
			args       map[string]any
			wantTotal  int
			wantByDate []schema.DailyActivity
		}{
			{
				name:      "one contributor",
				args:      map[string]any{"username": "alice"},
				wantTotal: 2,
				wantByDate: []schema.DailyActivity{
					{Date: "2025-05-30", Commits: 1},
					{Date: "2025-05-31", PullRequests: 1},
				},
			},
			{
				name:      "everyone in a custom month",
				args:      map[string]any{"timeline": "custom", "start": "2025-05-20", "end": "2025-05-21"},
				wantTotal: 3,
				wantByDate: []schema.DailyActivity{
					{Date: "2025-05-29", PullRequests: 1},
					{Date: "2025-05-30", Commits: 1},
					{Date: "2025-05-31", PullRequests: 1},
				},
			},
			{
				name:       "month before any activity",
				args:       map[string]any{"timeline": "custom", "start": "2025-01-01", "end": "2025-01-31"},
				wantByDate: []schema.DailyActivity{},
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				res := call(t, s, "get_contributor_analytics", tt.args)
				require.False(t, res.IsError, text(res))
				var got schema.ContributorAnalytics
				require.NoError(t, json.Unmarshal([]byte(text(res)), &got))
				assert.Equal(t, tt.wantTotal, got.Total)
				assert.Equal(t, tt.wantByDate, got.ActivityByDate)
			})
		}
	})

	t.Run("get_stats", func(t *testing.T) {
		res := call(t, s, "get_stats", nil)
		require.False(t, res.IsError, text(res))
		var stats schema.StatsSummary
		require.NoError(t, json.Unmarshal([]byte(text(res)), &stats))
		assert.Equal(t, 2, stats.TotalContributors)
		assert.Equal(t, 3, stats.TotalActivities)
	})
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		contains string
	}{
		{"unknown leaderboard type", "get_leaderboard", map[string]any{"type": "stars"}, "unknown leaderboard type"},
		{"unknown ranking period", "get_ranking", map[string]any{"period": "daily"}, "unknown ranking period"},
		{"missing username", "get_contributor", map[string]any{"username": "  "}, "username is required"},
		{"unknown contributor", "get_contributor", map[string]any{"username": "nobody"}, "lookup failed"},
		{"unknown analytics contributor", "get_contributor_analytics", map[string]any{"username": "nobody"}, "analytics failed"},
		{"unknown timeline", "get_contributor_analytics", map[string]any{"timeline": "decade"}, "unknown timeline"},
		{"bad start date", "get_contributor_analytics", map[string]any{"timeline": "custom", "start": "May", "end": "2025-05-01"}, "start must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, s, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, text(res), tt.contains)
		})
	}
}
