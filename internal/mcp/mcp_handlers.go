package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/contriboard/core"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	reader Reader
	clock  contract.Clock
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetLeaderboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t := schema.LeaderboardType(request.GetString("type", string(schema.OverallBoard)))
	board, err := h.reader.BuildLeaderboard(ctx, t, request.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("leaderboard failed: %v", err)), nil
	}
	return jsonResult(board)
}

func (h *toolHandler) handleGetRanking(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := core.RankingQuery{
		Mode:       schema.LeaderboardType(request.GetString("mode", "")),
		Period:     schema.RankingPeriod(request.GetString("period", "")),
		Repository: request.GetString("repository", ""),
		Page:       request.GetInt("page", 1),
		Limit:      request.GetInt("limit", 0),
	}
	page, err := h.reader.BuildRanking(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ranking failed: %v", err)), nil
	}
	return jsonResult(page)
}

func (h *toolHandler) handleGetContributor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username := strings.TrimSpace(request.GetString("username", ""))
	if username == "" {
		return mcp.NewToolResultError("username is required"), nil
	}
	detail, err := h.reader.GetContributor(ctx, username)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	return jsonResult(detail)
}

func (h *toolHandler) handleSearchContributors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := schema.ContributorFilter{
		Search:     request.GetString("search", ""),
		Repository: request.GetString("repository", ""),
		Limit:      request.GetInt("limit", 0),
	}
	page, err := h.reader.ListContributors(ctx, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(page)
}

func (h *toolHandler) handleGetStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.reader.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}
	return jsonResult(stats)
}

// dateArg reads an optional YYYY-MM-DD or RFC 3339 argument.
func dateArg(request mcp.CallToolRequest, name string) (time.Time, error) {
	raw := strings.TrimSpace(request.GetString(name, ""))
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD or RFC 3339", name)
	}
	return t.UTC(), nil
}

func (h *toolHandler) handleGetAnalytics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, err := dateArg(request, "start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := dateArg(request, "end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeline := schema.AnalyticsTimeline(strings.ToLower(request.GetString("timeline", "")))
	from, until, err := core.AnalyticsRange(timeline, start, end, h.clock.Now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analytics failed: %v", err)), nil
	}
	username := strings.TrimSpace(request.GetString("username", ""))
	result, err := h.reader.Analytics(ctx, username, request.GetString("repository", ""), from, until)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analytics failed: %v", err)), nil
	}
	return jsonResult(result)
}
