// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"
	"time"

	"github.com/huangsam/contriboard/core"
	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Reader is the subset of the engine the tools read from.
type Reader interface {
	ListContributors(ctx context.Context, filter schema.ContributorFilter) (schema.ContributorPage, error)
	GetContributor(ctx context.Context, username string) (schema.ContributorDetail, error)
	BuildLeaderboard(ctx context.Context, t schema.LeaderboardType, limit int) (schema.Leaderboard, error)
	BuildRanking(ctx context.Context, q core.RankingQuery) (schema.RankingPage, error)
	Stats(ctx context.Context) (schema.StatsSummary, error)
	Analytics(ctx context.Context, username, repository string, from, until time.Time) (schema.ContributorAnalytics, error)
}

var boardTypes = []string{
	string(schema.OverallBoard),
	string(schema.CommitsBoard),
	string(schema.PRsBoard),
	string(schema.ReviewsBoard),
	string(schema.CommentsBoard),
	string(schema.IssuesBoard),
	string(schema.RisingStarsBoard),
	string(schema.MentorsBoard),
}

// NewMCPServer initializes and configures the Contriboard MCP server without starting it.
// This is exposed for unit testing. The clock anchors relative analytics timelines.
func NewMCPServer(reader Reader, clock contract.Clock) *server.MCPServer {
	s := server.NewMCPServer(
		"Contriboard Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{reader: reader, clock: clock}

	s.AddTool(mcp.NewTool("get_leaderboard",
		mcp.WithDescription("Rank contributors on one of the all-time leaderboards."),
		mcp.WithString("type", mcp.Description("Leaderboard type. Defaults to 'overall'."), mcp.Enum(boardTypes...)),
		mcp.WithNumber("limit", mcp.Description("Limit the number of entries returned.")),
	), h.handleGetLeaderboard)

	s.AddTool(mcp.NewTool("get_ranking",
		mcp.WithDescription("Return one page of a ranking, optionally restricted to a period or a repository."),
		mcp.WithString("mode", mcp.Description("Ranking mode, same values as leaderboard types."), mcp.Enum(boardTypes...)),
		mcp.WithString("period", mcp.Description("Time window (all, weekly, monthly). Defaults to 'all'."), mcp.Enum("all", "weekly", "monthly")),
		mcp.WithString("repository", mcp.Description("Restrict counts to one owner/name repository.")),
		mcp.WithNumber("page", mcp.Description("Page number starting at 1.")),
		mcp.WithNumber("limit", mcp.Description("Entries per page.")),
	), h.handleGetRanking)

	s.AddTool(mcp.NewTool("get_contributor",
		mcp.WithDescription("Show one contributor with per-repository stats, rank and recent snapshots."),
		mcp.WithString("username", mcp.Description("GitHub login of the contributor."), mcp.Required()),
	), h.handleGetContributor)

	s.AddTool(mcp.NewTool("search_contributors",
		mcp.WithDescription("List contributors matching a username or name fragment."),
		mcp.WithString("search", mcp.Description("Case-insensitive fragment of username or name.")),
		mcp.WithString("repository", mcp.Description("Only contributors active in this repository.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results.")),
	), h.handleSearchContributors)

	s.AddTool(mcp.NewTool("get_contributor_analytics",
		mcp.WithDescription("Break down activity by type and by day within a timeline. Omit username to cover everyone."),
		mcp.WithString("username", mcp.Description("GitHub login of the contributor.")),
		mcp.WithString("repository", mcp.Description("Restrict to one owner/name repository.")),
		mcp.WithString("timeline", mcp.Description("Date range. Defaults to '30d'. 'custom' needs start and end."),
			mcp.Enum("30d", "month", "year", "all", "custom")),
		mcp.WithString("start", mcp.Description("First month of a custom range, YYYY-MM-DD.")),
		mcp.WithString("end", mcp.Description("Last month of a custom range, YYYY-MM-DD.")),
	), h.handleGetAnalytics)

	s.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Summarize the stored activity: totals, per-type counts and top contributors."),
	), h.handleGetStats)

	return s
}

// StartMCPServer starts the Contriboard MCP server over stdio.
func StartMCPServer(_ context.Context, reader Reader) error {
	s := NewMCPServer(reader, contract.SystemClock{})
	return server.ServeStdio(s)
}
