package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEntries = []schema.LeaderboardEntry{
	{Rank: 1, Username: "alice", Name: "Alice Example", Score: 14, Commits: 3, PRsOpened: 1, ActivityStatus: schema.ActiveStatus},
	{Rank: 1, Username: "bob", Score: 14, PRsMerged: 1, Reviews: 2, RisingStarIndex: 0.25, ActivityStatus: schema.DormantStatus},
}

func TestContributorLabel(t *testing.T) {
	tests := []struct {
		username, name, expected string
	}{
		{"alice", "", "alice"},
		{"alice", "Alice Example", "alice (Alice E)"},
		{"bob", "Bob", "bob (Bob)"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, contributorLabel(tt.username, tt.name))
		})
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "-", formatTime(time.Time{}))
	assert.Equal(t, "-", formatTimePtr(nil))
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-01T12:00:00Z", formatTimePtr(&ts))
}

func TestWriteEntriesCSV(t *testing.T) {
	fmtFloat, intFmt := createFormatters(2)
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, entryCSVHeader, func(w *csv.Writer) error {
		return writeEntriesCSV(w, testEntries, fmtFloat, intFmt)
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 rows
	assert.Equal(t, entryCSVHeader, records[0])
	assert.Equal(t, []string{"1", "alice", "Alice Example", "14.00", "3", "1", "0", "0", "0", "0", "0", "Active"}, records[1])
	assert.Equal(t, "0.25", records[2][10])
}

func TestWriteEntriesTable(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)
	var buf bytes.Buffer
	cfg := &contract.Config{Width: 200}
	require.NoError(t, writeEntriesTable(&buf, testEntries, cfg, fmtFloat, intFmt))

	out := buf.String()
	assert.Contains(t, out, "alice (Alice E)")
	assert.Contains(t, out, "bob")
	assert.Contains(t, out, "14.0")
	assert.Contains(t, strings.ToUpper(out), "CONTRIBUTOR")
}

func TestWriteLeaderboardJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path, Precision: 2}
	board := schema.Leaderboard{Type: schema.OverallBoard, Title: "Overall", Entries: testEntries, Count: 2}

	require.NoError(t, NewOutWriter().WriteLeaderboard(board, cfg))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded schema.Leaderboard
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, board.Entries, decoded.Entries)
	assert.Equal(t, 2, decoded.Count)
}

func TestWriteRankingTextToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.txt")
	cfg := &contract.Config{Output: schema.TextOut, OutputFile: path, Precision: 0, Width: 120}
	page := schema.RankingPage{
		Mode:       schema.CommitsBoard,
		Period:     schema.WeeklyPeriod,
		Title:      "Top Committers",
		Entries:    testEntries[:1],
		Pagination: schema.Pagination{Page: 1, Limit: 10, Total: 1, TotalPages: 1},
	}

	require.NoError(t, NewOutWriter().WriteRanking(page, cfg))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Top Committers (weekly, all repositories)")
	assert.Contains(t, string(raw), "Page 1 of 1 (1 contributors)")
}

func TestWriteContributorText(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)
	detail := schema.ContributorDetail{
		Rank: 2,
		Contributor: schema.Contributor{
			Username: "alice",
			Profile:  schema.Profile{Name: "Alice Example"},
			RepositoryStats: []schema.RepositoryStats{
				{Repository: "ethereum/EIPs", Score: 14, Commits: 3, PullRequests: 1, Activities: 4},
			},
			Totals:         schema.Totals{ActivityScore: 14, Activities: 4},
			ActivityStatus: schema.ActiveStatus,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeContributorText(&buf, detail, fmtFloat, intFmt))
	out := buf.String()
	assert.Contains(t, out, "alice (Alice E)  #2")
	assert.Contains(t, out, "Score: 14.0  Activities: 4")
	assert.Contains(t, out, "ethereum/EIPs")
	assert.Contains(t, out, "0 snapshots on record")

	buf.Reset()
	detail.Rank = 0
	require.NoError(t, writeContributorText(&buf, detail, fmtFloat, intFmt))
	assert.Contains(t, buf.String(), "unranked")
}

func TestWriteRepoStatsCSV(t *testing.T) {
	fmtFloat, intFmt := createFormatters(2)
	c := schema.Contributor{
		Username: "alice",
		RepositoryStats: []schema.RepositoryStats{
			{Repository: "ethereum/EIPs", Score: 9, Commits: 3, Activities: 3},
			{Repository: "ethereum/ERCs", Score: 8, Reviews: 1, Activities: 1},
		},
	}
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, repoStatsCSVHeader, func(w *csv.Writer) error {
		return writeRepoStatsCSV(w, c, fmtFloat, intFmt)
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "ethereum/ERCs", records[2][1])
	assert.Equal(t, "8.00", records[2][2])
	assert.Equal(t, "-", records[2][10])
}

func TestWriteStatusText(t *testing.T) {
	last := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	report := StatusReport{
		Store: schema.StoreStatus{Backend: "sqlite", Connected: true, Activities: 10, Contributors: 3, Snapshots: 6},
		Repositories: []schema.SyncState{
			{Repository: "ethereum/EIPs", Status: schema.SyncIdle, LastSyncAt: &last, ActivitiesProcessed: 10},
			{Repository: "ethereum/ERCs", Status: schema.SyncFailed, Cursor: `{"phase":"pulls","page":2}`, Error: "rate limited"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeStatusText(&buf, report))
	out := buf.String()
	assert.Contains(t, out, "Store: sqlite (connected: true)")
	assert.Contains(t, out, "Activities: 10  Contributors: 3  Snapshots: 6")
	assert.Contains(t, out, "ethereum/ERCs")
	assert.Contains(t, out, "rate limited")

	buf.Reset()
	require.NoError(t, writeCSVWithHeader(&buf, syncStateCSVHeader, func(w *csv.Writer) error {
		return writeSyncStatesCSV(w, report.Repositories)
	}))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"ethereum/ERCs", "failed", "-", "-", "0", "true", "rate limited"}, records[2])
}

func TestWriteRunCSVToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.csv")
	cfg := &contract.Config{Output: schema.CSVOut, OutputFile: path}
	summary := schema.RunSummary{
		RunID: "run-1",
		Results: []schema.RepoOutcome{
			{Repository: "ethereum/EIPs", Status: schema.SyncIdle, ActivitiesProcessed: 4, Contributors: 1},
			{Repository: "ethereum/RIPs", Status: schema.SyncRunning, Skipped: true},
		},
	}

	require.NoError(t, NewOutWriter().WriteRun(summary, cfg, time.Second))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"run-1", "ethereum/RIPs", "running", "true", "0", "0", "0", "0", ""}, records[2])
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{80, 10},
		{120, 25},
		{300, 40},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, getMaxTableNameWidth(&contract.Config{Width: tt.width}))
	}
}
