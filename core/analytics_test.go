package core

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsRange(t *testing.T) {
	date := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	tests := []struct {
		name      string
		timeline  schema.AnalyticsTimeline
		start     time.Time
		end       time.Time
		wantFrom  time.Time
		wantUntil time.Time
		wantErr   bool
	}{
		{name: "default is thirty days", wantFrom: now.AddDate(0, 0, -30)},
		{name: "thirty days", timeline: schema.Last30DaysTimeline, wantFrom: now.AddDate(0, 0, -30)},
		{name: "month", timeline: schema.LastMonthTimeline, wantFrom: now.AddDate(0, -1, 0)},
		{name: "year", timeline: schema.LastYearTimeline, wantFrom: now.AddDate(-1, 0, 0)},
		{name: "all", timeline: schema.AllTimeTimeline},
		{
			name:      "custom widens to whole months",
			timeline:  schema.CustomTimeline,
			start:     date(2025, time.February, 14),
			end:       date(2025, time.March, 3),
			wantFrom:  date(2025, time.February, 1),
			wantUntil: date(2025, time.April, 1),
		},
		{
			name:      "custom across a year end",
			timeline:  schema.CustomTimeline,
			start:     date(2024, time.December, 31),
			end:       date(2024, time.December, 31),
			wantFrom:  date(2024, time.December, 1),
			wantUntil: date(2025, time.January, 1),
		},
		{name: "custom without end", timeline: schema.CustomTimeline, start: date(2025, time.February, 1), wantErr: true},
		{name: "custom end before start", timeline: schema.CustomTimeline, start: date(2025, time.March, 1), end: date(2025, time.January, 9), wantErr: true},
		{name: "unknown timeline", timeline: "decade", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, until, err := AnalyticsRange(tt.timeline, tt.start, tt.end, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, contract.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantUntil, until)
		})
	}
}

func TestAnalytics(t *testing.T) {
	ctx := context.Background()
	const widgets = "acme/widgets"
	engine, store := newTestEngine(t, eips, widgets)
	seed(t, store, exampleLog()...)
	seed(t, store,
		activity("alice", widgets, schema.ReviewApproved, "review:1", now.AddDate(0, 0, -1)),
		activity("alice", eips, schema.IssueComment, "comment:1", now.AddDate(0, 0, -60)),
		activity("bob", eips, schema.Commit, "commit:z", now.AddDate(0, 0, -1)),
	)
	_, err := engine.RecomputeAll(ctx)
	require.NoError(t, err)

	last30 := now.AddDate(0, 0, -30)
	tests := []struct {
		name       string
		username   string
		repository string
		from       time.Time
		wantTotal  int
		wantByType []schema.TypeCount
		wantByDate []schema.DailyActivity
	}{
		{
			name:      "one contributor over thirty days",
			username:  "alice",
			from:      last30,
			wantTotal: 5,
			wantByType: []schema.TypeCount{
				{ActivityType: schema.Commit, Count: 3},
				{ActivityType: schema.PROpened, Count: 1},
				{ActivityType: schema.ReviewApproved, Count: 1},
			},
			wantByDate: []schema.DailyActivity{
				{Date: "2025-05-29", Commits: 1},
				{Date: "2025-05-30", Commits: 1},
				{Date: "2025-05-31", Commits: 1, PullRequests: 1, Reviews: 1},
			},
		},
		{
			name:       "one repository",
			username:   "alice",
			repository: widgets,
			from:       last30,
			wantTotal:  1,
			wantByType: []schema.TypeCount{{ActivityType: schema.ReviewApproved, Count: 1}},
			wantByDate: []schema.DailyActivity{{Date: "2025-05-31", Reviews: 1}},
		},
		{
			name:      "all time includes older comments",
			username:  "alice",
			wantTotal: 6,
			wantByType: []schema.TypeCount{
				{ActivityType: schema.Commit, Count: 3},
				{ActivityType: schema.PROpened, Count: 1},
				{ActivityType: schema.ReviewApproved, Count: 1},
				{ActivityType: schema.IssueComment, Count: 1},
			},
			wantByDate: []schema.DailyActivity{
				{Date: "2025-04-02", Comments: 1},
				{Date: "2025-05-29", Commits: 1},
				{Date: "2025-05-30", Commits: 1},
				{Date: "2025-05-31", Commits: 1, PullRequests: 1, Reviews: 1},
			},
		},
		{
			name:      "every contributor",
			from:      last30,
			wantTotal: 6,
			wantByType: []schema.TypeCount{
				{ActivityType: schema.Commit, Count: 4},
				{ActivityType: schema.PROpened, Count: 1},
				{ActivityType: schema.ReviewApproved, Count: 1},
			},
			wantByDate: []schema.DailyActivity{
				{Date: "2025-05-29", Commits: 1},
				{Date: "2025-05-30", Commits: 1},
				{Date: "2025-05-31", Commits: 2, PullRequests: 1, Reviews: 1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Analytics(ctx, tt.username, tt.repository, tt.from, time.Time{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, got.Total)
			assert.Equal(t, tt.wantByType, got.ActivityByType)
			assert.Equal(t, tt.wantByDate, got.ActivityByDate)
		})
	}

	t.Run("upper bound is exclusive", func(t *testing.T) {
		got, err := engine.Analytics(ctx, "alice", "", time.Time{}, now.AddDate(0, 0, -2))
		require.NoError(t, err)
		assert.Equal(t, 2, got.Total)
		assert.Equal(t, []schema.DailyActivity{
			{Date: "2025-04-02", Comments: 1},
			{Date: "2025-05-29", Commits: 1},
		}, got.ActivityByDate)
	})

	t.Run("unknown contributor", func(t *testing.T) {
		_, err := engine.Analytics(ctx, "ghost", "", time.Time{}, time.Time{})
		assert.ErrorIs(t, err, contract.ErrNotFound)
	})

	t.Run("no activity in range", func(t *testing.T) {
		got, err := engine.Analytics(ctx, "bob", widgets, time.Time{}, time.Time{})
		require.NoError(t, err)
		assert.Zero(t, got.Total)
		assert.NotNil(t, got.ActivityByType)
		assert.NotNil(t, got.ActivityByDate)
	})
}
