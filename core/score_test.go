package core

import (
	"context"
	"testing"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eips = "ethereum/EIPs"

func exampleLog() []schema.Activity {
	return []schema.Activity{
		activity("alice", eips, schema.Commit, "commit:a", now.AddDate(0, 0, -3)),
		activity("alice", eips, schema.Commit, "commit:b", now.AddDate(0, 0, -2)),
		activity("alice", eips, schema.Commit, "commit:c", now.AddDate(0, 0, -1)),
		activity("alice", eips, schema.PROpened, "pr:1", now.AddDate(0, 0, -1)),
	}
}

func TestRecomputeContributorScoresAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t, eips)

	seed(t, store, exampleLog()...)
	c, err := engine.RecomputeContributor(ctx, "alice")
	require.NoError(t, err)
	assert.InDelta(t, 14.0, c.Totals.ActivityScore, 1e-9)
	assert.Equal(t, 3, c.Totals.Commits)
	assert.Equal(t, 1, c.Totals.PRsOpened)

	inserted, err := store.UpsertActivities(ctx, exampleLog())
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	again, err := engine.RecomputeContributor(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, c.Totals, again.Totals)

	stored, err := store.GetContributor(ctx, "alice")
	require.NoError(t, err)
	assert.InDelta(t, 14.0, stored.Totals.ActivityScore, 1e-9)
	assert.Equal(t, schema.ActiveStatus, stored.ActivityStatus)
	assert.Equal(t, 0.0, stored.RisingStarIndex)
}

func TestRecomputeContributorTotalsMatchRepositoryStats(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t, eips, "ethereum/ERCs")
	seed(t, store, exampleLog()...)
	seed(t, store,
		activity("alice", "ethereum/ERCs", schema.ReviewApproved, "review:2:1", now.AddDate(0, 0, -40)),
		activity("alice", "ethereum/ERCs", schema.IssueComment, "comment:5", now.AddDate(0, 0, -41)),
	)

	c, err := engine.RecomputeContributor(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, c.RepositoryStats, 2)

	var score float64
	var reviews, comments, commits int
	for _, rs := range c.RepositoryStats {
		score += rs.Score
		reviews += rs.Reviews
		comments += rs.Comments
		commits += rs.Commits
	}
	assert.Equal(t, score, c.Totals.ActivityScore)
	assert.Equal(t, reviews, c.Totals.Reviews)
	assert.Equal(t, comments, c.Totals.Comments)
	assert.Equal(t, commits, c.Totals.Commits)
	assert.Equal(t, now.AddDate(0, 0, -41), c.FirstActivityAt)
}

func TestRecomputeContributorUnknown(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.RecomputeContributor(context.Background(), "ghost")
	assert.ErrorIs(t, err, contract.ErrNotFound)
}

func TestRecomputeContributorStatus(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t, eips)
	seed(t, store,
		activity("old", eips, schema.Commit, "commit:o", now.AddDate(0, 0, -200)),
		activity("mid", eips, schema.Commit, "commit:m", now.AddDate(0, 0, -60)),
	)

	old, err := engine.RecomputeContributor(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, schema.DormantStatus, old.ActivityStatus)

	mid, err := engine.RecomputeContributor(ctx, "mid")
	require.NoError(t, err)
	assert.Equal(t, schema.OccasionalStatus, mid.ActivityStatus)
}

func TestRecomputeAll(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t, eips)
	seed(t, store, exampleLog()...)
	seed(t, store, activity("bob", eips, schema.IssueOpened, "issue:1", now))

	n, err := engine.RecomputeAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := store.AllContributors(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRecomputeUsesRisingStarHistory(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t, eips)
	seed(t, store, exampleLog()...)

	for i, score := range []float64{0, 3, 6} {
		_, err := store.InsertSnapshot(ctx, schema.ContributorSnapshot{
			Username:   "alice",
			Date:       snapshotDate(now.AddDate(0, 0, i-3)),
			Totals:     schema.Totals{ActivityScore: score},
			CapturedAt: now,
		})
		require.NoError(t, err)
	}

	c, err := engine.RecomputeContributor(ctx, "alice")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, c.RisingStarIndex, 1e-9)
}
