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

func TestSnapshotDate(t *testing.T) {
	in := time.Date(2025, 3, 4, 23, 59, 0, 0, time.FixedZone("x", -5*3600))
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), snapshotDate(in))
}

func TestCaptureSnapshotIsIdempotentPerDay(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t, eips)
	seed(t, store, exampleLog()...)
	seed(t, store, activity("bob", eips, schema.IssueOpened, "issue:3", now))
	_, err := engine.RecomputeAll(ctx)
	require.NoError(t, err)

	first, err := engine.CaptureSnapshot(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Captured)
	assert.Equal(t, 0, first.Existing)

	second, err := engine.CaptureSnapshot(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Captured)
	assert.Equal(t, 2, second.Existing)

	snaps, err := store.SnapshotsOn(ctx, snapshotDate(now))
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	for _, s := range snaps {
		if s.Username == "alice" {
			assert.InDelta(t, 14.0, s.Totals.ActivityScore, 1e-9)
		}
	}
}

func TestCaptureSnapshotNeverRewrites(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t, eips)
	seed(t, store, exampleLog()...)
	_, err := engine.RecomputeAll(ctx)
	require.NoError(t, err)
	_, err = engine.CaptureSnapshot(ctx, now)
	require.NoError(t, err)

	// More activity on the same day does not change the captured snapshot.
	seed(t, store, activity("alice", eips, schema.PRMerged, "pr:1", now))
	_, err = engine.RecomputeContributor(ctx, "alice")
	require.NoError(t, err)
	_, err = engine.CaptureSnapshot(ctx, now)
	require.NoError(t, err)

	snaps, err := store.RecentSnapshots(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.InDelta(t, 14.0, snaps[0].Totals.ActivityScore, 1e-9)
}

func TestCaptureSnapshotRecomputesBeforeCapture(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t, eips)
	seed(t, store, exampleLog()...)
	_, err := engine.RecomputeAll(ctx)
	require.NoError(t, err)

	// A weight change reaches the snapshot without a sync touching alice,
	// and bob is captured even though nothing aggregated him yet.
	cfg := testConfig(eips)
	cfg.Weights = schema.GetDefaultWeights()
	cfg.Weights[schema.Commit] = 1
	reweighted := NewEngine(cfg, store, contract.FixedClock{T: now}, nil)
	seed(t, store, activity("bob", eips, schema.IssueOpened, "issue:3", now))

	res, err := reweighted.CaptureSnapshot(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Captured)

	snaps, err := store.RecentSnapshots(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.InDelta(t, 3*1.0+5, snaps[0].Totals.ActivityScore, 1e-9)

	alice, err := store.GetContributor(ctx, "alice")
	require.NoError(t, err)
	assert.InDelta(t, 8.0, alice.Totals.ActivityScore, 1e-9)
	_, err = store.GetContributor(ctx, "bob")
	assert.NoError(t, err)
}

func TestCaptureSnapshotEmptyStore(t *testing.T) {
	engine, _ := newTestEngine(t)
	res, err := engine.CaptureSnapshot(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Captured)
}
