package core

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/internal/iocache"
	"github.com/huangsam/contriboard/schema"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) contract.Store {
	t.Helper()
	store, err := iocache.NewStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "core.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testConfig(repos ...string) *contract.Config {
	return &contract.Config{
		Repositories:        repos,
		Tokens:              []string{"token-a", "token-b"},
		Lookback:            365 * 24 * time.Hour,
		PerPage:             50,
		MaxRetries:          2,
		MaxRotations:        2,
		AcquireTimeout:      2 * time.Second,
		RequestTimeout:      5 * time.Second,
		StaleSyncAfter:      time.Hour,
		ProfileRefreshAfter: 7 * 24 * time.Hour,
		Weights:             schema.GetDefaultWeights(),
		MentorMinReviews:    contract.DefaultMentorMinReviews,
		RisingStarWindow:    contract.DefaultRisingStarWindow,
		ActiveDays:          contract.DefaultActiveDays,
		OccasionalDays:      contract.DefaultOccasionalDays,
		DBBackend:           schema.SQLiteBackend,
	}
}

func newTestEngine(t *testing.T, repos ...string) (*Engine, contract.Store) {
	t.Helper()
	store := newTestStore(t)
	return NewEngine(testConfig(repos...), store, contract.FixedClock{T: now}, nil), store
}

func activity(user, repo string, typ schema.ActivityType, ref string, at time.Time) schema.Activity {
	return schema.Activity{
		ID:           schema.ActivityID(repo, typ, ref),
		Username:     user,
		Repository:   repo,
		ActivityType: typ,
		EntityRef:    ref,
		Timestamp:    at,
	}
}

func seed(t *testing.T, store contract.Store, activities ...schema.Activity) {
	t.Helper()
	_, err := store.UpsertActivities(context.Background(), activities)
	require.NoError(t, err)
}
