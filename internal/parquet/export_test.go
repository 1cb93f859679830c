package parquet

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/contriboard/internal/iocache"
	"github.com/huangsam/contriboard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExportStore(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	store := &iocache.MockStore{}
	store.On("ListActivities", ctx, schema.ActivityFilter{}).Return([]schema.Activity{
		{ID: "a1", Username: "alice", Repository: "ethereum/EIPs", ActivityType: schema.Commit, EntityRef: "commit:a", Timestamp: day},
		{ID: "a2", Username: "bob", Repository: "ethereum/EIPs", ActivityType: schema.PRMerged, EntityRef: "pr:2", Timestamp: day},
	}, 2, nil)
	store.On("AllContributors", ctx).Return([]schema.Contributor{
		{Username: "alice", ActivityStatus: schema.ActiveStatus},
		{Username: "bob", ActivityStatus: schema.ActiveStatus},
	}, nil)
	store.On("RecentSnapshots", ctx, "alice", 0).Return([]schema.ContributorSnapshot{
		{Username: "alice", Date: day, CapturedAt: day},
		{Username: "alice", Date: day.AddDate(0, 0, 1), CapturedAt: day},
	}, nil)
	store.On("RecentSnapshots", ctx, "bob", 0).Return([]schema.ContributorSnapshot(nil), nil)

	dir := filepath.Join(t.TempDir(), "export")
	result, err := ExportStore(ctx, store, dir)
	require.NoError(t, err)
	store.AssertExpectations(t)

	assert.Equal(t, ExportResult{Dir: dir, Activities: 2, Contributors: 2, Snapshots: 2}, result)
	for _, name := range []string{ActivitiesFile, ContributorsFile, SnapshotsFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	rows := readAll[SnapshotRow](t, filepath.Join(dir, SnapshotsFile), 2)
	assert.Equal(t, "alice", rows[0].Username)
}

func TestExportStoreReadFailure(t *testing.T) {
	ctx := context.Background()
	store := &iocache.MockStore{}
	store.On("ListActivities", ctx, mock.Anything).Return(nil, 0, errors.New("boom"))

	_, err := ExportStore(ctx, store, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read activities")
}
