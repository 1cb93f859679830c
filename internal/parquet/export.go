package parquet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
)

// File names written by ExportStore inside the output directory.
const (
	ActivitiesFile   = "activities.parquet"
	ContributorsFile = "contributors.parquet"
	SnapshotsFile    = "snapshots.parquet"
)

// ExportResult counts the rows written to each file.
type ExportResult struct {
	Dir          string
	Activities   int
	Contributors int
	Snapshots    int
}

// ExportStore writes the activity log, contributor aggregates and full
// snapshot history of store into three Parquet files under dir.
func ExportStore(ctx context.Context, store contract.Store, dir string) (ExportResult, error) {
	result := ExportResult{Dir: dir}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result, fmt.Errorf("failed to create export directory: %w", err)
	}

	activities, _, err := store.ListActivities(ctx, schema.ActivityFilter{})
	if err != nil {
		return result, fmt.Errorf("failed to read activities: %w", err)
	}
	if err := WriteActivitiesParquet(ConvertActivities(activities), filepath.Join(dir, ActivitiesFile)); err != nil {
		return result, err
	}
	result.Activities = len(activities)

	contributors, err := store.AllContributors(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read contributors: %w", err)
	}
	if err := WriteContributorsParquet(ConvertContributors(contributors), filepath.Join(dir, ContributorsFile)); err != nil {
		return result, err
	}
	result.Contributors = len(contributors)

	var snapshots []schema.ContributorSnapshot
	for _, c := range contributors {
		snaps, err := store.RecentSnapshots(ctx, c.Username, 0)
		if err != nil {
			return result, fmt.Errorf("failed to read snapshots for %s: %w", c.Username, err)
		}
		snapshots = append(snapshots, snaps...)
	}
	if err := WriteSnapshotsParquet(ConvertSnapshots(snapshots), filepath.Join(dir, SnapshotsFile)); err != nil {
		return result, err
	}
	result.Snapshots = len(snapshots)
	return result, nil
}
