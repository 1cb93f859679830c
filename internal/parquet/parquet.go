// Package parquet provides data structures and functions for exporting the
// activity log and contributor history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/contriboard/schema"
	"github.com/parquet-go/parquet-go"
)

// ActivityRow is one canonical activity.
// This struct maps to the contriboard_activities table.
type ActivityRow struct {
	ActivityID   string    `parquet:"activity_id,snappy"`
	Username     string    `parquet:"username,snappy,dict"`
	Repository   string    `parquet:"repository,snappy,dict"`
	ActivityType string    `parquet:"activity_type,snappy,dict"`
	EntityRef    string    `parquet:"entity_ref,snappy"`
	OccurredAt   time.Time `parquet:"occurred_at,snappy"`

	// Title is the pull request or issue title, or the first commit line (nullable)
	Title *string `parquet:"title,optional,snappy"`

	// URL links back to the source entity (nullable)
	URL *string `parquet:"url,optional,snappy"`
}

// SnapshotRow is one dated copy of a contributor's totals.
// This struct maps to the contriboard_snapshots table.
type SnapshotRow struct {
	Username      string    `parquet:"username,snappy,dict"`
	SnapshotDate  time.Time `parquet:"snapshot_date,snappy"`
	ActivityScore float64   `parquet:"activity_score,snappy"`
	Commits       int32     `parquet:"commits,snappy"`
	PRsOpened     int32     `parquet:"prs_opened,snappy"`
	PRsMerged     int32     `parquet:"prs_merged,snappy"`
	Reviews       int32     `parquet:"reviews,snappy"`
	Comments      int32     `parquet:"comments,snappy"`
	IssuesOpened  int32     `parquet:"issues_opened,snappy"`
	Activities    int32     `parquet:"activities,snappy"`
	CapturedAt    time.Time `parquet:"captured_at,snappy"`
}

// ContributorRow is the current aggregate of one contributor.
// This struct maps to the contriboard_contributors table.
type ContributorRow struct {
	Username        string    `parquet:"username,snappy"`
	Name            *string   `parquet:"name,optional,snappy"`
	ActivityScore   float64   `parquet:"activity_score,snappy"`
	Commits         int32     `parquet:"commits,snappy"`
	PRsOpened       int32     `parquet:"prs_opened,snappy"`
	PRsMerged       int32     `parquet:"prs_merged,snappy"`
	Reviews         int32     `parquet:"reviews,snappy"`
	Comments        int32     `parquet:"comments,snappy"`
	IssuesOpened    int32     `parquet:"issues_opened,snappy"`
	Activities      int32     `parquet:"activities,snappy"`
	Repositories    int32     `parquet:"repositories,snappy"`
	ActivityStatus  string    `parquet:"activity_status,snappy,dict"`
	RisingStarIndex float64   `parquet:"rising_star_index,snappy"`
	FirstActivityAt time.Time `parquet:"first_activity_at,snappy"`
	LastActivityAt  time.Time `parquet:"last_activity_at,snappy"`
}

// writeRows writes rows to a new Parquet file with the schema inferred from T.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the row groups and the footer.
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteActivitiesParquet writes activity rows to a Parquet file.
func WriteActivitiesParquet(data []ActivityRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteSnapshotsParquet writes snapshot rows to a Parquet file.
func WriteSnapshotsParquet(data []SnapshotRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteContributorsParquet writes contributor rows to a Parquet file.
func WriteContributorsParquet(data []ContributorRow, outputPath string) error {
	return writeRows(data, outputPath)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ConvertActivities converts schema.Activity records to ActivityRow for Parquet export.
func ConvertActivities(activities []schema.Activity) []ActivityRow {
	result := make([]ActivityRow, len(activities))
	for i, a := range activities {
		title := a.Metadata.Title
		if title == "" {
			title = a.Metadata.Message
		}
		result[i] = ActivityRow{
			ActivityID:   a.ID,
			Username:     a.Username,
			Repository:   a.Repository,
			ActivityType: string(a.ActivityType),
			EntityRef:    a.EntityRef,
			OccurredAt:   a.Timestamp.UTC(),
			Title:        optional(title),
			URL:          optional(a.Metadata.URL),
		}
	}
	return result
}

// ConvertSnapshots converts schema.ContributorSnapshot records to SnapshotRow for Parquet export.
func ConvertSnapshots(snapshots []schema.ContributorSnapshot) []SnapshotRow {
	result := make([]SnapshotRow, len(snapshots))
	for i, s := range snapshots {
		result[i] = SnapshotRow{
			Username:      s.Username,
			SnapshotDate:  s.Date.UTC(),
			ActivityScore: s.Totals.ActivityScore,
			Commits:       int32(s.Totals.Commits),
			PRsOpened:     int32(s.Totals.PRsOpened),
			PRsMerged:     int32(s.Totals.PRsMerged),
			Reviews:       int32(s.Totals.Reviews),
			Comments:      int32(s.Totals.Comments),
			IssuesOpened:  int32(s.Totals.IssuesOpened),
			Activities:    int32(s.Totals.Activities),
			CapturedAt:    s.CapturedAt.UTC(),
		}
	}
	return result
}

// ConvertContributors converts schema.Contributor records to ContributorRow for Parquet export.
func ConvertContributors(contributors []schema.Contributor) []ContributorRow {
	result := make([]ContributorRow, len(contributors))
	for i, c := range contributors {
		result[i] = ContributorRow{
			Username:        c.Username,
			Name:            optional(c.Profile.Name),
			ActivityScore:   c.Totals.ActivityScore,
			Commits:         int32(c.Totals.Commits),
			PRsOpened:       int32(c.Totals.PRsOpened),
			PRsMerged:       int32(c.Totals.PRsMerged),
			Reviews:         int32(c.Totals.Reviews),
			Comments:        int32(c.Totals.Comments),
			IssuesOpened:    int32(c.Totals.IssuesOpened),
			Activities:      int32(c.Totals.Activities),
			Repositories:    int32(len(c.RepositoryStats)),
			ActivityStatus:  string(c.ActivityStatus),
			RisingStarIndex: c.RisingStarIndex,
			FirstActivityAt: c.FirstActivityAt.UTC(),
			LastActivityAt:  c.LastActivityAt.UTC(),
		}
	}
	return result
}
