package iocache

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/huangsam/contriboard/schema"
)

var snapshotColumns = []string{"username", "snapshot_date", "activity_score", "totals", "captured_at"}

// InsertSnapshot writes a snapshot unless one exists for the same username and date.
func (s *SQLStore) InsertSnapshot(ctx context.Context, snap schema.ContributorSnapshot) (bool, error) {
	if s.disabled() {
		return false, nil
	}
	totalsJSON, err := json.Marshal(snap.Totals)
	if err != nil {
		return false, fmt.Errorf("failed to encode snapshot totals: %w", err)
	}
	capturedAt := snap.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = s.now()
	}

	res, err := s.db.ExecContext(ctx, s.insertIgnoreQuery(snapshotsTable, snapshotColumns, "username"),
		snap.Username, dateValue(snap.Date), snap.Totals.ActivityScore, string(totalsJSON), s.formatTime(capturedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert snapshot for %s: %w", snap.Username, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read snapshot insert result: %w", err)
	}
	return n == 1, nil
}

// RecentSnapshots returns the latest limit snapshots of a username, oldest first.
// A non-positive limit returns every snapshot.
func (s *SQLStore) RecentSnapshots(ctx context.Context, username string, limit int) ([]schema.ContributorSnapshot, error) {
	if s.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT username, snapshot_date, totals, captured_at FROM %s WHERE username = ? ORDER BY snapshot_date DESC", snapshotsTable)
	args := []any{username}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	snaps, err := s.querySnapshots(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	slices.Reverse(snaps)
	return snaps, nil
}

// SnapshotsOn returns every snapshot for a calendar date ordered by username.
func (s *SQLStore) SnapshotsOn(ctx context.Context, date time.Time) ([]schema.ContributorSnapshot, error) {
	if s.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT username, snapshot_date, totals, captured_at FROM %s WHERE snapshot_date = ? ORDER BY username ASC", snapshotsTable)
	return s.querySnapshots(ctx, s.rebind(query), dateValue(date))
}

func (s *SQLStore) querySnapshots(ctx context.Context, query string, args ...any) ([]schema.ContributorSnapshot, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snaps []schema.ContributorSnapshot
	for rows.Next() {
		var (
			snap       schema.ContributorSnapshot
			date       string
			totalsJSON string
			capturedAt dbTime
		)
		if err := rows.Scan(&snap.Username, &date, &totalsJSON, &capturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		d, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot date %q: %w", date, err)
		}
		if err := json.Unmarshal([]byte(totalsJSON), &snap.Totals); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot totals: %w", err)
		}
		snap.Date = d
		snap.CapturedAt = capturedAt.Time
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
