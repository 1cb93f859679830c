package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/contriboard/schema"
)

const syncStateSelect = "SELECT repository, status, last_sync_at, started_at, activities_processed, sync_cursor, last_error FROM " + syncStateTable

// GetSyncState returns the stored state of a repository, or idle if it was never synced.
func (s *SQLStore) GetSyncState(ctx context.Context, repository string) (schema.SyncState, error) {
	if s.disabled() {
		return schema.SyncState{Repository: repository, Status: schema.SyncIdle}, nil
	}
	state, err := scanSyncState(s.db.QueryRowContext(ctx, s.rebind(syncStateSelect+" WHERE repository = ?"), repository))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.SyncState{Repository: repository, Status: schema.SyncIdle}, nil
	}
	if err != nil {
		return schema.SyncState{}, fmt.Errorf("failed to read sync state of %s: %w", repository, err)
	}
	return state, nil
}

// TryBeginSync atomically marks a repository running. It returns false when
// another run holds it and started less than staleAfter ago.
func (s *SQLStore) TryBeginSync(ctx context.Context, repository string, startedAt time.Time, staleAfter time.Duration) (bool, error) {
	if s.disabled() {
		return true, nil
	}

	seed := s.insertIgnoreQuery(syncStateTable,
		[]string{"repository", "status", "activities_processed", "sync_cursor", "last_error"}, "repository")
	if _, err := s.db.ExecContext(ctx, seed, repository, string(schema.SyncIdle), 0, "", ""); err != nil {
		return false, fmt.Errorf("failed to seed sync state of %s: %w", repository, err)
	}

	query := fmt.Sprintf(
		"UPDATE %s SET status = ?, started_at = ? WHERE repository = ? AND (status <> ? OR started_at IS NULL OR started_at < ?)",
		syncStateTable)
	res, err := s.db.ExecContext(ctx, s.rebind(query),
		string(schema.SyncRunning), s.formatTime(startedAt), repository,
		string(schema.SyncRunning), s.formatTime(startedAt.Add(-staleAfter)),
	)
	if err != nil {
		return false, fmt.Errorf("failed to begin sync of %s: %w", repository, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read sync begin result: %w", err)
	}
	return n == 1, nil
}

// FinishSync persists the final state of a run.
func (s *SQLStore) FinishSync(ctx context.Context, state schema.SyncState) error {
	if s.disabled() {
		return nil
	}
	query := fmt.Sprintf(
		"UPDATE %s SET status = ?, last_sync_at = ?, started_at = ?, activities_processed = ?, sync_cursor = ?, last_error = ? WHERE repository = ?",
		syncStateTable)
	_, err := s.db.ExecContext(ctx, s.rebind(query),
		string(state.Status), s.nullableTime(state.LastSyncAt), s.nullableTime(state.StartedAt),
		state.ActivitiesProcessed, state.Cursor, state.Error, state.Repository,
	)
	if err != nil {
		return fmt.Errorf("failed to finish sync of %s: %w", state.Repository, err)
	}
	return nil
}

// SaveCursor records the resumable position of a running sync.
func (s *SQLStore) SaveCursor(ctx context.Context, repository string, cursor string) error {
	if s.disabled() {
		return nil
	}
	query := fmt.Sprintf("UPDATE %s SET sync_cursor = ? WHERE repository = ?", syncStateTable)
	if _, err := s.db.ExecContext(ctx, s.rebind(query), cursor, repository); err != nil {
		return fmt.Errorf("failed to save cursor of %s: %w", repository, err)
	}
	return nil
}

// ListSyncStates returns every stored sync state ordered by repository.
func (s *SQLStore) ListSyncStates(ctx context.Context) ([]schema.SyncState, error) {
	if s.disabled() {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, syncStateSelect+" ORDER BY repository ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list sync states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var states []schema.SyncState
	for rows.Next() {
		state, err := scanSyncState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync state: %w", err)
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

func scanSyncState(row rowScanner) (schema.SyncState, error) {
	var (
		state             schema.SyncState
		status            string
		lastSync, started dbTime
	)
	if err := row.Scan(&state.Repository, &status, &lastSync, &started,
		&state.ActivitiesProcessed, &state.Cursor, &state.Error); err != nil {
		return state, err
	}
	state.Status = schema.SyncStatus(status)
	state.LastSyncAt = lastSync.Ptr()
	state.StartedAt = started.Ptr()
	return state, nil
}
