// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/contriboard/schema"
)

// ActivityStore defines the append-only log of canonical activities.
// Writes are idempotent upserts keyed by (repository, activity type, entity ref).
type ActivityStore interface {
	// UpsertActivities writes a batch and returns how many rows were new.
	UpsertActivities(ctx context.Context, activities []schema.Activity) (int, error)

	// ListActivities returns one filtered page plus the total match count.
	ListActivities(ctx context.Context, filter schema.ActivityFilter) ([]schema.Activity, int, error)

	// ActivitiesForUser returns every activity attributed to a username.
	ActivitiesForUser(ctx context.Context, username string) ([]schema.Activity, error)

	// CountActivities counts activities at or after since, optionally for one repository.
	CountActivities(ctx context.Context, since time.Time, repository string) (int, error)

	// CountByUserAndType groups activity counts at or after since.
	CountByUserAndType(ctx context.Context, since time.Time, repository string) ([]schema.ActivityCount, error)

	// ActivityUsernames lists every username with at least one activity.
	ActivityUsernames(ctx context.Context) ([]string, error)
}

// ContributorStore defines storage for materialized contributor aggregates.
type ContributorStore interface {
	UpsertContributor(ctx context.Context, contributor schema.Contributor) error
	GetContributor(ctx context.Context, username string) (schema.Contributor, error)
	ListContributors(ctx context.Context, filter schema.ContributorFilter) ([]schema.Contributor, int, error)
	AllContributors(ctx context.Context) ([]schema.Contributor, error)
	UpdateProfile(ctx context.Context, username string, profile schema.Profile) error
}

// SnapshotStore defines insert-only storage for dated contributor snapshots.
type SnapshotStore interface {
	// InsertSnapshot writes a snapshot and reports false if one already exists for (username, date).
	InsertSnapshot(ctx context.Context, snapshot schema.ContributorSnapshot) (bool, error)

	// RecentSnapshots returns up to limit snapshots for a username, oldest first.
	RecentSnapshots(ctx context.Context, username string, limit int) ([]schema.ContributorSnapshot, error)

	// SnapshotsOn returns every snapshot captured for a date.
	SnapshotsOn(ctx context.Context, date time.Time) ([]schema.ContributorSnapshot, error)
}

// SyncStateStore defines storage for per-repository sync state.
type SyncStateStore interface {
	// GetSyncState returns the state of a repository, or an idle state if none is stored.
	GetSyncState(ctx context.Context, repository string) (schema.SyncState, error)

	// TryBeginSync moves a repository to running unless it is already running.
	// A running state older than staleAfter is considered abandoned and may be taken over.
	TryBeginSync(ctx context.Context, repository string, startedAt time.Time, staleAfter time.Duration) (bool, error)

	// FinishSync persists the final state of a sync run.
	FinishSync(ctx context.Context, state schema.SyncState) error

	// SaveCursor persists the resumable position of an in-flight sync.
	SaveCursor(ctx context.Context, repository string, cursor string) error

	ListSyncStates(ctx context.Context) ([]schema.SyncState, error)
}

// Store bundles every logical collection the engine needs.
type Store interface {
	ActivityStore
	ContributorStore
	SnapshotStore
	SyncStateStore

	// GetStatus returns status information about the store
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}

// StoreManager defines the interface for accessing the active store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetStore() Store
}

// EventPublisher announces finished orchestration runs to downstream consumers.
type EventPublisher interface {
	PublishRun(ctx context.Context, summary schema.RunSummary) error
	Close() error
}

// Clock abstracts wall time so windows and snapshots can be tested.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock in UTC.
type SystemClock struct{}

// Now returns the current time in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock struct{ T time.Time }

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.T }
