package iocache

import (
	"context"
	"time"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetStore implements the StoreManager interface.
func (m *MockStoreManager) GetStore() contract.Store {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.Store)
	return store
}

// MockStore is a mock implementation of Store for testing.
type MockStore struct {
	mock.Mock
}

var _ contract.Store = &MockStore{} // Compile-time check

// UpsertActivities implements the Store interface.
func (m *MockStore) UpsertActivities(ctx context.Context, activities []schema.Activity) (int, error) {
	args := m.Called(ctx, activities)
	return args.Int(0), args.Error(1)
}

// ListActivities implements the Store interface.
func (m *MockStore) ListActivities(ctx context.Context, filter schema.ActivityFilter) ([]schema.Activity, int, error) {
	args := m.Called(ctx, filter)
	activities, _ := args.Get(0).([]schema.Activity)
	return activities, args.Int(1), args.Error(2)
}

// ActivitiesForUser implements the Store interface.
func (m *MockStore) ActivitiesForUser(ctx context.Context, username string) ([]schema.Activity, error) {
	args := m.Called(ctx, username)
	activities, _ := args.Get(0).([]schema.Activity)
	return activities, args.Error(1)
}

// CountActivities implements the Store interface.
func (m *MockStore) CountActivities(ctx context.Context, since time.Time, repository string) (int, error) {
	args := m.Called(ctx, since, repository)
	return args.Int(0), args.Error(1)
}

// CountByUserAndType implements the Store interface.
func (m *MockStore) CountByUserAndType(ctx context.Context, since time.Time, repository string) ([]schema.ActivityCount, error) {
	args := m.Called(ctx, since, repository)
	counts, _ := args.Get(0).([]schema.ActivityCount)
	return counts, args.Error(1)
}

// ActivityUsernames implements the Store interface.
func (m *MockStore) ActivityUsernames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

// UpsertContributor implements the Store interface.
func (m *MockStore) UpsertContributor(ctx context.Context, contributor schema.Contributor) error {
	args := m.Called(ctx, contributor)
	return args.Error(0)
}

// GetContributor implements the Store interface.
func (m *MockStore) GetContributor(ctx context.Context, username string) (schema.Contributor, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(schema.Contributor), args.Error(1)
}

// ListContributors implements the Store interface.
func (m *MockStore) ListContributors(ctx context.Context, filter schema.ContributorFilter) ([]schema.Contributor, int, error) {
	args := m.Called(ctx, filter)
	contributors, _ := args.Get(0).([]schema.Contributor)
	return contributors, args.Int(1), args.Error(2)
}

// AllContributors implements the Store interface.
func (m *MockStore) AllContributors(ctx context.Context) ([]schema.Contributor, error) {
	args := m.Called(ctx)
	contributors, _ := args.Get(0).([]schema.Contributor)
	return contributors, args.Error(1)
}

// UpdateProfile implements the Store interface.
func (m *MockStore) UpdateProfile(ctx context.Context, username string, profile schema.Profile) error {
	args := m.Called(ctx, username, profile)
	return args.Error(0)
}

// InsertSnapshot implements the Store interface.
func (m *MockStore) InsertSnapshot(ctx context.Context, snapshot schema.ContributorSnapshot) (bool, error) {
	args := m.Called(ctx, snapshot)
	return args.Bool(0), args.Error(1)
}

// RecentSnapshots implements the Store interface.
func (m *MockStore) RecentSnapshots(ctx context.Context, username string, limit int) ([]schema.ContributorSnapshot, error) {
	args := m.Called(ctx, username, limit)
	snaps, _ := args.Get(0).([]schema.ContributorSnapshot)
	return snaps, args.Error(1)
}

// SnapshotsOn implements the Store interface.
func (m *MockStore) SnapshotsOn(ctx context.Context, date time.Time) ([]schema.ContributorSnapshot, error) {
	args := m.Called(ctx, date)
	snaps, _ := args.Get(0).([]schema.ContributorSnapshot)
	return snaps, args.Error(1)
}

// GetSyncState implements the Store interface.
func (m *MockStore) GetSyncState(ctx context.Context, repository string) (schema.SyncState, error) {
	args := m.Called(ctx, repository)
	return args.Get(0).(schema.SyncState), args.Error(1)
}

// TryBeginSync implements the Store interface.
func (m *MockStore) TryBeginSync(ctx context.Context, repository string, startedAt time.Time, staleAfter time.Duration) (bool, error) {
	args := m.Called(ctx, repository, startedAt, staleAfter)
	return args.Bool(0), args.Error(1)
}

// FinishSync implements the Store interface.
func (m *MockStore) FinishSync(ctx context.Context, state schema.SyncState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// SaveCursor implements the Store interface.
func (m *MockStore) SaveCursor(ctx context.Context, repository string, cursor string) error {
	args := m.Called(ctx, repository, cursor)
	return args.Error(0)
}

// ListSyncStates implements the Store interface.
func (m *MockStore) ListSyncStates(ctx context.Context) ([]schema.SyncState, error) {
	args := m.Called(ctx)
	states, _ := args.Get(0).([]schema.SyncState)
	return states, args.Error(1)
}

// GetStatus implements the Store interface.
func (m *MockStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the Store interface.
func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
