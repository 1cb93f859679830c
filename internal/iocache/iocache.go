// Package iocache is for persisting activities, contributors, snapshots and sync state.
package iocache

import (
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/contriboard/internal/contract"
	"github.com/huangsam/contriboard/schema"
)

// StoreManager owns the store opened for one command and closes it once.
// Each command builds its own; nothing in this package holds a store.
type StoreManager struct {
	mu     sync.Mutex
	store  contract.Store
	closed bool
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// OpenStore opens the store for backend and hands it to a new manager.
func OpenStore(backend schema.DatabaseBackend, connStr string) (*StoreManager, error) {
	store, err := NewStore(backend, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return &StoreManager{store: store}, nil
}

// GetStore returns the managed store. A nil manager has no store.
func (mgr *StoreManager) GetStore() contract.Store {
	if mgr == nil {
		return nil
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return mgr.store
}

// Close closes the managed store. Later calls do nothing.
func (mgr *StoreManager) Close() error {
	if mgr == nil {
		return nil
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if mgr.closed || mgr.store == nil {
		return nil
	}
	mgr.closed = true
	return mgr.store.Close()
}

// ClearStore removes every persisted record for the backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it rolls back all migrations.
// For NoneBackend, it does nothing.
func ClearStore(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		dbFilePath := connStr
		if dbFilePath == "" {
			dbFilePath = contract.GetDBFilePath()
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		if _, err := Migrate(backend, connStr, 0); err != nil {
			return fmt.Errorf("failed to clear %s database: %w", backend, err)
		}
		return nil

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported backend for clearing: %s", backend)
	}
}

