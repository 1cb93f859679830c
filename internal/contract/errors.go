package contract

import "errors"

// Sentinel errors shared across packages.
var (
	ErrConfig          = errors.New("invalid configuration")
	ErrNoCredentials   = errors.New("no source credentials configured")
	ErrAcquireTimeout  = errors.New("timed out waiting for a source credential")
	ErrSyncRunning     = errors.New("sync already running")
	ErrNotFound        = errors.New("not found")
	ErrStoreDisabled   = errors.New("storage backend is disabled")
	ErrUnauthenticated = errors.New("missing or invalid trigger secret")
	ErrInvalidInput    = errors.New("invalid input")
)
