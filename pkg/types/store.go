package types

import (
	"context"
	"errors"
)

// Store defines the record store lifecycle. Callers attach to a backend,
// obtain the ForageableDAO, and detach when done. A process constructs one
// Store at startup and passes it to whoever needs it.
type Store interface {
	// Attach opens the backend described by config. Creates the DataDir if
	// it does not exist. Returns ErrAlreadyAttached if already attached.
	Attach(config Config) error

	// DAO returns the access interface for forageables.
	// Returns ErrStoreDetached if the store is not attached.
	DAO() (ForageableDAO, error)

	// Health checks that the underlying database answers queries.
	Health(ctx context.Context) error

	// Detach flushes pending writes, ends every live stream and releases
	// backend resources. Idempotent.
	Detach() error
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)
