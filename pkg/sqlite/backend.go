// Package sqlite provides the public API for the SQLite forage store.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/forage/internal/sqlite"
	"github.com/mesh-intelligence/forage/pkg/types"
)

// Option configures a store created by NewBackend.
type Option = sqlite.Option

// WithLogger sets the logger used by the store and its change bus.
func WithLogger(logger *slog.Logger) Option {
	return sqlite.WithLogger(logger)
}

// NewBackend creates a new SQLite store. The store is not attached; call
// Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".forage-db",
//	})
//	defer store.Detach()
//
//	dao, err := store.DAO()
func NewBackend(opts ...Option) types.Store {
	return sqlite.NewBackend(opts...)
}
