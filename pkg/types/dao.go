package types

import (
	"context"
	"errors"
)

// ForageableDAO is the only sanctioned way to read and write forageables.
//
// Watch methods return live streams: the current result is sent as soon as
// the subscription starts and again after every committed change to the
// forageables table. A stream ends (its channel is closed) when ctx is
// cancelled, when the returned cancel func is called, or when the store
// detaches. The cancel func must be called to release the subscription.
type ForageableDAO interface {
	// List returns every forageable ordered by name ascending.
	List(ctx context.Context) ([]Forageable, error)

	// WatchAll streams List results.
	WatchAll(ctx context.Context) (<-chan []Forageable, func())

	// Get returns the forageable with the given ID.
	// Returns ErrNotFound if no row has that ID.
	Get(ctx context.Context, id int64) (*Forageable, error)

	// Watch streams Get results. A nil value means the row is absent.
	Watch(ctx context.Context, id int64) (<-chan *Forageable, func())

	// Insert stores f, replacing any row with the same ID. When f.ID is 0
	// the store assigns the next unused ID. Returns the stored ID.
	Insert(ctx context.Context, f Forageable) (int64, error)

	// Update replaces every field of the row matching f.ID.
	// Missing rows are ignored.
	Update(ctx context.Context, f Forageable) error

	// Delete removes the row matching f.ID. Missing rows are ignored.
	Delete(ctx context.Context, f Forageable) error
}

// DAO errors.
var (
	ErrNotFound  = errors.New("forageable not found")
	ErrInvalidID = errors.New("invalid forageable ID")
)
