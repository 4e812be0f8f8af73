package sqlite

import (
	"context"
	"errors"

	"github.com/mesh-intelligence/forage/internal/events"
	"github.com/mesh-intelligence/forage/pkg/types"
)

// WatchAll streams the List result, re-emitting after every change.
func (t *forageablesTable) WatchAll(ctx context.Context) (<-chan []types.Forageable, func()) {
	return watchQuery(ctx, t.backend, t.List)
}

// Watch streams the forageable with the given id; nil means absent.
func (t *forageablesTable) Watch(ctx context.Context, id int64) (<-chan *types.Forageable, func()) {
	return watchQuery(ctx, t.backend, func(ctx context.Context) (*types.Forageable, error) {
		f, err := t.Get(ctx, id)
		if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrInvalidID) {
			return nil, nil
		}
		return f, err
	})
}

// watchQuery runs query once, then again each time the forageables table
// changes, sending each result on the returned channel. The channel holds
// at most one result: an unread result is replaced by a newer one, so a slow
// reader only ever sees the latest state. The stream ends when ctx is done,
// cancel is called, the store detaches, or query fails.
func watchQuery[T any](ctx context.Context, b *Backend, query func(context.Context) (T, error)) (<-chan T, func()) {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan T, 1)

	b.mu.RLock()
	bus := b.bus
	attached := b.attached
	b.mu.RUnlock()

	if !attached || bus == nil {
		close(out)
		return out, cancel
	}

	// Subscribe before the first query so no change is missed between them.
	signals, unsubscribe := bus.Subscribe(ctx, events.Filter{Tables: []string{tableForageables}}, 1)

	go func() {
		defer close(out)
		defer unsubscribe()

		for {
			result, err := query(ctx)
			if err != nil {
				if ctx.Err() == nil && !errors.Is(err, types.ErrStoreDetached) {
					b.logger.Warn("live query failed", "error", err)
				}
				return
			}

			select {
			case <-out:
			default:
			}
			out <- result

			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
			}
		}
	}()

	return out, cancel
}
