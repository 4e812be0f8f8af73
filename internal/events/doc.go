// Package events distributes change notifications from the record store to
// live query subscribers.
//
// The store publishes one Event per committed write. Each live query holds a
// subscription filtered to the tables it reads, and re-runs its query when a
// signal arrives. Subscribers with a full buffer have the event dropped:
// they already hold an unread signal, and re-querying once covers both
// changes.
//
// Usage:
//
//	bus := events.NewBus()
//	defer bus.Close()
//
//	ch, cancel := bus.Subscribe(ctx, events.Filter{Tables: []string{"forageables"}}, 1)
//	defer cancel()
//
//	for range ch {
//		// re-run the query
//	}
package events
