package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestBus_BasicPublishSubscribe tests basic publish and subscribe functionality.
func TestBus_BasicPublishSubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx := context.Background()

	ch, cleanup := bus.Subscribe(ctx, Filter{}, 10)
	defer cleanup()

	event := Event{Table: "forageables", Op: OpInsert, ID: 1}
	if err := bus.Publish(ctx, event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case received := <-ch:
		if received.Op != OpInsert || received.ID != 1 {
			t.Errorf("Expected insert of row 1, got %+v", received)
		}
		if received.Timestamp.IsZero() {
			t.Error("Expected Publish to stamp the event")
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
	}
}

// TestBus_FilterByTable tests filtering by table name.
func TestBus_FilterByTable(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx := context.Background()
	ch, cleanup := bus.Subscribe(ctx, Filter{Tables: []string{"forageables"}}, 10)
	defer cleanup()

	bus.Publish(ctx, Event{Table: "other", Op: OpInsert})
	bus.Publish(ctx, Event{Table: "forageables", Op: OpDelete, ID: 4})

	select {
	case received := <-ch:
		if received.Table != "forageables" {
			t.Errorf("Expected forageables event, got %q", received.Table)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for event")
	}

	select {
	case extra := <-ch:
		t.Fatalf("Unexpected event %+v", extra)
	default:
	}
}

// TestBus_SlowSubscriberDoesNotBlock verifies events are dropped instead of
// blocking the publisher when a buffer is full.
func TestBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx := context.Background()
	ch, cleanup := bus.Subscribe(ctx, Filter{}, 1)
	defer cleanup()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(ctx, Event{Table: "forageables", Op: OpUpdate, ID: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	if got := len(ch); got != 1 {
		t.Errorf("Expected exactly one buffered event, got %d", got)
	}
}

// TestBus_CleanupClosesChannel verifies cleanup closes the channel and is idempotent.
func TestBus_CleanupClosesChannel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cleanup := bus.Subscribe(context.Background(), Filter{}, 0)
	if bus.SubscriberCount() != 1 {
		t.Fatalf("Expected 1 subscriber, got %d", bus.SubscriberCount())
	}

	cleanup()
	cleanup()

	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after cleanup")
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", bus.SubscriberCount())
	}
}

// TestBus_Close verifies Close ends subscriptions and rejects publishes.
func TestBus_Close(t *testing.T) {
	bus := NewBus()
	ch, cleanup := bus.Subscribe(context.Background(), Filter{}, 0)
	defer cleanup()

	if err := bus.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after Close")
	}

	err := bus.Publish(context.Background(), Event{Table: "forageables"})
	if !errors.Is(err, ErrBusClosed) {
		t.Errorf("Expected ErrBusClosed, got %v", err)
	}

	late, lateCleanup := bus.Subscribe(context.Background(), Filter{}, 0)
	defer lateCleanup()
	if _, ok := <-late; ok {
		t.Error("Expected closed channel when subscribing to a closed bus")
	}
}

// TestBus_CancelledSubscriberSkipped verifies cancelled subscriptions receive nothing.
func TestBus_CancelledSubscriberSkipped(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, cleanup := bus.Subscribe(ctx, Filter{}, 4)
	defer cleanup()

	cancel()
	bus.Publish(context.Background(), Event{Table: "forageables"})

	select {
	case ev := <-ch:
		t.Fatalf("Cancelled subscriber received %+v", ev)
	default:
	}
}

// TestBus_DefaultBufferSize verifies a non-positive size gets the default buffer.
func TestBus_DefaultBufferSize(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cleanup := bus.Subscribe(context.Background(), Filter{}, -1)
	defer cleanup()

	if cap(ch) != defaultBufferSize {
		t.Errorf("Expected buffer %d, got %d", defaultBufferSize, cap(ch))
	}
}
