package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrBusClosed is returned by Publish after Close.
var ErrBusClosed = errors.New("event bus is closed")

// Bus fans committed-change events out to subscribers.
//
// All methods are safe for concurrent use. Publish never blocks on a slow
// subscriber; the event is dropped for that subscriber instead.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]*subscription
	options     *busOptions
	closed      bool
}

type subscription struct {
	id       string
	ch       chan Event
	filter   Filter
	ctx      context.Context
	cancel   context.CancelFunc
	created  time.Time
	received atomic.Int64
	dropped  atomic.Int64
}

// defaultBufferSize is used when Subscribe is called with bufferSize <= 0.
const defaultBufferSize = 16

type busOptions struct {
	logger *slog.Logger
}

// Option configures a Bus.
type Option func(*busOptions)

// WithLogger sets the logger used for subscription lifecycle and drops.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *busOptions) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

// NewBus creates a Bus with the given options.
func NewBus(opts ...Option) *Bus {
	options := &busOptions{
		logger: slog.Default().With("component", "events"),
	}
	for _, opt := range opts {
		opt(options)
	}
	return &Bus{
		subscribers: make(map[string]*subscription),
		options:     options,
	}
}

// Publish sends event to every subscriber whose filter matches it.
// Returns ErrBusClosed after Close, or ctx.Err() if ctx is done.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	for _, sub := range b.subscribers {
		select {
		case <-sub.ctx.Done():
			continue
		default:
		}

		if !sub.filter.Matches(event) {
			continue
		}

		select {
		case sub.ch <- event:
			sub.received.Add(1)
		case <-ctx.Done():
			return ctx.Err()
		default:
			// Subscriber already has unread events; it will observe this
			// change when it catches up.
			sub.dropped.Add(1)
			b.options.logger.Debug("event dropped for busy subscriber",
				"subscriber_id", sub.id,
				"table", event.Table,
				"op", event.Op,
			)
		}
	}
	return nil
}

// Subscribe registers a subscriber and returns its channel and a cleanup
// func. The cleanup func closes the channel and must be called. Subscribing
// to a closed bus returns an already closed channel.
func (b *Bus) Subscribe(ctx context.Context, filter Filter, bufferSize int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	if b.closed {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		id:      uuid.NewString(),
		ch:      make(chan Event, bufferSize),
		filter:  filter,
		ctx:     subCtx,
		cancel:  cancel,
		created: time.Now(),
	}
	b.subscribers[sub.id] = sub
	b.options.logger.Debug("subscriber added", "subscriber_id", sub.id, "tables", filter.Tables)

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() { b.unsubscribe(sub.id) })
	}
}

func (b *Bus) unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subscribers[id]
	if !ok {
		return
	}
	sub.cancel()
	close(sub.ch)
	delete(b.subscribers, id)
	b.options.logger.Debug("subscriber removed",
		"subscriber_id", id,
		"received", sub.received.Load(),
		"dropped", sub.dropped.Load(),
		"duration", time.Since(sub.created),
	)
}

// Close closes every subscriber channel. Later Publish calls return
// ErrBusClosed. Idempotent.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for id, sub := range b.subscribers {
		sub.cancel()
		close(sub.ch)
		delete(b.subscribers, id)
	}
	return nil
}

// SubscriberCount returns the number of active subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
