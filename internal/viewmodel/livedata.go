package viewmodel

import (
	"context"
	"sync"
)

// Source opens an upstream stream. The stream ends when ctx is cancelled or
// the returned cleanup func is called.
type Source[T any] func(ctx context.Context) (<-chan T, func())

// LiveData holds the latest value of an upstream stream and fans it out to
// observers. The upstream is open only while at least one observer is
// registered.
//
// Observer callbacks run one at a time, in value order. A callback must not
// call Observe on the same LiveData.
type LiveData[T any] struct {
	source Source[T]

	deliver sync.Mutex // serializes callbacks

	mu        sync.Mutex
	value     T
	hasValue  bool
	observers map[int]func(T)
	nextID    int
	gen       int
	stop      func()
	closed    bool

	idle func() // called after the last observer leaves; set before first use
}

// NewLiveData returns a LiveData fed by source.
func NewLiveData[T any](source Source[T]) *LiveData[T] {
	return &LiveData[T]{
		source:    source,
		observers: make(map[int]func(T)),
	}
}

// Value returns the latest value and whether one has been received.
func (l *LiveData[T]) Value() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.hasValue
}

// Observe registers fn. fn receives the current value immediately, if there
// is one, and every later value. Call the returned func to stop observing.
func (l *LiveData[T]) Observe(fn func(T)) (cancel func()) {
	l.deliver.Lock()
	defer l.deliver.Unlock()

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return func() {}
	}
	id := l.nextID
	l.nextID++
	l.observers[id] = fn
	if len(l.observers) == 1 {
		l.start()
	}
	value, ok := l.value, l.hasValue
	l.mu.Unlock()

	if ok {
		fn(value)
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

// Observers returns the number of registered observers.
func (l *LiveData[T]) Observers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.observers)
}

// Close drops every observer and closes the upstream. Later Observe calls
// are no-ops.
func (l *LiveData[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	clear(l.observers)
	l.halt()
}

func (l *LiveData[T]) remove(id int) {
	l.mu.Lock()
	if _, ok := l.observers[id]; !ok {
		l.mu.Unlock()
		return
	}
	delete(l.observers, id)
	last := len(l.observers) == 0
	if last {
		l.halt()
	}
	l.mu.Unlock()

	if last && l.idle != nil {
		l.idle()
	}
}

// start opens the upstream. Caller holds l.mu.
func (l *LiveData[T]) start() {
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(context.Background())
	stream, cleanup := l.source(ctx)
	l.stop = func() {
		cancel()
		cleanup()
	}
	go l.pump(gen, stream)
}

// halt closes the upstream. Caller holds l.mu.
func (l *LiveData[T]) halt() {
	if l.stop == nil {
		return
	}
	l.stop()
	l.stop = nil
	l.gen++
}

func (l *LiveData[T]) pump(gen int, stream <-chan T) {
	for v := range stream {
		l.deliver.Lock()
		l.mu.Lock()
		if l.gen != gen {
			l.mu.Unlock()
			l.deliver.Unlock()
			continue
		}
		l.value = v
		l.hasValue = true
		fns := make([]func(T), 0, len(l.observers))
		for _, fn := range l.observers {
			fns = append(fns, fn)
		}
		l.mu.Unlock()

		for _, fn := range fns {
			fn(v)
		}
		l.deliver.Unlock()
	}
}
