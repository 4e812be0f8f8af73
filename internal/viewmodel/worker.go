package viewmodel

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

var errWorkerClosed = errors.New("write worker closed")

// job is one queued write. op names it in logs.
type job struct {
	op  string
	run func(ctx context.Context) error
}

// worker runs queued jobs one at a time in submission order. The queue is
// unbounded so submit never blocks.
type worker struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	logger *slog.Logger
	onErr  func(op string, err error)

	mu      sync.Mutex
	queue   []job
	closed  bool
	wake    chan struct{}
	pending int        // submitted but not yet run; protected by mu
	idle    *sync.Cond // signalled on mu when pending drops to zero
}

func newWorker(logger *slog.Logger, onErr func(string, error)) *worker {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	w := &worker{
		ctx:    gctx,
		cancel: cancel,
		group:  g,
		logger: logger,
		onErr:  onErr,
		wake:   make(chan struct{}, 1),
	}
	w.idle = sync.NewCond(&w.mu)
	g.Go(w.loop)
	return w
}

// submit queues j and returns immediately.
func (w *worker) submit(j job) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return errWorkerClosed
	}
	w.pending++
	w.queue = append(w.queue, j)
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

// wait blocks until every submitted job has run.
func (w *worker) wait() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.pending > 0 {
		w.idle.Wait()
	}
}

// close stops accepting jobs, runs what is queued, and stops the loop.
func (w *worker) close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	err := w.group.Wait()
	w.cancel()
	return err
}

func (w *worker) loop() error {
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			closed := w.closed
			w.mu.Unlock()
			if closed {
				return nil
			}
			select {
			case <-w.wake:
			case <-w.ctx.Done():
				return w.ctx.Err()
			}
			continue
		}
		j := w.queue[0]
		w.queue[0] = job{}
		w.queue = w.queue[1:]
		w.mu.Unlock()

		w.run(j)
	}
}

func (w *worker) run(j job) {
	defer w.done()
	if err := j.run(w.ctx); err != nil {
		w.logger.Error("write failed", "op", j.op, "error", err)
		if w.onErr != nil {
			w.onErr(j.op, err)
		}
		return
	}
	w.logger.Debug("write applied", "op", j.op)
}

func (w *worker) done() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending--
	if w.pending == 0 {
		w.idle.Broadcast()
	}
}
