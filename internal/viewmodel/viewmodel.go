package viewmodel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/forage/pkg/types"
)

// Write operation names passed to the error handler.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Option configures a ForageableViewModel.
type Option func(*ForageableViewModel)

// WithLogger sets the logger for write failures and lifecycle messages.
func WithLogger(logger *slog.Logger) Option {
	return func(vm *ForageableViewModel) {
		vm.logger = logger
	}
}

// WithWriteErrorHandler registers fn to be called, on the worker goroutine,
// for every write that fails. Failures are logged either way.
func WithWriteErrorHandler(fn func(op string, err error)) Option {
	return func(vm *ForageableViewModel) {
		vm.onWriteErr = fn
	}
}

// ForageableViewModel exposes forageables as observable state and applies
// writes asynchronously. Writes are fire-and-forget: they return before the
// store is touched and never report errors to the caller.
type ForageableViewModel struct {
	dao        types.ForageableDAO
	logger     *slog.Logger
	onWriteErr func(op string, err error)
	writes     *worker

	all *LiveData[[]types.Forageable]

	mu   sync.Mutex
	byID map[int64]*LiveData[*types.Forageable]
}

// NewForageableViewModel starts the write worker. Call Close when done.
func NewForageableViewModel(dao types.ForageableDAO, opts ...Option) *ForageableViewModel {
	vm := &ForageableViewModel{
		dao:    dao,
		logger: slog.Default().With("component", "viewmodel"),
		byID:   make(map[int64]*LiveData[*types.Forageable]),
	}
	for _, opt := range opts {
		opt(vm)
	}
	vm.writes = newWorker(vm.logger, vm.onWriteErr)
	vm.all = NewLiveData[[]types.Forageable](dao.WatchAll)
	return vm
}

// AllForageables returns every forageable ordered by name.
func (vm *ForageableViewModel) AllForageables() *LiveData[[]types.Forageable] {
	return vm.all
}

// Get returns the forageable with id; the value is nil while it does not
// exist. Calls with the same id share one LiveData while it has observers.
// Once its last observer leaves it is dropped, and a later Get returns a
// fresh one.
func (vm *ForageableViewModel) Get(id int64) *LiveData[*types.Forageable] {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if ld, ok := vm.byID[id]; ok {
		return ld
	}
	ld := NewLiveData[*types.Forageable](func(ctx context.Context) (<-chan *types.Forageable, func()) {
		return vm.dao.Watch(ctx, id)
	})
	ld.idle = func() { vm.evict(id, ld) }
	vm.byID[id] = ld
	return ld
}

// evict drops ld from the cache unless it has been replaced or observed
// again since it went idle.
func (vm *ForageableViewModel) evict(id int64, ld *LiveData[*types.Forageable]) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.byID[id] == ld && ld.Observers() == 0 {
		delete(vm.byID, id)
	}
}

// AddForageable queues insertion of a new forageable. The store assigns
// its id.
func (vm *ForageableViewModel) AddForageable(name, address string, inSeason bool, notes string) {
	f := types.Forageable{
		Name:     name,
		Address:  address,
		InSeason: inSeason,
		Notes:    notes,
	}
	vm.dispatch(OpAdd, func(ctx context.Context) error {
		id, err := vm.dao.Insert(ctx, f)
		if err != nil {
			return fmt.Errorf("inserting %q: %w", f.Name, err)
		}
		vm.logger.Debug("forageable added", "id", id, "name", f.Name)
		return nil
	})
}

// UpdateForageable queues replacement of every field of forageable id.
// Nothing happens if id does not exist.
func (vm *ForageableViewModel) UpdateForageable(id int64, name, address string, inSeason bool, notes string) {
	f := types.Forageable{
		ID:       id,
		Name:     name,
		Address:  address,
		InSeason: inSeason,
		Notes:    notes,
	}
	vm.dispatch(OpUpdate, func(ctx context.Context) error {
		if err := vm.dao.Update(ctx, f); err != nil {
			return fmt.Errorf("updating forageable %d: %w", f.ID, err)
		}
		return nil
	})
}

// DeleteForageable queues deletion of f by id.
func (vm *ForageableViewModel) DeleteForageable(f types.Forageable) {
	vm.dispatch(OpDelete, func(ctx context.Context) error {
		if err := vm.dao.Delete(ctx, f); err != nil {
			return fmt.Errorf("deleting forageable %d: %w", f.ID, err)
		}
		return nil
	})
}

// IsValidEntry reports whether name and address are both non-blank.
// Add and Update do not check it.
func (vm *ForageableViewModel) IsValidEntry(name, address string) bool {
	return !types.IsBlank(name) && !types.IsBlank(address)
}

// Wait blocks until every write queued so far has been applied or failed.
func (vm *ForageableViewModel) Wait() {
	vm.writes.wait()
}

// Close applies queued writes, stops the worker, and closes every LiveData.
func (vm *ForageableViewModel) Close() error {
	err := vm.writes.close()

	vm.all.Close()
	vm.mu.Lock()
	for _, ld := range vm.byID {
		ld.Close()
	}
	clear(vm.byID)
	vm.mu.Unlock()

	if err != nil {
		return fmt.Errorf("stopping write worker: %w", err)
	}
	return nil
}

func (vm *ForageableViewModel) dispatch(op string, run func(context.Context) error) {
	if err := vm.writes.submit(job{op: op, run: run}); err != nil {
		vm.logger.Warn("write dropped", "op", op, "error", err)
	}
}
