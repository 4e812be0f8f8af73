package viewmodel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mesh-intelligence/forage/internal/sqlite"
	"github.com/mesh-intelligence/forage/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func setupViewModel(t *testing.T, opts ...Option) (*ForageableViewModel, types.ForageableDAO) {
	t.Helper()
	b := sqlite.NewBackend(sqlite.WithLogger(quietLogger))
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { b.Detach() })

	dao, err := b.DAO()
	require.NoError(t, err)

	vm := NewForageableViewModel(dao, append([]Option{WithLogger(quietLogger)}, opts...)...)
	t.Cleanup(func() { vm.Close() })
	return vm, dao
}

// latest observes ld and returns a func reporting the last value seen.
func latest[T any](t *testing.T, ld *LiveData[T]) func() (T, bool) {
	t.Helper()
	var (
		mu   sync.Mutex
		last T
		seen bool
	)
	cancel := ld.Observe(func(v T) {
		mu.Lock()
		defer mu.Unlock()
		last, seen = v, true
	})
	t.Cleanup(cancel)
	return func() (T, bool) {
		mu.Lock()
		defer mu.Unlock()
		return last, seen
	}
}

func forageableNames(fs []types.Forageable) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

func TestIsValidEntry(t *testing.T) {
	vm := &ForageableViewModel{}
	tests := []struct {
		name    string
		fname   string
		address string
		want    bool
	}{
		{"both present", "Morel", "123 Oak St", true},
		{"empty name", "", "123 Oak St", false},
		{"empty address", "Morel", "", false},
		{"whitespace name", "   ", "123 Oak St", false},
		{"tab and newline address", "Morel", "\t\n", false},
		{"padded values", "  Morel ", " Oak ", true},
		{"both empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vm.IsValidEntry(tt.fname, tt.address))
		})
	}
}

func TestAddForageableAppearsInList(t *testing.T) {
	vm, _ := setupViewModel(t)
	all := latest(t, vm.AllForageables())

	vm.AddForageable("Chanterelle", "North ridge", true, "")
	vm.AddForageable("Acorn", "City park", false, "leach first")
	vm.Wait()

	assert.Eventually(t, func() bool {
		fs, ok := all()
		return ok && len(fs) == 2
	}, 2*time.Second, 10*time.Millisecond)

	fs, _ := all()
	assert.Equal(t, []string{"Acorn", "Chanterelle"}, forageableNames(fs))
	assert.NotEqual(t, fs[0].ID, fs[1].ID)
	assert.Equal(t, "leach first", fs[0].Notes)
}

func TestAddForageableAcceptsBlankFields(t *testing.T) {
	vm, dao := setupViewModel(t)

	vm.AddForageable("", "", false, "")
	vm.Wait()

	all, err := dao.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateForageable(t *testing.T) {
	vm, dao := setupViewModel(t)
	ctx := context.Background()

	id, err := dao.Insert(ctx, types.Forageable{Name: "Morel", Address: "Oak", InSeason: true, Notes: "n"})
	require.NoError(t, err)

	one := latest(t, vm.Get(id))

	vm.UpdateForageable(id, "Morel", "Elm", false, "")
	vm.Wait()

	assert.Eventually(t, func() bool {
		f, ok := one()
		return ok && f != nil && f.Address == "Elm"
	}, 2*time.Second, 10*time.Millisecond)
	f, _ := one()
	assert.Equal(t, types.Forageable{ID: id, Name: "Morel", Address: "Elm"}, *f)

	vm.UpdateForageable(id+50, "Ghost", "Nowhere", false, "")
	vm.Wait()
	all, err := dao.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Morel"}, forageableNames(all))
}

func TestDeleteForageableEmitsAbsent(t *testing.T) {
	vm, dao := setupViewModel(t)

	id, err := dao.Insert(context.Background(), types.Forageable{Name: "Morel", Address: "Oak"})
	require.NoError(t, err)

	one := latest(t, vm.Get(id))
	assert.Eventually(t, func() bool {
		f, ok := one()
		return ok && f != nil
	}, 2*time.Second, 10*time.Millisecond)

	vm.DeleteForageable(types.Forageable{ID: id})
	vm.Wait()

	assert.Eventually(t, func() bool {
		f, ok := one()
		return ok && f == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGetSharesLiveData(t *testing.T) {
	vm, _ := setupViewModel(t)
	assert.Same(t, vm.Get(3), vm.Get(3))
	assert.NotSame(t, vm.Get(3), vm.Get(4))
}

func TestGetDropsLiveDataWithoutObservers(t *testing.T) {
	vm, _ := setupViewModel(t)

	first := vm.Get(3)
	stopA := first.Observe(func(*types.Forageable) {})
	stopB := first.Observe(func(*types.Forageable) {})

	stopA()
	assert.Same(t, first, vm.Get(3), "still observed")

	stopB()
	vm.mu.Lock()
	assert.Empty(t, vm.byID)
	vm.mu.Unlock()
	assert.NotSame(t, first, vm.Get(3))
}

func TestGetLiveDataWorksAfterReobserve(t *testing.T) {
	vm, dao := setupViewModel(t)
	id, err := dao.Insert(context.Background(), types.Forageable{Name: "Morel", Address: "Oak"})
	require.NoError(t, err)

	stop := vm.Get(id).Observe(func(*types.Forageable) {})
	stop()

	one := latest(t, vm.Get(id))
	assert.Eventually(t, func() bool {
		f, ok := one()
		return ok && f != nil && f.Name == "Morel"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWritesApplyInOrder(t *testing.T) {
	vm, dao := setupViewModel(t)
	ctx := context.Background()

	id, err := dao.Insert(ctx, types.Forageable{Name: "v0", Address: "a"})
	require.NoError(t, err)

	for _, n := range []string{"v1", "v2", "v3", "v4", "v5"} {
		vm.UpdateForageable(id, n, "a", false, "")
	}
	vm.DeleteForageable(types.Forageable{ID: id})
	vm.AddForageable("after", "a", false, "")
	vm.Wait()

	all, err := dao.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"after"}, forageableNames(all))
}

// failingDAO fails every write.
type failingDAO struct {
	types.ForageableDAO
	err error
}

func (d failingDAO) WatchAll(ctx context.Context) (<-chan []types.Forageable, func()) {
	ch := make(chan []types.Forageable)
	close(ch)
	return ch, func() {}
}

func (d failingDAO) Insert(context.Context, types.Forageable) (int64, error) { return 0, d.err }
func (d failingDAO) Update(context.Context, types.Forageable) error          { return d.err }
func (d failingDAO) Delete(context.Context, types.Forageable) error          { return d.err }

func TestWriteFailuresAreReportedNotReturned(t *testing.T) {
	boom := errors.New("disk full")

	var (
		mu   sync.Mutex
		seen []string
	)
	vm := NewForageableViewModel(failingDAO{err: boom},
		WithLogger(quietLogger),
		WithWriteErrorHandler(func(op string, err error) {
			assert.ErrorIs(t, err, boom)
			mu.Lock()
			seen = append(seen, op)
			mu.Unlock()
		}),
	)

	vm.AddForageable("Morel", "Oak", true, "")
	vm.UpdateForageable(1, "Morel", "Oak", true, "")
	vm.DeleteForageable(types.Forageable{ID: 1})
	vm.Wait()
	require.NoError(t, vm.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{OpAdd, OpUpdate, OpDelete}, seen)
}

func TestWritesAfterCloseAreDropped(t *testing.T) {
	vm, dao := setupViewModel(t)
	require.NoError(t, vm.Close())
	require.NoError(t, vm.Close())

	vm.AddForageable("Late", "Oak", false, "")
	vm.Wait()

	all, err := dao.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
