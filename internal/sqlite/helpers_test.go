package sqlite

import (
	"testing"
	"time"

	"github.com/mesh-intelligence/forage/pkg/types"
	"github.com/stretchr/testify/require"
)

// setupBackend attaches a Backend to a fresh temp dir and detaches it when
// the test ends.
func setupBackend(t *testing.T) (*Backend, types.ForageableDAO) {
	t.Helper()
	return setupBackendWithConfig(t, types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	})
}

func setupBackendWithConfig(t *testing.T, config types.Config) (*Backend, types.ForageableDAO) {
	t.Helper()
	b := NewBackend()
	require.NoError(t, b.Attach(config))
	t.Cleanup(func() { b.Detach() })

	dao, err := b.DAO()
	require.NoError(t, err)
	return b, dao
}

// waitFor reads from ch until match returns true, failing after a timeout
// or if ch closes first. Returns the matching value.
func waitFor[T any](t *testing.T, ch <-chan T, match func(T) bool) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case v, ok := <-ch:
			require.True(t, ok, "stream closed before expected value")
			if match(v) {
				return v
			}
		case <-deadline:
			t.Fatal("timed out waiting for stream value")
		}
	}
}

// waitClosed fails unless ch closes within the timeout.
func waitClosed[T any](t *testing.T, ch <-chan T) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for stream to close")
		}
	}
}

func names(fs []types.Forageable) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

const (
	time2s = 2 * time.Second
	tick   = 10 * time.Millisecond
)
