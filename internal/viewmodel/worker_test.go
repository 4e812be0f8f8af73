package viewmodel

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerWaitWithConcurrentSubmits(t *testing.T) {
	w := newWorker(quietLogger, nil)
	defer w.close()

	var ran atomic.Int64
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 50 {
				assert.NoError(t, w.submit(job{op: "count", run: func(context.Context) error {
					ran.Add(1)
					return nil
				}}))
			}
		}()
		go func() {
			defer wg.Done()
			for range 20 {
				w.wait()
			}
		}()
	}
	wg.Wait()

	w.wait()
	assert.Equal(t, int64(400), ran.Load())
}

func TestWorkerWaitOnIdleReturns(t *testing.T) {
	w := newWorker(quietLogger, nil)
	w.wait()
	require.NoError(t, w.close())
	assert.ErrorIs(t, w.submit(job{op: "late", run: func(context.Context) error { return nil }}), errWorkerClosed)
	w.wait()
}
