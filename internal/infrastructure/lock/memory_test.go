package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_SerializesSameKey(t *testing.T) {
	l := NewMemoryLocker(Options{})
	ctx := context.Background()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(ctx, "order-1")
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Zero(t, l.size())
}

func TestMemoryLocker_IndependentKeys(t *testing.T) {
	l := NewMemoryLocker(Options{Wait: 50 * time.Millisecond})
	ctx := context.Background()

	releaseA, err := l.Lock(ctx, "order-a")
	require.NoError(t, err)
	releaseB, err := l.Lock(ctx, "order-b")
	require.NoError(t, err)

	releaseA()
	releaseB()
	assert.Zero(t, l.size())
}

func TestMemoryLocker_WaitBudget(t *testing.T) {
	l := NewMemoryLocker(Options{Wait: 20 * time.Millisecond})
	ctx := context.Background()

	release, err := l.Lock(ctx, "order-1")
	require.NoError(t, err)

	_, err = l.Lock(ctx, "order-1")
	assert.ErrorIs(t, err, shared.ErrLockTimeout)

	release()
	release() // second call is a no-op

	again, err := l.Lock(ctx, "order-1")
	require.NoError(t, err)
	again()
	assert.Zero(t, l.size())
}

func TestMemoryLocker_CallerContextWins(t *testing.T) {
	l := NewMemoryLocker(Options{Wait: time.Minute})
	release, err := l.Lock(context.Background(), "order-1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Lock(ctx, "order-1")
	assert.ErrorIs(t, err, context.Canceled)
}
