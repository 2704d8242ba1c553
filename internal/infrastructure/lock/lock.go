// Package lock provides the per-order mutual exclusion used while a payment
// is applied to an order's schedule or the schedule is replayed.
//
// Three backends are available: an in-process keyed mutex for single-instance
// deployments, and Redis or PostgreSQL advisory locks when several instances
// share one database.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
)

// Locker acquires a named lock. The returned release func must be called once.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// Options bounds how long Lock waits for a busy key
type Options struct {
	// Wait is the longest Lock blocks before failing with shared.ErrLockTimeout.
	// Zero waits until ctx is done.
	Wait time.Duration
	// RetryInterval is the polling period of the Redis and PostgreSQL backends
	RetryInterval time.Duration
}

const defaultRetryInterval = 50 * time.Millisecond

func (o Options) retryInterval() time.Duration {
	if o.RetryInterval <= 0 {
		return defaultRetryInterval
	}
	return o.RetryInterval
}

// waitContext derives the context bounding one acquisition
func (o Options) waitContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.Wait <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.Wait)
}

// timeoutError reports why waiting stopped: the caller's own context wins
// over the lock wait budget.
func timeoutError(parent context.Context, key string) error {
	if err := parent.Err(); err != nil {
		return err
	}
	return shared.ErrLockTimeout.WithMessage("Timed out waiting for lock " + key)
}

// poll calls try until it succeeds, fails, or ctx is done
func poll(ctx context.Context, interval time.Duration, try func(context.Context) (bool, error)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		ok, err := try(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func isWaitExpired(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
