package lock

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver for the lock pool
	"go.uber.org/zap"
)

// PostgresLocker uses session-level advisory locks keyed by hashtext(key).
// Each held lock pins one connection of its pool until release, so the pool
// must be reserved for locks: sharing the repositories' pool lets lock
// holders starve their own queries. A full pool makes Lock wait, and fail
// with ErrLockTimeout once the wait budget runs out.
type PostgresLocker struct {
	db     *sql.DB
	opts   Options
	logger *zap.Logger
}

// OpenPostgresPool opens a connection pool reserved for advisory locks.
// size bounds how many orders can be locked at once by this instance.
func OpenPostgresPool(dsn string, size int) (*sql.DB, error) {
	if size <= 0 {
		return nil, fmt.Errorf("lock pool size must be positive, got %d", size)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock pool: %w", err)
	}
	db.SetMaxOpenConns(size)
	db.SetMaxIdleConns(size)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// NewPostgresLocker creates an advisory-lock backed locker
func NewPostgresLocker(db *sql.DB, opts Options, logger *zap.Logger) *PostgresLocker {
	return &PostgresLocker{db: db, opts: opts, logger: logger}
}

// Lock polls pg_try_advisory_lock on a dedicated connection
func (l *PostgresLocker) Lock(ctx context.Context, key string) (func(), error) {
	waitCtx, cancel := l.opts.waitContext(ctx)
	defer cancel()

	conn, err := l.db.Conn(waitCtx)
	if err != nil {
		if isWaitExpired(err) {
			return nil, timeoutError(ctx, key)
		}
		return nil, fmt.Errorf("failed to reserve connection for lock %s: %w", key, err)
	}

	err = poll(waitCtx, l.opts.retryInterval(), func(c context.Context) (bool, error) {
		var ok bool
		err := conn.QueryRowContext(c, "SELECT pg_try_advisory_lock(hashtext($1))", key).Scan(&ok)
		return ok, err
	})
	if err != nil {
		_ = conn.Close()
		if isWaitExpired(err) {
			return nil, timeoutError(ctx, key)
		}
		return nil, fmt.Errorf("failed to acquire advisory lock %s: %w", key, err)
	}

	return func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		var released bool
		if err := conn.QueryRowContext(rctx, "SELECT pg_advisory_unlock(hashtext($1))", key).Scan(&released); err != nil || !released {
			l.logger.Warn("failed to release advisory lock", zap.String("key", key), zap.Error(err))
		}
		_ = conn.Close()
	}, nil
}
