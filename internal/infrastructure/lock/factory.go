package lock

import (
	"database/sql"
	"fmt"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backends carries the clients a distributed locker may use
type Backends struct {
	Redis redis.UniversalClient
	// DB is the pool reserved for advisory locks, see OpenPostgresPool
	DB *sql.DB
}

// New selects the locker named by cfg.LockBackend
func New(cfg config.FinancingConfig, backends Backends, logger *zap.Logger) (Locker, error) {
	opts := Options{Wait: cfg.LockWait, RetryInterval: cfg.LockRetryInterval}

	switch cfg.LockBackend {
	case "", config.LockBackendMemory:
		return NewMemoryLocker(opts), nil
	case config.LockBackendRedis:
		if backends.Redis == nil {
			return nil, fmt.Errorf("lock backend %q requires a redis client", cfg.LockBackend)
		}
		return NewRedisLocker(backends.Redis, "backoffice:lock:", cfg.LockTTL, opts, logger), nil
	case config.LockBackendPostgres:
		if backends.DB == nil {
			return nil, fmt.Errorf("lock backend %q requires a database", cfg.LockBackend)
		}
		return NewPostgresLocker(backends.DB, opts, logger), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.LockBackend)
	}
}
