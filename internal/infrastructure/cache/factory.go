package cache

import (
	"fmt"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewIdempotencyStore selects the store named by cfg.IdempotencyBackend.
// It returns nil, nil when the guard is switched off.
func NewIdempotencyStore(cfg config.FinancingConfig, client redis.UniversalClient, logger *zap.Logger) (shared.IdempotencyStore, error) {
	switch cfg.IdempotencyBackend {
	case config.IdempotencyBackendOff:
		logger.Info("Idempotency guard disabled")
		return nil, nil
	case "", config.IdempotencyBackendMemory:
		logger.Info("Using in-memory idempotency store; keys are not shared across instances")
		return NewInMemoryIdempotencyStore(), nil
	case config.IdempotencyBackendRedis:
		if client == nil {
			return nil, fmt.Errorf("idempotency backend %q requires a redis client", cfg.IdempotencyBackend)
		}
		return NewRedisIdempotencyStore(client, DefaultIdempotencyKeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.IdempotencyBackend)
	}
}
