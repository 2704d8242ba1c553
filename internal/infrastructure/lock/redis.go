package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// unlockScript deletes the key only while it still holds our token, so an
// expired lease taken over by another instance is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

const releaseTimeout = 3 * time.Second

// RedisClient is the subset of go-redis the locker uses
type RedisClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// RedisLocker holds locks as SET NX PX keys with a random token.
// A holder that outlives TTL loses the lock.
type RedisLocker struct {
	client RedisClient
	prefix string
	ttl    time.Duration
	opts   Options
	logger *zap.Logger
}

// NewRedisLocker creates a Redis-backed locker. ttl must exceed the longest
// expected critical section.
func NewRedisLocker(client RedisClient, prefix string, ttl time.Duration, opts Options, logger *zap.Logger) *RedisLocker {
	if prefix == "" {
		prefix = "lock:"
	}
	return &RedisLocker{client: client, prefix: prefix, ttl: ttl, opts: opts, logger: logger}
}

// Lock polls SET NX until it wins, the wait budget is spent, or ctx is done
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := l.prefix + key
	token := uuid.NewString()

	waitCtx, cancel := l.opts.waitContext(ctx)
	defer cancel()

	err := poll(waitCtx, l.opts.retryInterval(), func(c context.Context) (bool, error) {
		return l.client.SetNX(c, redisKey, token, l.ttl).Result()
	})
	if err != nil {
		if isWaitExpired(err) {
			return nil, timeoutError(ctx, key)
		}
		return nil, fmt.Errorf("failed to acquire redis lock %s: %w", key, err)
	}

	acquired := time.Now()
	return func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		deleted, err := unlockScript.Run(rctx, l.client, []string{redisKey}, token).Int()
		switch {
		case err != nil:
			l.logger.Warn("failed to release redis lock", zap.String("key", key), zap.Error(err))
		case deleted == 0:
			l.logger.Warn("redis lock expired before release",
				zap.String("key", key),
				zap.Duration("held", time.Since(acquired)),
				zap.Duration("ttl", l.ttl),
			)
		}
	}, nil
}
