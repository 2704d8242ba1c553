//go:build integration

package lock

import (
	"context"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisLocker_Integration(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	opts := Options{Wait: 100 * time.Millisecond, RetryInterval: 5 * time.Millisecond}

	first := NewRedisLocker(client, "test:", time.Second, opts, zap.NewNop())
	second := NewRedisLocker(client, "test:", time.Second, opts, zap.NewNop())

	release, err := first.Lock(ctx, "order-1")
	require.NoError(t, err)

	_, err = second.Lock(ctx, "order-1")
	assert.ErrorIs(t, err, shared.ErrLockTimeout)

	release()
	exists, err := client.Exists(ctx, "test:order-1").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)

	releaseSecond, err := second.Lock(ctx, "order-1")
	require.NoError(t, err)
	releaseSecond()
}

func TestRedisLocker_ExpiredLeaseIsNotStolenBack(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	opts := Options{Wait: time.Second, RetryInterval: 5 * time.Millisecond}

	short := NewRedisLocker(client, "test:", 50*time.Millisecond, opts, zap.NewNop())
	long := NewRedisLocker(client, "test:", 5*time.Second, opts, zap.NewNop())

	releaseShort, err := short.Lock(ctx, "order-2")
	require.NoError(t, err)

	releaseLong, err := long.Lock(ctx, "order-2")
	require.NoError(t, err)

	// The expired holder must not delete the new holder's key.
	releaseShort()
	exists, err := client.Exists(ctx, "test:order-2").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
	releaseLong()
}
