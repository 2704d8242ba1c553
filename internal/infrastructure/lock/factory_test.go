package lock

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_SelectsBackend(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	backends := Backends{Redis: client, DB: db}

	memory, err := New(config.FinancingConfig{LockBackend: config.LockBackendMemory}, backends, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryLocker{}, memory)

	viaRedis, err := New(config.FinancingConfig{LockBackend: config.LockBackendRedis}, backends, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &RedisLocker{}, viaRedis)

	viaPostgres, err := New(config.FinancingConfig{LockBackend: config.LockBackendPostgres}, backends, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &PostgresLocker{}, viaPostgres)
}

func TestNew_MissingDependencies(t *testing.T) {
	_, err := New(config.FinancingConfig{LockBackend: config.LockBackendRedis}, Backends{}, zap.NewNop())
	assert.ErrorContains(t, err, "requires a redis client")

	_, err = New(config.FinancingConfig{LockBackend: config.LockBackendPostgres}, Backends{}, zap.NewNop())
	assert.ErrorContains(t, err, "requires a database")

	_, err = New(config.FinancingConfig{LockBackend: "zookeeper"}, Backends{}, zap.NewNop())
	assert.ErrorContains(t, err, "unknown lock backend")
}
