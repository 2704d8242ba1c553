//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	appfin "github.com/erp/backoffice/internal/application/financing"
	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/lock"
	"github.com/erp/backoffice/internal/infrastructure/migration"
	"github.com/erp/backoffice/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newPostgresDB starts a throwaway PostgreSQL container and applies the
// embedded migrations to it.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("backoffice_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, migration.FromFS(migrations.FS, "."), zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return db
}

func TestPostgres_OrderLifecycle(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	plan := newPlan(t, 3, "20")
	require.NoError(t, NewGormPlanRepository(db).Save(ctx, plan))

	order := newFinancedOrder(t, plan)
	scope := NewGormTransactionScope(db)
	require.NoError(t, scope.Execute(ctx, func(repos appfin.TransactionalRepositories) error {
		if err := repos.OrderRepo().Save(ctx, order); err != nil {
			return err
		}
		return repos.InstalmentRepo().ReplaceForOrder(ctx, order.ID, order.Schedule())
	}))

	instalments := NewGormInstalmentRepository(db)
	stored, err := instalments.FindByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{32000, 32000, 32000}, amounts(stored))

	payments := NewGormPaymentRepository(db)
	p := newPaymentAt(t, order.ID, 40000, time.Now())
	alloc := financing.ApplyPayment(stored, p.Amount, p.PaidAt())
	require.NoError(t, scope.Execute(ctx, func(repos appfin.TransactionalRepositories) error {
		if err := repos.PaymentRepo().Save(ctx, p); err != nil {
			return err
		}
		return repos.InstalmentRepo().SaveAll(ctx, stored)
	}))
	assert.Equal(t, int64(40000), alloc.Applied)

	stored, err = instalments.FindByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{32000, 24000, 32000}, amounts(stored))
	assert.True(t, stored[0].IsPaid)

	sum, err := payments.SumByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), sum)

	// A stale writer is rejected by the version check.
	stale, err := NewGormOrderRepository(db).FindByID(ctx, order.ID)
	require.NoError(t, err)
	stale.Version = 7
	assert.ErrorIs(t, NewGormOrderRepository(db).SaveWithLock(ctx, stale), shared.ErrConcurrencyConflict)
}

func TestPostgres_AdvisoryLock(t *testing.T) {
	db := newPostgresDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	opts := lock.Options{Wait: 100 * time.Millisecond, RetryInterval: 5 * time.Millisecond}
	l := lock.NewPostgresLocker(sqlDB, opts, zap.NewNop())
	ctx := context.Background()

	release, err := l.Lock(ctx, "financing:order:x")
	require.NoError(t, err)

	_, err = l.Lock(ctx, "financing:order:x")
	assert.ErrorIs(t, err, shared.ErrLockTimeout)

	release()
	again, err := l.Lock(ctx, "financing:order:x")
	require.NoError(t, err)
	again()
}
