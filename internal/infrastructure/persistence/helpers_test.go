package persistence

import (
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a migrated in-memory SQLite database. A single connection
// keeps every statement on the same in-memory schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))
	return db
}

func newPlan(t *testing.T, months int, pct string) *financing.FinancingPlan {
	t.Helper()
	plan, err := financing.NewFinancingPlan("In-house "+pct, financing.PlanModeInHouse, months, decimal.RequireFromString(pct))
	require.NoError(t, err)
	return plan
}

// newFinancedOrder builds an order of 100000 with a 20000 down payment on plan.
func newFinancedOrder(t *testing.T, plan *financing.FinancingPlan) *trade.Order {
	t.Helper()
	item, err := trade.NewOrderItem(uuid.New(), 2, 50000)
	require.NoError(t, err)
	order, err := trade.NewOrder(uuid.New(), []trade.OrderItem{*item}, trade.OrderTerms{
		DownPayment: 20000,
		Plan:        plan.Terms(),
	}, financing.ClampSilently)
	require.NoError(t, err)
	return order
}

func newPaymentAt(t *testing.T, orderID uuid.UUID, amount int64, at time.Time) *trade.Payment {
	t.Helper()
	p, err := trade.NewPayment(orderID, amount, financing.PaymentMethodTransfer, "", at)
	require.NoError(t, err)
	return p
}
