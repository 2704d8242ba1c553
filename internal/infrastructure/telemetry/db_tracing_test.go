package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID     uint `gorm:"primaryKey"`
	Amount int64
}

func openTracedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_Register(t *testing.T) {
	t.Run("disabled plugin leaves callbacks untouched", func(t *testing.T) {
		db := openTracedDB(t)
		plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
		require.NoError(t, plugin.Register(db))
		assert.Nil(t, db.Callback().Create().Get("otel_timing:after_create"))
	})

	t.Run("enabled plugin emits spans for queries", func(t *testing.T) {
		recorder := withRecorder(t)
		db := openTracedDB(t)

		cfg := DefaultDBTracingConfig()
		cfg.Enabled = true
		cfg.DBSystem = "sqlite"
		plugin := NewDBTracingPlugin(cfg, zap.NewNop())
		require.NoError(t, plugin.Register(db))
		assert.NotNil(t, db.Callback().Create().Get("otel_timing:after_create"))

		ctx, span := StartSpan(context.Background(), "payment.register")
		require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Amount: 300}).Error)
		span.End()

		assert.GreaterOrEqual(t, len(recorder.Ended()), 2)
	})
}

func TestDBTracingPlugin_Annotate(t *testing.T) {
	t.Run("flags slow queries and records table", func(t *testing.T) {
		recorder := withRecorder(t)
		db := openTracedDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Millisecond}, zap.NewNop())

		ctx, span := StartSpan(context.Background(), "replay")
		ctx = context.WithValue(ctx, queryStartKey{}, time.Now().Add(-time.Second))

		tx := db.WithContext(ctx)
		tx.Statement.Table = "instalments"
		tx.Statement.RowsAffected = 12
		plugin.annotate(tx)
		span.End()

		spans := recorder.Ended()
		require.Len(t, spans, 1)
		attrs := spans[0].Attributes()
		assert.Contains(t, attrs, attribute.Bool("db.slow_query", true))
		assert.Contains(t, attrs, attribute.String("db.sql.table", "instalments"))
		assert.Contains(t, attrs, attribute.Int64("db.rows_affected", 12))
		require.Len(t, spans[0].Events(), 1)
		assert.Equal(t, "slow_query_warning", spans[0].Events()[0].Name)
	})

	t.Run("marks errors but ignores record not found", func(t *testing.T) {
		recorder := withRecorder(t)
		db := openTracedDB(t)
		plugin := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Hour}, zap.NewNop())

		ctx, span := StartSpan(context.Background(), "lookup")
		tx := db.WithContext(ctx)
		tx.Error = gorm.ErrRecordNotFound
		plugin.annotate(tx)
		span.End()

		ctx, failing := StartSpan(context.Background(), "write")
		tx = db.WithContext(ctx)
		tx.Error = errors.New("constraint violation")
		plugin.annotate(tx)
		failing.End()

		spans := recorder.Ended()
		require.Len(t, spans, 2)
		assert.Equal(t, codes.Unset, spans[0].Status().Code)
		assert.Equal(t, codes.Error, spans[1].Status().Code)
	})
}
