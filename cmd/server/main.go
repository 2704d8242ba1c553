package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	financingapp "github.com/erp/backoffice/internal/application/financing"
	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/infrastructure/cache"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/erp/backoffice/internal/infrastructure/event"
	"github.com/erp/backoffice/internal/infrastructure/lock"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/erp/backoffice/internal/interfaces/http/handler"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/erp/backoffice/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		log.Fatal("Invalid log level", zap.Error(err))
	}
	log = logsProvider.Bridge(log, level)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilingEnabled,
		ServerAddress:     cfg.Telemetry.ProfilingServerAddress,
		ApplicationName:   cfg.Telemetry.ServiceName,
		BasicAuthUser:     cfg.Telemetry.ProfilingBasicAuthUser,
		BasicAuthPassword: cfg.Telemetry.ProfilingBasicAuthPassword,
		ProfileTypes:      cfg.Telemetry.ProfilingTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if cfg.Telemetry.SpanProfiles && profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	db, err := persistence.NewDatabase(&cfg.Database, persistence.DatabaseOptions{
		Logger:   log,
		LogLevel: cfg.Log.Level,
		Tracing: telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.DBTraceEnabled,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        "postgresql",
		},
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.App.Env == "development" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to auto-migrate schema", zap.Error(err))
		}
	}

	var redisClient redis.UniversalClient
	if cfg.Financing.LockBackend == config.LockBackendRedis || cfg.Financing.IdempotencyBackend == config.IdempotencyBackendRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
	}

	var lockDB *sql.DB
	if cfg.Financing.LockBackend == config.LockBackendPostgres {
		lockDB, err = lock.OpenPostgresPool(cfg.Database.DSN(), cfg.Financing.LockPoolSize)
		if err != nil {
			log.Fatal("Failed to open lock pool", zap.Error(err))
		}
		defer func() {
			if err := lockDB.Close(); err != nil {
				log.Error("Error closing lock pool", zap.Error(err))
			}
		}()
	}

	locker, err := lock.New(cfg.Financing, lock.Backends{Redis: redisClient, DB: lockDB}, log)
	if err != nil {
		log.Fatal("Failed to initialize order locker", zap.Error(err))
	}

	idempotencyStore, err := cache.NewIdempotencyStore(cfg.Financing, redisClient, log)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	if idempotencyStore != nil {
		defer func() {
			_ = idempotencyStore.Close()
		}()
	}

	policy, err := financing.ParseClampingPolicy(cfg.Financing.ClampingPolicy)
	if err != nil {
		log.Fatal("Invalid clamping policy", zap.Error(err))
	}
	opts := financingapp.Options{Policy: policy, RejectOverpayment: cfg.Financing.RejectOverpayment}

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	planRepo := persistence.NewGormPlanRepository(db.DB)
	instalmentRepo := persistence.NewGormInstalmentRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	commissionRepo := persistence.NewGormCommissionPaymentRepository(db.DB)
	sellerRepo := persistence.NewGormSellerRepository(db.DB)
	allianceRepo := persistence.NewGormAllianceRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	financingMetrics, err := telemetry.NewFinancingMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register financing metrics", zap.Error(err))
	}

	// Services
	replayer := financingapp.NewScheduleReplayer(orderRepo, planRepo, paymentRepo, txScope, locker, policy, log)
	replayer.SetMetrics(financingMetrics)

	orderService := financingapp.NewOrderFinancingService(
		orderRepo, planRepo, instalmentRepo, sellerRepo, allianceRepo,
		txScope, locker, replayer, opts, log,
	)
	paymentService := financingapp.NewPaymentService(orderRepo, paymentRepo, instalmentRepo, txScope, locker, opts, log)
	paymentService.SetMetrics(financingMetrics)
	commissionService := financingapp.NewCommissionService(orderRepo, paymentRepo, commissionRepo, sellerRepo, allianceRepo)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	replayHandler := financingapp.NewReplayOnPaymentChange(replayer, log)
	eventBus.Subscribe(replayHandler, replayHandler.EventTypes()...)
	orderService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// HTTP
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version)
	systemHandler.AddCheck("database", db.Ping)
	if redisClient != nil {
		systemHandler.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	engine, err := router.NewEngine(router.EngineConfig{
		Logger: log,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		Profiling: middleware.ProfilingConfig{
			Enabled:   cfg.Telemetry.ProfilingEnabled,
			SkipPaths: middleware.DefaultProfilingConfig().SkipPaths,
		},
		Meter:          meter,
		CORS:           middleware.DefaultCORSConfig(),
		BodyLimit:      middleware.DefaultBodyLimit,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	router.Mount(engine, router.Handlers{
		Orders:      handler.NewOrderHandler(orderService),
		Payments:    handler.NewPaymentHandler(paymentService),
		Commissions: handler.NewCommissionHandler(commissionService),
		System:      systemHandler,
		Idempotency: middleware.Idempotency(idempotencyStore, cfg.Financing.IdempotencyTTL),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	log.Info("Server exited gracefully")
	if err := logsProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}
}
