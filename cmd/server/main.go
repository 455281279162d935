package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	activityapp "github.com/propcore/backend/internal/application/activity"
	"github.com/propcore/backend/internal/application/chain"
	eventapp "github.com/propcore/backend/internal/application/event"
	"github.com/propcore/backend/internal/application/fanout"
	paymentapp "github.com/propcore/backend/internal/application/payment"
	propertyapp "github.com/propcore/backend/internal/application/property"
	tenancyapp "github.com/propcore/backend/internal/application/tenancy"
	"github.com/propcore/backend/internal/domain/notification"
	"github.com/propcore/backend/internal/domain/shared"
	"github.com/propcore/backend/internal/infrastructure/auth"
	"github.com/propcore/backend/internal/infrastructure/cache"
	"github.com/propcore/backend/internal/infrastructure/config"
	"github.com/propcore/backend/internal/infrastructure/event"
	"github.com/propcore/backend/internal/infrastructure/logger"
	"github.com/propcore/backend/internal/infrastructure/persistence"
	"github.com/propcore/backend/internal/infrastructure/storage"
	"github.com/propcore/backend/internal/infrastructure/telemetry"
	"github.com/propcore/backend/internal/interfaces/http/handler"
	"github.com/propcore/backend/internal/interfaces/http/middleware"
	"github.com/propcore/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx := context.Background()

	log.Info("Starting PropCore",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Telemetry first so the database plugin picks up the global tracer provider
	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		LogsEnabled:       cfg.Telemetry.LogsEnabled,
	}, log)
	if err != nil {
		return err
	}
	log = provider.BridgeLogger(log, logger.ParseLevel(cfg.Log.Level))
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	metrics, err := telemetry.NewEngineMetrics(provider.Meter("propcore/engine"))
	if err != nil {
		return err
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
		WithVariables:   cfg.App.Env == "development",
	}, log); err != nil {
		return err
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			return err
		}
		log.Warn("Schema auto-migrated from models; use cmd/migrate outside development")
	}

	// Redis backs fan-out idempotency and live notifications; without it both fall back to memory
	idempotency, redisClient, err := cache.NewIdempotencyStoreFactory(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cache.WithLogger(log), cache.WithInMemoryFallback(!cfg.Redis.Required)).CreateStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = idempotency.Close() }()

	var publisher notification.Publisher = cache.NewLogNotificationPublisher(log)
	if redisClient != nil {
		publisher = cache.NewRedisNotificationPublisher(redisClient, log)
	}

	// Repositories
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	unitRepo := persistence.NewGormUnitRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	maintenanceRepo := persistence.NewGormMaintenanceRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	reminderRepo := persistence.NewGormReminderRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	historyRepo := persistence.NewGormHistoryRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Every chain writes its fan-out tasks through the outbox in the same transaction
	serializer := event.NewEventSerializer()
	event.RegisterAllEvents(serializer)
	outboxPublisher := event.NewOutboxPublisher(serializer, chain.FanOut{}, cfg.Outbox.MaxRetries)
	scope := persistence.NewGormTransactionScope(db.DB, outboxPublisher)
	runner := chain.NewRunner(scope, chain.Config{
		Timeout:    cfg.Engine.ChainTimeout,
		LateWindow: cfg.Engine.LateWindow(),
	}, log).WithObserver(metrics)

	// Application services
	propertyService := propertyapp.NewPropertyService(runner, propertyRepo, unitRepo, log)
	unitService := propertyapp.NewUnitService(runner, unitRepo, historyRepo, log)
	maintenanceService := propertyapp.NewMaintenanceService(runner, maintenanceRepo, log)
	expenseService := propertyapp.NewExpenseService(runner, expenseRepo, log)
	tenantService := tenancyapp.NewTenantService(runner, tenantRepo, historyRepo, log)
	paymentService := paymentapp.NewPaymentService(runner, paymentRepo, tenantRepo, log)
	batchService := paymentapp.NewBatchService(runner, paymentService, batchRepo, tenantRepo, cfg.Engine.MaxBatchItems, log)
	activityService := activityapp.NewService(auditRepo, notificationRepo, log)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// Fan-out delivery
	notifier := fanout.NewNotifier(notificationRepo, publisher, log)
	registry := event.NewHandlerRegistry()
	registry.Register(event.WrapHandlersWithIdempotency([]shared.EventHandler{
		fanout.NewAuditLogHandler(auditRepo, serializer, log),
		fanout.NewNotificationHandler(notifier, log),
		fanout.NewReminderCreateHandler(tenantRepo, reminderRepo, log),
	}, idempotency, log, event.WithIdempotencyConfig(shared.IdempotencyConfig{
		TTL:     cfg.Outbox.IdempotencyTTL,
		Enabled: true,
	}))...)

	if cfg.Outbox.ProcessorEnabled {
		processorConfig := event.DefaultOutboxProcessorConfig()
		processorConfig.BatchSize = cfg.Outbox.BatchSize
		processorConfig.PollInterval = cfg.Outbox.PollInterval
		processorConfig.CleanupEnabled = cfg.Outbox.CleanupEnabled
		processorConfig.CleanupRetention = cfg.Outbox.CleanupRetention

		processor := event.NewOutboxProcessor(outboxRepo, registry, serializer, processorConfig, log).WithObserver(metrics)
		if err := processor.Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := processor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Strings("tasks", registry.Tasks()),
			zap.Int("batch_size", processorConfig.BatchSize),
			zap.Duration("poll_interval", processorConfig.PollInterval),
		)
	}

	if cfg.Scheduler.Enabled {
		archiveStore, err := newArchiveStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		sweeps, err := newScheduler(cfg, log, sweepJobs{
			reminders: paymentapp.NewReminderService(runner, reminderRepo, notifier, log),
			late:      tenancyapp.NewLateSweeper(runner, tenantRepo, log),
			archiver: eventapp.NewDeadLetterArchiver(outboxRepo, archiveStore, cfg.Storage.Prefix,
				cfg.Outbox.CleanupRetention, log),
		})
		if err != nil {
			return err
		}
		if err := sweeps.WithObserver(metrics).Start(ctx); err != nil {
			return err
		}
		defer func() {
			if err := sweeps.Stop(context.Background()); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
	}

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	systemHandler := handler.NewSystemHandler(version).
		WithCheck("database", db.Ping)
	if redisClient != nil {
		systemHandler.WithCheck("redis", redisPing(redisClient))
	}

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitRequests > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
	}

	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = cfg.Telemetry.Enabled
	tracing.ServiceName = cfg.Telemetry.ServiceName

	engine, err := router.NewEngine(router.Config{
		HTTP:        cfg.HTTP,
		Verifier:    auth.NewVerifier(cfg.JWT),
		Tracing:     tracing,
		Logger:      log,
		RateLimiter: limiter,
	}, router.Handlers{
		System:      systemHandler,
		Property:    handler.NewPropertyHandler(propertyService),
		Unit:        handler.NewUnitHandler(unitService),
		Tenant:      handler.NewTenantHandler(tenantService, paymentService),
		Payment:     handler.NewPaymentHandler(paymentService, batchService),
		Maintenance: handler.NewMaintenanceHandler(maintenanceService),
		Expense:     handler.NewExpenseHandler(expenseService),
		Activity:    handler.NewActivityHandler(activityService),
		Outbox:      handler.NewOutboxHandler(outboxService),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return err
	case sig := <-quit:
		log.Info("Shutting down server...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newArchiveStore returns the S3 dead-letter archive, or an in-memory store
// when storage is disabled
func newArchiveStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (eventapp.ObjectStore, error) {
	if !cfg.Storage.Enabled {
		log.Warn("Object storage disabled, archived dead letters are kept in memory only")
		return storage.NewMemoryObjectStorage(), nil
	}
	s3, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if err := s3.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	log.Info("Dead letters archive to S3", zap.String("bucket", s3.Bucket()))
	return s3, nil
}

func redisPing(client *redis.Client) handler.HealthCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
