package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bankingapp "github.com/condo/backend/internal/application/banking"
	billingapp "github.com/condo/backend/internal/application/billing"
	reportapp "github.com/condo/backend/internal/application/report"
	"github.com/condo/backend/internal/domain/site"
	"github.com/condo/backend/internal/infrastructure/cache"
	"github.com/condo/backend/internal/infrastructure/config"
	"github.com/condo/backend/internal/infrastructure/logger"
	"github.com/condo/backend/internal/infrastructure/notification"
	"github.com/condo/backend/internal/infrastructure/persistence"
	"github.com/condo/backend/internal/infrastructure/scheduler"
	"github.com/condo/backend/internal/infrastructure/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting condo ledger service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	ctx := context.Background()

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize the report balance snapshot cache. Redis is preferred;
	// a connection failure falls back to the per-process store so the
	// reports stay correct, just slower after restarts.
	var snapshots cache.BalanceSnapshotStore
	redisSnapshots, err := cache.NewRedisBalanceSnapshotStore(cache.RedisConfig{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, using in-memory balance snapshot store", zap.Error(err))
		snapshots = cache.NewInMemoryBalanceSnapshotStore()
	} else {
		log.Info("Connected to redis balance snapshot store", zap.String("addr", cfg.Redis.Addr()))
		snapshots = redisSnapshots
	}
	defer func() {
		if err := snapshots.Close(); err != nil {
			log.Error("Error closing balance snapshot store", zap.Error(err))
		}
	}()

	// Initialize repositories
	siteRepo := persistence.NewGormSiteRepository(db.DB)
	apartmentRepo := persistence.NewGormApartmentRepository(db.DB)
	obligationRepo := persistence.NewGormObligationRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	accountRepo := persistence.NewGormBankAccountRepository(db.DB)
	ledgerRepo := persistence.NewGormBankTransactionRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	expenseTypeRepo := persistence.NewGormExpenseTypeRepository(db.DB)

	txManager := persistence.NewGormTransactionManager(db.DB)

	// Initialize notifier
	var notifier notification.Notifier
	if cfg.Notification.Enabled {
		notifier = notification.NewSMTPNotifier(notification.SMTPConfig{
			Host:        cfg.Notification.SMTPHost,
			Port:        cfg.Notification.SMTPPort,
			Username:    cfg.Notification.SMTPUsername,
			Password:    cfg.Notification.SMTPPassword,
			FromAddress: cfg.Notification.FromAddress,
		}, log)
	} else {
		notifier = notification.NoopNotifier{}
	}

	// Initialize the services the sweeps run
	accrualService := billingapp.NewAccrualService(siteRepo, apartmentRepo, obligationRepo)
	lateFeeService := billingapp.NewLateFeeService(siteRepo, obligationRepo)
	reconcilerService := bankingapp.NewReconcilerService(
		siteRepo, accountRepo, ledgerRepo, paymentRepo, expenseRepo, txManager, notifier)
	reportService := reportapp.NewReportService(
		apartmentRepo, obligationRepo, paymentRepo, expenseRepo, expenseTypeRepo, snapshots)

	// Initialize the sweep scheduler
	var sweepScheduler *scheduler.Scheduler
	var sweepTrigger *scheduler.SweepTrigger
	if cfg.Scheduler.Enabled {
		executor := scheduler.NewSweepExecutor(
			accrualService,
			reconcilerService,
			lateFeeService,
			reportService,
			siteLister{repo: siteRepo},
			log,
		)
		sweepScheduler = scheduler.NewScheduler(scheduler.DefaultSchedulerConfig(), executor, log)
		if err := sweepScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}

		triggerConfig := scheduler.DefaultSweepTriggerConfig()
		triggerConfig.AccrualHour = cfg.Scheduler.AccrualHour
		triggerConfig.AccrualMinute = cfg.Scheduler.AccrualMinute
		if cfg.Scheduler.DeductionInterval > 0 {
			triggerConfig.DeductionInterval = cfg.Scheduler.DeductionInterval
		}
		if cfg.Scheduler.LateFeeInterval > 0 {
			triggerConfig.LateFeeInterval = cfg.Scheduler.LateFeeInterval
		}
		sweepTrigger = scheduler.NewSweepTrigger(triggerConfig, sweepScheduler, siteLister{repo: siteRepo}, log)
		if err := sweepTrigger.Start(ctx); err != nil {
			log.Fatal("Failed to start sweep trigger", zap.Error(err))
		}
		log.Info("Sweep scheduler started",
			zap.Int("accrual_hour", triggerConfig.AccrualHour),
			zap.Duration("deduction_interval", triggerConfig.DeductionInterval),
			zap.Duration("late_fee_interval", triggerConfig.LateFeeInterval),
		)
	} else {
		log.Info("Sweep scheduler disabled")
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("Shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sweepTrigger != nil {
		if err := sweepTrigger.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping sweep trigger", zap.Error(err))
		}
	}
	if sweepScheduler != nil {
		if err := sweepScheduler.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping scheduler", zap.Error(err))
		}
	}

	log.Info("Shutdown complete")
}

// siteLister adapts the site repository to the scheduler's SiteProvider
type siteLister struct {
	repo site.SiteRepository
}

func (l siteLister) ActiveSiteIDs(ctx context.Context) ([]uuid.UUID, error) {
	sites, err := l.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(sites))
	for _, s := range sites {
		ids = append(ids, s.ID)
	}
	return ids, nil
}
