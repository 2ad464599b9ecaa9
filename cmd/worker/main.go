package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"benefits_jobs/internal/app"
	"benefits_jobs/internal/infra/config"
	idb "benefits_jobs/internal/infra/database"
	"benefits_jobs/internal/infra/logger"
	"benefits_jobs/internal/infra/scheduler"
)

const (
	flagCurrencyConversion = "reimbursement-currency-conversion"
	flagAdjustmentSync     = "reimbursement-adjustment-sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")

	mainLogger.Infof("Configuration loaded. Environment: %s, Timezone: %s", cfg.Environment, cfg.Location)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(startCtx, cfg.DatabaseURL, cfg.DatabasePool)
	if err != nil {
		mainLogger.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	if err := idb.Migrate(startCtx, db); err != nil {
		mainLogger.Fatalf("FATAL: Could not migrate database: %v", err)
	}
	mainLogger.Info("Database connection established successfully.")

	// Initialize Repositories
	currencyRepo := idb.NewPostgresCurrencyRepository(db)
	reimbursementRepo := idb.NewPostgresReimbursementRepository(db)
	flagRepo := idb.NewPostgresFeatureFlagRepository(db)

	// Initialize Services
	currencyService := app.NewCurrencyService(currencyRepo, currencyRepo, logger.Component("currency"))
	reimbursementService := app.NewReimbursementService(reimbursementRepo, currencyService, logger.Component("reimbursement"))
	gate := app.NewTaskGate(flagRepo, logger.Component("task_gate"))

	// Initialize Scheduler
	jobScheduler := scheduler.NewJobScheduler(
		gate,
		flagRepo,
		reimbursementRepo,
		app.RunOverrides{
			RunOffSchedule:  cfg.RunOffSchedule,
			OrganizationIDs: cfg.OverrideOrganizationIDs,
		},
		cfg.Location,
		cfg.JobTimeout,
		logger.Component("scheduler"),
	)

	jobs := []scheduler.Job{
		{
			Name:     "convert-pending-reimbursements",
			FlagKey:  flagCurrencyConversion,
			Cadence:  cfg.CurrencyConversion.Cadence,
			CronSpec: cfg.CurrencyConversion.CronSpec,
			Run:      reimbursementService.ConvertPendingRequests,
		},
		{
			Name:     "apply-reimbursement-adjustments",
			FlagKey:  flagAdjustmentSync,
			Cadence:  cfg.AdjustmentSync.Cadence,
			CronSpec: cfg.AdjustmentSync.CronSpec,
			Run:      reimbursementService.ApplyPendingAdjustments,
		},
	}
	for _, job := range jobs {
		if err := jobScheduler.Register(job); err != nil {
			mainLogger.Fatalf("FATAL: Could not register job: %v", err)
		}
	}
	jobScheduler.Start()

	mainLogger.Info("Application setup complete. Scheduler is running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Info("Shutting down application...")
	jobScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}
