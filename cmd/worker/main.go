package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/botica-erp/botica-erp/internal/app"
	"github.com/botica-erp/botica-erp/internal/platform/db"
	"github.com/botica-erp/botica-erp/internal/rates"
	"github.com/botica-erp/botica-erp/internal/shared"
	"github.com/botica-erp/botica-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	fetcher := rates.NewFetcher(cfg.FXEndpoint, cfg.FXRequestTimeout)
	ratesService := rates.NewService(rates.NewRepository(pool), nil, fetcher, cfg.FXBaseCurrency, cfg.FXLocalCurrency)
	refreshJob := jobs.NewRatesRefreshJob(ratesService, logger)
	housekeepingJob := jobs.NewHousekeepingJob(shared.NewIdempotencyStore(pool), logger)

	refreshTask, err := jobs.NewRatesRefreshTask("scheduled")
	if err != nil {
		logger.Error("build refresh task", slog.Any("error", err))
		os.Exit(1)
	}
	backupTask, err := jobs.NewRatesBackupTask()
	if err != nil {
		logger.Error("build backup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRatesRefresh, Handler: refreshJob.Handle},
			{Type: jobs.TaskRatesBackup, Handler: refreshJob.HandleBackup},
			{Type: jobs.TaskHousekeeping, Handler: housekeepingJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.FXRefreshCron, Task: refreshTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.FXBackupCron, Task: backupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.HousekeepingCron, Task: jobs.NewHousekeepingTask(), Options: []asynq.Option{asynq.MaxRetry(2)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
