package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/botica-erp/botica-erp/internal/app"
	"github.com/botica-erp/botica-erp/internal/auth"
	"github.com/botica-erp/botica-erp/internal/ledger"
	"github.com/botica-erp/botica-erp/internal/masterdata/customers"
	"github.com/botica-erp/botica-erp/internal/masterdata/suppliers"
	"github.com/botica-erp/botica-erp/internal/medicines"
	"github.com/botica-erp/botica-erp/internal/observability"
	"github.com/botica-erp/botica-erp/internal/platform/cache"
	"github.com/botica-erp/botica-erp/internal/platform/db"
	"github.com/botica-erp/botica-erp/internal/rates"
	"github.com/botica-erp/botica-erp/internal/reports"
	"github.com/botica-erp/botica-erp/internal/shared"
	"github.com/botica-erp/botica-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, current-rate caching disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	authService := auth.NewService(auth.NewRepository(pool), tokens)
	authHandler := auth.NewHandler(logger, authService)

	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	ledgerService := ledger.NewService(ledger.NewRepository(pool), auditLogger, idempotencyStore, metrics)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	medicinesHandler := medicines.NewHandler(logger, medicines.NewService(medicines.NewRepository(pool)))
	suppliersHandler := suppliers.NewHandler(logger, suppliers.NewService(suppliers.NewRepository(pool)))
	customersHandler := customers.NewHandler(logger, customers.NewService(customers.NewRepository(pool)))

	var rateCache rates.CachePort
	if redisClient != nil {
		rateCache = rates.NewCache(redisClient, cfg.RateCacheTTL)
	}
	fetcher := rates.NewFetcher(cfg.FXEndpoint, cfg.FXRequestTimeout)
	ratesService := rates.NewService(rates.NewRepository(pool), rateCache, fetcher, cfg.FXBaseCurrency, cfg.FXLocalCurrency)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	ratesHandler := rates.NewHandler(logger, ratesService, jobClient)

	reportsHandler := reports.NewHandler(logger, reports.NewRepository(pool))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("asynq inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Tokens:           tokens,
		AuthHandler:      authHandler,
		LedgerHandler:    ledgerHandler,
		MedicinesHandler: medicinesHandler,
		SuppliersHandler: suppliersHandler,
		CustomersHandler: customersHandler,
		RatesHandler:     ratesHandler,
		ReportsHandler:   reportsHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
