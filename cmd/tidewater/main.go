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

	"github.com/tidewater-fin/tidewater/internal/app"
	"github.com/tidewater-fin/tidewater/internal/fx"
	"github.com/tidewater-fin/tidewater/internal/ledger"
	"github.com/tidewater-fin/tidewater/internal/ledger/accounts"
	"github.com/tidewater-fin/tidewater/internal/ledger/documents"
	ledgerhttp "github.com/tidewater-fin/tidewater/internal/ledger/http"
	"github.com/tidewater-fin/tidewater/internal/ledger/journal"
	"github.com/tidewater-fin/tidewater/internal/ledger/reporting"
	"github.com/tidewater-fin/tidewater/internal/observability"
	"github.com/tidewater-fin/tidewater/internal/platform/cache"
	"github.com/tidewater-fin/tidewater/internal/platform/db"
	"github.com/tidewater-fin/tidewater/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	converter := fx.NewConverter(fx.NewHTTPSource(cfg.FxProviderURL), redisClient, cfg.FxRateTTL, logger)

	ledgerRepo := ledger.NewRepository(dbpool)
	registry := ledger.NewRegistry(ledgerRepo)

	journalRepo := journal.NewRepository(dbpool)
	syncService := ledger.NewService(journalRepo, converter, logger)

	accountsRepo := accounts.NewRepository(dbpool)
	accountsService := accounts.NewService(accountsRepo)

	documentsRepo := documents.NewRepository(dbpool)
	documentsService := documents.NewService(documentsRepo)

	reportingRepo := reporting.NewRepository(dbpool)
	reportingService := reporting.NewService(reportingRepo, accountsRepo)

	ledgerHandler := ledgerhttp.NewHandler(logger, registry, syncService, accountsService, documentsService, reportingService, metrics)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		LedgerHandler: ledgerHandler,
		JobHandler:    jobHandler,
		Metrics:       metrics,
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
