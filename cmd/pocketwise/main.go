package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"pocketwise/internal/amqp"
	"pocketwise/internal/cache"
	"pocketwise/internal/cli"
	apphttp "pocketwise/internal/http"
	applog "pocketwise/internal/log"
	"pocketwise/internal/services"
	"pocketwise/internal/snapshot"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger()
	appLogger := logger.WithComponent(applog.ComponentApp)

	cfg := cli.LoadAndValidateConfig(appLogger)

	repo := cli.InitSQLite(appLogger, cfg.SQLiteDBPath)
	defer repo.Close()

	// The sync queue is optional: without AMQP_URL the app runs
	// local-only and writes simply skip publishing.
	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			appLogger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		appLogger.Info("AMQP sync publishing enabled", "exchange", cfg.AMQPExchange)
	} else {
		appLogger.Info("AMQP_URL not set, sync publishing disabled")
	}

	localStore, err := snapshot.NewStore(cfg.SnapshotPath)
	if err != nil {
		appLogger.Error("Failed to initialize snapshot store",
			applog.FieldError, err.Error(), "path", cfg.SnapshotPath)
		os.Exit(1)
	}

	dashboardService := services.NewDashboardService(repo, cfg.CacheTTL)
	exportService := services.NewExportService(repo, publisher)
	exportService.AttachLocalStore(localStore)

	cacheManager := cache.NewManager()
	if cleaner := dashboardService.CacheCleaner(); cleaner != nil {
		cacheManager.Register(cleaner)
	}
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, cfg.JWTSecret, apphttp.Services{
		Transactions: services.NewTransactionService(repo, publisher),
		Recurring:    services.NewRecurringService(repo, publisher),
		Goals:        services.NewGoalService(repo),
		Onboarding:   services.NewOnboardingService(repo),
		Dashboard:    dashboardService,
		Export:       exportService,
	}, logger)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := cli.SignalContext()
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		appLogger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		appLogger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	appLogger.Info("Server stopped gracefully")
}
