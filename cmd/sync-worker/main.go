package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"pocketwise/internal/amqp"
	"pocketwise/internal/cli"
	"pocketwise/internal/clouddb"
	applog "pocketwise/internal/log"
	"pocketwise/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger()
	workerLogger := logger.WithComponent(applog.ComponentWorker)

	workerLogger.Info("Starting sync worker")

	cfg := cli.LoadAndValidateConfig(workerLogger)
	if cfg.AMQPURL == "" {
		workerLogger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(workerLogger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		workerLogger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	cloud, err := clouddb.NewStore(clouddb.BackendType(cfg.CloudBackend), cfg.CloudDataPath)
	if err != nil {
		workerLogger.Error("Failed to initialize record store",
			applog.FieldError, err.Error(), "backend", cfg.CloudBackend)
		os.Exit(1)
	}
	workerLogger.Info("Initialized record store", "backend", cfg.CloudBackend)

	syncWorker := worker.NewSyncWorker(repo, cloud, cfg.SyncBatchSize)

	ctx, stop := cli.SignalContext()
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := amqpClient.ConsumeTransactionSync(ctx, func(msg *amqp.TransactionSyncMessage) error {
			handleCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			return syncWorker.HandleSyncMessage(handleCtx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		workerLogger.Info("Shutdown signal received")
		return nil
	})

	if err := g.Wait(); err != nil {
		workerLogger.Error("Worker error", applog.FieldError, err.Error())
		os.Exit(1)
	}
	workerLogger.Info("Worker stopped gracefully")
}
