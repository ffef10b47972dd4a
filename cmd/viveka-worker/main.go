package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"viveka/internal/amqp"
	"viveka/internal/cli"
	vlog "viveka/internal/log"
	gsheet "viveka/internal/sheets/google"
	"viveka/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), vlog.ComponentWorker)
	cfg := cli.LoadAndValidateWorkerConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, vlog.ComponentWorker)
	logger.Info("Starting viveka-worker", "sheet", cfg.GoogleSheetName, "sync_interval", cfg.SyncInterval)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	// The worker only reads loans, so the store is opened without a publisher.
	storeCfg := *cfg
	storeCfg.AMQPURL = ""
	res := cli.OpenBackend(ctx, logger, &storeCfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	sheetsClient, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(res.Store, sheetsClient)
	if err := syncWorker.StartupSync(ctx); err != nil {
		// The periodic export retries; a bad sheet must not stop consumption.
		logger.Error("Startup sync failed", "error", err)
	}

	exporter := worker.NewPeriodicExporter(syncWorker, cfg.SyncInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := amqpClient.ConsumeLoanEvents(gctx, syncWorker.HandleLoanEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		if err := exporter.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return exporter.Stop(stopCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", "last_export", syncWorker.LastExport())
}
