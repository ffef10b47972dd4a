package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"viveka/internal/cli"
	"viveka/internal/config"
	apphttp "viveka/internal/http"
	vlog "viveka/internal/log"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), vlog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, vlog.ComponentApp)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	res := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Loans:              res.Loans,
		Cashflow:           res.Cashflow,
		Dashboard:          res.Dashboard,
		Health:             res.Store,
		Logger:             vlog.New(vlog.Config{Level: levelOf(cfg.LogLevel), Component: vlog.ComponentHTTP, Output: os.Stdout}),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting viveka server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events", res.EventsEnabled,
			"rate_limit_per_minute", cfg.RateLimitPerMinute)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		m := srv.Metrics()
		logger.Info("Server stopped gracefully", "requests", m.TotalRequests, "server_errors", m.ServerErrors)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
}

func levelOf(level string) slog.Level {
	lvl, _ := config.ParseLogLevel(level)
	return lvl
}
