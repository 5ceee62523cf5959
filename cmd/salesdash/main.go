package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"salesdash/internal/cli"
	apphttp "salesdash/internal/http"
	applog "salesdash/internal/log"
	"salesdash/internal/seed"
	"salesdash/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	res := cli.InitBackend(context.Background(), logger, cfg)

	loaderOpts := []seed.Option{seed.WithTimeout(cfg.SeedTimeout)}
	if res.Publisher != nil {
		loaderOpts = append(loaderOpts, seed.WithPublisher(res.Publisher))
	}
	loader := seed.NewLoader(cfg.SeedURL, res.Store, loaderOpts...)

	analytics := services.NewAnalyticsService(res.Store, loader,
		services.WithStoreTimeout(cfg.StoreTimeout),
		services.WithDefaultPerPage(cfg.DefaultPerPage),
		services.WithMaxPerPage(cfg.MaxPerPage))

	srv := apphttp.NewServer(":"+cfg.Port, analytics, apphttp.Options{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins(),
		InitRateLimit:  cfg.InitRateLimit,
		TrustedProxies: cfg.TrustedProxyCIDRs(),
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := res.Close(); err != nil {
			logger.Error("Backend close error", applog.FieldError, err)
		}
	})

	logger.Info("Starting salesdash server",
		"port", cfg.Port,
		applog.FieldBackend, cfg.DataBackend,
		"seed_url", cfg.SeedURL,
		applog.FieldOperation, applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		_ = res.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
