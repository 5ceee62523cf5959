package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"salesdash/internal/amqp"
	"salesdash/internal/cli"
	applog "salesdash/internal/log"
	"salesdash/internal/seed"
	"salesdash/internal/worker"
)

func main() {
	request := flag.Bool("request", false, "publish a seed request and exit")
	seedOnStart := flag.Bool("seed-on-start", false, "reload the store before consuming requests")
	flag.Parse()

	cli.LoadEnvFile()

	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the seed worker")
		os.Exit(1)
	}

	res := cli.InitBackend(context.Background(), logger, cfg)
	defer res.Close()

	amqpClient, ok := res.Publisher.(*amqp.Client)
	if !ok {
		logger.Error("AMQP broker unavailable", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		_ = res.Close()
		os.Exit(1)
	}

	if *request {
		host, _ := os.Hostname()
		if err := amqpClient.PublishSeedRequest(context.Background(), "seed-worker@"+host); err != nil {
			logger.Error("Failed to publish seed request", applog.FieldError, err)
			_ = res.Close()
			os.Exit(1)
		}
		return
	}

	loader := seed.NewLoader(cfg.SeedURL, res.Store,
		seed.WithTimeout(cfg.SeedTimeout),
		seed.WithPublisher(amqpClient))
	seedWorker := worker.NewSeedWorker(loader, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	if *seedOnStart {
		logger.Info("Performing startup seed", applog.FieldOperation, applog.OpSeed)
		msg := amqp.NewSeedRequestMessage("startup")
		if err := seedWorker.HandleSeedRequest(ctx, msg); err != nil {
			// keep consuming; a later request can still succeed
			logger.Error("Startup seed failed", applog.FieldError, err)
		}
	}

	logger.Info("Starting seed worker",
		applog.FieldBackend, cfg.DataBackend,
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		applog.FieldOperation, applog.OpStartup)

	if err := amqpClient.ConsumeSeedRequests(ctx, seedWorker.HandleSeedRequest); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		_ = res.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Seed worker stopped", "last_reload", seedWorker.LastReload())
}
