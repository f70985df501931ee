package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"finanzas/internal/amqp"
	"finanzas/internal/cli"
	"finanzas/internal/services"
	"finanzas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting report-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	result := cli.InitStore(context.Background(), logger, cfg)
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Store cleanup error", "error", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	// The worker needs the broker; keep retrying until it comes up or
	// we are told to stop.
	amqpClient, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	logger.Info("Connected to AMQP broker",
		"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	dashboard := services.NewDashboardService(result.Store)
	reportWorker := worker.NewReportWorker(dashboard, result.Store, cfg.ReportOutputDir, cfg.SeriesMonths)

	logger.Info("Consuming report messages",
		"output_dir", cfg.ReportOutputDir,
		"refresh_interval", cfg.ReportInterval.String())

	if err := reportWorker.Run(ctx, amqpClient, cfg.ReportInterval); err != nil && err != context.Canceled {
		logger.Error("Report worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Report worker stopped gracefully")
}
