package main

import (
	"context"
	"os"
	"time"

	"spendsense/internal/amqp"
	"spendsense/internal/cli"
	"spendsense/internal/config"
	gsheet "spendsense/internal/mirror/google"
	"spendsense/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting spendsense-worker")

	cfg := config.Load()
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	sheetsClient, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirrorWorker := worker.NewMirrorWorker(sheetsClient)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	go func() {
		err := amqpClient.ConsumeExpenseEvents(ctx, func(ev *amqp.ExpenseEvent) error {
			return mirrorWorker.HandleEvent(ctx, ev)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Event consumption stopped", "error", err)
		}
	}()

	logger.Info("Mirror worker running", "queue", cfg.AMQPQueue)
	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
