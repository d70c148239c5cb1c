package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"nutrisight/internal/amqp"
	"nutrisight/internal/cli"
	"nutrisight/internal/ledger"
	"nutrisight/internal/planclient"
	"nutrisight/internal/sheets"
	"nutrisight/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting nutrisight-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	store := cli.InitStore(logger, cfg)
	defer store.Close()
	ledgerStore := ledger.NewStore(store)

	var backup sheets.Writer
	if cfg.SheetsConfigured() {
		client, err := sheets.NewGoogleClient(context.Background(), cfg)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		backup = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	planClient := planclient.New(cfg.PlanServiceURL)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.New(ledgerStore, planClient, backup, cfg.PlanUserID, cfg.PlanServiceToken)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := amqpClient.ConsumeEntryLogged(ctx, func(msg *amqp.EntryLoggedMessage) error {
			return w.HandleEntryLogged(ctx, msg)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
		}
		cancel()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	case <-ctx.Done():
	}

	logger.Info("Worker stopped gracefully")
}
