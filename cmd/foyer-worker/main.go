package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"foyer/internal/amqp"
	"foyer/internal/backend"
	"foyer/internal/config"
	"foyer/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting foyer-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}

	snap, err := backend.Open(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize snapshot backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer snap.Close()

	// Without AMQP the worker still runs timer-only backups.
	var consumer worker.ChangeConsumer
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		consumer = amqpClient
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("no AMQP URL configured, running timer-only backups")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	w := worker.NewBackupWorker(snap, cfg.BackupDir, cfg.BackupInterval)
	logger.Info("backup worker running", "dir", cfg.BackupDir, "interval", cfg.BackupInterval.String())

	if err := w.Run(ctx, consumer); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}

	logger.Info("worker stopped gracefully")
}
