package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"foyer/internal/advisor"
	"foyer/internal/advisor/gemini"
	"foyer/internal/amqp"
	"foyer/internal/backend"
	"foyer/internal/config"
	apphttp "foyer/internal/http"
	"foyer/internal/services"
	"foyer/internal/store"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

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

	st, err := store.Open(context.Background(), snap)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}

	// AMQP is optional; without it, mutations just skip change messages.
	var publisher services.ChangePublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("failed to initialize AMQP client, continuing without change messages", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ledger := services.NewLedgerService(st, publisher)

	// The advisor is optional as well; the service falls back to a fixed
	// message when it is absent.
	var adv advisor.Advisor
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("failed to initialize Gemini client, advice will degrade", "error", err)
		} else {
			adv = client
			logger.Info("Gemini advisor initialized", "model", cfg.GeminiModel)
		}
	}
	advisorService := services.NewAdvisorService(ledger, adv)

	srv := apphttp.NewServer(":"+cfg.Port, ledger, advisorService, cfg.SummaryOptions())
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("starting foyer server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}
