// Command gestion-worker runs the ledger maintenance loop: it periodically
// expires stale quotes and publishes document events for downstream
// rendering and notification consumers.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gestion/internal/amqp"
	"gestion/internal/config"
	"gestion/internal/log"
	"gestion/internal/services"
	"gestion/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production)
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentWorker})
	log.SetDefault(logger)

	logger.Info("Starting gestion-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	// Document events are optional: without a broker the ledger still works,
	// transitions are just not announced.
	var events *amqp.Client
	if cfg.AMQPURL != "" {
		events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
			events = nil
		} else {
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - document events will not be published")
	}

	service := services.NewDocumentService(repo, events)
	defer service.Close()
	processor := services.NewExpiryProcessor(repo, service)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The worker doubles as the notification consumer: lifecycle events
	// published by status transitions and the sweep are read back here.
	if events != nil {
		go func() {
			err := events.ConsumeDocumentEvents(ctx, func(msg *amqp.DocumentEventMessage) error {
				logger.Info("Document event received",
					"event", msg.Event,
					log.FieldDocType, string(msg.DocType),
					log.FieldNumber, msg.Number)
				return nil
			})
			if err != nil && ctx.Err() == nil {
				logger.Error("Document event consumer stopped", "error", err)
			}
		}()
	}

	logger.Info("Quote expiry sweep configured",
		"interval", cfg.ExpirySweepInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.ExpirySweepInterval)
	defer ticker.Stop()

	// Run an initial sweep on startup
	if count, err := processor.ProcessExpiredQuotes(ctx, time.Now()); err != nil {
		logger.Error("Initial expiry sweep failed", "error", err)
	} else {
		logger.Info("Initial expiry sweep complete", "quotes_expired", count)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				count, err := processor.ProcessExpiredQuotes(ctx, now)
				if err != nil {
					logger.Error("Expiry sweep failed", "error", err)
				} else {
					logger.Info("Expiry sweep complete",
						"quotes_expired", count,
						"next_check", now.Add(cfg.ExpirySweepInterval).Format("15:04:05"))
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("gestion-worker stopped")
}
