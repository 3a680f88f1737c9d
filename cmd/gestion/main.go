// Command gestion opens the ledger, logs the current-year dashboard snapshot
// and the revenue threshold status, then exits. The interactive CLI and web
// front ends consume the same internal packages in-process.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"gestion/internal/config"
	"gestion/internal/core"
	"gestion/internal/log"
	"gestion/internal/services"
	"gestion/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

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
	defer repo.Close()

	ctx := context.Background()

	snap, err := repo.Snapshot(ctx)
	if err != nil {
		logger.Error("Failed to build snapshot", "error", err)
		os.Exit(1)
	}

	// The ledger stores net amounts; the tax-inclusive figure is derived at
	// the display boundary from the configured VAT regime.
	revenueTTC := core.GrossTotal(snap.AnnualRevenue, cfg.VATApplicable, cfg.VATRate)

	logger.Info("Dashboard snapshot",
		"year", snap.Year,
		"annual_revenue", snap.AnnualRevenue.StringFixed(2),
		"annual_revenue_ttc", revenueTTC.StringFixed(2),
		"active_clients", snap.ActiveClientCount,
		"pending_quotes", snap.PendingQuoteCount,
		"outstanding_invoices", snap.OutstandingCount,
		"outstanding_amount", snap.OutstandingAmount.StringFixed(2))

	for month := 1; month <= 12; month++ {
		if amount, ok := snap.MonthlyRevenue[month]; ok {
			logger.Info("Monthly revenue", "month", month, "amount", amount.StringFixed(2))
		}
	}

	threshold := services.EvaluateThreshold(snap.Year, snap.AnnualRevenue, cfg.RevenueThreshold, cfg.AlertPercent)

	logger.Info("Revenue threshold",
		"ceiling", threshold.Ceiling.StringFixed(2),
		"percent", threshold.Percent.StringFixed(1),
		"alert", threshold.Alert)

	if threshold.Alert {
		logger.Warn("Approaching the micro-entreprise revenue ceiling",
			"revenue", threshold.Revenue.StringFixed(2),
			"ceiling", threshold.Ceiling.StringFixed(2))
	}
}
