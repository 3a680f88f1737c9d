package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gestion/internal/amqp"
	"gestion/internal/core"
	"gestion/internal/log"
	"gestion/internal/storage"
)

// ExpiryProcessor marks draft and sent quotes whose validity window has
// lapsed as expired. Run periodically by the worker.
type ExpiryProcessor struct {
	storage *storage.SQLiteRepository
	service *DocumentService
}

func NewExpiryProcessor(storage *storage.SQLiteRepository, service *DocumentService) *ExpiryProcessor {
	return &ExpiryProcessor{
		storage: storage,
		service: service,
	}
}

// ProcessExpiredQuotes sweeps once and returns how many quotes were expired.
// A failure on one quote does not stop the sweep.
func (p *ExpiryProcessor) ProcessExpiredQuotes(ctx context.Context, asOf time.Time) (int, error) {
	candidates, err := p.storage.ListExpirableQuotes(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("list expirable quotes: %w", err)
	}

	expired := 0
	for _, quote := range candidates {
		matched, err := p.storage.UpdateQuoteStatus(ctx, quote.ID, core.QuoteExpired)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to expire quote",
				"id", quote.ID, log.FieldNumber, quote.Number, log.FieldError, err)
			continue
		}
		if !matched {
			continue
		}

		slog.InfoContext(ctx, "Quote expired",
			"id", quote.ID, log.FieldNumber, quote.Number,
			"created_on", quote.CreatedOn.Format("2006-01-02"),
			"validity_days", quote.ValidityDays)
		p.service.publishEvent(ctx, amqp.EventQuoteExpired, core.DocQuote, quote.ID)
		expired++
	}

	return expired, nil
}
