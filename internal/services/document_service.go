// Package services orchestrates ledger operations: document creation and
// status transitions with event publishing, the quote expiry sweep, and the
// revenue threshold check that sits at the boundary between ledger state and
// configuration.
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

// DocumentService fronts the SQLite ledger and publishes lifecycle events.
// The event stream is best effort: a broker failure is logged, never allowed
// to fail a committed ledger write.
type DocumentService struct {
	storage *storage.SQLiteRepository
	events  *amqp.Client
}

func NewDocumentService(storage *storage.SQLiteRepository, events *amqp.Client) *DocumentService {
	return &DocumentService{
		storage: storage,
		events:  events,
	}
}

func (s *DocumentService) CreateClient(ctx context.Context, c core.Client) (int64, error) {
	return s.storage.AddClient(ctx, c)
}

func (s *DocumentService) CreateQuote(ctx context.Context, p storage.NewQuote) (*core.Quote, error) {
	return s.storage.AddQuote(ctx, p)
}

func (s *DocumentService) CreateInvoice(ctx context.Context, p storage.NewInvoice) (*core.Invoice, error) {
	return s.storage.AddInvoice(ctx, p)
}

func (s *DocumentService) CreateInvoiceFromQuote(ctx context.Context, p storage.InvoiceFromQuote) (*core.Invoice, error) {
	return s.storage.AddInvoiceFromQuote(ctx, p)
}

func (s *DocumentService) CreateContract(ctx context.Context, p storage.NewContract) (*core.Contract, error) {
	return s.storage.AddContract(ctx, p)
}

// SetInvoiceStatus applies the transition and, when an invoice becomes paid,
// publishes the invoice.paid event for downstream collaborators.
func (s *DocumentService) SetInvoiceStatus(ctx context.Context, id int64, status core.InvoiceStatus, paidOn *time.Time) (bool, error) {
	matched, err := s.storage.UpdateInvoiceStatus(ctx, id, status, paidOn)
	if err != nil || !matched {
		return matched, err
	}

	if status == core.InvoicePaid {
		s.publishEvent(ctx, amqp.EventInvoicePaid, core.DocInvoice, id)
	}
	return true, nil
}

func (s *DocumentService) SetQuoteStatus(ctx context.Context, id int64, status core.QuoteStatus) (bool, error) {
	return s.storage.UpdateQuoteStatus(ctx, id, status)
}

func (s *DocumentService) SetContractStatus(ctx context.Context, id int64, status core.ContractStatus) (bool, error) {
	return s.storage.UpdateContractStatus(ctx, id, status)
}

func (s *DocumentService) publishEvent(ctx context.Context, event string, docType core.DocType, id int64) {
	if s.events == nil {
		return
	}

	number := ""
	switch docType {
	case core.DocInvoice:
		if inv, err := s.storage.GetInvoice(ctx, id); err == nil {
			number = inv.Number
		}
	case core.DocQuote:
		if q, err := s.storage.GetQuote(ctx, id); err == nil {
			number = q.Number
		}
	}

	msg := amqp.NewDocumentEventMessage(event, docType, id, number)
	if err := s.events.PublishDocumentEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish document event",
			"event", event, log.FieldDocType, string(docType), "id", id, log.FieldError, err)
	}
}

// Close closes both storage and AMQP connections
func (s *DocumentService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.events != nil {
		if err := s.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close document service: %v", errs)
	}
	return nil
}
