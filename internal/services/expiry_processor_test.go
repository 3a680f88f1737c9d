package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gestion/internal/core"
	"gestion/internal/storage"
)

func newTestLedger(t *testing.T) (*storage.SQLiteRepository, *ExpiryProcessor) {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "gestion.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	// No broker in tests; events are best effort and skipped when nil.
	service := NewDocumentService(repo, nil)
	return repo, NewExpiryProcessor(repo, service)
}

func TestProcessExpiredQuotes(t *testing.T) {
	repo, processor := newTestLedger(t)
	ctx := context.Background()

	clientID, err := repo.AddClient(ctx, core.Client{Name: "Acme"})
	if err != nil {
		t.Fatalf("AddClient: %v", err)
	}

	draft, err := repo.AddQuote(ctx, storage.NewQuote{
		ClientID: clientID, Description: "brouillon",
		PricingMode: core.PricingRate, DailyRate: dec("300"), Days: dec("2"),
	})
	if err != nil {
		t.Fatalf("AddQuote: %v", err)
	}
	sent, _ := repo.AddQuote(ctx, storage.NewQuote{
		ClientID: clientID, Description: "envoyé",
		PricingMode: core.PricingRate, DailyRate: dec("300"), Days: dec("3"),
	})
	repo.UpdateQuoteStatus(ctx, sent.ID, core.QuoteSent)
	accepted, _ := repo.AddQuote(ctx, storage.NewQuote{
		ClientID: clientID, Description: "accepté",
		PricingMode: core.PricingFlat, FlatAmount: dec("900"),
	})
	repo.UpdateQuoteStatus(ctx, accepted.ID, core.QuoteAccepted)

	t.Run("validity still open", func(t *testing.T) {
		count, err := processor.ProcessExpiredQuotes(ctx, time.Now())
		if err != nil {
			t.Fatalf("ProcessExpiredQuotes: %v", err)
		}
		if count != 0 {
			t.Errorf("expired %d quotes inside the validity window", count)
		}
	})

	t.Run("past the validity window", func(t *testing.T) {
		asOf := time.Now().AddDate(0, 0, 60)
		count, err := processor.ProcessExpiredQuotes(ctx, asOf)
		if err != nil {
			t.Fatalf("ProcessExpiredQuotes: %v", err)
		}
		if count != 2 {
			t.Errorf("expired %d quotes, want 2 (draft and sent)", count)
		}

		for _, q := range []*core.Quote{draft, sent} {
			got, err := repo.GetQuote(ctx, q.ID)
			if err != nil {
				t.Fatalf("GetQuote: %v", err)
			}
			if got.Status != core.QuoteExpired {
				t.Errorf("quote %s status = %q, want expired", got.Number, got.Status)
			}
		}
		got, _ := repo.GetQuote(ctx, accepted.ID)
		if got.Status != core.QuoteAccepted {
			t.Errorf("accepted quote status = %q, must survive the sweep", got.Status)
		}
	})

	t.Run("sweep is idempotent", func(t *testing.T) {
		count, err := processor.ProcessExpiredQuotes(ctx, time.Now().AddDate(0, 0, 60))
		if err != nil {
			t.Fatalf("ProcessExpiredQuotes: %v", err)
		}
		if count != 0 {
			t.Errorf("second sweep expired %d quotes, want 0", count)
		}
	})
}

func TestDocumentServiceClose(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "gestion.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	service := NewDocumentService(repo, nil)

	if err := service.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Closing the service tears down the storage handle with it.
	if _, err := repo.ListClients(context.Background()); err == nil {
		t.Error("repository still usable after service close")
	}
}

func TestSetInvoiceStatusWithoutBroker(t *testing.T) {
	repo, _ := newTestLedger(t)
	service := NewDocumentService(repo, nil)
	ctx := context.Background()

	clientID, _ := repo.AddClient(ctx, core.Client{Name: "Acme"})
	inv, err := repo.AddInvoice(ctx, storage.NewInvoice{
		ClientID: clientID, Description: "mission",
		PricingMode: core.PricingFlat, FlatAmount: dec("1000"),
	})
	if err != nil {
		t.Fatalf("AddInvoice: %v", err)
	}

	// Paying without a broker must still commit the transition.
	ok, err := service.SetInvoiceStatus(ctx, inv.ID, core.InvoicePaid, nil)
	if err != nil || !ok {
		t.Fatalf("SetInvoiceStatus = %v, %v", ok, err)
	}
	got, _ := repo.GetInvoice(ctx, inv.ID)
	if got.Status != core.InvoicePaid || got.PaidOn == nil {
		t.Errorf("invoice after payment: status=%q paid_on=%v", got.Status, got.PaidOn)
	}
}
