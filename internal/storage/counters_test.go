package storage

import (
	"context"
	"testing"
	"time"

	"gestion/internal/core"
)

func TestNextNumberSequence(t *testing.T) {
	repo := newTestRepo(t)
	setClock(repo, day(2024, time.March, 1))
	ctx := context.Background()

	want := []string{"FACT-2024-001", "FACT-2024-002", "FACT-2024-003"}
	for _, w := range want {
		got, err := repo.NextNumber(ctx, core.DocInvoice)
		if err != nil {
			t.Fatalf("NextNumber: %v", err)
		}
		if got != w {
			t.Errorf("NextNumber = %q, want %q", got, w)
		}
	}
}

func TestNextNumberPerTypeCounters(t *testing.T) {
	repo := newTestRepo(t)
	setClock(repo, day(2024, time.March, 1))
	ctx := context.Background()

	// Each document type advances its own counter.
	if n, _ := repo.NextNumber(ctx, core.DocQuote); n != "DEVIS-2024-001" {
		t.Errorf("quote number = %q", n)
	}
	if n, _ := repo.NextNumber(ctx, core.DocQuote); n != "DEVIS-2024-002" {
		t.Errorf("quote number = %q", n)
	}
	if n, _ := repo.NextNumber(ctx, core.DocInvoice); n != "FACT-2024-001" {
		t.Errorf("invoice number = %q", n)
	}
	if n, _ := repo.NextNumber(ctx, core.DocContract); n != "CONT-2024-001" {
		t.Errorf("contract number = %q", n)
	}
}

func TestNextNumberYearRollover(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	setClock(repo, day(2024, time.December, 30))
	for i := 0; i < 2; i++ {
		if _, err := repo.NextNumber(ctx, core.DocInvoice); err != nil {
			t.Fatalf("NextNumber: %v", err)
		}
	}

	// New fiscal year: the sequence restarts at 1.
	setClock(repo, day(2025, time.January, 2))
	got, err := repo.NextNumber(ctx, core.DocInvoice)
	if err != nil {
		t.Fatalf("NextNumber: %v", err)
	}
	if got != "FACT-2025-001" {
		t.Errorf("NextNumber after rollover = %q, want FACT-2025-001", got)
	}
	if got, _ := repo.NextNumber(ctx, core.DocInvoice); got != "FACT-2025-002" {
		t.Errorf("NextNumber = %q, want FACT-2025-002", got)
	}
}

func TestNumbersNeverReissuedAfterDelete(t *testing.T) {
	repo := newTestRepo(t)
	setClock(repo, day(2024, time.March, 1))
	ctx := context.Background()
	clientID := addTestClient(t, repo, "Acme")

	q1, err := repo.AddQuote(ctx, NewQuote{
		ClientID: clientID, Description: "audit",
		PricingMode: core.PricingRate, DailyRate: dec("300"), Days: dec("5"),
	})
	if err != nil {
		t.Fatalf("AddQuote: %v", err)
	}
	if q1.Number != "DEVIS-2024-001" {
		t.Fatalf("first quote number = %q", q1.Number)
	}

	if ok, err := repo.DeleteQuote(ctx, q1.ID); err != nil || !ok {
		t.Fatalf("DeleteQuote = %v, %v", ok, err)
	}

	q2, err := repo.AddQuote(ctx, NewQuote{
		ClientID: clientID, Description: "suite",
		PricingMode: core.PricingRate, DailyRate: dec("300"), Days: dec("2"),
	})
	if err != nil {
		t.Fatalf("AddQuote: %v", err)
	}
	if q2.Number != "DEVIS-2024-002" {
		t.Errorf("quote after delete got %q, numbers must not be reissued", q2.Number)
	}
}
