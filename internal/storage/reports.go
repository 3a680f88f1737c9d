package storage

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"gestion/internal/core"
)

// AnnualRevenue sums total_ht over paid invoices created in year. A year of
// zero or less means the current year. Sums are accumulated in decimal on
// the Go side so TEXT-stored amounts never pass through floats.
func (r *SQLiteRepository) AnnualRevenue(ctx context.Context, year int) (decimal.Decimal, error) {
	if year <= 0 {
		year = r.now().Year()
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT total_ht FROM invoices
		WHERE strftime('%Y', created_on) = ? AND status = ?
	`, fmt.Sprintf("%04d", year), string(core.InvoicePaid))
	if err != nil {
		return decimal.Zero, fmt.Errorf("annual revenue: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return decimal.Zero, fmt.Errorf("scan revenue row: %w", err)
		}
		amount, err := parseAmount(s)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, rows.Err()
}

// MonthlyRevenue groups paid-invoice revenue by creation month. Months
// without a paid invoice are absent from the map, never present as zero.
func (r *SQLiteRepository) MonthlyRevenue(ctx context.Context, year int) (map[int]decimal.Decimal, error) {
	if year <= 0 {
		year = r.now().Year()
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT strftime('%m', created_on), total_ht FROM invoices
		WHERE strftime('%Y', created_on) = ? AND status = ?
	`, fmt.Sprintf("%04d", year), string(core.InvoicePaid))
	if err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	defer rows.Close()

	byMonth := make(map[int]decimal.Decimal)
	for rows.Next() {
		var monthStr, amountStr string
		if err := rows.Scan(&monthStr, &amountStr); err != nil {
			return nil, fmt.Errorf("scan revenue row: %w", err)
		}
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			return nil, fmt.Errorf("parse month %q: %w", monthStr, err)
		}
		amount, err := parseAmount(amountStr)
		if err != nil {
			return nil, err
		}
		byMonth[month] = byMonth[month].Add(amount)
	}
	return byMonth, rows.Err()
}

// OutstandingInvoices returns sent and unpaid invoices ordered by ascending
// due date. Days overdue is a read-side derivation, see Invoice.Overdue.
func (r *SQLiteRepository) OutstandingInvoices(ctx context.Context) ([]core.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE status IN (?, ?)
		ORDER BY due_on, id
	`, string(core.InvoiceSent), string(core.InvoiceUnpaid))
	if err != nil {
		return nil, fmt.Errorf("outstanding invoices: %w", err)
	}
	defer rows.Close()

	return collectInvoices(rows)
}

// Snapshot assembles the current-year dashboard aggregate. The independent
// queries fan out on an errgroup; database/sql serializes access safely.
func (r *SQLiteRepository) Snapshot(ctx context.Context) (*core.Snapshot, error) {
	year := r.now().Year()
	snap := &core.Snapshot{Year: year}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		revenue, err := r.AnnualRevenue(gctx, year)
		if err != nil {
			return err
		}
		mu.Lock()
		snap.AnnualRevenue = revenue
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		monthly, err := r.MonthlyRevenue(gctx, year)
		if err != nil {
			return err
		}
		mu.Lock()
		snap.MonthlyRevenue = monthly
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		var count int
		err := r.db.QueryRowContext(gctx, `
			SELECT COUNT(DISTINCT client_id) FROM invoices
			WHERE strftime('%Y', created_on) = ?
		`, fmt.Sprintf("%04d", year)).Scan(&count)
		if err != nil {
			return fmt.Errorf("active client count: %w", err)
		}
		mu.Lock()
		snap.ActiveClientCount = count
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		var count int
		err := r.db.QueryRowContext(gctx, `
			SELECT COUNT(*) FROM quotes WHERE status IN (?, ?)
		`, string(core.QuoteDraft), string(core.QuoteSent)).Scan(&count)
		if err != nil {
			return fmt.Errorf("pending quote count: %w", err)
		}
		mu.Lock()
		snap.PendingQuoteCount = count
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		outstanding, err := r.OutstandingInvoices(gctx)
		if err != nil {
			return err
		}
		amount := decimal.Zero
		for _, inv := range outstanding {
			amount = amount.Add(inv.TotalHT)
		}
		mu.Lock()
		snap.OutstandingCount = len(outstanding)
		snap.OutstandingAmount = amount
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
