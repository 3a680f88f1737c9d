package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"gestion/internal/core"
	"gestion/internal/log"
)

// NewInvoice enumerates the recognized invoice creation fields.
// PaymentTermDays defaults to 30 when left unset.
type NewInvoice struct {
	ClientID        int64
	QuoteID         *int64
	Description     string
	PricingMode     core.PricingMode
	DailyRate       decimal.Decimal
	Days            decimal.Decimal
	FlatAmount      decimal.Decimal
	PaymentTermDays int
	MissionStart    *time.Time
	MissionEnd      *time.Time
	Notes           string
}

// InvoiceFromQuote creates an invoice from an accepted quote. Client,
// description, rate and pricing mode are copied from the quote; status and
// number are not. EffectiveDays may differ from the quoted days. For a flat
// quote, FlatAmount overrides the quoted total when non-zero.
type InvoiceFromQuote struct {
	QuoteID         int64
	EffectiveDays   decimal.Decimal
	FlatAmount      decimal.Decimal
	PaymentTermDays int
	MissionStart    *time.Time
	MissionEnd      *time.Time
	Notes           string
}

const invoiceColumns = `id, number, quote_id, client_id, description, pricing_mode, daily_rate, days,
	total_ht, total_ttc, status, created_on, sent_on, due_on, paid_on, mission_start, mission_end, notes`

// AddInvoice allocates a number, computes totals and the due date, and
// inserts the invoice as a draft in one transaction. The due date is the
// first day of the month after creation plus (term − 1) days, fixed here and
// never recomputed.
func (r *SQLiteRepository) AddInvoice(ctx context.Context, p NewInvoice) (*core.Invoice, error) {
	pricing, err := core.Price(p.PricingMode, p.DailyRate, p.Days, p.FlatAmount)
	if err != nil {
		return nil, err
	}

	term := p.PaymentTermDays
	if term <= 0 {
		term = 30
	}

	now := r.now()
	dueOn := core.DueDate(now, term)

	var id int64
	err = r.withTx(ctx, func(tx *sql.Tx) error {
		number, err := nextNumber(ctx, tx, core.DocInvoice, now)
		if err != nil {
			return err
		}
		var quoteID any
		if p.QuoteID != nil {
			quoteID = *p.QuoteID
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO invoices (number, quote_id, client_id, description, pricing_mode, daily_rate, days,
				total_ht, total_ttc, created_on, due_on, mission_start, mission_end, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, number, quoteID, p.ClientID, p.Description, string(p.PricingMode),
			pricing.DailyRate.String(), pricing.Days.String(),
			pricing.TotalHT.String(), pricing.TotalTTC.String(),
			now.Format(dateLayout), dueOn.Format(dateLayout),
			dateArg(p.MissionStart), dateArg(p.MissionEnd), p.Notes)
		if err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("invoice insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	inv, err := r.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Invoice created",
		"id", inv.ID, log.FieldNumber, inv.Number, log.FieldClientID, inv.ClientID,
		log.FieldTotalHT, inv.TotalHT.String(), log.FieldDueOn, inv.DueOn.Format(dateLayout))
	return inv, nil
}

func (r *SQLiteRepository) AddInvoiceFromQuote(ctx context.Context, p InvoiceFromQuote) (*core.Invoice, error) {
	quote, err := r.GetQuote(ctx, p.QuoteID)
	if err != nil {
		return nil, fmt.Errorf("source quote %d: %w", p.QuoteID, err)
	}

	flat := decimal.Zero
	if quote.PricingMode == core.PricingFlat {
		flat = quote.TotalHT
		if !p.FlatAmount.IsZero() {
			flat = p.FlatAmount
		}
	}

	return r.AddInvoice(ctx, NewInvoice{
		ClientID:        quote.ClientID,
		QuoteID:         &quote.ID,
		Description:     quote.Description,
		PricingMode:     quote.PricingMode,
		DailyRate:       quote.DailyRate,
		Days:            p.EffectiveDays,
		FlatAmount:      flat,
		PaymentTermDays: p.PaymentTermDays,
		MissionStart:    p.MissionStart,
		MissionEnd:      p.MissionEnd,
		Notes:           p.Notes,
	})
}

func (r *SQLiteRepository) GetInvoice(ctx context.Context, id int64) (*core.Invoice, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id = ?", id)
	return r.scanInvoiceRow(row, "get invoice")
}

func (r *SQLiteRepository) GetInvoiceByNumber(ctx context.Context, number string) (*core.Invoice, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE number = ?", number)
	return r.scanInvoiceRow(row, "get invoice by number")
}

// InvoiceFilter narrows ListInvoices; nil fields match everything. Year
// matches the 4-digit creation year.
type InvoiceFilter struct {
	ClientID *int64
	Status   *core.InvoiceStatus
	Year     *int
}

func (r *SQLiteRepository) ListInvoices(ctx context.Context, f InvoiceFilter) ([]core.Invoice, error) {
	query := "SELECT " + invoiceColumns + " FROM invoices WHERE 1=1"
	var args []any

	if f.ClientID != nil {
		query += " AND client_id = ?"
		args = append(args, *f.ClientID)
	}
	if f.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*f.Status))
	}
	if f.Year != nil {
		query += " AND strftime('%Y', created_on) = ?"
		args = append(args, fmt.Sprintf("%04d", *f.Year))
	}
	query += " ORDER BY created_on DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	return collectInvoices(rows)
}

// UpdateInvoiceStatus moves the invoice to status and reports whether a row
// matched. Moving to paid stamps the payment date (supplied value, or today
// when absent); every other status clears it. Moving to sent stamps sent_on
// once.
func (r *SQLiteRepository) UpdateInvoiceStatus(ctx context.Context, id int64, status core.InvoiceStatus, paidOn *time.Time) (bool, error) {
	if !status.Valid() {
		return false, core.ErrInvalidStatus
	}

	var res sql.Result
	var err error
	switch status {
	case core.InvoicePaid:
		when := r.now()
		if paidOn != nil {
			when = *paidOn
		}
		res, err = r.db.ExecContext(ctx,
			"UPDATE invoices SET status = ?, paid_on = ? WHERE id = ?",
			string(status), when.Format(dateLayout), id)
	case core.InvoiceSent:
		res, err = r.db.ExecContext(ctx,
			"UPDATE invoices SET status = ?, paid_on = NULL, sent_on = COALESCE(sent_on, ?) WHERE id = ?",
			string(status), r.now().Format(dateLayout), id)
	default:
		res, err = r.db.ExecContext(ctx,
			"UPDATE invoices SET status = ?, paid_on = NULL WHERE id = ?", string(status), id)
	}
	if err != nil {
		return false, fmt.Errorf("update invoice status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update invoice status rows: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Invoice status updated", "id", id, log.FieldStatus, string(status))
	}
	return n > 0, nil
}

// DeleteInvoice hard deletes the row. Its number is never reissued.
func (r *SQLiteRepository) DeleteInvoice(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete invoice: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete invoice rows: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) scanInvoiceRow(row *sql.Row, op string) (*core.Invoice, error) {
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return inv, nil
}

func collectInvoices(rows *sql.Rows) ([]core.Invoice, error) {
	var invoices []core.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func scanInvoice(row rowScanner) (*core.Invoice, error) {
	var inv core.Invoice
	var quoteID sql.NullInt64
	var mode, rate, days, totalHT, totalTTC, createdOn, dueOn string
	var sentOn, paidOn, missionStart, missionEnd sql.NullString
	var notes sql.NullString

	err := row.Scan(&inv.ID, &inv.Number, &quoteID, &inv.ClientID, &inv.Description, &mode, &rate, &days,
		&totalHT, &totalTTC, (*string)(&inv.Status), &createdOn, &sentOn, &dueOn, &paidOn,
		&missionStart, &missionEnd, &notes)
	if err != nil {
		return nil, err
	}

	inv.PricingMode = core.PricingMode(mode)
	inv.Notes = notes.String
	if quoteID.Valid {
		inv.QuoteID = &quoteID.Int64
	}

	if inv.DailyRate, err = parseAmount(rate); err != nil {
		return nil, err
	}
	if inv.Days, err = parseAmount(days); err != nil {
		return nil, err
	}
	if inv.TotalHT, err = parseAmount(totalHT); err != nil {
		return nil, err
	}
	if inv.TotalTTC, err = parseAmount(totalTTC); err != nil {
		return nil, err
	}
	if inv.CreatedOn, err = parseDate(createdOn); err != nil {
		return nil, err
	}
	if inv.DueOn, err = parseDate(dueOn); err != nil {
		return nil, err
	}
	if inv.SentOn, err = parseNullDate(sentOn); err != nil {
		return nil, err
	}
	if inv.PaidOn, err = parseNullDate(paidOn); err != nil {
		return nil, err
	}
	if inv.MissionStart, err = parseNullDate(missionStart); err != nil {
		return nil, err
	}
	if inv.MissionEnd, err = parseNullDate(missionEnd); err != nil {
		return nil, err
	}
	return &inv, nil
}
