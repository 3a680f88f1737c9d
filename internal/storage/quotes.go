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

// NewQuote enumerates the recognized quote creation fields. ValidityDays
// defaults to 30 and DepositRequested to true when left unset.
type NewQuote struct {
	ClientID         int64
	Description      string
	PricingMode      core.PricingMode
	DailyRate        decimal.Decimal
	Days             decimal.Decimal
	FlatAmount       decimal.Decimal
	ValidityDays     int
	Notes            string
	DepositRequested *bool
}

const quoteColumns = `id, number, client_id, description, pricing_mode, daily_rate, days,
	total_ht, total_ttc, status, validity_days, created_on, sent_on, notes, deposit_requested`

// AddQuote allocates a number, computes the totals and inserts the quote as
// a draft, all in one transaction. The persisted entity is re-read so every
// computed field is populated.
func (r *SQLiteRepository) AddQuote(ctx context.Context, p NewQuote) (*core.Quote, error) {
	pricing, err := core.Price(p.PricingMode, p.DailyRate, p.Days, p.FlatAmount)
	if err != nil {
		return nil, err
	}

	validity := p.ValidityDays
	if validity <= 0 {
		validity = 30
	}
	deposit := true
	if p.DepositRequested != nil {
		deposit = *p.DepositRequested
	}

	now := r.now()
	var id int64
	err = r.withTx(ctx, func(tx *sql.Tx) error {
		number, err := nextNumber(ctx, tx, core.DocQuote, now)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO quotes (number, client_id, description, pricing_mode, daily_rate, days,
				total_ht, total_ttc, validity_days, created_on, notes, deposit_requested)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, number, p.ClientID, p.Description, string(p.PricingMode),
			pricing.DailyRate.String(), pricing.Days.String(),
			pricing.TotalHT.String(), pricing.TotalTTC.String(),
			validity, now.Format(dateLayout), p.Notes, boolToInt(deposit))
		if err != nil {
			return fmt.Errorf("insert quote: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("quote insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	q, err := r.GetQuote(ctx, id)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Quote created",
		"id", q.ID, log.FieldNumber, q.Number, log.FieldClientID, q.ClientID, log.FieldTotalHT, q.TotalHT.String())
	return q, nil
}

func (r *SQLiteRepository) GetQuote(ctx context.Context, id int64) (*core.Quote, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+quoteColumns+" FROM quotes WHERE id = ?", id)
	return r.scanQuoteRow(row, "get quote")
}

func (r *SQLiteRepository) GetQuoteByNumber(ctx context.Context, number string) (*core.Quote, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+quoteColumns+" FROM quotes WHERE number = ?", number)
	return r.scanQuoteRow(row, "get quote by number")
}

// QuoteFilter narrows ListQuotes; nil fields match everything. Year matches
// the 4-digit creation year.
type QuoteFilter struct {
	ClientID *int64
	Status   *core.QuoteStatus
	Year     *int
}

func (r *SQLiteRepository) ListQuotes(ctx context.Context, f QuoteFilter) ([]core.Quote, error) {
	query := "SELECT " + quoteColumns + " FROM quotes WHERE 1=1"
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
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []core.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, *q)
	}
	return quotes, rows.Err()
}

// ListExpirableQuotes returns draft and sent quotes whose validity window
// ended before asOf.
func (r *SQLiteRepository) ListExpirableQuotes(ctx context.Context, asOf time.Time) ([]core.Quote, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+quoteColumns+` FROM quotes
		WHERE status IN (?, ?)
		AND date(created_on, '+' || validity_days || ' days') < date(?)
		ORDER BY created_on
	`, string(core.QuoteDraft), string(core.QuoteSent), asOf.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list expirable quotes: %w", err)
	}
	defer rows.Close()

	var quotes []core.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, *q)
	}
	return quotes, rows.Err()
}

// UpdateQuoteStatus moves the quote to status and reports whether a row
// matched. Moving to sent stamps sent_on once; it is never overwritten.
func (r *SQLiteRepository) UpdateQuoteStatus(ctx context.Context, id int64, status core.QuoteStatus) (bool, error) {
	if !status.Valid() {
		return false, core.ErrInvalidStatus
	}

	var res sql.Result
	var err error
	if status == core.QuoteSent {
		res, err = r.db.ExecContext(ctx,
			"UPDATE quotes SET status = ?, sent_on = COALESCE(sent_on, ?) WHERE id = ?",
			string(status), r.now().Format(dateLayout), id)
	} else {
		res, err = r.db.ExecContext(ctx,
			"UPDATE quotes SET status = ? WHERE id = ?", string(status), id)
	}
	if err != nil {
		return false, fmt.Errorf("update quote status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update quote status rows: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Quote status updated", "id", id, log.FieldStatus, string(status))
	}
	return n > 0, nil
}

// DeleteQuote hard deletes the row. Its number is never reissued.
func (r *SQLiteRepository) DeleteQuote(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM quotes WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete quote: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete quote rows: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) scanQuoteRow(row *sql.Row, op string) (*core.Quote, error) {
	q, err := scanQuote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return q, nil
}

func scanQuote(row rowScanner) (*core.Quote, error) {
	var q core.Quote
	var mode, rate, days, totalHT, totalTTC, createdOn string
	var sentOn sql.NullString
	var notes sql.NullString
	var deposit int

	err := row.Scan(&q.ID, &q.Number, &q.ClientID, &q.Description, &mode, &rate, &days,
		&totalHT, &totalTTC, (*string)(&q.Status), &q.ValidityDays, &createdOn, &sentOn, &notes, &deposit)
	if err != nil {
		return nil, err
	}

	q.PricingMode = core.PricingMode(mode)
	q.Notes = notes.String
	q.DepositRequested = deposit != 0

	if q.DailyRate, err = parseAmount(rate); err != nil {
		return nil, err
	}
	if q.Days, err = parseAmount(days); err != nil {
		return nil, err
	}
	if q.TotalHT, err = parseAmount(totalHT); err != nil {
		return nil, err
	}
	if q.TotalTTC, err = parseAmount(totalTTC); err != nil {
		return nil, err
	}
	if q.CreatedOn, err = parseDate(createdOn); err != nil {
		return nil, err
	}
	if q.SentOn, err = parseNullDate(sentOn); err != nil {
		return nil, err
	}
	return &q, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
