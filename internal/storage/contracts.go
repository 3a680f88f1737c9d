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

// NewContract enumerates the recognized contract creation fields. The kind
// dictates which financial field is required: a daily rate for
// time-and-materials and short-mission contracts, a flat amount for
// fixed-price ones. The field the kind does not use is stored as zero.
type NewContract struct {
	ClientID     int64
	Kind         core.ContractKind
	DailyRate    decimal.Decimal
	DurationDays *int
	FlatAmount   decimal.Decimal
	StartsOn     *time.Time
	EndsOn       *time.Time
	FilePath     string
}

const contractColumns = `id, number, client_id, kind, daily_rate, duration_days, flat_amount,
	starts_on, ends_on, status, created_on, file_path`

func (r *SQLiteRepository) AddContract(ctx context.Context, p NewContract) (*core.Contract, error) {
	if !p.Kind.Valid() {
		return nil, core.ErrInvalidContractKind
	}

	rate := p.DailyRate
	flat := p.FlatAmount
	switch p.Kind {
	case core.KindFixedPrice:
		if flat.LessThanOrEqual(decimal.Zero) {
			return nil, core.ErrInvalidAmount
		}
		rate = decimal.Zero
	default:
		if rate.LessThanOrEqual(decimal.Zero) {
			return nil, core.ErrInvalidAmount
		}
		flat = decimal.Zero
	}

	now := r.now()
	var id int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		number, err := nextNumber(ctx, tx, core.DocContract, now)
		if err != nil {
			return err
		}
		var duration any
		if p.DurationDays != nil {
			duration = *p.DurationDays
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO contracts (number, client_id, kind, daily_rate, duration_days, flat_amount,
				starts_on, ends_on, created_on, file_path)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, number, p.ClientID, string(p.Kind), rate.String(), duration, flat.String(),
			dateArg(p.StartsOn), dateArg(p.EndsOn), now.Format(dateLayout), p.FilePath)
		if err != nil {
			return fmt.Errorf("insert contract: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("contract insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c, err := r.GetContract(ctx, id)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Contract created",
		"id", c.ID, log.FieldNumber, c.Number, log.FieldClientID, c.ClientID, "kind", string(c.Kind))
	return c, nil
}

func (r *SQLiteRepository) GetContract(ctx context.Context, id int64) (*core.Contract, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+contractColumns+" FROM contracts WHERE id = ?", id)
	c, err := scanContract(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get contract: %w", err)
	}
	return c, nil
}

// ContractFilter narrows ListContracts; nil fields match everything.
type ContractFilter struct {
	ClientID *int64
	Kind     *core.ContractKind
}

func (r *SQLiteRepository) ListContracts(ctx context.Context, f ContractFilter) ([]core.Contract, error) {
	query := "SELECT " + contractColumns + " FROM contracts WHERE 1=1"
	var args []any

	if f.ClientID != nil {
		query += " AND client_id = ?"
		args = append(args, *f.ClientID)
	}
	if f.Kind != nil {
		query += " AND kind = ?"
		args = append(args, string(*f.Kind))
	}
	query += " ORDER BY created_on DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	var contracts []core.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contract: %w", err)
		}
		contracts = append(contracts, *c)
	}
	return contracts, rows.Err()
}

// UpdateContractStatus enforces the status vocabulary; the statuses are
// descriptive only and nothing else in the ledger reads them.
func (r *SQLiteRepository) UpdateContractStatus(ctx context.Context, id int64, status core.ContractStatus) (bool, error) {
	if !status.Valid() {
		return false, core.ErrInvalidStatus
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE contracts SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return false, fmt.Errorf("update contract status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update contract status rows: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) DeleteContract(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM contracts WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete contract: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete contract rows: %w", err)
	}
	return n > 0, nil
}

func scanContract(row rowScanner) (*core.Contract, error) {
	var c core.Contract
	var rate, flat, createdOn string
	var duration sql.NullInt64
	var startsOn, endsOn sql.NullString
	var filePath sql.NullString

	err := row.Scan(&c.ID, &c.Number, &c.ClientID, (*string)(&c.Kind), &rate, &duration, &flat,
		&startsOn, &endsOn, (*string)(&c.Status), &createdOn, &filePath)
	if err != nil {
		return nil, err
	}

	c.FilePath = filePath.String
	if duration.Valid {
		d := int(duration.Int64)
		c.DurationDays = &d
	}

	if c.DailyRate, err = parseAmount(rate); err != nil {
		return nil, err
	}
	if c.FlatAmount, err = parseAmount(flat); err != nil {
		return nil, err
	}
	if c.CreatedOn, err = parseDate(createdOn); err != nil {
		return nil, err
	}
	if c.StartsOn, err = parseNullDate(startsOn); err != nil {
		return nil, err
	}
	if c.EndsOn, err = parseNullDate(endsOn); err != nil {
		return nil, err
	}
	return &c, nil
}
