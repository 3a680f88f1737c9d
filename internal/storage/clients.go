package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gestion/internal/core"
)

// AddClient inserts a client and returns its generated id. Name is the only
// required field.
func (r *SQLiteRepository) AddClient(ctx context.Context, c core.Client) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO clients (name, tax_id, address, postal_code, city, email, phone, contact_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.Name, c.TaxID, c.Address, c.PostalCode, c.City, c.Email, c.Phone, c.ContactName)
	if err != nil {
		return 0, fmt.Errorf("insert client: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("client insert id: %w", err)
	}

	slog.InfoContext(ctx, "Client created", "id", id, "name", c.Name)
	return id, nil
}

// GetClient returns core.ErrNotFound for an unknown id. Dangling references
// from quotes/invoices/contracts resolve through this same path, so callers
// must treat the absence as non-fatal.
func (r *SQLiteRepository) GetClient(ctx context.Context, id int64) (*core.Client, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, tax_id, address, postal_code, city, email, phone, contact_name, created_at
		FROM clients WHERE id = ?
	`, id)

	c, err := scanClient(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListClients(ctx context.Context) ([]core.Client, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, tax_id, address, postal_code, city, email, phone, contact_name, created_at
		FROM clients ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []core.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

// ClientUpdate enumerates the mutable client fields; nil means unchanged.
// Identity (id) is immutable and has no field here.
type ClientUpdate struct {
	Name        *string
	TaxID       *string
	Address     *string
	PostalCode  *string
	City        *string
	Email       *string
	Phone       *string
	ContactName *string
}

// UpdateClient applies the non-nil fields and reports whether a row matched.
func (r *SQLiteRepository) UpdateClient(ctx context.Context, id int64, upd ClientUpdate) (bool, error) {
	set := make([]string, 0, 8)
	args := make([]any, 0, 9)

	add := func(col string, v *string) {
		if v != nil {
			set = append(set, col+" = ?")
			args = append(args, *v)
		}
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return false, core.ErrEmptyName
	}
	add("name", upd.Name)
	add("tax_id", upd.TaxID)
	add("address", upd.Address)
	add("postal_code", upd.PostalCode)
	add("city", upd.City)
	add("email", upd.Email)
	add("phone", upd.Phone)
	add("contact_name", upd.ContactName)

	if len(set) == 0 {
		return false, nil
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, "UPDATE clients SET "+strings.Join(set, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return false, fmt.Errorf("update client: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update client rows: %w", err)
	}
	return n > 0, nil
}

// DeleteClient hard deletes the row. Dependent quotes, invoices and
// contracts are left in place; their client_id then dangles on purpose.
func (r *SQLiteRepository) DeleteClient(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete client: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete client rows: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Client deleted", "id", id)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*core.Client, error) {
	var c core.Client
	var createdAt sql.NullTime
	err := row.Scan(&c.ID, &c.Name, &c.TaxID, &c.Address, &c.PostalCode, &c.City,
		&c.Email, &c.Phone, &c.ContactName, &createdAt)
	if err != nil {
		return nil, err
	}
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	return &c, nil
}
