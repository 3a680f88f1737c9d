package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"gestion/internal/core"
)

// newTestRepo opens a fresh migrated database in a temp directory. Tests pin
// the repository clock with setClock instead of depending on the wall clock.
func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "gestion.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func setClock(r *SQLiteRepository, at time.Time) {
	r.now = func() time.Time { return at }
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func addTestClient(t *testing.T, r *SQLiteRepository, name string) int64 {
	t.Helper()

	id, err := r.AddClient(context.Background(), core.Client{Name: name, City: "Lyon"})
	if err != nil {
		t.Fatalf("add client %q: %v", name, err)
	}
	return id
}
