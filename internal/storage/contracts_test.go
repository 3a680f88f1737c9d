package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"gestion/internal/core"
)

func TestAddContractByKind(t *testing.T) {
	repo := newTestRepo(t)
	setClock(repo, day(2024, time.March, 15))
	ctx := context.Background()
	clientID := addTestClient(t, repo, "Acme")

	t.Run("time and materials", func(t *testing.T) {
		duration := 60
		c, err := repo.AddContract(ctx, NewContract{
			ClientID:     clientID,
			Kind:         core.KindTimeAndMaterials,
			DailyRate:    dec("450"),
			DurationDays: &duration,
			FilePath:     "contrats/acme-regie.pdf",
		})
		if err != nil {
			t.Fatalf("AddContract: %v", err)
		}
		if c.Number != "CONT-2024-001" {
			t.Errorf("number = %q", c.Number)
		}
		if !c.DailyRate.Equal(dec("450")) || !c.FlatAmount.IsZero() {
			t.Errorf("rate/flat = %s/%s", c.DailyRate, c.FlatAmount)
		}
		if c.DurationDays == nil || *c.DurationDays != 60 {
			t.Errorf("duration_days = %v", c.DurationDays)
		}
		if c.Status != core.ContractDraft {
			t.Errorf("status = %q", c.Status)
		}
	})

	t.Run("fixed price zeroes the rate", func(t *testing.T) {
		c, err := repo.AddContract(ctx, NewContract{
			ClientID:   clientID,
			Kind:       core.KindFixedPrice,
			DailyRate:  dec("450"), // stale input, must be dropped
			FlatAmount: dec("12000"),
		})
		if err != nil {
			t.Fatalf("AddContract: %v", err)
		}
		if !c.DailyRate.IsZero() || !c.FlatAmount.Equal(dec("12000")) {
			t.Errorf("rate/flat = %s/%s", c.DailyRate, c.FlatAmount)
		}
	})

	t.Run("missing required amount", func(t *testing.T) {
		_, err := repo.AddContract(ctx, NewContract{
			ClientID: clientID, Kind: core.KindShortMission, DailyRate: decimal.Zero,
		})
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("err = %v, want ErrInvalidAmount", err)
		}
		_, err = repo.AddContract(ctx, NewContract{
			ClientID: clientID, Kind: core.KindFixedPrice, FlatAmount: decimal.Zero,
		})
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("err = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := repo.AddContract(ctx, NewContract{
			ClientID: clientID, Kind: core.ContractKind("retainer"), DailyRate: dec("450"),
		})
		if !errors.Is(err, core.ErrInvalidContractKind) {
			t.Errorf("err = %v, want ErrInvalidContractKind", err)
		}
	})
}

func TestListContractsKindFilter(t *testing.T) {
	repo := newTestRepo(t)
	setClock(repo, day(2024, time.March, 15))
	ctx := context.Background()
	clientID := addTestClient(t, repo, "Acme")

	repo.AddContract(ctx, NewContract{
		ClientID: clientID, Kind: core.KindTimeAndMaterials, DailyRate: dec("450"),
	})
	fixed, _ := repo.AddContract(ctx, NewContract{
		ClientID: clientID, Kind: core.KindFixedPrice, FlatAmount: dec("9000"),
	})

	kind := core.KindFixedPrice
	got, err := repo.ListContracts(ctx, ContractFilter{Kind: &kind})
	if err != nil {
		t.Fatalf("ListContracts: %v", err)
	}
	if len(got) != 1 || got[0].ID != fixed.ID {
		t.Errorf("kind filter returned %d contracts", len(got))
	}
}

func TestUpdateContractStatus(t *testing.T) {
	repo := newTestRepo(t)
	setClock(repo, day(2024, time.March, 15))
	ctx := context.Background()
	clientID := addTestClient(t, repo, "Acme")

	c, err := repo.AddContract(ctx, NewContract{
		ClientID: clientID, Kind: core.KindTimeAndMaterials, DailyRate: dec("450"),
	})
	if err != nil {
		t.Fatalf("AddContract: %v", err)
	}

	if ok, err := repo.UpdateContractStatus(ctx, c.ID, core.ContractSigned); err != nil || !ok {
		t.Fatalf("UpdateContractStatus = %v, %v", ok, err)
	}
	got, _ := repo.GetContract(ctx, c.ID)
	if got.Status != core.ContractSigned {
		t.Errorf("status = %q", got.Status)
	}

	if _, err := repo.UpdateContractStatus(ctx, c.ID, core.ContractStatus("terminated")); !errors.Is(err, core.ErrInvalidStatus) {
		t.Errorf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestDeleteContract(t *testing.T) {
	repo := newTestRepo(t)
	setClock(repo, day(2024, time.March, 15))
	ctx := context.Background()
	clientID := addTestClient(t, repo, "Acme")

	c, _ := repo.AddContract(ctx, NewContract{
		ClientID: clientID, Kind: core.KindShortMission, DailyRate: dec("500"),
	})

	if ok, err := repo.DeleteContract(ctx, c.ID); err != nil || !ok {
		t.Fatalf("DeleteContract = %v, %v", ok, err)
	}
	if _, err := repo.GetContract(ctx, c.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
