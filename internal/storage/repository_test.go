package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"contas/internal/core"
	"contas/internal/kv/memory"
)

func TestRepositoryLoadEmptyStore(t *testing.T) {
	repo := NewRepository(memory.New())
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := repo.Transactions(); len(got) != 0 {
		t.Fatalf("expected empty transactions, got %d", len(got))
	}
	if got := repo.Counts(); got != (Counts{}) {
		t.Fatalf("expected zero counts, got %+v", got)
	}
}

func TestRepositoryRoundTrip(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	repo := NewRepository(store)
	if err := repo.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	tx := core.Transaction{
		ID:                "t1",
		Date:              core.NewDate(2025, 3, 10),
		Type:              core.Expense,
		PaymentMethod:     core.Cash,
		Person:            core.PersonPrimary,
		Category:          "Food",
		Description:       "lunch",
		Value:             core.Money{Cents: 2500},
		Competency:        "03/2025",
		InstallmentNumber: 1,
		TotalInstallments: 1,
	}
	if err := repo.ReplaceTransactions(ctx, []core.Transaction{tx}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := repo.ReplaceCategories(ctx, []string{"Food", "Housing"}); err != nil {
		t.Fatalf("replace categories: %v", err)
	}
	if err := repo.ReplaceClosedMonths(ctx, []core.Competency{"01/2025"}); err != nil {
		t.Fatalf("replace closed months: %v", err)
	}

	// A fresh repository over the same store sees the snapshots.
	repo2 := NewRepository(store)
	if err := repo2.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	txs := repo2.Transactions()
	if len(txs) != 1 || txs[0].ID != "t1" || txs[0].Competency != "03/2025" {
		t.Fatalf("unexpected transactions after reload: %+v", txs)
	}
	if txs[0].Value.Cents != 2500 {
		t.Fatalf("value = %d, want 2500", txs[0].Value.Cents)
	}
	if cats := repo2.Categories(); len(cats) != 2 {
		t.Fatalf("categories = %v", cats)
	}
	if closed := repo2.ClosedMonths(); len(closed) != 1 || closed[0] != "01/2025" {
		t.Fatalf("closed months = %v", closed)
	}

	// The stored snapshot is a JSON array under the collection key.
	raw, ok, err := store.Get(ctx, KeyTransactions)
	if err != nil || !ok {
		t.Fatalf("snapshot missing: ok=%v err=%v", ok, err)
	}
	var decoded []core.Transaction
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("snapshot not valid JSON: %v", err)
	}
}

func TestRepositoryReadReturnsCopy(t *testing.T) {
	repo := NewRepository(memory.New())
	ctx := context.Background()
	if err := repo.ReplaceCategories(ctx, []string{"Food"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	cats := repo.Categories()
	cats[0] = "mutated"
	if got := repo.Categories()[0]; got != "Food" {
		t.Fatalf("internal state mutated through accessor: %q", got)
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (failingStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}
func (failingStore) Close() error { return nil }

func TestRepositoryFailedWriteLeavesMemoryUntouched(t *testing.T) {
	repo := NewRepository(failingStore{})
	err := repo.ReplaceCategories(context.Background(), []string{"Food"})
	if err == nil {
		t.Fatalf("expected persistence error")
	}
	if got := repo.Categories(); len(got) != 0 {
		t.Fatalf("memory updated despite failed write: %v", got)
	}
}
