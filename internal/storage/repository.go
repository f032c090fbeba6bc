// Package storage keeps the ledger's entity collections in memory and
// mirrors every mutation to the kv store as a whole-collection JSON
// snapshot. There is no partial persistence: a write replaces the
// entire collection under its key.
//
// A single mutex serializes mutations, so concurrent callers cannot
// interleave read-modify-write cycles on the same collection. Writes
// go to the store first; memory is only updated after the store
// accepts the snapshot, so a failed write leaves the in-memory state
// at the last persisted version.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"contas/internal/core"
	"contas/internal/kv"
)

// Collection keys in the kv store.
const (
	KeyTransactions = "transactions"
	KeyBudgets      = "budgets"
	KeyCreditCards  = "creditCards"
	KeySavingsGoals = "savingsGoals"
	KeyCategories   = "categories"
	KeyClosedMonths = "closedMonths"
	KeyInitialized  = "initialized"
)

type Repository struct {
	mu    sync.Mutex
	store kv.Store

	transactions []core.Transaction
	budgets      []core.Budget
	creditCards  []core.CreditCard
	savingsGoals []core.SavingsGoal
	categories   []string
	closedMonths []core.Competency
}

func NewRepository(store kv.Store) *Repository {
	return &Repository{store: store}
}

// Load fetches every collection from the store. Absent keys yield
// empty collections. The six reads are independent and run
// concurrently.
func (r *Repository) Load(ctx context.Context) error {
	var (
		txs    []core.Transaction
		buds   []core.Budget
		cards  []core.CreditCard
		goals  []core.SavingsGoal
		cats   []string
		closed []core.Competency
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { txs, err = loadCollection[core.Transaction](gctx, r.store, KeyTransactions); return })
	g.Go(func() (err error) { buds, err = loadCollection[core.Budget](gctx, r.store, KeyBudgets); return })
	g.Go(func() (err error) { cards, err = loadCollection[core.CreditCard](gctx, r.store, KeyCreditCards); return })
	g.Go(func() (err error) { goals, err = loadCollection[core.SavingsGoal](gctx, r.store, KeySavingsGoals); return })
	g.Go(func() (err error) { cats, err = loadCollection[string](gctx, r.store, KeyCategories); return })
	g.Go(func() (err error) { closed, err = loadCollection[core.Competency](gctx, r.store, KeyClosedMonths); return })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load collections: %w", err)
	}

	r.mu.Lock()
	r.transactions = txs
	r.budgets = buds
	r.creditCards = cards
	r.savingsGoals = goals
	r.categories = cats
	r.closedMonths = closed
	r.mu.Unlock()

	slog.InfoContext(ctx, "Collections loaded",
		"transactions", len(txs),
		"budgets", len(buds),
		"credit_cards", len(cards),
		"savings_goals", len(goals),
		"categories", len(cats),
		"closed_months", len(closed))

	return r.markInitialized(ctx)
}

func loadCollection[T any](ctx context.Context, store kv.Store, key string) ([]T, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

func (r *Repository) markInitialized(ctx context.Context) error {
	if err := r.store.Set(ctx, KeyInitialized, "true"); err != nil {
		return fmt.Errorf("persist %s: %w", KeyInitialized, err)
	}
	return nil
}

// persist writes one collection snapshot. Called with r.mu held.
func persist[T any](ctx context.Context, store kv.Store, key string, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// Transactions returns a copy of the transaction collection.
func (r *Repository) Transactions() []core.Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Transaction(nil), r.transactions...)
}

// ReplaceTransactions persists and installs a new transaction
// collection.
func (r *Repository) ReplaceTransactions(ctx context.Context, txs []core.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := persist(ctx, r.store, KeyTransactions, txs); err != nil {
		return err
	}
	r.transactions = append([]core.Transaction(nil), txs...)
	return nil
}

func (r *Repository) Budgets() []core.Budget {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Budget(nil), r.budgets...)
}

func (r *Repository) ReplaceBudgets(ctx context.Context, buds []core.Budget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := persist(ctx, r.store, KeyBudgets, buds); err != nil {
		return err
	}
	r.budgets = append([]core.Budget(nil), buds...)
	return nil
}

func (r *Repository) CreditCards() []core.CreditCard {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.CreditCard(nil), r.creditCards...)
}

func (r *Repository) ReplaceCreditCards(ctx context.Context, cards []core.CreditCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := persist(ctx, r.store, KeyCreditCards, cards); err != nil {
		return err
	}
	r.creditCards = append([]core.CreditCard(nil), cards...)
	return nil
}

func (r *Repository) SavingsGoals() []core.SavingsGoal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.SavingsGoal(nil), r.savingsGoals...)
}

func (r *Repository) ReplaceSavingsGoals(ctx context.Context, goals []core.SavingsGoal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := persist(ctx, r.store, KeySavingsGoals, goals); err != nil {
		return err
	}
	r.savingsGoals = append([]core.SavingsGoal(nil), goals...)
	return nil
}

func (r *Repository) Categories() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.categories...)
}

func (r *Repository) ReplaceCategories(ctx context.Context, cats []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := persist(ctx, r.store, KeyCategories, cats); err != nil {
		return err
	}
	r.categories = append([]string(nil), cats...)
	return nil
}

func (r *Repository) ClosedMonths() []core.Competency {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Competency(nil), r.closedMonths...)
}

func (r *Repository) ReplaceClosedMonths(ctx context.Context, months []core.Competency) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := persist(ctx, r.store, KeyClosedMonths, months); err != nil {
		return err
	}
	r.closedMonths = append([]core.Competency(nil), months...)
	return nil
}

// Counts reports the size of each collection, for the system stats
// endpoint.
type Counts struct {
	Transactions int `json:"transactions"`
	Budgets      int `json:"budgets"`
	CreditCards  int `json:"creditCards"`
	SavingsGoals int `json:"savingsGoals"`
	Categories   int `json:"categories"`
	ClosedMonths int `json:"closedMonths"`
}

func (r *Repository) Counts() Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Counts{
		Transactions: len(r.transactions),
		Budgets:      len(r.budgets),
		CreditCards:  len(r.creditCards),
		SavingsGoals: len(r.savingsGoals),
		Categories:   len(r.categories),
		ClosedMonths: len(r.closedMonths),
	}
}

func (r *Repository) Close() error {
	return r.store.Close()
}
