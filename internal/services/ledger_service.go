// Package services orchestrates the ledger's operations over the
// storage repository and publishes change events for downstream
// consumers.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"contas/internal/amqp"
	"contas/internal/core"
	"contas/internal/storage"
)

// Ledger records transactions, guards closed competencies and manages
// budgets, credit cards and the category set. All mutations are
// whole-collection replaces through the repository.
type Ledger struct {
	repo   *storage.Repository
	events *amqp.Client
	now    func() time.Time
}

func NewLedger(repo *storage.Repository, events *amqp.Client) *Ledger {
	return &Ledger{
		repo:   repo,
		events: events,
		now:    time.Now,
	}
}

// CreateTransaction expands a purchase draft into its final records and
// appends them to the ledger. The draft's category must exist in the
// category set, and every target competency must be open.
func (l *Ledger) CreateTransaction(ctx context.Context, draft core.PurchaseDraft) ([]core.Transaction, error) {
	if !l.categoryExists(draft.Category) {
		return nil, fmt.Errorf("category %q: %w", draft.Category, core.ErrUnknownCategory)
	}

	records, err := core.ExpandPurchase(draft, l.now())
	if err != nil {
		return nil, fmt.Errorf("expand purchase: %w", err)
	}

	closed := l.closedSet()
	for _, tx := range records {
		if closed[tx.Competency] {
			return nil, fmt.Errorf("competency %s: %w", tx.Competency, core.ErrMonthClosed)
		}
	}

	all := append(l.repo.Transactions(), records...)
	if err := l.repo.ReplaceTransactions(ctx, all); err != nil {
		return nil, fmt.Errorf("save transactions: %w", err)
	}

	for _, tx := range records {
		l.publish(ctx, amqp.NewLedgerEvent(amqp.EntityTransaction, amqp.ActionCreated, tx.ID, string(tx.Competency)))
	}

	slog.InfoContext(ctx, "Transactions created",
		"count", len(records),
		"description", draft.Description,
		"amount_cents", draft.Value.Cents,
		"installments", draft.Installments)

	return records, nil
}

// DeleteTransaction removes a single record by id. Records in a closed
// competency cannot be deleted until the month is reopened.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	all := l.repo.Transactions()
	idx := -1
	for i, tx := range all {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}

	victim := all[idx]
	if l.IsClosed(victim.Competency) {
		return fmt.Errorf("competency %s: %w", victim.Competency, core.ErrMonthClosed)
	}

	remaining := append(all[:idx:idx], all[idx+1:]...)
	if err := l.repo.ReplaceTransactions(ctx, remaining); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}

	l.publish(ctx, amqp.NewLedgerEvent(amqp.EntityTransaction, amqp.ActionDeleted, victim.ID, string(victim.Competency)))
	return nil
}

// Transactions returns the full ledger.
func (l *Ledger) Transactions() []core.Transaction {
	return l.repo.Transactions()
}

// ListInstallments returns all records sharing an installment group,
// ordered by installment number.
func (l *Ledger) ListInstallments(groupID string) []core.Transaction {
	var out []core.Transaction
	for _, tx := range l.repo.Transactions() {
		if tx.InstallmentGroupID != "" && tx.InstallmentGroupID == groupID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].InstallmentNumber < out[j].InstallmentNumber
	})
	return out
}

// DeleteInstallmentGroup removes every record of one purchase. The
// delete is refused when any member belongs to a closed competency.
func (l *Ledger) DeleteInstallmentGroup(ctx context.Context, groupID string) error {
	all := l.repo.Transactions()
	closed := l.closedSet()

	found := false
	remaining := make([]core.Transaction, 0, len(all))
	var victims []core.Transaction
	for _, tx := range all {
		if tx.InstallmentGroupID != "" && tx.InstallmentGroupID == groupID {
			found = true
			if closed[tx.Competency] {
				return fmt.Errorf("competency %s: %w", tx.Competency, core.ErrMonthClosed)
			}
			victims = append(victims, tx)
			continue
		}
		remaining = append(remaining, tx)
	}
	if !found {
		return fmt.Errorf("installment group %s: %w", groupID, core.ErrNotFound)
	}

	if err := l.repo.ReplaceTransactions(ctx, remaining); err != nil {
		return fmt.Errorf("save transactions: %w", err)
	}
	for _, tx := range victims {
		l.publish(ctx, amqp.NewLedgerEvent(amqp.EntityTransaction, amqp.ActionDeleted, tx.ID, string(tx.Competency)))
	}
	return nil
}

// CloseMonth marks a competency as closed. Closing an already closed
// competency fails.
func (l *Ledger) CloseMonth(ctx context.Context, c core.Competency) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if l.IsClosed(c) {
		return fmt.Errorf("competency %s: %w", c, core.ErrMonthAlreadyClosed)
	}
	months := append(l.repo.ClosedMonths(), c)
	if err := l.repo.ReplaceClosedMonths(ctx, months); err != nil {
		return fmt.Errorf("save closed months: %w", err)
	}
	l.publish(ctx, amqp.NewLedgerEvent(amqp.EntityMonth, amqp.ActionClosed, "", string(c)))
	slog.InfoContext(ctx, "Competency closed", "competency", c)
	return nil
}

// ReopenMonth moves a competency back to open. Reopening an open
// competency is a no-op.
func (l *Ledger) ReopenMonth(ctx context.Context, c core.Competency) error {
	if err := c.Validate(); err != nil {
		return err
	}
	months := l.repo.ClosedMonths()
	remaining := months[:0:0]
	removed := false
	for _, m := range months {
		if m == c {
			removed = true
			continue
		}
		remaining = append(remaining, m)
	}
	if !removed {
		return nil
	}
	if err := l.repo.ReplaceClosedMonths(ctx, remaining); err != nil {
		return fmt.Errorf("save closed months: %w", err)
	}
	l.publish(ctx, amqp.NewLedgerEvent(amqp.EntityMonth, amqp.ActionReopened, "", string(c)))
	slog.InfoContext(ctx, "Competency reopened", "competency", c)
	return nil
}

// IsClosed reports whether a competency is closed.
func (l *Ledger) IsClosed(c core.Competency) bool {
	return l.closedSet()[c]
}

// ClosedMonths returns the closed competencies, sorted.
func (l *Ledger) ClosedMonths() []core.Competency {
	months := l.repo.ClosedMonths()
	sort.Slice(months, func(i, j int) bool {
		return months[i].Time().Before(months[j].Time())
	})
	return months
}

func (l *Ledger) closedSet() map[core.Competency]bool {
	set := make(map[core.Competency]bool)
	for _, m := range l.repo.ClosedMonths() {
		set[m] = true
	}
	return set
}

// AddBudget appends a new budget. Duplicate (competency, category,
// person) keys are accepted; both count toward allocated totals.
func (l *Ledger) AddBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.ID = uuid.NewString()
	b.CreatedAt = l.now()
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	all := append(l.repo.Budgets(), b)
	if err := l.repo.ReplaceBudgets(ctx, all); err != nil {
		return core.Budget{}, fmt.Errorf("save budgets: %w", err)
	}
	return b, nil
}

// UpdateBudget replaces the mutable fields of an existing budget.
func (l *Ledger) UpdateBudget(ctx context.Context, id string, b core.Budget) (core.Budget, error) {
	all := l.repo.Budgets()
	for i, cur := range all {
		if cur.ID != id {
			continue
		}
		b.ID = cur.ID
		b.CreatedAt = cur.CreatedAt
		if err := b.Validate(); err != nil {
			return core.Budget{}, err
		}
		all[i] = b
		if err := l.repo.ReplaceBudgets(ctx, all); err != nil {
			return core.Budget{}, fmt.Errorf("save budgets: %w", err)
		}
		return b, nil
	}
	return core.Budget{}, fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
}

func (l *Ledger) DeleteBudget(ctx context.Context, id string) error {
	all := l.repo.Budgets()
	for i, cur := range all {
		if cur.ID != id {
			continue
		}
		remaining := append(all[:i:i], all[i+1:]...)
		if err := l.repo.ReplaceBudgets(ctx, remaining); err != nil {
			return fmt.Errorf("save budgets: %w", err)
		}
		return nil
	}
	return fmt.Errorf("budget %s: %w", id, core.ErrNotFound)
}

func (l *Ledger) Budgets() []core.Budget {
	return l.repo.Budgets()
}

// AddCreditCard registers a card.
func (l *Ledger) AddCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = l.now()
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	all := append(l.repo.CreditCards(), c)
	if err := l.repo.ReplaceCreditCards(ctx, all); err != nil {
		return core.CreditCard{}, fmt.Errorf("save credit cards: %w", err)
	}
	return c, nil
}

func (l *Ledger) UpdateCreditCard(ctx context.Context, id string, c core.CreditCard) (core.CreditCard, error) {
	all := l.repo.CreditCards()
	for i, cur := range all {
		if cur.ID != id {
			continue
		}
		c.ID = cur.ID
		c.CreatedAt = cur.CreatedAt
		if err := c.Validate(); err != nil {
			return core.CreditCard{}, err
		}
		all[i] = c
		if err := l.repo.ReplaceCreditCards(ctx, all); err != nil {
			return core.CreditCard{}, fmt.Errorf("save credit cards: %w", err)
		}
		return c, nil
	}
	return core.CreditCard{}, fmt.Errorf("credit card %s: %w", id, core.ErrNotFound)
}

// DeleteCreditCard removes a card. Transactions referencing it keep
// their reference; there is no foreign-key enforcement.
func (l *Ledger) DeleteCreditCard(ctx context.Context, id string) error {
	all := l.repo.CreditCards()
	for i, cur := range all {
		if cur.ID != id {
			continue
		}
		remaining := append(all[:i:i], all[i+1:]...)
		if err := l.repo.ReplaceCreditCards(ctx, remaining); err != nil {
			return fmt.Errorf("save credit cards: %w", err)
		}
		return nil
	}
	return fmt.Errorf("credit card %s: %w", id, core.ErrNotFound)
}

func (l *Ledger) CreditCards() []core.CreditCard {
	return l.repo.CreditCards()
}

// AddCategory adds a name to the category set. Adding an existing name
// is a no-op.
func (l *Ledger) AddCategory(ctx context.Context, name string) error {
	if name == "" {
		return core.ErrEmptyCategory
	}
	if l.categoryExists(name) {
		return nil
	}
	all := append(l.repo.Categories(), name)
	if err := l.repo.ReplaceCategories(ctx, all); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}
	return nil
}

// DeleteCategory removes a name from the active set. Historical
// transactions keep their original category string; the reference is
// soft on purpose.
func (l *Ledger) DeleteCategory(ctx context.Context, name string) error {
	all := l.repo.Categories()
	for i, cur := range all {
		if cur != name {
			continue
		}
		remaining := append(all[:i:i], all[i+1:]...)
		if err := l.repo.ReplaceCategories(ctx, remaining); err != nil {
			return fmt.Errorf("save categories: %w", err)
		}
		return nil
	}
	return fmt.Errorf("category %s: %w", name, core.ErrNotFound)
}

func (l *Ledger) Categories() []string {
	return l.repo.Categories()
}

// Counts exposes collection sizes for the stats endpoint.
func (l *Ledger) Counts() storage.Counts {
	return l.repo.Counts()
}

func (l *Ledger) categoryExists(name string) bool {
	for _, c := range l.repo.Categories() {
		if c == name {
			return true
		}
	}
	return false
}

// publish sends a ledger event when eventing is configured. Event
// failures never fail the operation that produced them.
func (l *Ledger) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if l.events == nil {
		return
	}
	if err := l.events.PublishEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"entity", event.Entity,
			"action", event.Action,
			"entity_id", event.EntityID,
			"error", err)
	}
}
