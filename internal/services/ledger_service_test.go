package services

import (
	"context"
	"errors"
	"testing"

	"contas/internal/core"
	"contas/internal/kv/memory"
	"contas/internal/storage"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	repo := storage.NewRepository(memory.New())
	if err := repo.Load(context.Background()); err != nil {
		t.Fatalf("load repository: %v", err)
	}
	l := NewLedger(repo, nil)
	if err := l.AddCategory(context.Background(), "groceries"); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return l
}

func draft(value int64, installments int) core.PurchaseDraft {
	return core.PurchaseDraft{
		Date:          core.NewDate(2025, 3, 15),
		Type:          core.Expense,
		PaymentMethod: core.Debit,
		Person:        core.PersonPrimary,
		Category:      "groceries",
		Description:   "weekly shop",
		Value:         core.Money{Cents: value},
		Installments:  installments,
	}
}

func TestLedger_CreateTransaction(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	records, err := l.CreateTransaction(ctx, draft(4500, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if got := l.Transactions(); len(got) != 1 || got[0].ID != records[0].ID {
		t.Errorf("ledger does not contain the created record")
	}
}

func TestLedger_CreateTransaction_UnknownCategory(t *testing.T) {
	l := newTestLedger(t)

	d := draft(4500, 1)
	d.Category = "vacations"
	if _, err := l.CreateTransaction(context.Background(), d); !errors.Is(err, core.ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
	if len(l.Transactions()) != 0 {
		t.Errorf("ledger should stay empty after a rejected create")
	}
}

func TestLedger_CreateTransaction_ClosedMonthBlocksWholeGroup(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	// Closing a later month blocks an installment purchase whose tail
	// lands in it.
	if err := l.CloseMonth(ctx, core.Competency("05/2025")); err != nil {
		t.Fatalf("close month: %v", err)
	}

	if _, err := l.CreateTransaction(ctx, draft(30000, 3)); !errors.Is(err, core.ErrMonthClosed) {
		t.Fatalf("expected ErrMonthClosed, got %v", err)
	}
	if len(l.Transactions()) != 0 {
		t.Errorf("no partial group may be recorded")
	}
}

func TestLedger_DeleteTransaction(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	records, err := l.CreateTransaction(ctx, draft(4500, 1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := l.DeleteTransaction(ctx, records[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(l.Transactions()) != 0 {
		t.Errorf("record should be gone")
	}

	if err := l.DeleteTransaction(ctx, records[0].ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestLedger_DeleteTransaction_ClosedMonth(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	records, err := l.CreateTransaction(ctx, draft(4500, 1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := l.CloseMonth(ctx, records[0].Competency); err != nil {
		t.Fatalf("close month: %v", err)
	}

	if err := l.DeleteTransaction(ctx, records[0].ID); !errors.Is(err, core.ErrMonthClosed) {
		t.Errorf("expected ErrMonthClosed, got %v", err)
	}
	if len(l.Transactions()) != 1 {
		t.Errorf("record must survive a rejected delete")
	}

	if err := l.ReopenMonth(ctx, records[0].Competency); err != nil {
		t.Fatalf("reopen month: %v", err)
	}
	if err := l.DeleteTransaction(ctx, records[0].ID); err != nil {
		t.Errorf("delete after reopen: %v", err)
	}
}

func TestLedger_InstallmentGroup(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	d := draft(30000, 3)
	d.PaymentMethod = core.Credit
	d.CreditCardID = "card-1"
	records, err := l.CreateTransaction(ctx, d)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	groupID := records[0].InstallmentGroupID
	if groupID == "" {
		t.Fatal("expected a group id on a multi-installment purchase")
	}

	members := l.ListInstallments(groupID)
	if len(members) != 3 {
		t.Fatalf("expected 3 group members, got %d", len(members))
	}
	for i, tx := range members {
		if tx.InstallmentNumber != i+1 {
			t.Errorf("member %d: installment number %d", i, tx.InstallmentNumber)
		}
	}

	if err := l.DeleteInstallmentGroup(ctx, groupID); err != nil {
		t.Fatalf("delete group: %v", err)
	}
	if len(l.Transactions()) != 0 {
		t.Errorf("group delete must remove every member")
	}
	if err := l.DeleteInstallmentGroup(ctx, groupID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLedger_DeleteInstallmentGroup_ClosedMember(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	d := draft(30000, 3)
	d.PaymentMethod = core.Credit
	d.CreditCardID = "card-1"
	records, err := l.CreateTransaction(ctx, d)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Middle installment's month closed: the whole group is frozen.
	if err := l.CloseMonth(ctx, records[1].Competency); err != nil {
		t.Fatalf("close month: %v", err)
	}
	if err := l.DeleteInstallmentGroup(ctx, records[0].InstallmentGroupID); !errors.Is(err, core.ErrMonthClosed) {
		t.Errorf("expected ErrMonthClosed, got %v", err)
	}
	if len(l.Transactions()) != 3 {
		t.Errorf("group must be intact after a rejected delete")
	}
}

func TestLedger_MonthClosure(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	c := core.Competency("03/2025")

	if l.IsClosed(c) {
		t.Fatal("fresh competency should be open")
	}
	if err := l.CloseMonth(ctx, c); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !l.IsClosed(c) {
		t.Error("competency should now be closed")
	}
	if err := l.CloseMonth(ctx, c); !errors.Is(err, core.ErrMonthAlreadyClosed) {
		t.Errorf("expected ErrMonthAlreadyClosed, got %v", err)
	}

	if err := l.ReopenMonth(ctx, c); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if l.IsClosed(c) {
		t.Error("competency should be open again")
	}
	// Reopening an open competency is a no-op.
	if err := l.ReopenMonth(ctx, c); err != nil {
		t.Errorf("reopen of open competency: %v", err)
	}

	if err := l.CloseMonth(ctx, core.Competency("13/2025")); !errors.Is(err, core.ErrInvalidCompetency) {
		t.Errorf("expected ErrInvalidCompetency, got %v", err)
	}
}

func TestLedger_ClosedMonths_Sorted(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	for _, c := range []core.Competency{"11/2025", "02/2025", "07/2024"} {
		if err := l.CloseMonth(ctx, c); err != nil {
			t.Fatalf("close %s: %v", c, err)
		}
	}
	got := l.ClosedMonths()
	want := []core.Competency{"07/2024", "02/2025", "11/2025"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLedger_BudgetLifecycle(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	b, err := l.AddBudget(ctx, core.Budget{
		Competency: "03/2025",
		Category:   "groceries",
		Person:     core.PersonShared,
		Amount:     core.Money{Cents: 50000},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if b.ID == "" {
		t.Error("budget should get an id")
	}

	b.Amount = core.Money{Cents: 60000}
	updated, err := l.UpdateBudget(ctx, b.ID, b)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Amount.Cents != 60000 {
		t.Errorf("amount not updated: %d", updated.Amount.Cents)
	}

	if _, err := l.UpdateBudget(ctx, "missing", b); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := l.DeleteBudget(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(l.Budgets()) != 0 {
		t.Error("budget should be gone")
	}
}

func TestLedger_Categories(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	if err := l.AddCategory(ctx, "transport"); err != nil {
		t.Fatalf("add: %v", err)
	}
	// Duplicate add is a no-op.
	if err := l.AddCategory(ctx, "transport"); err != nil {
		t.Fatalf("duplicate add: %v", err)
	}
	if got := len(l.Categories()); got != 2 {
		t.Fatalf("expected 2 categories, got %d", got)
	}

	if err := l.AddCategory(ctx, ""); !errors.Is(err, core.ErrEmptyCategory) {
		t.Errorf("expected ErrEmptyCategory, got %v", err)
	}

	if err := l.DeleteCategory(ctx, "transport"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := l.DeleteCategory(ctx, "transport"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLedger_CreditCards(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()

	card, err := l.AddCreditCard(ctx, core.CreditCard{
		Name:       "Main",
		Owner:      core.PersonPrimary,
		ClosingDay: 28,
		DueDay:     5,
		Limit:      core.Money{Cents: 300000},
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	card.Name = "Renamed"
	if _, err := l.UpdateCreditCard(ctx, card.ID, card); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := l.CreditCards(); got[0].Name != "Renamed" {
		t.Errorf("name not updated: %s", got[0].Name)
	}

	if err := l.DeleteCreditCard(ctx, card.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(l.CreditCards()) != 0 {
		t.Error("card should be gone")
	}
}
