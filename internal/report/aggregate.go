// Package report computes the ledger's read-side views: filtered
// totals, trailing series, burndown curves, budget health and savings
// projections. Every function is pure over the collections it is
// given; callers inject the clock where a view is relative to "now".
package report

import (
	"sort"
	"time"

	"contas/internal/core"
)

// Wildcard matches every value of a filter dimension. An empty
// dimension behaves the same way.
const Wildcard = "all"

// Filter selects transactions by exact match on each set dimension.
type Filter struct {
	Competency    string
	Type          string
	Category      string
	Person        string
	PaymentMethod string
}

func matches(want, got string) bool {
	return want == "" || want == Wildcard || want == got
}

// Apply returns the transactions passing every set dimension.
func (f Filter) Apply(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !matches(f.Competency, string(tx.Competency)) {
			continue
		}
		if !matches(f.Type, string(tx.Type)) {
			continue
		}
		if !matches(f.Category, tx.Category) {
			continue
		}
		if !matches(f.Person, string(tx.Person)) {
			continue
		}
		if !matches(f.PaymentMethod, string(tx.PaymentMethod)) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// Totals reduces a transaction sequence to expense and income sums.
// Balance is income minus expenses and may be negative.
func Totals(txs []core.Transaction) core.Totals {
	var t core.Totals
	for _, tx := range txs {
		switch tx.Type {
		case core.Expense:
			t.Expenses = t.Expenses.Add(tx.Value)
		case core.Income:
			t.Income = t.Income.Add(tx.Value)
		}
	}
	t.Balance = t.Income.Sub(t.Expenses)
	return t
}

// SumByCategory sums expenses per category. Income records are
// ignored.
func SumByCategory(txs []core.Transaction) map[string]core.Money {
	out := make(map[string]core.Money)
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		out[tx.Category] = out[tx.Category].Add(tx.Value)
	}
	return out
}

// SumByPerson sums expenses per person. Income records are ignored.
func SumByPerson(txs []core.Transaction) map[core.Person]core.Money {
	out := make(map[core.Person]core.Money)
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		out[tx.Person] = out[tx.Person].Add(tx.Value)
	}
	return out
}

// HistoricalSeries builds the trailing monthly series ending at the
// month of now, oldest first. Months without activity still appear
// with zero values.
func HistoricalSeries(txs []core.Transaction, budgets []core.Budget, now time.Time, monthsBack int) []core.HistoricalPoint {
	months := core.LastCompetencies(now, monthsBack)

	type acc struct {
		expenses core.Money
		income   core.Money
		budget   core.Money
	}
	byMonth := make(map[core.Competency]*acc, len(months))
	for _, m := range months {
		byMonth[m] = &acc{}
	}

	for _, tx := range txs {
		a, ok := byMonth[tx.Competency]
		if !ok {
			continue
		}
		switch tx.Type {
		case core.Expense:
			a.expenses = a.expenses.Add(tx.Value)
		case core.Income:
			a.income = a.income.Add(tx.Value)
		}
	}
	for _, b := range budgets {
		if a, ok := byMonth[b.Competency]; ok {
			a.budget = a.budget.Add(b.Amount)
		}
	}

	out := make([]core.HistoricalPoint, 0, len(months))
	for _, m := range months {
		a := byMonth[m]
		out = append(out, core.HistoricalPoint{
			Competency: m,
			Expenses:   a.expenses,
			Income:     a.income,
			Budget:     a.budget,
			Balance:    a.income.Sub(a.expenses),
		})
	}
	return out
}

// Burndown builds the cumulative expense curve for one competency
// against its total allocated budget. The curve is empty when the
// competency has no expenses or no budget.
func Burndown(txs []core.Transaction, budgets []core.Budget, competency core.Competency) []core.BurndownPoint {
	var budget core.Money
	for _, b := range budgets {
		if b.Competency == competency {
			budget = budget.Add(b.Amount)
		}
	}
	if budget.Cents == 0 {
		return nil
	}

	var expenses []core.Transaction
	for _, tx := range txs {
		if tx.Competency == competency && tx.Type == core.Expense {
			expenses = append(expenses, tx)
		}
	}
	if len(expenses) == 0 {
		return nil
	}
	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].Date.Before(expenses[j].Date.Time)
	})

	out := make([]core.BurndownPoint, 0, len(expenses))
	var spent core.Money
	for _, tx := range expenses {
		spent = spent.Add(tx.Value)
		out = append(out, core.BurndownPoint{
			Day:       tx.Date.Day(),
			Spent:     spent,
			Budget:    budget,
			Remaining: budget.Sub(spent),
		})
	}
	return out
}

// CategoryTrend builds per-category expense sums for the trailing
// months ending at the month of now, oldest first. With an empty
// category list every category seen in the window is reported.
func CategoryTrend(txs []core.Transaction, now time.Time, monthsBack int, categories []string) []core.TrendPoint {
	months := core.LastCompetencies(now, monthsBack)
	inWindow := make(map[core.Competency]int, len(months))
	for i, m := range months {
		inWindow[m] = i
	}

	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}

	out := make([]core.TrendPoint, len(months))
	for i, m := range months {
		out[i] = core.TrendPoint{Competency: m, ByCategory: make(map[string]core.Money)}
	}
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		i, ok := inWindow[tx.Competency]
		if !ok {
			continue
		}
		if len(wanted) > 0 && !wanted[tx.Category] {
			continue
		}
		out[i].ByCategory[tx.Category] = out[i].ByCategory[tx.Category].Add(tx.Value)
	}
	return out
}
