package report

import (
	"math"
	"testing"

	"contas/internal/core"
)

func budget(competency core.Competency, category string, person core.Person, cents int64) core.Budget {
	return core.Budget{
		ID:         "b-" + category,
		Competency: competency,
		Category:   category,
		Person:     person,
		Amount:     core.Money{Cents: cents},
	}
}

func TestBudgetReports(t *testing.T) {
	txs := []core.Transaction{
		expense("03/2025", "groceries", core.PersonPrimary, 47500, 5),
		expense("03/2025", "groceries", core.PersonPartner, 9999, 6),
		expense("02/2025", "groceries", core.PersonPrimary, 11111, 7),
		income("03/2025", core.PersonPrimary, 500000),
	}
	budgets := []core.Budget{
		budget("03/2025", "groceries", core.PersonPrimary, 50000),
		budget("02/2025", "groceries", core.PersonPrimary, 50000),
	}

	reports := BudgetReports(txs, budgets, "03/2025")
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}

	r := reports[0]
	// Only expenses matching competency, category and person count.
	if r.Spent.Cents != 47500 {
		t.Errorf("spent: got %d, want 47500", r.Spent.Cents)
	}
	if r.Difference.Cents != 2500 {
		t.Errorf("difference: got %d, want 2500", r.Difference.Cents)
	}
	if math.Abs(r.Percentage-95) > 1e-9 {
		t.Errorf("percentage: got %f, want 95", r.Percentage)
	}
}

func TestBudgetReports_ZeroAmount(t *testing.T) {
	budgets := []core.Budget{budget("03/2025", "misc", core.PersonShared, 0)}
	txs := []core.Transaction{expense("03/2025", "misc", core.PersonShared, 100, 1)}

	reports := BudgetReports(txs, budgets, "03/2025")
	if reports[0].Percentage != 0 {
		t.Errorf("zero-amount budget must report 0%%, got %f", reports[0].Percentage)
	}
}

func TestHealthScore_NoData(t *testing.T) {
	got := HealthScore(nil, nil, "03/2025")
	if got.Label != core.HealthNoData {
		t.Errorf("expected no_data, got %s", got.Label)
	}
}

func TestHealthScore_Labels(t *testing.T) {
	// A single 100 000-cent budget makes spent cents read directly as
	// hundredths of a percent.
	budgets := []core.Budget{budget("03/2025", "groceries", core.PersonPrimary, 100000)}

	tests := []struct {
		name  string
		spent int64
		want  core.HealthLabel
	}{
		{"well under", 40000, core.HealthExcellent},
		{"at excellent bound", 70000, core.HealthExcellent},
		{"just over excellent", 70001, core.HealthGood},
		{"at good bound", 90000, core.HealthGood},
		{"just over good", 90001, core.HealthAttention},
		{"at attention bound", 100000, core.HealthAttention},
		{"over budget", 100001, core.HealthCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := []core.Transaction{expense("03/2025", "groceries", core.PersonPrimary, tt.spent, 1)}
			got := HealthScore(txs, budgets, "03/2025")
			if got.Label != tt.want {
				t.Errorf("spent %d: got %s, want %s", tt.spent, got.Label, tt.want)
			}
		})
	}
}

func TestHealthScore_MeanAcrossBudgets(t *testing.T) {
	budgets := []core.Budget{
		budget("03/2025", "groceries", core.PersonPrimary, 100000),
		budget("03/2025", "transport", core.PersonPrimary, 100000),
	}
	txs := []core.Transaction{
		expense("03/2025", "groceries", core.PersonPrimary, 120000, 1), // 120%
		expense("03/2025", "transport", core.PersonPrimary, 40000, 2),  // 40%
	}

	got := HealthScore(txs, budgets, "03/2025")
	if math.Abs(got.Score-80) > 1e-9 {
		t.Errorf("score: got %f, want 80", got.Score)
	}
	if got.Label != core.HealthGood {
		t.Errorf("label: got %s, want good", got.Label)
	}
}
