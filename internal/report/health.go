package report

import (
	"contas/internal/core"
)

// Health label thresholds over mean budget utilization, in percent.
// The first matching bound wins.
const (
	excellentBound = 70
	goodBound      = 90
	attentionBound = 100
)

// BudgetReports joins each budget of a competency with its actual
// spend: expense records matching the budget's competency, category
// and person.
func BudgetReports(txs []core.Transaction, budgets []core.Budget, competency core.Competency) []core.BudgetReport {
	var out []core.BudgetReport
	for _, b := range budgets {
		if b.Competency != competency {
			continue
		}
		var spent core.Money
		for _, tx := range txs {
			if tx.Type != core.Expense || tx.Competency != b.Competency {
				continue
			}
			if tx.Category != b.Category || tx.Person != b.Person {
				continue
			}
			spent = spent.Add(tx.Value)
		}
		report := core.BudgetReport{
			Budget:     b,
			Spent:      spent,
			Difference: b.Amount.Sub(spent),
		}
		if b.Amount.Cents > 0 {
			report.Percentage = float64(spent.Cents) / float64(b.Amount.Cents) * 100
		}
		out = append(out, report)
	}
	return out
}

// HealthScore reduces a competency's budget reports to the mean
// utilization percentage and its label. A competency without budgets
// has no score.
func HealthScore(txs []core.Transaction, budgets []core.Budget, competency core.Competency) core.HealthScore {
	reports := BudgetReports(txs, budgets, competency)
	if len(reports) == 0 {
		return core.HealthScore{Label: core.HealthNoData}
	}

	var sum float64
	for _, r := range reports {
		sum += r.Percentage
	}
	score := sum / float64(len(reports))

	label := core.HealthCritical
	switch {
	case score <= excellentBound:
		label = core.HealthExcellent
	case score <= goodBound:
		label = core.HealthGood
	case score <= attentionBound:
		label = core.HealthAttention
	}
	return core.HealthScore{Score: score, Label: label}
}
