package report

import (
	"math"
	"time"

	"contas/internal/core"
)

// savingsWindow is the number of trailing months the savings velocity
// is averaged over.
const savingsWindow = 6

// daysPerMonth converts a deadline distance in days into whole months
// for projection purposes.
const daysPerMonth = 30

// SavingsTrend sums deposits across all goals per calendar month for
// the trailing window ending at the month of now, oldest first. Months
// without deposits appear with a zero sum.
func SavingsTrend(goals []core.SavingsGoal, now time.Time) []core.SavingsTrendPoint {
	months := core.LastCompetencies(now, savingsWindow)
	byMonth := make(map[core.Competency]core.Money, len(months))
	for _, m := range months {
		byMonth[m] = core.Money{}
	}

	for _, g := range goals {
		for _, dep := range g.Deposits {
			m := core.CompetencyOf(dep.Date.Time)
			if _, ok := byMonth[m]; !ok {
				continue
			}
			byMonth[m] = byMonth[m].Add(dep.Amount)
		}
	}

	out := make([]core.SavingsTrendPoint, 0, len(months))
	for _, m := range months {
		out = append(out, core.SavingsTrendPoint{Competency: m, Saved: byMonth[m]})
	}
	return out
}

// AvgMonthlySavings is the mean monthly deposit sum over the trailing
// window. Months without deposits pull the mean down.
func AvgMonthlySavings(goals []core.SavingsGoal, now time.Time) core.Money {
	trend := SavingsTrend(goals, now)
	var total core.Money
	for _, p := range trend {
		total = total.Add(p.Saved)
	}
	return core.Money{Cents: total.Cents / int64(len(trend))}
}

// Project estimates the completion outlook for one goal at the current
// savings velocity.
//
// A goal at or past its target is completed. Without a deadline no
// estimate is made. Otherwise the months needed at the current
// velocity are compared against the months left until the deadline; a
// goal that cannot make it reports the monthly amount that would.
func Project(goal core.SavingsGoal, goals []core.SavingsGoal, now time.Time) core.SavingsProjection {
	if goal.CurrentAmount.Cents >= goal.TargetAmount.Cents {
		return core.SavingsProjection{Status: core.SavingsCompleted}
	}
	if goal.Deadline.IsEmpty() {
		return core.SavingsProjection{Status: core.SavingsNoDeadline}
	}

	remaining := goal.TargetAmount.Sub(goal.CurrentAmount)
	monthsToDeadline := int(math.Ceil(goal.Deadline.Sub(now).Hours() / 24 / daysPerMonth))
	if monthsToDeadline < 1 {
		monthsToDeadline = 1
	}

	neededPerMonth := core.Money{Cents: ceilDiv(remaining.Cents, int64(monthsToDeadline))}

	velocity := AvgMonthlySavings(goals, now)
	if velocity.Cents == 0 {
		// Nothing saved in the window; no finish estimate exists.
		return core.SavingsProjection{
			Status:         core.SavingsBehind,
			NeededPerMonth: neededPerMonth,
		}
	}

	if velocity.Cents >= neededPerMonth.Cents {
		monthsNeeded := int(ceilDiv(remaining.Cents, velocity.Cents))
		return core.SavingsProjection{Status: core.SavingsOnTrack, Months: &monthsNeeded}
	}

	// Behind keeps the deadline itself as the horizon and reports the
	// catch-up rate that would still make it.
	return core.SavingsProjection{
		Status:         core.SavingsBehind,
		Months:         &monthsToDeadline,
		NeededPerMonth: neededPerMonth,
	}
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
