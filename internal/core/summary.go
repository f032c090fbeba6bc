package core

// Totals is the income/expense reduction of a filtered sequence.
type Totals struct {
	Expenses Money `json:"expenses"`
	Income   Money `json:"income"`
	Balance  Money `json:"balance"`
}

// HistoricalPoint is one month of the trailing series: actuals plus the
// budget allocated for that competency.
type HistoricalPoint struct {
	Competency Competency `json:"competency"`
	Expenses   Money      `json:"expenses"`
	Income     Money      `json:"income"`
	Budget     Money      `json:"budget"`
	Balance    Money      `json:"balance"`
}

// BurndownPoint is one expense on the cumulative spend curve of a
// competency.
type BurndownPoint struct {
	Day       int   `json:"day"`
	Spent     Money `json:"spent"`
	Budget    Money `json:"budget"`
	Remaining Money `json:"remaining"`
}

// TrendPoint carries per-category expense sums for one competency.
type TrendPoint struct {
	Competency Competency       `json:"competency"`
	ByCategory map[string]Money `json:"byCategory"`
}

// BudgetReport is a budget joined with its actual spend.
type BudgetReport struct {
	Budget
	Spent      Money   `json:"spent"`
	Difference Money   `json:"difference"`
	Percentage float64 `json:"percentage"`
}

type HealthLabel string

const (
	HealthNoData    HealthLabel = "no_data"
	HealthExcellent HealthLabel = "excellent"
	HealthGood      HealthLabel = "good"
	HealthAttention HealthLabel = "attention"
	HealthCritical  HealthLabel = "critical"
)

// HealthScore is the mean budget utilization of a competency mapped to
// a label. Score is meaningless when Label is HealthNoData.
type HealthScore struct {
	Score float64     `json:"score"`
	Label HealthLabel `json:"label"`
}

type SavingsStatus string

const (
	SavingsCompleted  SavingsStatus = "completed"
	SavingsNoDeadline SavingsStatus = "no_deadline"
	SavingsOnTrack    SavingsStatus = "on_track"
	SavingsBehind     SavingsStatus = "behind"
)

// SavingsProjection is the completion outlook for one goal. Months is
// nil when no estimate exists (no deadline, or zero savings velocity
// against a remaining balance). NeededPerMonth is only set for goals
// that are behind.
type SavingsProjection struct {
	Status         SavingsStatus `json:"status"`
	Months         *int          `json:"months"`
	NeededPerMonth Money         `json:"neededPerMonth"`
}

// SavingsTrendPoint is the total deposited across all goals in one
// calendar month.
type SavingsTrendPoint struct {
	Competency Competency `json:"competency"`
	Saved      Money      `json:"saved"`
}
