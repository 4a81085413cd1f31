package domain

// PayoffStrategy orders debts for the payoff calculator.
type PayoffStrategy string

const (
	StrategyAvalanche PayoffStrategy = "avalanche"
	StrategySnowball  PayoffStrategy = "snowball"
)

// Debt is one balance fed to the payoff calculator.
type Debt struct {
	Name           string
	Balance        float64
	APR            float64
	MinimumPayment float64
}

// DebtPayment is what a single debt received in one month.
type DebtPayment struct {
	DebtName         string
	Payment          float64
	Interest         float64
	RemainingBalance float64
}

// PayoffMonth is one row of the payoff schedule.
type PayoffMonth struct {
	Month     int
	Payments  []DebtPayment
	TotalPaid float64
}

// PayoffPlan is the result of simulating a strategy to zero balance.
type PayoffPlan struct {
	Strategy      PayoffStrategy
	Order         []string
	Months        int
	TotalDebt     float64
	TotalInterest float64
	TotalPaid     float64
	Schedule      []PayoffMonth
}

// PayoffComparison holds both strategies side by side.
type PayoffComparison struct {
	Avalanche     PayoffPlan
	Snowball      PayoffPlan
	InterestSaved float64
	MonthsSaved   int
}
