package domain

import "math"

const (
	MinCreditScore = 300
	MaxCreditScore = 850

	// MaxAmount caps any single dollar figure accepted from callers.
	MaxAmount = 1e9
)

// ValidAmount reports whether v is a finite dollar figure in [0, MaxAmount].
func ValidAmount(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= MaxAmount
}

// CardBalance is the per-card input to the recommendation engine.
type CardBalance struct {
	Name        string
	Balance     float64
	Limit       float64
	Utilization float64
}

// CreditProfile is the snapshot of a user's credit position used by the simulator.
// Build it with simulator.NewProfile so utilization stays consistent with balances.
type CreditProfile struct {
	CurrentScore       int
	UtilizationOverall float64
	Cards              []CardBalance
}

// SimulationAction describes the what-if inputs of the advanced simulator.
type SimulationAction struct {
	PayDownDebt         float64
	OpensNewCard        bool
	OnTimePaymentMonths int
	MissedPayments      int
	ClosesOldestAccount bool
}

// ProjectedScore pairs a base score with its projection.
type ProjectedScore struct {
	BaseScore      int
	ProjectedScore int
}

// Goal selects the branch of the recommendation engine.
type Goal string

const (
	GoalReduceUtilization Goal = "reduce_utilization"
	GoalPaymentHistory    Goal = "payment_history"
	GoalCreditMix         Goal = "credit_mix"
	GoalDebtPayoff        Goal = "debt_payoff"
)

// Timeframe is the human label attached to a recommendation.
type Timeframe string

const (
	TimeframeWithin30Days Timeframe = "within 30 days"
	TimeframeSixMonths    Timeframe = "6 months"
	TimeframeThreeToSix   Timeframe = "within 3-6 months"
	TimeframeTwoToThree   Timeframe = "2-3 months"
	TimeframeOngoing      Timeframe = "ongoing"
)

// Recommendation is the single structured output of simple-mode simulation.
type Recommendation struct {
	Goal        Goal
	ActionLabel string
	Description string
	PointImpact int
	Timeframe   Timeframe
	Amount      float64
	CardName    string
}
