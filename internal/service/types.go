package service

import (
	"time"

	"github.com/vanshika/creditguardian/internal/display"
	"github.com/vanshika/creditguardian/internal/domain"
	"github.com/vanshika/creditguardian/internal/simulator"
)

// CardInput is the inbound payload for adding or seeding a credit card.
type CardInput struct {
	ID      string
	Name    string
	Balance float64
	Limit   float64
	APR     float64
}

// NotificationInput seeds a dashboard notification.
type NotificationInput struct {
	ID        string
	Title     string
	Message   string
	Kind      string
	Read      bool
	CreatedAt *time.Time
}

// DepositInput seeds an income deposit.
type DepositInput struct {
	ID          string
	Source      string
	Amount      float64
	DepositedAt *time.Time
}

// AccountInput is a full account as loaded from a seed dataset.
type AccountInput struct {
	ID            string
	FullName      string
	Email         string
	CreditScore   int
	Cards         []CardInput
	Notifications []NotificationInput
	Deposits      []DepositInput
	CreatedAt     *time.Time
	UpdatedAt     *time.Time
}

// Dashboard is the aggregate view shown after login.
type Dashboard struct {
	User                domain.User
	Profile             domain.CreditProfile
	Cards               []domain.Card
	UnreadNotifications int
	DepositsTotal       float64
}

// ProjectionResult carries the projected score and the effects that produced it.
type ProjectionResult struct {
	Score     domain.ProjectedScore
	Breakdown []simulator.Effect
}

// RecommendationResult pairs a recommendation with its displayed gain range.
type RecommendationResult struct {
	Recommendation domain.Recommendation
	Gain           display.Range
}

// PayoffRequest selects a strategy ("avalanche", "snowball" or "compare") and budget.
// Debts default to the user's cards when empty.
type PayoffRequest struct {
	Strategy      string
	MonthlyBudget float64
	Debts         []domain.Debt
}

// PayoffResult holds either a single plan or a comparison.
type PayoffResult struct {
	Plan       *domain.PayoffPlan
	Comparison *domain.PayoffComparison
}
