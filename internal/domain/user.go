package domain

import "time"

// User is the dashboard account holder.
type User struct {
	ID          string
	FullName    string
	Email       string
	CreditScore int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Card is a revolving credit line owned by a user. Utilization is derived, never persisted.
type Card struct {
	ID          string
	UserID      string
	Name        string
	Balance     float64
	Limit       float64
	APR         float64
	Utilization float64
}

// NotificationKind classifies dashboard notifications.
type NotificationKind string

const (
	NotificationAlert   NotificationKind = "alert"
	NotificationInfo    NotificationKind = "info"
	NotificationSuccess NotificationKind = "success"
)

// Notification is a dashboard message for a user.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Kind      NotificationKind
	Read      bool
	CreatedAt time.Time
}

// IncomeDeposit records an income payment credited to the user.
type IncomeDeposit struct {
	ID          string
	UserID      string
	Source      string
	Amount      float64
	DepositedAt time.Time
}

// Account aggregates everything stored for one user; used when seeding storage.
type Account struct {
	User          User
	Cards         []Card
	Notifications []Notification
	Deposits      []IncomeDeposit
}
