package domain

import "time"

// SavedSimulation is the snapshot persisted by the "save simulation" action.
type SavedSimulation struct {
	ID                  string
	UserID              string
	BaseScore           int
	ProjectedScore      int
	PayDownDebt         float64
	OpensNewCard        bool
	OnTimePaymentMonths int
	MissedPayments      int
	ClosesOldestAccount bool
	CreatedAt           time.Time
}

// Action rebuilds the inputs that produced the snapshot.
func (s SavedSimulation) Action() SimulationAction {
	return SimulationAction{
		PayDownDebt:         s.PayDownDebt,
		OpensNewCard:        s.OpensNewCard,
		OnTimePaymentMonths: s.OnTimePaymentMonths,
		MissedPayments:      s.MissedPayments,
		ClosesOldestAccount: s.ClosesOldestAccount,
	}
}
