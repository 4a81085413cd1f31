package simulator

import (
	"fmt"
	"math"

	"github.com/vanshika/creditguardian/internal/domain"
)

const (
	paydownStepDollars   = 400.0
	paydownStepPoints    = 5
	paydownMaxPoints     = 30
	newCardHighScoreCut  = 720
	newCardHighPenalty   = 5
	newCardLowPenalty    = 10
	onTimeMonthPoints    = 5
	onTimeMaxPoints      = 30
	missedPaymentPenalty = 40
	missedMaxPenalty     = 100
	closeOldestPenalty   = 15

	MaxPayDownDebt = 10000.0
	MaxActionCount = 1200
)

// Effect is one labelled contribution to a projected score.
type Effect struct {
	Label  string
	Points int
}

// Project maps a base score and a set of proposed actions to a projected score.
// Every effect is computed from the original inputs; the sum is clamped once to [300, 850].
func Project(baseScore int, action domain.SimulationAction) int {
	total := baseScore
	for _, effect := range Breakdown(baseScore, action) {
		total += effect.Points
	}
	return clampScore(total)
}

// ProjectScore is Project wrapped with its base score.
func ProjectScore(baseScore int, action domain.SimulationAction) domain.ProjectedScore {
	return domain.ProjectedScore{
		BaseScore:      baseScore,
		ProjectedScore: Project(baseScore, action),
	}
}

// Breakdown lists the non-zero effects of action in application order.
func Breakdown(baseScore int, action domain.SimulationAction) []Effect {
	var effects []Effect

	if steps := paydownSteps(action.PayDownDebt); steps != 0 {
		effects = append(effects, Effect{
			Label:  "debt paydown",
			Points: min(steps*paydownStepPoints, paydownMaxPoints),
		})
	}

	if action.OpensNewCard {
		penalty := newCardLowPenalty
		if baseScore > newCardHighScoreCut {
			penalty = newCardHighPenalty
		}
		effects = append(effects, Effect{Label: "new credit card", Points: -penalty})
	}

	if action.OnTimePaymentMonths != 0 {
		effects = append(effects, Effect{
			Label:  "on-time payments",
			Points: min(saturate(action.OnTimePaymentMonths, onTimeMaxPoints)*onTimeMonthPoints, onTimeMaxPoints),
		})
	}

	if action.MissedPayments > 0 {
		effects = append(effects, Effect{
			Label:  "missed payments",
			Points: -min(saturate(action.MissedPayments, missedMaxPenalty)*missedPaymentPenalty, missedMaxPenalty),
		})
	}

	if action.ClosesOldestAccount {
		effects = append(effects, Effect{Label: "closed oldest account", Points: -closeOldestPenalty})
	}

	return effects
}

// paydownSteps counts whole paydown steps, saturating before the int conversion.
func paydownSteps(payDown float64) int {
	if math.IsNaN(payDown) {
		return 0
	}
	payDown = max(-MaxPayDownDebt, min(payDown, MaxPayDownDebt))
	return int(math.Floor(payDown / paydownStepDollars))
}

// saturate bounds a count to [-limit, limit] so multiplying it by a small per-unit weight cannot overflow.
func saturate(n, limit int) int {
	return max(-limit, min(n, limit))
}

// ValidateAction checks the ranges the engine assumes. The engine itself never calls it.
func ValidateAction(baseScore int, action domain.SimulationAction) error {
	switch {
	case baseScore < domain.MinCreditScore || baseScore > domain.MaxCreditScore:
		return fmt.Errorf("%w: base score %d outside [%d, %d]", domain.ErrInvalidInput, baseScore, domain.MinCreditScore, domain.MaxCreditScore)
	case !(action.PayDownDebt >= 0 && action.PayDownDebt <= MaxPayDownDebt):
		return fmt.Errorf("%w: payDownDebt must be between 0 and %.0f", domain.ErrInvalidInput, MaxPayDownDebt)
	case action.OnTimePaymentMonths < 0 || action.OnTimePaymentMonths > MaxActionCount:
		return fmt.Errorf("%w: onTimePaymentMonths must be between 0 and %d", domain.ErrInvalidInput, MaxActionCount)
	case action.MissedPayments < 0 || action.MissedPayments > MaxActionCount:
		return fmt.Errorf("%w: missedPayments must be between 0 and %d", domain.ErrInvalidInput, MaxActionCount)
	}
	return nil
}

func clampScore(score int) int {
	return max(domain.MinCreditScore, min(score, domain.MaxCreditScore))
}
