package simulator

import (
	"errors"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/vanshika/creditguardian/internal/domain"
)

// ErrUnknownGoal is returned for goals outside the four supported categories.
var ErrUnknownGoal = errors.New("unknown goal")

const (
	utilizationThreshold     = 30.0
	cardUtilizationThreshold = 50.0
	targetUtilization        = 0.3
	roundingDollars          = 100.0

	lowScoreThreshold = 700
	debtThreshold     = 2000.0
	payoffShare       = 0.3
	payoffCap         = 3000.0
)

// ParseGoal maps a wire value onto a Goal.
func ParseGoal(value string) (domain.Goal, error) {
	switch goal := domain.Goal(value); goal {
	case domain.GoalReduceUtilization, domain.GoalPaymentHistory, domain.GoalCreditMix, domain.GoalDebtPayoff:
		return goal, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGoal, value)
}

// Recommend derives one targeted recommendation for goal from the profile.
func Recommend(goal domain.Goal, profile domain.CreditProfile) (domain.Recommendation, error) {
	var rec domain.Recommendation
	switch goal {
	case domain.GoalReduceUtilization:
		rec = reduceUtilization(profile)
	case domain.GoalPaymentHistory:
		rec = paymentHistory(profile)
	case domain.GoalCreditMix:
		rec = domain.Recommendation{
			ActionLabel: "Diversify your credit mix",
			Description: "Adding an installment account, such as a small credit-builder loan, broadens the mix of credit on your report.",
			PointImpact: 15,
			Timeframe:   domain.TimeframeThreeToSix,
		}
	case domain.GoalDebtPayoff:
		rec = debtPayoff(profile)
	default:
		return domain.Recommendation{}, fmt.Errorf("%w: %q", ErrUnknownGoal, goal)
	}
	rec.Goal = goal
	return rec, nil
}

func reduceUtilization(profile domain.CreditProfile) domain.Recommendation {
	if profile.UtilizationOverall > utilizationThreshold {
		totalBalance, totalLimit := totals(profile.Cards)
		amount := roundUpDollars(totalBalance - totalLimit*targetUtilization)
		return domain.Recommendation{
			ActionLabel: fmt.Sprintf("Pay down %s across your cards", dollars(amount)),
			Description: fmt.Sprintf("Your overall utilization is %.0f%%. Paying %s brings it below 30%%.", profile.UtilizationOverall, dollars(amount)),
			PointImpact: int(math.Floor(amount/500))*5 + 10,
			Timeframe:   domain.TimeframeWithin30Days,
			Amount:      amount,
		}
	}

	if card, ok := highestUtilization(profile.Cards); ok && card.Utilization > cardUtilizationThreshold {
		amount := roundUpDollars(card.Balance - card.Limit*targetUtilization)
		return domain.Recommendation{
			ActionLabel: fmt.Sprintf("Pay down %s by %s", card.Name, dollars(amount)),
			Description: fmt.Sprintf("%s is at %.0f%% utilization. Paying %s brings that card to 30%%.", card.Name, card.Utilization, dollars(amount)),
			PointImpact: 15,
			Timeframe:   domain.TimeframeWithin30Days,
			Amount:      amount,
			CardName:    card.Name,
		}
	}

	return domain.Recommendation{
		ActionLabel: "Keep utilization low",
		Description: "Your utilization is in a healthy range. Keep balances under 30% of your limits.",
		PointImpact: 0,
		Timeframe:   domain.TimeframeOngoing,
	}
}

func paymentHistory(profile domain.CreditProfile) domain.Recommendation {
	if profile.CurrentScore < lowScoreThreshold {
		return domain.Recommendation{
			ActionLabel: "Make 6 consecutive on-time payments",
			Description: "Pay every account on time for the next six months. Autopay for the minimum due makes this hard to miss.",
			PointImpact: 30,
			Timeframe:   domain.TimeframeSixMonths,
		}
	}
	return domain.Recommendation{
		ActionLabel: "Keep paying on time",
		Description: "Your payment history is solid. Keep autopay enabled to protect it.",
		PointImpact: 5,
		Timeframe:   domain.TimeframeOngoing,
	}
}

func debtPayoff(profile domain.CreditProfile) domain.Recommendation {
	totalDebt, _ := totals(profile.Cards)
	if totalDebt > debtThreshold {
		amount := math.Min(totalDebt*payoffShare, payoffCap)
		return domain.Recommendation{
			ActionLabel: fmt.Sprintf("Pay off %s of revolving debt", dollars(amount)),
			Description: fmt.Sprintf("You carry %s across your cards. Paying down %s over the next few months cuts both utilization and interest.", dollars(totalDebt), dollars(amount)),
			PointImpact: int(math.Floor(amount/1000))*5 + 10,
			Timeframe:   domain.TimeframeTwoToThree,
			Amount:      math.Round(amount*100) / 100,
		}
	}
	return domain.Recommendation{
		ActionLabel: "Stay debt-light",
		Description: "Your card balances are low. Keep paying statements in full.",
		PointImpact: 0,
		Timeframe:   domain.TimeframeOngoing,
	}
}

// roundUpDollars rounds up to the next multiple of $100.
func roundUpDollars(amount float64) float64 {
	return math.Ceil(amount/roundingDollars) * roundingDollars
}

func dollars(amount float64) string {
	if amount == math.Trunc(amount) {
		return "$" + humanize.Comma(int64(amount))
	}
	return "$" + humanize.CommafWithDigits(amount, 2)
}
