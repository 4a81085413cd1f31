// Package payoff simulates paying a set of debts down to zero with the
// avalanche (highest APR first) or snowball (smallest balance first) strategy.
package payoff

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vanshika/creditguardian/internal/domain"
)

const (
	MaxMonths = 600
	MaxDebts  = 50
)

var (
	ErrNoDebts         = errors.New("no debts provided")
	ErrTooManyDebts    = fmt.Errorf("more than %d debts", MaxDebts)
	ErrInvalidDebt     = errors.New("invalid debt")
	ErrBudgetTooLow    = errors.New("monthly budget does not cover minimum payments")
	ErrUnknownStrategy = errors.New("unknown payoff strategy")
	ErrNoPayoff        = fmt.Errorf("debts not paid off within %d months", MaxMonths)
)

var (
	monthsPerYear = decimal.NewFromInt(12)
	hundred       = decimal.NewFromInt(100)
)

// ParseStrategy maps a wire value onto a PayoffStrategy.
func ParseStrategy(value string) (domain.PayoffStrategy, error) {
	switch s := domain.PayoffStrategy(value); s {
	case domain.StrategyAvalanche, domain.StrategySnowball:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, value)
}

// Plan simulates month by month until every debt reaches zero.
func Plan(debts []domain.Debt, monthlyBudget float64, strategy domain.PayoffStrategy) (domain.PayoffPlan, error) {
	if err := validate(debts, monthlyBudget); err != nil {
		return domain.PayoffPlan{}, err
	}

	ordered, err := order(debts, strategy)
	if err != nil {
		return domain.PayoffPlan{}, err
	}

	balances := make([]decimal.Decimal, len(ordered))
	totalDebt := decimal.Zero
	names := make([]string, len(ordered))
	for i, d := range ordered {
		balances[i] = decimal.NewFromFloat(d.Balance).Round(2)
		totalDebt = totalDebt.Add(balances[i])
		names[i] = d.Name
	}

	budget := decimal.NewFromFloat(monthlyBudget).Round(2)
	totalInterest := decimal.Zero
	totalPaid := decimal.Zero
	var schedule []domain.PayoffMonth

	for month := 1; ; month++ {
		if month > MaxMonths {
			return domain.PayoffPlan{}, ErrNoPayoff
		}

		available := budget
		paidThisMonth := decimal.Zero
		payments := make([]domain.DebtPayment, 0, len(ordered))
		slot := make(map[int]int, len(ordered))

		for i, d := range ordered {
			if !balances[i].IsPositive() {
				continue
			}
			interest := balances[i].Mul(monthlyRate(d.APR)).Round(2)
			balances[i] = balances[i].Add(interest)
			totalInterest = totalInterest.Add(interest)

			pay := decimal.Min(decimal.NewFromFloat(d.MinimumPayment).Round(2), balances[i], available)
			balances[i] = balances[i].Sub(pay)
			available = available.Sub(pay)
			paidThisMonth = paidThisMonth.Add(pay)

			slot[i] = len(payments)
			payments = append(payments, domain.DebtPayment{
				DebtName:         d.Name,
				Payment:          pay.InexactFloat64(),
				Interest:         interest.InexactFloat64(),
				RemainingBalance: balances[i].InexactFloat64(),
			})
		}

		// Surplus rolls onto the first unpaid debt in strategy order, then the next.
		for i := range ordered {
			if !available.IsPositive() {
				break
			}
			if !balances[i].IsPositive() {
				continue
			}
			extra := decimal.Min(available, balances[i])
			balances[i] = balances[i].Sub(extra)
			available = available.Sub(extra)
			paidThisMonth = paidThisMonth.Add(extra)

			p := &payments[slot[i]]
			p.Payment = decimal.NewFromFloat(p.Payment).Add(extra).InexactFloat64()
			p.RemainingBalance = balances[i].InexactFloat64()
		}

		totalPaid = totalPaid.Add(paidThisMonth)
		schedule = append(schedule, domain.PayoffMonth{
			Month:     month,
			Payments:  payments,
			TotalPaid: paidThisMonth.InexactFloat64(),
		})

		if allPaid(balances) {
			return domain.PayoffPlan{
				Strategy:      strategy,
				Order:         names,
				Months:        month,
				TotalDebt:     totalDebt.InexactFloat64(),
				TotalInterest: totalInterest.InexactFloat64(),
				TotalPaid:     totalPaid.InexactFloat64(),
				Schedule:      schedule,
			}, nil
		}
	}
}

// Compare runs both strategies over the same debts.
func Compare(debts []domain.Debt, monthlyBudget float64) (domain.PayoffComparison, error) {
	avalanche, err := Plan(debts, monthlyBudget, domain.StrategyAvalanche)
	if err != nil {
		return domain.PayoffComparison{}, fmt.Errorf("avalanche: %w", err)
	}
	snowball, err := Plan(debts, monthlyBudget, domain.StrategySnowball)
	if err != nil {
		return domain.PayoffComparison{}, fmt.Errorf("snowball: %w", err)
	}

	saved := decimal.NewFromFloat(snowball.TotalInterest).Sub(decimal.NewFromFloat(avalanche.TotalInterest))
	if saved.IsNegative() {
		saved = decimal.Zero
	}

	return domain.PayoffComparison{
		Avalanche:     avalanche,
		Snowball:      snowball,
		InterestSaved: saved.Round(2).InexactFloat64(),
		MonthsSaved:   snowball.Months - avalanche.Months,
	}, nil
}

func validate(debts []domain.Debt, monthlyBudget float64) error {
	if len(debts) == 0 {
		return ErrNoDebts
	}
	if len(debts) > MaxDebts {
		return ErrTooManyDebts
	}

	seen := make(map[string]struct{}, len(debts))
	minimums := 0.0
	for _, d := range debts {
		switch {
		case d.Name == "":
			return fmt.Errorf("%w: name is required", ErrInvalidDebt)
		case d.Balance <= 0:
			return fmt.Errorf("%w: %s balance must be positive", ErrInvalidDebt, d.Name)
		case d.APR < 0:
			return fmt.Errorf("%w: %s APR must not be negative", ErrInvalidDebt, d.Name)
		case d.MinimumPayment <= 0:
			return fmt.Errorf("%w: %s minimum payment must be positive", ErrInvalidDebt, d.Name)
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("%w: duplicate name %s", ErrInvalidDebt, d.Name)
		}
		seen[d.Name] = struct{}{}
		minimums += d.MinimumPayment
	}

	if monthlyBudget < minimums {
		return fmt.Errorf("%w: need at least %.2f", ErrBudgetTooLow, minimums)
	}
	return nil
}

func order(debts []domain.Debt, strategy domain.PayoffStrategy) ([]domain.Debt, error) {
	ordered := make([]domain.Debt, len(debts))
	copy(ordered, debts)

	switch strategy {
	case domain.StrategyAvalanche:
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].APR > ordered[j].APR })
	case domain.StrategySnowball:
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Balance < ordered[j].Balance })
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	return ordered, nil
}

func monthlyRate(apr float64) decimal.Decimal {
	return decimal.NewFromFloat(apr).Div(hundred).Div(monthsPerYear)
}

func allPaid(balances []decimal.Decimal) bool {
	for _, b := range balances {
		if b.IsPositive() {
			return false
		}
	}
	return true
}
