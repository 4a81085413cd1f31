package service

import (
	"context"
	"fmt"

	"github.com/vanshika/creditguardian/internal/domain"
	"github.com/vanshika/creditguardian/internal/payoff"
)

// StrategyCompare asks for both plans side by side.
const StrategyCompare = "compare"

// PayoffService plans debt payoff for a user.
type PayoffService struct {
	accounts AccountRepository
}

// NewPayoffService constructs a PayoffService.
func NewPayoffService(accounts AccountRepository) *PayoffService {
	return &PayoffService{accounts: accounts}
}

// Plan builds a payoff plan. Without explicit debts, every card carrying a balance is used.
func (s *PayoffService) Plan(ctx context.Context, userID string, req PayoffRequest) (PayoffResult, error) {
	debts := req.Debts
	if len(debts) == 0 {
		cards, err := s.accounts.ListCards(ctx, userID)
		if err != nil {
			return PayoffResult{}, fmt.Errorf("list cards: %w", err)
		}
		debts = debtsFromCards(cards)
	}

	if req.Strategy == StrategyCompare {
		cmp, err := payoff.Compare(debts, req.MonthlyBudget)
		if err != nil {
			return PayoffResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		return PayoffResult{Comparison: &cmp}, nil
	}

	strategy, err := payoff.ParseStrategy(req.Strategy)
	if err != nil {
		return PayoffResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	plan, err := payoff.Plan(debts, req.MonthlyBudget, strategy)
	if err != nil {
		return PayoffResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	return PayoffResult{Plan: &plan}, nil
}

func debtsFromCards(cards []domain.Card) []domain.Debt {
	debts := make([]domain.Debt, 0, len(cards))
	for _, c := range cards {
		if c.Balance <= 0 {
			continue
		}
		debts = append(debts, domain.Debt{
			Name:           c.Name,
			Balance:        c.Balance,
			APR:            c.APR,
			MinimumPayment: minimumPayment(c.Balance),
		})
	}
	return debts
}
