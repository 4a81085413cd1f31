// Package simulator holds the credit-score projection and recommendation engines.
// Everything here is pure: no I/O, no shared state, safe for concurrent use.
package simulator

import "github.com/vanshika/creditguardian/internal/domain"

// Utilization returns balance as a percentage of limit. A non-positive limit yields 0.
func Utilization(balance, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return balance / limit * 100
}

// NewProfile builds a CreditProfile from stored cards, recomputing every utilization
// figure from balance and limit.
func NewProfile(score int, cards []domain.Card) domain.CreditProfile {
	profile := domain.CreditProfile{
		CurrentScore: score,
		Cards:        make([]domain.CardBalance, 0, len(cards)),
	}

	var totalBalance, totalLimit float64
	for _, card := range cards {
		profile.Cards = append(profile.Cards, domain.CardBalance{
			Name:        card.Name,
			Balance:     card.Balance,
			Limit:       card.Limit,
			Utilization: Utilization(card.Balance, card.Limit),
		})
		totalBalance += card.Balance
		totalLimit += card.Limit
	}
	profile.UtilizationOverall = Utilization(totalBalance, totalLimit)
	return profile
}

// WithUtilization returns a copy of cards with Utilization filled in.
func WithUtilization(cards []domain.Card) []domain.Card {
	out := make([]domain.Card, len(cards))
	for i, card := range cards {
		card.Utilization = Utilization(card.Balance, card.Limit)
		out[i] = card
	}
	return out
}

func totals(cards []domain.CardBalance) (balance, limit float64) {
	for _, c := range cards {
		balance += c.Balance
		limit += c.Limit
	}
	return balance, limit
}

// highestUtilization returns the card with the largest utilization. Ties keep the
// earliest card. ok is false when there are no cards.
func highestUtilization(cards []domain.CardBalance) (card domain.CardBalance, ok bool) {
	for i, c := range cards {
		if i == 0 || c.Utilization > card.Utilization {
			card = c
		}
	}
	return card, len(cards) > 0
}
