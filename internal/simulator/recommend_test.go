package simulator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/creditguardian/internal/domain"
)

func cards(entries ...domain.Card) []domain.Card { return entries }

func TestRecommend_ReduceUtilization(t *testing.T) {
	t.Run("overall above 30 pays down to target", func(t *testing.T) {
		profile := NewProfile(680, cards(
			domain.Card{Name: "Sapphire", Balance: 2000, Limit: 3000},
			domain.Card{Name: "Freedom", Balance: 1500, Limit: 2000},
		))
		require.InDelta(t, 70.0, profile.UtilizationOverall, 1e-9)

		rec, err := Recommend(domain.GoalReduceUtilization, profile)
		require.NoError(t, err)
		assert.Equal(t, 2000.0, rec.Amount)
		assert.Equal(t, 30, rec.PointImpact)
		assert.Equal(t, domain.TimeframeWithin30Days, rec.Timeframe)
		assert.Equal(t, domain.GoalReduceUtilization, rec.Goal)
		assert.Contains(t, rec.ActionLabel, "$2,000")
		assert.Empty(t, rec.CardName)
	})

	t.Run("amount rounds up to next hundred", func(t *testing.T) {
		profile := NewProfile(680, cards(domain.Card{Name: "Only", Balance: 1510, Limit: 2000}))

		rec, err := Recommend(domain.GoalReduceUtilization, profile)
		require.NoError(t, err)
		// 1510 - 600 = 910 -> 1000
		assert.Equal(t, 1000.0, rec.Amount)
		assert.Equal(t, 20, rec.PointImpact)
	})

	t.Run("exactly 30 percent is not reduced", func(t *testing.T) {
		profile := domain.CreditProfile{
			CurrentScore:       700,
			UtilizationOverall: 30.0,
			Cards: []domain.CardBalance{
				{Name: "Even", Balance: 300, Limit: 1000, Utilization: 30},
			},
		}

		rec, err := Recommend(domain.GoalReduceUtilization, profile)
		require.NoError(t, err)
		assert.Equal(t, 0, rec.PointImpact)
		assert.Equal(t, domain.TimeframeOngoing, rec.Timeframe)
	})

	t.Run("exactly 30 percent falls through to high card", func(t *testing.T) {
		profile := domain.CreditProfile{
			CurrentScore:       700,
			UtilizationOverall: 30.0,
			Cards: []domain.CardBalance{
				{Name: "Hot", Balance: 600, Limit: 1000, Utilization: 60},
				{Name: "Cold", Balance: 0, Limit: 1000, Utilization: 0},
			},
		}

		rec, err := Recommend(domain.GoalReduceUtilization, profile)
		require.NoError(t, err)
		assert.Equal(t, 15, rec.PointImpact)
		assert.Equal(t, "Hot", rec.CardName)
		assert.Equal(t, 300.0, rec.Amount)
	})

	t.Run("first card wins utilization ties", func(t *testing.T) {
		profile := NewProfile(720, cards(
			domain.Card{Name: "First", Balance: 800, Limit: 1000},
			domain.Card{Name: "Second", Balance: 800, Limit: 1000},
			domain.Card{Name: "Roomy", Balance: 0, Limit: 5000},
		))
		require.LessOrEqual(t, profile.UtilizationOverall, 30.0)

		rec, err := Recommend(domain.GoalReduceUtilization, profile)
		require.NoError(t, err)
		assert.Equal(t, "First", rec.CardName)
		assert.Equal(t, 500.0, rec.Amount)
		assert.Equal(t, domain.TimeframeWithin30Days, rec.Timeframe)
	})

	t.Run("card at 50 percent is not targeted", func(t *testing.T) {
		profile := NewProfile(720, cards(
			domain.Card{Name: "Half", Balance: 500, Limit: 1000},
			domain.Card{Name: "Roomy", Balance: 0, Limit: 9000},
		))

		rec, err := Recommend(domain.GoalReduceUtilization, profile)
		require.NoError(t, err)
		assert.Equal(t, 0, rec.PointImpact)
	})

	t.Run("no cards yields maintenance", func(t *testing.T) {
		rec, err := Recommend(domain.GoalReduceUtilization, NewProfile(720, nil))
		require.NoError(t, err)
		assert.Equal(t, 0, rec.PointImpact)
		assert.Equal(t, domain.TimeframeOngoing, rec.Timeframe)
	})
}

func TestRecommend_PaymentHistory(t *testing.T) {
	low, err := Recommend(domain.GoalPaymentHistory, NewProfile(699, nil))
	require.NoError(t, err)
	assert.Equal(t, 30, low.PointImpact)
	assert.Equal(t, domain.TimeframeSixMonths, low.Timeframe)

	high, err := Recommend(domain.GoalPaymentHistory, NewProfile(700, nil))
	require.NoError(t, err)
	assert.Equal(t, 5, high.PointImpact)
	assert.Equal(t, domain.TimeframeOngoing, high.Timeframe)
}

func TestRecommend_CreditMixIsUnconditional(t *testing.T) {
	profiles := []domain.CreditProfile{
		NewProfile(300, nil),
		NewProfile(850, cards(domain.Card{Name: "Maxed", Balance: 5000, Limit: 5000})),
		NewProfile(640, cards(domain.Card{Name: "Idle", Balance: 0, Limit: 1000})),
	}
	for _, profile := range profiles {
		rec, err := Recommend(domain.GoalCreditMix, profile)
		require.NoError(t, err)
		assert.Equal(t, 15, rec.PointImpact)
		assert.Equal(t, domain.TimeframeThreeToSix, rec.Timeframe)
	}
}

func TestRecommend_DebtPayoff(t *testing.T) {
	tests := []struct {
		name       string
		balances   []float64
		wantImpact int
		wantAmount float64
		wantFrame  domain.Timeframe
	}{
		{name: "thirty percent of total", balances: []float64{3000, 2000}, wantImpact: 15, wantAmount: 1500, wantFrame: domain.TimeframeTwoToThree},
		{name: "capped at 3000", balances: []float64{15000, 5000}, wantImpact: 25, wantAmount: 3000, wantFrame: domain.TimeframeTwoToThree},
		{name: "exactly 2000 is maintenance", balances: []float64{1000, 1000}, wantImpact: 0, wantAmount: 0, wantFrame: domain.TimeframeOngoing},
		{name: "no debt", balances: nil, wantImpact: 0, wantAmount: 0, wantFrame: domain.TimeframeOngoing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var input []domain.Card
			for _, b := range tt.balances {
				input = append(input, domain.Card{Name: "card", Balance: b, Limit: 20000})
			}
			rec, err := Recommend(domain.GoalDebtPayoff, NewProfile(680, input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantImpact, rec.PointImpact)
			assert.InDelta(t, tt.wantAmount, rec.Amount, 0.001)
			assert.Equal(t, tt.wantFrame, rec.Timeframe)
		})
	}
}

func TestRecommend_UnknownGoal(t *testing.T) {
	_, err := Recommend(domain.Goal("build_wealth"), NewProfile(700, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownGoal))
}

func TestRecommend_Deterministic(t *testing.T) {
	profile := NewProfile(640, cards(
		domain.Card{Name: "A", Balance: 2400, Limit: 3000},
		domain.Card{Name: "B", Balance: 300, Limit: 1000},
	))
	for _, goal := range []domain.Goal{domain.GoalReduceUtilization, domain.GoalPaymentHistory, domain.GoalCreditMix, domain.GoalDebtPayoff} {
		first, err := Recommend(goal, profile)
		require.NoError(t, err)
		second, err := Recommend(goal, profile)
		require.NoError(t, err)
		assert.Equal(t, first, second, "goal %s", goal)
	}
}

func TestParseGoal(t *testing.T) {
	goal, err := ParseGoal("debt_payoff")
	require.NoError(t, err)
	assert.Equal(t, domain.GoalDebtPayoff, goal)

	_, err = ParseGoal("")
	assert.True(t, errors.Is(err, ErrUnknownGoal))
}

func TestNewProfile_ZeroLimit(t *testing.T) {
	profile := NewProfile(700, cards(domain.Card{Name: "Closed", Balance: 100, Limit: 0}))
	require.Len(t, profile.Cards, 1)
	assert.Equal(t, 0.0, profile.Cards[0].Utilization)
	assert.Equal(t, 0.0, profile.UtilizationOverall)
}

func TestWithUtilization(t *testing.T) {
	out := WithUtilization(cards(domain.Card{Name: "A", Balance: 250, Limit: 1000}))
	require.Len(t, out, 1)
	assert.InDelta(t, 25.0, out[0].Utilization, 1e-9)
}
