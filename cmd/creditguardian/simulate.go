package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vanshika/creditguardian/internal/display"
	"github.com/vanshika/creditguardian/internal/domain"
	"github.com/vanshika/creditguardian/internal/simulator"
)

func newSimulateCmd() *cobra.Command {
	var (
		score  int
		action domain.SimulationAction
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Project a score change from what-if actions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := simulator.ValidateAction(score, action); err != nil {
				return err
			}
			printProjection(cmd.OutOrStdout(), score, action)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&score, "score", 650, "current credit score")
	flags.Float64Var(&action.PayDownDebt, "paydown", 0, "dollars of debt paid down (0-10000)")
	flags.BoolVar(&action.OpensNewCard, "new-card", false, "open a new credit card")
	flags.IntVar(&action.OnTimePaymentMonths, "on-time", 0, "months of on-time payments")
	flags.IntVar(&action.MissedPayments, "missed", 0, "missed payments")
	flags.BoolVar(&action.ClosesOldestAccount, "close-oldest", false, "close the oldest account")
	return cmd
}

func printProjection(w io.Writer, score int, action domain.SimulationAction) {
	projected := simulator.ProjectScore(score, action)
	fmt.Fprintf(w, "Current score:   %d\n", projected.BaseScore)
	for _, e := range simulator.Breakdown(score, action) {
		fmt.Fprintf(w, "  %-28s %+d\n", e.Label, e.Points)
	}
	fmt.Fprintf(w, "Projected score: %d (%+d)\n", projected.ProjectedScore, projected.ProjectedScore-projected.BaseScore)
}

func newRecommendCmd() *cobra.Command {
	var (
		goal  string
		score int
		specs []string
		seed  int64
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print the recommended action for a goal",
		Example: "  creditguardian recommend --goal reduce_utilization --score 680 \\\n" +
			"    --card \"Everyday Rewards:2300:5000\" --card \"Travel Plus:1800:2000\"",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if score < domain.MinCreditScore || score > domain.MaxCreditScore {
				return fmt.Errorf("%w: score %d outside [%d, %d]", domain.ErrInvalidInput, score, domain.MinCreditScore, domain.MaxCreditScore)
			}
			parsed, err := simulator.ParseGoal(goal)
			if err != nil {
				return err
			}
			cards := make([]domain.Card, 0, len(specs))
			for _, spec := range specs {
				card, err := parseCardSpec(spec)
				if err != nil {
					return err
				}
				cards = append(cards, card)
			}

			profile := simulator.NewProfile(score, cards)
			rec, err := simulator.Recommend(parsed, profile)
			if err != nil {
				return err
			}
			printRecommendation(cmd.OutOrStdout(), profile, rec, display.NewJitter(seed).GainRange(rec.PointImpact))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&goal, "goal", string(domain.GoalReduceUtilization), "reduce_utilization, payment_history, credit_mix or debt_payoff")
	flags.IntVar(&score, "score", 650, "current credit score")
	flags.StringArrayVar(&specs, "card", nil, "card as name:balance:limit (repeatable)")
	flags.Int64Var(&seed, "seed", 0, "seed for the displayed gain range; 0 uses the clock")
	return cmd
}

func printRecommendation(w io.Writer, profile domain.CreditProfile, rec domain.Recommendation, gain display.Range) {
	fmt.Fprintf(w, "Score %d, overall utilization %s%%\n", profile.CurrentScore, humanize.FtoaWithDigits(profile.UtilizationOverall, 1))
	fmt.Fprintf(w, "%s\n  %s\n", rec.ActionLabel, rec.Description)
	if rec.PointImpact > 0 {
		fmt.Fprintf(w, "  Potential gain: +%d to +%d points (%s)\n", gain.Low, gain.High, rec.Timeframe)
		return
	}
	fmt.Fprintf(w, "  No score change expected (%s)\n", rec.Timeframe)
}

// parseCardSpec reads "name:balance:limit"; the name may itself contain colons.
func parseCardSpec(spec string) (domain.Card, error) {
	rest, limitText, ok := cutLast(spec, ":")
	if !ok {
		return domain.Card{}, fmt.Errorf("card %q: want name:balance:limit", spec)
	}
	name, balanceText, ok := cutLast(rest, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return domain.Card{}, fmt.Errorf("card %q: want name:balance:limit", spec)
	}

	balance, err := strconv.ParseFloat(strings.TrimSpace(balanceText), 64)
	if err != nil || !domain.ValidAmount(balance) {
		return domain.Card{}, fmt.Errorf("%w: card %q: balance must be between 0 and %.0f", domain.ErrInvalidInput, spec, domain.MaxAmount)
	}
	limit, err := strconv.ParseFloat(strings.TrimSpace(limitText), 64)
	if err != nil || !domain.ValidAmount(limit) || limit == 0 {
		return domain.Card{}, fmt.Errorf("%w: card %q: limit must be positive and at most %.0f", domain.ErrInvalidInput, spec, domain.MaxAmount)
	}
	return domain.Card{Name: strings.TrimSpace(name), Balance: balance, Limit: limit}, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
