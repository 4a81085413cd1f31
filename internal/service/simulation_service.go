package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika/creditguardian/internal/display"
	"github.com/vanshika/creditguardian/internal/domain"
	"github.com/vanshika/creditguardian/internal/simulator"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// SimulationRepository persists saved simulation snapshots.
type SimulationRepository interface {
	SaveSimulation(ctx context.Context, sim domain.SavedSimulation) error
	ListSimulations(ctx context.Context, userID string, limit int) ([]domain.SavedSimulation, error)
}

// SimulationObserver is notified about engine runs; used for metrics.
type SimulationObserver interface {
	ProjectionComputed(baseScore, projectedScore int)
	RecommendationIssued(goal domain.Goal, impact int)
	SimulationSaved()
}

type noopObserver struct{}

func (noopObserver) ProjectionComputed(int, int)           {}
func (noopObserver) RecommendationIssued(domain.Goal, int) {}
func (noopObserver) SimulationSaved()                      {}

// SimulationService runs the score engines against stored accounts.
type SimulationService struct {
	accounts    AccountRepository
	simulations SimulationRepository
	jitter      *display.Jitter
	observer    SimulationObserver
	nowFn       func() time.Time
}

// NewSimulationService wires the engines to storage. A nil jitter is seeded from the clock.
func NewSimulationService(accounts AccountRepository, simulations SimulationRepository, jitter *display.Jitter) *SimulationService {
	if jitter == nil {
		jitter = display.NewJitter(0)
	}
	return &SimulationService{
		accounts:    accounts,
		simulations: simulations,
		jitter:      jitter,
		observer:    noopObserver{},
		nowFn:       time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *SimulationService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// WithObserver registers an observer for engine runs.
func (s *SimulationService) WithObserver(observer SimulationObserver) {
	if observer != nil {
		s.observer = observer
	}
}

// Project runs the advanced-mode projection against the user's current score.
func (s *SimulationService) Project(ctx context.Context, userID string, action domain.SimulationAction) (ProjectionResult, error) {
	user, err := s.accounts.GetUser(ctx, userID)
	if err != nil {
		return ProjectionResult{}, err
	}
	if err := simulator.ValidateAction(user.CreditScore, action); err != nil {
		return ProjectionResult{}, err
	}

	score := simulator.ProjectScore(user.CreditScore, action)
	s.observer.ProjectionComputed(score.BaseScore, score.ProjectedScore)

	return ProjectionResult{
		Score:     score,
		Breakdown: simulator.Breakdown(user.CreditScore, action),
	}, nil
}

// Recommend runs the simple-mode generator for goal against the user's profile.
func (s *SimulationService) Recommend(ctx context.Context, userID, goal string) (RecommendationResult, error) {
	parsed, err := simulator.ParseGoal(goal)
	if err != nil {
		return RecommendationResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	user, err := s.accounts.GetUser(ctx, userID)
	if err != nil {
		return RecommendationResult{}, err
	}
	cards, err := s.accounts.ListCards(ctx, userID)
	if err != nil {
		return RecommendationResult{}, fmt.Errorf("list cards: %w", err)
	}

	rec, err := simulator.Recommend(parsed, simulator.NewProfile(user.CreditScore, cards))
	if err != nil {
		return RecommendationResult{}, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	s.observer.RecommendationIssued(rec.Goal, rec.PointImpact)

	return RecommendationResult{
		Recommendation: rec,
		Gain:           s.jitter.GainRange(rec.PointImpact),
	}, nil
}

// Save snapshots a projection for the user.
func (s *SimulationService) Save(ctx context.Context, userID string, action domain.SimulationAction) (domain.SavedSimulation, error) {
	user, err := s.accounts.GetUser(ctx, userID)
	if err != nil {
		return domain.SavedSimulation{}, err
	}
	if err := simulator.ValidateAction(user.CreditScore, action); err != nil {
		return domain.SavedSimulation{}, err
	}

	sim := domain.SavedSimulation{
		ID:                  uuid.NewString(),
		UserID:              userID,
		BaseScore:           user.CreditScore,
		ProjectedScore:      simulator.Project(user.CreditScore, action),
		PayDownDebt:         action.PayDownDebt,
		OpensNewCard:        action.OpensNewCard,
		OnTimePaymentMonths: action.OnTimePaymentMonths,
		MissedPayments:      action.MissedPayments,
		ClosesOldestAccount: action.ClosesOldestAccount,
		CreatedAt:           s.nowFn().UTC(),
	}
	if err := s.simulations.SaveSimulation(ctx, sim); err != nil {
		return domain.SavedSimulation{}, fmt.Errorf("save simulation: %w", err)
	}
	s.observer.SimulationSaved()
	return sim, nil
}

// History lists the user's saved simulations, newest first.
func (s *SimulationService) History(ctx context.Context, userID string, limit int) ([]domain.SavedSimulation, error) {
	return s.simulations.ListSimulations(ctx, userID, normalizeLimit(limit))
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
