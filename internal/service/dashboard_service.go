package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika/creditguardian/internal/domain"
	"github.com/vanshika/creditguardian/internal/simulator"
)

// AccountRepository is the storage contract for user accounts and their dashboard data.
type AccountRepository interface {
	GetUser(ctx context.Context, userID string) (domain.User, error)
	UpsertAccount(ctx context.Context, account domain.Account) error
	ListCards(ctx context.Context, userID string) ([]domain.Card, error)
	UpsertCard(ctx context.Context, card domain.Card) error
	ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
	ListDeposits(ctx context.Context, userID string) ([]domain.IncomeDeposit, error)
}

// DashboardService serves the account views and seeds accounts.
type DashboardService struct {
	repo  AccountRepository
	nowFn func() time.Time
}

// NewDashboardService constructs a DashboardService backed by repo.
func NewDashboardService(repo AccountRepository) *DashboardService {
	return &DashboardService{
		repo:  repo,
		nowFn: time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *DashboardService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Profile assembles the dashboard for userID.
func (s *DashboardService) Profile(ctx context.Context, userID string) (Dashboard, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	cards, err := s.repo.ListCards(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list cards: %w", err)
	}
	notifications, err := s.repo.ListNotifications(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list notifications: %w", err)
	}
	deposits, err := s.repo.ListDeposits(ctx, userID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list deposits: %w", err)
	}

	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
	}

	return Dashboard{
		User:                user,
		Profile:             simulator.NewProfile(user.CreditScore, cards),
		Cards:               simulator.WithUtilization(cards),
		UnreadNotifications: unread,
		DepositsTotal:       depositsTotal(deposits),
	}, nil
}

// ListCards returns the user's cards with utilization recomputed.
func (s *DashboardService) ListCards(ctx context.Context, userID string) ([]domain.Card, error) {
	cards, err := s.repo.ListCards(ctx, userID)
	if err != nil {
		return nil, err
	}
	return simulator.WithUtilization(cards), nil
}

// AddCard validates and stores a new card for an existing user.
func (s *DashboardService) AddCard(ctx context.Context, userID string, input CardInput) (domain.Card, error) {
	card, err := buildCard(userID, input)
	if err != nil {
		return domain.Card{}, err
	}
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return domain.Card{}, err
	}
	if err := s.repo.UpsertCard(ctx, card); err != nil {
		return domain.Card{}, fmt.Errorf("store card: %w", err)
	}
	return card, nil
}

// ListNotifications returns the user's notifications.
func (s *DashboardService) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListNotifications(ctx, userID)
}

// MarkNotificationRead flags one notification as read.
func (s *DashboardService) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	notificationID = sanitizeString(notificationID)
	if notificationID == "" {
		return fmt.Errorf("%w: notification ID is required", domain.ErrInvalidInput)
	}
	return s.repo.MarkNotificationRead(ctx, userID, notificationID)
}

// ListDeposits returns the user's deposits and their total.
func (s *DashboardService) ListDeposits(ctx context.Context, userID string) ([]domain.IncomeDeposit, float64, error) {
	deposits, err := s.repo.ListDeposits(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return deposits, depositsTotal(deposits), nil
}

// UpsertAccount normalizes a seeded account and persists it.
func (s *DashboardService) UpsertAccount(ctx context.Context, input AccountInput) error {
	if input.ID == "" {
		return fmt.Errorf("%w: user ID is required", domain.ErrInvalidInput)
	}
	if input.CreditScore < domain.MinCreditScore || input.CreditScore > domain.MaxCreditScore {
		return fmt.Errorf("%w: user %s credit score %d out of range", domain.ErrInvalidInput, input.ID, input.CreditScore)
	}

	now := s.nowFn().UTC()
	createdAt := now
	updatedAt := now
	if input.CreatedAt != nil {
		createdAt = input.CreatedAt.UTC()
	}
	if input.UpdatedAt != nil {
		updatedAt = input.UpdatedAt.UTC()
	}

	account := domain.Account{
		User: domain.User{
			ID:          input.ID,
			FullName:    sanitizeString(input.FullName),
			Email:       normalizeEmail(input.Email),
			CreditScore: input.CreditScore,
			CreatedAt:   createdAt,
			UpdatedAt:   updatedAt,
		},
	}

	for _, in := range input.Cards {
		card, err := buildCard(input.ID, in)
		if err != nil {
			return fmt.Errorf("user %s: %w", input.ID, err)
		}
		account.Cards = append(account.Cards, card)
	}

	for _, in := range input.Notifications {
		kind := domain.NotificationKind(in.Kind)
		switch kind {
		case domain.NotificationAlert, domain.NotificationInfo, domain.NotificationSuccess:
		case "":
			kind = domain.NotificationInfo
		default:
			return fmt.Errorf("%w: user %s notification kind %q", domain.ErrInvalidInput, input.ID, in.Kind)
		}
		created := now
		if in.CreatedAt != nil {
			created = in.CreatedAt.UTC()
		}
		account.Notifications = append(account.Notifications, domain.Notification{
			ID:        idOrNew(in.ID),
			UserID:    input.ID,
			Title:     sanitizeString(in.Title),
			Message:   sanitizeString(in.Message),
			Kind:      kind,
			Read:      in.Read,
			CreatedAt: created,
		})
	}

	for _, in := range input.Deposits {
		if !domain.ValidAmount(in.Amount) || in.Amount == 0 {
			return fmt.Errorf("%w: user %s deposit amount must be positive and at most %.0f", domain.ErrInvalidInput, input.ID, domain.MaxAmount)
		}
		deposited := now
		if in.DepositedAt != nil {
			deposited = in.DepositedAt.UTC()
		}
		account.Deposits = append(account.Deposits, domain.IncomeDeposit{
			ID:          idOrNew(in.ID),
			UserID:      input.ID,
			Source:      sanitizeString(in.Source),
			Amount:      roundCents(in.Amount),
			DepositedAt: deposited,
		})
	}

	return s.repo.UpsertAccount(ctx, account)
}

func buildCard(userID string, input CardInput) (domain.Card, error) {
	name := sanitizeString(input.Name)
	switch {
	case name == "":
		return domain.Card{}, fmt.Errorf("%w: card name is required", domain.ErrInvalidInput)
	case !domain.ValidAmount(input.Balance):
		return domain.Card{}, fmt.Errorf("%w: card balance must be between 0 and %.0f", domain.ErrInvalidInput, domain.MaxAmount)
	case !domain.ValidAmount(input.Limit) || input.Limit == 0:
		return domain.Card{}, fmt.Errorf("%w: card limit must be positive and at most %.0f", domain.ErrInvalidInput, domain.MaxAmount)
	case !domain.ValidAmount(input.APR):
		return domain.Card{}, fmt.Errorf("%w: card APR must be a non-negative number", domain.ErrInvalidInput)
	}

	balance := roundCents(input.Balance)
	limit := roundCents(input.Limit)
	return domain.Card{
		ID:          idOrNew(input.ID),
		UserID:      userID,
		Name:        name,
		Balance:     balance,
		Limit:       limit,
		APR:         input.APR,
		Utilization: simulator.Utilization(balance, limit),
	}, nil
}

func idOrNew(id string) string {
	if id = sanitizeString(id); id != "" {
		return id
	}
	return uuid.NewString()
}

func depositsTotal(deposits []domain.IncomeDeposit) float64 {
	total := 0.0
	for _, d := range deposits {
		total += d.Amount
	}
	return roundCents(total)
}
