package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/vanshika/creditguardian/internal/domain"
)

// Memory keeps accounts and saved simulations in process. It is the default
// store for local runs and demos; everything is lost on restart.
type Memory struct {
	mu            sync.RWMutex
	users         map[string]domain.User
	cards         map[string][]domain.Card
	notifications map[string][]domain.Notification
	deposits      map[string][]domain.IncomeDeposit
	simulations   map[string][]domain.SavedSimulation
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:         make(map[string]domain.User),
		cards:         make(map[string][]domain.Card),
		notifications: make(map[string][]domain.Notification),
		deposits:      make(map[string][]domain.IncomeDeposit),
		simulations:   make(map[string][]domain.SavedSimulation),
	}
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) GetUser(_ context.Context, userID string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[userID]
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return user, nil
}

// UpsertAccount replaces the user and merges child records by ID.
func (m *Memory) UpsertAccount(_ context.Context, account domain.Account) error {
	if account.User.ID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	userID := account.User.ID
	if existing, ok := m.users[userID]; ok && !existing.CreatedAt.IsZero() {
		account.User.CreatedAt = existing.CreatedAt
	}
	m.users[userID] = account.User

	for _, c := range account.Cards {
		m.cards[userID] = upsertByID(m.cards[userID], c, func(x domain.Card) string { return x.ID })
	}
	for _, n := range account.Notifications {
		m.notifications[userID] = upsertByID(m.notifications[userID], n, func(x domain.Notification) string { return x.ID })
	}
	for _, d := range account.Deposits {
		m.deposits[userID] = upsertByID(m.deposits[userID], d, func(x domain.IncomeDeposit) string { return x.ID })
	}
	return nil
}

func (m *Memory) ListCards(_ context.Context, userID string) ([]domain.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.cards[userID]), nil
}

func (m *Memory) UpsertCard(_ context.Context, card domain.Card) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[card.UserID]; !ok {
		return fmt.Errorf("user %s: %w", card.UserID, domain.ErrNotFound)
	}
	m.cards[card.UserID] = upsertByID(m.cards[card.UserID], card, func(x domain.Card) string { return x.ID })
	return nil
}

// ListNotifications returns newest first.
func (m *Memory) ListNotifications(_ context.Context, userID string) ([]domain.Notification, error) {
	m.mu.RLock()
	items := slices.Clone(m.notifications[userID])
	m.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, userID, notificationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.notifications[userID]
	for i := range items {
		if items[i].ID == notificationID {
			items[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
}

// ListDeposits returns newest first.
func (m *Memory) ListDeposits(_ context.Context, userID string) ([]domain.IncomeDeposit, error) {
	m.mu.RLock()
	items := slices.Clone(m.deposits[userID])
	m.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool { return items[i].DepositedAt.After(items[j].DepositedAt) })
	return items, nil
}

func (m *Memory) SaveSimulation(_ context.Context, sim domain.SavedSimulation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.simulations[sim.UserID] = upsertByID(m.simulations[sim.UserID], sim, func(x domain.SavedSimulation) string { return x.ID })
	return nil
}

// ListSimulations returns at most limit snapshots, newest first. A non-positive limit returns all.
func (m *Memory) ListSimulations(_ context.Context, userID string, limit int) ([]domain.SavedSimulation, error) {
	m.mu.RLock()
	items := slices.Clone(m.simulations[userID])
	m.mu.RUnlock()

	slices.Reverse(items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func upsertByID[T any](items []T, item T, id func(T) string) []T {
	for i := range items {
		if id(items[i]) == id(item) {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}
