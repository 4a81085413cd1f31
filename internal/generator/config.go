package generator

import "time"

// Config drives the synthetic account generator.
type Config struct {
	NumAccounts             int
	MaxCardsPerAccount      int
	NotificationsPerAccount int
	DepositsPerAccount      int
	// HighUtilizationChance is the probability that a card runs close to its limit.
	HighUtilizationChance float64
	// DemoUserID, when set, becomes the ID of the first generated account.
	DemoUserID string
	Seed       int64
	// Now anchors generated timestamps; zero means the current time.
	Now time.Time
}

// DefaultConfig returns baseline settings for a small demo dataset.
func DefaultConfig() Config {
	return Config{
		NumAccounts:             25,
		MaxCardsPerAccount:      4,
		NotificationsPerAccount: 3,
		DepositsPerAccount:      4,
		HighUtilizationChance:   0.35,
		Seed:                    42,
	}
}
