package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Generator produces synthetic dashboard accounts for demos and load tests.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	now           time.Time
	nameFragments nameFragments
}

// New returns a configured Generator instance. Equal seeds and anchors produce equal datasets.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumAccounts <= 0 {
		cfg.NumAccounts = defaults.NumAccounts
	}
	if cfg.MaxCardsPerAccount <= 0 {
		cfg.MaxCardsPerAccount = defaults.MaxCardsPerAccount
	}
	if cfg.NotificationsPerAccount < 0 {
		cfg.NotificationsPerAccount = 0
	}
	if cfg.DepositsPerAccount < 0 {
		cfg.DepositsPerAccount = 0
	}
	if cfg.HighUtilizationChance < 0 || cfg.HighUtilizationChance > 1 {
		cfg.HighUtilizationChance = defaults.HighUtilizationChance
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		now:           now.UTC().Truncate(time.Second),
		nameFragments: defaultNameFragments(),
	}
}

// Generate synthesises accounts. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	accounts := make([]AccountRecord, g.cfg.NumAccounts)

	for i := 0; i < g.cfg.NumAccounts; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		userID := fmt.Sprintf("USR-%06d", i+1)
		if i == 0 && g.cfg.DemoUserID != "" {
			userID = g.cfg.DemoUserID
		}
		createdAt := g.now.Add(-time.Duration(30*24+g.rand.Intn(365*24)) * time.Hour)
		first, last := g.randomName()

		accounts[i] = AccountRecord{
			ID:            userID,
			FullName:      first + " " + last,
			Email:         g.randomEmail(first, last),
			CreditScore:   520 + g.rand.Intn(300),
			CreatedAt:     &createdAt,
			Cards:         g.randomCards(userID),
			Notifications: g.randomNotifications(userID),
			Deposits:      g.randomDeposits(userID),
		}
	}

	return Dataset{Accounts: accounts}, nil
}

// DemoAccount is the fixed account served to the demo login when storage starts empty.
func DemoAccount(userID string, now time.Time) AccountRecord {
	now = now.UTC().Truncate(time.Second)
	at := func(days int) *time.Time {
		t := now.AddDate(0, 0, -days)
		return &t
	}
	return AccountRecord{
		ID:          userID,
		FullName:    "Jordan Rivera",
		Email:       "jordan.rivera@example.com",
		CreditScore: 680,
		CreatedAt:   at(400),
		Cards: []CardRecord{
			{ID: userID + "-CARD-1", Name: "Everyday Rewards", Balance: 2300, Limit: 5000, APR: 22.99},
			{ID: userID + "-CARD-2", Name: "Travel Plus", Balance: 1800, Limit: 2000, APR: 24.49},
			{ID: userID + "-CARD-3", Name: "Cash Back", Balance: 400, Limit: 3000, APR: 19.99},
		},
		Notifications: []NotificationRecord{
			{ID: userID + "-NTF-1", Title: "Payment due soon", Message: "Your Travel Plus payment is due in 3 days.", Kind: "alert", CreatedAt: at(1)},
			{ID: userID + "-NTF-2", Title: "Score updated", Message: "Your credit score went up 12 points this month.", Kind: "success", CreatedAt: at(6)},
			{ID: userID + "-NTF-3", Title: "Utilization tip", Message: "Keeping utilization under 30% helps your score.", Kind: "info", Read: true, CreatedAt: at(12)},
		},
		Deposits: []DepositRecord{
			{ID: userID + "-DEP-1", Source: "Payroll", Amount: 3200, DepositedAt: at(2)},
			{ID: userID + "-DEP-2", Source: "Freelance", Amount: 650, DepositedAt: at(9)},
			{ID: userID + "-DEP-3", Source: "Payroll", Amount: 3200, DepositedAt: at(16)},
		},
	}
}

func (g *Generator) randomCards(userID string) []CardRecord {
	limits := []float64{500, 1000, 1500, 2500, 5000, 7500, 10000}
	count := 1 + g.rand.Intn(g.cfg.MaxCardsPerAccount)
	cards := make([]CardRecord, 0, count)
	for i := 0; i < count; i++ {
		limit := limits[g.rand.Intn(len(limits))]
		share := g.rand.Float64() * 0.45
		if g.rand.Float64() < g.cfg.HighUtilizationChance {
			share = 0.7 + g.rand.Float64()*0.3
		}
		cards = append(cards, CardRecord{
			ID:      fmt.Sprintf("%s-CARD-%d", userID, i+1),
			Name:    g.nameFragments.cards[g.rand.Intn(len(g.nameFragments.cards))],
			Balance: math.Round(limit * share),
			Limit:   limit,
			APR:     float64(1599+g.rand.Intn(1400)) / 100,
		})
	}
	return cards
}

func (g *Generator) randomNotifications(userID string) []NotificationRecord {
	notes := make([]NotificationRecord, 0, g.cfg.NotificationsPerAccount)
	for i := 0; i < g.cfg.NotificationsPerAccount; i++ {
		tmpl := g.nameFragments.notifications[g.rand.Intn(len(g.nameFragments.notifications))]
		createdAt := g.now.Add(-time.Duration(g.rand.Intn(30*24)) * time.Hour)
		notes = append(notes, NotificationRecord{
			ID:        fmt.Sprintf("%s-NTF-%d", userID, i+1),
			Title:     tmpl.title,
			Message:   tmpl.message,
			Kind:      tmpl.kind,
			Read:      g.rand.Float64() < 0.4,
			CreatedAt: &createdAt,
		})
	}
	return notes
}

func (g *Generator) randomDeposits(userID string) []DepositRecord {
	deposits := make([]DepositRecord, 0, g.cfg.DepositsPerAccount)
	for i := 0; i < g.cfg.DepositsPerAccount; i++ {
		depositedAt := g.now.AddDate(0, 0, -14*i-g.rand.Intn(3))
		deposits = append(deposits, DepositRecord{
			ID:          fmt.Sprintf("%s-DEP-%d", userID, i+1),
			Source:      g.nameFragments.incomeSources[g.rand.Intn(len(g.nameFragments.incomeSources))],
			Amount:      float64(150000+g.rand.Intn(350000)) / 100,
			DepositedAt: &depositedAt,
		})
	}
	return deposits
}

func (g *Generator) randomName() (string, string) {
	return g.nameFragments.first[g.rand.Intn(len(g.nameFragments.first))],
		g.nameFragments.last[g.rand.Intn(len(g.nameFragments.last))]
}

func (g *Generator) randomEmail(first, last string) string {
	domain := g.nameFragments.domains[g.rand.Intn(len(g.nameFragments.domains))]
	return fmt.Sprintf("%s.%s%d@%s", first, last, g.rand.Intn(100), domain)
}

type notificationTemplate struct {
	title   string
	message string
	kind    string
}

type nameFragments struct {
	first         []string
	last          []string
	domains       []string
	cards         []string
	incomeSources []string
	notifications []notificationTemplate
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:         []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:          []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
		domains:       []string{"example.com", "mail.com", "inbox.net", "post.org"},
		cards:         []string{"Everyday Rewards", "Travel Plus", "Cash Back", "Student Starter", "Platinum", "Store Card", "Gas Rewards"},
		incomeSources: []string{"Payroll", "Freelance", "Side Gig", "Tax Refund", "Bonus"},
		notifications: []notificationTemplate{
			{title: "Payment due soon", message: "A card payment is due in 3 days.", kind: "alert"},
			{title: "High utilization", message: "One of your cards is above 50% utilization.", kind: "alert"},
			{title: "Score updated", message: "Your credit score changed this month.", kind: "info"},
			{title: "Payment received", message: "Thanks, your last payment posted on time.", kind: "success"},
			{title: "Utilization tip", message: "Keeping utilization under 30% helps your score.", kind: "info"},
		},
	}
}
