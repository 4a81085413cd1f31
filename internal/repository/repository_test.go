package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vanshika/creditguardian/internal/domain"
	"github.com/vanshika/creditguardian/internal/graph"
)

func TestRepository_UpsertAccount(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)

	now := time.Date(2024, 4, 20, 12, 0, 0, 0, time.UTC)
	account := domain.Account{
		User: domain.User{
			ID:          "USR-001",
			FullName:    "Jane Doe",
			Email:       "jane@example.com",
			CreditScore: 712,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Cards: []domain.Card{
			{ID: "CARD-1", UserID: "USR-001", Name: "Sapphire", Balance: 900, Limit: 3000, APR: 24.99, Utilization: 30},
			{ID: "CARD-2", UserID: "USR-001", Name: "Freedom", Balance: 100, Limit: 1000, APR: 19.99},
		},
		Notifications: []domain.Notification{
			{ID: "N-1", UserID: "USR-001", Title: "Payment due", Kind: domain.NotificationAlert, CreatedAt: now},
		},
		Deposits: []domain.IncomeDeposit{
			{ID: "D-1", UserID: "USR-001", Source: "Payroll", Amount: 2100, DepositedAt: now},
		},
	}

	if err := repo.UpsertAccount(context.Background(), account); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	calls := mem.WriteCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 write query, got %d", len(calls))
	}
	call := calls[0]
	if call.Query != upsertAccountCypher {
		t.Fatalf("unexpected query\nexpected:\n%s\ngot:\n%s", upsertAccountCypher, call.Query)
	}
	if call.Params["userId"] != "USR-001" {
		t.Errorf("expected userId USR-001, got %v", call.Params["userId"])
	}

	props, ok := call.Params["props"].(map[string]any)
	if !ok {
		t.Fatalf("expected props map, got %T", call.Params["props"])
	}
	if props["creditScore"] != 712 {
		t.Errorf("creditScore mismatch: got %v", props["creditScore"])
	}
	if props["createdAt"] != "2024-04-20T12:00:00Z" {
		t.Errorf("createdAt mismatch: got %v", props["createdAt"])
	}

	cards, ok := call.Params["cards"].([]map[string]any)
	if !ok || len(cards) != 2 {
		t.Fatalf("expected 2 card params, got %#v", call.Params["cards"])
	}
	if cards[1]["position"] != 1 {
		t.Errorf("expected second card at position 1, got %v", cards[1]["position"])
	}
	cardProps := cards[0]["props"].(map[string]any)
	if _, stored := cardProps["utilization"]; stored {
		t.Errorf("utilization must not be persisted")
	}
	if cardProps["creditLimit"] != 3000.0 {
		t.Errorf("creditLimit mismatch: got %v", cardProps["creditLimit"])
	}

	notes := call.Params["notifications"].([]map[string]any)
	if notes[0]["props"].(map[string]any)["kind"] != "alert" {
		t.Errorf("expected notification kind alert, got %v", notes[0]["props"])
	}
}

func TestRepository_UpsertAccountRequiresID(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	if err := repo.UpsertAccount(context.Background(), domain.Account{}); err == nil {
		t.Fatalf("expected error for missing user id")
	}
}

func TestRepository_GetUser(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.StubRead("MATCH (u:User {userId: $userId})", graph.Result{Records: []graph.Record{{
		"userId":      "USR-001",
		"fullName":    "Jane Doe",
		"email":       "jane@example.com",
		"creditScore": int64(688),
		"createdAt":   "2024-04-20T12:00:00Z",
		"updatedAt":   "2024-04-21T12:00:00Z",
	}}})
	repo := New(mem)

	user, err := repo.GetUser(context.Background(), "USR-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.CreditScore != 688 {
		t.Errorf("expected score 688, got %d", user.CreditScore)
	}
	if user.UpdatedAt.Day() != 21 {
		t.Errorf("expected updatedAt parsed, got %v", user.UpdatedAt)
	}

	reads := mem.ReadCalls()
	if len(reads) != 1 || reads[0].Params["userId"] != "USR-001" {
		t.Fatalf("unexpected read calls %+v", reads)
	}
}

func TestRepository_GetUserNotFound(t *testing.T) {
	repo := New(graph.NewMemoryClient())
	_, err := repo.GetUser(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_ListCards(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"cardId": "CARD-1", "name": "Sapphire", "balance": 900.0, "creditLimit": int64(3000), "apr": 24.99},
		{"cardId": "CARD-2", "name": "Freedom", "balance": int64(0), "creditLimit": 1000.0, "apr": 19.99},
	}})
	repo := New(mem)

	cards, err := repo.ListCards(context.Background(), "USR-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if cards[0].Limit != 3000 || cards[0].UserID != "USR-001" {
		t.Errorf("unexpected first card %+v", cards[0])
	}
	if !strings.Contains(mem.ReadCalls()[0].Query, "ORDER BY c.position") {
		t.Errorf("expected cards ordered by insertion position")
	}
}

func TestRepository_UpsertCard(t *testing.T) {
	mem := graph.NewMemoryClient()
	repo := New(mem)
	card := domain.Card{ID: "CARD-9", UserID: "USR-001", Name: "Travel", Balance: 10, Limit: 100}

	if err := repo.UpsertCard(context.Background(), card); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without a matching user, got %v", err)
	}

	mem.StubWrite("MERGE (c:Card {cardId: $cardId})", graph.Result{Records: []graph.Record{{"cardId": "CARD-9"}}})
	if err := repo.UpsertCard(context.Background(), card); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	last := mem.WriteCalls()[1]
	if last.Params["cardId"] != "CARD-9" || last.Params["userId"] != "USR-001" {
		t.Errorf("unexpected params %+v", last.Params)
	}
}

func TestRepository_Notifications(t *testing.T) {
	mem := graph.NewMemoryClient()
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"notificationId": "N-1", "title": "Score up", "kind": "success", "read": true, "createdAt": "2024-04-20T12:00:00Z"},
		{"notificationId": "N-2", "title": "Payment due", "kind": "alert", "read": nil},
	}})
	repo := New(mem)

	items, err := repo.ListNotifications(context.Background(), "USR-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(items) != 2 || !items[0].Read || items[1].Read {
		t.Fatalf("unexpected notifications %+v", items)
	}
	if items[1].Kind != domain.NotificationAlert {
		t.Errorf("expected alert kind, got %s", items[1].Kind)
	}

	if err := repo.MarkNotificationRead(context.Background(), "USR-001", "N-2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unmatched notification, got %v", err)
	}
	mem.StubWrite("SET n.read = true", graph.Result{Records: []graph.Record{{"notificationId": "N-2"}}})
	if err := repo.MarkNotificationRead(context.Background(), "USR-001", "N-2"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestRepository_ListDeposits(t *testing.T) {
	mem := graph.NewMemoryClient()
	when := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	mem.PushReadResult(graph.Result{Records: []graph.Record{
		{"depositId": "D-1", "source": "Payroll", "amount": 2100.5, "depositedAt": when},
	}})
	repo := New(mem)

	items, err := repo.ListDeposits(context.Background(), "USR-001")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(items) != 1 || items[0].Amount != 2100.5 || !items[0].DepositedAt.Equal(when) {
		t.Fatalf("unexpected deposits %+v", items)
	}
}

func TestRepository_PropagatesClientErrors(t *testing.T) {
	boom := errors.New("connection reset")
	repo := New(graph.NewMemoryClient().WithError(boom))

	if _, err := repo.ListCards(context.Background(), "USR-001"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
	if err := repo.UpsertAccount(context.Background(), domain.Account{User: domain.User{ID: "USR-001"}}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped client error, got %v", err)
	}
}

func TestRepository_Ping(t *testing.T) {
	down := errors.New("unreachable")
	repo := New(graph.NewMemoryClient().WithConnectivityError(down))
	if err := repo.Ping(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected connectivity error, got %v", err)
	}
}
