package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vanshika/creditguardian/internal/domain"
	"github.com/vanshika/creditguardian/internal/graph"
)

// Repository stores accounts in the graph database.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// Ping checks the graph is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.VerifyConnectivity(ctx)
}

// GetUser loads a user node. Unknown IDs return domain.ErrNotFound.
func (r *Repository) GetUser(ctx context.Context, userID string) (domain.User, error) {
	res, err := r.client.ExecuteRead(ctx, getUserCypher, map[string]any{"userId": userID})
	if err != nil {
		return domain.User{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	record, ok := res.First()
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}

	user := domain.User{
		ID:          toString(record["userId"]),
		FullName:    toString(record["fullName"]),
		Email:       toString(record["email"]),
		CreditScore: toInt(record["creditScore"]),
	}
	if created := toTimePtr(record["createdAt"]); created != nil {
		user.CreatedAt = *created
	}
	if updated := toTimePtr(record["updatedAt"]); updated != nil {
		user.UpdatedAt = *updated
	}
	return user, nil
}

// UpsertAccount merges the user node and every card, notification and deposit hanging off it.
func (r *Repository) UpsertAccount(ctx context.Context, account domain.Account) error {
	if account.User.ID == "" {
		return errors.New("user id is required")
	}

	cards := make([]map[string]any, 0, len(account.Cards))
	for i, c := range account.Cards {
		cards = append(cards, map[string]any{
			"id":       c.ID,
			"position": i,
			"props":    cardProperties(c),
		})
	}
	notifications := make([]map[string]any, 0, len(account.Notifications))
	for _, n := range account.Notifications {
		notifications = append(notifications, map[string]any{
			"id":    n.ID,
			"props": notificationProperties(n),
		})
	}
	deposits := make([]map[string]any, 0, len(account.Deposits))
	for _, d := range account.Deposits {
		deposits = append(deposits, map[string]any{
			"id":    d.ID,
			"props": depositProperties(d),
		})
	}

	params := map[string]any{
		"userId":        account.User.ID,
		"props":         userProperties(account.User),
		"cards":         cards,
		"notifications": notifications,
		"deposits":      deposits,
	}
	if _, err := r.client.ExecuteWrite(ctx, upsertAccountCypher, params); err != nil {
		return fmt.Errorf("upsert account %s: %w", account.User.ID, err)
	}
	return nil
}

// ListCards returns the user's cards in the order they were added.
func (r *Repository) ListCards(ctx context.Context, userID string) ([]domain.Card, error) {
	res, err := r.client.ExecuteRead(ctx, listCardsCypher, map[string]any{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("list cards for %s: %w", userID, err)
	}

	cards := make([]domain.Card, 0, len(res.Records))
	for _, record := range res.Records {
		cards = append(cards, domain.Card{
			ID:      toString(record["cardId"]),
			UserID:  userID,
			Name:    toString(record["name"]),
			Balance: toFloat64(record["balance"]),
			Limit:   toFloat64(record["creditLimit"]),
			APR:     toFloat64(record["apr"]),
		})
	}
	return cards, nil
}

// UpsertCard merges one card under an existing user.
func (r *Repository) UpsertCard(ctx context.Context, card domain.Card) error {
	if card.ID == "" {
		return errors.New("card id is required")
	}
	params := map[string]any{
		"userId": card.UserID,
		"cardId": card.ID,
		"props":  cardProperties(card),
	}
	res, err := r.client.ExecuteWrite(ctx, upsertCardCypher, params)
	if err != nil {
		return fmt.Errorf("upsert card %s: %w", card.ID, err)
	}
	if _, ok := res.First(); !ok {
		return fmt.Errorf("user %s: %w", card.UserID, domain.ErrNotFound)
	}
	return nil
}

// ListNotifications returns the user's notifications, newest first.
func (r *Repository) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	res, err := r.client.ExecuteRead(ctx, listNotificationsCypher, map[string]any{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("list notifications for %s: %w", userID, err)
	}

	items := make([]domain.Notification, 0, len(res.Records))
	for _, record := range res.Records {
		n := domain.Notification{
			ID:      toString(record["notificationId"]),
			UserID:  userID,
			Title:   toString(record["title"]),
			Message: toString(record["message"]),
			Kind:    domain.NotificationKind(toString(record["kind"])),
			Read:    toBool(record["read"]),
		}
		if created := toTimePtr(record["createdAt"]); created != nil {
			n.CreatedAt = *created
		}
		items = append(items, n)
	}
	return items, nil
}

// MarkNotificationRead sets the read flag; unknown notifications return domain.ErrNotFound.
func (r *Repository) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	params := map[string]any{
		"userId":         userID,
		"notificationId": notificationID,
	}
	res, err := r.client.ExecuteWrite(ctx, markNotificationReadCypher, params)
	if err != nil {
		return fmt.Errorf("mark notification %s read: %w", notificationID, err)
	}
	if _, ok := res.First(); !ok {
		return fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	return nil
}

// ListDeposits returns the user's income deposits, newest first.
func (r *Repository) ListDeposits(ctx context.Context, userID string) ([]domain.IncomeDeposit, error) {
	res, err := r.client.ExecuteRead(ctx, listDepositsCypher, map[string]any{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("list deposits for %s: %w", userID, err)
	}

	items := make([]domain.IncomeDeposit, 0, len(res.Records))
	for _, record := range res.Records {
		d := domain.IncomeDeposit{
			ID:     toString(record["depositId"]),
			UserID: userID,
			Source: toString(record["source"]),
			Amount: toFloat64(record["amount"]),
		}
		if at := toTimePtr(record["depositedAt"]); at != nil {
			d.DepositedAt = *at
		}
		items = append(items, d)
	}
	return items, nil
}

func userProperties(u domain.User) map[string]any {
	props := map[string]any{
		"fullName":    u.FullName,
		"email":       u.Email,
		"creditScore": u.CreditScore,
		"updatedAt":   formatTime(u.UpdatedAt),
	}
	if !u.CreatedAt.IsZero() {
		props["createdAt"] = formatTime(u.CreatedAt)
	}
	return props
}

// utilization is derived on read and never stored.
func cardProperties(c domain.Card) map[string]any {
	return map[string]any{
		"name":        c.Name,
		"balance":     c.Balance,
		"creditLimit": c.Limit,
		"apr":         c.APR,
	}
}

func notificationProperties(n domain.Notification) map[string]any {
	return map[string]any{
		"title":     n.Title,
		"message":   n.Message,
		"kind":      string(n.Kind),
		"read":      n.Read,
		"createdAt": formatTime(n.CreatedAt),
	}
}

func depositProperties(d domain.IncomeDeposit) map[string]any {
	return map[string]any{
		"source":      d.Source,
		"amount":      d.Amount,
		"depositedAt": formatTime(d.DepositedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func toInt(val any) int {
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

func toBool(val any) bool {
	b, _ := val.(bool)
	return b
}

func toTimePtr(val any) *time.Time {
	switch v := val.(type) {
	case time.Time:
		return &v
	case string:
		if v == "" {
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &parsed
		}
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return &parsed
		}
	}
	return nil
}

const getUserCypher = `
MATCH (u:User {userId: $userId})
RETURN u.userId AS userId,
	u.fullName AS fullName,
	u.email AS email,
	u.creditScore AS creditScore,
	u.createdAt AS createdAt,
	u.updatedAt AS updatedAt
`

const upsertAccountCypher = `
MERGE (u:User {userId: $userId})
SET u += $props
WITH u
FOREACH (card IN $cards |
	MERGE (c:Card {cardId: card.id})
	SET c += card.props, c.position = card.position
	MERGE (u)-[:HOLDS]->(c)
)
FOREACH (note IN $notifications |
	MERGE (n:Notification {notificationId: note.id})
	SET n += note.props
	MERGE (u)-[:RECEIVED]->(n)
)
FOREACH (dep IN $deposits |
	MERGE (d:Deposit {depositId: dep.id})
	SET d += dep.props
	MERGE (u)-[:DEPOSITED]->(d)
)
RETURN u.userId AS userId
`

const upsertCardCypher = `
MATCH (u:User {userId: $userId})
OPTIONAL MATCH (u)-[:HOLDS]->(existing:Card)
WITH u, count(existing) AS held
MERGE (c:Card {cardId: $cardId})
ON CREATE SET c.position = held
SET c += $props
MERGE (u)-[:HOLDS]->(c)
RETURN c.cardId AS cardId
`

const listCardsCypher = `
MATCH (:User {userId: $userId})-[:HOLDS]->(c:Card)
RETURN c.cardId AS cardId,
	c.name AS name,
	c.balance AS balance,
	c.creditLimit AS creditLimit,
	c.apr AS apr
ORDER BY c.position ASC, c.cardId ASC
`

const listNotificationsCypher = `
MATCH (:User {userId: $userId})-[:RECEIVED]->(n:Notification)
RETURN n.notificationId AS notificationId,
	n.title AS title,
	n.message AS message,
	n.kind AS kind,
	n.read AS read,
	n.createdAt AS createdAt
ORDER BY n.createdAt DESC
`

const markNotificationReadCypher = `
MATCH (:User {userId: $userId})-[:RECEIVED]->(n:Notification {notificationId: $notificationId})
SET n.read = true
RETURN n.notificationId AS notificationId
`

const listDepositsCypher = `
MATCH (:User {userId: $userId})-[:DEPOSITED]->(d:Deposit)
RETURN d.depositId AS depositId,
	d.source AS source,
	d.amount AS amount,
	d.depositedAt AS depositedAt
ORDER BY d.depositedAt DESC
`
