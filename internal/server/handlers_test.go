package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/vanshika/creditguardian/internal/display"
	"github.com/vanshika/creditguardian/internal/domain"
	"github.com/vanshika/creditguardian/internal/repository"
	"github.com/vanshika/creditguardian/internal/service"
	"github.com/vanshika/creditguardian/internal/session"
)

type testAPI struct {
	handler  http.Handler
	repo     *repository.Memory
	observer *recordingRequestObserver
}

type recordingRequestObserver struct {
	mu          sync.Mutex
	routes      map[string]int
	rateLimited int
}

func (o *recordingRequestObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.routes[method+" "+route]++
}

func (o *recordingRequestObserver) RateLimited() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rateLimited++
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func newTestAPI(t *testing.T, mutate func(*RouterDependencies)) *testAPI {
	t.Helper()

	repo := repository.NewMemory()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err := repo.UpsertAccount(context.Background(), domain.Account{
		User: domain.User{ID: "USR-DEMO", FullName: "Demo User", Email: "demo@example.com", CreditScore: 650, CreatedAt: created, UpdatedAt: created},
		Cards: []domain.Card{
			{ID: "CARD-1", UserID: "USR-DEMO", Name: "Everyday", Balance: 500, Limit: 1000, APR: 20},
			{ID: "CARD-2", UserID: "USR-DEMO", Name: "Travel", Balance: 1000, Limit: 1000, APR: 25},
		},
		Notifications: []domain.Notification{
			{ID: "NTF-1", UserID: "USR-DEMO", Title: "Payment due", Message: "Travel card due in 3 days", Kind: domain.NotificationAlert, CreatedAt: created},
		},
		Deposits: []domain.IncomeDeposit{
			{ID: "DEP-1", UserID: "USR-DEMO", Source: "Payroll", Amount: 2500, DepositedAt: created},
			{ID: "DEP-2", UserID: "USR-DEMO", Source: "Freelance", Amount: 400.5, DepositedAt: created.Add(time.Hour)},
		},
	})
	if err != nil {
		t.Fatalf("seed repository: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := session.NewManager(session.NewMemoryStore(), session.Credentials{Username: "demo", Password: "demo", UserID: "USR-DEMO"}, time.Hour)
	api := NewAPIHandlers(
		logger,
		service.NewDashboardService(repo),
		service.NewSimulationService(repo, repo, display.NewJitter(7)),
		service.NewPayoffService(repo),
		sessions,
	)

	observer := &recordingRequestObserver{routes: map[string]int{}}
	deps := RouterDependencies{
		Health:   StorageHealthService{Checks: map[string]Pinger{"accounts": repo}},
		API:      api,
		Sessions: sessions,
		Metrics:  observer,
	}
	if mutate != nil {
		mutate(&deps)
	}
	return &testAPI{handler: NewRouter(logger, deps), repo: repo, observer: observer}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "demo", "password": "demo"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload loginResponse
	decodeBody(t, rec, &payload)
	if payload.Token == "" || payload.UserID != "USR-DEMO" {
		t.Fatalf("unexpected login payload: %+v", payload)
	}
	return payload.Token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t, nil)

	rec := api.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "demo", "password": "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/auth/login", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Fatalf("expected Allow POST, got %q", allow)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	api := newTestAPI(t, nil)

	for _, path := range []string{"/profile", "/cards", "/notifications", "/deposits", "/simulations"} {
		rec := api.do(t, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected status 401, got %d", path, rec.Code)
		}
	}

	rec := api.do(t, http.MethodGet, "/profile", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for unknown token, got %d", rec.Code)
	}
}

func TestHandleProfile(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.login(t)

	rec := api.do(t, http.MethodGet, "/profile", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload profileResponse
	decodeBody(t, rec, &payload)
	if payload.User.ID != "USR-DEMO" || payload.User.CreditScore != 650 {
		t.Fatalf("unexpected user: %+v", payload.User)
	}
	if payload.UtilizationOverall != 75 {
		t.Fatalf("expected overall utilization 75, got %v", payload.UtilizationOverall)
	}
	if len(payload.Cards) != 2 || payload.Cards[0].Utilization != 50 || payload.Cards[1].Utilization != 100 {
		t.Fatalf("unexpected cards: %+v", payload.Cards)
	}
	if payload.UnreadNotifications != 1 {
		t.Fatalf("expected 1 unread notification, got %d", payload.UnreadNotifications)
	}
	if payload.DepositsTotal != 2900.5 {
		t.Fatalf("expected deposits total 2900.5, got %v", payload.DepositsTotal)
	}
}

func TestHandleCards(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.login(t)

	rec := api.do(t, http.MethodPost, "/cards", token, map[string]any{"name": "Store", "balance": 100, "limit": 0})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for zero limit, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodPost, "/cards", token, map[string]any{"name": "Store", "balance": 100, "limit": 400, "apr": 18.5})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created cardResponse
	decodeBody(t, rec, &created)
	if created.ID == "" || created.Utilization != 25 {
		t.Fatalf("unexpected card: %+v", created)
	}

	rec = api.do(t, http.MethodGet, "/cards", token, nil)
	var list listCardsResponse
	decodeBody(t, rec, &list)
	if len(list.Cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(list.Cards))
	}

	rec = api.do(t, http.MethodPost, "/cards", token, map[string]any{"name": "Store", "colour": "red"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown field, got %d", rec.Code)
	}
}

func TestHandleNotificationRead(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.login(t)

	rec := api.do(t, http.MethodPost, "/notifications/NTF-404/read", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodPost, "/notifications/NTF-1/read", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = api.do(t, http.MethodGet, "/notifications", token, nil)
	var payload listNotificationsResponse
	decodeBody(t, rec, &payload)
	if payload.Unread != 0 || len(payload.Notifications) != 1 || !payload.Notifications[0].Read {
		t.Fatalf("expected notification marked read, got %+v", payload)
	}

	rec = api.do(t, http.MethodPost, "/notifications/NTF-1/archive", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown action, got %d", rec.Code)
	}
}

func TestHandleDeposits(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.login(t)

	rec := api.do(t, http.MethodGet, "/deposits", token, nil)
	var payload listDepositsResponse
	decodeBody(t, rec, &payload)
	if payload.Total != 2900.5 || len(payload.Deposits) != 2 {
		t.Fatalf("unexpected deposits: %+v", payload)
	}
	if payload.Deposits[0].ID != "DEP-2" {
		t.Fatalf("expected newest deposit first, got %s", payload.Deposits[0].ID)
	}
}

func TestHandleProject(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.login(t)

	rec := api.do(t, http.MethodPost, "/simulations/project", token, map[string]any{"payDownDebt": 2000})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload projectionResponse
	decodeBody(t, rec, &payload)
	if payload.BaseScore != 650 || payload.ProjectedScore != 675 || payload.Change != 25 {
		t.Fatalf("unexpected projection: %+v", payload)
	}
	if len(payload.Breakdown) == 0 {
		t.Fatalf("expected breakdown entries")
	}

	rec = api.do(t, http.MethodPost, "/simulations/project", token, map[string]any{"payDownDebt": 20000})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleRecommend(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.login(t)

	rec := api.do(t, http.MethodPost, "/simulations/recommend", token, map[string]string{"goal": "credit_mix"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload recommendationResponse
	decodeBody(t, rec, &payload)
	if payload.PointImpact != 15 || payload.TimeframeLabel != "within 3-6 months" {
		t.Fatalf("unexpected recommendation: %+v", payload)
	}
	if payload.PotentialGain.Low < 13 || payload.PotentialGain.Low > 15 || payload.PotentialGain.High < 15 || payload.PotentialGain.High > 17 {
		t.Fatalf("gain range out of bounds: %+v", payload.PotentialGain)
	}

	rec = api.do(t, http.MethodPost, "/simulations/recommend", token, map[string]string{"goal": "win_lottery"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestHandleSimulations(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.login(t)

	rec := api.do(t, http.MethodPost, "/simulations", token, map[string]any{"onTimePaymentMonths": 3, "opensNewCard": true})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var saved savedSimulationResponse
	decodeBody(t, rec, &saved)
	if saved.ID == "" || saved.ProjectedScore != 655 {
		t.Fatalf("unexpected snapshot: %+v", saved)
	}

	rec = api.do(t, http.MethodGet, "/simulations?limit=5", token, nil)
	var list listSimulationsResponse
	decodeBody(t, rec, &list)
	if len(list.Simulations) != 1 || list.Simulations[0].ID != saved.ID {
		t.Fatalf("unexpected history: %+v", list)
	}

	rec = api.do(t, http.MethodGet, "/simulations?limit=abc", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestHandlePayoff(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.login(t)

	rec := api.do(t, http.MethodPost, "/payoff", token, map[string]any{"strategy": "compare", "monthlyBudget": 300})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var cmp payoffComparisonResponse
	decodeBody(t, rec, &cmp)
	if cmp.Avalanche.Months == 0 || cmp.Snowball.Months == 0 {
		t.Fatalf("expected both plans, got %+v", cmp)
	}
	if cmp.Avalanche.Order[0] != "Travel" || cmp.Snowball.Order[0] != "Everyday" {
		t.Fatalf("unexpected orders: %v / %v", cmp.Avalanche.Order, cmp.Snowball.Order)
	}
	if cmp.Avalanche.Schedule != nil {
		t.Fatalf("schedule should be omitted unless requested")
	}

	rec = api.do(t, http.MethodPost, "/payoff", token, map[string]any{
		"strategy":        "snowball",
		"monthlyBudget":   100,
		"includeSchedule": true,
		"debts":           []map[string]any{{"name": "Loan", "balance": 300, "apr": 0, "minimumPayment": 50}},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var plan payoffPlanResponse
	decodeBody(t, rec, &plan)
	if plan.Months != 3 || len(plan.Schedule) != 3 {
		t.Fatalf("expected 3 month plan, got %+v", plan)
	}

	rec = api.do(t, http.MethodPost, "/payoff", token, map[string]any{"strategy": "avalanche", "monthlyBudget": 10})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for budget below minimums, got %d", rec.Code)
	}
}

func TestLogoutEndsSession(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.login(t)

	rec := api.do(t, http.MethodPost, "/auth/logout", token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	rec = api.do(t, http.MethodGet, "/profile", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 after logout, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t, nil)
	rec := api.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	degraded := newTestAPI(t, func(d *RouterDependencies) {
		d.Health = StorageHealthService{Checks: map[string]Pinger{"graph": failingPinger{}}}
	})
	rec = degraded.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	var payload map[string]any
	decodeBody(t, rec, &payload)
	if payload["status"] != "degraded" {
		t.Fatalf("expected degraded status, got %v", payload["status"])
	}
}

func TestRateLimit(t *testing.T) {
	api := newTestAPI(t, func(d *RouterDependencies) {
		d.RateLimit = RateLimitConfig{RPS: 0.001, Burst: 2}
	})

	for i := 0; i < 2; i++ {
		if rec := api.do(t, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i, rec.Code)
		}
	}
	rec := api.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}
	if api.observer.rateLimited != 1 {
		t.Fatalf("expected 1 rate limited observation, got %d", api.observer.rateLimited)
	}
}

func TestRateLimitEvictsIdleClients(t *testing.T) {
	limiter := newIPRateLimiter(RateLimitConfig{RPS: 1, Burst: 1}, noopRequestObserver{})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.nowFn = func() time.Time { return now }
	limiter.lastSweep.Store(now.UnixNano())
	handler := limiter.middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	hit := func(addr string) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = addr
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	hit("10.0.0.1:4000")
	now = now.Add(5 * time.Minute)
	hit("10.0.0.2:4000")
	if got := trackedClients(limiter); got != 2 {
		t.Fatalf("expected 2 tracked clients, got %d", got)
	}

	now = now.Add(6 * time.Minute)
	hit("10.0.0.3:4000")
	if _, ok := limiter.limiters.Load("10.0.0.1"); ok {
		t.Fatalf("expected idle client 10.0.0.1 to be evicted")
	}
	if _, ok := limiter.limiters.Load("10.0.0.2"); !ok {
		t.Fatalf("expected recent client 10.0.0.2 to be kept")
	}
	if got := trackedClients(limiter); got != 2 {
		t.Fatalf("expected 2 tracked clients after sweep, got %d", got)
	}
}

func trackedClients(l *ipRateLimiter) int {
	n := 0
	l.limiters.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

func TestRequestMetricsUseRoutePattern(t *testing.T) {
	api := newTestAPI(t, nil)
	token := api.login(t)

	api.do(t, http.MethodPost, "/notifications/NTF-1/read", token, nil)
	api.do(t, http.MethodPost, "/notifications/NTF-2/read", token, nil)

	if got := api.observer.routes["POST /notifications/"]; got != 2 {
		t.Fatalf("expected 2 observations for the notification route, got %d (%v)", got, api.observer.routes)
	}
	if got := api.observer.routes["POST /auth/login"]; got != 1 {
		t.Fatalf("expected 1 login observation, got %d", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t, func(d *RouterDependencies) {
		d.AllowedOrigins = []string{"http://localhost:3000"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/profile", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow origin %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/profile", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"abc":          "",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		if got := bearerToken(req); got != want {
			t.Fatalf("bearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
