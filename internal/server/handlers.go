package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vanshika/creditguardian/internal/domain"
	"github.com/vanshika/creditguardian/internal/service"
	"github.com/vanshika/creditguardian/internal/session"
)

// APIHandlers groups HTTP handlers for the dashboard and simulators.
type APIHandlers struct {
	logger      *slog.Logger
	dashboard   *service.DashboardService
	simulations *service.SimulationService
	payoff      *service.PayoffService
	sessions    *session.Manager
}

// NewAPIHandlers constructs the API handler collection.
func NewAPIHandlers(logger *slog.Logger, dashboard *service.DashboardService, simulations *service.SimulationService, payoff *service.PayoffService, sessions *session.Manager) *APIHandlers {
	return &APIHandlers{
		logger:      logger,
		dashboard:   dashboard,
		simulations: simulations,
		payoff:      payoff,
		sessions:    sessions,
	}
}

func (h *APIHandlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if h.sessions == nil {
		writeError(w, http.StatusServiceUnavailable, "login disabled")
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := h.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, "login", err)
		return
	}
	respondJSON(w, http.StatusOK, loginResponse{
		Token:     sess.Token,
		UserID:    sess.UserID,
		ExpiresAt: formatTime(sess.ExpiresAt),
	})
}

func (h *APIHandlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	sess, _ := session.FromContext(r.Context())
	if err := h.sessions.Logout(r.Context(), sess.Token); err != nil {
		h.writeServiceError(w, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandlers) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	dash, err := h.dashboard.Profile(r.Context(), userID(r))
	if err != nil {
		h.writeServiceError(w, "load profile", err)
		return
	}

	cards := make([]cardResponse, 0, len(dash.Cards))
	for _, c := range dash.Cards {
		cards = append(cards, toCardResponse(c))
	}
	respondJSON(w, http.StatusOK, profileResponse{
		User: userResponse{
			ID:          dash.User.ID,
			FullName:    dash.User.FullName,
			Email:       dash.User.Email,
			CreditScore: dash.User.CreditScore,
			CreatedAt:   formatTime(dash.User.CreatedAt),
			UpdatedAt:   formatTime(dash.User.UpdatedAt),
		},
		UtilizationOverall:  dash.Profile.UtilizationOverall,
		Cards:               cards,
		UnreadNotifications: dash.UnreadNotifications,
		DepositsTotal:       dash.DepositsTotal,
	})
}

func (h *APIHandlers) handleCards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cards, err := h.dashboard.ListCards(r.Context(), userID(r))
		if err != nil {
			h.writeServiceError(w, "list cards", err)
			return
		}
		out := make([]cardResponse, 0, len(cards))
		for _, c := range cards {
			out = append(out, toCardResponse(c))
		}
		respondJSON(w, http.StatusOK, listCardsResponse{Cards: out})
	case http.MethodPost:
		var req cardRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		card, err := h.dashboard.AddCard(r.Context(), userID(r), service.CardInput{
			Name:    req.Name,
			Balance: req.Balance,
			Limit:   req.Limit,
			APR:     req.APR,
		})
		if err != nil {
			h.writeServiceError(w, "add card", err)
			return
		}
		respondJSON(w, http.StatusCreated, toCardResponse(card))
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *APIHandlers) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	notifications, err := h.dashboard.ListNotifications(r.Context(), userID(r))
	if err != nil {
		h.writeServiceError(w, "list notifications", err)
		return
	}

	out := make([]notificationResponse, 0, len(notifications))
	unread := 0
	for _, n := range notifications {
		if !n.Read {
			unread++
		}
		out = append(out, notificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Kind:      string(n.Kind),
			Read:      n.Read,
			CreatedAt: formatTime(n.CreatedAt),
		})
	}
	respondJSON(w, http.StatusOK, listNotificationsResponse{Notifications: out, Unread: unread})
}

// handleNotificationRead serves POST /notifications/{id}/read.
func (h *APIHandlers) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/notifications/")
	id, action, ok := strings.Cut(rest, "/")
	if !ok || action != "read" || id == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	if err := h.dashboard.MarkNotificationRead(r.Context(), userID(r), id); err != nil {
		h.writeServiceError(w, "mark notification read", err)
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Status: "ok", ID: id})
}

func (h *APIHandlers) handleDeposits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	deposits, total, err := h.dashboard.ListDeposits(r.Context(), userID(r))
	if err != nil {
		h.writeServiceError(w, "list deposits", err)
		return
	}

	out := make([]depositResponse, 0, len(deposits))
	for _, d := range deposits {
		out = append(out, depositResponse{
			ID:          d.ID,
			Source:      d.Source,
			Amount:      d.Amount,
			DepositedAt: formatTime(d.DepositedAt),
		})
	}
	respondJSON(w, http.StatusOK, listDepositsResponse{Deposits: out, Total: total})
}

func (h *APIHandlers) handleProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.simulations.Project(r.Context(), userID(r), req.toAction())
	if err != nil {
		h.writeServiceError(w, "project score", err)
		return
	}

	effects := make([]effectResponse, 0, len(result.Breakdown))
	for _, e := range result.Breakdown {
		effects = append(effects, effectResponse{Label: e.Label, Points: e.Points})
	}
	respondJSON(w, http.StatusOK, projectionResponse{
		BaseScore:      result.Score.BaseScore,
		ProjectedScore: result.Score.ProjectedScore,
		Change:         result.Score.ProjectedScore - result.Score.BaseScore,
		Breakdown:      effects,
	})
}

func (h *APIHandlers) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req recommendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.simulations.Recommend(r.Context(), userID(r), req.Goal)
	if err != nil {
		h.writeServiceError(w, "recommend", err)
		return
	}

	rec := result.Recommendation
	respondJSON(w, http.StatusOK, recommendationResponse{
		Goal:           string(rec.Goal),
		ActionLabel:    rec.ActionLabel,
		Description:    rec.Description,
		PointImpact:    rec.PointImpact,
		TimeframeLabel: string(rec.Timeframe),
		Amount:         rec.Amount,
		CardName:       rec.CardName,
		PotentialGain:  gainResponse{Low: result.Gain.Low, High: result.Gain.High},
	})
}

func (h *APIHandlers) handleSimulations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit, err := parseLimit(r.URL.Query().Get("limit"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		sims, err := h.simulations.History(r.Context(), userID(r), limit)
		if err != nil {
			h.writeServiceError(w, "list simulations", err)
			return
		}
		out := make([]savedSimulationResponse, 0, len(sims))
		for _, sim := range sims {
			out = append(out, toSavedSimulationResponse(sim))
		}
		respondJSON(w, http.StatusOK, listSimulationsResponse{Simulations: out})
	case http.MethodPost:
		var req actionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		sim, err := h.simulations.Save(r.Context(), userID(r), req.toAction())
		if err != nil {
			h.writeServiceError(w, "save simulation", err)
			return
		}
		respondJSON(w, http.StatusCreated, toSavedSimulationResponse(sim))
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *APIHandlers) handlePayoff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req payoffRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	debts := make([]domain.Debt, 0, len(req.Debts))
	for _, d := range req.Debts {
		debts = append(debts, domain.Debt{
			Name:           d.Name,
			Balance:        d.Balance,
			APR:            d.APR,
			MinimumPayment: d.MinimumPayment,
		})
	}

	result, err := h.payoff.Plan(r.Context(), userID(r), service.PayoffRequest{
		Strategy:      req.Strategy,
		MonthlyBudget: req.MonthlyBudget,
		Debts:         debts,
	})
	if err != nil {
		h.writeServiceError(w, "payoff plan", err)
		return
	}

	if result.Comparison != nil {
		respondJSON(w, http.StatusOK, payoffComparisonResponse{
			Avalanche:     toPayoffPlanResponse(result.Comparison.Avalanche, req.IncludeSchedule),
			Snowball:      toPayoffPlanResponse(result.Comparison.Snowball, req.IncludeSchedule),
			InterestSaved: result.Comparison.InterestSaved,
			MonthsSaved:   result.Comparison.MonthsSaved,
		})
		return
	}
	respondJSON(w, http.StatusOK, toPayoffPlanResponse(*result.Plan, req.IncludeSchedule))
}

// writeServiceError maps domain errors to status codes; anything unrecognised is logged and hidden.
func (h *APIHandlers) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrInvalidCredentials), errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		h.logger.Error(op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type cardRequest struct {
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
	Limit   float64 `json:"limit"`
	APR     float64 `json:"apr"`
}

type actionRequest struct {
	PayDownDebt         float64 `json:"payDownDebt"`
	OpensNewCard        bool    `json:"opensNewCard"`
	OnTimePaymentMonths int     `json:"onTimePaymentMonths"`
	MissedPayments      int     `json:"missedPayments"`
	ClosesOldestAccount bool    `json:"closesOldestAccount"`
}

type recommendRequest struct {
	Goal string `json:"goal"`
}

type payoffRequest struct {
	Strategy        string        `json:"strategy"`
	MonthlyBudget   float64       `json:"monthlyBudget"`
	Debts           []debtRequest `json:"debts"`
	IncludeSchedule bool          `json:"includeSchedule"`
}

type debtRequest struct {
	Name           string  `json:"name"`
	Balance        float64 `json:"balance"`
	APR            float64 `json:"apr"`
	MinimumPayment float64 `json:"minimumPayment"`
}

type loginResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	ExpiresAt string `json:"expiresAt"`
}

type userResponse struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	CreditScore int    `json:"creditScore"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

type cardResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Balance     float64 `json:"balance"`
	Limit       float64 `json:"limit"`
	Utilization float64 `json:"utilization"`
	APR         float64 `json:"apr"`
}

type profileResponse struct {
	User                userResponse   `json:"user"`
	UtilizationOverall  float64        `json:"utilizationOverall"`
	Cards               []cardResponse `json:"cards"`
	UnreadNotifications int            `json:"unreadNotifications"`
	DepositsTotal       float64        `json:"depositsTotal"`
}

type listCardsResponse struct {
	Cards []cardResponse `json:"cards"`
}

type notificationResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Kind      string `json:"kind"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type listNotificationsResponse struct {
	Notifications []notificationResponse `json:"notifications"`
	Unread        int                    `json:"unread"`
}

type depositResponse struct {
	ID          string  `json:"id"`
	Source      string  `json:"source"`
	Amount      float64 `json:"amount"`
	DepositedAt string  `json:"depositedAt,omitempty"`
}

type listDepositsResponse struct {
	Deposits []depositResponse `json:"deposits"`
	Total    float64           `json:"total"`
}

type effectResponse struct {
	Label  string `json:"label"`
	Points int    `json:"points"`
}

type projectionResponse struct {
	BaseScore      int              `json:"baseScore"`
	ProjectedScore int              `json:"projectedScore"`
	Change         int              `json:"change"`
	Breakdown      []effectResponse `json:"breakdown"`
}

type gainResponse struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

type recommendationResponse struct {
	Goal           string       `json:"goal"`
	ActionLabel    string       `json:"actionLabel"`
	Description    string       `json:"description"`
	PointImpact    int          `json:"pointImpact"`
	TimeframeLabel string       `json:"timeframeLabel"`
	Amount         float64      `json:"amount,omitempty"`
	CardName       string       `json:"cardName,omitempty"`
	PotentialGain  gainResponse `json:"potentialGain"`
}

type savedSimulationResponse struct {
	ID                  string  `json:"id"`
	BaseScore           int     `json:"baseScore"`
	ProjectedScore      int     `json:"projectedScore"`
	PayDownDebt         float64 `json:"payDownDebt"`
	OpensNewCard        bool    `json:"opensNewCard"`
	OnTimePaymentMonths int     `json:"onTimePaymentMonths"`
	MissedPayments      int     `json:"missedPayments"`
	ClosesOldestAccount bool    `json:"closesOldestAccount"`
	CreatedAt           string  `json:"createdAt"`
}

type listSimulationsResponse struct {
	Simulations []savedSimulationResponse `json:"simulations"`
}

type debtPaymentResponse struct {
	Debt             string  `json:"debt"`
	Payment          float64 `json:"payment"`
	Interest         float64 `json:"interest"`
	RemainingBalance float64 `json:"remainingBalance"`
}

type payoffMonthResponse struct {
	Month     int                   `json:"month"`
	TotalPaid float64               `json:"totalPaid"`
	Payments  []debtPaymentResponse `json:"payments"`
}

type payoffPlanResponse struct {
	Strategy      string                `json:"strategy"`
	Order         []string              `json:"order"`
	Months        int                   `json:"months"`
	TotalDebt     float64               `json:"totalDebt"`
	TotalInterest float64               `json:"totalInterest"`
	TotalPaid     float64               `json:"totalPaid"`
	Schedule      []payoffMonthResponse `json:"schedule,omitempty"`
}

type payoffComparisonResponse struct {
	Avalanche     payoffPlanResponse `json:"avalanche"`
	Snowball      payoffPlanResponse `json:"snowball"`
	InterestSaved float64            `json:"interestSaved"`
	MonthsSaved   int                `json:"monthsSaved"`
}

type statusResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

func (req actionRequest) toAction() domain.SimulationAction {
	return domain.SimulationAction{
		PayDownDebt:         req.PayDownDebt,
		OpensNewCard:        req.OpensNewCard,
		OnTimePaymentMonths: req.OnTimePaymentMonths,
		MissedPayments:      req.MissedPayments,
		ClosesOldestAccount: req.ClosesOldestAccount,
	}
}

func toCardResponse(c domain.Card) cardResponse {
	return cardResponse{
		ID:          c.ID,
		Name:        c.Name,
		Balance:     c.Balance,
		Limit:       c.Limit,
		Utilization: c.Utilization,
		APR:         c.APR,
	}
}

func toSavedSimulationResponse(sim domain.SavedSimulation) savedSimulationResponse {
	return savedSimulationResponse{
		ID:                  sim.ID,
		BaseScore:           sim.BaseScore,
		ProjectedScore:      sim.ProjectedScore,
		PayDownDebt:         sim.PayDownDebt,
		OpensNewCard:        sim.OpensNewCard,
		OnTimePaymentMonths: sim.OnTimePaymentMonths,
		MissedPayments:      sim.MissedPayments,
		ClosesOldestAccount: sim.ClosesOldestAccount,
		CreatedAt:           formatTime(sim.CreatedAt),
	}
}

func toPayoffPlanResponse(plan domain.PayoffPlan, includeSchedule bool) payoffPlanResponse {
	resp := payoffPlanResponse{
		Strategy:      string(plan.Strategy),
		Order:         plan.Order,
		Months:        plan.Months,
		TotalDebt:     plan.TotalDebt,
		TotalInterest: plan.TotalInterest,
		TotalPaid:     plan.TotalPaid,
	}
	if !includeSchedule {
		return resp
	}
	resp.Schedule = make([]payoffMonthResponse, 0, len(plan.Schedule))
	for _, month := range plan.Schedule {
		payments := make([]debtPaymentResponse, 0, len(month.Payments))
		for _, p := range month.Payments {
			payments = append(payments, debtPaymentResponse{
				Debt:             p.DebtName,
				Payment:          p.Payment,
				Interest:         p.Interest,
				RemainingBalance: p.RemainingBalance,
			})
		}
		resp.Schedule = append(resp.Schedule, payoffMonthResponse{
			Month:     month.Month,
			TotalPaid: month.TotalPaid,
			Payments:  payments,
		})
	}
	return resp
}

func userID(r *http.Request) string {
	sess, _ := session.FromContext(r.Context())
	return sess.UserID
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body required")
		}
		return fmt.Errorf("invalid JSON payload: %w", err)
	}
	return nil
}

func parseLimit(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(value)
	if err != nil || limit < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}
	return limit, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
