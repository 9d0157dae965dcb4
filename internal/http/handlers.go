package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fino/internal/analytics"
	"fino/internal/backend"
	"fino/internal/core"
	"fino/internal/log"
	"fino/internal/store"
)

const (
	defaultWindow = analytics.Window30
	defaultPeriod = analytics.PeriodMonthly
)

type errorResponse struct {
	Error string `json:"error"`
}

type categoryAmount struct {
	Category string     `json:"category"`
	Amount   core.Money `json:"amount"`
}

type summaryResponse struct {
	Window           string          `json:"window"`
	Generation       uint64          `json:"generation"`
	TransactionCount int             `json:"transaction_count"`
	Income           core.Money      `json:"income"`
	Expense          core.Money      `json:"expense"`
	Balance          core.Money      `json:"balance"`
	SavingsRate      float64         `json:"savings_rate"`
	TopCategory      *categoryAmount `json:"top_category,omitempty"`

	BudgetUtilization float64 `json:"budget_utilization"`
	GoalsReached      int     `json:"goals_reached"`
	GoalsTotal        int     `json:"goals_total"`
}

type breakdownResponse struct {
	Window     string           `json:"window"`
	Generation uint64           `json:"generation"`
	Categories []categoryAmount `json:"categories"`
}

type seriesResponse struct {
	Period     string       `json:"period"`
	Generation uint64       `json:"generation"`
	Labels     []string     `json:"labels"`
	Income     []core.Money `json:"income"`
	Expense    []core.Money `json:"expense"`
}

type budgetUsage struct {
	ID          int64                  `json:"id"`
	Category    string                 `json:"category"`
	Amount      core.Money             `json:"amount"`
	Spent       core.Money             `json:"spent"`
	Remaining   core.Money             `json:"remaining"`
	Utilization float64                `json:"utilization"`
	Status      analytics.BudgetStatus `json:"status"`
}

type budgetsResponse struct {
	Window     string        `json:"window"`
	Generation uint64        `json:"generation"`
	Budgets    []budgetUsage `json:"budgets"`
	Overall    struct {
		Budgeted    core.Money `json:"budgeted"`
		Spent       core.Money `json:"spent"`
		Utilization float64    `json:"utilization"`
	} `json:"overall"`
}

type goalProgress struct {
	ID             int64                      `json:"id"`
	Title          string                     `json:"title"`
	Kind           analytics.GoalProgressKind `json:"kind"`
	Target         core.Money                 `json:"target"`
	Saved          core.Money                 `json:"saved"`
	Displayed      core.Money                 `json:"displayed"`
	Percent        float64                    `json:"percent"`
	Remaining      core.Money                 `json:"remaining"`
	Overshoot      core.Money                 `json:"overshoot"`
	MonthsToTarget float64                    `json:"months_to_target,omitempty"`
	HasEstimate    bool                       `json:"has_estimate"`
}

type goalsResponse struct {
	Generation uint64         `json:"generation"`
	Goals      []goalProgress `json:"goals"`
	Overall    struct {
		Target  core.Money `json:"target"`
		Saved   core.Money `json:"saved"`
		Percent float64    `json:"percent"`
		Reached int        `json:"reached"`
		Total   int        `json:"total"`
	} `json:"overall"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	window, err := windowParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, ok := s.currentSnapshot(w, r)
	if !ok {
		return
	}

	key := fmt.Sprintf("summary:%s:gen:%d", window, snap.Generation)
	if cached, hit := s.summaryCache.Get(key); hit {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	windowed := analytics.FilterByWindow(snap.Transactions, window, time.Now())
	totals := analytics.ComputeTotals(windowed)
	overallBudget := analytics.ComputeOverallBudget(analytics.ComputeBudgetUsage(snap.Budgets, windowed))
	overallGoals := analytics.ComputeOverallGoalProgress(snap.Goals)

	resp := summaryResponse{
		Window:            string(window),
		Generation:        snap.Generation,
		TransactionCount:  totals.TransactionCount,
		Income:            totals.Income,
		Expense:           totals.Expense,
		Balance:           core.Money{Cents: totals.Balance},
		SavingsRate:       analytics.Round1(totals.SavingsRate),
		BudgetUtilization: analytics.Round1(overallBudget.Utilization),
		GoalsReached:      overallGoals.Reached,
		GoalsTotal:        overallGoals.Total,
	}
	if top, found := analytics.TopCategory(windowed); found {
		resp.TopCategory = &categoryAmount{Category: top.Category, Amount: top.Amount}
	}

	s.summaryCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	window, err := windowParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: bad limit %q", errBadRequest, raw))
			return
		}
	}
	snap, ok := s.currentSnapshot(w, r)
	if !ok {
		return
	}

	windowed := analytics.FilterByWindow(snap.Transactions, window, time.Now())
	ranked := analytics.TopCategories(windowed, limit)

	resp := breakdownResponse{
		Window:     string(window),
		Generation: snap.Generation,
		Categories: make([]categoryAmount, 0, len(ranked)),
	}
	for _, c := range ranked {
		resp.Categories = append(resp.Categories, categoryAmount{Category: c.Category, Amount: c.Amount})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	period := defaultPeriod
	if raw := r.URL.Query().Get("period"); raw != "" {
		var err error
		period, err = analytics.ParsePeriod(raw)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}
	snap, ok := s.currentSnapshot(w, r)
	if !ok {
		return
	}

	key := fmt.Sprintf("series:%s:gen:%d", period, snap.Generation)
	if cached, hit := s.seriesCache.Get(key); hit {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	series := analytics.ComputeSeries(snap.Transactions, period, time.Now())
	resp := seriesResponse{
		Period:     string(period),
		Generation: snap.Generation,
		Labels:     series.Labels,
		Income:     series.Income,
		Expense:    series.Expense,
	}
	s.seriesCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	window, err := windowParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, ok := s.currentSnapshot(w, r)
	if !ok {
		return
	}

	windowed := analytics.FilterByWindow(snap.Transactions, window, time.Now())
	usage := analytics.ComputeBudgetUsage(snap.Budgets, windowed)
	overall := analytics.ComputeOverallBudget(usage)

	resp := budgetsResponse{
		Window:     string(window),
		Generation: snap.Generation,
		Budgets:    make([]budgetUsage, 0, len(usage)),
	}
	for _, u := range usage {
		resp.Budgets = append(resp.Budgets, budgetUsage{
			ID:          u.Budget.ID,
			Category:    u.Budget.Category,
			Amount:      u.Budget.Amount,
			Spent:       u.Spent,
			Remaining:   core.Money{Cents: u.Remaining},
			Utilization: analytics.Round1(u.Utilization),
			Status:      u.Status,
		})
	}
	resp.Overall.Budgeted = overall.Budgeted
	resp.Overall.Spent = overall.Spent
	resp.Overall.Utilization = analytics.Round1(overall.Utilization)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.currentSnapshot(w, r)
	if !ok {
		return
	}

	overall := analytics.ComputeOverallGoalProgress(snap.Goals)
	resp := goalsResponse{
		Generation: snap.Generation,
		Goals:      make([]goalProgress, 0, len(snap.Goals)),
	}
	for _, g := range snap.Goals {
		p := analytics.ComputeGoalProgress(g)
		resp.Goals = append(resp.Goals, goalProgress{
			ID:             g.ID,
			Title:          g.Title,
			Kind:           p.Kind,
			Target:         g.TargetAmount,
			Saved:          p.Saved,
			Displayed:      p.Displayed,
			Percent:        analytics.Round1(p.Percent),
			Remaining:      p.Remaining,
			Overshoot:      p.Overshoot,
			MonthsToTarget: p.MonthsToTarget,
			HasEstimate:    p.HasEstimate,
		})
	}
	resp.Overall.Target = overall.Target
	resp.Overall.Saved = overall.Saved
	resp.Overall.Percent = analytics.Round1(overall.Percent)
	resp.Overall.Reached = overall.Reached
	resp.Overall.Total = overall.Total
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx core.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := tx.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.mutator.CreateTransaction(r.Context(), tx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.refreshAfterWrite(r)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var tx core.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	tx.ID = id
	if err := tx.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.mutator.UpdateTransaction(r.Context(), tx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.refreshAfterWrite(r)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.mutator.DeleteTransaction(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.refreshAfterWrite(r)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var b core.Budget
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := b.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.mutator.CreateBudget(r.Context(), b)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.refreshAfterWrite(r)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var b core.Budget
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	b.ID = id
	if err := b.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.mutator.UpdateBudget(r.Context(), b)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.refreshAfterWrite(r)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.mutator.DeleteBudget(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.refreshAfterWrite(r)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var g core.Goal
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := g.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.mutator.CreateGoal(r.Context(), g)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.refreshAfterWrite(r)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var g core.Goal
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	g.ID = id
	if err := g.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.mutator.UpdateGoal(r.Context(), g)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.refreshAfterWrite(r)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.mutator.DeleteGoal(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.refreshAfterWrite(r)
	w.WriteHeader(http.StatusNoContent)
}

type contributionRequest struct {
	Amount core.Money `json:"amount"`
	Date   core.Date  `json:"date"`
	Note   string     `json:"note"`
	Method string     `json:"method"`
}

func (s *Server) handleAddContribution(w http.ResponseWriter, r *http.Request) {
	goalID, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req contributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if !req.Date.Valid() {
		req.Date = core.DateOf(time.Now())
	}
	contrib := core.Contribution{
		GoalID: goalID,
		Amount: req.Amount,
		Date:   req.Date,
		Note:   req.Note,
	}
	created, err := s.goals.AddContribution(r.Context(), contrib, req.Method)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.refreshAfterWrite(r)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.snapshots.Refresh(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"generation": s.snapshots.Generation()})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.writeError(w, r, errNoExporter)
		return
	}
	window, err := windowParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, ok := s.currentSnapshot(w, r)
	if !ok {
		return
	}

	report := analytics.BuildReport(snap.Transactions, snap.Budgets, window, time.Now())
	ref, err := s.exporter.WriteReport(r.Context(), report)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.InfoContext(r.Context(), "report exported",
		log.FieldWindow, string(window),
		log.FieldGeneration, snap.Generation,
		"ref", ref)
	writeJSON(w, http.StatusOK, map[string]string{"ref": ref})
}

var (
	errBadRequest = errors.New("bad request")
	errNoSnapshot = errors.New("no snapshot available yet")
	errNoExporter = errors.New("no export destination configured")
)

// currentSnapshot fetches the store snapshot or answers 503 when no
// refresh has landed yet.
func (s *Server) currentSnapshot(w http.ResponseWriter, r *http.Request) (store.Snapshot, bool) {
	snap, ok := s.snapshots.Current()
	if !ok {
		s.writeError(w, r, errNoSnapshot)
		return store.Snapshot{}, false
	}
	return snap, true
}

// refreshAfterWrite re-fetches the snapshot so reads observe the mutation.
// The write already landed remotely, so a failed refresh is only logged.
func (s *Server) refreshAfterWrite(r *http.Request) {
	if err := s.snapshots.Refresh(r.Context()); err != nil {
		s.logger.WarnContext(r.Context(), "refresh after write failed", log.FieldError, err)
	}
}

func windowParam(r *http.Request) (analytics.Window, error) {
	raw := r.URL.Query().Get("window")
	if raw == "" {
		return defaultWindow, nil
	}
	window, err := analytics.ParseWindow(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return window, nil
}

func idParam(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad id %q", errBadRequest, raw)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to its HTTP status: request problems are 4xx,
// remote API failures are relayed with their category, everything else
// is a 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest) || isDomainError(err):
		status = http.StatusBadRequest
	case errors.Is(err, errNoSnapshot) || errors.Is(err, errNoExporter):
		status = http.StatusServiceUnavailable
	case errors.Is(err, backend.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, backend.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, backend.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, backend.ErrServer), errors.Is(err, backend.ErrUnreachable):
		status = http.StatusBadGateway
	}
	if status >= 500 {
		s.logger.ErrorContext(r.Context(), "request failed", log.FieldError, err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func isDomainError(err error) bool {
	for _, domain := range []error{
		core.ErrInvalidAmount,
		core.ErrInvalidType,
		core.ErrInvalidDate,
		core.ErrEmptyCategory,
		core.ErrEmptyTitle,
		core.ErrEmptyMethod,
		core.ErrInvalidTarget,
		core.ErrNonPositiveValue,
	} {
		if errors.Is(err, domain) {
			return true
		}
	}
	return false
}
