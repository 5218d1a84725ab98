package http

import (
	"errors"
	"fmt"
	"net/http"

	"spendwatch/internal/core"
)

func (s *Server) invalidateSummary(userID int64) {
	s.summaryCache.Delete(fmt.Sprintf("summary:%d", userID))
}

func (s *Server) budgetFromRequest(r *http.Request, req budgetRequest) (core.Budget, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Budget{}, err
	}
	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		return core.Budget{}, err
	}
	end, err := core.ParseDate(req.EndDate)
	if err != nil {
		return core.Budget{}, err
	}
	return core.Budget{
		UserID:     userID(r),
		CategoryID: req.CategoryID,
		Amount:     core.Money{Cents: cents},
		PeriodType: core.PeriodType(req.PeriodType),
		StartDate:  start,
		EndDate:    end,
	}, nil
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.budgetFromRequest(r, req)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := s.budgets.Create(r.Context(), &b); err != nil {
		if errors.Is(err, core.ErrBudgetOverlap) {
			writeJSONError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(r.Context(), w, err)
		return
	}

	s.invalidateSummary(b.UserID)
	writeJSON(w, http.StatusCreated, toBudgetResponse(b))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	activeOn, err := queryDate(r, "active_on")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := core.BudgetFilter{
		CategoryID: queryInt64(r, "category_id"),
		PeriodType: core.PeriodType(r.URL.Query().Get("period_type")),
		ActiveOn:   activeOn,
	}
	budgets, err := s.budgets.List(r.Context(), userID(r), filter)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := s.budgets.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(b))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.budgetFromRequest(r, req)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	b.ID = id
	if err := s.budgets.Update(r.Context(), &b); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	s.invalidateSummary(b.UserID)
	writeJSON(w, http.StatusOK, toBudgetResponse(b))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.budgets.Delete(r.Context(), userID(r), id); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	s.invalidateSummary(userID(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudgetSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, err := s.budgets.Snapshot(r.Context(), userID(r), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	activeOn, err := queryDate(r, "active_on")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := core.BudgetFilter{
		CategoryID: queryInt64(r, "category_id"),
		PeriodType: core.PeriodType(r.URL.Query().Get("period_type")),
		ActiveOn:   activeOn,
	}
	snapshots, err := s.budgets.Snapshots(r.Context(), userID(r), filter)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	out := make([]snapshotResponse, 0, len(snapshots))
	for _, snap := range snapshots {
		out = append(out, toSnapshotResponse(snap))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	key := fmt.Sprintf("summary:%d", userID(r))
	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.budgets.Summary(r.Context(), userID(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	resp := toSummaryResponse(summary)
	s.summaryCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBudgetPeriods(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "start")
	if err != nil || start == nil {
		writeJSONError(w, http.StatusBadRequest, "start date is required (YYYY-MM-DD)")
		return
	}

	periods, err := s.budgets.Periods(
		core.PeriodType(r.URL.Query().Get("period_type")),
		*start,
		queryInt(r, "count", 6))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	out := make([]periodResponse, 0, len(periods))
	for _, p := range periods {
		out = append(out, periodResponse{
			StartDate: p.StartDate.Format(),
			EndDate:   p.EndDate.Format(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleBudgetCheck triggers an immediate evaluation of the caller's
// budgets, bypassing the queue. Useful after changing preferences.
func (s *Server) handleBudgetCheck(w http.ResponseWriter, r *http.Request) {
	dispatched, err := s.monitor.CheckUser(r.Context(), userID(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"alerts_dispatched": dispatched})
}
