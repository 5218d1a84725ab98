package http

import (
	"net/http"

	"spendwatch/internal/core"
)

func (s *Server) expenseFromRequest(r *http.Request, req expenseRequest) (core.Expense, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		UserID:       userID(r),
		Amount:       core.Money{Cents: cents},
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		Date:         date,
		ReceiptURL:   req.ReceiptURL,
		AIConfidence: req.AIConfidence,
	}, nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	e, err := s.expenseFromRequest(r, req)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := s.expenses.Create(r.Context(), &e); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	s.invalidateSummary(e.UserID)
	writeJSON(w, http.StatusCreated, toExpenseResponse(e))
}

// handleCreateReceiptExpense records an expense extracted from a
// scanned receipt, resolving the suggested category by name.
func (s *Server) handleCreateReceiptExpense(w http.ResponseWriter, r *http.Request) {
	var req receiptExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	e, err := s.expenseFromRequest(r, expenseRequest{
		Amount:       req.Amount,
		Description:  req.Description,
		Date:         req.Date,
		ReceiptURL:   req.ReceiptURL,
		AIConfidence: req.AIConfidence,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if err := s.expenses.CreateFromReceipt(r.Context(), &e, req.CategoryName); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	s.invalidateSummary(e.UserID)
	writeJSON(w, http.StatusCreated, toExpenseResponse(e))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "start")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := queryDate(r, "end")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := core.ExpenseFilter{
		CategoryID: queryInt64(r, "category_id"),
		Start:      start,
		End:        end,
		Limit:      queryInt(r, "limit", 100),
		Offset:     queryInt(r, "offset", 0),
	}
	expenses, err := s.expenses.List(r.Context(), userID(r), filter)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := s.expenses.Get(r.Context(), userID(r), id)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	e, err := s.expenseFromRequest(r, req)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	e.ID = id
	if err := s.expenses.Update(r.Context(), &e); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	s.invalidateSummary(e.UserID)
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.expenses.Delete(r.Context(), userID(r), id); err != nil {
		writeError(r.Context(), w, err)
		return
	}

	s.invalidateSummary(userID(r))
	w.WriteHeader(http.StatusNoContent)
}
