package http

import (
	"net/http"
)

func (s *Server) handleCategorySpending(w http.ResponseWriter, r *http.Request) {
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

	spending, err := s.analytics.SpendingByCategory(r.Context(), userID(r), start, end)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	out := make([]categorySpendingResponse, 0, len(spending))
	for _, cs := range spending {
		out = append(out, categorySpendingResponse{
			CategoryID:    cs.CategoryID,
			CategoryName:  cs.CategoryName,
			CategoryColor: cs.CategoryColor,
			Total:         cs.Total.String(),
			TotalCents:    cs.Total.Cents,
			Count:         cs.Count,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSpendingStats(w http.ResponseWriter, r *http.Request) {
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

	stats, err := s.analytics.Stats(r.Context(), userID(r), start, end)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, spendingStatsResponse{
		Total:        stats.Total.String(),
		TotalCents:   stats.Total.Cents,
		Count:        stats.Count,
		Average:      stats.Average.String(),
		AverageCents: stats.Average.Cents,
	})
}

func (s *Server) handleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	totals, err := s.analytics.MonthlyTrend(r.Context(), userID(r), queryInt(r, "months", 6))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	out := make([]monthlyTotalResponse, 0, len(totals))
	for _, mt := range totals {
		out = append(out, monthlyTotalResponse{
			Year:       mt.Year,
			Month:      mt.Month,
			Total:      mt.Total.String(),
			TotalCents: mt.Total.Cents,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
