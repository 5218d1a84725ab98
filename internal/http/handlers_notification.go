package http

import (
	"encoding/json"
	"net/http"

	"spendwatch/internal/core"
)

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub := core.Subscription{
		UserID:    userID(r),
		Endpoint:  req.Endpoint,
		P256dhKey: req.P256dhKey,
		AuthKey:   req.AuthKey,
	}
	if err := s.notifications.Subscribe(r.Context(), &sub); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": sub.ID})
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.notifications.Unsubscribe(r.Context(), userID(r), req.Endpoint); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.notifications.Preferences(r.Context(), userID(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesResponse{
		BudgetWarningsEnabled: prefs.BudgetWarningsEnabled,
		BudgetExceededEnabled: prefs.BudgetExceededEnabled,
		WarningThreshold:      prefs.WarningThreshold,
	})
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	prefs := core.Preferences{
		UserID:                userID(r),
		BudgetWarningsEnabled: req.BudgetWarningsEnabled,
		BudgetExceededEnabled: req.BudgetExceededEnabled,
		WarningThreshold:      req.WarningThreshold,
	}
	if err := s.notifications.UpdatePreferences(r.Context(), &prefs); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, preferencesResponse{
		BudgetWarningsEnabled: prefs.BudgetWarningsEnabled,
		BudgetExceededEnabled: prefs.BudgetExceededEnabled,
		WarningThreshold:      prefs.WarningThreshold,
	})
}

func (s *Server) handleTestNotification(w http.ResponseWriter, r *http.Request) {
	sent, err := s.notifications.TestNotification(r.Context(), userID(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}

func (s *Server) handleNotificationLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.notifications.Logs(r.Context(), userID(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	out := make([]notificationLogResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, notificationLogResponse{
			ID:           l.ID,
			Type:         l.Type,
			Title:        l.Title,
			Message:      l.Message,
			Data:         json.RawMessage(l.Data),
			SentAt:       l.SentAt,
			Success:      l.Success,
			ErrorMessage: l.ErrorMessage,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
