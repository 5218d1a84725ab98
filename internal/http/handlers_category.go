package http

import (
	"errors"
	"net/http"

	"spendwatch/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.categories.List(r.Context(), userID(r))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := core.Category{UserID: userID(r), Name: req.Name, Color: req.Color}
	if err := s.categories.Create(r.Context(), &c); err != nil {
		if errors.Is(err, core.ErrDuplicateName) {
			writeJSONError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := core.Category{ID: id, UserID: userID(r), Name: req.Name, Color: req.Color}
	if err := s.categories.Update(r.Context(), &c); err != nil {
		switch {
		case errors.Is(err, core.ErrCategoryImmutable):
			writeJSONError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, core.ErrDuplicateName):
			writeJSONError(w, http.StatusConflict, err.Error())
		default:
			writeError(r.Context(), w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.categories.Delete(r.Context(), userID(r), id); err != nil {
		switch {
		case errors.Is(err, core.ErrCategoryImmutable):
			writeJSONError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, core.ErrCategoryInUse):
			writeJSONError(w, http.StatusConflict, err.Error())
		default:
			writeError(r.Context(), w, err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
