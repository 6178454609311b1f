package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"quiz-rest-service/internal/app"
	"quiz-rest-service/internal/domain"
)

func (h *Handler) handleQuestions(w http.ResponseWriter, r *http.Request, _ domain.User, store app.Store) {
	questions, err := h.service.RandomQuestions(r.Context(), store)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request, user domain.User, store app.Store) {
	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, domain.ErrValidation.Error())
		return
	}

	result, err := h.service.Submit(r.Context(), store, user.ID, payload.Answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request, _ domain.User, store app.Store) {
	attempts, err := h.service.History(r.Context(), store)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (h *Handler) handleAttemptDetail(w http.ResponseWriter, r *http.Request, user domain.User, store app.Store) {
	details, err := h.service.AttemptDetail(r.Context(), store, user.ID, r.PathValue("attemptID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request, user domain.User, store app.Store) {
	export, err := h.service.Export(r.Context(), store, user.ID, r.PathValue("attemptID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=attempt-%s.json", export.AttemptID))
	writeJSON(w, http.StatusOK, export)
}
