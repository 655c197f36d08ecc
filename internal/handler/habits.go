package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satjeet/ClinePythonDividis/internal/domain"
	"github.com/satjeet/ClinePythonDividis/pkg/httputil"
)

// ListHabits handles GET /api/habits
func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := ws.Habits.FetchHabits(r.Context()); err != nil {
		h.actionFailed(w, r, ws, err, ws.Habits.Err())
		return
	}
	httputil.WriteData(w, ws.Habits.Habits(), "")
}

// CreateHabit handles POST /api/habits
func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	var req domain.NewHabit
	if !decodeJSON(w, r, &req, false) {
		return
	}

	if err := ws.Habits.CreateHabit(r.Context(), req); err != nil {
		h.actionFailed(w, r, ws, err, ws.Habits.Err())
		return
	}
	h.done(w, ws, ws.Habits.Habits(), toastHabitCreated)
}

// UpdateHabit handles PATCH /api/habits/{id}
func (h *Handler) UpdateHabit(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	id, ok := httputil.ParseID(w, "habit id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req domain.HabitUpdate
	if !decodeJSON(w, r, &req, false) {
		return
	}

	if err := ws.Habits.UpdateHabit(r.Context(), id, req); err != nil {
		h.actionFailed(w, r, ws, err, ws.Habits.Err())
		return
	}
	h.done(w, ws, ws.Habits.Habits(), toastHabitUpdated)
}
