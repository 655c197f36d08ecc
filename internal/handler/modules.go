package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satjeet/ClinePythonDividis/internal/domain"
	"github.com/satjeet/ClinePythonDividis/internal/store"
	"github.com/satjeet/ClinePythonDividis/pkg/httputil"
)

// ModulesView is the module list with the derived groups.
type ModulesView struct {
	Modules         []domain.Module `json:"modules"`
	UnlockedModules []domain.Module `json:"unlocked_modules"`
	NextModule      *domain.Module  `json:"next_module"`
	CurrentModule   *domain.Module  `json:"current_module"`
}

// MissionsView is the mission list with those currently available.
type MissionsView struct {
	Missions          []domain.Mission `json:"missions"`
	AvailableMissions []domain.Mission `json:"available_missions"`
}

func modulesView(m *store.Modules) ModulesView {
	return ModulesView{
		Modules:         m.Modules(),
		UnlockedModules: m.UnlockedModules(),
		NextModule:      m.NextModule(),
		CurrentModule:   m.CurrentModule(),
	}
}

// ListModules handles GET /api/modules
func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := ws.Modules.FetchModules(r.Context()); err != nil {
		h.actionFailed(w, r, ws, err, ws.Modules.Err())
		return
	}
	httputil.WriteData(w, modulesView(ws.Modules), "")
}

// UnlockModule handles POST /api/modules/{id}/unlock
func (h *Handler) UnlockModule(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	id, ok := httputil.ParseID(w, "module id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := ws.Modules.UnlockModule(r.Context(), id); err != nil {
		h.actionFailed(w, r, ws, err, ws.Modules.Err())
		return
	}
	h.done(w, ws, modulesView(ws.Modules), toastModuleUnlocked)
}

// ModuleProgress handles GET /api/modules/{id}/progress
func (h *Handler) ModuleProgress(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	id, ok := httputil.ParseID(w, "module id", chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := ws.Modules.FetchModuleDetail(r.Context(), id); err != nil {
		h.actionFailed(w, r, ws, err, ws.Modules.Err())
		return
	}
	detail, _ := ws.Modules.Detail(id)
	httputil.WriteData(w, detail, "")
}

// ListMissions handles GET /api/missions
func (h *Handler) ListMissions(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := ws.Modules.FetchMissions(r.Context()); err != nil {
		h.actionFailed(w, r, ws, err, ws.Modules.Err())
		return
	}
	httputil.WriteData(w, MissionsView{
		Missions:          ws.Modules.Missions(),
		AvailableMissions: ws.Modules.AvailableMissions(),
	}, "")
}

// CompleteMission handles POST /api/missions/{id}/complete. The response
// carries the refreshed modules and session.
func (h *Handler) CompleteMission(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	id := chi.URLParam(r, "id")

	if err := ws.Modules.CompleteMission(r.Context(), id); err != nil {
		msg := ws.Modules.Err()
		if msg == "" {
			msg = ws.Session.Err()
		}
		h.actionFailed(w, r, ws, err, msg)
		return
	}
	h.done(w, ws, map[string]any{
		"modules": modulesView(ws.Modules),
		"session": ws.Session.View(),
	}, toastMissionDone)
}

// ProgressOverview handles GET /api/progress/overview
func (h *Handler) ProgressOverview(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	if err := ws.Modules.FetchOverview(r.Context()); err != nil {
		h.actionFailed(w, r, ws, err, ws.Modules.Err())
		return
	}
	httputil.WriteData(w, ws.Modules.Overview(), "")
}
