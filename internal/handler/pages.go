package handler

import (
	"net/http"
	"strconv"

	"github.com/satjeet/ClinePythonDividis/internal/chart"
	"github.com/satjeet/ClinePythonDividis/internal/domain"
	"github.com/satjeet/ClinePythonDividis/internal/navigation"
	"github.com/satjeet/ClinePythonDividis/internal/store"
	"github.com/satjeet/ClinePythonDividis/internal/workspace"
	"github.com/satjeet/ClinePythonDividis/pkg/httputil"
)

// PageView is the document of a page: the route entered, the session and
// the visible toasts plus the data of that page.
type PageView struct {
	Route     navigation.Route  `json:"route"`
	Session   store.SessionView `json:"session"`
	Toasts    []store.Toast     `json:"toasts"`
	Next      string            `json:"next,omitempty"`
	Dashboard *DashboardView    `json:"dashboard,omitempty"`
	Module    *ModuleView       `json:"module,omitempty"`
}

// DashboardView is the dashboard page data.
type DashboardView struct {
	Modules           []domain.Module       `json:"modules"`
	UnlockedModules   []domain.Module       `json:"unlocked_modules"`
	AvailableMissions []domain.Mission      `json:"available_missions"`
	NextModule        *domain.Module        `json:"next_module"`
	Radar             chart.Option          `json:"radar"`
	Constellations    []chart.Constellation `json:"constellations"`
	Errors            []string              `json:"errors,omitempty"`
}

// ModuleView is the module page data.
type ModuleView struct {
	Module domain.Module        `json:"module"`
	Detail *domain.ModuleDetail `json:"detail,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// Page serves every page path. The guard runs first; a refused entry is
// answered with 303 to where the guard sends the user.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	d := h.guard.Resolve(r.URL.RequestURI(), ws.Session.IsAuthenticated())
	if !d.Allow {
		http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
		return
	}

	view := PageView{Route: d.Route}
	status := http.StatusOK

	switch d.Route.Name {
	case navigation.RouteLogin:
		if next := r.URL.Query().Get("redirect"); next != "" {
			view.Next = navigation.SafeRedirect(next)
		}
	case navigation.RouteDashboard:
		view.Dashboard = h.dashboard(r, ws)
	case navigation.RouteModule:
		mv, ok := h.module(r, ws, d.Route.Param)
		if !ok {
			view.Route = navigation.NotFound
			status = http.StatusNotFound
			break
		}
		view.Module = mv
	case navigation.RouteNotFound:
		status = http.StatusNotFound
	}

	view.Session = ws.Session.View()
	view.Toasts = ws.Toasts.List()
	httputil.WriteJSON(w, status, httputil.Response{Data: view})
}

// dashboard loads modules, missions and the radar. Failures stay visible
// in the errors list and the page still renders.
func (h *Handler) dashboard(r *http.Request, ws *workspace.Workspace) *DashboardView {
	ctx := r.Context()
	var errs []string
	if err := ws.Modules.FetchModules(ctx); err != nil {
		errs = append(errs, ws.Modules.Err())
	}
	if err := ws.Modules.FetchMissions(ctx); err != nil {
		errs = append(errs, ws.Modules.Err())
	}
	if err := ws.Radar.FetchRadarValues(ctx); err != nil {
		errs = append(errs, ws.Radar.Err())
	}

	return &DashboardView{
		Modules:           ws.Modules.Modules(),
		UnlockedModules:   ws.Modules.UnlockedModules(),
		AvailableMissions: ws.Modules.AvailableMissions(),
		NextModule:        ws.Modules.NextModule(),
		Radar:             ws.Radar.Option(),
		Constellations:    chart.Constellations(r.URL.Query().Get("area")),
		Errors:            errs,
	}
}

// module selects the module of the page and loads its detail. It reports
// false when param names no known module.
func (h *Handler) module(r *http.Request, ws *workspace.Workspace, param string) (*ModuleView, bool) {
	id, err := strconv.Atoi(param)
	if err != nil || id <= 0 {
		return nil, false
	}
	ctx := r.Context()

	if len(ws.Modules.Modules()) == 0 {
		_ = ws.Modules.FetchModules(ctx)
	}
	mod, ok := ws.Modules.SetCurrentModule(id)
	if !ok {
		return nil, false
	}

	mv := &ModuleView{Module: mod}
	if err := ws.Modules.FetchModuleDetail(ctx, id); err != nil {
		mv.Error = ws.Modules.Err()
		return mv, true
	}
	if detail, ok := ws.Modules.Detail(id); ok {
		mv.Detail = &detail
	}
	return mv, true
}
