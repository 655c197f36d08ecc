package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/satjeet/ClinePythonDividis/internal/chart"
	"github.com/satjeet/ClinePythonDividis/internal/store"
	"github.com/satjeet/ClinePythonDividis/pkg/httputil"
)

// RadarView is the radar values and the chart drawn from them.
type RadarView struct {
	Values []float64    `json:"values"`
	Option chart.Option `json:"option"`
	Error  string       `json:"error,omitempty"`
}

// Radar handles GET /api/radar. A failed fetch still answers 200 with
// zeroed values; the failure is reported in error and as a toast.
func (h *Handler) Radar(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	view := RadarView{}
	if err := ws.Radar.FetchRadarValues(r.Context()); err != nil {
		view.Error = ws.Radar.Err()
		ws.Toasts.Show(view.Error, store.ToastError, 0)
	}
	view.Values = ws.Radar.Values()
	view.Option = ws.Radar.Option()
	httputil.WriteData(w, view, "")
}

// ListToasts handles GET /api/toasts
func (h *Handler) ListToasts(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	httputil.WriteData(w, ws.Toasts.List(), "")
}

// DismissToast handles DELETE /api/toasts/{id}. Unknown ids are ignored.
func (h *Handler) DismissToast(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	ws.Toasts.Remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
