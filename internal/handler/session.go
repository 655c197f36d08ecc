package handler

import (
	"net/http"

	"github.com/satjeet/ClinePythonDividis/internal/domain"
	"github.com/satjeet/ClinePythonDividis/internal/navigation"
	"github.com/satjeet/ClinePythonDividis/internal/store"
	"github.com/satjeet/ClinePythonDividis/pkg/httputil"
)

// LoginRequest is the body of POST /api/session/login. Redirect is where a
// successful login lands instead of the dashboard.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Redirect string `json:"redirect,omitempty"`
}

// GetSession handles GET /api/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())
	httputil.WriteData(w, ws.Session.View(), "")
}

// Login handles POST /api/session/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	var req LoginRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	if err := ws.Session.Login(r.Context(), req.Username, req.Password); err != nil {
		h.actionFailed(w, r, ws, err, ws.Session.Err())
		return
	}

	redirect := ws.TakeRedirect()
	if req.Redirect != "" && redirect == navigation.Path(navigation.RouteDashboard) {
		redirect = navigation.SafeRedirect(req.Redirect)
	}
	httputil.WriteData(w, ws.Session.View(), redirect)
}

// Register handles POST /api/session/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	var req domain.RegisterInput
	if !decodeJSON(w, r, &req, false) {
		return
	}

	if err := ws.Session.Register(r.Context(), req); err != nil {
		h.actionFailed(w, r, ws, err, ws.Session.Err())
		return
	}
	h.done(w, ws, ws.Session.View(), "")
}

// Logout handles POST /api/session/logout. Logging out twice is harmless.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	err := ws.Session.Logout(r.Context())
	ws.Survey.Reset()
	if err != nil {
		h.actionFailed(w, r, ws, err, "")
		return
	}
	ws.Toasts.Show(toastLoggedOut, store.ToastInfo, 0)
	httputil.WriteData(w, ws.Session.View(), ws.TakeRedirect())
}

// UpdateProfile handles PATCH /api/session/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r.Context())

	var req domain.ProfileUpdate
	if !decodeJSON(w, r, &req, false) {
		return
	}

	if err := ws.Session.UpdateProfile(r.Context(), req); err != nil {
		h.actionFailed(w, r, ws, err, ws.Session.Err())
		return
	}
	h.done(w, ws, ws.Session.View(), toastProfileUpdated)
}
