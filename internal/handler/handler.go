// Package handler exposes dashboard workspaces over HTTP: guarded pages and
// a JSON API whose actions run the workspace stores.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/satjeet/ClinePythonDividis/internal/navigation"
	"github.com/satjeet/ClinePythonDividis/internal/store"
	"github.com/satjeet/ClinePythonDividis/internal/workspace"
	apperrors "github.com/satjeet/ClinePythonDividis/pkg/errors"
	"github.com/satjeet/ClinePythonDividis/pkg/httputil"
	"github.com/satjeet/ClinePythonDividis/pkg/logger"
	"github.com/satjeet/ClinePythonDividis/pkg/validator"
)

const maxBodyBytes = 1 << 20

// Success toasts.
const (
	toastLoggedOut      = "Sesión cerrada"
	toastProfileUpdated = "Perfil actualizado"
	toastModuleUnlocked = "Módulo desbloqueado"
	toastMissionDone    = "Misión completada"
	toastHabitCreated   = "Hábito creado"
	toastHabitUpdated   = "Hábito actualizado"
	toastAnswersSaved   = "Respuestas guardadas"
)

// CookieConfig describes the browser session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Handler serves pages and API calls against the caller's workspace.
type Handler struct {
	registry *workspace.Registry
	cookie   CookieConfig
	guard    navigation.Guard
	logger   *slog.Logger
}

func New(registry *workspace.Registry, cookie CookieConfig, logger *slog.Logger) *Handler {
	return &Handler{registry: registry, cookie: cookie, logger: logger}
}

type workspaceKey struct{}

func workspaceFrom(ctx context.Context) *workspace.Workspace {
	ws, _ := ctx.Value(workspaceKey{}).(*workspace.Workspace)
	return ws
}

// Workspace binds the request to the workspace of its session cookie,
// issuing a new cookie when the request carries none or a malformed one.
func (h *Handler) Workspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if c, err := r.Cookie(h.cookie.Name); err == nil {
			if _, perr := uuid.Parse(c.Value); perr == nil {
				sid = c.Value
			}
		}
		if sid == "" {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     h.cookie.Name,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				Secure:   h.cookie.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := logger.WithSessionID(r.Context(), sid)
		ws := h.registry.Get(ctx, sid)
		ctx = context.WithValue(ctx, workspaceKey{}, ws)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession rejects API calls from signed-out workspaces with 401.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		if ws == nil || !ws.Session.IsAuthenticated() {
			httputil.WriteError(w, r, apperrors.NoToken(), h.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ContentTypeJSON enforces that requests with a body declare JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// decodeJSON reads the request body into dst. On failure it writes a 400
// and returns false. An empty body leaves dst untouched when allowEmpty.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: apperrors.CodeInvalidInput, Message: "invalid request body: " + err.Error()},
		})
		return false
	}
	return true
}

// actionFailed reports a failed store operation: an error toast with the
// store's display message, then the error envelope carrying that message
// and any page the operation navigated to.
func (h *Handler) actionFailed(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, err error, message string) {
	if message == "" {
		message = store.DisplayMessage(err, http.StatusText(apperrors.HTTPStatus(err)))
	}
	ws.Toasts.Show(message, store.ToastError, 0)

	var ve *validator.ValidationError
	if errors.As(err, &ve) {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	appErr := apperrors.From(err)
	if appErr.Status >= http.StatusInternalServerError {
		logger.WithContext(r.Context(), h.logger).ErrorContext(r.Context(), "action failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	httputil.WriteJSON(w, appErr.Status, httputil.Response{
		Redirect: ws.TakeRedirect(),
		Error: &httputil.ErrorResponse{
			Code:      appErr.Code,
			Message:   message,
			RequestID: logger.CorrelationIDFromContext(r.Context()),
		},
	})
}

// done writes a successful action: an optional success toast, then data
// with the page the action navigated to.
func (h *Handler) done(w http.ResponseWriter, ws *workspace.Workspace, data any, toast string) {
	if toast != "" {
		ws.Toasts.Show(toast, store.ToastSuccess, 0)
	}
	httputil.WriteData(w, data, ws.TakeRedirect())
}
