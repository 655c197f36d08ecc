// Package workspace assembles one application instance: a session, the
// domain stores and a toast queue sharing one API client and one persisted
// credential key.
package workspace

import (
	"context"
	"log/slog"

	"github.com/satjeet/ClinePythonDividis/internal/api"
	"github.com/satjeet/ClinePythonDividis/internal/credential"
	"github.com/satjeet/ClinePythonDividis/internal/event"
	"github.com/satjeet/ClinePythonDividis/internal/navigation"
	"github.com/satjeet/ClinePythonDividis/internal/store"
	"github.com/satjeet/ClinePythonDividis/pkg/httpclient"
)

// Deps are shared by every workspace of a process.
type Deps struct {
	BaseURL     string
	Doer        httpclient.Doer
	Credentials credential.Store
	Events      *event.Emitter
	Logger      *slog.Logger
}

// Workspace is one user's dashboard state.
type Workspace struct {
	Session *store.Session
	Modules *store.Modules
	Habits  *store.Habits
	Survey  *store.Survey
	Radar   *store.Radar
	Toasts  *store.Toasts

	API *api.Client

	key    string
	nav    *navigation.Recorder
	logger *slog.Logger
}

// New builds a workspace whose token is persisted under key.
func New(deps Deps, key string) *Workspace {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("credential_key", key))

	tokens := credential.NewKeyed(deps.Credentials, key)
	client := api.New(deps.BaseURL, deps.Doer, tokens, log)
	rec := &navigation.Recorder{}
	nav := navigation.NavigatorFunc(func(ctx context.Context, route string) {
		rec.Push(ctx, route)
		navigation.LogNavigator{Logger: log}.Push(ctx, route)
	})

	session := store.NewSession(client.Auth, tokens, nav, deps.Events, log)
	return &Workspace{
		Session: session,
		Modules: store.NewModules(client.Modules, client.Missions, client.Progress, session, deps.Events, log),
		Habits:  store.NewHabits(client.Habits, session, deps.Events, log),
		Survey:  store.NewSurvey(client.Survey, session, deps.Events, log),
		Radar:   store.NewRadar(client.Survey, log),
		Toasts:  store.NewToasts(),
		API:     client,
		key:     key,
		nav:     rec,
		logger:  log,
	}
}

// Key returns the credential key the token is stored under.
func (w *Workspace) Key() string { return w.key }

// Init restores a persisted session.
func (w *Workspace) Init(ctx context.Context) error {
	return w.Session.Init(ctx)
}

// TakeRedirect returns the page the last operation navigated to, or "",
// and forgets it.
func (w *Workspace) TakeRedirect() string {
	return w.nav.Take()
}

// Close releases timers held by the workspace.
func (w *Workspace) Close() {
	w.Toasts.Close()
}
