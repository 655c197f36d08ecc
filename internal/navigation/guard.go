package navigation

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Decision is the outcome of a guard check.
type Decision struct {
	Route    Route
	Allow    bool
	Redirect string
}

// Guard applies the route access rules.
type Guard struct{}

// Resolve decides whether target (a request URI: path plus optional query)
// may be entered.
//
// Protected routes without a session redirect to login carrying the original
// target. Auth-only routes with a session redirect to the dashboard.
func (Guard) Resolve(target string, authenticated bool) Decision {
	path, _, _ := strings.Cut(target, "?")
	route := Match(path)

	switch {
	case route.Access == Protected && !authenticated:
		return Decision{Route: route, Redirect: LoginRedirect(target)}
	case route.Access == AuthOnly && authenticated:
		return Decision{Route: route, Redirect: Path(RouteDashboard)}
	default:
		return Decision{Route: route, Allow: true}
	}
}

// Navigator moves the user to a named route. Stores navigate through it.
type Navigator interface {
	Push(ctx context.Context, route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, route string)

func (f NavigatorFunc) Push(ctx context.Context, route string) { f(ctx, route) }

// Recorder remembers the last navigation so a server can turn it into a
// redirect on the response.
type Recorder struct {
	mu   sync.Mutex
	last string
}

func (r *Recorder) Push(_ context.Context, route string) {
	r.mu.Lock()
	r.last = Path(route)
	r.mu.Unlock()
}

// Take returns the pending path and clears it.
func (r *Recorder) Take() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.last
	r.last = ""
	return p
}

// LogNavigator logs navigations. The CLI has no pages to move between.
type LogNavigator struct {
	Logger *slog.Logger
}

func (n LogNavigator) Push(ctx context.Context, route string) {
	if n.Logger == nil {
		return
	}
	n.Logger.DebugContext(ctx, "navigate", slog.String("route", route), slog.String("path", Path(route)))
}
