// Package navigation holds the page route table and the guard that decides
// whether a page may be entered.
package navigation

import (
	"net/url"
	"strings"
)

// Route names.
const (
	RouteLanding   = "landing"
	RouteLogin     = "login"
	RouteRegister  = "register"
	RouteDashboard = "dashboard"
	RouteModule    = "module"
	RouteNotFound  = "not-found"
)

// Access is the guard class of a route.
type Access int

const (
	// Public routes are always allowed.
	Public Access = iota
	// AuthOnly routes (login, register) send signed-in users to the dashboard.
	AuthOnly
	// Protected routes send anonymous users to login.
	Protected
)

func (a Access) String() string {
	switch a {
	case AuthOnly:
		return "auth-only"
	case Protected:
		return "protected"
	default:
		return "public"
	}
}

// Route is one page of the dashboard.
type Route struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`
	Access  Access `json:"-"`
	// Param is the {id} value for parameterized routes.
	Param string `json:"param,omitempty"`
}

// Routes is the page table in match order.
var Routes = []Route{
	{Name: RouteLanding, Pattern: "/", Access: Public},
	{Name: RouteLogin, Pattern: "/login", Access: AuthOnly},
	{Name: RouteRegister, Pattern: "/register", Access: AuthOnly},
	{Name: RouteDashboard, Pattern: "/dashboard", Access: Protected},
	{Name: RouteModule, Pattern: "/modules/{id}", Access: Protected},
}

// NotFound is matched by every path outside the table.
var NotFound = Route{Name: RouteNotFound, Pattern: "/*", Access: Public}

// Match returns the route for path. Unknown paths match not-found.
func Match(path string) Route {
	if path == "" {
		path = "/"
	}
	for _, r := range Routes {
		prefix, _, ok := strings.Cut(r.Pattern, "{id}")
		if !ok {
			if path == r.Pattern {
				return r
			}
			continue
		}
		rest, found := strings.CutPrefix(path, prefix)
		if found && rest != "" && !strings.Contains(rest, "/") {
			m := r
			m.Param = rest
			return m
		}
	}
	return NotFound
}

// Path returns the URL path for a route name without parameters. Unknown
// names map to the landing page.
func Path(name string) string {
	for _, r := range Routes {
		if r.Name == name && !strings.Contains(r.Pattern, "{") {
			return r.Pattern
		}
	}
	return "/"
}

// ModulePath returns the page path of a module.
func ModulePath(id string) string {
	return "/modules/" + url.PathEscape(id)
}

// LoginRedirect returns the login path that returns to target after sign-in.
func LoginRedirect(target string) string {
	return Path(RouteLogin) + "?redirect=" + url.QueryEscape(target)
}

// SafeRedirect returns target when it is a local path, otherwise the
// dashboard. It keeps the post-login redirect from leaving the site.
func SafeRedirect(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return Path(RouteDashboard)
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return Path(RouteDashboard)
	}
	return target
}
