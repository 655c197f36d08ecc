package navigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		path      string
		wantName  string
		wantParam string
	}{
		{"/", RouteLanding, ""},
		{"", RouteLanding, ""},
		{"/login", RouteLogin, ""},
		{"/register", RouteRegister, ""},
		{"/dashboard", RouteDashboard, ""},
		{"/modules/3", RouteModule, "3"},
		{"/modules/", RouteNotFound, ""},
		{"/modules/3/extra", RouteNotFound, ""},
		{"/settings", RouteNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := Match(tt.path)
			assert.Equal(t, tt.wantName, r.Name)
			assert.Equal(t, tt.wantParam, r.Param)
		})
	}
}

func TestGuard_Resolve(t *testing.T) {
	tests := []struct {
		name          string
		target        string
		authenticated bool
		wantAllow     bool
		wantRedirect  string
	}{
		{"anonymous on landing", "/", false, true, ""},
		{"anonymous on dashboard", "/dashboard", false, false, "/login?redirect=%2Fdashboard"},
		{"anonymous on module keeps query", "/modules/2?tab=missions", false, false, "/login?redirect=%2Fmodules%2F2%3Ftab%3Dmissions"},
		{"signed in on login", "/login", true, false, "/dashboard"},
		{"signed in on register", "/register?x=1", true, false, "/dashboard"},
		{"anonymous on login", "/login", false, true, ""},
		{"signed in on module", "/modules/2", true, true, ""},
		{"signed in on unknown", "/nope", true, true, ""},
		{"anonymous on unknown", "/nope", false, true, ""},
	}

	var g Guard
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := g.Resolve(tt.target, tt.authenticated)
			assert.Equal(t, tt.wantAllow, d.Allow)
			assert.Equal(t, tt.wantRedirect, d.Redirect)
		})
	}
}

func TestPath(t *testing.T) {
	assert.Equal(t, "/dashboard", Path(RouteDashboard))
	assert.Equal(t, "/login", Path(RouteLogin))
	assert.Equal(t, "/", Path(RouteModule))
	assert.Equal(t, "/modules/7", ModulePath("7"))
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/modules/2?tab=x", SafeRedirect("/modules/2?tab=x"))
	assert.Equal(t, "/dashboard", SafeRedirect(""))
	assert.Equal(t, "/dashboard", SafeRedirect("https://evil.example"))
	assert.Equal(t, "/dashboard", SafeRedirect("//evil.example/path"))
	assert.Equal(t, "/dashboard", SafeRedirect("/\\evil.example"))
}

func TestRecorder(t *testing.T) {
	var r Recorder
	assert.Empty(t, r.Take())

	r.Push(context.Background(), RouteDashboard)
	assert.Equal(t, "/dashboard", r.Take())
	assert.Empty(t, r.Take(), "take clears")
}

func TestNavigatorFunc(t *testing.T) {
	var got string
	var n Navigator = NavigatorFunc(func(_ context.Context, route string) { got = route })
	n.Push(context.Background(), RouteLogin)
	assert.Equal(t, RouteLogin, got)

	LogNavigator{}.Push(context.Background(), RouteLogin)
}
