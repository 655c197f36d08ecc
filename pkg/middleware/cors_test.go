package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsRequest(t *testing.T, cfg CORSConfig, method, origin string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	reached := false
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(method, "/api/modules", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, reached
}

func TestCORS_AllowOrigin(t *testing.T) {
	prod := CORSConfig{
		AllowedOrigins: []string{"https://dividis.app", "https://staging.dividis.app"},
		Environment:    "production",
	}
	credentialed := prod
	credentialed.AllowCredentials = true
	devCredentialed := CORSConfig{Environment: "development", AllowCredentials: true}

	tests := []struct {
		name      string
		cfg       CORSConfig
		origin    string
		wantAllow string
		wantVary  bool
	}{
		{"development allows any origin", CORSConfig{Environment: "development"}, "http://localhost:5173", "*", false},
		{"development without origin", CORSConfig{Environment: "development"}, "", "*", false},
		{"listed origin", prod, "https://dividis.app", "https://dividis.app", true},
		{"second listed origin", prod, "https://staging.dividis.app", "https://staging.dividis.app", true},
		{"unlisted origin", prod, "https://evil.example", "", false},
		{"no origin in production", prod, "", "", false},
		{"wildcard entry in production", CORSConfig{AllowedOrigins: []string{"*"}, Environment: "production"}, "https://any.example", "*", false},
		{"credentialed listed origin", credentialed, "https://dividis.app", "https://dividis.app", true},
		{"credentialed wildcard echoes origin", devCredentialed, "http://localhost:5173", "http://localhost:5173", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, reached := corsRequest(t, tc.cfg, http.MethodGet, tc.origin)

			assert.True(t, reached)
			assert.Equal(t, tc.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tc.wantVary, rec.Header().Get("Vary") == "Origin")
		})
	}
}

func TestCORS_PreflightStopsChain(t *testing.T) {
	rec, reached := corsRequest(t, CORSConfig{Environment: "development"}, http.MethodOptions, "http://localhost:5173")

	assert.False(t, reached)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Defaults(t *testing.T) {
	rec, _ := corsRequest(t, CORSConfig{Environment: "development"}, http.MethodGet, "")

	h := rec.Header()
	assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", h.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Accept, Authorization, Content-Type, X-Correlation-ID", h.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", h.Get("Access-Control-Max-Age"))
	assert.Empty(t, h.Get("Access-Control-Expose-Headers"))
	assert.Empty(t, h.Get("Access-Control-Allow-Credentials"))
}

func TestCORS_ConfiguredHeaders(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins:   []string{"https://dividis.app"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPut},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"X-Correlation-ID", "traceparent"},
		MaxAge:           600,
		AllowCredentials: true,
	}
	rec, _ := corsRequest(t, cfg, http.MethodGet, "https://dividis.app")

	h := rec.Header()
	require.Equal(t, "https://dividis.app", h.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, PUT", h.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", h.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "X-Correlation-ID, traceparent", h.Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "600", h.Get("Access-Control-Max-Age"))
	assert.Equal(t, "true", h.Get("Access-Control-Allow-Credentials"))
}
