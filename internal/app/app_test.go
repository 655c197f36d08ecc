package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/satjeet/ClinePythonDividis/internal/config"
	"github.com/satjeet/ClinePythonDividis/internal/credential"
	"github.com/satjeet/ClinePythonDividis/pkg/httpclient"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T, apiURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Environment:        "development",
		LogLevel:           "error",
		APIBaseURL:         apiURL,
		APITimeout:         2 * time.Second,
		CredentialBackend:  config.BackendSQLite,
		SQLitePath:         filepath.Join(t.TempDir(), "dividis.db"),
		CredentialTTL:      time.Hour,
		HTTPPort:           8090,
		SessionCookie:      "dividis_sid",
		SessionTTL:         time.Minute,
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
	}
}

func TestOpenCredentialStore(t *testing.T) {
	ctx := context.Background()
	log := discardLogger()

	t.Run("memory", func(t *testing.T) {
		cfg := testConfig(t, "http://localhost:8000/api")
		cfg.CredentialBackend = config.BackendMemory

		store, err := OpenCredentialStore(ctx, cfg, "test", log)
		require.NoError(t, err)
		assert.IsType(t, &credential.MemoryStore{}, store)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := testConfig(t, "http://localhost:8000/api")

		store, err := OpenCredentialStore(ctx, cfg, "test", log)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })

		require.NoError(t, store.Set(ctx, credential.DefaultKey, "jwt"))
		got, err := store.Get(ctx, credential.DefaultKey)
		require.NoError(t, err)
		assert.Equal(t, "jwt", got)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig(t, "http://localhost:8000/api")
		cfg.CredentialBackend = config.BackendRedis
		cfg.RedisAddr = mr.Addr()

		store, err := OpenCredentialStore(ctx, cfg, "test", log)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })

		require.NoError(t, store.Set(ctx, credential.DefaultKey, "jwt"))
		assert.Equal(t, time.Hour, mr.TTL("dividis:credential:token"))
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := testConfig(t, "http://localhost:8000/api")
		cfg.CredentialBackend = config.BackendRedis
		cfg.RedisAddr = addr

		_, err := OpenCredentialStore(ctx, cfg, "test", log)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connect to redis")
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := testConfig(t, "http://localhost:8000/api")
		cfg.CredentialBackend = "localstorage"

		_, err := OpenCredentialStore(ctx, cfg, "test", log)
		assert.Error(t, err)
	})
}

func TestNewDoer(t *testing.T) {
	cfg := testConfig(t, "http://localhost:8000/api")
	assert.IsType(t, &httpclient.Client{}, NewDoer(cfg, discardLogger()))

	cfg.APIBreakerEnable = true
	assert.IsType(t, &httpclient.CircuitBreakerClient{}, NewDoer(cfg, discardLogger()))
}

func TestBuild_KafkaProducerOnlyWithBrokers(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig(t, "http://localhost:8000/api")
	cfg.CredentialBackend = config.BackendMemory
	c, err := Build(ctx, cfg, "test", discardLogger())
	require.NoError(t, err)
	assert.Nil(t, c.producer)
	assert.NoError(t, c.Close())

	cfg.KafkaBrokers = []string{"localhost:9092"}
	c, err = Build(ctx, cfg, "test", discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, c.producer)

	deps := c.WorkspaceDeps()
	assert.Equal(t, cfg.APIBaseURL, deps.BaseURL)
	assert.Same(t, c.Events, deps.Events)
	assert.NoError(t, c.Close())
}

func TestApp_Readiness(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	defer backend.Close()

	a, err := NewApp(testConfig(t, backend.URL+"/api"), discardLogger())
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Shutdown()) }()

	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health/ready")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "up", gjson.GetBytes(body, "status").String())
	assert.Equal(t, "up", gjson.GetBytes(body, "checks.credentials.status").String())
	assert.True(t, gjson.GetBytes(body, "checks.credentials.critical").Bool())
	assert.Equal(t, "up", gjson.GetBytes(body, "checks.api.status").String())
}

func TestApp_ReadinessDegradedWhenAPIDown(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	apiURL := backend.URL + "/api"
	backend.Close()

	a, err := NewApp(testConfig(t, apiURL), discardLogger())
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Shutdown()) }()

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", gjson.Get(rec.Body.String(), "status").String())
	assert.Equal(t, "down", gjson.Get(rec.Body.String(), "checks.api.status").String())
}

func TestApp_LoginPageIssuesSessionCookie(t *testing.T) {
	a, err := NewApp(testConfig(t, "http://localhost:8000/api"), discardLogger())
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Shutdown()) }()

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "dividis_sid", cookies[0].Name)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t, "http://localhost:8000/api")
	cfg.HTTPPort = freePort(t)

	a, err := NewApp(cfg, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l := httptest.NewUnstartedServer(http.NotFoundHandler()).Listener
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
