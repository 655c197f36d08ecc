package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/satjeet/ClinePythonDividis/pkg/config"
	"github.com/satjeet/ClinePythonDividis/pkg/database"
	"github.com/satjeet/ClinePythonDividis/pkg/httpclient"
	"github.com/satjeet/ClinePythonDividis/pkg/tracing"
)

// Credential backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds all configuration for the dashboard server and the CLI.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Backend API
	APIBaseURL       string        `env:"API_BASE_URL" envDefault:"http://localhost:8000/api"`
	APITimeout       time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
	APIMaxRetries    int           `env:"API_MAX_RETRIES" envDefault:"0"`
	APIBreakerEnable bool          `env:"API_CIRCUIT_BREAKER" envDefault:"false"`

	// Credential store
	CredentialBackend string        `env:"CREDENTIAL_BACKEND" envDefault:"sqlite"`
	SQLitePath        string        `env:"DIVIDIS_SQLITE_PATH" envDefault:"dividis.db"`
	CredentialTTL     time.Duration `env:"CREDENTIAL_TTL" envDefault:"168h"`
	SlowQuery         time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"200ms"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"dividis"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"dividis"`
	PostgresDB   string `env:"DIVIDIS_DB_NAME" envDefault:"dividis"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Redis
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka. No brokers means activity events are dropped.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// Tracing
	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint      string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`

	// Dashboard server
	HTTPPort           int           `env:"DIVIDIS_HTTP_PORT" envDefault:"8090"`
	SessionCookie      string        `env:"SESSION_COOKIE_NAME" envDefault:"dividis_sid"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	CookieSecure       bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	RateLimitRPS       int           `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst     int           `env:"RATE_LIMIT_BURST" envDefault:"40"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	// Reverse proxies whose X-Forwarded-For is believed when keying rate limits.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Profiling endpoints are served only to these networks. Empty disables them.
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load dividis config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got %s", c.APITimeout)
	}
	if c.APIMaxRetries < 0 {
		return fmt.Errorf("API_MAX_RETRIES must not be negative, got %d", c.APIMaxRetries)
	}

	switch c.CredentialBackend {
	case BackendMemory, BackendSQLite, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("unknown CREDENTIAL_BACKEND %q", c.CredentialBackend)
	}

	if c.CredentialTTL < 0 || c.SlowQuery < 0 {
		return fmt.Errorf("CREDENTIAL_TTL and DB_SLOW_QUERY_THRESHOLD must not be negative")
	}

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.SessionCookie == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive, got rps=%d burst=%d", c.RateLimitRPS, c.RateLimitBurst)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATE must be within [0,1], got %v", c.TracingSampleRate)
	}
	if c.Environment != "development" && !c.CookieSecure {
		return fmt.Errorf("SESSION_COOKIE_SECURE must be enabled in %s environment", c.Environment)
	}
	return nil
}

// HTTPClientConfig returns the transport settings for the backend API.
func (c *Config) HTTPClientConfig() httpclient.Config {
	hc := httpclient.DefaultConfig()
	hc.Timeout = c.APITimeout
	hc.MaxRetries = c.APIMaxRetries
	return hc
}

// PostgresConfig returns the connection settings for the Postgres credential store.
func (c *Config) PostgresConfig() database.PostgresConfig {
	pc := database.DefaultPostgresConfig()
	pc.Host = c.PostgresHost
	pc.Port = c.PostgresPort
	pc.User = c.PostgresUser
	pc.Password = c.PostgresPass
	pc.DBName = c.PostgresDB
	pc.SSLMode = c.PostgresSSL
	pc.AppName = "dividis"
	return pc
}

// RedisConfig returns the connection settings for the Redis credential store.
func (c *Config) RedisConfig() database.RedisConfig {
	return database.RedisConfig{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// SQLiteConfig returns the settings for the SQLite credential store.
func (c *Config) SQLiteConfig() database.SQLiteConfig {
	return database.SQLiteConfig{Path: c.SQLitePath}
}

// TracingConfig returns the OpenTelemetry settings for the named service.
func (c *Config) TracingConfig(service string) tracing.Config {
	tc := tracing.DefaultConfig(service)
	tc.Environment = c.Environment
	tc.Enabled = c.TracingEnabled
	tc.OTLPEndpoint = c.OTLPEndpoint
	tc.SampleRate = c.TracingSampleRate
	return tc
}
