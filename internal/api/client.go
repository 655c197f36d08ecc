// Package api is the typed client for the Dividis backend REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/satjeet/ClinePythonDividis/pkg/errors"
	"github.com/satjeet/ClinePythonDividis/pkg/httpclient"
	"github.com/satjeet/ClinePythonDividis/pkg/logger"
	"github.com/satjeet/ClinePythonDividis/pkg/tracing"
	"github.com/satjeet/ClinePythonDividis/pkg/validator"
)

const tracerName = "github.com/satjeet/ClinePythonDividis/internal/api"

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dividis_api_requests_total",
			Help: "Total number of backend API calls",
		},
		[]string{"endpoint", "method", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dividis_api_request_duration_seconds",
			Help:    "Duration of backend API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)
)

// TokenSource supplies the bearer token before each request. An empty token
// means the request is sent without an Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client sends JSON requests to the backend. Endpoints are grouped by
// resource: c.Auth.Login, c.Modules.List and so on.
type Client struct {
	baseURL string
	doer    httpclient.Doer
	tokens  TokenSource
	logger  *slog.Logger

	Auth     AuthAPI
	Modules  ModulesAPI
	Missions MissionsAPI
	Progress ProgressAPI
	Habits   HabitsAPI
	Survey   SurveyAPI
}

// New creates a client for the API rooted at baseURL (for example
// http://localhost:8000/api). tokens may be nil.
func New(baseURL string, doer httpclient.Doer, tokens TokenSource, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		tokens:  tokens,
		logger:  log,
	}
	c.Auth = AuthAPI{c: c}
	c.Modules = ModulesAPI{c: c}
	c.Missions = MissionsAPI{c: c}
	c.Progress = ProgressAPI{c: c}
	c.Habits = HabitsAPI{c: c}
	c.Survey = SurveyAPI{c: c}
	return c
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// do performs one request. endpoint is the path template used for metrics
// and span names; path is the concrete path. in is validated before anything
// is sent. out may be nil.
func (c *Client) do(ctx context.Context, method, endpoint, path string, in, out any) (err error) {
	ctx, span := tracing.Tracer(tracerName).Start(ctx, "api "+method+" "+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.template", endpoint),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var body io.Reader = http.NoBody
	if in != nil {
		if err := validator.Validate(in); err != nil {
			return err
		}
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, endpoint, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}
	tracing.InjectHeaders(ctx, req.Header)

	log := logger.WithContext(ctx, c.logger)
	start := time.Now()
	resp, err := c.doer.Do(ctx, req)
	requestDuration.WithLabelValues(endpoint, method).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, method, "error").Inc()
		log.WarnContext(ctx, "api call failed",
			slog.String("method", method),
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return apperrors.Upstream(err)
	}
	requestsTotal.WithLabelValues(endpoint, method, strconv.Itoa(resp.StatusCode)).Inc()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.DebugContext(ctx, "api call rejected",
			slog.String("method", method),
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode),
		)
		return httpclient.ParseResponseError(resp)
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s response: %w", method, endpoint, err)
	}
	return nil
}

// list fetches a collection. Both a bare JSON array and a paginated
// {"results": [...]} envelope are accepted.
func list[T any](ctx context.Context, c *Client, endpoint string) ([]T, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, endpoint, endpoint, nil, &raw); err != nil {
		return nil, err
	}
	if r := gjson.GetBytes(raw, "results"); r.IsArray() {
		raw = json.RawMessage(r.Raw)
	}
	items := []T{}
	if len(raw) == 0 || string(raw) == "null" {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode GET %s response: %w", endpoint, err)
	}
	return items, nil
}
