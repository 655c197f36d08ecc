package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/satjeet/ClinePythonDividis/pkg/httputil"
)

// Checker reports whether one dependency is usable.
type Checker func(ctx context.Context) error

type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

const defaultCheckTimeout = 5 * time.Second

// Response is the body of both probes. Liveness leaves Checks empty.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Status    Status `json:"status"`
	Critical  bool   `json:"critical"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type check struct {
	name     string
	fn       Checker
	critical bool
}

// Handler serves the liveness and readiness probes. Readiness runs every
// registered check concurrently. A failing critical check answers 503; a
// failing non-critical one reports "degraded" with 200.
type Handler struct {
	// Timeout bounds each readiness run; zero means five seconds.
	Timeout time.Duration

	mu     sync.RWMutex
	checks []check
}

func NewHandler() *Handler {
	return &Handler{Timeout: defaultCheckTimeout}
}

// RegisterCritical adds a check whose failure makes the service unready.
// Registering a name twice replaces the earlier check.
func (h *Handler) RegisterCritical(name string, fn Checker) { h.add(check{name, fn, true}) }

// RegisterNonCritical adds a check whose failure only degrades the service.
func (h *Handler) RegisterNonCritical(name string, fn Checker) { h.add(check{name, fn, false}) }

func (h *Handler) add(c check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.checks {
		if h.checks[i].name == c.name {
			h.checks[i] = c
			return
		}
	}
	h.checks = append(h.checks, c)
}

// LivenessHandler answers 200 while the process can serve HTTP at all.
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, Response{Status: StatusUp, Timestamp: time.Now().UTC()})
	}
}

func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := h.Check(r.Context())
		code := http.StatusOK
		if resp.Status == StatusDown {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, resp)
	}
}

// Check runs all registered checks and folds them into one status.
func (h *Handler) Check(ctx context.Context) Response {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	h.mu.RLock()
	checks := append([]check(nil), h.checks...)
	h.mu.RUnlock()

	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = run(ctx, c)
		}()
	}
	wg.Wait()

	resp := Response{Status: StatusUp, Timestamp: time.Now().UTC(), Checks: make(map[string]CheckResult, len(checks))}
	for i, res := range results {
		resp.Checks[checks[i].name] = res
		switch {
		case res.Status == StatusUp:
		case res.Critical:
			resp.Status = StatusDown
		case resp.Status == StatusUp:
			resp.Status = StatusDegraded
		}
	}
	return resp
}

func run(ctx context.Context, c check) CheckResult {
	start := time.Now()
	err := c.fn(ctx)
	res := CheckResult{Status: StatusUp, Critical: c.critical, LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		res.Status = StatusDown
		res.Error = err.Error()
	}
	return res
}
