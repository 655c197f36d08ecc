package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned without calling the backend while the breaker
// is open.
var ErrCircuitOpen = gobreaker.ErrOpenState

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dividis_backend_breaker_state",
		Help: "Backend circuit breaker state: 0 closed, 1 half-open, 2 open.",
	}, []string{"name"})

	breakerRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dividis_backend_breaker_rejected_total",
		Help: "Backend calls refused by an open or saturated half-open breaker.",
	}, []string{"name"})
)

// CircuitBreakerConfig tunes the breaker in front of the backend API.
type CircuitBreakerConfig struct {
	Name string
	// MaxRequests is the number of probes let through while half-open.
	MaxRequests uint32
	// Interval resets the closed-state counts; zero keeps them forever.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// The breaker trips when at least MinRequests were seen and the share of
	// failures reaches FailureRatio.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultCircuitBreakerConfig returns the settings used for the backend API.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

func (cfg CircuitBreakerConfig) readyToTrip(c gobreaker.Counts) bool {
	if c.Requests < cfg.MinRequests {
		return false
	}
	return float64(c.TotalFailures)/float64(c.Requests) >= cfg.FailureRatio
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// failedResponse lets a 5xx response count against the breaker while the
// caller still gets the response and its error body.
type failedResponse struct{ resp *http.Response }

func (f failedResponse) Error() string {
	return fmt.Sprintf("backend answered %d", f.resp.StatusCode)
}

// CircuitBreakerClient is a Doer that stops calling a failing backend for a
// while instead of piling up requests against it.
type CircuitBreakerClient struct {
	next    Doer
	name    string
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

var _ Doer = (*CircuitBreakerClient)(nil)

// NewCircuitBreakerClient wraps next. logger may be nil.
func NewCircuitBreakerClient(next Doer, cfg CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerClient {
	if logger == nil {
		logger = slog.Default()
	}
	breakerState.WithLabelValues(cfg.Name).Set(0)

	return &CircuitBreakerClient{
		next: next,
		name: cfg.Name,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: cfg.readyToTrip,
			OnStateChange: func(name string, from, to gobreaker.State) {
				breakerState.WithLabelValues(name).Set(stateValue(to))
				logger.Warn("backend breaker changed state",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			},
		}),
	}
}

// Do sends req unless the breaker is open. Transport errors and 5xx answers
// count as failures; 4xx answers are the caller's problem and do not.
func (c *CircuitBreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.next.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, failedResponse{resp: resp}
		}
		return resp, nil
	})

	var failed failedResponse
	switch {
	case err == nil:
		return resp, nil
	case errors.As(err, &failed):
		return failed.resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		breakerRejected.WithLabelValues(c.name).Inc()
		return nil, fmt.Errorf("backend %s: %w", c.name, err)
	default:
		return nil, err
	}
}

// State reports the breaker state.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.breaker.State()
}
