package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/satjeet/ClinePythonDividis/internal/chart"
	"github.com/satjeet/ClinePythonDividis/internal/domain"
)

// ResultsService returns survey averages. api.SurveyAPI implements it.
type ResultsService interface {
	Results(ctx context.Context) (*domain.SurveyResults, error)
}

// Radar holds the eight vital area values drawn on the dashboard radar.
type Radar struct {
	*opState

	api      ResultsService
	fetching atomic.Bool

	mu     sync.RWMutex
	values []float64
}

// NewRadar starts with the placeholder values shown before any survey.
func NewRadar(svc ResultsService, log *slog.Logger) *Radar {
	return &Radar{
		opState: newOpState("radar", log),
		api:     svc,
		values:  chart.ChartValues(nil),
	}
}

// FetchRadarValues loads survey results. A call made while another fetch
// is running returns immediately. When the fetch fails, or the response
// does not hold one value per area, every value becomes zero.
func (r *Radar) FetchRadarValues(ctx context.Context) error {
	if !r.fetching.CompareAndSwap(false, true) {
		r.logger.DebugContext(ctx, "radar fetch already running")
		return nil
	}
	defer r.fetching.Store(false)

	r.begin()
	defer r.end()

	res, err := r.api.Results(ctx)
	if err == nil && len(res.Values) != domain.AreaCount {
		err = fmt.Errorf("%w: got %d", ErrRadarShape, len(res.Values))
	}
	if err != nil {
		r.setValues(make([]float64, domain.AreaCount))
		return r.fail(ctx, "fetch_radar", err, msgRadar)
	}
	r.setValues(append([]float64(nil), res.Values...))
	return nil
}

func (r *Radar) setValues(v []float64) {
	r.mu.Lock()
	r.values = v
	r.mu.Unlock()
}

func (r *Radar) Values() []float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]float64(nil), r.values...)
}

// Option returns the chart option for the current values.
func (r *Radar) Option() chart.Option {
	return chart.RadarOption(r.Values())
}
