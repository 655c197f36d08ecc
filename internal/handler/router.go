package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/satjeet/ClinePythonDividis/internal/config"
	"github.com/satjeet/ClinePythonDividis/internal/workspace"
	"github.com/satjeet/ClinePythonDividis/pkg/health"
	pkgmiddleware "github.com/satjeet/ClinePythonDividis/pkg/middleware"
)

const serviceName = "dividis-dashboard"

// NewRouter creates the dashboard router: probes and metrics, the guarded
// pages and the JSON API. ctx bounds background work of the middleware.
func NewRouter(ctx context.Context, cfg *config.Config, reg *workspace.Registry, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	h := New(reg, CookieConfig{Name: cfg.SessionCookie, Secure: cfg.CookieSecure}, logger)

	quiet := []string{"/health/live", "/health/ready", "/metrics"}

	r := chi.NewRouter()

	// Global middleware stack (applied in order).
	r.Use(pkgmiddleware.CORS(pkgmiddleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		Environment:      cfg.Environment,
	}))
	r.Use(pkgmiddleware.RateLimit(ctx, pkgmiddleware.RateLimitConfig{
		RPS:            cfg.RateLimitRPS,
		Burst:          cfg.RateLimitBurst,
		TrustedProxies: cfg.TrustedProxies,
	}, logger))
	r.Use(pkgmiddleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(pkgmiddleware.RequestLogging(logger, quiet...))
	r.Use(pkgmiddleware.PrometheusMetrics("dashboard"))
	r.Use(pkgmiddleware.Tracing(serviceName, quiet...))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	pkgmiddleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	r.Group(func(r chi.Router) {
		r.Use(h.Workspace)
		r.Use(pkgmiddleware.RequestLogger(logger, cfg.SessionCookie))

		// Pages. Unknown paths render the not-found page.
		r.Get("/", h.Page)
		r.Get("/login", h.Page)
		r.Get("/register", h.Page)
		r.Get("/dashboard", h.Page)
		r.Get("/modules/{id}", h.Page)
		r.NotFound(h.Page)

		r.Route("/api", func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(pkgmiddleware.CacheControl("no-store"))

			r.Get("/session", h.GetSession)
			r.Post("/session/login", h.Login)
			r.Post("/session/register", h.Register)
			r.Post("/session/logout", h.Logout)

			r.Get("/toasts", h.ListToasts)
			r.Delete("/toasts/{id}", h.DismissToast)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireSession)

				r.Patch("/session/profile", h.UpdateProfile)

				r.Get("/modules", h.ListModules)
				r.Post("/modules/{id}/unlock", h.UnlockModule)
				r.Get("/modules/{id}/progress", h.ModuleProgress)
				r.Get("/missions", h.ListMissions)
				r.Post("/missions/{id}/complete", h.CompleteMission)
				r.Get("/progress/overview", h.ProgressOverview)

				r.Get("/habits", h.ListHabits)
				r.Post("/habits", h.CreateHabit)
				r.Patch("/habits/{id}", h.UpdateHabit)

				r.Get("/survey/questions", h.ListQuestions)
				r.Get("/survey/answers", h.ListAnswers)
				r.Post("/survey/answers", h.SaveAnswers)
				r.Put("/survey/answers/{questionID}", h.DraftAnswer)
				r.Get("/survey/session", h.GetSurveySession)
				r.Put("/survey/session", h.UpdateSurveySession)

				r.Get("/radar", h.Radar)
			})
		})
	})

	return r
}
