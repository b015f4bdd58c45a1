package handler

import (
	"net/http"
	"time"

	"github.com/estetavision/esteta-bff-go/internal/domain"
	"github.com/estetavision/esteta-bff-go/internal/infra/observability"
	"github.com/estetavision/esteta-bff-go/internal/port"
	"github.com/estetavision/esteta-bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Deps bundles everything the router needs.
type Deps struct {
	Provisioning *service.ProvisioningService
	Sessions     *service.SessionService
	Dashboards   *service.DashboardService
	Leads        *service.LeadService
	Diagnostics  *service.DiagnosticsService
	Prober       port.Prober
	Metrics      *observability.Metrics
	Logger       *zap.Logger

	// AllowedOrigins for the browser frontend; "*" when empty.
	AllowedOrigins []string
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(d.Logger))
	r.Use(observability.TracingMiddleware)
	r.Use(requestCounterMiddleware(d.Metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(d.Prober, d.Logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Autenticação (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authRegisterHandler(d.Provisioning, d.Logger))
			r.Post("/login", authLoginHandler(d.Sessions, d.Logger))
			r.Post("/logout", authLogoutHandler(d.Sessions, d.Logger))
		})

		// Dashboards (protected, role-gated)
		r.Route("/dashboard", func(r chi.Router) {
			r.Use(SessionMiddleware(d.Sessions, d.Logger))
			r.With(RequireRole(d.Sessions, domain.UserTypeClient, d.Logger)).
				Get("/client", clientDashboardHandler(d.Dashboards, d.Logger))
			r.With(RequireRole(d.Sessions, domain.UserTypeProfessional, d.Logger)).
				Get("/professional", professionalDashboardHandler(d.Dashboards, d.Logger))
		})

		// Leads (protected, professional only)
		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(d.Sessions, d.Logger))
			r.Use(RequireRole(d.Sessions, domain.UserTypeProfessional, d.Logger))
			r.Post("/leads", registerInterestHandler(d.Leads, d.Logger))
		})

		// Diagnostics (public, mirrors the setup page)
		r.Post("/diagnostics/run", runDiagnosticsHandler(d.Diagnostics, d.Logger))
		r.Get("/diagnostics/run", runDiagnosticsHandler(d.Diagnostics, d.Logger))

		// Metrics summary
		r.Get("/metrics/summary", metricsSummaryHandler(d.Metrics))
	})

	return r
}

// requestCounterMiddleware feeds the requests-total counter by status class.
func requestCounterMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if ww.Status() >= 500 {
				metrics.IncrRequest("error")
			} else {
				metrics.IncrRequest("success")
			}
		})
	}
}

// ============================================================
// Health & metrics summary
// ============================================================

func healthzHandler(prober port.Prober, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "esteta-bff", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		start := time.Now()
		err := prober.ProbeTable(ctx, "users")
		latency := time.Since(start).Milliseconds()
		status := "healthy"
		if err != nil {
			logger.Warn("health probe failed", zap.Error(err))
			status = "degraded"
		}
		services = append(services, domain.ServiceHealth{
			Name: "supabase", Status: status, LatencyMs: latency, LastChecked: now,
		})

		overall := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overall,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func metricsSummaryHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetSummary())
	}
}
