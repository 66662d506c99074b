package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/infra/observability"
	"github.com/boddenberg/campus-budget-coach/internal/service"
)

var tracer = otel.Tracer("handler")

// Services groups the application services exposed over HTTP.
type Services struct {
	Spending   *service.SpendingService
	Budget     *service.BudgetService
	Simulation *service.SimulationService
	Challenge  *service.ChallengeService
	Support    *service.SupportService
}

// Dependency is a backend checked by /healthz.
type Dependency struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, auth AuthConfig, deps []Dependency, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(deps))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/engine", engineMetricsHandler(metrics))

		r.Group(func(r chi.Router) {
			r.Use(UserAuthMiddleware(auth, logger))

			// =============================================
			// Spending
			// =============================================
			r.Post("/spending/analyze", analyzeSpendingHandler(svcs.Spending, logger))
			r.Get("/spending/history", spendingHistoryHandler(svcs.Spending, logger))
			r.Get("/spending/{analysisId}", getSpendingHandler(svcs.Spending, logger))

			// =============================================
			// Budget
			// =============================================
			r.Post("/budget/recommend", recommendBudgetHandler(svcs.Budget, logger))
			r.Post("/budget/allocate", allocateHandler(svcs.Budget, logger))
			r.Get("/budget/history", budgetHistoryHandler(svcs.Budget, logger))
			r.Get("/budget/{budgetId}", getBudgetHandler(svcs.Budget, logger))

			// =============================================
			// Challenge
			// =============================================
			r.Get("/challenge/init", challengeInitHandler(svcs.Challenge, logger))
			r.Post("/challenge/simulate", simulateHandler(svcs.Simulation, logger))
			r.Post("/challenge", createChallengeHandler(svcs.Challenge, logger))
			r.Get("/challenge/my", listChallengesHandler(svcs.Challenge, logger))
			r.Get("/challenge/{challengeId}", getChallengeHandler(svcs.Challenge, logger))
			r.Patch("/challenge/{challengeId}/status", updateChallengeStatusHandler(svcs.Challenge, logger))

			// =============================================
			// Support catalog
			// =============================================
			r.Get("/support/policies", supportPoliciesHandler(svcs.Support, logger))
		})
	})

	return r
}

func healthzHandler(deps []Dependency) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "coach-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		for _, d := range deps {
			start := time.Now()
			err := d.Check(ctx)
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: d.Name, Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func engineMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetEngineSnapshot())
	}
}
