package handler

import (
	"net/http"
	"time"

	"github.com/catatuang/catatuang-go/internal/domain"
	"github.com/catatuang/catatuang-go/internal/infra/observability"
	"github.com/catatuang/catatuang-go/internal/port"
	"github.com/catatuang/catatuang-go/internal/report"
	"github.com/catatuang/catatuang-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router serves.
type Services struct {
	Transactions *service.TransactionService
	Settings     *service.SettingsService
	Reports      *service.ReportService
	Auth         *service.AuthService
	Verifier     port.TokenVerifier
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	if metrics != nil {
		r.Use(requestMetricsMiddleware(metrics))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Transactions, logger))
	r.Get("/readyz", readyzHandler())
	if metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Operational metrics summary (unauthenticated, like /metrics).
		r.Get("/metrics/summary", opsMetricsHandler(metrics))

		// Authentication
		r.Route("/auth", func(r chi.Router) {
			if svcs.Auth == nil {
				r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusServiceUnavailable, "auth service unavailable")
				}))
				return
			}
			// Public routes
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))
			r.Post("/refresh", authRefreshHandler(svcs.Auth, logger))
			r.Post("/password/reset-request", authPasswordResetRequestHandler(svcs.Auth, logger))

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Verifier, logger))
				r.Put("/password", authChangePasswordHandler(svcs.Auth, logger))
				r.Put("/email", authChangeEmailHandler(svcs.Auth, logger))
				r.Delete("/account", authDeleteAccountHandler(svcs.Auth, logger))
			})
		})

		// Everything below requires a verified ID token.
		if svcs.Verifier == nil {
			return
		}
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Verifier, logger))

			// Transactions
			r.Get("/transactions", listTransactionsHandler(svcs.Transactions, logger))
			r.Post("/transactions", createTransactionHandler(svcs.Transactions, logger))
			r.Get("/transactions/summary", transactionSummaryHandler(svcs.Transactions, logger))
			r.Put("/transactions/{id}", updateTransactionHandler(svcs.Transactions, logger))
			r.Delete("/transactions/{id}", deleteTransactionHandler(svcs.Transactions, logger))

			// Categories
			r.Get("/categories", listCategoriesHandler(svcs.Settings, logger))
			r.Post("/categories", createCategoryHandler(svcs.Settings, logger))
			r.Delete("/categories/{id}", deleteCategoryHandler(svcs.Settings, logger))

			// Budgets
			r.Get("/budgets", listBudgetsHandler(svcs.Settings, logger))
			r.Put("/budgets", saveBudgetsHandler(svcs.Settings, logger))
			r.Delete("/budgets/{id}", deleteBudgetHandler(svcs.Settings, logger))

			// Reports
			r.Get("/reports/dashboard", dashboardHandler(svcs.Reports, logger))
			r.Get("/reports/trend", trendHandler(svcs.Reports, logger))
			r.Get("/reports/stream", streamHandler(svcs.Reports, logger))
		})
	})

	return r
}

// requestMetricsMiddleware counts every finished request by outcome,
// feeding the totals behind /v1/metrics/summary.
func requestMetricsMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := "success"
			if ww.Status() >= 400 {
				status = "error"
			}
			metrics.IncrRequest(status)
		})
	}
}

func healthzHandler(txSvc *service.TransactionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "catatuang-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if txSvc != nil {
			// Listing a reserved user exercises the full document store
			// path without touching real data.
			start := time.Now()
			_, err := txSvc.List(ctx, "health-check", report.Spec{})
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
				logger.Warn("health check: document store probe failed", zap.Error(err))
			}
			services = append(services, domain.ServiceHealth{
				Name: "firestore", Status: status, LatencyMs: latency, LastChecked: now,
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

func opsMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if metrics == nil {
			writeError(w, http.StatusServiceUnavailable, "metrics unavailable")
			return
		}
		writeJSON(w, http.StatusOK, metrics.GetOpsSnapshot())
	}
}
