package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
	"wellness-center/internal/api/handler"
	mw "wellness-center/internal/api/middleware"
	"wellness-center/internal/config"
	"wellness-center/internal/domain/classification"
	"wellness-center/internal/domain/customer"
	"wellness-center/internal/domain/payment"
	"wellness-center/internal/domain/settings"

	_ "wellness-center/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/redis/go-redis/v9"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const requestTimeout = 60 * time.Second

type Services struct {
	Customers      customer.CustomerService
	Payments       payment.PaymentService
	Criteria       settings.CriteriaService
	Classification classification.Service
	RunStarter     handler.RunStarter
	// HealthCheck is optional; when set, /health reports 503 if it fails.
	HealthCheck func(ctx context.Context) error
}

func SetupRouter(svc Services, cfg *config.Config, redisClient *redis.Client, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, redisClient, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAuthRoutes(router, cfg, logger)
	setupCustomerRoutes(router, cfg, svc, logger)
	setupSettingsRoutes(router, cfg, svc.Criteria, logger)
	setupClassificationRoutes(router, cfg, svc, logger)
	router.Get("/health", healthHandler(svc.HealthCheck, logger))
	setupSwaggerEndpoint(router, logger)

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, redisClient *redis.Client, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, redisClient, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

func healthHandler(check func(ctx context.Context) error, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				logger.WarnContext(r.Context(), "Health check failed", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}

func setupAuthRoutes(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(cfg.Server.Auth, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupCustomerRoutes(r chi.Router, cfg *config.Config, svc Services, logger *slog.Logger) {
	h := handler.NewCustomerHandler(svc.Customers, svc.Classification, logger)
	ph := handler.NewPaymentHandler(svc.Payments, logger)

	r.Route("/customers", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", h.CreateCustomer)
		r.Get("/", h.ListCustomers)
		r.Route("/{customerID}", func(r chi.Router) {
			r.Get("/", h.GetCustomer)
			r.Delete("/", h.DeactivateCustomer)
			r.Put("/reactivate", h.ReactivateCustomer)
			r.Post("/visits", h.RecordVisit)
			r.Post("/complaints", h.RecordComplaint)
			r.Post("/classification", h.Reclassify)
			r.Post("/payments", ph.RecordPayment)
			r.Get("/payments", ph.ListPayments)
			r.Post("/refunds", ph.RecordRefund)
		})
	})
}

func setupSettingsRoutes(r chi.Router, cfg *config.Config, svc settings.CriteriaService, logger *slog.Logger) {
	h := handler.NewSettingsHandler(svc, logger)

	r.Route("/settings", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Get("/membership-criteria", h.GetMembershipCriteria)
		r.Put("/membership-criteria", h.UpdateMembershipCriteria)
		r.Get("/membership-criteria/defaults", h.GetDefaultCriteria)
	})
}

func setupClassificationRoutes(r chi.Router, cfg *config.Config, svc Services, logger *slog.Logger) {
	h := handler.NewClassificationHandler(svc.Classification, svc.RunStarter, cfg.Batch.ClassificationTimeout, logger)

	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/classification/preview", h.Preview)
		r.Post("/classification/runs", h.TriggerRun)
		r.Get("/classification/runs/current", h.RunStatus)
		r.Get("/reports/classification", h.Report)
	})
}
