package app

import (
	"log/slog"
	"wellness-center/internal/batch"
	"wellness-center/internal/config"
	"wellness-center/internal/domain/classification"
	"wellness-center/internal/domain/customer"
	"wellness-center/internal/domain/payment"
	"wellness-center/internal/domain/settings"
	"wellness-center/internal/event"
	"wellness-center/internal/infrastructure/cache"
	"wellness-center/internal/infrastructure/database/postgres"

	"github.com/redis/go-redis/v9"
)

// Components is the service graph shared by the HTTP server and wellnessctl.
type Components struct {
	Customers      customer.CustomerService
	Payments       payment.PaymentService
	Criteria       settings.CriteriaService
	Classification classification.Service
	Job            *batch.ClassificationJob
}

// NewComponents wires repositories and services. redisClient and publisher
// may be nil.
func NewComponents(db postgres.DBPool, redisClient *redis.Client, publisher event.EventPublisher, cfg *config.Config, logger *slog.Logger) *Components {
	logger.Info("Initializing application components...")

	if publisher == nil {
		publisher = event.NewNoopPublisher(logger)
	}

	var criteriaCache settings.CriteriaCache
	if redisClient != nil {
		criteriaCache = cache.NewRedisCriteriaCache(redisClient, cfg.Classification.CriteriaCacheTTL, logger)
	} else {
		logger.Warn("Redis unavailable, membership criteria will be read from the database on every request")
	}

	customerRepo := postgres.NewCustomerRepository(db, logger)
	paymentRepo := postgres.NewPaymentRepository(db, logger)
	settingsRepo := postgres.NewSettingsRepository(db, logger)

	customerService := customer.NewCustomerService(customerRepo, publisher, logger)
	paymentService := payment.NewPaymentService(paymentRepo, customerService, logger)
	criteriaService := settings.NewCriteriaService(settingsRepo, criteriaCache, cfg.Classification.CriteriaKey, logger)
	classificationService := classification.NewService(customerService, paymentService, criteriaService, logger)

	return &Components{
		Customers:      customerService,
		Payments:       paymentService,
		Criteria:       criteriaService,
		Classification: classificationService,
		Job:            batch.NewClassificationJob(customerService, criteriaService, classificationService, cfg.Batch.ClassificationWorkers, logger),
	}
}
