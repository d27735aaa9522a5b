// Package classification drives the membership engine for stored customers:
// it gathers a customer's aggregates, classifies them and persists the labels.
package classification

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"wellness-center/internal/domain/customer"
	"wellness-center/internal/domain/membership"
	"wellness-center/internal/domain/payment"
	"wellness-center/internal/domain/settings"
	"wellness-center/internal/infrastructure/monitoring"
	"wellness-center/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

type Outcome struct {
	CustomerID    int64
	AnnualRevenue decimal.Decimal
	Previous      membership.Result
	Result        membership.Result
	Changed       bool
	ClassifiedAt  time.Time
}

type Service interface {
	ReclassifyCustomer(ctx context.Context, customerID int64, now time.Time) (*Outcome, error)
	// ReclassifyWithCriteria is ReclassifyCustomer with criteria already
	// loaded, for callers that classify many customers in one pass.
	ReclassifyWithCriteria(ctx context.Context, customerID int64, criteria membership.Criteria, now time.Time) (*Outcome, error)
	Preview(ctx context.Context, input membership.Input, now time.Time) (membership.Result, error)
	Summary(ctx context.Context) (*customer.Summary, error)
}

var _ Service = (*service)(nil)

type service struct {
	customers customer.CustomerService
	payments  payment.PaymentService
	criteria  settings.CriteriaService
	logger    *slog.Logger
}

func NewService(customers customer.CustomerService, payments payment.PaymentService, criteria settings.CriteriaService, logger *slog.Logger) Service {
	if customers == nil || payments == nil || criteria == nil || logger == nil {
		panic("classification service dependencies cannot be nil")
	}
	return &service{
		customers: customers,
		payments:  payments,
		criteria:  criteria,
		logger:    logger.With(slog.String("component", "classificationService")),
	}
}

func (s *service) ReclassifyCustomer(ctx context.Context, customerID int64, now time.Time) (*Outcome, error) {
	criteria, _, err := s.criteria.EffectiveCriteria(ctx)
	if err != nil {
		return nil, err
	}
	return s.ReclassifyWithCriteria(ctx, customerID, criteria, now)
}

func (s *service) ReclassifyWithCriteria(ctx context.Context, customerID int64, criteria membership.Criteria, now time.Time) (*Outcome, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.DebugContext(ctx, "Reclassifying customer")

	cust, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	revenue, err := s.payments.AnnualRevenue(ctx, customerID, now)
	if err != nil {
		return nil, err
	}

	previous := cust.Classification()
	result := membership.Classify(cust.ClassificationInput(revenue), criteria, now)

	changed, err := s.customers.ApplyClassification(ctx, cust, revenue, result, now)
	if err != nil {
		return nil, err
	}
	monitoring.RecordClassification(string(result.MembershipLevel), changed)

	logCtx.DebugContext(ctx, "Customer reclassified",
		slog.String("membershipLevel", string(result.MembershipLevel)),
		slog.String("customerStatus", string(result.CustomerStatus)),
		slog.String("riskLevel", string(result.RiskLevel)),
		slog.Bool("changed", changed),
	)

	return &Outcome{
		CustomerID:    customerID,
		AnnualRevenue: revenue,
		Previous:      previous,
		Result:        result,
		Changed:       changed,
		ClassifiedAt:  now,
	}, nil
}

func (s *service) Preview(ctx context.Context, input membership.Input, now time.Time) (membership.Result, error) {
	if input.TotalVisits < 0 || input.ComplaintCount < 0 {
		return membership.Result{}, apperrors.NewValidationError("totalVisits", "visit and complaint counts must not be negative")
	}

	criteria, configured, err := s.criteria.EffectiveCriteria(ctx)
	if err != nil {
		return membership.Result{}, fmt.Errorf("failed to load criteria for preview: %w", err)
	}
	if !configured {
		s.logger.InfoContext(ctx, "Previewing classification against default criteria")
	}
	return membership.Classify(input, criteria, now), nil
}

func (s *service) Summary(ctx context.Context) (*customer.Summary, error) {
	return s.customers.ClassificationSummary(ctx)
}
