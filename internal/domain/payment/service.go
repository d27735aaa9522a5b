package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"wellness-center/internal/domain/customer"
	"wellness-center/internal/domain/membership"
	"wellness-center/internal/infrastructure/monitoring"
	"wellness-center/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

const (
	kindPayment = "payment"
	kindRefund  = "refund"
)

type PaymentService interface {
	RecordPayment(ctx context.Context, customerID int64, paymentDate time.Time, amount decimal.Decimal, method Method, note string) (*Payment, error)
	RecordRefund(ctx context.Context, customerID int64, refundDate time.Time, amount decimal.Decimal, note string) (*Payment, error)
	ListPayments(ctx context.Context, customerID int64) ([]*Payment, error)
	AnnualRevenue(ctx context.Context, customerID int64, now time.Time) (decimal.Decimal, error)
}

type CustomerGetter interface {
	GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error)
}

type paymentService struct {
	repo      Repository
	customers CustomerGetter
	logger    *slog.Logger
	now       func() time.Time
}

func NewPaymentService(repo Repository, customers CustomerGetter, logger *slog.Logger) PaymentService {
	if repo == nil || customers == nil || logger == nil {
		panic("PaymentService dependencies cannot be nil")
	}
	return &paymentService{
		repo:      repo,
		customers: customers,
		logger:    logger.With(slog.String("component", "paymentService")),
		now:       time.Now,
	}
}

func (s *paymentService) RecordPayment(ctx context.Context, customerID int64, paymentDate time.Time, amount decimal.Decimal, method Method, note string) (p *Payment, err error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID), slog.String("amount", amount.String()))
	logCtx.InfoContext(ctx, "Recording payment")
	defer func() { recordOutcome(kindPayment, err) }()

	if !amount.IsPositive() {
		logCtx.WarnContext(ctx, "Validation failed: payment amount must be positive")
		return nil, fmt.Errorf("%w: payment amount must be greater than zero", apperrors.ErrInvalidPaymentAmount)
	}
	if err = ValidateAmount(amount); err != nil {
		logCtx.WarnContext(ctx, "Validation failed: payment amount not representable", slog.Any("error", err))
		return nil, err
	}
	if method == "" {
		method = MethodCard
	}

	cust, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if !cust.Active {
		logCtx.WarnContext(ctx, "Business rule failed: cannot take payment from inactive customer")
		return nil, customer.ErrInactiveCustomer
	}

	return s.save(ctx, logCtx, customerID, paymentDate, amount, method, note)
}

// RecordRefund stores the refund as a negative ledger entry. Refunds are
// accepted for inactive customers too.
func (s *paymentService) RecordRefund(ctx context.Context, customerID int64, refundDate time.Time, amount decimal.Decimal, note string) (p *Payment, err error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID), slog.String("amount", amount.String()))
	logCtx.InfoContext(ctx, "Recording refund")
	defer func() { recordOutcome(kindRefund, err) }()

	if !amount.IsPositive() {
		logCtx.WarnContext(ctx, "Validation failed: refund amount must be positive")
		return nil, fmt.Errorf("%w: refund amount must be greater than zero", apperrors.ErrInvalidPaymentAmount)
	}
	if err = ValidateAmount(amount); err != nil {
		logCtx.WarnContext(ctx, "Validation failed: refund amount not representable", slog.Any("error", err))
		return nil, err
	}

	if _, err = s.customers.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	return s.save(ctx, logCtx, customerID, refundDate, amount.Neg(), MethodRefund, note)
}

func (s *paymentService) save(ctx context.Context, logCtx *slog.Logger, customerID int64, date time.Time, amount decimal.Decimal, method Method, note string) (*Payment, error) {
	now := s.now()
	if date.IsZero() {
		date = now
	}
	if membership.DaysBetween(date, now) < 0 {
		logCtx.WarnContext(ctx, "Validation failed: payment date is in the future", slog.Time("paymentDate", date))
		return nil, apperrors.NewValidationError("paymentDate", "payment date cannot be in the future")
	}
	y, m, d := date.Date()

	p := &Payment{
		CustomerID:  customerID,
		PaymentDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Amount:      amount,
		Method:      method,
		Note:        strings.TrimSpace(note),
	}

	if err := s.repo.Save(ctx, p); err != nil {
		logCtx.ErrorContext(ctx, "Repository failed to save payment", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save payment for customer %d: %w", customerID, err)
	}

	logCtx.InfoContext(ctx, "Payment recorded", slog.Int64("paymentID", p.PaymentID), slog.Bool("refund", p.IsRefund()))
	return p, nil
}

func (s *paymentService) ListPayments(ctx context.Context, customerID int64) ([]*Payment, error) {
	if _, err := s.customers.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	payments, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to list payments", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to list payments for customer %d: %w", customerID, err)
	}
	return payments, nil
}

// AnnualRevenue loads the trailing window from the ledger and sums it with the
// classification engine, which applies the same window again.
func (s *paymentService) AnnualRevenue(ctx context.Context, customerID int64, now time.Time) (decimal.Decimal, error) {
	since := membership.RevenueWindowStart(now)
	payments, err := s.repo.FindByCustomerSince(ctx, customerID, since)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to load trailing payments", slog.Int64("customerID", customerID), slog.Any("error", err))
		return decimal.Zero, fmt.Errorf("failed to load payments for customer %d: %w", customerID, err)
	}
	return membership.CalculateAnnualRevenue(Entries(payments), now), nil
}

func recordOutcome(kind string, err error) {
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrInvalidPaymentAmount), errors.Is(err, apperrors.ErrValidation):
		status = "failure_validation"
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrConflict):
		status = "failure_customer"
	default:
		status = "failure_internal"
	}
	monitoring.RecordPayment(kind, status)
}
