package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"wellness-center/internal/domain/membership"
	"wellness-center/internal/event"
	"wellness-center/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

const (
	inputValidationPassed = "Input validation passed"
	customerNotFound      = "Customer not found by repository"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, name, phone string) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	ListCustomers(ctx context.Context, filter Filter) ([]*Customer, error)
	ListActiveCustomerIDs(ctx context.Context) ([]int64, error)
	RecordVisit(ctx context.Context, customerID int64, visitDate time.Time) (*Customer, error)
	RecordComplaint(ctx context.Context, customerID int64) (*Customer, error)
	DeactivateCustomer(ctx context.Context, customerID int64) error
	ReactivateCustomer(ctx context.Context, customerID int64) error
	ApplyClassification(ctx context.Context, cust *Customer, annualRevenue decimal.Decimal, result membership.Result, classifiedAt time.Time) (bool, error)
	ClassificationSummary(ctx context.Context) (*Summary, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

func NewCustomerService(repo CustomerRepository, publisher event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	if publisher == nil {
		logger.Warn("Warning: No event publisher provided to NewCustomerService, events will be dropped")
		publisher = event.NewNoopPublisher(logger)
	}

	return &customerService{
		repo:   repo,
		pub:    publisher,
		logger: logger.With(slog.String("component", "customerService")),
		now:    time.Now,
	}
}

func NewCustomerEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID:      cust.CustomerID,
		Name:            cust.Name,
		MembershipLevel: string(cust.MembershipLevel),
		CustomerStatus:  string(cust.CustomerStatus),
		RiskLevel:       string(cust.RiskLevel),
		Active:          cust.Active,
		CreateDate:      cust.CreateDate,
		UpdatedAt:       cust.UpdatedAt,
	}
}

func toEventClassification(r membership.Result) event.Classification {
	return event.Classification{
		MembershipLevel: string(r.MembershipLevel),
		CustomerStatus:  string(r.CustomerStatus),
		RiskLevel:       string(r.RiskLevel),
	}
}

func (s *customerService) CreateCustomer(ctx context.Context, name, phone string) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to create new customer")

	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		s.logger.WarnContext(ctx, "Validation failed: name is empty")
		return nil, apperrors.NewValidationError("name", "customer name cannot be empty")
	}
	logCtx := s.logger.With(slog.String("validated_name", name))
	logCtx.InfoContext(ctx, inputValidationPassed)

	cust := NewCustomer(name, phone)

	logCtx.InfoContext(ctx, "Calling repository Save")
	if err := s.repo.Save(ctx, cust); err != nil {
		if errors.Is(err, ErrDuplicatePhone) {
			logCtx.WarnContext(ctx, "Phone number already registered")
			return nil, ErrDuplicatePhone
		}
		logCtx.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}
	logCtx = logCtx.With(slog.Int64("customerID", cust.CustomerID))

	logCtx.InfoContext(ctx, "Successfully saved new customer, publishing creation event")
	if pubErr := s.pub.PublishCustomerCreated(ctx, event.NewCustomerCreatedEvent(NewCustomerEventPayload(cust))); pubErr != nil {
		logCtx.ErrorContext(ctx, "Customer created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	logCtx.InfoContext(ctx, "Successfully created new customer")
	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to get customer by ID")

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	logCtx.InfoContext(ctx, "Successfully retrieved customer")
	return cust, nil
}

func (s *customerService) ListCustomers(ctx context.Context, filter Filter) ([]*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to list customers", slog.Bool("activeOnly", filter.ActiveOnly))

	if filter.Level != nil && !filter.Level.Valid() {
		return nil, apperrors.NewValidationError("level", fmt.Sprintf("unknown membership level %q", *filter.Level))
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError("status", fmt.Sprintf("unknown customer status %q", *filter.Status))
	}
	if filter.Risk != nil && !filter.Risk.Valid() {
		return nil, apperrors.NewValidationError("risk", fmt.Sprintf("unknown risk level %q", *filter.Risk))
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, apperrors.NewValidationError("limit", "limit and offset must not be negative")
	}

	customers, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) ListActiveCustomerIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.repo.FindActiveIDs(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing active customer IDs", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list active customer IDs: %w", err)
	}
	return ids, nil
}

func (s *customerService) findActive(ctx context.Context, customerID int64, logCtx *slog.Logger) (*Customer, error) {
	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("cannot find customer %d: %w", customerID, err)
	}
	if !cust.Active {
		logCtx.WarnContext(ctx, "Business rule failed: customer is inactive")
		return nil, ErrInactiveCustomer
	}
	return cust, nil
}

func (s *customerService) RecordVisit(ctx context.Context, customerID int64, visitDate time.Time) (*Customer, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to record customer visit")

	now := s.now()
	if visitDate.IsZero() {
		visitDate = now
	}
	if membership.DaysBetween(visitDate, now) < 0 {
		logCtx.WarnContext(ctx, "Validation failed: visit date is in the future", slog.Time("visitDate", visitDate))
		return nil, apperrors.NewValidationError("visitDate", "visit date cannot be in the future")
	}
	y, m, d := visitDate.Date()
	visitDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	if _, err := s.findActive(ctx, customerID, logCtx); err != nil {
		return nil, err
	}

	if err := s.repo.RecordVisit(ctx, customerID, visitDate); err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.ErrorContext(ctx, "Customer disappeared before visit was recorded")
			return nil, ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository failed to record visit", slog.Any("error", err))
		return nil, fmt.Errorf("failed to record visit for customer %d: %w", customerID, err)
	}

	updated, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Visit recorded, but FAILED to re-fetch customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to reload customer %d: %w", customerID, err)
	}

	logCtx.InfoContext(ctx, "Successfully recorded customer visit", slog.Int("totalVisits", updated.TotalVisits))
	return updated, nil
}

func (s *customerService) RecordComplaint(ctx context.Context, customerID int64) (*Customer, error) {
	logCtx := s.logger.With(slog.Int64("customerID", customerID))
	logCtx.InfoContext(ctx, "Attempting to record customer complaint")

	if err := s.repo.IncrementComplaints(ctx, customerID); err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return nil, ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository failed to record complaint", slog.Any("error", err))
		return nil, fmt.Errorf("failed to record complaint for customer %d: %w", customerID, err)
	}

	updated, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Complaint recorded, but FAILED to re-fetch customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to reload customer %d: %w", customerID, err)
	}

	logCtx.InfoContext(ctx, "Successfully recorded customer complaint", slog.Int("complaintCount", updated.ComplaintCount))
	return updated, nil
}

func (s *customerService) DeactivateCustomer(ctx context.Context, customerID int64) error {
	return s.setActive(ctx, customerID, false)
}

func (s *customerService) ReactivateCustomer(ctx context.Context, customerID int64) error {
	return s.setActive(ctx, customerID, true)
}

func (s *customerService) setActive(ctx context.Context, customerID int64, active bool) error {
	logCtx := s.logger.With(slog.Int64("customerID", customerID), slog.Bool("isActive", active))
	logCtx.InfoContext(ctx, "Calling repository SetActiveStatus")

	if err := s.repo.SetActiveStatus(ctx, customerID, active); err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository error updating active status", slog.Any("error", err))
		return fmt.Errorf("failed to update active status for customer %d: %w", customerID, err)
	}

	logCtx.InfoContext(ctx, "Successfully updated customer active status")
	return nil
}

// ApplyClassification persists the derived labels and revenue, then publishes a
// change event when any label moved. It returns whether a label changed.
func (s *customerService) ApplyClassification(ctx context.Context, cust *Customer, annualRevenue decimal.Decimal, result membership.Result, classifiedAt time.Time) (bool, error) {
	if cust == nil {
		return false, fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	logCtx := s.logger.With(slog.Int64("customerID", cust.CustomerID))

	if err := s.repo.UpdateClassification(ctx, cust.CustomerID, annualRevenue, result, classifiedAt); err != nil {
		if errors.Is(err, ErrNotFound) {
			logCtx.WarnContext(ctx, customerNotFound)
			return false, ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Repository failed to store classification", slog.Any("error", err))
		return false, fmt.Errorf("failed to store classification for customer %d: %w", cust.CustomerID, err)
	}

	previous := cust.Classification()
	changed := cust.ApplyClassification(annualRevenue, result, classifiedAt)
	if !changed {
		logCtx.DebugContext(ctx, "Classification unchanged")
		return false, nil
	}

	logCtx.InfoContext(ctx, "Classification changed, publishing event",
		slog.String("from_level", string(previous.MembershipLevel)),
		slog.String("to_level", string(result.MembershipLevel)),
		slog.String("status", string(result.CustomerStatus)),
		slog.String("risk", string(result.RiskLevel)),
	)
	evt := event.NewClassificationChangedEvent(cust.CustomerID, annualRevenue.StringFixed(2),
		toEventClassification(previous), toEventClassification(result))
	if pubErr := s.pub.PublishClassificationChanged(ctx, evt); pubErr != nil {
		logCtx.ErrorContext(ctx, "Classification stored, but FAILED to publish change event", slog.Any("error", pubErr))
	}
	return true, nil
}

func (s *customerService) ClassificationSummary(ctx context.Context) (*Summary, error) {
	summary, err := s.repo.Summarize(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error summarizing classifications", slog.Any("error", err))
		return nil, fmt.Errorf("failed to summarize classifications: %w", err)
	}
	return summary, nil
}
