package customer

import (
	"context"
	"fmt"
	"time"
	"wellness-center/internal/domain/membership"
	"wellness-center/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = fmt.Errorf("customer %w", apperrors.ErrNotFound)

	ErrDuplicatePhone = fmt.Errorf("phone number already registered: %w", apperrors.ErrAlreadyExists)

	ErrInactiveCustomer = fmt.Errorf("customer is inactive: %w", apperrors.ErrConflict)
)

type Filter struct {
	ActiveOnly bool
	Level      *membership.Level
	Status     *membership.Status
	Risk       *membership.RiskLevel
	Limit      int
	Offset     int
}

type Summary struct {
	Total    int                          `json:"total"`
	ByLevel  map[membership.Level]int     `json:"byLevel"`
	ByStatus map[membership.Status]int    `json:"byStatus"`
	ByRisk   map[membership.RiskLevel]int `json:"byRisk"`
}

func NewSummary() *Summary {
	s := &Summary{
		ByLevel:  make(map[membership.Level]int, len(membership.Levels)),
		ByStatus: make(map[membership.Status]int, len(membership.Statuses)),
		ByRisk:   make(map[membership.RiskLevel]int, len(membership.RiskLevels)),
	}
	for _, l := range membership.Levels {
		s.ByLevel[l] = 0
	}
	for _, st := range membership.Statuses {
		s.ByStatus[st] = 0
	}
	for _, r := range membership.RiskLevels {
		s.ByRisk[r] = 0
	}
	return s
}

func (s *Summary) Add(result membership.Result, count int) {
	s.Total += count
	s.ByLevel[result.MembershipLevel] += count
	s.ByStatus[result.CustomerStatus] += count
	s.ByRisk[result.RiskLevel] += count
}

type CustomerRepository interface {
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindAll(ctx context.Context, filter Filter) ([]*Customer, error)

	FindActiveIDs(ctx context.Context) ([]int64, error)

	SetActiveStatus(ctx context.Context, customerID int64, isActive bool) error

	RecordVisit(ctx context.Context, customerID int64, visitDate time.Time) error

	IncrementComplaints(ctx context.Context, customerID int64) error

	UpdateClassification(ctx context.Context, customerID int64, annualRevenue decimal.Decimal, result membership.Result, classifiedAt time.Time) error

	Summarize(ctx context.Context) (*Summary, error)
}
