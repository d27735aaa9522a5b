package event

import (
	"time"

	"github.com/google/uuid"
)

type CustomerEventPayload struct {
	CustomerID      int64     `json:"customerId"`
	Name            string    `json:"name"`
	MembershipLevel string    `json:"membershipLevel"`
	CustomerStatus  string    `json:"customerStatus"`
	RiskLevel       string    `json:"riskLevel"`
	Active          bool      `json:"active"`
	CreateDate      time.Time `json:"createDate"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type CustomerCreatedEvent struct {
	EventID   string               `json:"eventId"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

func NewCustomerCreatedEvent(payload CustomerEventPayload) CustomerCreatedEvent {
	return CustomerCreatedEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

type Classification struct {
	MembershipLevel string `json:"membershipLevel"`
	CustomerStatus  string `json:"customerStatus"`
	RiskLevel       string `json:"riskLevel"`
}

type ClassificationChangedEvent struct {
	EventID       string         `json:"eventId"`
	Timestamp     time.Time      `json:"timestamp"`
	CustomerID    int64          `json:"customerId"`
	AnnualRevenue string         `json:"annualRevenue"`
	Previous      Classification `json:"previous"`
	Current       Classification `json:"current"`
}

func NewClassificationChangedEvent(customerID int64, annualRevenue string, previous, current Classification) ClassificationChangedEvent {
	return ClassificationChangedEvent{
		EventID:       uuid.NewString(),
		Timestamp:     time.Now(),
		CustomerID:    customerID,
		AnnualRevenue: annualRevenue,
		Previous:      previous,
		Current:       current,
	}
}

// LevelChanged reports whether the membership tier moved, as opposed to only
// status or risk.
func (e ClassificationChangedEvent) LevelChanged() bool {
	return e.Previous.MembershipLevel != e.Current.MembershipLevel
}
