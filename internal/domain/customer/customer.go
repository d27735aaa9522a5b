package customer

import (
	"time"
	"wellness-center/internal/domain/membership"

	"github.com/shopspring/decimal"
)

type Customer struct {
	CustomerID      int64                `json:"customerId"`
	Name            string               `json:"name"`
	Phone           string               `json:"phone"`
	AnnualRevenue   decimal.Decimal      `json:"annualRevenue"`
	TotalVisits     int                  `json:"totalVisits"`
	LastVisitDate   *time.Time           `json:"lastVisitDate,omitempty"`
	ComplaintCount  int                  `json:"complaintCount"`
	MembershipLevel membership.Level     `json:"membershipLevel"`
	CustomerStatus  membership.Status    `json:"customerStatus"`
	RiskLevel       membership.RiskLevel `json:"riskLevel"`
	Active          bool                 `json:"active"`
	ClassifiedAt    *time.Time           `json:"classifiedAt,omitempty"`
	CreateDate      time.Time            `json:"createDate"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// NewCustomer starts a customer with zero aggregates, which classifies as
// basic, dormant and high risk.
func NewCustomer(name, phone string) *Customer {
	now := time.Now()
	return &Customer{
		Name:            name,
		Phone:           phone,
		AnnualRevenue:   decimal.Zero,
		MembershipLevel: membership.LevelBasic,
		CustomerStatus:  membership.StatusDormant,
		RiskLevel:       membership.RiskHighRisk,
		Active:          true,
		CreateDate:      now,
		UpdatedAt:       now,
	}
}

// RecordVisit counts a visit and moves the last visit date forward. A
// backdated visit still counts but never moves the date back.
func (c *Customer) RecordVisit(visitDate time.Time) {
	c.TotalVisits++
	if c.LastVisitDate == nil || visitDate.After(*c.LastVisitDate) {
		d := visitDate
		c.LastVisitDate = &d
	}
	c.UpdatedAt = time.Now()
}

func (c *Customer) RecordComplaint() {
	c.ComplaintCount++
	c.UpdatedAt = time.Now()
}

func (c *Customer) Deactivate() {
	if c.Active {
		c.Active = false
		c.UpdatedAt = time.Now()
	}
}

func (c *Customer) Reactivate() {
	if !c.Active {
		c.Active = true
		c.UpdatedAt = time.Now()
	}
}

func (c *Customer) Classification() membership.Result {
	return membership.Result{
		MembershipLevel: c.MembershipLevel,
		CustomerStatus:  c.CustomerStatus,
		RiskLevel:       c.RiskLevel,
	}
}

// ClassificationInput snapshots the aggregates the engine reads, using the
// given revenue in place of the stored one.
func (c *Customer) ClassificationInput(annualRevenue decimal.Decimal) membership.Input {
	return membership.Input{
		AnnualRevenue:  annualRevenue,
		TotalVisits:    c.TotalVisits,
		LastVisitDate:  c.LastVisitDate,
		ComplaintCount: c.ComplaintCount,
	}
}

// ApplyClassification stores a fresh result and reports whether any label
// changed. Revenue and classified-at are always refreshed.
func (c *Customer) ApplyClassification(annualRevenue decimal.Decimal, result membership.Result, at time.Time) bool {
	changed := c.Classification() != result
	c.AnnualRevenue = annualRevenue
	c.MembershipLevel = result.MembershipLevel
	c.CustomerStatus = result.CustomerStatus
	c.RiskLevel = result.RiskLevel
	c.ClassifiedAt = &at
	c.UpdatedAt = time.Now()
	return changed
}
