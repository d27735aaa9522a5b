package dto

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
	"wellness-center/internal/domain/customer"
	"wellness-center/internal/domain/membership"
)

const maxListLimit = 500

type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (r *CreateCustomerRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}

type RecordVisitRequest struct {
	VisitDate string `json:"visitDate"`
}

// Date returns the requested visit date, or the zero time for "today".
func (r *RecordVisitRequest) Date() (time.Time, error) {
	return parseOptionalDate("visitDate", r.VisitDate)
}

type CustomerResponse struct {
	CustomerID      string     `json:"customerId"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone,omitempty"`
	AnnualRevenue   string     `json:"annualRevenue"`
	TotalVisits     int        `json:"totalVisits"`
	LastVisitDate   *string    `json:"lastVisitDate,omitempty"`
	ComplaintCount  int        `json:"complaintCount"`
	MembershipLevel string     `json:"membershipLevel"`
	CustomerStatus  string     `json:"customerStatus"`
	RiskLevel       string     `json:"riskLevel"`
	Active          bool       `json:"active"`
	ClassifiedAt    *time.Time `json:"classifiedAt,omitempty"`
	CreateDate      time.Time  `json:"createDate"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func NewCustomerResponse(cust *customer.Customer) CustomerResponse {
	if cust == nil {

		return CustomerResponse{}
	}

	return CustomerResponse{
		CustomerID:      strconv.FormatInt(cust.CustomerID, 10),
		Name:            cust.Name,
		Phone:           cust.Phone,
		AnnualRevenue:   cust.AnnualRevenue.StringFixed(2),
		TotalVisits:     cust.TotalVisits,
		LastVisitDate:   formatDate(cust.LastVisitDate),
		ComplaintCount:  cust.ComplaintCount,
		MembershipLevel: string(cust.MembershipLevel),
		CustomerStatus:  string(cust.CustomerStatus),
		RiskLevel:       string(cust.RiskLevel),
		Active:          cust.Active,
		ClassifiedAt:    cust.ClassifiedAt,
		CreateDate:      cust.CreateDate,
		UpdatedAt:       cust.UpdatedAt,
	}
}

// ParseCustomerFilter reads the list query: active, level, status, risk,
// limit and offset. active defaults to true.
func ParseCustomerFilter(q url.Values) (customer.Filter, error) {
	filter := customer.Filter{ActiveOnly: true}

	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("invalid active value %q", v)
		}
		filter.ActiveOnly = active
	}
	if v := q.Get("level"); v != "" {
		level, ok := membership.ParseLevel(v)
		if !ok {
			return filter, fmt.Errorf("unknown membership level %q", v)
		}
		filter.Level = &level
	}
	if v := q.Get("status"); v != "" {
		status, ok := membership.ParseStatus(v)
		if !ok {
			return filter, fmt.Errorf("unknown customer status %q", v)
		}
		filter.Status = &status
	}
	if v := q.Get("risk"); v != "" {
		risk, ok := membership.ParseRiskLevel(v)
		if !ok {
			return filter, fmt.Errorf("unknown risk level %q", v)
		}
		filter.Risk = &risk
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > maxListLimit {
			return filter, fmt.Errorf("limit must be between 1 and %d", maxListLimit)
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			return filter, fmt.Errorf("offset must be a non-negative integer")
		}
		filter.Offset = offset
	}
	return filter, nil
}
