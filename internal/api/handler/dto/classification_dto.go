package dto

import (
	"fmt"
	"strconv"
	"time"
	"wellness-center/internal/domain/classification"
	"wellness-center/internal/domain/customer"
	"wellness-center/internal/domain/membership"
)

type PreviewRequest struct {
	AnnualRevenue  string `json:"annualRevenue"`
	TotalVisits    int    `json:"totalVisits"`
	LastVisitDate  string `json:"lastVisitDate"`
	ComplaintCount int    `json:"complaintCount"`
}

func (r *PreviewRequest) Input() (membership.Input, error) {
	revenue, err := parseAmount(r.AnnualRevenue)
	if err != nil {
		return membership.Input{}, fmt.Errorf("annualRevenue: %w", err)
	}
	if r.TotalVisits < 0 {
		return membership.Input{}, fmt.Errorf("totalVisits cannot be negative")
	}
	if r.ComplaintCount < 0 {
		return membership.Input{}, fmt.Errorf("complaintCount cannot be negative")
	}
	lastVisit, err := parseOptionalDate("lastVisitDate", r.LastVisitDate)
	if err != nil {
		return membership.Input{}, err
	}

	in := membership.Input{
		AnnualRevenue:  revenue,
		TotalVisits:    r.TotalVisits,
		ComplaintCount: r.ComplaintCount,
	}
	if !lastVisit.IsZero() {
		in.LastVisitDate = &lastVisit
	}
	return in, nil
}

type ClassificationResponse struct {
	MembershipLevel string `json:"membershipLevel"`
	CustomerStatus  string `json:"customerStatus"`
	RiskLevel       string `json:"riskLevel"`
}

func NewClassificationResponse(r membership.Result) ClassificationResponse {
	return ClassificationResponse{
		MembershipLevel: string(r.MembershipLevel),
		CustomerStatus:  string(r.CustomerStatus),
		RiskLevel:       string(r.RiskLevel),
	}
}

type OutcomeResponse struct {
	CustomerID     string                 `json:"customerId"`
	AnnualRevenue  string                 `json:"annualRevenue"`
	Previous       ClassificationResponse `json:"previous"`
	Classification ClassificationResponse `json:"classification"`
	Changed        bool                   `json:"changed"`
	ClassifiedAt   time.Time              `json:"classifiedAt"`
}

func NewOutcomeResponse(out *classification.Outcome) OutcomeResponse {
	if out == nil {
		return OutcomeResponse{}
	}
	return OutcomeResponse{
		CustomerID:     strconv.FormatInt(out.CustomerID, 10),
		AnnualRevenue:  out.AnnualRevenue.StringFixed(2),
		Previous:       NewClassificationResponse(out.Previous),
		Classification: NewClassificationResponse(out.Result),
		Changed:        out.Changed,
		ClassifiedAt:   out.ClassifiedAt,
	}
}

type RunStatusResponse struct {
	Status string `json:"status"`
}

type SummaryResponse struct {
	Total    int            `json:"total"`
	ByLevel  map[string]int `json:"byLevel"`
	ByStatus map[string]int `json:"byStatus"`
	ByRisk   map[string]int `json:"byRisk"`
}

func NewSummaryResponse(s *customer.Summary) SummaryResponse {
	resp := SummaryResponse{
		ByLevel:  map[string]int{},
		ByStatus: map[string]int{},
		ByRisk:   map[string]int{},
	}
	if s == nil {
		return resp
	}
	resp.Total = s.Total
	for k, v := range s.ByLevel {
		resp.ByLevel[string(k)] = v
	}
	for k, v := range s.ByStatus {
		resp.ByStatus[string(k)] = v
	}
	for k, v := range s.ByRisk {
		resp.ByRisk[string(k)] = v
	}
	return resp
}
