// Package membership derives a customer's membership level, activity status
// and retention risk from stored aggregates. Every function here is pure: no
// I/O, no clock reads, no state kept between calls.
package membership

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	activeWindowDays   = 30
	inactiveWindowDays = 90
	revenueWindowDays  = 365

	highRiskComplaints = 2
)

// CalculateMembershipLevel evaluates tiers from vip down to silver and returns
// the first one satisfied; anything unmatched is basic. VIP is decided on
// revenue alone, platinum has no visit ceiling, gold and silver need the visit
// count inside their inclusive range.
func CalculateMembershipLevel(annualRevenue decimal.Decimal, totalVisits int, criteria Criteria) Level {
	switch {
	case criteria.VIP.revenueMet(annualRevenue):
		return LevelVIP
	case criteria.Platinum.revenueMet(annualRevenue) && totalVisits >= criteria.Platinum.TotalVisitsMin:
		return LevelPlatinum
	case criteria.Gold.revenueMet(annualRevenue) && criteria.Gold.visitsWithin(totalVisits):
		return LevelGold
	case criteria.Silver.revenueMet(annualRevenue) && criteria.Silver.visitsWithin(totalVisits):
		return LevelSilver
	default:
		return LevelBasic
	}
}

// CalculateCustomerStatus classifies recency by whole calendar days between
// the last visit and today. A visit dated after today counts as active.
func CalculateCustomerStatus(lastVisitDate *time.Time, today time.Time) Status {
	if lastVisitDate == nil {
		return StatusDormant
	}

	days := DaysBetween(*lastVisitDate, today)
	switch {
	case days <= activeWindowDays:
		return StatusActive
	case days <= inactiveWindowDays:
		return StatusInactive
	default:
		return StatusDormant
	}
}

// CalculateRiskLevel gives dormancy precedence over the complaint count.
func CalculateRiskLevel(status Status, complaintCount int) RiskLevel {
	switch {
	case status == StatusDormant:
		return RiskHighRisk
	case complaintCount >= highRiskComplaints:
		return RiskHighRisk
	case complaintCount == 1:
		return RiskAtRisk
	case status == StatusInactive:
		return RiskAtRisk
	default:
		return RiskStable
	}
}

type PaymentEntry struct {
	PaymentDate time.Time
	Amount      decimal.Decimal
}

// CalculateAnnualRevenue sums every payment dated on or after the day 365
// calendar days before now. Refunds carry negative amounts and are summed as-is.
func CalculateAnnualRevenue(payments []PaymentEntry, now time.Time) decimal.Decimal {
	cutoff := RevenueWindowStart(now)
	total := decimal.Zero
	for _, p := range payments {
		if calendarDate(p.PaymentDate).Before(cutoff) {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total
}

// RevenueWindowStart is the first calendar day counted by CalculateAnnualRevenue,
// expressed as UTC midnight.
func RevenueWindowStart(now time.Time) time.Time {
	return calendarDate(now).AddDate(0, 0, -revenueWindowDays)
}

// DaysBetween counts calendar days from one date to another, each read in its
// own location. The result is negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	return int(calendarDate(to).Sub(calendarDate(from)).Hours() / 24)
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type Input struct {
	AnnualRevenue  decimal.Decimal
	TotalVisits    int
	LastVisitDate  *time.Time
	ComplaintCount int
}

type Result struct {
	MembershipLevel Level
	CustomerStatus  Status
	RiskLevel       RiskLevel
}

// Classify runs all three classifiers over one customer snapshot.
func Classify(in Input, criteria Criteria, today time.Time) Result {
	status := CalculateCustomerStatus(in.LastVisitDate, today)
	return Result{
		MembershipLevel: CalculateMembershipLevel(in.AnnualRevenue, in.TotalVisits, criteria),
		CustomerStatus:  status,
		RiskLevel:       CalculateRiskLevel(status, in.ComplaintCount),
	}
}
