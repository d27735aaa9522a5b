package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"wellness-center/internal/domain/payment"

	"github.com/shopspring/decimal"
)

type RecordPaymentRequest struct {
	Amount      string `json:"amount"`
	PaymentDate string `json:"paymentDate"`
	Method      string `json:"method"`
	Note        string `json:"note"`
}

// Parse validates the request and converts it to domain values. A missing
// date means today and a missing method means card.
func (r *RecordPaymentRequest) Parse() (decimal.Decimal, time.Time, payment.Method, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return decimal.Zero, time.Time{}, "", err
	}
	date, err := parseOptionalDate("paymentDate", r.PaymentDate)
	if err != nil {
		return decimal.Zero, time.Time{}, "", err
	}
	method, err := payment.ParseMethod(r.Method)
	if err != nil {
		return decimal.Zero, time.Time{}, "", err
	}
	return amount, date, method, nil
}

type RecordRefundRequest struct {
	Amount     string `json:"amount"`
	RefundDate string `json:"refundDate"`
	Note       string `json:"note"`
}

func (r *RecordRefundRequest) Parse() (decimal.Decimal, time.Time, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}
	date, err := parseOptionalDate("refundDate", r.RefundDate)
	if err != nil {
		return decimal.Zero, time.Time{}, err
	}
	return amount, date, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount: %w", err)
	}
	if err := payment.ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

type PaymentResponse struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customerId"`
	PaymentDate string    `json:"paymentDate"`
	Amount      string    `json:"amount"`
	Method      string    `json:"method"`
	Note        string    `json:"note,omitempty"`
	Refund      bool      `json:"refund"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewPaymentResponse(p *payment.Payment) PaymentResponse {
	if p == nil {
		return PaymentResponse{}
	}
	return PaymentResponse{
		ID:          strconv.FormatInt(p.PaymentID, 10),
		CustomerID:  strconv.FormatInt(p.CustomerID, 10),
		PaymentDate: p.PaymentDate.Format(time.DateOnly),
		Amount:      p.Amount.StringFixed(2),
		Method:      string(p.Method),
		Note:        p.Note,
		Refund:      p.IsRefund(),
		CreatedAt:   p.CreatedAt,
	}
}

type PaymentListResponse struct {
	CustomerID    string            `json:"customerId"`
	AnnualRevenue string            `json:"annualRevenue"`
	Payments      []PaymentResponse `json:"payments"`
}
