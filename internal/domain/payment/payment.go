package payment

import (
	"context"
	"fmt"
	"strings"
	"time"
	"wellness-center/internal/domain/membership"
	"wellness-center/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
)

// Amounts are stored as NUMERIC(15,2).
const (
	amountScale            = 2
	maxAmountIntegerDigits = 13
)

var maxAmount = decimal.New(1, maxAmountIntegerDigits)

// ValidateAmount rejects amounts the ledger column cannot hold exactly.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(amountScale)) {
		return fmt.Errorf("%w: amount must have at most %d decimal places", apperrors.ErrInvalidPaymentAmount, amountScale)
	}
	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%w: amount must have at most %d integer digits", apperrors.ErrInvalidPaymentAmount, maxAmountIntegerDigits)
	}
	return nil
}

type Method string

const (
	MethodCard     Method = "card"
	MethodCash     Method = "cash"
	MethodTransfer Method = "transfer"
	MethodVoucher  Method = "voucher"
	MethodRefund   Method = "refund"
)

func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case "":
		return MethodCard, nil
	case MethodCard, MethodCash, MethodTransfer, MethodVoucher:
		return m, nil
	default:
		return "", apperrors.NewValidationError("method", fmt.Sprintf("unsupported payment method %q", s))
	}
}

// Payment is one ledger row. Refunds and cancellations are stored with a
// negative amount so trailing revenue drops accordingly.
type Payment struct {
	PaymentID   int64
	CustomerID  int64
	PaymentDate time.Time
	Amount      decimal.Decimal
	Method      Method
	Note        string
	CreatedAt   time.Time
}

func (p *Payment) IsRefund() bool {
	return p.Amount.IsNegative()
}

func Entries(payments []*Payment) []membership.PaymentEntry {
	entries := make([]membership.PaymentEntry, 0, len(payments))
	for _, p := range payments {
		if p == nil {
			continue
		}
		entries = append(entries, membership.PaymentEntry{PaymentDate: p.PaymentDate, Amount: p.Amount})
	}
	return entries
}

type Repository interface {
	Save(ctx context.Context, payment *Payment) error

	FindByCustomer(ctx context.Context, customerID int64) ([]*Payment, error)

	FindByCustomerSince(ctx context.Context, customerID int64, since time.Time) ([]*Payment, error)
}
