package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"wellness-center/internal/domain/customer"
	"wellness-center/internal/domain/payment"
	"wellness-center/internal/pkg/apperrors"
)

const paymentColumns = `id, customer_id, payment_date, amount, method, note, created_at`

type PaymentRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ payment.Repository = (*PaymentRepository)(nil)

func NewPaymentRepository(db DBPool, logger *slog.Logger) *PaymentRepository {
	if db == nil {
		panic("DBPool cannot be nil for PaymentRepository")
	}
	return &PaymentRepository{db: db, logger: logger.With("component", "PaymentRepository")}
}

func (r *PaymentRepository) Save(ctx context.Context, p *payment.Payment) (err error) {
	if p == nil {
		return fmt.Errorf("%w: payment cannot be nil", apperrors.ErrInvalidArgument)
	}
	defer observe("payment_insert", time.Now(), &err)
	logCtx := r.logger.With(slog.Int64("customerID", p.CustomerID))

	query := `
        INSERT INTO payments (customer_id, payment_date, amount, method, note, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id, created_at`

	err = r.db.QueryRow(ctx, query,
		p.CustomerID,
		p.PaymentDate,
		p.Amount,
		string(p.Method),
		nullableText(p.Note),
	).Scan(&p.PaymentID, &p.CreatedAt)
	if err != nil {
		translatedErr := translateDBError(err, logCtx)
		if errors.Is(translatedErr, apperrors.ErrNotFound) {
			logCtx.WarnContext(ctx, "Payment references unknown customer")
			return customer.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to insert payment", slog.Any("error", err))
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	logCtx.InfoContext(ctx, "Payment inserted successfully", slog.Int64("paymentID", p.PaymentID))
	return nil
}

func (r *PaymentRepository) FindByCustomer(ctx context.Context, customerID int64) (payments []*payment.Payment, err error) {
	defer observe("payment_find_by_customer", time.Now(), &err)

	query := `SELECT ` + paymentColumns + `
        FROM payments
        WHERE customer_id = $1
        ORDER BY payment_date DESC, id DESC`

	return r.query(ctx, customerID, query, customerID)
}

func (r *PaymentRepository) FindByCustomerSince(ctx context.Context, customerID int64, since time.Time) (payments []*payment.Payment, err error) {
	defer observe("payment_find_since", time.Now(), &err)

	query := `SELECT ` + paymentColumns + `
        FROM payments
        WHERE customer_id = $1 AND payment_date >= $2
        ORDER BY payment_date ASC, id ASC`

	return r.query(ctx, customerID, query, customerID, since)
}

func (r *PaymentRepository) query(ctx context.Context, customerID int64, query string, args ...any) ([]*payment.Payment, error) {
	logCtx := r.logger.With(slog.Int64("customerID", customerID))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query payments", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query payments: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	payments := make([]*payment.Payment, 0)
	for rows.Next() {
		var (
			p      payment.Payment
			method string
			note   *string
		)
		if err := rows.Scan(&p.PaymentID, &p.CustomerID, &p.PaymentDate, &p.Amount, &method, &note, &p.CreatedAt); err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan payment row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan payment row: %w", apperrors.ErrDatabase, err)
		}
		p.Method = payment.Method(method)
		if note != nil {
			p.Note = *note
		}
		payments = append(payments, &p)
	}
	if err := rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating payment rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating payment rows: %w", apperrors.ErrDatabase, err)
	}

	logCtx.DebugContext(ctx, "Fetched payments", slog.Int("count", len(payments)))
	return payments, nil
}
