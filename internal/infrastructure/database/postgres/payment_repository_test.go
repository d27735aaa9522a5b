package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"
	"wellness-center/internal/domain/customer"
	"wellness-center/internal/domain/payment"
	"wellness-center/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paymentRowColumns = []string{"id", "customer_id", "payment_date", "amount", "method", "note", "created_at"}

func setupPaymentRepo(t *testing.T) (context.Context, *PaymentRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}
	return context.Background(), NewPaymentRepository(mockPool, logger), mockPool
}

func TestSavePaymentWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupPaymentRepo(t)
	defer mockPool.Close()

	paidOn := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, time.March, 4, 15, 0, 0, 0, time.UTC)
	p := &payment.Payment{CustomerID: 5, PaymentDate: paidOn, Amount: decimal.NewFromInt(150_000), Method: payment.MethodCash}

	mockPool.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments (customer_id, payment_date, amount, method, note, created_at)")).
		WithArgs(int64(5), paidOn, pgxmock.AnyArg(), "cash", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(31), created))

	require.NoError(t, repo.Save(ctx, p))
	assert.Equal(t, int64(31), p.PaymentID)
	assert.Equal(t, created, p.CreatedAt)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestSavePaymentForUnknownCustomer(t *testing.T) {
	ctx, repo, mockPool := setupPaymentRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments")).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "payments_customer_id_fkey"})

	err := repo.Save(ctx, &payment.Payment{CustomerID: 404, Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, customer.ErrNotFound)
}

func TestSavePaymentWhenDatabaseFails(t *testing.T) {
	ctx, repo, mockPool := setupPaymentRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta("INSERT INTO payments")).WillReturnError(errors.New("connection reset"))

	err := repo.Save(ctx, &payment.Payment{CustomerID: 1, Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
	assert.ErrorIs(t, repo.Save(ctx, nil), apperrors.ErrInvalidArgument)
}

func TestFindPaymentsByCustomer(t *testing.T) {
	ctx, repo, mockPool := setupPaymentRepo(t)
	defer mockPool.Close()

	note := "package cancelled"
	day := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)
	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE customer_id = $1 ORDER BY payment_date DESC, id DESC")).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(paymentRowColumns).
			AddRow(int64(2), int64(5), day, decimal.NewFromInt(-3_000_000), "refund", &note, day).
			AddRow(int64(1), int64(5), day.AddDate(0, 0, -10), decimal.NewFromInt(5_000_000), "card", nil, day))

	payments, err := repo.FindByCustomer(ctx, 5)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.True(t, payments[0].IsRefund())
	assert.Equal(t, payment.MethodRefund, payments[0].Method)
	assert.Equal(t, "package cancelled", payments[0].Note)
	assert.Empty(t, payments[1].Note)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindPaymentsByCustomerSince(t *testing.T) {
	ctx, repo, mockPool := setupPaymentRepo(t)
	defer mockPool.Close()

	since := time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC)
	mockPool.ExpectQuery(regexp.QuoteMeta("WHERE customer_id = $1 AND payment_date >= $2")).
		WithArgs(int64(5), since).
		WillReturnRows(pgxmock.NewRows(paymentRowColumns))

	payments, err := repo.FindByCustomerSince(ctx, 5, since)
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindPaymentsWhenQueryFails(t *testing.T) {
	ctx, repo, mockPool := setupPaymentRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta("FROM payments")).WillReturnError(errors.New("timeout"))

	_, err := repo.FindByCustomer(ctx, 5)
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
}
