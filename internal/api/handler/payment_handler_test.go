package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"wellness-center/internal/api/handler"
	"wellness-center/internal/api/handler/dto"
	"wellness-center/internal/domain/customer"
	"wellness-center/internal/domain/payment"
	"wellness-center/internal/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func postWithCustomer(path, id, body string) *http.Request {
	return withURLParam(httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body)), "customerID", id)
}

func TestRecordPayment(t *testing.T) {
	svc := new(MockPaymentService)
	h := handler.NewPaymentHandler(svc, testLogger)

	t.Run("success", func(t *testing.T) {
		date := time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)
		amount := decimal.RequireFromString("150000")
		saved := &payment.Payment{PaymentID: 11, CustomerID: 1, PaymentDate: date, Amount: amount, Method: payment.MethodCash}
		svc.On("RecordPayment", mock.Anything, int64(1), date, amount, payment.MethodCash, "monthly pass").Return(saved, nil).Once()

		rec := httptest.NewRecorder()
		h.RecordPayment(rec, postWithCustomer("/customers/1/payments", "1", `{"amount":"150000","paymentDate":"2024-03-02","method":"cash","note":"monthly pass"}`))

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.PaymentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "11", resp.ID)
		assert.Equal(t, "150000.00", resp.Amount)
		assert.Equal(t, "cash", resp.Method)
		assert.False(t, resp.Refund)
	})

	t.Run("bad amount never reaches the service", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.RecordPayment(rec, postWithCustomer("/customers/1/payments", "1", `{"amount":"abc"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("non positive amount", func(t *testing.T) {
		svc.On("RecordPayment", mock.Anything, int64(2), time.Time{}, mock.Anything, payment.MethodCard, "").
			Return(nil, apperrors.ErrInvalidPaymentAmount).Once()

		rec := httptest.NewRecorder()
		h.RecordPayment(rec, postWithCustomer("/customers/2/payments", "2", `{"amount":"0"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("future date", func(t *testing.T) {
		svc.On("RecordPayment", mock.Anything, int64(3), mock.Anything, mock.Anything, payment.MethodCard, "").
			Return(nil, apperrors.NewValidationError("paymentDate", "payment date cannot be in the future")).Once()

		rec := httptest.NewRecorder()
		h.RecordPayment(rec, postWithCustomer("/customers/3/payments", "3", `{"amount":"10","paymentDate":"2999-01-01"}`))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		errResp := decodeError(t, rec)
		assert.Equal(t, "paymentDate", errResp.Error.Field)
	})

	t.Run("inactive customer", func(t *testing.T) {
		svc.On("RecordPayment", mock.Anything, int64(4), mock.Anything, mock.Anything, payment.MethodCard, "").
			Return(nil, customer.ErrInactiveCustomer).Once()

		rec := httptest.NewRecorder()
		h.RecordPayment(rec, postWithCustomer("/customers/4/payments", "4", `{"amount":"10"}`))

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestRecordRefund(t *testing.T) {
	svc := new(MockPaymentService)
	h := handler.NewPaymentHandler(svc, testLogger)

	saved := &payment.Payment{PaymentID: 12, CustomerID: 1, PaymentDate: time.Now(), Amount: decimal.NewFromInt(-5000), Method: payment.MethodRefund}
	svc.On("RecordRefund", mock.Anything, int64(1), time.Time{}, decimal.RequireFromString("5000"), "cancelled").Return(saved, nil).Once()

	rec := httptest.NewRecorder()
	h.RecordRefund(rec, postWithCustomer("/customers/1/refunds", "1", `{"amount":"5000","note":"cancelled"}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.PaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Refund)
	assert.Equal(t, "-5000.00", resp.Amount)

	rec = httptest.NewRecorder()
	h.RecordRefund(rec, postWithCustomer("/customers/1/refunds", "1", `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPayments(t *testing.T) {
	svc := new(MockPaymentService)
	h := handler.NewPaymentHandler(svc, testLogger)

	payments := []*payment.Payment{
		{PaymentID: 2, CustomerID: 1, PaymentDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(300), Method: payment.MethodCard},
		{PaymentID: 1, CustomerID: 1, PaymentDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(200), Method: payment.MethodCash},
	}
	svc.On("ListPayments", mock.Anything, int64(1)).Return(payments, nil).Once()
	svc.On("AnnualRevenue", mock.Anything, int64(1), mock.AnythingOfType("time.Time")).Return(decimal.NewFromInt(500), nil).Once()
	svc.On("ListPayments", mock.Anything, int64(9)).Return(nil, customer.ErrNotFound).Once()

	rec := httptest.NewRecorder()
	h.ListPayments(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/customers/1/payments", nil), "customerID", "1"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.PaymentListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "500.00", resp.AnnualRevenue)
	require.Len(t, resp.Payments, 2)
	assert.Equal(t, "2024-05-01", resp.Payments[0].PaymentDate)

	rec = httptest.NewRecorder()
	h.ListPayments(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/customers/9/payments", nil), "customerID", "9"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	svc.AssertExpectations(t)
}
