package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"wellness-center/internal/api/handler"
	"wellness-center/internal/api/handler/dto"
	"wellness-center/internal/domain/classification"
	"wellness-center/internal/domain/customer"
	"wellness-center/internal/domain/membership"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func newCustomerHandler() (*handler.CustomerHandler, *MockCustomerService, *MockClassificationService) {
	svc := new(MockCustomerService)
	cls := new(MockClassificationService)
	return handler.NewCustomerHandler(svc, cls, testLogger), svc, cls
}

func TestCreateCustomer(t *testing.T) {
	h, svc, _ := newCustomerHandler()

	t.Run("success", func(t *testing.T) {
		created := customer.NewCustomer("Kim Minji", "010-1234-5678")
		created.CustomerID = 1
		svc.On("CreateCustomer", mock.Anything, "Kim Minji", "010-1234-5678").Return(created, nil).Once()

		body := `{"name":"  Kim Minji ","phone":"010-1234-5678"}`
		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "1", resp.CustomerID)
		assert.Equal(t, "basic", resp.MembershipLevel)
		assert.Equal(t, "dormant", resp.CustomerStatus)
		assert.Equal(t, "high_risk", resp.RiskLevel)
		svc.AssertExpectations(t)
	})

	t.Run("invalid payload", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewBufferString(`{}`))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewBufferString(`{"name":"A","address":"x"}`))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate phone", func(t *testing.T) {
		svc.On("CreateCustomer", mock.Anything, "Lee", "010").Return(nil, customer.ErrDuplicatePhone).Once()

		req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewBufferString(`{"name":"Lee","phone":"010"}`))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestGetCustomer(t *testing.T) {
	h, svc, _ := newCustomerHandler()

	t.Run("success", func(t *testing.T) {
		svc.On("GetCustomer", mock.Anything, int64(1)).Return(&customer.Customer{CustomerID: 1, Name: "Kim", AnnualRevenue: decimal.Zero}, nil).Once()

		rec := httptest.NewRecorder()
		h.GetCustomer(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/customers/1", nil), "customerID", "1"))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "1", resp.CustomerID)
	})

	t.Run("invalid customer ID", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.GetCustomer(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/customers/abc", nil), "customerID", "abc"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("customer not found", func(t *testing.T) {
		svc.On("GetCustomer", mock.Anything, int64(2)).Return(nil, customer.ErrNotFound).Once()

		rec := httptest.NewRecorder()
		h.GetCustomer(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/customers/2", nil), "customerID", "2"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.NotEmpty(t, decodeError(t, rec).Error.Message)
	})

	t.Run("internal error hides details", func(t *testing.T) {
		svc.On("GetCustomer", mock.Anything, int64(3)).Return(nil, errors.New("pool exhausted")).Once()

		rec := httptest.NewRecorder()
		h.GetCustomer(rec, withURLParam(httptest.NewRequest(http.MethodGet, "/customers/3", nil), "customerID", "3"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "pool exhausted")
	})
}

func TestListCustomers(t *testing.T) {
	h, svc, _ := newCustomerHandler()

	t.Run("passes filters to the service", func(t *testing.T) {
		gold := membership.LevelGold
		expected := customer.Filter{ActiveOnly: true, Level: &gold, Limit: 20}
		svc.On("ListCustomers", mock.Anything, expected).Return([]*customer.Customer{
			{CustomerID: 1, MembershipLevel: membership.LevelGold},
			{CustomerID: 2, MembershipLevel: membership.LevelGold},
		}, nil).Once()

		rec := httptest.NewRecorder()
		h.ListCustomers(rec, httptest.NewRequest(http.MethodGet, "/customers?level=gold&limit=20", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp []dto.CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp, 2)
		svc.AssertExpectations(t)
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ListCustomers(rec, httptest.NewRequest(http.MethodGet, "/customers?level=diamond", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRecordVisit(t *testing.T) {
	h, svc, _ := newCustomerHandler()

	t.Run("empty body means today", func(t *testing.T) {
		svc.On("RecordVisit", mock.Anything, int64(5), time.Time{}).Return(&customer.Customer{CustomerID: 5, TotalVisits: 1}, nil).Once()

		req := withURLParam(httptest.NewRequest(http.MethodPost, "/customers/5/visits", nil), "customerID", "5")
		rec := httptest.NewRecorder()
		h.RecordVisit(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.TotalVisits)
	})

	t.Run("explicit visit date", func(t *testing.T) {
		date := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
		svc.On("RecordVisit", mock.Anything, int64(5), date).Return(&customer.Customer{CustomerID: 5, TotalVisits: 2}, nil).Once()

		req := withURLParam(httptest.NewRequest(http.MethodPost, "/customers/5/visits", bytes.NewBufferString(`{"visitDate":"2024-05-01"}`)), "customerID", "5")
		rec := httptest.NewRecorder()
		h.RecordVisit(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bad date", func(t *testing.T) {
		req := withURLParam(httptest.NewRequest(http.MethodPost, "/customers/5/visits", bytes.NewBufferString(`{"visitDate":"tomorrow"}`)), "customerID", "5")
		rec := httptest.NewRecorder()
		h.RecordVisit(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("inactive customer", func(t *testing.T) {
		svc.On("RecordVisit", mock.Anything, int64(6), time.Time{}).Return(nil, customer.ErrInactiveCustomer).Once()

		req := withURLParam(httptest.NewRequest(http.MethodPost, "/customers/6/visits", nil), "customerID", "6")
		rec := httptest.NewRecorder()
		h.RecordVisit(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestRecordComplaint(t *testing.T) {
	h, svc, _ := newCustomerHandler()
	svc.On("RecordComplaint", mock.Anything, int64(8)).Return(&customer.Customer{CustomerID: 8, ComplaintCount: 3}, nil).Once()

	rec := httptest.NewRecorder()
	h.RecordComplaint(rec, withURLParam(httptest.NewRequest(http.MethodPost, "/customers/8/complaints", nil), "customerID", "8"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.CustomerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.ComplaintCount)
}

func TestDeactivateAndReactivateCustomer(t *testing.T) {
	h, svc, _ := newCustomerHandler()
	svc.On("DeactivateCustomer", mock.Anything, int64(4)).Return(nil).Once()
	svc.On("ReactivateCustomer", mock.Anything, int64(4)).Return(nil).Once()
	svc.On("DeactivateCustomer", mock.Anything, int64(99)).Return(customer.ErrNotFound).Once()

	rec := httptest.NewRecorder()
	h.DeactivateCustomer(rec, withURLParam(httptest.NewRequest(http.MethodDelete, "/customers/4", nil), "customerID", "4"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ReactivateCustomer(rec, withURLParam(httptest.NewRequest(http.MethodPut, "/customers/4/reactivate", nil), "customerID", "4"))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.DeactivateCustomer(rec, withURLParam(httptest.NewRequest(http.MethodDelete, "/customers/99", nil), "customerID", "99"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	svc.AssertExpectations(t)
}

func TestReclassifyCustomer(t *testing.T) {
	h, _, cls := newCustomerHandler()

	out := &classification.Outcome{
		CustomerID:    3,
		AnnualRevenue: decimal.NewFromInt(12_000_000),
		Previous:      membership.Result{MembershipLevel: membership.LevelSilver, CustomerStatus: membership.StatusActive, RiskLevel: membership.RiskStable},
		Result:        membership.Result{MembershipLevel: membership.LevelGold, CustomerStatus: membership.StatusActive, RiskLevel: membership.RiskStable},
		Changed:       true,
	}
	cls.On("ReclassifyCustomer", mock.Anything, int64(3), mock.AnythingOfType("time.Time")).Return(out, nil).Once()
	cls.On("ReclassifyCustomer", mock.Anything, int64(4), mock.AnythingOfType("time.Time")).Return(nil, customer.ErrNotFound).Once()

	rec := httptest.NewRecorder()
	h.Reclassify(rec, withURLParam(httptest.NewRequest(http.MethodPost, "/customers/3/classification", nil), "customerID", "3"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.OutcomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "gold", resp.Classification.MembershipLevel)
	assert.Equal(t, "silver", resp.Previous.MembershipLevel)
	assert.True(t, resp.Changed)

	rec = httptest.NewRecorder()
	h.Reclassify(rec, withURLParam(httptest.NewRequest(http.MethodPost, "/customers/4/classification", nil), "customerID", "4"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
