package classification_test

import (
	"context"
	"time"
	"wellness-center/internal/domain/customer"
	"wellness-center/internal/domain/membership"
	"wellness-center/internal/domain/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockCustomerService struct {
	mock.Mock
}

var _ customer.CustomerService = (*MockCustomerService)(nil)

func (m *MockCustomerService) CreateCustomer(ctx context.Context, name, phone string) (*customer.Customer, error) {
	ret := m.Called(ctx, name, phone)
	return customerOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ret := m.Called(ctx, customerID)
	return customerOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockCustomerService) ListCustomers(ctx context.Context, filter customer.Filter) ([]*customer.Customer, error) {
	ret := m.Called(ctx, filter)
	var r0 []*customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (m *MockCustomerService) ListActiveCustomerIDs(ctx context.Context) ([]int64, error) {
	ret := m.Called(ctx)
	var r0 []int64
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]int64)
	}
	return r0, ret.Error(1)
}

func (m *MockCustomerService) RecordVisit(ctx context.Context, customerID int64, visitDate time.Time) (*customer.Customer, error) {
	ret := m.Called(ctx, customerID, visitDate)
	return customerOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockCustomerService) RecordComplaint(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ret := m.Called(ctx, customerID)
	return customerOrNil(ret.Get(0)), ret.Error(1)
}

func (m *MockCustomerService) DeactivateCustomer(ctx context.Context, customerID int64) error {
	return m.Called(ctx, customerID).Error(0)
}

func (m *MockCustomerService) ReactivateCustomer(ctx context.Context, customerID int64) error {
	return m.Called(ctx, customerID).Error(0)
}

func (m *MockCustomerService) ApplyClassification(ctx context.Context, cust *customer.Customer, annualRevenue decimal.Decimal, result membership.Result, classifiedAt time.Time) (bool, error) {
	ret := m.Called(ctx, cust, annualRevenue, result, classifiedAt)
	return ret.Bool(0), ret.Error(1)
}

func (m *MockCustomerService) ClassificationSummary(ctx context.Context) (*customer.Summary, error) {
	ret := m.Called(ctx)
	var r0 *customer.Summary
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Summary)
	}
	return r0, ret.Error(1)
}

func customerOrNil(v any) *customer.Customer {
	if v == nil {
		return nil
	}
	return v.(*customer.Customer)
}

type MockPaymentService struct {
	mock.Mock
}

var _ payment.PaymentService = (*MockPaymentService)(nil)

func (m *MockPaymentService) RecordPayment(ctx context.Context, customerID int64, paymentDate time.Time, amount decimal.Decimal, method payment.Method, note string) (*payment.Payment, error) {
	ret := m.Called(ctx, customerID, paymentDate, amount, method, note)
	var r0 *payment.Payment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*payment.Payment)
	}
	return r0, ret.Error(1)
}

func (m *MockPaymentService) RecordRefund(ctx context.Context, customerID int64, refundDate time.Time, amount decimal.Decimal, note string) (*payment.Payment, error) {
	ret := m.Called(ctx, customerID, refundDate, amount, note)
	var r0 *payment.Payment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*payment.Payment)
	}
	return r0, ret.Error(1)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, customerID int64) ([]*payment.Payment, error) {
	ret := m.Called(ctx, customerID)
	var r0 []*payment.Payment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*payment.Payment)
	}
	return r0, ret.Error(1)
}

func (m *MockPaymentService) AnnualRevenue(ctx context.Context, customerID int64, now time.Time) (decimal.Decimal, error) {
	ret := m.Called(ctx, customerID, now)
	return ret.Get(0).(decimal.Decimal), ret.Error(1)
}

type MockCriteriaService struct {
	mock.Mock
}

func (m *MockCriteriaService) GetCriteria(ctx context.Context) (membership.Criteria, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(membership.Criteria), ret.Error(1)
}

func (m *MockCriteriaService) EffectiveCriteria(ctx context.Context) (membership.Criteria, bool, error) {
	ret := m.Called(ctx)
	return ret.Get(0).(membership.Criteria), ret.Bool(1), ret.Error(2)
}

func (m *MockCriteriaService) UpdateCriteria(ctx context.Context, raw []byte) (membership.Criteria, error) {
	ret := m.Called(ctx, raw)
	return ret.Get(0).(membership.Criteria), ret.Error(1)
}
