package customer

import (
	"context"
	"time"
	"wellness-center/internal/domain/membership"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

var _ CustomerRepository = (*MockCustomerRepository)(nil)

func (_m *MockCustomerRepository) Save(ctx context.Context, customer *Customer) error {
	ret := _m.Called(ctx, customer)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *Customer) error); ok {
		r0 = rf(ctx, customer)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockCustomerRepository) FindByID(ctx context.Context, customerID int64) (*Customer, error) {
	ret := _m.Called(ctx, customerID)

	var r0 *Customer
	if rf, ok := ret.Get(0).(func(context.Context, int64) *Customer); ok {
		r0 = rf(ctx, customerID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerRepository) FindAll(ctx context.Context, filter Filter) ([]*Customer, error) {
	ret := _m.Called(ctx, filter)

	var r0 []*Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerRepository) FindActiveIDs(ctx context.Context) ([]int64, error) {
	ret := _m.Called(ctx)

	var r0 []int64
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]int64)
	}

	return r0, ret.Error(1)
}

func (_m *MockCustomerRepository) SetActiveStatus(ctx context.Context, customerID int64, isActive bool) error {
	ret := _m.Called(ctx, customerID, isActive)
	return ret.Error(0)
}

func (_m *MockCustomerRepository) RecordVisit(ctx context.Context, customerID int64, visitDate time.Time) error {
	ret := _m.Called(ctx, customerID, visitDate)
	return ret.Error(0)
}

func (_m *MockCustomerRepository) IncrementComplaints(ctx context.Context, customerID int64) error {
	ret := _m.Called(ctx, customerID)
	return ret.Error(0)
}

func (_m *MockCustomerRepository) UpdateClassification(ctx context.Context, customerID int64, annualRevenue decimal.Decimal, result membership.Result, classifiedAt time.Time) error {
	ret := _m.Called(ctx, customerID, annualRevenue, result, classifiedAt)
	return ret.Error(0)
}

func (_m *MockCustomerRepository) Summarize(ctx context.Context) (*Summary, error) {
	ret := _m.Called(ctx)

	var r0 *Summary
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Summary)
	}

	return r0, ret.Error(1)
}
