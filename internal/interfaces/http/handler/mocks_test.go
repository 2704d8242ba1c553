package handler

import (
	"context"

	financingapp "github.com/erp/backoffice/internal/application/financing"
	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req financingapp.CreateOrderRequest) (*financingapp.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financingapp.OrderResponse), args.Error(1)
}

func (m *MockOrderService) ChangeTerms(ctx context.Context, orderID uuid.UUID, req financingapp.ChangeTermsRequest) (*financingapp.OrderResponse, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financingapp.OrderResponse), args.Error(1)
}

func (m *MockOrderService) GetSchedule(ctx context.Context, orderID uuid.UUID) (*financingapp.ScheduleResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financingapp.ScheduleResponse), args.Error(1)
}

func (m *MockOrderService) Resync(ctx context.Context, orderID uuid.UUID) (*financingapp.ScheduleResponse, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financingapp.ScheduleResponse), args.Error(1)
}

func (m *MockOrderService) Simulate(ctx context.Context, req financingapp.SimulateRequest) (*financingapp.QuoteResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financingapp.QuoteResponse), args.Error(1)
}

func (m *MockOrderService) ListPlans(ctx context.Context, mode financing.PlanMode) ([]financingapp.PlanResponse, error) {
	args := m.Called(ctx, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]financingapp.PlanResponse), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) RegisterPayment(ctx context.Context, orderID uuid.UUID, req financingapp.RegisterPaymentRequest) (*financingapp.PaymentResponse, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financingapp.PaymentResponse), args.Error(1)
}

func (m *MockPaymentService) EditPayment(ctx context.Context, paymentID uuid.UUID, req financingapp.EditPaymentRequest) (*financingapp.PaymentResponse, error) {
	args := m.Called(ctx, paymentID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financingapp.PaymentResponse), args.Error(1)
}

func (m *MockPaymentService) DeletePayment(ctx context.Context, paymentID uuid.UUID) error {
	return m.Called(ctx, paymentID).Error(0)
}

type MockCommissionService struct {
	mock.Mock
}

func (m *MockCommissionService) Accrual(ctx context.Context, orderID uuid.UUID, party trade.CommissionParty, mode financing.CommissionMode) (*financingapp.CommissionResponse, error) {
	args := m.Called(ctx, orderID, party, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financingapp.CommissionResponse), args.Error(1)
}

func (m *MockCommissionService) RecordCommissionPayment(ctx context.Context, orderID uuid.UUID, req financingapp.RecordCommissionPaymentRequest) (*financingapp.CommissionPaymentResponse, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financingapp.CommissionPaymentResponse), args.Error(1)
}

var (
	_ OrderService      = (*MockOrderService)(nil)
	_ PaymentService    = (*MockPaymentService)(nil)
	_ CommissionService = (*MockCommissionService)(nil)
)
