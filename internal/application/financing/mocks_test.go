package financing

import (
	"context"
	"sync"
	"testing"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/partner"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	return m.Called(ctx, order).Error(0)
}

// MockPlanRepository is a mock implementation of financing.PlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*financing.FinancingPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financing.FinancingPlan), args.Error(1)
}

func (m *MockPlanRepository) FindActive(ctx context.Context) ([]financing.FinancingPlan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]financing.FinancingPlan), args.Error(1)
}

func (m *MockPlanRepository) Save(ctx context.Context, plan *financing.FinancingPlan) error {
	return m.Called(ctx, plan).Error(0)
}

// MockInstalmentRepository is a mock implementation of financing.InstalmentRepository
type MockInstalmentRepository struct {
	mock.Mock
}

func (m *MockInstalmentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]financing.Instalment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]financing.Instalment), args.Error(1)
}

func (m *MockInstalmentRepository) ReplaceForOrder(ctx context.Context, orderID uuid.UUID, instalments []financing.Instalment) error {
	return m.Called(ctx, orderID, instalments).Error(0)
}

func (m *MockInstalmentRepository) SaveAll(ctx context.Context, instalments []financing.Instalment) error {
	return m.Called(ctx, instalments).Error(0)
}

// MockPaymentRepository is a mock implementation of trade.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]trade.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *trade.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockCommissionPaymentRepository is a mock implementation of trade.CommissionPaymentRepository
type MockCommissionPaymentRepository struct {
	mock.Mock
}

func (m *MockCommissionPaymentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]trade.CommissionPayment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.CommissionPayment), args.Error(1)
}

func (m *MockCommissionPaymentRepository) SumByOrderAndParty(ctx context.Context, orderID uuid.UUID, party trade.CommissionParty) (int64, error) {
	args := m.Called(ctx, orderID, party)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommissionPaymentRepository) Save(ctx context.Context, payment *trade.CommissionPayment) error {
	return m.Called(ctx, payment).Error(0)
}

// MockSellerRepository is a mock implementation of partner.SellerRepository
type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Seller, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Seller), args.Error(1)
}

func (m *MockSellerRepository) Save(ctx context.Context, seller *partner.Seller) error {
	return m.Called(ctx, seller).Error(0)
}

// MockAllianceRepository is a mock implementation of partner.AllianceRepository
type MockAllianceRepository struct {
	mock.Mock
}

func (m *MockAllianceRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Alliance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Alliance), args.Error(1)
}

func (m *MockAllianceRepository) Save(ctx context.Context, alliance *partner.Alliance) error {
	return m.Called(ctx, alliance).Error(0)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// fakeLocker records lock keys and fails when err is set
type fakeLocker struct {
	mu       sync.Mutex
	err      error
	held     map[string]bool
	acquired []string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) Lock(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.held[key] = true
	l.acquired = append(l.acquired, key)
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, nil
}

func (l *fakeLocker) isHeld(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

// fakeTxScope runs fn against the mocked repositories
type fakeTxScope struct {
	orders      *MockOrderRepository
	payments    *MockPaymentRepository
	instalments *MockInstalmentRepository
}

func (s *fakeTxScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *fakeTxScope) OrderRepo() trade.OrderRepository               { return s.orders }
func (s *fakeTxScope) PaymentRepo() trade.PaymentRepository           { return s.payments }
func (s *fakeTxScope) InstalmentRepo() financing.InstalmentRepository { return s.instalments }

// fixture wires every service against one set of mocks
type fixture struct {
	orders      *MockOrderRepository
	plans       *MockPlanRepository
	instalments *MockInstalmentRepository
	payments    *MockPaymentRepository
	commissions *MockCommissionPaymentRepository
	sellers     *MockSellerRepository
	alliances   *MockAllianceRepository
	publisher   *MockEventPublisher
	locker      *fakeLocker
	txScope     *fakeTxScope
	replayer    *ScheduleReplayer
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		orders:      new(MockOrderRepository),
		plans:       new(MockPlanRepository),
		instalments: new(MockInstalmentRepository),
		payments:    new(MockPaymentRepository),
		commissions: new(MockCommissionPaymentRepository),
		sellers:     new(MockSellerRepository),
		alliances:   new(MockAllianceRepository),
		publisher:   new(MockEventPublisher),
		locker:      newFakeLocker(),
	}
	f.txScope = &fakeTxScope{orders: f.orders, payments: f.payments, instalments: f.instalments}
	f.replayer = NewScheduleReplayer(f.orders, f.plans, f.payments, f.txScope, f.locker, opts.Policy, zap.NewNop())
	return f
}

func (f *fixture) orderService(opts Options) *OrderFinancingService {
	svc := NewOrderFinancingService(f.orders, f.plans, f.instalments, f.sellers, f.alliances, f.txScope, f.locker, f.replayer, opts, zap.NewNop())
	svc.SetEventPublisher(f.publisher)
	return svc
}

func (f *fixture) paymentService(opts Options) *PaymentService {
	svc := NewPaymentService(f.orders, f.payments, f.instalments, f.txScope, f.locker, opts, zap.NewNop())
	svc.SetEventPublisher(f.publisher)
	return svc
}

func (f *fixture) commissionService() *CommissionService {
	return NewCommissionService(f.orders, f.payments, f.commissions, f.sellers, f.alliances)
}

func (f *fixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.orders.AssertExpectations(t)
	f.plans.AssertExpectations(t)
	f.instalments.AssertExpectations(t)
	f.payments.AssertExpectations(t)
	f.commissions.AssertExpectations(t)
	f.sellers.AssertExpectations(t)
	f.alliances.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func activePlan(t *testing.T, months int, pct int64) *financing.FinancingPlan {
	t.Helper()
	plan, err := financing.NewFinancingPlan("Plan", financing.PlanModeInHouse, months, decimal.NewFromInt(pct))
	require.NoError(t, err)
	return plan
}

func newTestOrder(t *testing.T, plan *financing.FinancingPlan, itemsTotal, downPayment int64) *trade.Order {
	t.Helper()
	item, err := trade.NewOrderItem(uuid.New(), 1, itemsTotal)
	require.NoError(t, err)

	terms := trade.OrderTerms{DownPayment: downPayment}
	if plan != nil {
		terms.Plan = plan.Terms()
	}
	order, err := trade.NewOrder(uuid.New(), []trade.OrderItem{*item}, terms, financing.ClampSilently)
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

func amounts(instalments []financing.Instalment) []int64 {
	out := make([]int64, len(instalments))
	for i, inst := range instalments {
		out[i] = inst.Amount
	}
	return out
}
