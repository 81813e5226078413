package aftersales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/domain/order"
	"github.com/tourze/aftersales/internal/domain/shared"
)

// MockAftersalesRepository is a mock implementation of aftersales.Repository
type MockAftersalesRepository struct {
	mock.Mock
}

func (m *MockAftersalesRepository) FindByID(ctx context.Context, id uuid.UUID) (*aftersales.AftersalesRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aftersales.AftersalesRequest), args.Error(1)
}

func (m *MockAftersalesRepository) FindByNumber(ctx context.Context, number string) (*aftersales.AftersalesRequest, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aftersales.AftersalesRequest), args.Error(1)
}

func (m *MockAftersalesRepository) FindAll(ctx context.Context, filter aftersales.Filter) ([]*aftersales.AftersalesRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*aftersales.AftersalesRequest), args.Error(1)
}

func (m *MockAftersalesRepository) Count(ctx context.Context, filter aftersales.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAftersalesRepository) FindActiveByOrderItem(ctx context.Context, orderItemID uuid.UUID) ([]*aftersales.AftersalesRequest, error) {
	args := m.Called(ctx, orderItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*aftersales.AftersalesRequest), args.Error(1)
}

func (m *MockAftersalesRepository) FindTimedOut(ctx context.Context, states []aftersales.AftersalesState, before time.Time, limit int) ([]*aftersales.AftersalesRequest, error) {
	args := m.Called(ctx, states, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*aftersales.AftersalesRequest), args.Error(1)
}

func (m *MockAftersalesRepository) SumRefundedByOrderItem(ctx context.Context, orderItemID uuid.UUID) (aftersales.RefundedTally, error) {
	args := m.Called(ctx, orderItemID)
	return args.Get(0).(aftersales.RefundedTally), args.Error(1)
}

func (m *MockAftersalesRepository) CountUnfinishedByOrder(ctx context.Context, orderID uuid.UUID, itemIDs []uuid.UUID) (int64, error) {
	args := m.Called(ctx, orderID, itemIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAftersalesRepository) Save(ctx context.Context, request *aftersales.AftersalesRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockAftersalesRepository) SaveWithLock(ctx context.Context, request *aftersales.AftersalesRequest, expectedVersion int) error {
	args := m.Called(ctx, request, expectedVersion)
	return args.Error(0)
}

func (m *MockAftersalesRepository) NextNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

var _ aftersales.Repository = (*MockAftersalesRepository)(nil)

// MockLogRepository is a mock implementation of aftersales.LogRepository
type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) FindByAftersalesID(ctx context.Context, aftersalesID uuid.UUID) ([]aftersales.AftersalesLog, error) {
	args := m.Called(ctx, aftersalesID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]aftersales.AftersalesLog), args.Error(1)
}

var _ aftersales.LogRepository = (*MockLogRepository)(nil)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

var _ order.Repository = (*MockOrderRepository)(nil)

// MockExpressCompanyRepository is a mock implementation of aftersales.ExpressCompanyRepository
type MockExpressCompanyRepository struct {
	mock.Mock
}

func (m *MockExpressCompanyRepository) FindByCode(ctx context.Context, code string) (*aftersales.ExpressCompany, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aftersales.ExpressCompany), args.Error(1)
}

func (m *MockExpressCompanyRepository) FindActive(ctx context.Context) ([]aftersales.ExpressCompany, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]aftersales.ExpressCompany), args.Error(1)
}

func (m *MockExpressCompanyRepository) Save(ctx context.Context, company *aftersales.ExpressCompany) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

var _ aftersales.ExpressCompanyRepository = (*MockExpressCompanyRepository)(nil)

// MockReturnAddressRepository is a mock implementation of aftersales.ReturnAddressRepository
type MockReturnAddressRepository struct {
	mock.Mock
}

func (m *MockReturnAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*aftersales.ReturnAddress, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aftersales.ReturnAddress), args.Error(1)
}

func (m *MockReturnAddressRepository) FindDefault(ctx context.Context) (*aftersales.ReturnAddress, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aftersales.ReturnAddress), args.Error(1)
}

func (m *MockReturnAddressRepository) FindAll(ctx context.Context) ([]aftersales.ReturnAddress, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]aftersales.ReturnAddress), args.Error(1)
}

func (m *MockReturnAddressRepository) Save(ctx context.Context, address *aftersales.ReturnAddress) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

var _ aftersales.ReturnAddressRepository = (*MockReturnAddressRepository)(nil)

// MockSubmissionGuard is a mock implementation of SubmissionGuard
type MockSubmissionGuard struct {
	mock.Mock
}

func (m *MockSubmissionGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubmissionGuard) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var _ SubmissionGuard = (*MockSubmissionGuard)(nil)

// MockLineStatusSyncer is a mock implementation of order.LineStatusSyncer
type MockLineStatusSyncer struct {
	mock.Mock
}

func (m *MockLineStatusSyncer) SetLineAftersalesStatus(ctx context.Context, lineID uuid.UUID, status order.LineAftersalesStatus) error {
	args := m.Called(ctx, lineID, status)
	return args.Error(0)
}

var _ order.LineStatusSyncer = (*MockLineStatusSyncer)(nil)

// MockOrderStatusSyncer is a mock implementation of order.StatusSyncer
type MockOrderStatusSyncer struct {
	mock.Mock
}

func (m *MockOrderStatusSyncer) MarkOrderAftersalesSuccess(ctx context.Context, orderID uuid.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

var _ order.StatusSyncer = (*MockOrderStatusSyncer)(nil)

// MockSkuRepository is a mock implementation of order.SkuRepository
type MockSkuRepository struct {
	mock.Mock
}

func (m *MockSkuRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Sku, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Sku), args.Error(1)
}

var _ order.SkuRepository = (*MockSkuRepository)(nil)

// MockStockService is a mock implementation of order.StockService
type MockStockService struct {
	mock.Mock
}

func (m *MockStockService) ApplyStockChange(ctx context.Context, skuID uuid.UUID, quantity int64, kind order.StockChangeKind, note string) error {
	args := m.Called(ctx, skuID, quantity, kind, note)
	return args.Error(0)
}

var _ order.StockService = (*MockStockService)(nil)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

var _ shared.EventPublisher = (*MockEventPublisher)(nil)
