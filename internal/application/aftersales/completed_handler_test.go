package aftersales

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/domain/order"
)

type completedHandlerMocks struct {
	repo         *MockAftersalesRepository
	orderRepo    *MockOrderRepository
	skuRepo      *MockSkuRepository
	stockService *MockStockService
	lineSyncer   *MockLineStatusSyncer
	orderSyncer  *MockOrderStatusSyncer
}

func newCompletedHandler() (*AftersalesCompletedHandler, *completedHandlerMocks) {
	m := &completedHandlerMocks{
		repo:         new(MockAftersalesRepository),
		orderRepo:    new(MockOrderRepository),
		skuRepo:      new(MockSkuRepository),
		stockService: new(MockStockService),
		lineSyncer:   new(MockLineStatusSyncer),
		orderSyncer:  new(MockOrderStatusSyncer),
	}
	handler := NewAftersalesCompletedHandler(
		m.repo, m.orderRepo, m.skuRepo, m.stockService,
		m.lineSyncer, m.orderSyncer, zap.NewNop(),
	)
	return handler, m
}

func completedEvent(t *testing.T, userID uuid.UUID, typ aftersales.AftersalesType) (*aftersales.AftersalesCompletedEvent, *order.Order) {
	t.Helper()
	itemID := uuid.New()
	o := createTestOrder(userID, itemID)

	ar, err := aftersales.NewAftersalesRequest("AS20260830000009", aftersales.NewAftersalesParams{
		OrderID:               o.ID,
		OrderNumber:           o.OrderNumber,
		UserID:                userID,
		Type:                  typ,
		Reason:                aftersales.ReasonQualityIssue,
		OrderItemID:           itemID,
		ProductID:             o.Items[0].ProductID,
		SkuID:                 o.Items[0].SkuID,
		Quantity:              2,
		PaidPrice:             decimal.NewFromFloat(99.80),
		RequestedRefundAmount: decimal.NewFromFloat(99.80),
	})
	require.NoError(t, err)
	return aftersales.NewAftersalesCompletedEvent(ar), o
}

func TestAftersalesCompletedHandler(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("physical return restores stock", func(t *testing.T) {
		handler, m := newCompletedHandler()
		event, o := completedEvent(t, userID, aftersales.TypeReturnRefund)
		sku := &order.Sku{ID: event.SkuID, ProductID: event.ProductID, Code: "SKU-001"}

		m.skuRepo.On("FindByID", ctx, event.SkuID).Return(sku, nil)
		m.stockService.On("ApplyStockChange", ctx, sku.ID, int64(2), order.KindReturn, mock.AnythingOfType("string")).Return(nil)
		m.lineSyncer.On("SetLineAftersalesStatus", ctx, event.OrderItemID, order.LineStatusCompleted).Return(nil)
		m.orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		m.repo.On("CountUnfinishedByOrder", ctx, o.ID, o.ItemIDs()).Return(int64(0), nil)
		m.orderSyncer.On("MarkOrderAftersalesSuccess", ctx, o.ID).Return(nil)

		err := handler.Handle(ctx, event)
		require.NoError(t, err)
		m.stockService.AssertExpectations(t)
		m.orderSyncer.AssertExpectations(t)
	})

	t.Run("refund only skips stock restoration", func(t *testing.T) {
		handler, m := newCompletedHandler()
		event, o := completedEvent(t, userID, aftersales.TypeRefundOnly)

		m.lineSyncer.On("SetLineAftersalesStatus", ctx, event.OrderItemID, order.LineStatusCompleted).Return(nil)
		m.orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		m.repo.On("CountUnfinishedByOrder", ctx, o.ID, o.ItemIDs()).Return(int64(1), nil)

		err := handler.Handle(ctx, event)
		require.NoError(t, err)
		m.stockService.AssertNotCalled(t, "ApplyStockChange")
		m.orderSyncer.AssertNotCalled(t, "MarkOrderAftersalesSuccess")
	})

	t.Run("stock failure does not stop line sync", func(t *testing.T) {
		handler, m := newCompletedHandler()
		event, o := completedEvent(t, userID, aftersales.TypeReturnRefund)

		m.skuRepo.On("FindByID", ctx, event.SkuID).Return(nil, assert.AnError)
		m.lineSyncer.On("SetLineAftersalesStatus", ctx, event.OrderItemID, order.LineStatusCompleted).Return(nil)
		m.orderRepo.On("FindByID", ctx, o.ID).Return(o, nil)
		m.repo.On("CountUnfinishedByOrder", ctx, o.ID, o.ItemIDs()).Return(int64(1), nil)

		err := handler.Handle(ctx, event)
		assert.Error(t, err)
		m.lineSyncer.AssertExpectations(t)
	})
}

func TestLineStatusHandlers(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("created marks line in review", func(t *testing.T) {
		lineSyncer := new(MockLineStatusSyncer)
		handler := NewAftersalesCreatedHandler(lineSyncer, zap.NewNop())
		ar := createTestAftersales(t, userID, aftersales.TypeRefundOnly, aftersales.ReasonDontWant)
		event := aftersales.NewAftersalesCreatedEvent(ar)

		lineSyncer.On("SetLineAftersalesStatus", ctx, ar.OrderItemID, order.LineStatusInReview).Return(nil)

		require.NoError(t, handler.Handle(ctx, event))
		lineSyncer.AssertExpectations(t)
	})

	t.Run("cancelled releases the line", func(t *testing.T) {
		lineSyncer := new(MockLineStatusSyncer)
		handler := NewAftersalesCancelledHandler(lineSyncer, zap.NewNop())
		ar := createTestAftersales(t, userID, aftersales.TypeRefundOnly, aftersales.ReasonDontWant)
		event := aftersales.NewAftersalesCancelledEvent(ar, "timeout", true)

		lineSyncer.On("SetLineAftersalesStatus", ctx, ar.OrderItemID, order.LineStatusNone).Return(nil)

		require.NoError(t, handler.Handle(ctx, event))
		lineSyncer.AssertExpectations(t)
	})

	t.Run("status change to processing updates line", func(t *testing.T) {
		lineSyncer := new(MockLineStatusSyncer)
		handler := NewAftersalesStatusChangedHandler(lineSyncer, zap.NewNop())
		ar := createTestAftersales(t, userID, aftersales.TypeRefundOnly, aftersales.ReasonDontWant)
		require.NoError(t, ar.AutoApprove())
		require.NoError(t, ar.StartProcessing())
		event := aftersales.NewAftersalesStatusChangedEvent(ar, aftersales.StateApproved)

		lineSyncer.On("SetLineAftersalesStatus", ctx, ar.OrderItemID, order.LineStatusProcessing).Return(nil)

		require.NoError(t, handler.Handle(ctx, event))
		lineSyncer.AssertExpectations(t)
	})

	t.Run("status change to approved is a no op", func(t *testing.T) {
		lineSyncer := new(MockLineStatusSyncer)
		handler := NewAftersalesStatusChangedHandler(lineSyncer, zap.NewNop())
		ar := createTestAftersales(t, userID, aftersales.TypeRefundOnly, aftersales.ReasonDontWant)
		require.NoError(t, ar.AutoApprove())
		event := aftersales.NewAftersalesStatusChangedEvent(ar, aftersales.StatePendingApproval)

		require.NoError(t, handler.Handle(ctx, event))
		lineSyncer.AssertNotCalled(t, "SetLineAftersalesStatus")
	})
}
