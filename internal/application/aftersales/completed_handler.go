package aftersales

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/domain/order"
	"github.com/tourze/aftersales/internal/domain/shared"
)

// AftersalesCompletedHandler handles AftersalesCompletedEvent: restores
// stock for physically returned goods, marks the order line completed and
// transitions the whole order once every line has a completed request.
// Each side effect is isolated; one failing does not stop the others.
type AftersalesCompletedHandler struct {
	repo         aftersales.Repository
	orderRepo    order.Repository
	skuRepo      order.SkuRepository
	stockService order.StockService
	lineSyncer   order.LineStatusSyncer
	orderSyncer  order.StatusSyncer
	logger       *zap.Logger
}

// NewAftersalesCompletedHandler creates a new handler for completed events
func NewAftersalesCompletedHandler(
	repo aftersales.Repository,
	orderRepo order.Repository,
	skuRepo order.SkuRepository,
	stockService order.StockService,
	lineSyncer order.LineStatusSyncer,
	orderSyncer order.StatusSyncer,
	logger *zap.Logger,
) *AftersalesCompletedHandler {
	return &AftersalesCompletedHandler{
		repo:         repo,
		orderRepo:    orderRepo,
		skuRepo:      skuRepo,
		stockService: stockService,
		lineSyncer:   lineSyncer,
		orderSyncer:  orderSyncer,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *AftersalesCompletedHandler) EventTypes() []string {
	return []string{aftersales.EventTypeAftersalesCompleted}
}

// Handle processes an AftersalesCompletedEvent
func (h *AftersalesCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completed, ok := event.(*aftersales.AftersalesCompletedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			aftersales.EventTypeAftersalesCompleted, event.EventType())
	}

	h.logger.Info("processing aftersales completed event",
		zap.String("aftersales_id", completed.AftersalesID.String()),
		zap.String("aftersales_number", completed.AftersalesNumber),
		zap.String("order_id", completed.OrderID.String()),
		zap.String("type", completed.Type.String()),
	)

	var lastErr error

	if aftersales.RequiresPhysicalReturn(completed.Type) {
		if err := h.restoreStock(ctx, completed); err != nil {
			h.logger.Error("stock restoration failed",
				zap.String("aftersales_id", completed.AftersalesID.String()),
				zap.String("sku_id", completed.SkuID.String()),
				zap.Int64("quantity", completed.Quantity),
				zap.Error(err),
			)
			lastErr = err
		}
	}

	if err := h.lineSyncer.SetLineAftersalesStatus(ctx, completed.OrderItemID, order.LineStatusCompleted); err != nil {
		h.logger.Error("failed to mark order line completed",
			zap.String("aftersales_id", completed.AftersalesID.String()),
			zap.String("order_item_id", completed.OrderItemID.String()),
			zap.Error(err),
		)
		lastErr = err
	}

	if err := h.syncOrderStatus(ctx, completed); err != nil {
		h.logger.Error("failed to sync order status",
			zap.String("aftersales_id", completed.AftersalesID.String()),
			zap.String("order_id", completed.OrderID.String()),
			zap.Error(err),
		)
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("aftersales completion side effects failed: %w", lastErr)
	}
	return nil
}

// restoreStock puts the physically returned quantity back into the stock
// system
func (h *AftersalesCompletedHandler) restoreStock(ctx context.Context, completed *aftersales.AftersalesCompletedEvent) error {
	sku, err := h.skuRepo.FindByID(ctx, completed.SkuID)
	if err != nil {
		return err
	}
	note := fmt.Sprintf("Aftersales return: %s", completed.AftersalesNumber)
	return h.stockService.ApplyStockChange(ctx, sku.ID, completed.Quantity, order.KindReturn, note)
}

// syncOrderStatus re-derives the whole-order outcome: once no line on the
// order lacks a completed request, the order transitions to its
// after-sales-success status
func (h *AftersalesCompletedHandler) syncOrderStatus(ctx context.Context, completed *aftersales.AftersalesCompletedEvent) error {
	o, err := h.orderRepo.FindByID(ctx, completed.OrderID)
	if err != nil {
		return err
	}

	unfinished, err := h.repo.CountUnfinishedByOrder(ctx, o.ID, o.ItemIDs())
	if err != nil {
		return err
	}
	if unfinished > 0 {
		return nil
	}

	return h.orderSyncer.MarkOrderAftersalesSuccess(ctx, o.ID)
}

// Ensure AftersalesCompletedHandler implements shared.EventHandler
var _ shared.EventHandler = (*AftersalesCompletedHandler)(nil)
