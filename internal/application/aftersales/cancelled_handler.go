package aftersales

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/domain/order"
	"github.com/tourze/aftersales/internal/domain/shared"
)

// AftersalesCancelledHandler handles AftersalesCancelledEvent and releases
// the order line so a new request can be filed against it
type AftersalesCancelledHandler struct {
	lineSyncer order.LineStatusSyncer
	logger     *zap.Logger
}

// NewAftersalesCancelledHandler creates a new handler for cancelled events
func NewAftersalesCancelledHandler(lineSyncer order.LineStatusSyncer, logger *zap.Logger) *AftersalesCancelledHandler {
	return &AftersalesCancelledHandler{
		lineSyncer: lineSyncer,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *AftersalesCancelledHandler) EventTypes() []string {
	return []string{aftersales.EventTypeAftersalesCancelled}
}

// Handle clears the order line's after-sales marker
func (h *AftersalesCancelledHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	cancelled, ok := event.(*aftersales.AftersalesCancelledEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			aftersales.EventTypeAftersalesCancelled, event.EventType())
	}

	if err := h.lineSyncer.SetLineAftersalesStatus(ctx, cancelled.OrderItemID, order.LineStatusNone); err != nil {
		h.logger.Error("failed to release order line",
			zap.String("aftersales_id", cancelled.AftersalesID.String()),
			zap.String("order_item_id", cancelled.OrderItemID.String()),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("order line released after cancellation",
		zap.String("aftersales_number", cancelled.AftersalesNumber),
		zap.String("order_item_id", cancelled.OrderItemID.String()),
		zap.Bool("by_timeout", cancelled.ByTimeout),
	)
	return nil
}

// Ensure AftersalesCancelledHandler implements shared.EventHandler
var _ shared.EventHandler = (*AftersalesCancelledHandler)(nil)
