package aftersales

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/domain/order"
	"github.com/tourze/aftersales/internal/domain/shared"
)

// AftersalesStatusChangedHandler handles AftersalesStatusChangedEvent and
// keeps the order line's after-sales marker in step with the request
type AftersalesStatusChangedHandler struct {
	lineSyncer order.LineStatusSyncer
	logger     *zap.Logger
}

// NewAftersalesStatusChangedHandler creates a new handler for status changed events
func NewAftersalesStatusChangedHandler(lineSyncer order.LineStatusSyncer, logger *zap.Logger) *AftersalesStatusChangedHandler {
	return &AftersalesStatusChangedHandler{
		lineSyncer: lineSyncer,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *AftersalesStatusChangedHandler) EventTypes() []string {
	return []string{aftersales.EventTypeAftersalesStatusChanged}
}

// Handle maps the new request state onto the order line marker
func (h *AftersalesStatusChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*aftersales.AftersalesStatusChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			aftersales.EventTypeAftersalesStatusChanged, event.EventType())
	}

	lineStatus, relevant := lineStatusFor(changed.CurrentState)
	if !relevant {
		return nil
	}

	if err := h.lineSyncer.SetLineAftersalesStatus(ctx, changed.OrderItemID, lineStatus); err != nil {
		h.logger.Error("failed to sync order line status",
			zap.String("aftersales_id", changed.AftersalesID.String()),
			zap.String("order_item_id", changed.OrderItemID.String()),
			zap.String("state", changed.CurrentState.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// lineStatusFor maps request states to order line markers. States without
// a mapping leave the marker unchanged.
func lineStatusFor(state aftersales.AftersalesState) (order.LineAftersalesStatus, bool) {
	switch state {
	case aftersales.StatePendingReturn, aftersales.StatePendingReceive,
		aftersales.StatePendingRefund, aftersales.StatePendingExchange,
		aftersales.StateCSIntervention:
		return order.LineStatusProcessing, true
	case aftersales.StateRejected:
		return order.LineStatusNone, true
	}
	return "", false
}

// Ensure AftersalesStatusChangedHandler implements shared.EventHandler
var _ shared.EventHandler = (*AftersalesStatusChangedHandler)(nil)
