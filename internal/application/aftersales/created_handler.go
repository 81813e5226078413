package aftersales

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/domain/order"
	"github.com/tourze/aftersales/internal/domain/shared"
)

// AftersalesCreatedHandler handles AftersalesCreatedEvent and marks the
// order line as under review in the order system
type AftersalesCreatedHandler struct {
	lineSyncer order.LineStatusSyncer
	logger     *zap.Logger
}

// NewAftersalesCreatedHandler creates a new handler for created events
func NewAftersalesCreatedHandler(lineSyncer order.LineStatusSyncer, logger *zap.Logger) *AftersalesCreatedHandler {
	return &AftersalesCreatedHandler{
		lineSyncer: lineSyncer,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *AftersalesCreatedHandler) EventTypes() []string {
	return []string{aftersales.EventTypeAftersalesCreated}
}

// Handle marks the order line IN_REVIEW
func (h *AftersalesCreatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	created, ok := event.(*aftersales.AftersalesCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			aftersales.EventTypeAftersalesCreated, event.EventType())
	}

	if err := h.lineSyncer.SetLineAftersalesStatus(ctx, created.OrderItemID, order.LineStatusInReview); err != nil {
		h.logger.Error("failed to mark order line in review",
			zap.String("aftersales_id", created.AftersalesID.String()),
			zap.String("order_item_id", created.OrderItemID.String()),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("order line marked in review",
		zap.String("aftersales_number", created.AftersalesNumber),
		zap.String("order_item_id", created.OrderItemID.String()),
	)
	return nil
}

// Ensure AftersalesCreatedHandler implements shared.EventHandler
var _ shared.EventHandler = (*AftersalesCreatedHandler)(nil)
