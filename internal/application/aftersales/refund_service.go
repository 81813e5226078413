package aftersales

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/domain/order"
	"github.com/tourze/aftersales/internal/domain/shared"
)

// RefundService quotes refundable amounts over order lines. Quotes are
// pure reads; the same inputs always produce the same amounts.
type RefundService struct {
	repo       aftersales.Repository
	orderRepo  order.Repository
	calculator *aftersales.RefundCalculator
}

// NewRefundService creates a new RefundService
func NewRefundService(
	repo aftersales.Repository,
	orderRepo order.Repository,
	calculator *aftersales.RefundCalculator,
) *RefundService {
	return &RefundService{
		repo:       repo,
		orderRepo:  orderRepo,
		calculator: calculator,
	}
}

// CalculateRefundInfo quotes a batch of order lines for the given user
func (s *RefundService) CalculateRefundInfo(ctx context.Context, userID uuid.UUID, req RefundQuoteRequest) (*aftersales.RefundQuote, error) {
	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, shared.ErrForbidden
	}

	inputs := make([]aftersales.RefundItemInput, len(req.Items))
	refunded := make(map[uuid.UUID]aftersales.RefundedTally, len(req.Items))
	for i, item := range req.Items {
		inputs[i] = aftersales.RefundItemInput{
			OrderItemID: item.OrderItemID,
			Quantity:    item.Quantity,
		}
		sum, err := s.repo.SumRefundedByOrderItem(ctx, item.OrderItemID)
		if err != nil {
			return nil, err
		}
		refunded[item.OrderItemID] = sum
	}

	quote := s.calculator.Quote(o, inputs, refunded, time.Now())
	return &quote, nil
}

// OrderRefundable quotes every line on the order at its full quantity so the
// order system can show what is still claimable.
func (s *RefundService) OrderRefundable(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*OrderRefundableResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, shared.ErrForbidden
	}

	// order-level gates only; lines are judged one by one below
	gate := s.calculator.Quote(o, nil, nil, time.Now())
	resp := &OrderRefundableResponse{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		CanRefund:   gate.CanRefund,
		Reason:      gate.Reason,
		Lines:       make([]LineRefundableResponse, 0, len(o.Items)),
	}

	for i := range o.Items {
		item := &o.Items[i]
		refunded, err := s.repo.SumRefundedByOrderItem(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		// quote whatever quantity is still claimable; an exhausted line is
		// quoted at full quantity so the error names the exhaustion
		remaining := item.Quantity - refunded.Quantity
		if remaining <= 0 {
			remaining = item.Quantity
		}
		lineQuote := s.calculator.QuoteItem(item, remaining, refunded)
		line := LineRefundableResponse{
			OrderItemID:        item.ID,
			ProductName:        item.ProductName,
			SkuName:            item.SkuName,
			Quantity:           item.Quantity,
			PaidAmount:         item.PaidAmount,
			RefundedQuantity:   refunded.Quantity,
			AlreadyRefunded:    refunded.Amount,
			RefundableQuantity: lineQuote.MaxQuantity,
			MaxRefundable:      lineQuote.MaxRefundable,
			Refundable:         gate.CanRefund && lineQuote.Error == "",
			Reason:             lineQuote.Error,
		}
		resp.Lines = append(resp.Lines, line)
	}
	return resp, nil
}

// OrderLineStatus reports the per-line after-sales markers for an order.
func (s *RefundService) OrderLineStatus(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*OrderLineStatusResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, shared.ErrForbidden
	}

	resp := &OrderLineStatusResponse{
		OrderID:           o.ID,
		OrderNumber:       o.OrderNumber,
		AftersalesSuccess: o.AftersalesSuccess,
		Lines:             make([]LineStatusResponse, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		status := item.AftersalesStatus
		if status == "" {
			status = order.LineStatusNone
		}
		resp.Lines = append(resp.Lines, LineStatusResponse{
			OrderItemID:      item.ID,
			ProductName:      item.ProductName,
			AftersalesStatus: string(status),
		})
	}
	return resp, nil
}
