package aftersales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tourze/aftersales/internal/domain/order"
)

// RefundItemInput is one order line a refund is being quoted for
type RefundItemInput struct {
	OrderItemID uuid.UUID
	Quantity    int64
}

// RefundedTally aggregates the completed refunds already paid out against
// one order line, in units and in money.
type RefundedTally struct {
	Quantity int64
	Amount   decimal.Decimal
}

// RefundItemResult carries the computed amounts for one line. When Error is
// non-empty RefundAmount is zero and the line cannot be refunded as asked.
type RefundItemResult struct {
	OrderItemID   uuid.UUID       `json:"order_item_id"`
	ProductName   string          `json:"product_name"`
	SkuName       string          `json:"sku_name"`
	Quantity      int64           `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`
	MaxQuantity   int64           `json:"max_quantity"`
	MaxRefundable decimal.Decimal `json:"max_refundable"`
	Error         string          `json:"error,omitempty"`
}

// RefundQuote is the aggregate result for a batch of lines
type RefundQuote struct {
	OrderID     uuid.UUID          `json:"order_id"`
	CanRefund   bool               `json:"can_refund"`
	Reason      string             `json:"reason,omitempty"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	Items       []RefundItemResult `json:"items"`
}

// RefundCalculator computes refundable amounts from order line snapshots.
// All money math runs at scale 2 with fractions truncated toward zero, so a
// quote never exceeds what was actually paid.
type RefundCalculator struct {
	maxRefundDays int
}

// NewRefundCalculator builds a calculator. maxRefundDays bounds how long
// after order completion a refund may still be requested.
func NewRefundCalculator(maxRefundDays int) *RefundCalculator {
	return &RefundCalculator{maxRefundDays: maxRefundDays}
}

// UnitPrice divides the paid line total by the ordered quantity, truncated
// toward zero at scale 2
func (c *RefundCalculator) UnitPrice(linePaid decimal.Decimal, orderedQty int64) decimal.Decimal {
	if orderedQty <= 0 {
		return decimal.Zero
	}
	return linePaid.Div(decimal.NewFromInt(orderedQty)).Truncate(2)
}

// QuoteItem computes the refund for one line. refunded tallies the completed
// refunds against the same line; the refundable quantity is what remains of
// the ordered quantity after those.
func (c *RefundCalculator) QuoteItem(item *order.Item, quantity int64, refunded RefundedTally) RefundItemResult {
	result := RefundItemResult{
		OrderItemID:   item.ID,
		ProductName:   item.ProductName,
		SkuName:       item.SkuName,
		Quantity:      quantity,
		UnitPrice:     decimal.Zero,
		RefundAmount:  decimal.Zero,
		MaxRefundable: decimal.Zero,
	}

	if !item.Valid {
		result.Error = "order item is no longer refundable"
		return result
	}
	if quantity <= 0 {
		result.Error = "requested quantity must be a positive integer"
		return result
	}

	maxQuantity := item.Quantity - refunded.Quantity
	if maxQuantity <= 0 {
		result.Error = "line already fully refunded"
		return result
	}
	result.MaxQuantity = maxQuantity

	maxRefundable := item.PaidAmount.Sub(refunded.Amount)
	if maxRefundable.IsNegative() {
		maxRefundable = decimal.Zero
	}
	result.MaxRefundable = maxRefundable

	if quantity > maxQuantity {
		result.Error = "requested quantity exceeds refundable quantity"
		return result
	}

	unitPrice := c.UnitPrice(item.PaidAmount, item.Quantity)
	result.UnitPrice = unitPrice

	amount := unitPrice.Mul(decimal.NewFromInt(quantity)).Truncate(2)
	if amount.GreaterThan(maxRefundable) {
		amount = maxRefundable
	}
	result.RefundAmount = amount
	return result
}

// Quote computes the batch refund for an order. refundedByItem maps line id
// to the tally of completed refunds against it; now is the evaluation
// instant. Lines that fail keep their own error while the rest of the batch
// is still computed and summed.
func (c *RefundCalculator) Quote(o *order.Order, inputs []RefundItemInput, refundedByItem map[uuid.UUID]RefundedTally, now time.Time) RefundQuote {
	quote := RefundQuote{
		OrderID:     o.ID,
		CanRefund:   true,
		TotalAmount: decimal.Zero,
		Items:       make([]RefundItemResult, 0, len(inputs)),
	}

	if !o.Status.Refundable() {
		quote.CanRefund = false
		quote.Reason = "order status does not allow refunds"
	} else if o.CompletedAt != nil && c.maxRefundDays > 0 {
		deadline := o.CompletedAt.AddDate(0, 0, c.maxRefundDays)
		if now.After(deadline) {
			quote.CanRefund = false
			quote.Reason = "refund window has closed"
		}
	}

	for _, input := range inputs {
		item := o.GetItem(input.OrderItemID)
		if item == nil {
			quote.CanRefund = false
			quote.Items = append(quote.Items, RefundItemResult{
				OrderItemID: input.OrderItemID,
				Quantity:    input.Quantity,
				Error:       "order item not found on order",
			})
			continue
		}
		result := c.QuoteItem(item, input.Quantity, refundedByItem[input.OrderItemID])
		if result.Error != "" {
			quote.CanRefund = false
		}
		quote.Items = append(quote.Items, result)
	}

	// the total covers every line that can refund on its own, even when a
	// sibling line or the order-level gate fails the batch
	for _, item := range quote.Items {
		if item.Error == "" {
			quote.TotalAmount = quote.TotalAmount.Add(item.RefundAmount)
		}
	}
	if !quote.CanRefund && quote.Reason == "" {
		quote.Reason = "one or more items cannot be refunded"
	}
	return quote
}
