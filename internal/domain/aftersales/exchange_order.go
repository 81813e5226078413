package aftersales

import (
	"time"

	"github.com/google/uuid"
)

// ExchangeItem snapshots one product line on an exchange order
type ExchangeItem struct {
	OrderItemID uuid.UUID
	ProductID   uuid.UUID
	SkuID       uuid.UUID
	ProductName string
	SkuName     string
	Quantity    int64
}

// ExchangeOrder tracks the replacement-goods leg of an EXCHANGE request.
// The original and exchange item snapshots are equal unless an operator
// substitutes a different sku before shipping.
type ExchangeOrder struct {
	ID             uuid.UUID
	AftersalesID   uuid.UUID
	ExchangeNumber string
	Status         ExchangeStatus
	OriginalItem   ExchangeItem
	ExchangeItem   ExchangeItem
	Reason         string
	ShippedAt      *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewExchangeOrder creates an exchange order mirroring the original item
func NewExchangeOrder(aftersalesID uuid.UUID, exchangeNumber, reason string, item ExchangeItem) *ExchangeOrder {
	now := time.Now()
	return &ExchangeOrder{
		ID:             uuid.New(),
		AftersalesID:   aftersalesID,
		ExchangeNumber: exchangeNumber,
		Status:         ExchangeStatusCreated,
		OriginalItem:   item,
		ExchangeItem:   item,
		Reason:         reason,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// SubstituteItem replaces the outgoing sku before shipment
func (e *ExchangeOrder) SubstituteItem(item ExchangeItem) {
	e.ExchangeItem = item
	e.UpdatedAt = time.Now()
}

// MarkShipped records that the replacement goods left the warehouse
func (e *ExchangeOrder) MarkShipped() {
	now := time.Now()
	e.Status = ExchangeStatusShipped
	e.ShippedAt = &now
	e.UpdatedAt = now
}

// MarkCompleted closes the exchange order
func (e *ExchangeOrder) MarkCompleted() {
	now := time.Now()
	e.Status = ExchangeStatusCompleted
	e.CompletedAt = &now
	e.UpdatedAt = now
}

// MarkCancelled voids an exchange that never shipped
func (e *ExchangeOrder) MarkCancelled() {
	e.Status = ExchangeStatusCancelled
	e.UpdatedAt = time.Now()
}
