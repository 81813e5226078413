// Package order holds the narrow contracts this service consumes from the
// originating order, catalog and stock systems. The after-sales core never
// reaches past these interfaces.
package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the order-system status subset this service cares about
type Status string

const (
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusReceived  Status = "RECEIVED"
	StatusCompleted Status = "COMPLETED"
	StatusClosed    Status = "CLOSED"
)

// Refundable reports whether the order status still admits refunds
func (s Status) Refundable() bool {
	switch s {
	case StatusPaid, StatusShipped, StatusReceived:
		return true
	}
	return false
}

// LineAftersalesStatus is the per-line marker synced back to the order
// system as a request progresses
type LineAftersalesStatus string

const (
	LineStatusNone       LineAftersalesStatus = "NONE"
	LineStatusInReview   LineAftersalesStatus = "IN_REVIEW"
	LineStatusProcessing LineAftersalesStatus = "PROCESSING"
	LineStatusCompleted  LineAftersalesStatus = "COMPLETED"
	LineStatusClosed     LineAftersalesStatus = "CLOSED"
)

// Item is one product line on an order
type Item struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	SkuID       uuid.UUID
	ProductName string
	SkuName     string
	Quantity    int64
	// PaidAmount is the total actually paid for the line, not per unit
	PaidAmount    decimal.Decimal
	OriginalPrice decimal.Decimal
	// Valid is false when a line can no longer be refunded, e.g. it was
	// already consumed by a prior exchange
	Valid            bool
	AftersalesStatus LineAftersalesStatus
}

// Order is the read model exposed by the order system
type Order struct {
	ID          uuid.UUID
	OrderNumber string
	UserID      uuid.UUID
	Status      Status
	// AftersalesSuccess is set once every line carries a completed
	// after-sales record
	AftersalesSuccess bool
	CompletedAt       *time.Time
	Items             []Item
}

// GetItem returns the line with the given id, or nil
func (o *Order) GetItem(itemID uuid.UUID) *Item {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// ItemIDs returns the ids of all lines on the order
func (o *Order) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(o.Items))
	for i, item := range o.Items {
		ids[i] = item.ID
	}
	return ids
}

// Sku is the catalog read model needed for stock restoration
type Sku struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Code      string
	Name      string
}

// StockChangeKind classifies a stock mutation
type StockChangeKind string

// KindReturn restores stock from a completed physical return
const KindReturn StockChangeKind = "RETURN"

// Repository finds orders in the order system
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
}

// LineStatusSyncer pushes per-line after-sales status to the order system
type LineStatusSyncer interface {
	SetLineAftersalesStatus(ctx context.Context, lineID uuid.UUID, status LineAftersalesStatus) error
}

// StatusSyncer transitions the whole order once every line has a completed
// after-sales record
type StatusSyncer interface {
	MarkOrderAftersalesSuccess(ctx context.Context, orderID uuid.UUID) error
}

// SkuRepository finds skus in the catalog system
type SkuRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sku, error)
}

// StockService applies stock mutations in the stock system
type StockService interface {
	ApplyStockChange(ctx context.Context, skuID uuid.UUID, quantity int64, kind StockChangeKind, note string) error
}
