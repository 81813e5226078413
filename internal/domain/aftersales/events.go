package aftersales

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tourze/aftersales/internal/domain/shared"
)

// Aggregate type constant for AftersalesRequest
const AggregateTypeAftersales = "AftersalesRequest"

// Lifecycle event type constants
const (
	EventTypeAftersalesCreated       = "AftersalesCreated"
	EventTypeAftersalesStatusChanged = "AftersalesStatusChanged"
	EventTypeAftersalesCompleted     = "AftersalesCompleted"
	EventTypeAftersalesCancelled     = "AftersalesCancelled"
)

// AftersalesCreatedEvent is raised when a new application is submitted
type AftersalesCreatedEvent struct {
	shared.BaseDomainEvent
	AftersalesID     uuid.UUID      `json:"aftersales_id"`
	AftersalesNumber string         `json:"aftersales_number"`
	OrderID          uuid.UUID      `json:"order_id"`
	OrderNumber      string         `json:"order_number"`
	OrderItemID      uuid.UUID      `json:"order_item_id"`
	UserID           uuid.UUID      `json:"user_id"`
	Type             AftersalesType `json:"type"`
	Reason           RefundReason   `json:"reason"`
}

// NewAftersalesCreatedEvent creates a new AftersalesCreatedEvent
func NewAftersalesCreatedEvent(a *AftersalesRequest) *AftersalesCreatedEvent {
	return &AftersalesCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeAftersalesCreated, AggregateTypeAftersales, a.ID),
		AftersalesID:     a.ID,
		AftersalesNumber: a.AftersalesNumber,
		OrderID:          a.OrderID,
		OrderNumber:      a.OrderNumber,
		OrderItemID:      a.OrderItemID,
		UserID:           a.UserID,
		Type:             a.Type,
		Reason:           a.Reason,
	}
}

// EventType returns the event type name
func (e *AftersalesCreatedEvent) EventType() string {
	return EventTypeAftersalesCreated
}

// AftersalesStatusChangedEvent is raised on every non-terminal transition
type AftersalesStatusChangedEvent struct {
	shared.BaseDomainEvent
	AftersalesID     uuid.UUID       `json:"aftersales_id"`
	AftersalesNumber string          `json:"aftersales_number"`
	OrderID          uuid.UUID       `json:"order_id"`
	OrderItemID      uuid.UUID       `json:"order_item_id"`
	Type             AftersalesType  `json:"type"`
	PreviousState    AftersalesState `json:"previous_state"`
	CurrentState     AftersalesState `json:"current_state"`
	Stage            AftersalesStage `json:"stage"`
}

// NewAftersalesStatusChangedEvent creates a new AftersalesStatusChangedEvent
func NewAftersalesStatusChangedEvent(a *AftersalesRequest, previous AftersalesState) *AftersalesStatusChangedEvent {
	return &AftersalesStatusChangedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeAftersalesStatusChanged, AggregateTypeAftersales, a.ID),
		AftersalesID:     a.ID,
		AftersalesNumber: a.AftersalesNumber,
		OrderID:          a.OrderID,
		OrderItemID:      a.OrderItemID,
		Type:             a.Type,
		PreviousState:    previous,
		CurrentState:     a.State,
		Stage:            a.Stage,
	}
}

// EventType returns the event type name
func (e *AftersalesStatusChangedEvent) EventType() string {
	return EventTypeAftersalesStatusChanged
}

// AftersalesCompletedEvent is raised when a request completes successfully.
// It carries the sku and quantity so the stock handler can restore
// inventory without another aggregate load.
type AftersalesCompletedEvent struct {
	shared.BaseDomainEvent
	AftersalesID     uuid.UUID       `json:"aftersales_id"`
	AftersalesNumber string          `json:"aftersales_number"`
	OrderID          uuid.UUID       `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	OrderItemID      uuid.UUID       `json:"order_item_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	SkuID            uuid.UUID       `json:"sku_id"`
	Quantity         int64           `json:"quantity"`
	Type             AftersalesType  `json:"type"`
	ActualRefund     decimal.Decimal `json:"actual_refund"`
}

// NewAftersalesCompletedEvent creates a new AftersalesCompletedEvent
func NewAftersalesCompletedEvent(a *AftersalesRequest) *AftersalesCompletedEvent {
	return &AftersalesCompletedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeAftersalesCompleted, AggregateTypeAftersales, a.ID),
		AftersalesID:     a.ID,
		AftersalesNumber: a.AftersalesNumber,
		OrderID:          a.OrderID,
		OrderNumber:      a.OrderNumber,
		OrderItemID:      a.OrderItemID,
		ProductID:        a.ProductID,
		SkuID:            a.SkuID,
		Quantity:         a.Quantity,
		Type:             a.Type,
		ActualRefund:     a.ActualRefundAmount,
	}
}

// EventType returns the event type name
func (e *AftersalesCompletedEvent) EventType() string {
	return EventTypeAftersalesCompleted
}

// AftersalesCancelledEvent is raised for both cancellation and timeout
type AftersalesCancelledEvent struct {
	shared.BaseDomainEvent
	AftersalesID     uuid.UUID      `json:"aftersales_id"`
	AftersalesNumber string         `json:"aftersales_number"`
	OrderID          uuid.UUID      `json:"order_id"`
	OrderItemID      uuid.UUID      `json:"order_item_id"`
	Type             AftersalesType `json:"type"`
	Reason           string         `json:"reason"`
	ByTimeout        bool           `json:"by_timeout"`
}

// NewAftersalesCancelledEvent creates a new AftersalesCancelledEvent
func NewAftersalesCancelledEvent(a *AftersalesRequest, reason string, byTimeout bool) *AftersalesCancelledEvent {
	return &AftersalesCancelledEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeAftersalesCancelled, AggregateTypeAftersales, a.ID),
		AftersalesID:     a.ID,
		AftersalesNumber: a.AftersalesNumber,
		OrderID:          a.OrderID,
		OrderItemID:      a.OrderItemID,
		Type:             a.Type,
		Reason:           reason,
		ByTimeout:        byTimeout,
	}
}

// EventType returns the event type name
func (e *AftersalesCancelledEvent) EventType() string {
	return EventTypeAftersalesCancelled
}
