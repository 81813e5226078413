package aftersales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RefundOrder tracks the money leg of a request. Created when the request
// enters the refund-pending stage; resolved by the payment-gateway
// callback.
type RefundOrder struct {
	ID            uuid.UUID
	AftersalesID  uuid.UUID
	PaymentMethod string
	Status        RefundStatus
	Amount        decimal.Decimal
	ResolvedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewRefundOrder creates a pending refund order for the given amount
func NewRefundOrder(aftersalesID uuid.UUID, amount decimal.Decimal) *RefundOrder {
	now := time.Now()
	return &RefundOrder{
		ID:           uuid.New(),
		AftersalesID: aftersalesID,
		Status:       RefundStatusPending,
		Amount:       amount.Round(2),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MarkProcessing records that the gateway accepted the refund
func (r *RefundOrder) MarkProcessing(paymentMethod string) {
	r.Status = RefundStatusProcessing
	r.PaymentMethod = paymentMethod
	r.UpdatedAt = time.Now()
}

// MarkSuccess resolves the refund with the amount actually paid out
func (r *RefundOrder) MarkSuccess(actualAmount decimal.Decimal) {
	now := time.Now()
	r.Status = RefundStatusSuccess
	r.Amount = actualAmount.Round(2)
	r.ResolvedAt = &now
	r.UpdatedAt = now
}

// MarkFailed resolves the refund as failed
func (r *RefundOrder) MarkFailed() {
	now := time.Now()
	r.Status = RefundStatusFailed
	r.ResolvedAt = &now
	r.UpdatedAt = now
}

// MarkCancelled voids a refund that never resolved
func (r *RefundOrder) MarkCancelled() {
	now := time.Now()
	r.Status = RefundStatusCancelled
	r.ResolvedAt = &now
	r.UpdatedAt = now
}

// IsResolved reports whether the gateway outcome is final
func (r *RefundOrder) IsResolved() bool {
	switch r.Status {
	case RefundStatusSuccess, RefundStatusFailed, RefundStatusCancelled:
		return true
	}
	return false
}
