package aftersales

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/tourze/aftersales/internal/domain/shared"
)

var trackingNumberPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ReturnOrder tracks the customer-to-warehouse leg of a physical return.
// At most one exists per aftersales request; shipment info is recorded
// exactly once.
type ReturnOrder struct {
	ID             uuid.UUID
	AftersalesID   uuid.UUID
	CarrierCode    string
	TrackingNumber string
	Remark         string
	ShippedAt      *time.Time
	ReceivedAt     *time.Time
	InspectedAt    *time.Time
	InspectionPass bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewReturnOrder creates an empty return order awaiting shipment info
func NewReturnOrder(aftersalesID uuid.UUID) *ReturnOrder {
	now := time.Now()
	return &ReturnOrder{
		ID:           uuid.New(),
		AftersalesID: aftersalesID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// RecordShipment validates and stores the carrier and tracking number.
// Rejected once shipment info is on file.
func (r *ReturnOrder) RecordShipment(carrierCode, trackingNumber, remark string) error {
	if r.IsShipped() {
		return shared.NewDomainError("ALREADY_EXISTS", "Return shipment has already been submitted")
	}
	if carrierCode == "" {
		return shared.NewDomainError("INVALID_CARRIER", "Carrier code cannot be empty")
	}
	if len(carrierCode) > 50 {
		return shared.NewDomainError("INVALID_CARRIER", "Carrier code cannot exceed 50 characters")
	}
	if trackingNumber == "" {
		return shared.NewDomainError("INVALID_TRACKING", "Tracking number cannot be empty")
	}
	if len(trackingNumber) > 50 {
		return shared.NewDomainError("INVALID_TRACKING", "Tracking number cannot exceed 50 characters")
	}
	if !trackingNumberPattern.MatchString(trackingNumber) {
		return shared.NewDomainError("INVALID_TRACKING", "Tracking number must be alphanumeric")
	}

	now := time.Now()
	r.CarrierCode = carrierCode
	r.TrackingNumber = trackingNumber
	r.Remark = remark
	r.ShippedAt = &now
	r.UpdatedAt = now
	return nil
}

// MarkReceived records warehouse receipt of the returned goods
func (r *ReturnOrder) MarkReceived() {
	now := time.Now()
	r.ReceivedAt = &now
	r.UpdatedAt = now
}

// MarkInspected records the inspection outcome
func (r *ReturnOrder) MarkInspected(pass bool) {
	now := time.Now()
	r.InspectedAt = &now
	r.InspectionPass = pass
	r.UpdatedAt = now
}

// IsShipped reports whether shipment info has been recorded
func (r *ReturnOrder) IsShipped() bool {
	return r.ShippedAt != nil
}

// IsReceived reports whether the warehouse received the goods
func (r *ReturnOrder) IsReceived() bool {
	return r.ReceivedAt != nil
}
