package aftersales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tourze/aftersales/internal/domain/shared"
)

// AftersalesRequest is the aggregate root for a single after-sales case.
// It targets exactly one order line and moves through the state machine
// defined in types.go; every transition appends one audit log entry and
// raises one lifecycle event.
type AftersalesRequest struct {
	shared.BaseAggregateRoot
	AftersalesNumber string
	OrderID          uuid.UUID
	OrderNumber      string
	UserID           uuid.UUID

	Type   AftersalesType
	Reason RefundReason
	State  AftersalesState
	Stage  AftersalesStage

	OrderItemID uuid.UUID
	ProductID   uuid.UUID
	SkuID       uuid.UUID
	ProductName string
	SkuName     string
	Quantity    int64

	OriginalPrice         decimal.Decimal
	PaidPrice             decimal.Decimal
	RequestedRefundAmount decimal.Decimal
	OriginalRefundAmount  decimal.Decimal
	ActualRefundAmount    decimal.Decimal

	Description string
	ProofImages []string `gorm:"-"`

	ReturnOrder   *ReturnOrder
	RefundOrder   *RefundOrder
	ExchangeOrder *ExchangeOrder

	// pendingLogs accumulates audit entries to be persisted atomically
	// with the state mutation that produced them
	pendingLogs []AftersalesLog
}

// NewAftersalesParams carries the intake data for a new request
type NewAftersalesParams struct {
	OrderID               uuid.UUID
	OrderNumber           string
	UserID                uuid.UUID
	Type                  AftersalesType
	Reason                RefundReason
	OrderItemID           uuid.UUID
	ProductID             uuid.UUID
	SkuID                 uuid.UUID
	ProductName           string
	SkuName               string
	Quantity              int64
	OriginalPrice         decimal.Decimal
	PaidPrice             decimal.Decimal
	RequestedRefundAmount decimal.Decimal
	Description           string
	ProofImages           []string
}

// NewAftersalesRequest creates a request in PENDING_APPROVAL/APPLY. It does
// not auto-approve; callers decide whether to invoke AutoApprove based on
// the reason policy.
func NewAftersalesRequest(aftersalesNumber string, p NewAftersalesParams) (*AftersalesRequest, error) {
	if aftersalesNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Aftersales number cannot be empty")
	}
	if p.OrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if p.UserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !p.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", fmt.Sprintf("Unknown aftersales type: %s", p.Type))
	}
	if !p.Reason.IsValid() {
		return nil, shared.NewDomainError("INVALID_REASON", fmt.Sprintf("Unknown refund reason: %s", p.Reason))
	}
	if p.OrderItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER_ITEM", "Order item ID cannot be empty")
	}
	if p.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.RequestedRefundAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Requested refund amount cannot be negative")
	}

	ar := &AftersalesRequest{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		AftersalesNumber:      aftersalesNumber,
		OrderID:               p.OrderID,
		OrderNumber:           p.OrderNumber,
		UserID:                p.UserID,
		Type:                  p.Type,
		Reason:                p.Reason,
		State:                 StatePendingApproval,
		Stage:                 StageApply,
		OrderItemID:           p.OrderItemID,
		ProductID:             p.ProductID,
		SkuID:                 p.SkuID,
		ProductName:           p.ProductName,
		SkuName:               p.SkuName,
		Quantity:              p.Quantity,
		OriginalPrice:         p.OriginalPrice,
		PaidPrice:             p.PaidPrice,
		RequestedRefundAmount: p.RequestedRefundAmount.Round(2),
		OriginalRefundAmount:  p.RequestedRefundAmount.Round(2),
		Description:           p.Description,
		ProofImages:           p.ProofImages,
	}

	ar.appendLog(ActionApply, OperatorUser, "", "Aftersales application submitted", StatePendingApproval, StatePendingApproval)
	ar.AddDomainEvent(NewAftersalesCreatedEvent(ar))

	return ar, nil
}

// transition moves the request to target after checking the transition
// table, updates the stage, and appends the audit log entry. It does not
// raise events; each public operation raises its own.
func (a *AftersalesRequest) transition(target AftersalesState, action AftersalesAction, opType OperatorType, operator, content string) error {
	if !a.State.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot transition from %s to %s", a.State, target))
	}

	previous := a.State
	a.State = target
	if stage, ok := StageFor(target); ok {
		a.Stage = stage
	}
	a.UpdatedAt = time.Now()

	a.appendLog(action, opType, operator, content, previous, target)
	return nil
}

func (a *AftersalesRequest) appendLog(action AftersalesAction, opType OperatorType, operator, content string, previous, current AftersalesState) {
	a.pendingLogs = append(a.pendingLogs, NewAftersalesLog(a.ID, action, opType, operator, content, previous, current))
}

// PendingLogs returns the audit entries accumulated since the last save
func (a *AftersalesRequest) PendingLogs() []AftersalesLog {
	return a.pendingLogs
}

// ClearPendingLogs drops the accumulated audit entries after persistence
func (a *AftersalesRequest) ClearPendingLogs() {
	a.pendingLogs = nil
}

// AutoApprove approves the request without operator action. Only valid for
// reasons the policy table marks auto-approvable.
func (a *AftersalesRequest) AutoApprove() error {
	if !SupportsAutoApproval(a.Reason) {
		return shared.NewDomainError("INVALID_REASON",
			fmt.Sprintf("Reason %s does not support automatic approval", a.Reason))
	}
	previous := a.State
	if err := a.transition(StateApproved, ActionAutoApprove, OperatorSystem, "system", "Automatically approved by reason policy"); err != nil {
		return err
	}
	a.AddDomainEvent(NewAftersalesStatusChangedEvent(a, previous))
	return nil
}

// Approve approves the request manually
func (a *AftersalesRequest) Approve(operator, note string) error {
	if operator == "" {
		return shared.NewDomainError("INVALID_OPERATOR", "Operator cannot be empty")
	}
	previous := a.State
	if err := a.transition(StateApproved, ActionApprove, OperatorAdmin, operator, note); err != nil {
		return err
	}
	a.AddDomainEvent(NewAftersalesStatusChangedEvent(a, previous))
	return nil
}

// Reject rejects the request; REJECTED is terminal
func (a *AftersalesRequest) Reject(operator, reason string) error {
	if operator == "" {
		return shared.NewDomainError("INVALID_OPERATOR", "Operator cannot be empty")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}
	previous := a.State
	if err := a.transition(StateRejected, ActionReject, OperatorAdmin, operator, reason); err != nil {
		return err
	}
	a.AddDomainEvent(NewAftersalesStatusChangedEvent(a, previous))
	return nil
}

// RequestModification sends the request back to the customer for changes
func (a *AftersalesRequest) RequestModification(operator, note string) error {
	if operator == "" {
		return shared.NewDomainError("INVALID_OPERATOR", "Operator cannot be empty")
	}
	previous := a.State
	if err := a.transition(StatePendingModification, ActionRequestModification, OperatorAdmin, operator, note); err != nil {
		return err
	}
	a.AddDomainEvent(NewAftersalesStatusChangedEvent(a, previous))
	return nil
}

// ResubmitParams carries customer-updated fields on resubmission
type ResubmitParams struct {
	Reason                RefundReason
	RequestedRefundAmount decimal.Decimal
	Description           string
	ProofImages           []string
}

// Resubmit re-enters the approval queue after the customer revised the
// application
func (a *AftersalesRequest) Resubmit(p ResubmitParams) error {
	if !p.Reason.IsValid() {
		return shared.NewDomainError("INVALID_REASON", fmt.Sprintf("Unknown refund reason: %s", p.Reason))
	}
	if p.RequestedRefundAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Requested refund amount cannot be negative")
	}
	previous := a.State
	if err := a.transition(StatePendingApproval, ActionResubmit, OperatorUser, "", "Application resubmitted after modification"); err != nil {
		return err
	}
	a.Reason = p.Reason
	a.RequestedRefundAmount = p.RequestedRefundAmount.Round(2)
	a.Description = p.Description
	if p.ProofImages != nil {
		a.ProofImages = p.ProofImages
	}
	a.AddDomainEvent(NewAftersalesStatusChangedEvent(a, previous))
	return nil
}

// StartProcessing routes an approved request into its type-specific
// processing state and lazily creates the owned refund/exchange order
func (a *AftersalesRequest) StartProcessing() error {
	target, ok := routeAfterApproval[a.Type]
	if !ok {
		return shared.NewDomainError("INVALID_TYPE", fmt.Sprintf("No processing route for type %s", a.Type))
	}

	var action AftersalesAction
	switch target {
	case StatePendingReturn:
		action = ActionStartReturn
	case StatePendingRefund:
		action = ActionCreateRefundOrder
	case StatePendingExchange:
		action = ActionCreateExchangeOrder
	}

	previous := a.State
	if err := a.transition(target, action, OperatorSystem, "system", "Processing started"); err != nil {
		return err
	}

	switch target {
	case StatePendingRefund:
		a.ensureRefundOrder()
	case StatePendingExchange:
		a.ensureExchangeOrder()
	}

	a.AddDomainEvent(NewAftersalesStatusChangedEvent(a, previous))
	return nil
}

// SubmitReturnShipment records the customer's return shipment and advances
// PENDING_RETURN to PENDING_RECEIVE. Preconditions beyond the state table
// (type, carrier validation, ownership) are enforced by the application
// service; the duplicate-submission invariant lives here.
func (a *AftersalesRequest) SubmitReturnShipment(carrierCode, trackingNumber, remark string) error {
	if !RequiresPhysicalReturn(a.Type) {
		return shared.NewDomainError("INVALID_TYPE",
			fmt.Sprintf("Type %s has no return leg", a.Type))
	}
	if a.ReturnOrder != nil && a.ReturnOrder.IsShipped() {
		return shared.NewDomainError("ALREADY_EXISTS", "Return shipment has already been submitted")
	}
	if a.State != StatePendingReturn && a.State != StatePendingReceive {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot submit return shipment in %s state", a.State))
	}

	if a.ReturnOrder == nil {
		a.ReturnOrder = NewReturnOrder(a.ID)
	}
	if err := a.ReturnOrder.RecordShipment(carrierCode, trackingNumber, remark); err != nil {
		return err
	}

	content := fmt.Sprintf("Return shipped via %s, tracking %s", carrierCode, trackingNumber)
	if a.State == StatePendingReturn {
		previous := a.State
		if err := a.transition(StatePendingReceive, ActionSubmitReturnExpress, OperatorUser, "", content); err != nil {
			return err
		}
		a.AddDomainEvent(NewAftersalesStatusChangedEvent(a, previous))
		return nil
	}

	// Already in PENDING_RECEIVE with no shipment on file: log without a
	// state change, one entry per mutating operation still holds.
	a.appendLog(ActionSubmitReturnExpress, OperatorUser, "", content, a.State, a.State)
	a.UpdatedAt = time.Now()
	return nil
}

// ConfirmReceipt records warehouse receipt plus inspection outcome. A pass
// routes to the refund or exchange leg by type; a failure escalates to
// customer service.
func (a *AftersalesRequest) ConfirmReceipt(operator string, inspectionPassed bool, note string) error {
	if operator == "" {
		return shared.NewDomainError("INVALID_OPERATOR", "Operator cannot be empty")
	}
	if a.State != StatePendingReceive {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot confirm receipt in %s state", a.State))
	}
	if a.ReturnOrder == nil || !a.ReturnOrder.IsShipped() {
		return shared.NewDomainError("INVALID_STATE", "No return shipment on file")
	}

	previous := a.State
	if inspectionPassed {
		target, ok := routeAfterReceive[a.Type]
		if !ok {
			return shared.NewDomainError("INVALID_TYPE", fmt.Sprintf("No receive route for type %s", a.Type))
		}
		if err := a.transition(target, ActionInspectionPass, OperatorAdmin, operator, note); err != nil {
			return err
		}
		a.ReturnOrder.MarkReceived()
		a.ReturnOrder.MarkInspected(true)
		switch target {
		case StatePendingRefund:
			a.ensureRefundOrder()
		case StatePendingExchange:
			a.ensureExchangeOrder()
		}
	} else {
		if err := a.transition(StateCSIntervention, ActionInspectionFail, OperatorAdmin, operator, note); err != nil {
			return err
		}
		a.ReturnOrder.MarkReceived()
		a.ReturnOrder.MarkInspected(false)
	}

	a.AddDomainEvent(NewAftersalesStatusChangedEvent(a, previous))
	return nil
}

// ResolveRefund applies the payment-gateway outcome. Success completes the
// request; failure escalates to customer service.
func (a *AftersalesRequest) ResolveRefund(success bool, actualAmount decimal.Decimal, detail string) error {
	if a.State != StatePendingRefund {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot resolve refund in %s state", a.State))
	}
	if a.RefundOrder == nil {
		return shared.NewDomainError("INVALID_STATE", "No refund order on file")
	}

	previous := a.State
	if success {
		if actualAmount.IsNegative() {
			return shared.NewDomainError("INVALID_AMOUNT", "Actual refund amount cannot be negative")
		}
		if err := a.transition(StateCompleted, ActionRefundSuccess, OperatorSystem, "payment-gateway", detail); err != nil {
			return err
		}
		a.ActualRefundAmount = actualAmount.Round(2)
		a.RefundOrder.MarkSuccess(a.ActualRefundAmount)
		a.AddDomainEvent(NewAftersalesCompletedEvent(a))
		return nil
	}

	if err := a.transition(StateCSIntervention, ActionRefundFail, OperatorSystem, "payment-gateway", detail); err != nil {
		return err
	}
	a.RefundOrder.MarkFailed()
	a.AddDomainEvent(NewAftersalesStatusChangedEvent(a, previous))
	return nil
}

// ConfirmExchangeShipment completes the request once the replacement goods
// are confirmed shipped
func (a *AftersalesRequest) ConfirmExchangeShipment(operator, trackingInfo string) error {
	if operator == "" {
		return shared.NewDomainError("INVALID_OPERATOR", "Operator cannot be empty")
	}
	if a.State != StatePendingExchange {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot confirm exchange shipment in %s state", a.State))
	}

	if err := a.transition(StateCompleted, ActionExchangeShip, OperatorAdmin, operator, trackingInfo); err != nil {
		return err
	}
	if a.ExchangeOrder != nil {
		a.ExchangeOrder.MarkShipped()
		a.ExchangeOrder.MarkCompleted()
	}
	a.AddDomainEvent(NewAftersalesCompletedEvent(a))
	return nil
}

// Cancel cancels the request; valid from any non-terminal state except
// CS_INTERVENTION, which only exits via the forced operations
func (a *AftersalesRequest) Cancel(byAdmin bool, operator, reason string) error {
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}
	// the CANCELLED transition from CS intervention is reserved for the
	// forced operations
	if a.State == StateCSIntervention {
		return shared.NewDomainError("INVALID_STATE", "Customer service cases are resolved by forced completion or cancellation")
	}
	action := ActionCancel
	opType := OperatorUser
	if byAdmin {
		action = ActionAdminCancel
		opType = OperatorAdmin
	}
	if err := a.transition(StateCancelled, action, opType, operator, reason); err != nil {
		return err
	}
	a.cancelOwnedOrders()
	a.AddDomainEvent(NewAftersalesCancelledEvent(a, reason, false))
	return nil
}

// MarkTimeout closes the request after the action deadline elapsed. Driven
// by an external sweep; an ordinary transition, not a background worker.
func (a *AftersalesRequest) MarkTimeout() error {
	if err := a.transition(StateTimeout, ActionTimeout, OperatorSystem, "system", "Closed after action deadline elapsed"); err != nil {
		return err
	}
	a.cancelOwnedOrders()
	a.AddDomainEvent(NewAftersalesCancelledEvent(a, "timeout", true))
	return nil
}

// ForceComplete resolves a CS_INTERVENTION case as completed
func (a *AftersalesRequest) ForceComplete(operator, note string) error {
	if operator == "" {
		return shared.NewDomainError("INVALID_OPERATOR", "Operator cannot be empty")
	}
	if a.State != StateCSIntervention {
		return shared.NewDomainError("INVALID_STATE", "Forced completion is only valid from CS intervention")
	}
	if err := a.transition(StateCompleted, ActionCSForceComplete, OperatorAdmin, operator, note); err != nil {
		return err
	}
	a.AddDomainEvent(NewAftersalesCompletedEvent(a))
	return nil
}

// ForceCancel resolves a CS_INTERVENTION case as cancelled
func (a *AftersalesRequest) ForceCancel(operator, reason string) error {
	if operator == "" {
		return shared.NewDomainError("INVALID_OPERATOR", "Operator cannot be empty")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}
	if a.State != StateCSIntervention {
		return shared.NewDomainError("INVALID_STATE", "Forced cancellation is only valid from CS intervention")
	}
	if err := a.transition(StateCancelled, ActionCSForceCancel, OperatorAdmin, operator, reason); err != nil {
		return err
	}
	a.cancelOwnedOrders()
	a.AddDomainEvent(NewAftersalesCancelledEvent(a, reason, false))
	return nil
}

func (a *AftersalesRequest) ensureRefundOrder() {
	if a.RefundOrder == nil {
		a.RefundOrder = NewRefundOrder(a.ID, a.RequestedRefundAmount)
	}
}

func (a *AftersalesRequest) ensureExchangeOrder() {
	if a.Type != TypeExchange {
		return
	}
	if a.ExchangeOrder == nil {
		a.ExchangeOrder = NewExchangeOrder(a.ID, a.AftersalesNumber, a.Reason.String(), ExchangeItem{
			OrderItemID: a.OrderItemID,
			ProductID:   a.ProductID,
			SkuID:       a.SkuID,
			ProductName: a.ProductName,
			SkuName:     a.SkuName,
			Quantity:    a.Quantity,
		})
	}
}

func (a *AftersalesRequest) cancelOwnedOrders() {
	if a.RefundOrder != nil && !a.RefundOrder.IsResolved() {
		a.RefundOrder.MarkCancelled()
	}
	if a.ExchangeOrder != nil && a.ExchangeOrder.Status != ExchangeStatusCompleted {
		a.ExchangeOrder.MarkCancelled()
	}
}

// IsOwnedBy reports whether the request belongs to the given user
func (a *AftersalesRequest) IsOwnedBy(userID uuid.UUID) bool {
	return a.UserID == userID
}

// IsTerminal reports whether the request reached a final state
func (a *AftersalesRequest) IsTerminal() bool {
	return a.State.IsTerminal()
}

// IsCompleted reports whether the request completed successfully
func (a *AftersalesRequest) IsCompleted() bool {
	return a.State == StateCompleted
}
