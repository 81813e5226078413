package aftersales

// AftersalesType classifies what the customer is asking for
type AftersalesType string

const (
	TypeCancel       AftersalesType = "CANCEL"        // Cancel before shipment
	TypeRefundOnly   AftersalesType = "REFUND_ONLY"   // Refund without returning goods
	TypeReturnRefund AftersalesType = "RETURN_REFUND" // Return goods, then refund
	TypeExchange     AftersalesType = "EXCHANGE"      // Return goods, receive replacement
	TypeResend       AftersalesType = "RESEND"        // Merchant resends, nothing returned
)

// IsValid checks if the type is a known AftersalesType
func (t AftersalesType) IsValid() bool {
	switch t {
	case TypeCancel, TypeRefundOnly, TypeReturnRefund, TypeExchange, TypeResend:
		return true
	}
	return false
}

// String returns the string representation of AftersalesType
func (t AftersalesType) String() string {
	return string(t)
}

// RefundReason is the customer-declared reason for the request
type RefundReason string

const (
	ReasonDontWant        RefundReason = "DONT_WANT"
	ReasonUnusedDiscount  RefundReason = "UNUSED_DISCOUNT"
	ReasonPriceIssue      RefundReason = "PRICE_ISSUE"
	ReasonQualityIssue    RefundReason = "QUALITY_ISSUE"
	ReasonMissingItem     RefundReason = "MISSING_ITEM"
	ReasonOutOfStock      RefundReason = "OUT_OF_STOCK"
	ReasonDeliveryTimeout RefundReason = "DELIVERY_TIMEOUT"
	ReasonOther           RefundReason = "OTHER"
)

// IsValid checks if the reason is a known RefundReason
func (r RefundReason) IsValid() bool {
	_, ok := reasonPolicies[r]
	return ok
}

// String returns the string representation of RefundReason
func (r RefundReason) String() string {
	return string(r)
}

// reasonPolicy holds the static classification flags for a refund reason
type reasonPolicy struct {
	autoApproval           bool
	merchantResponsibility bool
}

// reasonPolicies is the authoritative reason classification table.
// Only no-fault reasons qualify for automatic approval; merchant-fault
// reasons shift return-shipping cost to the merchant downstream.
var reasonPolicies = map[RefundReason]reasonPolicy{
	ReasonDontWant:        {autoApproval: true, merchantResponsibility: false},
	ReasonUnusedDiscount:  {autoApproval: true, merchantResponsibility: false},
	ReasonPriceIssue:      {autoApproval: false, merchantResponsibility: false},
	ReasonQualityIssue:    {autoApproval: false, merchantResponsibility: true},
	ReasonMissingItem:     {autoApproval: false, merchantResponsibility: true},
	ReasonOutOfStock:      {autoApproval: false, merchantResponsibility: true},
	ReasonDeliveryTimeout: {autoApproval: false, merchantResponsibility: true},
	ReasonOther:           {autoApproval: false, merchantResponsibility: false},
}

// SupportsAutoApproval reports whether requests with this reason skip
// manual review
func SupportsAutoApproval(reason RefundReason) bool {
	return reasonPolicies[reason].autoApproval
}

// IsMerchantResponsibility reports whether the merchant is at fault for
// this reason
func IsMerchantResponsibility(reason RefundReason) bool {
	return reasonPolicies[reason].merchantResponsibility
}

// RequiresPhysicalReturn reports whether the type includes a return leg,
// and therefore stock restoration on completion
func RequiresPhysicalReturn(t AftersalesType) bool {
	return t == TypeReturnRefund || t == TypeExchange
}

// AftersalesState is the fine-grained lifecycle status
type AftersalesState string

const (
	StatePendingApproval     AftersalesState = "PENDING_APPROVAL"
	StateApproved            AftersalesState = "APPROVED"
	StateRejected            AftersalesState = "REJECTED"
	StatePendingModification AftersalesState = "PENDING_MODIFICATION"
	StatePendingReturn       AftersalesState = "PENDING_RETURN"
	StatePendingReceive      AftersalesState = "PENDING_RECEIVE"
	StatePendingRefund       AftersalesState = "PENDING_REFUND"
	StatePendingExchange     AftersalesState = "PENDING_EXCHANGE"
	StateCSIntervention      AftersalesState = "CS_INTERVENTION"
	StateCompleted           AftersalesState = "COMPLETED"
	StateCancelled           AftersalesState = "CANCELLED"
	StateTimeout             AftersalesState = "TIMEOUT"
)

// stateTransitions is the closed transition table. A state maps to the set
// of states it may legally move to; terminal states map to nothing.
var stateTransitions = map[AftersalesState][]AftersalesState{
	StatePendingApproval: {
		StateApproved, StateRejected, StatePendingModification,
		StateCancelled, StateTimeout,
	},
	StateApproved: {
		StatePendingReturn, StatePendingRefund, StatePendingExchange,
		StateCancelled, StateTimeout,
	},
	StatePendingModification: {
		StatePendingApproval, StateCancelled, StateTimeout,
	},
	StatePendingReturn: {
		StatePendingReceive, StateCancelled, StateTimeout,
	},
	StatePendingReceive: {
		StatePendingRefund, StatePendingExchange, StateCSIntervention,
		StateCancelled, StateTimeout,
	},
	StatePendingRefund: {
		StateCompleted, StateCSIntervention, StateCancelled, StateTimeout,
	},
	StatePendingExchange: {
		StateCompleted, StateCSIntervention, StateCancelled, StateTimeout,
	},
	StateCSIntervention: {
		StateCompleted, StateCancelled,
	},
	StateRejected:  nil,
	StateCompleted: nil,
	StateCancelled: nil,
	StateTimeout:   nil,
}

// IsValid checks if the state is a known AftersalesState
func (s AftersalesState) IsValid() bool {
	_, ok := stateTransitions[s]
	return ok
}

// String returns the string representation of AftersalesState
func (s AftersalesState) String() string {
	return string(s)
}

// CanTransitionTo checks if the state can legally move to the target state
func (s AftersalesState) CanTransitionTo(target AftersalesState) bool {
	for _, next := range stateTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state is final
func (s AftersalesState) IsTerminal() bool {
	switch s {
	case StateRejected, StateCompleted, StateCancelled, StateTimeout:
		return true
	}
	return false
}

// AftersalesStage is the coarse lifecycle phase mirroring the state
type AftersalesStage string

const (
	StageApply    AftersalesStage = "APPLY"
	StageAudit    AftersalesStage = "AUDIT"
	StageReturn   AftersalesStage = "RETURN"
	StageReceive  AftersalesStage = "RECEIVE"
	StageRefund   AftersalesStage = "REFUND"
	StageExchange AftersalesStage = "EXCHANGE"
	StageComplete AftersalesStage = "COMPLETE"
)

// IsValid checks if the stage is a known AftersalesStage
func (s AftersalesStage) IsValid() bool {
	switch s {
	case StageApply, StageAudit, StageReturn, StageReceive,
		StageRefund, StageExchange, StageComplete:
		return true
	}
	return false
}

// String returns the string representation of AftersalesStage
func (s AftersalesStage) String() string {
	return string(s)
}

// stageForState pairs each non-sink state with its stage. Sink states
// (CANCELLED, TIMEOUT, CS_INTERVENTION) keep the stage they were reached
// from and are absent here.
var stageForState = map[AftersalesState]AftersalesStage{
	StatePendingApproval:     StageApply,
	StatePendingModification: StageApply,
	StateApproved:            StageAudit,
	StateRejected:            StageAudit,
	StatePendingReturn:       StageReturn,
	StatePendingReceive:      StageReceive,
	StatePendingRefund:       StageRefund,
	StatePendingExchange:     StageExchange,
	StateCompleted:           StageComplete,
}

// StageFor returns the stage paired with the state, or false for sink
// states that retain the current stage
func StageFor(state AftersalesState) (AftersalesStage, bool) {
	stage, ok := stageForState[state]
	return stage, ok
}

// routeAfterApproval selects the processing state an approved request
// moves to, by type
var routeAfterApproval = map[AftersalesType]AftersalesState{
	TypeCancel:       StatePendingRefund,
	TypeRefundOnly:   StatePendingRefund,
	TypeReturnRefund: StatePendingReturn,
	TypeExchange:     StatePendingReturn,
	TypeResend:       StatePendingExchange,
}

// routeAfterReceive selects the state an inspected return moves to, by type
var routeAfterReceive = map[AftersalesType]AftersalesState{
	TypeReturnRefund: StatePendingRefund,
	TypeExchange:     StatePendingExchange,
}

// AftersalesAction identifies the operation recorded in the audit log
type AftersalesAction string

const (
	ActionApply               AftersalesAction = "APPLY"
	ActionAutoApprove         AftersalesAction = "AUTO_APPROVE"
	ActionApprove             AftersalesAction = "APPROVE"
	ActionReject              AftersalesAction = "REJECT"
	ActionRequestModification AftersalesAction = "REQUEST_MODIFICATION"
	ActionResubmit            AftersalesAction = "RESUBMIT"
	ActionModify              AftersalesAction = "MODIFY"
	ActionCancel              AftersalesAction = "CANCEL"
	ActionAdminCancel         AftersalesAction = "ADMIN_CANCEL"
	ActionTimeout             AftersalesAction = "TIMEOUT"
	ActionStartReturn         AftersalesAction = "START_RETURN"
	ActionSubmitReturnExpress AftersalesAction = "SUBMIT_RETURN_EXPRESS"
	ActionConfirmReceipt      AftersalesAction = "CONFIRM_RECEIPT"
	ActionInspectionPass      AftersalesAction = "INSPECTION_PASS"
	ActionInspectionFail      AftersalesAction = "INSPECTION_FAIL"
	ActionCreateRefundOrder   AftersalesAction = "CREATE_REFUND_ORDER"
	ActionRefundStart         AftersalesAction = "REFUND_START"
	ActionRefundSuccess       AftersalesAction = "REFUND_SUCCESS"
	ActionRefundFail          AftersalesAction = "REFUND_FAIL"
	ActionCreateExchangeOrder AftersalesAction = "CREATE_EXCHANGE_ORDER"
	ActionExchangeShip        AftersalesAction = "EXCHANGE_SHIP"
	ActionComplete            AftersalesAction = "COMPLETE"
	ActionCSIntervene         AftersalesAction = "CS_INTERVENE"
	ActionCSForceComplete     AftersalesAction = "CS_FORCE_COMPLETE"
	ActionCSForceCancel       AftersalesAction = "CS_FORCE_CANCEL"
	ActionStockReturn         AftersalesAction = "STOCK_RETURN"
)

// String returns the string representation of AftersalesAction
func (a AftersalesAction) String() string {
	return string(a)
}

// OperatorType identifies who performed a logged action
type OperatorType string

const (
	OperatorUser   OperatorType = "USER"
	OperatorAdmin  OperatorType = "ADMIN"
	OperatorSystem OperatorType = "SYSTEM"
)

// RefundStatus is the payment-gateway facing status of a RefundOrder
type RefundStatus string

const (
	RefundStatusPending    RefundStatus = "PENDING"
	RefundStatusProcessing RefundStatus = "PROCESSING"
	RefundStatusSuccess    RefundStatus = "SUCCESS"
	RefundStatusFailed     RefundStatus = "FAILED"
	RefundStatusCancelled  RefundStatus = "CANCELLED"
)

// ExchangeStatus tracks the replacement-goods leg of an exchange
type ExchangeStatus string

const (
	ExchangeStatusCreated        ExchangeStatus = "CREATED"
	ExchangeStatusPendingReturn  ExchangeStatus = "PENDING_RETURN"
	ExchangeStatusPendingReceive ExchangeStatus = "PENDING_RECEIVE"
	ExchangeStatusReceived       ExchangeStatus = "RECEIVED"
	ExchangeStatusPendingShip    ExchangeStatus = "PENDING_SHIP"
	ExchangeStatusShipped        ExchangeStatus = "SHIPPED"
	ExchangeStatusCompleted      ExchangeStatus = "COMPLETED"
	ExchangeStatusCancelled      ExchangeStatus = "CANCELLED"
)
