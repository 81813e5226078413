package aftersales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tourze/aftersales/internal/domain/aftersales"
)

// ApplyAftersalesRequest represents a customer's after-sales application
type ApplyAftersalesRequest struct {
	OrderID               uuid.UUID                 `json:"order_id" binding:"required"`
	OrderItemID           uuid.UUID                 `json:"order_item_id" binding:"required"`
	Type                  aftersales.AftersalesType `json:"type" binding:"required"`
	Reason                aftersales.RefundReason   `json:"reason" binding:"required"`
	Quantity              int64                     `json:"quantity" binding:"required,min=1"`
	RequestedRefundAmount decimal.Decimal           `json:"requested_refund_amount"`
	Description           string                    `json:"description" binding:"max=1000"`
	ProofImages           []string                  `json:"proof_images" binding:"max=9"`
}

// ResubmitAftersalesRequest represents a revised application after modification
type ResubmitAftersalesRequest struct {
	Reason                aftersales.RefundReason `json:"reason" binding:"required"`
	RequestedRefundAmount decimal.Decimal         `json:"requested_refund_amount"`
	Description           string                  `json:"description" binding:"max=1000"`
	ProofImages           []string                `json:"proof_images" binding:"max=9"`
}

// ApproveAftersalesRequest represents a manual approval
type ApproveAftersalesRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// RejectAftersalesRequest represents a rejection
type RejectAftersalesRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// RequestModificationRequest asks the customer to revise the application
type RequestModificationRequest struct {
	Note string `json:"note" binding:"required,min=1,max=500"`
}

// CancelAftersalesRequest represents a cancellation
type CancelAftersalesRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ConfirmReceiptRequest records warehouse receipt plus inspection outcome
type ConfirmReceiptRequest struct {
	InspectionPassed bool   `json:"inspection_passed"`
	Note             string `json:"note" binding:"max=500"`
}

// RefundCallbackRequest carries the payment-gateway refund outcome
type RefundCallbackRequest struct {
	Success      bool            `json:"success"`
	ActualAmount decimal.Decimal `json:"actual_amount"`
	Detail       string          `json:"detail" binding:"max=500"`
}

// ConfirmExchangeShipmentRequest records the replacement-goods shipment
type ConfirmExchangeShipmentRequest struct {
	TrackingInfo string `json:"tracking_info" binding:"max=200"`
}

// CSResolveRequest resolves an escalated case as completed or cancelled
type CSResolveRequest struct {
	Complete bool   `json:"complete"`
	Note     string `json:"note" binding:"required,min=1,max=500"`
}

// SubmitReturnExpressRequest records the customer's return shipment
type SubmitReturnExpressRequest struct {
	CarrierCode    string `json:"carrier_code" binding:"required,max=50"`
	TrackingNumber string `json:"tracking_number" binding:"required,max=50"`
	Remark         string `json:"remark" binding:"max=200"`
}

// RefundQuoteRequest asks for a refund calculation over order lines
type RefundQuoteRequest struct {
	OrderID uuid.UUID              `json:"order_id" binding:"required"`
	Items   []RefundQuoteItemInput `json:"items" binding:"required,min=1,dive"`
}

// RefundQuoteItemInput is one quoted line
type RefundQuoteItemInput struct {
	OrderItemID uuid.UUID `json:"order_item_id" binding:"required"`
	Quantity    int64     `json:"quantity" binding:"required,min=1"`
}

// OrderRefundableResponse quotes every line on an order at its full
// remaining quantity
type OrderRefundableResponse struct {
	OrderID     uuid.UUID                `json:"order_id"`
	OrderNumber string                   `json:"order_number"`
	CanRefund   bool                     `json:"can_refund"`
	Reason      string                   `json:"reason,omitempty"`
	Lines       []LineRefundableResponse `json:"lines"`
}

// LineRefundableResponse is the refundable snapshot of one order line
type LineRefundableResponse struct {
	OrderItemID        uuid.UUID       `json:"order_item_id"`
	ProductName        string          `json:"product_name"`
	SkuName            string          `json:"sku_name,omitempty"`
	Quantity           int64           `json:"quantity"`
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	RefundedQuantity   int64           `json:"refunded_quantity"`
	AlreadyRefunded    decimal.Decimal `json:"already_refunded"`
	RefundableQuantity int64           `json:"refundable_quantity"`
	MaxRefundable      decimal.Decimal `json:"max_refundable"`
	Refundable         bool            `json:"refundable"`
	Reason             string          `json:"reason,omitempty"`
}

// OrderLineStatusResponse reports the per-line after-sales markers the
// order system sees
type OrderLineStatusResponse struct {
	OrderID           uuid.UUID            `json:"order_id"`
	OrderNumber       string               `json:"order_number"`
	AftersalesSuccess bool                 `json:"aftersales_success"`
	Lines             []LineStatusResponse `json:"lines"`
}

// LineStatusResponse is one order line's after-sales marker
type LineStatusResponse struct {
	OrderItemID      uuid.UUID `json:"order_item_id"`
	ProductName      string    `json:"product_name"`
	AftersalesStatus string    `json:"aftersales_status"`
}

// AftersalesListFilter represents filter options for the aftersales list
type AftersalesListFilter struct {
	OrderID  *uuid.UUID                  `form:"order_id"`
	UserID   *uuid.UUID                  `form:"user_id"`
	State    *aftersales.AftersalesState `form:"state"`
	Stage    *aftersales.AftersalesStage `form:"stage"`
	Type     *aftersales.AftersalesType  `form:"type"`
	Search   string                      `form:"search"`
	Page     int                         `form:"page" binding:"min=0"`
	PageSize int                         `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string                      `form:"order_by"`
	OrderDir string                      `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AftersalesResponse represents an after-sales request in API responses
type AftersalesResponse struct {
	ID                    uuid.UUID               `json:"id"`
	AftersalesNumber      string                  `json:"aftersales_number"`
	OrderID               uuid.UUID               `json:"order_id"`
	OrderNumber           string                  `json:"order_number"`
	UserID                uuid.UUID               `json:"user_id"`
	Type                  string                  `json:"type"`
	Reason                string                  `json:"reason"`
	State                 string                  `json:"state"`
	Stage                 string                  `json:"stage"`
	OrderItemID           uuid.UUID               `json:"order_item_id"`
	ProductID             uuid.UUID               `json:"product_id"`
	SkuID                 uuid.UUID               `json:"sku_id"`
	ProductName           string                  `json:"product_name"`
	SkuName               string                  `json:"sku_name"`
	Quantity              int64                   `json:"quantity"`
	OriginalPrice         decimal.Decimal         `json:"original_price"`
	PaidPrice             decimal.Decimal         `json:"paid_price"`
	RequestedRefundAmount decimal.Decimal         `json:"requested_refund_amount"`
	OriginalRefundAmount  decimal.Decimal         `json:"original_refund_amount"`
	ActualRefundAmount    decimal.Decimal         `json:"actual_refund_amount"`
	Description           string                  `json:"description,omitempty"`
	ProofImages           []string                `json:"proof_images,omitempty"`
	ReturnOrder           *ReturnOrderResponse    `json:"return_order,omitempty"`
	RefundOrder           *RefundOrderResponse    `json:"refund_order,omitempty"`
	ExchangeOrder         *ExchangeOrderResponse  `json:"exchange_order,omitempty"`
	Logs                  []AftersalesLogResponse `json:"logs,omitempty"`
	CreatedAt             time.Time               `json:"created_at"`
	UpdatedAt             time.Time               `json:"updated_at"`
	Version               int                     `json:"version"`
}

// AftersalesListItemResponse represents an after-sales request in list responses
type AftersalesListItemResponse struct {
	ID                    uuid.UUID       `json:"id"`
	AftersalesNumber      string          `json:"aftersales_number"`
	OrderID               uuid.UUID       `json:"order_id"`
	OrderNumber           string          `json:"order_number"`
	Type                  string          `json:"type"`
	Reason                string          `json:"reason"`
	State                 string          `json:"state"`
	Stage                 string          `json:"stage"`
	ProductName           string          `json:"product_name"`
	SkuName               string          `json:"sku_name"`
	Quantity              int64           `json:"quantity"`
	RequestedRefundAmount decimal.Decimal `json:"requested_refund_amount"`
	ActualRefundAmount    decimal.Decimal `json:"actual_refund_amount"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// ReturnOrderResponse represents the return leg in API responses
type ReturnOrderResponse struct {
	ID             uuid.UUID  `json:"id"`
	CarrierCode    string     `json:"carrier_code,omitempty"`
	TrackingNumber string     `json:"tracking_number,omitempty"`
	TrackingURL    string     `json:"tracking_url,omitempty"`
	Remark         string     `json:"remark,omitempty"`
	ShippedAt      *time.Time `json:"shipped_at,omitempty"`
	ReceivedAt     *time.Time `json:"received_at,omitempty"`
	InspectedAt    *time.Time `json:"inspected_at,omitempty"`
	InspectionPass bool       `json:"inspection_pass"`
}

// RefundOrderResponse represents the refund leg in API responses
type RefundOrderResponse struct {
	ID            uuid.UUID       `json:"id"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	ResolvedAt    *time.Time      `json:"resolved_at,omitempty"`
}

// ExchangeOrderResponse represents the exchange leg in API responses
type ExchangeOrderResponse struct {
	ID             uuid.UUID `json:"id"`
	ExchangeNumber string    `json:"exchange_number"`
	Status         string    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
}

// AftersalesLogResponse represents one audit log entry in API responses
type AftersalesLogResponse struct {
	ID            uuid.UUID `json:"id"`
	Action        string    `json:"action"`
	OperatorType  string    `json:"operator_type"`
	OperatorName  string    `json:"operator_name,omitempty"`
	Content       string    `json:"content,omitempty"`
	PreviousState string    `json:"previous_state"`
	CurrentState  string    `json:"current_state"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExpressCompanyResponse represents a carrier in API responses
type ExpressCompanyResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ReturnAddressResponse represents a merchant return address in API responses
type ReturnAddressResponse struct {
	ID        uuid.UUID `json:"id"`
	Contact   string    `json:"contact"`
	Phone     string    `json:"phone"`
	Region    string    `json:"region"`
	Detail    string    `json:"detail"`
	IsDefault bool      `json:"is_default"`
}

// ToAftersalesResponse converts a domain AftersalesRequest to a response DTO
func ToAftersalesResponse(a *aftersales.AftersalesRequest) AftersalesResponse {
	resp := AftersalesResponse{
		ID:                    a.ID,
		AftersalesNumber:      a.AftersalesNumber,
		OrderID:               a.OrderID,
		OrderNumber:           a.OrderNumber,
		UserID:                a.UserID,
		Type:                  a.Type.String(),
		Reason:                a.Reason.String(),
		State:                 a.State.String(),
		Stage:                 a.Stage.String(),
		OrderItemID:           a.OrderItemID,
		ProductID:             a.ProductID,
		SkuID:                 a.SkuID,
		ProductName:           a.ProductName,
		SkuName:               a.SkuName,
		Quantity:              a.Quantity,
		OriginalPrice:         a.OriginalPrice,
		PaidPrice:             a.PaidPrice,
		RequestedRefundAmount: a.RequestedRefundAmount,
		OriginalRefundAmount:  a.OriginalRefundAmount,
		ActualRefundAmount:    a.ActualRefundAmount,
		Description:           a.Description,
		ProofImages:           a.ProofImages,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
		Version:               a.Version,
	}
	if a.ReturnOrder != nil {
		resp.ReturnOrder = ToReturnOrderResponse(a.ReturnOrder)
	}
	if a.RefundOrder != nil {
		resp.RefundOrder = &RefundOrderResponse{
			ID:            a.RefundOrder.ID,
			Status:        string(a.RefundOrder.Status),
			Amount:        a.RefundOrder.Amount,
			PaymentMethod: a.RefundOrder.PaymentMethod,
			ResolvedAt:    a.RefundOrder.ResolvedAt,
		}
	}
	if a.ExchangeOrder != nil {
		resp.ExchangeOrder = &ExchangeOrderResponse{
			ID:             a.ExchangeOrder.ID,
			ExchangeNumber: a.ExchangeOrder.ExchangeNumber,
			Status:         string(a.ExchangeOrder.Status),
			Reason:         a.ExchangeOrder.Reason,
		}
	}
	return resp
}

// ToReturnOrderResponse converts a domain ReturnOrder to a response DTO
func ToReturnOrderResponse(r *aftersales.ReturnOrder) *ReturnOrderResponse {
	return &ReturnOrderResponse{
		ID:             r.ID,
		CarrierCode:    r.CarrierCode,
		TrackingNumber: r.TrackingNumber,
		Remark:         r.Remark,
		ShippedAt:      r.ShippedAt,
		ReceivedAt:     r.ReceivedAt,
		InspectedAt:    r.InspectedAt,
		InspectionPass: r.InspectionPass,
	}
}

// ToAftersalesListItemResponse converts a domain request to a list response DTO
func ToAftersalesListItemResponse(a *aftersales.AftersalesRequest) AftersalesListItemResponse {
	return AftersalesListItemResponse{
		ID:                    a.ID,
		AftersalesNumber:      a.AftersalesNumber,
		OrderID:               a.OrderID,
		OrderNumber:           a.OrderNumber,
		Type:                  a.Type.String(),
		Reason:                a.Reason.String(),
		State:                 a.State.String(),
		Stage:                 a.Stage.String(),
		ProductName:           a.ProductName,
		SkuName:               a.SkuName,
		Quantity:              a.Quantity,
		RequestedRefundAmount: a.RequestedRefundAmount,
		ActualRefundAmount:    a.ActualRefundAmount,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

// ToAftersalesListItemResponses converts a slice of domain requests to list responses
func ToAftersalesListItemResponses(requests []*aftersales.AftersalesRequest) []AftersalesListItemResponse {
	responses := make([]AftersalesListItemResponse, len(requests))
	for i := range requests {
		responses[i] = ToAftersalesListItemResponse(requests[i])
	}
	return responses
}

// ToAftersalesLogResponse converts a domain log entry to a response DTO
func ToAftersalesLogResponse(l *aftersales.AftersalesLog) AftersalesLogResponse {
	return AftersalesLogResponse{
		ID:            l.ID,
		Action:        l.Action.String(),
		OperatorType:  string(l.OperatorType),
		OperatorName:  l.OperatorName,
		Content:       l.Content,
		PreviousState: l.PreviousState.String(),
		CurrentState:  l.CurrentState.String(),
		CreatedAt:     l.CreatedAt,
	}
}

// ToAftersalesLogResponses converts a slice of domain log entries to response DTOs
func ToAftersalesLogResponses(logs []aftersales.AftersalesLog) []AftersalesLogResponse {
	responses := make([]AftersalesLogResponse, len(logs))
	for i := range logs {
		responses[i] = ToAftersalesLogResponse(&logs[i])
	}
	return responses
}

// ToExpressCompanyResponses converts carriers to response DTOs
func ToExpressCompanyResponses(companies []aftersales.ExpressCompany) []ExpressCompanyResponse {
	responses := make([]ExpressCompanyResponse, len(companies))
	for i, c := range companies {
		responses[i] = ExpressCompanyResponse{Code: c.Code, Name: c.Name}
	}
	return responses
}

// ToReturnAddressResponse converts a merchant return address to a response DTO
func ToReturnAddressResponse(a *aftersales.ReturnAddress) ReturnAddressResponse {
	return ReturnAddressResponse{
		ID:        a.ID,
		Contact:   a.Contact,
		Phone:     a.Phone,
		Region:    a.Region,
		Detail:    a.Detail,
		IsDefault: a.IsDefault,
	}
}
