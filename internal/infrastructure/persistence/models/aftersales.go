package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/domain/shared"
)

// AftersalesRequestModel is the persistence model for the AftersalesRequest aggregate root.
type AftersalesRequestModel struct {
	AggregateModel
	AftersalesNumber string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderID          uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderNumber      string    `gorm:"type:varchar(50);not null"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;index"`

	Type   aftersales.AftersalesType  `gorm:"type:varchar(20);not null"`
	Reason aftersales.RefundReason    `gorm:"type:varchar(40);not null"`
	State  aftersales.AftersalesState `gorm:"type:varchar(30);not null;index"`
	Stage  aftersales.AftersalesStage `gorm:"type:varchar(20);not null;index"`

	OrderItemID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null"`
	SkuID       uuid.UUID `gorm:"type:uuid;not null"`
	ProductName string    `gorm:"type:varchar(200);not null"`
	SkuName     string    `gorm:"type:varchar(200)"`
	Quantity    int64     `gorm:"not null"`

	OriginalPrice         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PaidPrice             decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	RequestedRefundAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OriginalRefundAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ActualRefundAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Description string `gorm:"type:text"`
	ProofImages string `gorm:"type:text"`

	ReturnOrder   *ReturnOrderModel   `gorm:"foreignKey:AftersalesID;references:ID"`
	RefundOrder   *RefundOrderModel   `gorm:"foreignKey:AftersalesID;references:ID"`
	ExchangeOrder *ExchangeOrderModel `gorm:"foreignKey:AftersalesID;references:ID"`
}

// TableName returns the table name for GORM
func (AftersalesRequestModel) TableName() string {
	return "aftersales_requests"
}

// ToDomain converts the persistence model to a domain AftersalesRequest.
func (m *AftersalesRequestModel) ToDomain() *aftersales.AftersalesRequest {
	req := &aftersales.AftersalesRequest{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		AftersalesNumber:      m.AftersalesNumber,
		OrderID:               m.OrderID,
		OrderNumber:           m.OrderNumber,
		UserID:                m.UserID,
		Type:                  m.Type,
		Reason:                m.Reason,
		State:                 m.State,
		Stage:                 m.Stage,
		OrderItemID:           m.OrderItemID,
		ProductID:             m.ProductID,
		SkuID:                 m.SkuID,
		ProductName:           m.ProductName,
		SkuName:               m.SkuName,
		Quantity:              m.Quantity,
		OriginalPrice:         m.OriginalPrice,
		PaidPrice:             m.PaidPrice,
		RequestedRefundAmount: m.RequestedRefundAmount,
		OriginalRefundAmount:  m.OriginalRefundAmount,
		ActualRefundAmount:    m.ActualRefundAmount,
		Description:           m.Description,
	}

	if m.ProofImages != "" {
		var images []string
		if err := json.Unmarshal([]byte(m.ProofImages), &images); err == nil {
			req.ProofImages = images
		}
	}

	if m.ReturnOrder != nil {
		req.ReturnOrder = m.ReturnOrder.ToDomain()
	}
	if m.RefundOrder != nil {
		req.RefundOrder = m.RefundOrder.ToDomain()
	}
	if m.ExchangeOrder != nil {
		req.ExchangeOrder = m.ExchangeOrder.ToDomain()
	}

	return req
}

// FromDomain populates the persistence model from a domain AftersalesRequest.
func (m *AftersalesRequestModel) FromDomain(req *aftersales.AftersalesRequest) {
	m.FromDomainAggregateRoot(req.BaseAggregateRoot)
	m.AftersalesNumber = req.AftersalesNumber
	m.OrderID = req.OrderID
	m.OrderNumber = req.OrderNumber
	m.UserID = req.UserID
	m.Type = req.Type
	m.Reason = req.Reason
	m.State = req.State
	m.Stage = req.Stage
	m.OrderItemID = req.OrderItemID
	m.ProductID = req.ProductID
	m.SkuID = req.SkuID
	m.ProductName = req.ProductName
	m.SkuName = req.SkuName
	m.Quantity = req.Quantity
	m.OriginalPrice = req.OriginalPrice
	m.PaidPrice = req.PaidPrice
	m.RequestedRefundAmount = req.RequestedRefundAmount
	m.OriginalRefundAmount = req.OriginalRefundAmount
	m.ActualRefundAmount = req.ActualRefundAmount
	m.Description = req.Description

	m.ProofImages = ""
	if len(req.ProofImages) > 0 {
		if jsonBytes, err := json.Marshal(req.ProofImages); err == nil {
			m.ProofImages = string(jsonBytes)
		}
	}

	m.ReturnOrder = nil
	if req.ReturnOrder != nil {
		m.ReturnOrder = ReturnOrderModelFromDomain(req.ReturnOrder)
	}
	m.RefundOrder = nil
	if req.RefundOrder != nil {
		m.RefundOrder = RefundOrderModelFromDomain(req.RefundOrder)
	}
	m.ExchangeOrder = nil
	if req.ExchangeOrder != nil {
		m.ExchangeOrder = ExchangeOrderModelFromDomain(req.ExchangeOrder)
	}
}

// AftersalesRequestModelFromDomain creates a new persistence model from a domain AftersalesRequest.
func AftersalesRequestModelFromDomain(req *aftersales.AftersalesRequest) *AftersalesRequestModel {
	m := &AftersalesRequestModel{}
	m.FromDomain(req)
	return m
}

// ReturnOrderModel is the persistence model for the ReturnOrder entity.
type ReturnOrderModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	AftersalesID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	CarrierCode    string     `gorm:"type:varchar(50)"`
	TrackingNumber string     `gorm:"type:varchar(50)"`
	Remark         string     `gorm:"type:varchar(500)"`
	ShippedAt      *time.Time `gorm:"index"`
	ReceivedAt     *time.Time
	InspectedAt    *time.Time
	InspectionPass bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReturnOrderModel) TableName() string {
	return "aftersales_return_orders"
}

// ToDomain converts the persistence model to a domain ReturnOrder.
func (m *ReturnOrderModel) ToDomain() *aftersales.ReturnOrder {
	return &aftersales.ReturnOrder{
		ID:             m.ID,
		AftersalesID:   m.AftersalesID,
		CarrierCode:    m.CarrierCode,
		TrackingNumber: m.TrackingNumber,
		Remark:         m.Remark,
		ShippedAt:      m.ShippedAt,
		ReceivedAt:     m.ReceivedAt,
		InspectedAt:    m.InspectedAt,
		InspectionPass: m.InspectionPass,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// ReturnOrderModelFromDomain creates a new persistence model from a domain ReturnOrder.
func ReturnOrderModelFromDomain(ro *aftersales.ReturnOrder) *ReturnOrderModel {
	return &ReturnOrderModel{
		ID:             ro.ID,
		AftersalesID:   ro.AftersalesID,
		CarrierCode:    ro.CarrierCode,
		TrackingNumber: ro.TrackingNumber,
		Remark:         ro.Remark,
		ShippedAt:      ro.ShippedAt,
		ReceivedAt:     ro.ReceivedAt,
		InspectedAt:    ro.InspectedAt,
		InspectionPass: ro.InspectionPass,
		CreatedAt:      ro.CreatedAt,
		UpdatedAt:      ro.UpdatedAt,
	}
}

// RefundOrderModel is the persistence model for the RefundOrder entity.
type RefundOrderModel struct {
	ID            uuid.UUID               `gorm:"type:uuid;primary_key"`
	AftersalesID  uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex"`
	PaymentMethod string                  `gorm:"type:varchar(50)"`
	Status        aftersales.RefundStatus `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal         `gorm:"type:decimal(18,2);not null;default:0"`
	ResolvedAt    *time.Time
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RefundOrderModel) TableName() string {
	return "aftersales_refund_orders"
}

// ToDomain converts the persistence model to a domain RefundOrder.
func (m *RefundOrderModel) ToDomain() *aftersales.RefundOrder {
	return &aftersales.RefundOrder{
		ID:            m.ID,
		AftersalesID:  m.AftersalesID,
		PaymentMethod: m.PaymentMethod,
		Status:        m.Status,
		Amount:        m.Amount,
		ResolvedAt:    m.ResolvedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// RefundOrderModelFromDomain creates a new persistence model from a domain RefundOrder.
func RefundOrderModelFromDomain(ro *aftersales.RefundOrder) *RefundOrderModel {
	return &RefundOrderModel{
		ID:            ro.ID,
		AftersalesID:  ro.AftersalesID,
		PaymentMethod: ro.PaymentMethod,
		Status:        ro.Status,
		Amount:        ro.Amount,
		ResolvedAt:    ro.ResolvedAt,
		CreatedAt:     ro.CreatedAt,
		UpdatedAt:     ro.UpdatedAt,
	}
}

// ExchangeItemModel holds the columns for one side of an exchange.
type ExchangeItemModel struct {
	OrderItemID uuid.UUID `gorm:"type:uuid"`
	ProductID   uuid.UUID `gorm:"type:uuid"`
	SkuID       uuid.UUID `gorm:"type:uuid"`
	ProductName string    `gorm:"type:varchar(200)"`
	SkuName     string    `gorm:"type:varchar(200)"`
	Quantity    int64
}

// ToDomain converts the persistence model to a domain ExchangeItem.
func (m *ExchangeItemModel) ToDomain() aftersales.ExchangeItem {
	return aftersales.ExchangeItem{
		OrderItemID: m.OrderItemID,
		ProductID:   m.ProductID,
		SkuID:       m.SkuID,
		ProductName: m.ProductName,
		SkuName:     m.SkuName,
		Quantity:    m.Quantity,
	}
}

func exchangeItemModelFromDomain(item aftersales.ExchangeItem) ExchangeItemModel {
	return ExchangeItemModel{
		OrderItemID: item.OrderItemID,
		ProductID:   item.ProductID,
		SkuID:       item.SkuID,
		ProductName: item.ProductName,
		SkuName:     item.SkuName,
		Quantity:    item.Quantity,
	}
}

// ExchangeOrderModel is the persistence model for the ExchangeOrder entity.
type ExchangeOrderModel struct {
	ID             uuid.UUID                 `gorm:"type:uuid;primary_key"`
	AftersalesID   uuid.UUID                 `gorm:"type:uuid;not null;uniqueIndex"`
	ExchangeNumber string                    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status         aftersales.ExchangeStatus `gorm:"type:varchar(30);not null"`
	OriginalItem   ExchangeItemModel         `gorm:"embedded;embeddedPrefix:original_"`
	ExchangeItem   ExchangeItemModel         `gorm:"embedded;embeddedPrefix:exchange_"`
	Reason         string                    `gorm:"type:varchar(500)"`
	ShippedAt      *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ExchangeOrderModel) TableName() string {
	return "aftersales_exchange_orders"
}

// ToDomain converts the persistence model to a domain ExchangeOrder.
func (m *ExchangeOrderModel) ToDomain() *aftersales.ExchangeOrder {
	return &aftersales.ExchangeOrder{
		ID:             m.ID,
		AftersalesID:   m.AftersalesID,
		ExchangeNumber: m.ExchangeNumber,
		Status:         m.Status,
		OriginalItem:   m.OriginalItem.ToDomain(),
		ExchangeItem:   m.ExchangeItem.ToDomain(),
		Reason:         m.Reason,
		ShippedAt:      m.ShippedAt,
		CompletedAt:    m.CompletedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// ExchangeOrderModelFromDomain creates a new persistence model from a domain ExchangeOrder.
func ExchangeOrderModelFromDomain(eo *aftersales.ExchangeOrder) *ExchangeOrderModel {
	return &ExchangeOrderModel{
		ID:             eo.ID,
		AftersalesID:   eo.AftersalesID,
		ExchangeNumber: eo.ExchangeNumber,
		Status:         eo.Status,
		OriginalItem:   exchangeItemModelFromDomain(eo.OriginalItem),
		ExchangeItem:   exchangeItemModelFromDomain(eo.ExchangeItem),
		Reason:         eo.Reason,
		ShippedAt:      eo.ShippedAt,
		CompletedAt:    eo.CompletedAt,
		CreatedAt:      eo.CreatedAt,
		UpdatedAt:      eo.UpdatedAt,
	}
}

// AftersalesLogModel is the persistence model for the append-only audit trail.
type AftersalesLogModel struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primary_key"`
	AftersalesID  uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Action        aftersales.AftersalesAction `gorm:"type:varchar(40);not null"`
	OperatorType  aftersales.OperatorType     `gorm:"type:varchar(20);not null"`
	OperatorName  string                      `gorm:"type:varchar(100)"`
	Content       string                      `gorm:"type:text"`
	PreviousState aftersales.AftersalesState  `gorm:"type:varchar(30);not null"`
	CurrentState  aftersales.AftersalesState  `gorm:"type:varchar(30);not null"`
	CreatedAt     time.Time                   `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AftersalesLogModel) TableName() string {
	return "aftersales_logs"
}

// ToDomain converts the persistence model to a domain AftersalesLog.
func (m *AftersalesLogModel) ToDomain() aftersales.AftersalesLog {
	return aftersales.AftersalesLog{
		ID:            m.ID,
		AftersalesID:  m.AftersalesID,
		Action:        m.Action,
		OperatorType:  m.OperatorType,
		OperatorName:  m.OperatorName,
		Content:       m.Content,
		PreviousState: m.PreviousState,
		CurrentState:  m.CurrentState,
		CreatedAt:     m.CreatedAt,
	}
}

// AftersalesLogModelFromDomain creates a new persistence model from a domain AftersalesLog.
func AftersalesLogModelFromDomain(log aftersales.AftersalesLog) *AftersalesLogModel {
	return &AftersalesLogModel{
		ID:            log.ID,
		AftersalesID:  log.AftersalesID,
		Action:        log.Action,
		OperatorType:  log.OperatorType,
		OperatorName:  log.OperatorName,
		Content:       log.Content,
		PreviousState: log.PreviousState,
		CurrentState:  log.CurrentState,
		CreatedAt:     log.CreatedAt,
	}
}
