package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tourze/aftersales/internal/domain/order"
)

// OrderModel is the persistence model for the order read model.
type OrderModel struct {
	ID                uuid.UUID        `gorm:"type:uuid;primary_key"`
	OrderNumber       string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	UserID            uuid.UUID        `gorm:"type:uuid;not null;index"`
	Status            order.Status     `gorm:"type:varchar(20);not null;index"`
	AftersalesSuccess bool             `gorm:"not null;default:false"`
	CompletedAt       *time.Time
	Items             []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt         time.Time        `gorm:"not null"`
	UpdatedAt         time.Time        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		ID:                m.ID,
		OrderNumber:       m.OrderNumber,
		UserID:            m.UserID,
		Status:            m.Status,
		AftersalesSuccess: m.AftersalesSuccess,
		CompletedAt:       m.CompletedAt,
		Items:             make([]order.Item, len(m.Items)),
	}
	for i, item := range m.Items {
		o.Items[i] = item.ToDomain()
	}
	return o
}

// OrderItemModel is the persistence model for an order line.
type OrderItemModel struct {
	ID               uuid.UUID                  `gorm:"type:uuid;primary_key"`
	OrderID          uuid.UUID                  `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID                  `gorm:"type:uuid;not null"`
	SkuID            uuid.UUID                  `gorm:"type:uuid;not null"`
	ProductName      string                     `gorm:"type:varchar(200);not null"`
	SkuName          string                     `gorm:"type:varchar(200)"`
	Quantity         int64                      `gorm:"not null"`
	PaidAmount       decimal.Decimal            `gorm:"type:decimal(18,2);not null;default:0"`
	OriginalPrice    decimal.Decimal            `gorm:"type:decimal(18,2);not null;default:0"`
	Valid            bool                       `gorm:"not null;default:true"`
	AftersalesStatus order.LineAftersalesStatus `gorm:"type:varchar(20);not null;default:'NONE'"`
	CreatedAt        time.Time                  `gorm:"not null"`
	UpdatedAt        time.Time                  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Item.
func (m *OrderItemModel) ToDomain() order.Item {
	return order.Item{
		ID:               m.ID,
		OrderID:          m.OrderID,
		ProductID:        m.ProductID,
		SkuID:            m.SkuID,
		ProductName:      m.ProductName,
		SkuName:          m.SkuName,
		Quantity:         m.Quantity,
		PaidAmount:       m.PaidAmount,
		OriginalPrice:    m.OriginalPrice,
		Valid:            m.Valid,
		AftersalesStatus: m.AftersalesStatus,
	}
}

// SkuModel is the persistence model for the catalog sku read model.
type SkuModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Code      string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Stock     int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SkuModel) TableName() string {
	return "skus"
}

// ToDomain converts the persistence model to a domain Sku.
func (m *SkuModel) ToDomain() *order.Sku {
	return &order.Sku{
		ID:        m.ID,
		ProductID: m.ProductID,
		Code:      m.Code,
		Name:      m.Name,
	}
}

// StockChangeLogModel records every stock mutation applied by this service.
type StockChangeLogModel struct {
	ID        uuid.UUID             `gorm:"type:uuid;primary_key"`
	SkuID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	Quantity  int64                 `gorm:"not null"`
	Kind      order.StockChangeKind `gorm:"type:varchar(20);not null"`
	Note      string                `gorm:"type:varchar(500)"`
	CreatedAt time.Time             `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockChangeLogModel) TableName() string {
	return "stock_change_logs"
}
