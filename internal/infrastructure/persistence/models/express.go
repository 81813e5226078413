package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tourze/aftersales/internal/domain/aftersales"
)

// ExpressCompanyModel is the persistence model for the carrier registry.
type ExpressCompanyModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key"`
	Code                string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name                string    `gorm:"type:varchar(100);not null"`
	Active              bool      `gorm:"not null;default:true;index"`
	TrackingURLTemplate string    `gorm:"type:varchar(500)"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ExpressCompanyModel) TableName() string {
	return "express_companies"
}

// ToDomain converts the persistence model to a domain ExpressCompany.
func (m *ExpressCompanyModel) ToDomain() *aftersales.ExpressCompany {
	return &aftersales.ExpressCompany{
		ID:                  m.ID,
		Code:                m.Code,
		Name:                m.Name,
		Active:              m.Active,
		TrackingURLTemplate: m.TrackingURLTemplate,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// ExpressCompanyModelFromDomain creates a new persistence model from a domain ExpressCompany.
func ExpressCompanyModelFromDomain(c *aftersales.ExpressCompany) *ExpressCompanyModel {
	return &ExpressCompanyModel{
		ID:                  c.ID,
		Code:                c.Code,
		Name:                c.Name,
		Active:              c.Active,
		TrackingURLTemplate: c.TrackingURLTemplate,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

// ReturnAddressModel is the persistence model for merchant return addresses.
type ReturnAddressModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Contact   string    `gorm:"type:varchar(100);not null"`
	Phone     string    `gorm:"type:varchar(50);not null"`
	Region    string    `gorm:"type:varchar(200);not null"`
	Detail    string    `gorm:"type:varchar(500);not null"`
	IsDefault bool      `gorm:"not null;default:false;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReturnAddressModel) TableName() string {
	return "return_addresses"
}

// ToDomain converts the persistence model to a domain ReturnAddress.
func (m *ReturnAddressModel) ToDomain() *aftersales.ReturnAddress {
	return &aftersales.ReturnAddress{
		ID:        m.ID,
		Contact:   m.Contact,
		Phone:     m.Phone,
		Region:    m.Region,
		Detail:    m.Detail,
		IsDefault: m.IsDefault,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ReturnAddressModelFromDomain creates a new persistence model from a domain ReturnAddress.
func ReturnAddressModelFromDomain(a *aftersales.ReturnAddress) *ReturnAddressModel {
	return &ReturnAddressModel{
		ID:        a.ID,
		Contact:   a.Contact,
		Phone:     a.Phone,
		Region:    a.Region,
		Detail:    a.Detail,
		IsDefault: a.IsDefault,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
