package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/domain/shared"
	"github.com/tourze/aftersales/internal/infrastructure/persistence/models"
)

// GormReturnAddressRepository implements aftersales.ReturnAddressRepository using GORM
type GormReturnAddressRepository struct {
	db *gorm.DB
}

// NewGormReturnAddressRepository creates a new GormReturnAddressRepository
func NewGormReturnAddressRepository(db *gorm.DB) *GormReturnAddressRepository {
	return &GormReturnAddressRepository{db: db}
}

// FindByID finds a return address by its ID
func (r *GormReturnAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*aftersales.ReturnAddress, error) {
	var model models.ReturnAddressModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindDefault returns the default return address
func (r *GormReturnAddressRepository) FindDefault(ctx context.Context) (*aftersales.ReturnAddress, error) {
	var model models.ReturnAddressModel
	if err := r.db.WithContext(ctx).
		Where("is_default = ?", true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all return addresses, default first
func (r *GormReturnAddressRepository) FindAll(ctx context.Context) ([]aftersales.ReturnAddress, error) {
	var rows []models.ReturnAddressModel
	if err := r.db.WithContext(ctx).
		Order("is_default DESC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	addresses := make([]aftersales.ReturnAddress, len(rows))
	for i := range rows {
		addresses[i] = *rows[i].ToDomain()
	}
	return addresses, nil
}

// Save creates or updates a return address. Setting an address as default
// clears the flag on all other addresses in the same transaction.
func (r *GormReturnAddressRepository) Save(ctx context.Context, address *aftersales.ReturnAddress) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := tx.Model(&models.ReturnAddressModel{}).
				Where("id != ?", address.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(models.ReturnAddressModelFromDomain(address)).Error
	})
}

// Ensure GormReturnAddressRepository implements aftersales.ReturnAddressRepository
var _ aftersales.ReturnAddressRepository = (*GormReturnAddressRepository)(nil)
