package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/domain/shared"
	"github.com/tourze/aftersales/internal/infrastructure/persistence/models"
)

// GormExpressCompanyRepository implements aftersales.ExpressCompanyRepository using GORM
type GormExpressCompanyRepository struct {
	db *gorm.DB
}

// NewGormExpressCompanyRepository creates a new GormExpressCompanyRepository
func NewGormExpressCompanyRepository(db *gorm.DB) *GormExpressCompanyRepository {
	return &GormExpressCompanyRepository{db: db}
}

// FindByCode finds a carrier by its code
func (r *GormExpressCompanyRepository) FindByCode(ctx context.Context, code string) (*aftersales.ExpressCompany, error) {
	var model models.ExpressCompanyModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive returns all active carriers ordered by name
func (r *GormExpressCompanyRepository) FindActive(ctx context.Context) ([]aftersales.ExpressCompany, error) {
	var rows []models.ExpressCompanyModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	companies := make([]aftersales.ExpressCompany, len(rows))
	for i := range rows {
		companies[i] = *rows[i].ToDomain()
	}
	return companies, nil
}

// Save creates or updates a carrier
func (r *GormExpressCompanyRepository) Save(ctx context.Context, company *aftersales.ExpressCompany) error {
	return r.db.WithContext(ctx).Save(models.ExpressCompanyModelFromDomain(company)).Error
}

// Ensure GormExpressCompanyRepository implements aftersales.ExpressCompanyRepository
var _ aftersales.ExpressCompanyRepository = (*GormExpressCompanyRepository)(nil)
