package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/infrastructure/persistence/models"
)

// GormAftersalesLogRepository implements aftersales.LogRepository using GORM.
// Logs are written by GormAftersalesRepository inside the aggregate save
// transaction; this repository only reads them.
type GormAftersalesLogRepository struct {
	db *gorm.DB
}

// NewGormAftersalesLogRepository creates a new GormAftersalesLogRepository
func NewGormAftersalesLogRepository(db *gorm.DB) *GormAftersalesLogRepository {
	return &GormAftersalesLogRepository{db: db}
}

// FindByAftersalesID returns the audit trail of a request in insertion order
func (r *GormAftersalesLogRepository) FindByAftersalesID(ctx context.Context, aftersalesID uuid.UUID) ([]aftersales.AftersalesLog, error) {
	var rows []models.AftersalesLogModel
	if err := r.db.WithContext(ctx).
		Where("aftersales_id = ?", aftersalesID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	logs := make([]aftersales.AftersalesLog, len(rows))
	for i := range rows {
		logs[i] = rows[i].ToDomain()
	}
	return logs, nil
}

// Ensure GormAftersalesLogRepository implements aftersales.LogRepository
var _ aftersales.LogRepository = (*GormAftersalesLogRepository)(nil)
