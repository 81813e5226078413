package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tourze/aftersales/internal/domain/order"
	"github.com/tourze/aftersales/internal/domain/shared"
	"github.com/tourze/aftersales/internal/infrastructure/persistence/models"
)

// GormOrderRepository adapts the order tables to the read and sync contracts
// consumed by the after-sales core.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order with its lines
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SetLineAftersalesStatus pushes the per-line after-sales marker onto the order line
func (r *GormOrderRepository) SetLineAftersalesStatus(ctx context.Context, lineID uuid.UUID, status order.LineAftersalesStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderItemModel{}).
		Where("id = ?", lineID).
		Updates(map[string]any{
			"aftersales_status": status,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkOrderAftersalesSuccess flags the order once all lines have a completed
// after-sales record
func (r *GormOrderRepository) MarkOrderAftersalesSuccess(ctx context.Context, orderID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"aftersales_success": true,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormOrderRepository implements the order contracts
var (
	_ order.Repository       = (*GormOrderRepository)(nil)
	_ order.LineStatusSyncer = (*GormOrderRepository)(nil)
	_ order.StatusSyncer     = (*GormOrderRepository)(nil)
)

// GormSkuRepository implements order.SkuRepository using GORM
type GormSkuRepository struct {
	db *gorm.DB
}

// NewGormSkuRepository creates a new GormSkuRepository
func NewGormSkuRepository(db *gorm.DB) *GormSkuRepository {
	return &GormSkuRepository{db: db}
}

// FindByID finds a sku by its ID
func (r *GormSkuRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Sku, error) {
	var model models.SkuModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure GormSkuRepository implements order.SkuRepository
var _ order.SkuRepository = (*GormSkuRepository)(nil)

// GormStockService implements order.StockService using GORM. Each mutation
// adjusts the sku counter and appends a stock change log in one transaction.
type GormStockService struct {
	db *gorm.DB
}

// NewGormStockService creates a new GormStockService
func NewGormStockService(db *gorm.DB) *GormStockService {
	return &GormStockService{db: db}
}

// ApplyStockChange adjusts sku stock by quantity and records the change
func (s *GormStockService) ApplyStockChange(ctx context.Context, skuID uuid.UUID, quantity int64, kind order.StockChangeKind, note string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.SkuModel{}).
			Where("id = ?", skuID).
			Updates(map[string]any{
				"stock":      gorm.Expr("stock + ?", quantity),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		return tx.Create(&models.StockChangeLogModel{
			ID:        uuid.New(),
			SkuID:     skuID,
			Quantity:  quantity,
			Kind:      kind,
			Note:      note,
			CreatedAt: time.Now(),
		}).Error
	})
}

// Ensure GormStockService implements order.StockService
var _ order.StockService = (*GormStockService)(nil)
