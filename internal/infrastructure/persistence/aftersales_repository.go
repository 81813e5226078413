package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/domain/shared"
	"github.com/tourze/aftersales/internal/infrastructure/persistence/models"
)

var terminalStates = []aftersales.AftersalesState{
	aftersales.StateRejected,
	aftersales.StateCompleted,
	aftersales.StateCancelled,
	aftersales.StateTimeout,
}

// GormAftersalesRepository implements aftersales.Repository using GORM
type GormAftersalesRepository struct {
	db *gorm.DB
}

// NewGormAftersalesRepository creates a new GormAftersalesRepository
func NewGormAftersalesRepository(db *gorm.DB) *GormAftersalesRepository {
	return &GormAftersalesRepository{db: db}
}

// FindByID finds an after-sales request by its ID
func (r *GormAftersalesRepository) FindByID(ctx context.Context, id uuid.UUID) (*aftersales.AftersalesRequest, error) {
	var model models.AftersalesRequestModel
	if err := r.db.WithContext(ctx).
		Preload("ReturnOrder").
		Preload("RefundOrder").
		Preload("ExchangeOrder").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an after-sales request by its business number
func (r *GormAftersalesRepository) FindByNumber(ctx context.Context, number string) (*aftersales.AftersalesRequest, error) {
	var model models.AftersalesRequestModel
	if err := r.db.WithContext(ctx).
		Preload("ReturnOrder").
		Preload("RefundOrder").
		Preload("ExchangeOrder").
		Where("aftersales_number = ?", number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds after-sales requests matching the filter
func (r *GormAftersalesRepository) FindAll(ctx context.Context, filter aftersales.Filter) ([]*aftersales.AftersalesRequest, error) {
	var rows []models.AftersalesRequestModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.AftersalesRequestModel{}),
		filter,
	)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	requests := make([]*aftersales.AftersalesRequest, len(rows))
	for i := range rows {
		requests[i] = rows[i].ToDomain()
	}
	return requests, nil
}

// Count counts after-sales requests matching the filter
func (r *GormAftersalesRepository) Count(ctx context.Context, filter aftersales.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.AftersalesRequestModel{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindActiveByOrderItem returns non-terminal requests against an order line
func (r *GormAftersalesRepository) FindActiveByOrderItem(ctx context.Context, orderItemID uuid.UUID) ([]*aftersales.AftersalesRequest, error) {
	var rows []models.AftersalesRequestModel
	if err := r.db.WithContext(ctx).
		Where("order_item_id = ? AND state NOT IN ?", orderItemID, terminalStates).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	requests := make([]*aftersales.AftersalesRequest, len(rows))
	for i := range rows {
		requests[i] = rows[i].ToDomain()
	}
	return requests, nil
}

// FindTimedOut returns requests sitting in the given states whose last update
// precedes the cutoff
func (r *GormAftersalesRepository) FindTimedOut(ctx context.Context, states []aftersales.AftersalesState, before time.Time, limit int) ([]*aftersales.AftersalesRequest, error) {
	var rows []models.AftersalesRequestModel
	if err := r.db.WithContext(ctx).
		Where("state IN ? AND updated_at < ?", states, before).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	requests := make([]*aftersales.AftersalesRequest, len(rows))
	for i := range rows {
		requests[i] = rows[i].ToDomain()
	}
	return requests, nil
}

// SumRefundedByOrderItem tallies refunded units and money of completed requests against an order line
func (r *GormAftersalesRepository) SumRefundedByOrderItem(ctx context.Context, orderItemID uuid.UUID) (aftersales.RefundedTally, error) {
	var result struct {
		Quantity int64
		Amount   decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.AftersalesRequestModel{}).
		Select("COALESCE(SUM(quantity), 0) AS quantity, COALESCE(SUM(actual_refund_amount), 0) AS amount").
		Where("order_item_id = ? AND state = ?", orderItemID, aftersales.StateCompleted).
		Scan(&result).Error; err != nil {
		return aftersales.RefundedTally{}, err
	}
	return aftersales.RefundedTally{Quantity: result.Quantity, Amount: result.Amount}, nil
}

// CountUnfinishedByOrder counts order lines without a completed request
func (r *GormAftersalesRepository) CountUnfinishedByOrder(ctx context.Context, orderID uuid.UUID, itemIDs []uuid.UUID) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}

	var finished int64
	if err := r.db.WithContext(ctx).
		Model(&models.AftersalesRequestModel{}).
		Where("order_id = ? AND order_item_id IN ? AND state = ?", orderID, itemIDs, aftersales.StateCompleted).
		Distinct("order_item_id").
		Count(&finished).Error; err != nil {
		return 0, err
	}
	return int64(len(itemIDs)) - finished, nil
}

// Save persists the request with its child orders and pending audit logs in one transaction
func (r *GormAftersalesRepository) Save(ctx context.Context, request *aftersales.AftersalesRequest) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveRequestTree(tx, request)
	})
	if err != nil {
		return err
	}
	request.ClearPendingLogs()
	return nil
}

// SaveWithLock saves only when the stored version matches expectedVersion.
// The stored version is bumped on success and reflected back onto the aggregate.
func (r *GormAftersalesRepository) SaveWithLock(ctx context.Context, request *aftersales.AftersalesRequest, expectedVersion int) error {
	newVersion := expectedVersion + 1
	now := time.Now()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.AftersalesRequestModelFromDomain(request)
		model.Version = newVersion
		model.UpdatedAt = now

		result := tx.Model(&models.AftersalesRequestModel{}).
			Where("id = ? AND version = ?", request.GetID(), expectedVersion).
			Updates(map[string]any{
				"type":                    model.Type,
				"reason":                  model.Reason,
				"state":                   model.State,
				"stage":                   model.Stage,
				"requested_refund_amount": model.RequestedRefundAmount,
				"original_refund_amount":  model.OriginalRefundAmount,
				"actual_refund_amount":    model.ActualRefundAmount,
				"description":             model.Description,
				"proof_images":            model.ProofImages,
				"version":                 newVersion,
				"updated_at":              now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.AftersalesRequestModel{}).
				Where("id = ?", request.GetID()).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}

		if err := saveChildren(tx, model); err != nil {
			return err
		}
		return savePendingLogs(tx, request)
	})
	if err != nil {
		return err
	}

	request.Version = newVersion
	request.UpdatedAt = now
	request.ClearPendingLogs()
	return nil
}

// NextNumber issues a new unique after-sales number.
// Format: AS-YYYYMMDD-NNNNNN (e.g., AS-20260830-000001)
func (r *GormAftersalesRepository) NextNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("AS-%s-", time.Now().Format("20060102"))

	var last models.AftersalesRequestModel
	err := r.db.WithContext(ctx).
		Model(&models.AftersalesRequestModel{}).
		Where("aftersales_number LIKE ?", prefix+"%").
		Order("aftersales_number DESC").
		First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.AftersalesNumber != "" {
		parts := strings.Split(last.AftersalesNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%06d", prefix, nextNum), nil
}

func saveRequestTree(tx *gorm.DB, request *aftersales.AftersalesRequest) error {
	model := models.AftersalesRequestModelFromDomain(request)

	if err := tx.Omit("ReturnOrder", "RefundOrder", "ExchangeOrder").Save(model).Error; err != nil {
		return err
	}
	if err := saveChildren(tx, model); err != nil {
		return err
	}
	return savePendingLogs(tx, request)
}

func saveChildren(tx *gorm.DB, model *models.AftersalesRequestModel) error {
	if model.ReturnOrder != nil {
		if err := tx.Save(model.ReturnOrder).Error; err != nil {
			return err
		}
	}
	if model.RefundOrder != nil {
		if err := tx.Save(model.RefundOrder).Error; err != nil {
			return err
		}
	}
	if model.ExchangeOrder != nil {
		if err := tx.Save(model.ExchangeOrder).Error; err != nil {
			return err
		}
	}
	return nil
}

func savePendingLogs(tx *gorm.DB, request *aftersales.AftersalesRequest) error {
	for _, log := range request.PendingLogs() {
		if err := tx.Create(models.AftersalesLogModelFromDomain(log)).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormAftersalesRepository) applyFilter(query *gorm.DB, filter aftersales.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, AftersalesSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormAftersalesRepository) applyFilterWithoutPagination(query *gorm.DB, filter aftersales.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("aftersales_number ILIKE ? OR order_number ILIKE ? OR product_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.State != nil {
		query = query.Where("state = ?", *filter.State)
	}
	if filter.Stage != nil {
		query = query.Where("stage = ?", *filter.Stage)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	return query
}

// Ensure GormAftersalesRepository implements aftersales.Repository
var _ aftersales.Repository = (*GormAftersalesRepository)(nil)
