// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormBacklogMetricsProvider implements BacklogMetricsProvider using GORM.
// It queries the aftersales_requests table directly for aggregated counts.
type GormBacklogMetricsProvider struct {
	db *gorm.DB
}

// NewGormBacklogMetricsProvider creates a new GormBacklogMetricsProvider.
func NewGormBacklogMetricsProvider(db *gorm.DB) *GormBacklogMetricsProvider {
	return &GormBacklogMetricsProvider{db: db}
}

// CountOpenRequestsByState returns the number of unfinished requests per state.
func (p *GormBacklogMetricsProvider) CountOpenRequestsByState(ctx context.Context) (map[string]int64, error) {
	type result struct {
		State string `gorm:"column:state"`
		Count int64  `gorm:"column:count"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("aftersales_requests").
		Select("state, COUNT(*) as count").
		Where("state NOT IN ?", []string{"COMPLETED", "CANCELLED", "REJECTED", "TIMEOUT"}).
		Group("state").
		Find(&results).Error

	if err != nil {
		return nil, err
	}

	m := make(map[string]int64, len(results))
	for _, r := range results {
		m[r.State] = r.Count
	}

	return m, nil
}
