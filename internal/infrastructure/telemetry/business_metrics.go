// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the after-sales service.
// It tracks request creation, refund outcomes, and the open-request backlog.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	requestCreatedTotal *Counter
	refundResolvedTotal *Counter
	refundAmountTotal   *Counter
	timeoutClosedTotal  *Counter

	// Gauge metrics (point-in-time values)
	openRequestCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	backlogProvider BacklogMetricsProvider
}

// BacklogMetricsProvider provides backlog data for periodic metrics collection.
// This interface lets the telemetry layer query request state without depending
// on the after-sales domain directly.
type BacklogMetricsProvider interface {
	// CountOpenRequestsByState returns the number of unfinished requests per state
	CountOpenRequestsByState(ctx context.Context) (map[string]int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	BacklogProvider BacklogMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		backlogProvider: cfg.BacklogProvider,
	}

	var err error

	bm.requestCreatedTotal, err = NewCounter(
		cfg.Meter,
		"aftersales_request_created_total",
		"Total number of after-sales requests created",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}

	bm.refundResolvedTotal, err = NewCounter(
		cfg.Meter,
		"aftersales_refund_resolved_total",
		"Total number of refund callback resolutions",
		"{refunds}",
	)
	if err != nil {
		return nil, err
	}

	bm.refundAmountTotal, err = NewCounter(
		cfg.Meter,
		"aftersales_refund_amount_total",
		"Total refunded amount in cents (fen)",
		"{fen}",
	)
	if err != nil {
		return nil, err
	}

	bm.timeoutClosedTotal, err = NewCounter(
		cfg.Meter,
		"aftersales_timeout_closed_total",
		"Total number of requests auto-closed by the timeout sweep",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}

	bm.openRequestCount, err = NewGauge(
		cfg.Meter,
		"aftersales_open_request_count",
		"Number of unfinished after-sales requests per state",
		"{requests}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Request Metrics
// =============================================================================

// RecordRequestCreated records an after-sales request creation event.
// This should be called from the application layer when a request is created.
func (bm *BusinessMetrics) RecordRequestCreated(ctx context.Context, requestType, reason string) {
	bm.requestCreatedTotal.Inc(ctx,
		AttrAftersalesType.String(requestType),
		AttrRefundReason.String(reason),
	)
}

// RecordTimeoutClosed records how many requests a single sweep closed.
func (bm *BusinessMetrics) RecordTimeoutClosed(ctx context.Context, closed int64) {
	if closed <= 0 {
		return
	}
	bm.timeoutClosedTotal.Add(ctx, closed)
}

// =============================================================================
// Refund Metrics
// =============================================================================

// RefundOutcome represents the outcome of a refund callback for metrics labeling.
type RefundOutcome string

const (
	RefundOutcomeSuccess RefundOutcome = "success"
	RefundOutcomeFailed  RefundOutcome = "failed"
)

// RecordRefundResolved records a refund callback resolution. Amount is only
// added for successful refunds, converted to the smallest currency unit.
func (bm *BusinessMetrics) RecordRefundResolved(ctx context.Context, outcome RefundOutcome, amount decimal.Decimal) {
	bm.refundResolvedTotal.Inc(ctx,
		AttrRefundStatus.String(string(outcome)),
	)
	if outcome == RefundOutcomeSuccess {
		amountFen := amount.Mul(decimal.NewFromInt(100)).IntPart()
		bm.refundAmountTotal.Add(ctx, amountFen)
	}
}

// =============================================================================
// Backlog Metrics
// =============================================================================

// RecordOpenRequests records the number of unfinished requests in one state.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOpenRequests(ctx context.Context, state string, count int64) {
	bm.openRequestCount.Record(ctx, count,
		AttrAftersalesState.String(state),
	)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects backlog metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectBacklogMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectBacklogMetrics(ctx)
		}
	}
}

// collectBacklogMetrics collects the open-request gauge metrics.
func (bm *BusinessMetrics) collectBacklogMetrics(ctx context.Context) {
	if bm.backlogProvider == nil {
		bm.logger.Debug("No backlog provider configured, skipping backlog metrics collection")
		return
	}

	byState, err := bm.backlogProvider.CountOpenRequestsByState(ctx)
	if err != nil {
		bm.logger.Error("Failed to collect open request counts", zap.Error(err))
		return
	}

	for state, count := range byState {
		bm.RecordOpenRequests(ctx, state, count)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// =============================================================================
// Attribute Key Constants
// =============================================================================

// Business metrics attribute keys not already defined in metrics.go
var (
	AttrRequestSource = attribute.Key("request_source")
)
