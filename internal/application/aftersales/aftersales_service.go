package aftersales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/domain/order"
	"github.com/tourze/aftersales/internal/domain/shared"
	"github.com/tourze/aftersales/internal/infrastructure/telemetry"
)

// timeoutStates are the states swept by the timeout job: the request is
// waiting on a party whose deadline can elapse
var timeoutStates = []aftersales.AftersalesState{
	aftersales.StatePendingApproval,
	aftersales.StatePendingModification,
	aftersales.StatePendingReturn,
}

// AftersalesService handles the after-sales request lifecycle
type AftersalesService struct {
	repo           aftersales.Repository
	logRepo        aftersales.LogRepository
	orderRepo      order.Repository
	expressRepo    aftersales.ExpressCompanyRepository
	calculator      *aftersales.RefundCalculator
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
	timeoutDays     int
}

// NewAftersalesService creates a new AftersalesService
func NewAftersalesService(
	repo aftersales.Repository,
	logRepo aftersales.LogRepository,
	orderRepo order.Repository,
	expressRepo aftersales.ExpressCompanyRepository,
	calculator *aftersales.RefundCalculator,
	logger *zap.Logger,
	timeoutDays int,
) *AftersalesService {
	return &AftersalesService{
		repo:        repo,
		logRepo:     logRepo,
		orderRepo:   orderRepo,
		expressRepo: expressRepo,
		calculator:  calculator,
		logger:      logger,
		timeoutDays: timeoutDays,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *AftersalesService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *AftersalesService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Apply creates a new after-sales request for one order line. Reasons the
// policy table marks auto-approvable skip review and enter processing
// immediately.
func (s *AftersalesService) Apply(ctx context.Context, userID uuid.UUID, req ApplyAftersalesRequest) (*AftersalesResponse, error) {
	o, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, shared.ErrForbidden
	}

	item := o.GetItem(req.OrderItemID)
	if item == nil {
		return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found on order")
	}

	// one in-flight request per order line
	active, err := s.repo.FindActiveByOrderItem(ctx, req.OrderItemID)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			"An aftersales request is already in progress for this item")
	}

	refunded, err := s.repo.SumRefundedByOrderItem(ctx, req.OrderItemID)
	if err != nil {
		return nil, err
	}

	quote := s.calculator.Quote(o, []aftersales.RefundItemInput{
		{OrderItemID: req.OrderItemID, Quantity: req.Quantity},
	}, map[uuid.UUID]aftersales.RefundedTally{req.OrderItemID: refunded}, time.Now())
	if !quote.CanRefund {
		reason := quote.Reason
		if reason == "" && len(quote.Items) > 0 {
			reason = quote.Items[0].Error
		}
		return nil, shared.NewDomainError("REFUND_NOT_ALLOWED", reason)
	}

	requestedAmount := req.RequestedRefundAmount
	if requestedAmount.IsZero() {
		requestedAmount = quote.TotalAmount
	}
	if requestedAmount.GreaterThan(quote.TotalAmount) {
		return nil, shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Requested amount %s exceeds refundable %s", requestedAmount, quote.TotalAmount))
	}

	number, err := s.repo.NextNumber(ctx)
	if err != nil {
		return nil, err
	}

	ar, err := aftersales.NewAftersalesRequest(number, aftersales.NewAftersalesParams{
		OrderID:               o.ID,
		OrderNumber:           o.OrderNumber,
		UserID:                userID,
		Type:                  req.Type,
		Reason:                req.Reason,
		OrderItemID:           item.ID,
		ProductID:             item.ProductID,
		SkuID:                 item.SkuID,
		ProductName:           item.ProductName,
		SkuName:               item.SkuName,
		Quantity:              req.Quantity,
		OriginalPrice:         item.OriginalPrice,
		PaidPrice:             item.PaidAmount,
		RequestedRefundAmount: requestedAmount,
		Description:           req.Description,
		ProofImages:           req.ProofImages,
	})
	if err != nil {
		return nil, err
	}

	if aftersales.SupportsAutoApproval(req.Reason) {
		if err := ar.AutoApprove(); err != nil {
			return nil, err
		}
		if err := ar.StartProcessing(); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, ar); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, ar)

	if s.businessMetrics != nil {
		s.businessMetrics.RecordRequestCreated(ctx, string(req.Type), string(req.Reason))
	}

	response := ToAftersalesResponse(ar)
	return &response, nil
}

// GetDetail retrieves a request with its audit trail. A non-nil requester
// restricts access to the owner; admins pass nil.
func (s *AftersalesService) GetDetail(ctx context.Context, requesterID *uuid.UUID, id uuid.UUID) (*AftersalesResponse, error) {
	ar, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requesterID != nil && !ar.IsOwnedBy(*requesterID) {
		return nil, shared.ErrForbidden
	}

	response := ToAftersalesResponse(ar)

	logs, err := s.logRepo.FindByAftersalesID(ctx, id)
	if err != nil {
		return nil, err
	}
	response.Logs = ToAftersalesLogResponses(logs)

	if response.ReturnOrder != nil && response.ReturnOrder.TrackingNumber != "" {
		if company, err := s.expressRepo.FindByCode(ctx, response.ReturnOrder.CarrierCode); err == nil {
			response.ReturnOrder.TrackingURL = company.TrackingURL(response.ReturnOrder.TrackingNumber)
		}
	}

	return &response, nil
}

// List retrieves after-sales requests with filtering and pagination
func (s *AftersalesService) List(ctx context.Context, filter AftersalesListFilter) ([]AftersalesListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := aftersales.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		UserID:  filter.UserID,
		OrderID: filter.OrderID,
		State:   filter.State,
		Stage:   filter.Stage,
		Type:    filter.Type,
	}

	requests, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToAftersalesListItemResponses(requests), total, nil
}

// Approve approves a pending request and routes it into processing in one
// unit of work
func (s *AftersalesService) Approve(ctx context.Context, id uuid.UUID, operator string, req ApproveAftersalesRequest) (*AftersalesResponse, error) {
	return s.mutate(ctx, id, func(ar *aftersales.AftersalesRequest) error {
		if err := ar.Approve(operator, req.Note); err != nil {
			return err
		}
		return ar.StartProcessing()
	})
}

// Reject rejects a pending request
func (s *AftersalesService) Reject(ctx context.Context, id uuid.UUID, operator string, req RejectAftersalesRequest) (*AftersalesResponse, error) {
	return s.mutate(ctx, id, func(ar *aftersales.AftersalesRequest) error {
		return ar.Reject(operator, req.Reason)
	})
}

// RequestModification sends the request back to the customer for changes
func (s *AftersalesService) RequestModification(ctx context.Context, id uuid.UUID, operator string, req RequestModificationRequest) (*AftersalesResponse, error) {
	return s.mutate(ctx, id, func(ar *aftersales.AftersalesRequest) error {
		return ar.RequestModification(operator, req.Note)
	})
}

// Resubmit re-enters the approval queue with the customer's revised data
func (s *AftersalesService) Resubmit(ctx context.Context, userID, id uuid.UUID, req ResubmitAftersalesRequest) (*AftersalesResponse, error) {
	return s.mutate(ctx, id, func(ar *aftersales.AftersalesRequest) error {
		if !ar.IsOwnedBy(userID) {
			return shared.ErrForbidden
		}
		return ar.Resubmit(aftersales.ResubmitParams{
			Reason:                req.Reason,
			RequestedRefundAmount: req.RequestedRefundAmount,
			Description:           req.Description,
			ProofImages:           req.ProofImages,
		})
	})
}

// Cancel cancels a request on behalf of its owner
func (s *AftersalesService) Cancel(ctx context.Context, userID, id uuid.UUID, req CancelAftersalesRequest) (*AftersalesResponse, error) {
	return s.mutate(ctx, id, func(ar *aftersales.AftersalesRequest) error {
		if !ar.IsOwnedBy(userID) {
			return shared.ErrForbidden
		}
		return ar.Cancel(false, "", req.Reason)
	})
}

// AdminCancel cancels a request with operator attribution
func (s *AftersalesService) AdminCancel(ctx context.Context, id uuid.UUID, operator string, req CancelAftersalesRequest) (*AftersalesResponse, error) {
	return s.mutate(ctx, id, func(ar *aftersales.AftersalesRequest) error {
		return ar.Cancel(true, operator, req.Reason)
	})
}

// ConfirmReceipt records warehouse receipt of returned goods together with
// the inspection outcome
func (s *AftersalesService) ConfirmReceipt(ctx context.Context, id uuid.UUID, operator string, req ConfirmReceiptRequest) (*AftersalesResponse, error) {
	return s.mutate(ctx, id, func(ar *aftersales.AftersalesRequest) error {
		return ar.ConfirmReceipt(operator, req.InspectionPassed, req.Note)
	})
}

// RefundCallback applies the payment-gateway outcome to a pending refund
func (s *AftersalesService) RefundCallback(ctx context.Context, id uuid.UUID, req RefundCallbackRequest) (*AftersalesResponse, error) {
	resp, err := s.mutate(ctx, id, func(ar *aftersales.AftersalesRequest) error {
		return ar.ResolveRefund(req.Success, req.ActualAmount, req.Detail)
	})
	if err == nil && s.businessMetrics != nil {
		outcome := telemetry.RefundOutcomeFailed
		if req.Success {
			outcome = telemetry.RefundOutcomeSuccess
		}
		s.businessMetrics.RecordRefundResolved(ctx, outcome, req.ActualAmount)
	}
	return resp, err
}

// ConfirmExchangeShipment completes the request once the replacement goods
// are shipped
func (s *AftersalesService) ConfirmExchangeShipment(ctx context.Context, id uuid.UUID, operator string, req ConfirmExchangeShipmentRequest) (*AftersalesResponse, error) {
	return s.mutate(ctx, id, func(ar *aftersales.AftersalesRequest) error {
		return ar.ConfirmExchangeShipment(operator, req.TrackingInfo)
	})
}

// CSResolve resolves an escalated case as completed or cancelled
func (s *AftersalesService) CSResolve(ctx context.Context, id uuid.UUID, operator string, req CSResolveRequest) (*AftersalesResponse, error) {
	return s.mutate(ctx, id, func(ar *aftersales.AftersalesRequest) error {
		if req.Complete {
			return ar.ForceComplete(operator, req.Note)
		}
		return ar.ForceCancel(operator, req.Note)
	})
}

// SweepTimeouts closes requests whose action deadline elapsed. Returns the
// number of requests closed; individual failures are logged and skipped.
func (s *AftersalesService) SweepTimeouts(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	cutoff := time.Now().AddDate(0, 0, -s.timeoutDays)

	stale, err := s.repo.FindTimedOut(ctx, timeoutStates, cutoff, limit)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, ar := range stale {
		expectedVersion := ar.GetVersion()
		if err := ar.MarkTimeout(); err != nil {
			s.logger.Warn("timeout transition rejected",
				zap.String("aftersales_id", ar.ID.String()),
				zap.String("state", ar.State.String()),
				zap.Error(err),
			)
			continue
		}
		if err := s.repo.SaveWithLock(ctx, ar, expectedVersion); err != nil {
			s.logger.Warn("timeout save failed",
				zap.String("aftersales_id", ar.ID.String()),
				zap.Error(err),
			)
			continue
		}
		s.publishEvents(ctx, ar)
		closed++
	}
	if closed > 0 && s.businessMetrics != nil {
		s.businessMetrics.RecordTimeoutClosed(ctx, int64(closed))
	}
	return closed, nil
}

// mutate loads the aggregate, applies op, saves under the optimistic lock
// and publishes the resulting events
func (s *AftersalesService) mutate(ctx context.Context, id uuid.UUID, op func(*aftersales.AftersalesRequest) error) (*AftersalesResponse, error) {
	ar, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	expectedVersion := ar.GetVersion()
	if err := op(ar); err != nil {
		return nil, err
	}

	if err := s.repo.SaveWithLock(ctx, ar, expectedVersion); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, ar)

	response := ToAftersalesResponse(ar)
	return &response, nil
}

func (s *AftersalesService) publishEvents(ctx context.Context, ar *aftersales.AftersalesRequest) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range ar.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			// side effects must not fail the primary operation
			s.logger.Error("failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.String("aggregate_id", event.AggregateID().String()),
				zap.Error(err),
			)
		}
	}
	ar.ClearDomainEvents()
}
