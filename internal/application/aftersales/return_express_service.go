package aftersales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/domain/shared"
)

// submissionGuardTTL bounds how long a submission key stays held when a
// request crashes between acquire and release
const submissionGuardTTL = 30 * time.Second

// SubmissionGuard serializes concurrent submissions against the same
// aftersales request so exactly one wins
type SubmissionGuard interface {
	// Acquire claims the key for ttl; false means another submission holds it
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees the key before its ttl expires
	Release(ctx context.Context, key string) error
}

// ReturnExpressService handles the customer-facing return shipment flow
type ReturnExpressService struct {
	repo           aftersales.Repository
	expressRepo    aftersales.ExpressCompanyRepository
	addressRepo    aftersales.ReturnAddressRepository
	guard          SubmissionGuard
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewReturnExpressService creates a new ReturnExpressService
func NewReturnExpressService(
	repo aftersales.Repository,
	expressRepo aftersales.ExpressCompanyRepository,
	addressRepo aftersales.ReturnAddressRepository,
	guard SubmissionGuard,
	logger *zap.Logger,
) *ReturnExpressService {
	return &ReturnExpressService{
		repo:        repo,
		expressRepo: expressRepo,
		addressRepo: addressRepo,
		guard:       guard,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ReturnExpressService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SubmitReturnExpress records the customer's return shipment. The guard
// closes the race between two concurrent submissions; the aggregate and
// the optimistic lock enforce the one-submission invariant.
func (s *ReturnExpressService) SubmitReturnExpress(ctx context.Context, userID, aftersalesID uuid.UUID, req SubmitReturnExpressRequest) (*AftersalesResponse, error) {
	key := fmt.Sprintf("aftersales:return-express:%s", aftersalesID)
	acquired, err := s.guard.Acquire(ctx, key, submissionGuardTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			"Another return shipment submission is in progress")
	}
	defer func() {
		if err := s.guard.Release(ctx, key); err != nil {
			s.logger.Warn("failed to release submission guard",
				zap.String("key", key), zap.Error(err))
		}
	}()

	ar, err := s.repo.FindByID(ctx, aftersalesID)
	if err != nil {
		return nil, err
	}
	if !ar.IsOwnedBy(userID) {
		return nil, shared.ErrForbidden
	}

	company, err := s.expressRepo.FindByCode(ctx, req.CarrierCode)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CARRIER", "Unknown express company: "+req.CarrierCode)
	}
	if !company.Active {
		return nil, shared.NewDomainError("INVALID_CARRIER", "Express company is not available: "+req.CarrierCode)
	}

	expectedVersion := ar.GetVersion()
	if err := ar.SubmitReturnShipment(company.Code, req.TrackingNumber, req.Remark); err != nil {
		return nil, err
	}
	if err := s.repo.SaveWithLock(ctx, ar, expectedVersion); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		for _, event := range ar.GetDomainEvents() {
			if err := s.eventPublisher.Publish(ctx, event); err != nil {
				s.logger.Error("failed to publish domain event",
					zap.String("event_type", event.EventType()),
					zap.Error(err),
				)
			}
		}
		ar.ClearDomainEvents()
	}

	response := ToAftersalesResponse(ar)
	if response.ReturnOrder != nil {
		response.ReturnOrder.TrackingURL = company.TrackingURL(req.TrackingNumber)
	}
	return &response, nil
}

// ListExpressCompanies returns the carriers customers may ship with
func (s *ReturnExpressService) ListExpressCompanies(ctx context.Context) ([]ExpressCompanyResponse, error) {
	companies, err := s.expressRepo.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	return ToExpressCompanyResponses(companies), nil
}

// GetReturnAddress returns the merchant address goods are shipped back to
func (s *ReturnExpressService) GetReturnAddress(ctx context.Context) (*ReturnAddressResponse, error) {
	address, err := s.addressRepo.FindDefault(ctx)
	if err != nil {
		return nil, err
	}
	response := ToReturnAddressResponse(address)
	return &response, nil
}
