package aftersales

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tourze/aftersales/internal/domain/shared"
)

// Filter narrows list queries over after-sales requests
type Filter struct {
	shared.Filter
	UserID  *uuid.UUID
	OrderID *uuid.UUID
	State   *AftersalesState
	Stage   *AftersalesStage
	Type    *AftersalesType
}

// Repository persists after-sales requests with their child orders and
// pending logs in one unit of work
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AftersalesRequest, error)
	FindByNumber(ctx context.Context, number string) (*AftersalesRequest, error)
	FindAll(ctx context.Context, filter Filter) ([]*AftersalesRequest, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	// FindActiveByOrderItem returns non-terminal requests against an order line
	FindActiveByOrderItem(ctx context.Context, orderItemID uuid.UUID) ([]*AftersalesRequest, error)
	// FindTimedOut returns requests sitting in the given states whose last
	// update precedes the cutoff
	FindTimedOut(ctx context.Context, states []AftersalesState, before time.Time, limit int) ([]*AftersalesRequest, error)
	// SumRefundedByOrderItem tallies completed requests against an order
	// line: refunded units and refunded money
	SumRefundedByOrderItem(ctx context.Context, orderItemID uuid.UUID) (RefundedTally, error)
	// CountUnfinishedByOrder counts order lines without a completed request
	CountUnfinishedByOrder(ctx context.Context, orderID uuid.UUID, itemIDs []uuid.UUID) (int64, error)
	Save(ctx context.Context, request *AftersalesRequest) error
	// SaveWithLock saves only when the stored version matches expectedVersion,
	// returning shared.ErrConcurrencyConflict otherwise
	SaveWithLock(ctx context.Context, request *AftersalesRequest, expectedVersion int) error
	// NextNumber issues a new unique after-sales number
	NextNumber(ctx context.Context) (string, error)
}

// LogRepository reads the append-only audit trail
type LogRepository interface {
	FindByAftersalesID(ctx context.Context, aftersalesID uuid.UUID) ([]AftersalesLog, error)
}

// ExpressCompanyRepository manages the carrier registry
type ExpressCompanyRepository interface {
	FindByCode(ctx context.Context, code string) (*ExpressCompany, error)
	FindActive(ctx context.Context) ([]ExpressCompany, error)
	Save(ctx context.Context, company *ExpressCompany) error
}

// ReturnAddressRepository manages merchant return addresses
type ReturnAddressRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReturnAddress, error)
	FindDefault(ctx context.Context) (*ReturnAddress, error)
	FindAll(ctx context.Context) ([]ReturnAddress, error)
	Save(ctx context.Context, address *ReturnAddress) error
}
