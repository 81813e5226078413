package aftersales

import (
	"time"

	"github.com/google/uuid"
)

// AftersalesLog is one append-only audit entry. Entries are written by
// every transition-causing operation and are never edited afterwards.
type AftersalesLog struct {
	ID            uuid.UUID
	AftersalesID  uuid.UUID
	Action        AftersalesAction
	OperatorType  OperatorType
	OperatorName  string
	Content       string
	PreviousState AftersalesState
	CurrentState  AftersalesState
	CreatedAt     time.Time
}

// NewAftersalesLog creates an audit entry snapshotting the transition
func NewAftersalesLog(aftersalesID uuid.UUID, action AftersalesAction, opType OperatorType, operator, content string, previous, current AftersalesState) AftersalesLog {
	return AftersalesLog{
		ID:            uuid.New(),
		AftersalesID:  aftersalesID,
		Action:        action,
		OperatorType:  opType,
		OperatorName:  operator,
		Content:       content,
		PreviousState: previous,
		CurrentState:  current,
		CreatedAt:     time.Now(),
	}
}
