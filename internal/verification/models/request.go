package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	id "bridgeid/pkg/domain"
	dErrors "bridgeid/pkg/domain-errors"
)

// Request is one outstanding or completed verification request.
// Once fulfilled it is kept for audit and never changes again.
type Request struct {
	CorrelationID    id.CorrelationID
	SubjectID        id.SubjectID
	DID              string
	DestinationChain string
	Requester        common.Address
	// CorrelationTag and Fee are copied from the responder configuration at creation,
	// so later configuration changes do not affect this request.
	CorrelationTag []byte
	Fee            *big.Int
	// Dispatched marks a live-mode request handed to the responder. Requests whose
	// dispatch failed are withdrawn, so a stored true means the hand-off succeeded.
	Dispatched     bool
	Status         RequestStatus
	Result         ResultCode
	FulfilledBy    common.Address
	CreatedAt      time.Time
	FulfilledAt    *time.Time
}

// Draft holds the caller-supplied fields of a new request.
type Draft struct {
	SubjectID        id.SubjectID
	DID              string
	DestinationChain string
	Requester        common.Address
}

func NewRequest(correlationID id.CorrelationID, draft Draft, cfg ResponderConfig, now time.Time) (*Request, error) {
	if correlationID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "correlation ID cannot be empty")
	}
	if draft.DID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "DID cannot be empty")
	}
	if draft.DestinationChain == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "destination chain cannot be empty")
	}
	return &Request{
		CorrelationID:    correlationID,
		SubjectID:        draft.SubjectID,
		DID:              draft.DID,
		DestinationChain: draft.DestinationChain,
		Requester:        draft.Requester,
		CorrelationTag:   append([]byte(nil), cfg.CorrelationTag...),
		Fee:              new(big.Int).Set(feeOrZero(cfg.FeeAmount)),
		Status:           RequestStatusPending,
		CreatedAt:        now,
	}, nil
}

func (r *Request) IsPending() bool {
	return r.Status == RequestStatusPending
}

// Fulfill moves a pending request to fulfilled. It fails with CodeAlreadyFulfilled
// for any request that has left the pending state.
func (r *Request) Fulfill(result ResultCode, by common.Address, now time.Time) error {
	if !r.IsPending() {
		return dErrors.New(dErrors.CodeAlreadyFulfilled, "verification request already fulfilled")
	}
	r.Status = RequestStatusFulfilled
	r.Result = result
	r.FulfilledBy = by
	r.FulfilledAt = &now
	return nil
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	c := *r
	c.CorrelationTag = append([]byte(nil), r.CorrelationTag...)
	c.Fee = new(big.Int).Set(feeOrZero(r.Fee))
	if r.FulfilledAt != nil {
		at := *r.FulfilledAt
		c.FulfilledAt = &at
	}
	return &c
}

func feeOrZero(f *big.Int) *big.Int {
	if f == nil {
		return new(big.Int)
	}
	return f
}
