package handler

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"bridgeid/internal/verification/service"
	id "bridgeid/pkg/domain"
	dErrors "bridgeid/pkg/domain-errors"
	"bridgeid/pkg/validation"
)

// VerificationRequest asks for a DID to be verified for a subject.
type VerificationRequest struct {
	SubjectID        *uint64 `json:"subject_id" validate:"required"`
	DID              string  `json:"did" validate:"required,max=512,did"`
	DestinationChain string  `json:"destination_chain" validate:"required,notblank,max=64"`
}

func (r *VerificationRequest) Normalize() {
	if r == nil {
		return
	}
	r.DID = strings.TrimSpace(r.DID)
	r.DestinationChain = strings.TrimSpace(r.DestinationChain)
}

func (r *VerificationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *VerificationRequest) ToCommand() service.VerificationCommand {
	return service.VerificationCommand{
		SubjectID:        id.SubjectID(*r.SubjectID),
		DID:              r.DID,
		DestinationChain: r.DestinationChain,
	}
}

// FulfillRequest carries the responder's verdict. The range of ResultCode is
// checked by the service so out-of-range values report invalid_result_code.
type FulfillRequest struct {
	ResultCode *int64 `json:"result_code"`
}

func (r *FulfillRequest) Validate() error {
	if r == nil || r.ResultCode == nil {
		return dErrors.New(dErrors.CodeInvalidResultCode, "result_code is required")
	}
	return nil
}

type ResponderRequest struct {
	Address string `json:"address" validate:"required,eth_addr"`
}

func (r *ResponderRequest) Normalize() {
	if r != nil {
		r.Address = strings.TrimSpace(r.Address)
	}
}

func (r *ResponderRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *ResponderRequest) ToAddress() (common.Address, error) {
	return id.ParseAddress(r.Address)
}

// CorrelationTagRequest carries the tag as 0x-prefixed hex.
type CorrelationTagRequest struct {
	Tag string `json:"tag" validate:"required"`
}

func (r *CorrelationTagRequest) Normalize() {
	if r != nil {
		r.Tag = strings.TrimSpace(r.Tag)
	}
}

func (r *CorrelationTagRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *CorrelationTagRequest) ToBytes() ([]byte, error) {
	tag, err := hexutil.Decode(r.Tag)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "tag must be 0x-prefixed hex")
	}
	return tag, nil
}

// FeeRequest carries the amount as a decimal string to avoid float rounding.
type FeeRequest struct {
	Amount string `json:"amount" validate:"required,numeric"`
}

func (r *FeeRequest) Normalize() {
	if r != nil {
		r.Amount = strings.TrimSpace(r.Amount)
	}
}

func (r *FeeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *FeeRequest) ToAmount() (*big.Int, error) {
	return id.ParseFee(r.Amount)
}

type MockModeRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (r *MockModeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type OwnershipRequest struct {
	NewOwner string `json:"new_owner" validate:"required,eth_addr"`
}

func (r *OwnershipRequest) Normalize() {
	if r != nil {
		r.NewOwner = strings.TrimSpace(r.NewOwner)
	}
}

func (r *OwnershipRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}
