package models

import (
	"strconv"

	dErrors "bridgeid/pkg/domain-errors"
)

// RequestStatus is the lifecycle state of a verification request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusFulfilled RequestStatus = "fulfilled"
)

func (s RequestStatus) IsValid() bool {
	return s == RequestStatusPending || s == RequestStatusFulfilled
}

// ResultCode is the responder's verdict for a request.
type ResultCode uint8

const (
	ResultUnverified ResultCode = 0
	ResultVerified   ResultCode = 1
)

// ParseResultCode accepts only the enumerated verdicts.
func ParseResultCode(v int64) (ResultCode, error) {
	switch v {
	case int64(ResultUnverified):
		return ResultUnverified, nil
	case int64(ResultVerified):
		return ResultVerified, nil
	default:
		return 0, dErrors.New(dErrors.CodeInvalidResultCode,
			"result code must be 0 (unverified) or 1 (verified), got "+strconv.FormatInt(v, 10))
	}
}

func (r ResultCode) Verified() bool { return r == ResultVerified }

func (r ResultCode) String() string {
	if r == ResultVerified {
		return "verified"
	}
	return "unverified"
}

// SubjectState is the tri-state view of a subject's verification outcome.
type SubjectState string

const (
	SubjectStateUnknown  SubjectState = "unknown"
	SubjectStateVerified SubjectState = "verified"
	SubjectStateRejected SubjectState = "rejected"
)

// StateFor maps a fulfilled result onto the subject state it produces.
func StateFor(result ResultCode) SubjectState {
	if result.Verified() {
		return SubjectStateVerified
	}
	return SubjectStateRejected
}
