package models

import (
	"time"

	id "bridgeid/pkg/domain"
)

// EventKind names a protocol event.
type EventKind string

const (
	EventVerificationRequested   EventKind = "CrossChainVerificationRequested"
	EventVerificationReceived    EventKind = "CrossChainVerificationReceived"
	EventResponderAddressUpdated EventKind = "ResponderAddressUpdated"
	EventCorrelationTagUpdated   EventKind = "CorrelationTagUpdated"
	EventFeeAmountUpdated        EventKind = "FeeAmountUpdated"
	EventMockModeUpdated         EventKind = "MockModeUpdated"
	EventOwnershipTransferred    EventKind = "OwnershipTransferred"
)

// Event is the envelope published after a state transition commits.
// Fields not relevant to a kind are left empty.
type Event struct {
	Kind             EventKind         `json:"kind"`
	CorrelationID    *id.CorrelationID `json:"correlation_id,omitempty"`
	SubjectID        *id.SubjectID     `json:"subject_id,omitempty"`
	Caller           string            `json:"caller,omitempty"`
	DID              string            `json:"did,omitempty"`
	DestinationChain string            `json:"destination_chain,omitempty"`
	ResultCode       *ResultCode       `json:"result_code,omitempty"`
	Previous         string            `json:"previous,omitempty"`
	Current          string            `json:"current,omitempty"`
	OccurredAt       time.Time         `json:"occurred_at"`
}

// VerificationRequested builds the event emitted when a request is accepted.
func VerificationRequested(req *Request) Event {
	cid, sid := req.CorrelationID, req.SubjectID
	return Event{
		Kind:             EventVerificationRequested,
		CorrelationID:    &cid,
		SubjectID:        &sid,
		Caller:           req.Requester.Hex(),
		DID:              req.DID,
		DestinationChain: req.DestinationChain,
		OccurredAt:       req.CreatedAt,
	}
}

// VerificationReceived builds the event emitted when a request is fulfilled.
func VerificationReceived(req *Request) Event {
	cid, sid, result := req.CorrelationID, req.SubjectID, req.Result
	ev := Event{
		Kind:          EventVerificationReceived,
		CorrelationID: &cid,
		SubjectID:     &sid,
		Caller:        req.FulfilledBy.Hex(),
		ResultCode:    &result,
	}
	if req.FulfilledAt != nil {
		ev.OccurredAt = *req.FulfilledAt
	}
	return ev
}

// ConfigChanged builds a configuration or ownership event.
func ConfigChanged(kind EventKind, caller, previous, current string, at time.Time) Event {
	return Event{
		Kind:       kind,
		Caller:     caller,
		Previous:   previous,
		Current:    current,
		OccurredAt: at,
	}
}
