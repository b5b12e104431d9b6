package handler

import (
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"bridgeid/internal/verification/models"
)

type CreatedResponse struct {
	CorrelationID string `json:"correlation_id"`
	Status        string `json:"status"`
	Dispatched    bool   `json:"dispatched"`
}

type RequestResponse struct {
	CorrelationID    string     `json:"correlation_id"`
	SubjectID        string     `json:"subject_id"`
	DID              string     `json:"did"`
	DestinationChain string     `json:"destination_chain"`
	Requester        string     `json:"requester"`
	CorrelationTag   string     `json:"correlation_tag"`
	Fee              string     `json:"fee"`
	Dispatched       bool       `json:"dispatched"`
	Status           string     `json:"status"`
	ResultCode       *uint8     `json:"result_code,omitempty"`
	FulfilledBy      string     `json:"fulfilled_by,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	FulfilledAt      *time.Time `json:"fulfilled_at,omitempty"`
}

type StatusResponse struct {
	SubjectID     string     `json:"subject_id"`
	Verified      bool       `json:"verified"`
	Status        string     `json:"status"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type ConfigResponse struct {
	Owner            string    `json:"owner"`
	ResponderAddress string    `json:"responder_address"`
	CorrelationTag   string    `json:"correlation_tag"`
	FeeAmount        string    `json:"fee_amount"`
	MockModeEnabled  bool      `json:"mock_mode_enabled"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toRequestResponse(req *models.Request) RequestResponse {
	res := RequestResponse{
		CorrelationID:    req.CorrelationID.String(),
		SubjectID:        req.SubjectID.String(),
		DID:              req.DID,
		DestinationChain: req.DestinationChain,
		Requester:        req.Requester.Hex(),
		CorrelationTag:   hexutil.Encode(req.CorrelationTag),
		Fee:              req.Fee.String(),
		Dispatched:       req.Dispatched,
		Status:           string(req.Status),
		CreatedAt:        req.CreatedAt,
		FulfilledAt:      req.FulfilledAt,
	}
	if !req.IsPending() {
		code := uint8(req.Result)
		res.ResultCode = &code
		res.FulfilledBy = req.FulfilledBy.Hex()
	}
	return res
}

func toStatusResponse(status models.SubjectStatus) StatusResponse {
	res := StatusResponse{
		SubjectID: status.SubjectID.String(),
		Verified:  status.Verified(),
		Status:    string(status.State),
	}
	if status.State != models.SubjectStateUnknown {
		res.CorrelationID = status.CorrelationID.String()
		at := status.UpdatedAt
		res.UpdatedAt = &at
	}
	return res
}

func toConfigResponse(s *models.Settings) ConfigResponse {
	return ConfigResponse{
		Owner:            s.Owner.Hex(),
		ResponderAddress: s.Responder.ResponderAddress.Hex(),
		CorrelationTag:   hexutil.Encode(s.Responder.CorrelationTag),
		FeeAmount:        s.Responder.FeeAmount.String(),
		MockModeEnabled:  s.Responder.MockModeEnabled,
		UpdatedAt:        s.UpdatedAt,
	}
}

func toCreatedResponse(req *models.Request) CreatedResponse {
	return CreatedResponse{
		CorrelationID: req.CorrelationID.String(),
		Status:        string(req.Status),
		Dispatched:    req.Dispatched,
	}
}

