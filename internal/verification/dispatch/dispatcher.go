// Package dispatch delivers verification requests to the external responder.
package dispatch

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	id "bridgeid/pkg/domain"
)

// OracleRequest is the payload handed to the responder for one verification.
type OracleRequest struct {
	CorrelationID    id.CorrelationID
	CorrelationTag   []byte
	Fee              *big.Int
	SubjectID        id.SubjectID
	DID              string
	DestinationChain string
	Responder        common.Address
	CallbackURL      string
}

// Dispatcher hands a request to the responder. A nil error means the responder
// accepted the request; it says nothing about the eventual verdict.
type Dispatcher interface {
	Dispatch(ctx context.Context, req OracleRequest) error
}
