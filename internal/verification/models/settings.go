package models

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	dErrors "bridgeid/pkg/domain-errors"
)

// MaxCorrelationTagBytes bounds the tag to one 32-byte word.
const MaxCorrelationTagBytes = 32

// ResponderConfig is the owner-controlled description of how requests reach the responder.
type ResponderConfig struct {
	ResponderAddress common.Address
	CorrelationTag   []byte
	FeeAmount        *big.Int
	MockModeEnabled  bool
}

// Settings is the single persisted configuration record: the owner plus responder configuration.
type Settings struct {
	Owner     common.Address
	Responder ResponderConfig
	UpdatedAt time.Time
}

func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	c := *s
	c.Responder.CorrelationTag = append([]byte(nil), s.Responder.CorrelationTag...)
	c.Responder.FeeAmount = new(big.Int).Set(feeOrZero(s.Responder.FeeAmount))
	return &c
}

// ValidateCorrelationTag enforces the tag's length bounds.
func ValidateCorrelationTag(tag []byte) error {
	if len(tag) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "correlation tag cannot be empty")
	}
	if len(tag) > MaxCorrelationTagBytes {
		return dErrors.New(dErrors.CodeInvalidInput, "correlation tag must be at most 32 bytes")
	}
	return nil
}

// ValidateFee rejects nil and negative amounts.
func ValidateFee(amount *big.Int) error {
	if amount == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "fee amount is required")
	}
	if amount.Sign() < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "fee amount cannot be negative")
	}
	return nil
}
