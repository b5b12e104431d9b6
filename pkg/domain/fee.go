package domain

import (
	"math/big"
	"strings"

	dErrors "bridgeid/pkg/domain-errors"
)

// ParseFee parses a non-negative decimal amount in the payment asset's smallest unit.
func ParseFee(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "fee amount cannot be empty")
	}
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "fee amount must be a decimal integer")
	}
	if amount.Sign() < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "fee amount cannot be negative")
	}
	return amount, nil
}
