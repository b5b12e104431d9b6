// Package domain provides the identifiers exchanged with requesters and the responder.
package domain

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	dErrors "bridgeid/pkg/domain-errors"
)

// CorrelationID ties a fulfillment back to the request that caused it.
type CorrelationID common.Hash

// SubjectID identifies the token whose DID is being verified.
type SubjectID uint64

// Parse functions - use at trust boundaries (handlers, API inputs).

// ParseCorrelationID accepts a 0x-prefixed 32-byte hex string.
func ParseCorrelationID(s string) (CorrelationID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CorrelationID{}, dErrors.New(dErrors.CodeInvalidInput, "correlation ID cannot be empty")
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return CorrelationID{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "correlation ID must be 0x-prefixed hex")
	}
	if len(raw) != common.HashLength {
		return CorrelationID{}, dErrors.New(dErrors.CodeInvalidInput, "correlation ID must be 32 bytes")
	}
	return CorrelationID(common.BytesToHash(raw)), nil
}

func ParseSubjectID(s string) (SubjectID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "subject ID cannot be empty")
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "subject ID must be an unsigned integer")
	}
	return SubjectID(v), nil
}

// ParseAddress parses an account address. The zero address is rejected:
// it can never act as a caller, owner or responder.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Address{}, dErrors.New(dErrors.CodeInvalidInput, "address cannot be empty")
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, dErrors.New(dErrors.CodeInvalidInput, "address must be 20 bytes of hex")
	}
	addr := common.HexToAddress(s)
	if addr == (common.Address{}) {
		return common.Address{}, dErrors.New(dErrors.CodeInvalidInput, "zero address is not allowed")
	}
	return addr, nil
}

func (id CorrelationID) String() string { return common.Hash(id).Hex() }
func (id CorrelationID) Bytes() []byte  { return common.Hash(id).Bytes() }
func (id CorrelationID) IsNil() bool    { return common.Hash(id) == common.Hash{} }
func (id SubjectID) String() string     { return strconv.FormatUint(uint64(id), 10) }

// MarshalText keeps JSON and log output in the canonical hex form.
func (id CorrelationID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *CorrelationID) UnmarshalText(text []byte) error {
	parsed, err := ParseCorrelationID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// IsZeroAddress reports whether addr is unset.
func IsZeroAddress(addr common.Address) bool {
	return addr == (common.Address{})
}

