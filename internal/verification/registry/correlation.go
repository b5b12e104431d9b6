package registry

import (
	"encoding/binary"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	id "bridgeid/pkg/domain"
)

// DeriveCorrelationID hashes the instance address, a monotonic nonce and the
// creation time into a correlation ID. Distinct nonces give distinct preimages,
// so IDs never repeat within one instance; the instance address separates
// deployments sharing a responder.
func DeriveCorrelationID(instance common.Address, nonce uint64, at time.Time) id.CorrelationID {
	var buf [common.AddressLength + 16]byte
	copy(buf[:common.AddressLength], instance.Bytes())
	binary.BigEndian.PutUint64(buf[common.AddressLength:], nonce)
	binary.BigEndian.PutUint64(buf[common.AddressLength+8:], uint64(at.UnixNano()))
	return id.CorrelationID(crypto.Keccak256Hash(buf[:]))
}
