package testutil

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"bridgeid/internal/verification/models"
	id "bridgeid/pkg/domain"
)

// Well-known addresses shared by protocol tests.
var TestAddrs = struct {
	Instance  common.Address
	Owner     common.Address
	Responder common.Address
	Requester common.Address
	Stranger  common.Address
}{
	Instance:  common.HexToAddress("0x1111111111111111111111111111111111111111"),
	Owner:     common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"),
	Responder: common.HexToAddress("0x4B20993Bc481177ec7E8f571ceCaE8A9e22C02db"),
	Requester: common.HexToAddress("0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2"),
	Stranger:  common.HexToAddress("0x78731D3Ca6b7E34aC0F824c42a7cC18A495cabaB"),
}

// ResponderConfig returns a live-mode configuration pointing at TestAddrs.Responder.
func ResponderConfig() models.ResponderConfig {
	return models.ResponderConfig{
		ResponderAddress: TestAddrs.Responder,
		CorrelationTag:   []byte{0xca, 0xfe},
		FeeAmount:        big.NewInt(200_000_000_000_000_000),
	}
}

// RequestBuilder builds pending requests with sensible defaults.
type RequestBuilder struct {
	correlationID id.CorrelationID
	draft         models.Draft
	cfg           models.ResponderConfig
	createdAt     time.Time
}

// NewRequestBuilder starts from subject 1 on polygon, created now.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		correlationID: id.CorrelationID(common.BytesToHash([]byte{0x01})),
		draft: models.Draft{
			SubjectID:        1,
			DID:              "did:ethr:0xab8483f64d9c6d1ecf9b849ae677dd3315835cb2",
			DestinationChain: "polygon",
			Requester:        TestAddrs.Requester,
		},
		cfg:       ResponderConfig(),
		createdAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (b *RequestBuilder) WithCorrelationID(cid id.CorrelationID) *RequestBuilder {
	b.correlationID = cid
	return b
}

func (b *RequestBuilder) WithSubject(subjectID id.SubjectID) *RequestBuilder {
	b.draft.SubjectID = subjectID
	return b
}

func (b *RequestBuilder) WithDID(did string) *RequestBuilder {
	b.draft.DID = did
	return b
}

func (b *RequestBuilder) CreatedAt(t time.Time) *RequestBuilder {
	b.createdAt = t
	return b
}

// Build panics on invalid input; fixtures are expected to be valid.
func (b *RequestBuilder) Build() *models.Request {
	req, err := models.NewRequest(b.correlationID, b.draft, b.cfg, b.createdAt)
	if err != nil {
		panic(err)
	}
	return req
}
