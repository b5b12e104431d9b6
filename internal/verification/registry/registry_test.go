package registry

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"

	"bridgeid/internal/verification/models"
	requeststore "bridgeid/internal/verification/store/request"
	id "bridgeid/pkg/domain"
	dErrors "bridgeid/pkg/domain-errors"
)

var (
	instance  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	requester = common.HexToAddress("0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2")
	responder = common.HexToAddress("0x4B20993Bc481177ec7E8f571ceCaE8A9e22C02db")
)

type RegistrySuite struct {
	suite.Suite
	store    *requeststore.InMemory
	registry *Registry
	now      time.Time
	cfg      models.ResponderConfig
	draft    models.Draft
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.store = requeststore.NewInMemory()
	s.now = time.Unix(1_700_000_000, 0)
	s.registry = New(s.store, instance, WithClock(func() time.Time { return s.now }))
	s.cfg = models.ResponderConfig{
		ResponderAddress: responder,
		CorrelationTag:   []byte{0xca, 0xfe},
		FeeAmount:        big.NewInt(200),
	}
	s.draft = models.Draft{SubjectID: 1, DID: "did:ethr:0x1", DestinationChain: "polygon", Requester: requester}
}

func (s *RegistrySuite) TestCreateRequest_IDsAreDistinct() {
	ctx := context.Background()
	seen := map[id.CorrelationID]bool{}
	for range 50 {
		req, err := s.registry.CreateRequest(ctx, s.draft, s.cfg)
		s.Require().NoError(err)
		s.False(seen[req.CorrelationID], "correlation ID reused")
		seen[req.CorrelationID] = true
	}
}

func (s *RegistrySuite) TestPrepare_SkipsIssuedID() {
	ctx := context.Background()
	taken := DeriveCorrelationID(instance, 1, s.now)
	existing, err := models.NewRequest(taken, s.draft, s.cfg, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, existing))

	req, err := s.registry.Prepare(ctx, s.draft, s.cfg)
	s.Require().NoError(err)
	s.NotEqual(taken, req.CorrelationID)
	s.Equal(DeriveCorrelationID(instance, 2, s.now), req.CorrelationID)
}

func (s *RegistrySuite) TestPrepare_DoesNotStore() {
	ctx := context.Background()
	req, err := s.registry.Prepare(ctx, s.draft, s.cfg)
	s.Require().NoError(err)

	_, err = s.registry.Get(ctx, req.CorrelationID)
	s.True(dErrors.HasCode(err, dErrors.CodeUnknownRequest))

	s.Require().NoError(s.registry.Record(ctx, req))
	stored, err := s.registry.Get(ctx, req.CorrelationID)
	s.Require().NoError(err)
	s.True(stored.IsPending())
}

func (s *RegistrySuite) TestMarkFulfilled() {
	ctx := context.Background()
	req, err := s.registry.CreateRequest(ctx, s.draft, s.cfg)
	s.Require().NoError(err)

	s.Run("unknown ID", func() {
		_, err := s.registry.MarkFulfilled(ctx, id.CorrelationID(common.HexToHash("0xdead")), models.ResultVerified, responder)
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownRequest))
	})

	s.Run("first fulfillment returns subject data", func() {
		done, err := s.registry.MarkFulfilled(ctx, req.CorrelationID, models.ResultVerified, responder)
		s.Require().NoError(err)
		s.Equal(s.draft.SubjectID, done.SubjectID)
		s.Equal(models.RequestStatusFulfilled, done.Status)
	})

	s.Run("second fulfillment is rejected", func() {
		_, err := s.registry.MarkFulfilled(ctx, req.CorrelationID, models.ResultUnverified, responder)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyFulfilled))

		stored, err := s.registry.Get(ctx, req.CorrelationID)
		s.Require().NoError(err)
		s.Equal(models.ResultVerified, stored.Result)
	})
}

func (s *RegistrySuite) TestDiscard() {
	ctx := context.Background()

	s.Run("pending request is removed", func() {
		req, err := s.registry.CreateRequest(ctx, s.draft, s.cfg)
		s.Require().NoError(err)

		s.Require().NoError(s.registry.Discard(ctx, req.CorrelationID))
		_, err = s.registry.Get(ctx, req.CorrelationID)
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownRequest))
	})

	s.Run("fulfilled request is kept", func() {
		req, err := s.registry.CreateRequest(ctx, s.draft, s.cfg)
		s.Require().NoError(err)
		_, err = s.registry.MarkFulfilled(ctx, req.CorrelationID, models.ResultVerified, responder)
		s.Require().NoError(err)

		err = s.registry.Discard(ctx, req.CorrelationID)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyFulfilled))
		stored, err := s.registry.Get(ctx, req.CorrelationID)
		s.Require().NoError(err)
		s.Equal(models.RequestStatusFulfilled, stored.Status)
	})

	s.Run("unknown ID", func() {
		err := s.registry.Discard(ctx, id.CorrelationID(common.HexToHash("0xdead")))
		s.True(dErrors.HasCode(err, dErrors.CodeUnknownRequest))
	})
}

func (s *RegistrySuite) TestDeriveCorrelationID() {
	a := DeriveCorrelationID(instance, 1, s.now)
	s.Equal(a, DeriveCorrelationID(instance, 1, s.now))
	s.NotEqual(a, DeriveCorrelationID(instance, 2, s.now))
	s.NotEqual(a, DeriveCorrelationID(responder, 1, s.now))
	s.False(a.IsNil())
}
