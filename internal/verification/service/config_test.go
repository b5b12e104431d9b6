package service

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"bridgeid/internal/verification/models"
	dErrors "bridgeid/pkg/domain-errors"
)

func (s *ServiceSuite) TestInitialize() {
	ctx := context.Background()

	s.Run("existing settings are kept", func() {
		created, err := s.service.Initialize(ctx, strangerAddr, models.ResponderConfig{
			ResponderAddress: strangerAddr,
			CorrelationTag:   []byte{0x09},
			FeeAmount:        big.NewInt(1),
		})
		s.Require().NoError(err)
		s.False(created)

		owner, err := s.service.Owner(ctx)
		s.Require().NoError(err)
		s.Equal(ownerAddr, owner)
	})

	s.Run("zero owner is rejected", func() {
		_, err := s.service.Initialize(ctx, common.Address{}, models.ResponderConfig{
			ResponderAddress: responderAddr,
			CorrelationTag:   defaultTag,
			FeeAmount:        defaultFee,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestConfigSetters() {
	ctx := context.Background()

	s.Run("owner updates every setting and events describe the change", func() {
		s.Require().NoError(s.service.SetResponderAddress(ctx, ownerAddr, strangerAddr))
		s.Require().NoError(s.service.SetCorrelationTag(ctx, ownerAddr, []byte{0xab, 0xcd}))
		s.Require().NoError(s.service.SetFeeAmount(ctx, ownerAddr, big.NewInt(0)))
		s.Require().NoError(s.service.SetMockModeEnabled(ctx, ownerAddr, true))

		cfg, err := s.service.Config(ctx)
		s.Require().NoError(err)
		s.Equal(strangerAddr, cfg.Responder.ResponderAddress)
		s.Equal([]byte{0xab, 0xcd}, cfg.Responder.CorrelationTag)
		s.Equal(int64(0), cfg.Responder.FeeAmount.Int64())
		s.True(cfg.Responder.MockModeEnabled)

		tagEvents := s.eventLog.OfKind(models.EventCorrelationTagUpdated)
		s.Require().Len(tagEvents, 1)
		s.Equal("0x01", tagEvents[0].Previous)
		s.Equal("0xabcd", tagEvents[0].Current)
		s.Equal(ownerAddr.Hex(), tagEvents[0].Caller)

		s.Len(s.eventLog.OfKind(models.EventResponderAddressUpdated), 1)
		s.Len(s.eventLog.OfKind(models.EventFeeAmountUpdated), 1)
		s.Len(s.eventLog.OfKind(models.EventMockModeUpdated), 1)
	})

	s.Run("non-owner calls change nothing", func() {
		s.SetupTest()
		before, err := s.service.Config(ctx)
		s.Require().NoError(err)

		s.ErrorIs(s.service.SetResponderAddress(ctx, strangerAddr, strangerAddr), ErrNotOwner)
		s.ErrorIs(s.service.SetCorrelationTag(ctx, strangerAddr, []byte{0xff}), ErrNotOwner)
		s.ErrorIs(s.service.SetFeeAmount(ctx, strangerAddr, big.NewInt(1)), ErrNotOwner)
		s.ErrorIs(s.service.SetMockModeEnabled(ctx, strangerAddr, true), ErrNotOwner)
		s.ErrorIs(s.service.TransferOwnership(ctx, strangerAddr, strangerAddr), ErrNotOwner)
		s.ErrorIs(s.service.SetMockModeEnabled(ctx, common.Address{}, true), ErrUnauthenticated)

		after, err := s.service.Config(ctx)
		s.Require().NoError(err)
		s.Equal(before, after)
		s.Empty(s.eventLog.All())
	})

	s.Run("invalid values are rejected", func() {
		s.SetupTest()
		s.True(dErrors.HasCode(s.service.SetResponderAddress(ctx, ownerAddr, common.Address{}), dErrors.CodeInvalidInput))
		s.True(dErrors.HasCode(s.service.SetCorrelationTag(ctx, ownerAddr, nil), dErrors.CodeInvalidInput))
		s.True(dErrors.HasCode(s.service.SetCorrelationTag(ctx, ownerAddr, make([]byte, 33)), dErrors.CodeInvalidInput))
		s.True(dErrors.HasCode(s.service.SetFeeAmount(ctx, ownerAddr, big.NewInt(-1)), dErrors.CodeInvalidInput))
		s.True(dErrors.HasCode(s.service.TransferOwnership(ctx, ownerAddr, common.Address{}), dErrors.CodeInvalidInput))
		s.Empty(s.eventLog.All())
	})

	s.Run("a 32 byte tag is accepted", func() {
		s.SetupTest()
		s.NoError(s.service.SetCorrelationTag(ctx, ownerAddr, make([]byte, 32)))
	})
}

func (s *ServiceSuite) TestTransferOwnership() {
	ctx := context.Background()

	s.Require().NoError(s.service.TransferOwnership(ctx, ownerAddr, strangerAddr))

	owner, err := s.service.Owner(ctx)
	s.Require().NoError(err)
	s.Equal(strangerAddr, owner)

	s.ErrorIs(s.service.SetMockModeEnabled(ctx, ownerAddr, true), ErrNotOwner)
	s.NoError(s.service.SetMockModeEnabled(ctx, strangerAddr, true))

	evs := s.eventLog.OfKind(models.EventOwnershipTransferred)
	s.Require().Len(evs, 1)
	s.Equal(ownerAddr.Hex(), evs[0].Previous)
	s.Equal(strangerAddr.Hex(), evs[0].Current)
}
