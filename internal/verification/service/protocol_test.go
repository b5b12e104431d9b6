package service

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/mock/gomock"

	"bridgeid/internal/verification/dispatch"
	"bridgeid/internal/verification/models"
	"bridgeid/internal/verification/service/mocks"
	id "bridgeid/pkg/domain"
	dErrors "bridgeid/pkg/domain-errors"
)

func (s *ServiceSuite) TestRequestVerification() {
	ctx := context.Background()
	cmd := VerificationCommand{SubjectID: 7, DID: "did:example:alice", DestinationChain: "base"}

	s.Run("live mode dispatches tag, fee and callback then stores a pending request", func() {
		var sent dispatch.OracleRequest
		s.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req dispatch.OracleRequest) error {
				sent = req
				return nil
			})

		req, err := s.service.RequestVerification(ctx, requesterAddr, cmd)
		s.Require().NoError(err)

		s.Equal(req.CorrelationID, sent.CorrelationID)
		s.Equal(defaultTag, sent.CorrelationTag)
		s.Equal(0, defaultFee.Cmp(sent.Fee))
		s.Equal(responderAddr, sent.Responder)
		s.Equal("https://bridge.example/verifications/"+req.CorrelationID.String()+"/fulfill", sent.CallbackURL)

		stored, err := s.service.GetRequest(ctx, req.CorrelationID)
		s.Require().NoError(err)
		s.Equal(models.RequestStatusPending, stored.Status)
		s.True(stored.Dispatched)
		s.Equal(requesterAddr, stored.Requester)

		evs := s.eventLog.OfKind(models.EventVerificationRequested)
		s.Require().Len(evs, 1)
		s.Equal(req.CorrelationID, *evs[0].CorrelationID)
		s.Equal(id.SubjectID(7), *evs[0].SubjectID)
		s.Equal(requesterAddr.Hex(), evs[0].Caller)
		s.Equal("did:example:alice", evs[0].DID)
		s.Equal("base", evs[0].DestinationChain)
	})

	s.Run("mock mode skips dispatch", func() {
		s.SetupTest()
		s.enableMockMode()

		req, err := s.service.RequestVerification(ctx, requesterAddr, cmd)
		s.Require().NoError(err)
		s.False(req.Dispatched)
		s.Equal(1, s.pendingCount())
	})

	s.Run("repeated requests for one subject get distinct IDs", func() {
		s.SetupTest()
		s.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(nil).Times(3)

		seen := map[id.CorrelationID]bool{}
		for range 3 {
			req, err := s.service.RequestVerification(ctx, requesterAddr, cmd)
			s.Require().NoError(err)
			s.False(seen[req.CorrelationID])
			seen[req.CorrelationID] = true
		}
		s.Equal(3, s.pendingCount())
	})

	s.Run("dispatch failure persists nothing and emits nothing", func() {
		s.SetupTest()
		s.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).
			Return(dispatch.NewDispatchError(dispatch.ErrorOutage, "down", 503, nil))

		req, err := s.service.RequestVerification(ctx, requesterAddr, cmd)
		s.Require().Error(err)
		s.Nil(req)
		s.True(dErrors.HasCode(err, dErrors.CodeDispatchFailed))
		s.Equal(0, s.pendingCount())
		s.Empty(s.eventLog.All())
	})

	s.Run("responder callback during dispatch is accepted", func() {
		s.SetupTest()
		s.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req dispatch.OracleRequest) error {
				done := make(chan error, 1)
				go func() {
					_, err := s.service.FulfillVerification(context.Background(), responderAddr, req.CorrelationID, 1)
					done <- err
				}()
				select {
				case err := <-done:
					return err
				case <-time.After(2 * time.Second):
					return errors.New("callback blocked behind dispatch")
				}
			})

		req, err := s.service.RequestVerification(ctx, requesterAddr, cmd)
		s.Require().NoError(err)

		stored, err := s.service.GetRequest(ctx, req.CorrelationID)
		s.Require().NoError(err)
		s.Equal(models.RequestStatusFulfilled, stored.Status)
		verified, err := s.service.GetStatus(ctx, cmd.SubjectID)
		s.Require().NoError(err)
		s.True(verified)
		s.Len(s.eventLog.OfKind(models.EventVerificationRequested), 1)
		s.Len(s.eventLog.OfKind(models.EventVerificationReceived), 1)
	})

	s.Run("verdict delivered before a dispatch error is kept", func() {
		s.SetupTest()
		s.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req dispatch.OracleRequest) error {
				_, err := s.service.FulfillVerification(context.Background(), responderAddr, req.CorrelationID, 0)
				s.NoError(err)
				return dispatch.NewDispatchError(dispatch.ErrorTimeout, "ack lost", 0, nil)
			})

		req, err := s.service.RequestVerification(ctx, requesterAddr, cmd)
		s.Require().NoError(err)

		stored, err := s.service.GetRequest(ctx, req.CorrelationID)
		s.Require().NoError(err)
		s.Equal(models.ResultUnverified, stored.Result)
		status, _ := s.service.SubjectStatus(ctx, cmd.SubjectID)
		s.Equal(models.SubjectStateRejected, status.State)
	})

	s.Run("caller cancelling during dispatch still withdraws the request", func() {
		s.SetupTest()
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		s.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ dispatch.OracleRequest) error {
				cancel()
				return ctx.Err()
			})

		_, err := s.service.RequestVerification(cctx, requesterAddr, cmd)
		s.True(dErrors.HasCode(err, dErrors.CodeDispatchFailed))
		s.Equal(0, s.pendingCount())
		s.Empty(s.eventLog.All())
	})

	s.Run("live mode without a dispatcher is refused", func() {
		s.SetupTest()
		s.service.dispatcher = nil
		s.enableMockMode()
		s.Require().NoError(s.service.SetMockModeEnabled(ctx, ownerAddr, false))
		s.eventLog.Clear()

		req, err := s.service.RequestVerification(ctx, requesterAddr, cmd)
		s.Nil(req)
		s.True(dErrors.HasCode(err, dErrors.CodeDispatchFailed))
		s.Equal(0, s.pendingCount())
		s.Empty(s.eventLog.All())
	})

	s.Run("zero caller is unauthenticated", func() {
		s.SetupTest()
		_, err := s.service.RequestVerification(ctx, common.Address{}, cmd)
		s.ErrorIs(err, ErrUnauthenticated)
	})

	s.Run("missing DID is rejected", func() {
		s.SetupTest()
		_, err := s.service.RequestVerification(ctx, requesterAddr, VerificationCommand{SubjectID: 1, DestinationChain: "base"})
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		s.Equal(0, s.pendingCount())
	})

	s.Run("fee change applies only to later requests", func() {
		s.SetupTest()
		first := s.newDispatchedRequest(1)

		s.Require().NoError(s.service.SetFeeAmount(ctx, ownerAddr, big.NewInt(5)))
		second := s.newDispatchedRequest(1)

		storedFirst, err := s.service.GetRequest(ctx, first.CorrelationID)
		s.Require().NoError(err)
		s.Equal(0, defaultFee.Cmp(storedFirst.Fee))
		s.Equal(int64(5), second.Fee.Int64())
	})
}

func (s *ServiceSuite) TestFulfillVerification() {
	ctx := context.Background()

	s.Run("responder verdict updates status and emits event", func() {
		req := s.newDispatchedRequest(11)
		s.now = s.now.Add(90 * time.Second)

		got, err := s.service.FulfillVerification(ctx, responderAddr, req.CorrelationID, 1)
		s.Require().NoError(err)
		s.Equal(models.RequestStatusFulfilled, got.Status)
		s.Equal(responderAddr, got.FulfilledBy)

		verified, err := s.service.GetStatus(ctx, 11)
		s.Require().NoError(err)
		s.True(verified)

		status, err := s.service.SubjectStatus(ctx, 11)
		s.Require().NoError(err)
		s.Equal(models.SubjectStateVerified, status.State)
		s.Equal(req.CorrelationID, status.CorrelationID)
		s.Equal(s.now, status.UpdatedAt)

		evs := s.eventLog.OfKind(models.EventVerificationReceived)
		s.Require().Len(evs, 1)
		s.Equal(models.ResultVerified, *evs[0].ResultCode)
	})

	s.Run("unverified result marks subject rejected", func() {
		s.SetupTest()
		req := s.newDispatchedRequest(12)

		_, err := s.service.FulfillVerification(ctx, responderAddr, req.CorrelationID, 0)
		s.Require().NoError(err)

		verified, err := s.service.GetStatus(ctx, 12)
		s.Require().NoError(err)
		s.False(verified)
		status, _ := s.service.SubjectStatus(ctx, 12)
		s.Equal(models.SubjectStateRejected, status.State)
	})

	s.Run("second fulfillment is rejected and leaves state unchanged", func() {
		s.SetupTest()
		req := s.newDispatchedRequest(13)
		_, err := s.service.FulfillVerification(ctx, responderAddr, req.CorrelationID, 1)
		s.Require().NoError(err)
		s.eventLog.Clear()

		_, err = s.service.FulfillVerification(ctx, responderAddr, req.CorrelationID, 0)
		s.ErrorIs(err, ErrAlreadyDone)

		verified, _ := s.service.GetStatus(ctx, 13)
		s.True(verified)
		s.Empty(s.eventLog.All())
	})

	s.Run("non-responder caller cannot fulfill", func() {
		s.SetupTest()
		req := s.newDispatchedRequest(14)

		_, err := s.service.FulfillVerification(ctx, strangerAddr, req.CorrelationID, 1)
		s.ErrorIs(err, ErrNotResponder)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

		stored, _ := s.service.GetRequest(ctx, req.CorrelationID)
		s.True(stored.IsPending())
		verified, _ := s.service.GetStatus(ctx, 14)
		s.False(verified)
	})

	s.Run("unknown correlation ID", func() {
		s.SetupTest()
		_, err := s.service.FulfillVerification(ctx, responderAddr, id.CorrelationID(common.HexToHash("0xdead")), 1)
		s.ErrorIs(err, ErrUnknownRequest)
	})

	s.Run("out of range result code is rejected without mutation", func() {
		s.SetupTest()
		req := s.newDispatchedRequest(15)

		_, err := s.service.FulfillVerification(ctx, responderAddr, req.CorrelationID, 2)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidResultCode))

		stored, _ := s.service.GetRequest(ctx, req.CorrelationID)
		s.True(stored.IsPending())
		status, _ := s.service.SubjectStatus(ctx, 15)
		s.Equal(models.SubjectStateUnknown, status.State)
	})

	s.Run("replacing the responder revokes the old one", func() {
		s.SetupTest()
		req := s.newDispatchedRequest(16)
		s.Require().NoError(s.service.SetResponderAddress(ctx, ownerAddr, strangerAddr))

		_, err := s.service.FulfillVerification(ctx, responderAddr, req.CorrelationID, 1)
		s.ErrorIs(err, ErrNotResponder)
		_, err = s.service.FulfillVerification(ctx, strangerAddr, req.CorrelationID, 1)
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestMockFulfillVerification() {
	ctx := context.Background()

	s.Run("disabled mock mode refuses every caller", func() {
		req := s.newDispatchedRequest(21)

		for _, caller := range []common.Address{responderAddr, ownerAddr, strangerAddr, {}} {
			_, err := s.service.MockFulfillVerification(ctx, caller, req.CorrelationID, 1)
			s.ErrorIs(err, ErrMockDisabled)
		}
		stored, _ := s.service.GetRequest(ctx, req.CorrelationID)
		s.True(stored.IsPending())
	})

	s.Run("enabled mock mode lets any caller fulfill", func() {
		s.SetupTest()
		req := s.newDispatchedRequest(22)
		s.enableMockMode()

		got, err := s.service.MockFulfillVerification(ctx, strangerAddr, req.CorrelationID, 1)
		s.Require().NoError(err)
		s.Equal(strangerAddr, got.FulfilledBy)

		verified, _ := s.service.GetStatus(ctx, 22)
		s.True(verified)
		s.Len(s.eventLog.OfKind(models.EventVerificationReceived), 1)
	})

	s.Run("mock path shares the anti-replay check", func() {
		s.SetupTest()
		s.enableMockMode()
		req, err := s.service.RequestVerification(ctx, requesterAddr, VerificationCommand{SubjectID: 23, DID: "did:example:x", DestinationChain: "base"})
		s.Require().NoError(err)

		_, err = s.service.MockFulfillVerification(ctx, strangerAddr, req.CorrelationID, 0)
		s.Require().NoError(err)
		_, err = s.service.FulfillVerification(ctx, responderAddr, req.CorrelationID, 1)
		s.ErrorIs(err, ErrAlreadyDone)
	})
}

func (s *ServiceSuite) TestReads() {
	ctx := context.Background()

	s.Run("never-fulfilled subject reads false and unknown", func() {
		verified, err := s.service.GetStatus(ctx, 999)
		s.Require().NoError(err)
		s.False(verified)

		status, err := s.service.SubjectStatus(ctx, 999)
		s.Require().NoError(err)
		s.Equal(models.SubjectStateUnknown, status.State)
	})

	s.Run("unknown request lookup", func() {
		_, err := s.service.GetRequest(ctx, id.CorrelationID(common.HexToHash("0x01")))
		s.ErrorIs(err, ErrUnknownRequest)
	})
}

func (s *ServiceSuite) TestCancelledContextAbortsTransaction() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.service.RequestVerification(ctx, requesterAddr, VerificationCommand{SubjectID: 1, DID: "did:example:a", DestinationChain: "base"})
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	s.Equal(0, s.pendingCount())
}

func (s *ServiceSuite) TestEventsFollowCommitOnly() {
	publisher := mocks.NewMockEventPublisher(s.ctrl)
	s.service.events = publisher
	ctx := context.Background()

	s.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))
	_, err := s.service.RequestVerification(ctx, requesterAddr, VerificationCommand{SubjectID: 3, DID: "did:example:c", DestinationChain: "base"})
	s.Require().Error(err)

	s.dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(nil)
	publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, ev models.Event) {
			s.Equal(models.EventVerificationRequested, ev.Kind)
		}).Times(1)
	_, err = s.service.RequestVerification(ctx, requesterAddr, VerificationCommand{SubjectID: 3, DID: "did:example:c", DestinationChain: "base"})
	s.Require().NoError(err)
}
