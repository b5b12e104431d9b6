package service

import (
	"context"

	"bridgeid/internal/verification/models"
	"bridgeid/pkg/testutil"
)

func (s *ServiceSuite) TestConcurrentFulfillment_SingleWinner() {
	req := s.newDispatchedRequest(7)
	s.enableMockMode()

	result := testutil.RunConcurrent(16, func(idx int) error {
		ctx := context.Background()
		if idx%2 == 0 {
			_, err := s.service.FulfillVerification(ctx, responderAddr, req.CorrelationID, 1)
			return err
		}
		_, err := s.service.MockFulfillVerification(ctx, requesterAddr, req.CorrelationID, 1)
		return err
	})

	s.EqualValues(1, result.Successes)
	s.EqualValues(15, result.Conflicts)
	s.Zero(result.Errors)
	s.Len(s.eventLog.OfKind(models.EventVerificationReceived), 1)
}
