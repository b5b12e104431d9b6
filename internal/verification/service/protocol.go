package service

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"bridgeid/internal/verification/dispatch"
	"bridgeid/internal/verification/models"
	"bridgeid/internal/verification/registry"
	id "bridgeid/pkg/domain"
	dErrors "bridgeid/pkg/domain-errors"
	"bridgeid/pkg/platform/sentinel"
	"bridgeid/pkg/platform/tracer"
)

// VerificationCommand carries the caller-supplied fields of a new request.
type VerificationCommand struct {
	SubjectID        id.SubjectID
	DID              string
	DestinationChain string
}

// RequestVerification issues a correlation ID for the subject and, unless mock
// mode is on, hands the request to the responder. The pending request is
// committed before dispatch so the responder may call back at once. A dispatch
// failure withdraws the request and fails the call.
func (s *Service) RequestVerification(ctx context.Context, caller common.Address, cmd VerificationCommand) (*models.Request, error) {
	ctx, span := s.tracer.Start(ctx, "verification.request",
		tracer.Stringer("subject_id", cmd.SubjectID),
		tracer.String("did_hash", tracer.HashDID(cmd.DID)),
		tracer.String("destination_chain", cmd.DestinationChain),
	)
	var err error
	defer func() { span.End(err) }()

	if err = requireAuthenticated(caller); err != nil {
		return nil, err
	}

	var (
		created   *models.Request
		responder common.Address
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context, stores Stores) error {
		settings, loadErr := stores.Settings.Load(ctx)
		if loadErr != nil {
			return wrapSettingsErr(loadErr, "failed to load settings")
		}

		reg := registry.New(stores.Requests, s.instance, registry.WithClock(s.now))
		req, prepErr := reg.Prepare(ctx, models.Draft{
			SubjectID:        cmd.SubjectID,
			DID:              cmd.DID,
			DestinationChain: cmd.DestinationChain,
			Requester:        caller,
		}, settings.Responder)
		if prepErr != nil {
			return prepErr
		}
		req.Dispatched = !settings.Responder.MockModeEnabled

		if recErr := reg.Record(ctx, req); recErr != nil {
			return recErr
		}
		created = req
		responder = settings.Responder.ResponderAddress
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created.Dispatched {
		if dispatchErr := s.dispatch(ctx, created, responder); dispatchErr != nil {
			if !s.withdraw(ctx, created.CorrelationID) {
				err = dispatchErr
				return nil, err
			}
			s.logger.WarnContext(ctx, "responder fulfilled request despite dispatch error",
				"correlation_id", created.CorrelationID.String(),
				"error", dispatchErr,
			)
		}
	}

	span.SetAttributes(
		tracer.Stringer("correlation_id", created.CorrelationID),
		tracer.Bool("dispatched", created.Dispatched),
	)
	s.emit(ctx, models.VerificationRequested(created))
	if s.metrics != nil {
		s.metrics.IncrementRequestsCreated()
	}
	s.logAudit(ctx, "verification_requested",
		"correlation_id", created.CorrelationID.String(),
		"subject_id", created.SubjectID.String(),
		"requester", caller.Hex(),
		"destination_chain", created.DestinationChain,
		"dispatched", created.Dispatched,
	)
	return created, nil
}

// withdraw removes a request whose dispatch failed, in its own transaction.
// It reports true when the responder already fulfilled the request, which
// means the dispatch reached it after all.
func (s *Service) withdraw(ctx context.Context, correlationID id.CorrelationID) bool {
	ctx = context.WithoutCancel(ctx)
	err := s.tx.RunInTx(ctx, func(ctx context.Context, stores Stores) error {
		return registry.New(stores.Requests, s.instance).Discard(ctx, correlationID)
	})
	switch {
	case err == nil:
		return false
	case dErrors.HasCode(err, dErrors.CodeAlreadyFulfilled):
		return true
	default:
		s.logger.ErrorContext(ctx, "failed to withdraw undispatched request",
			"correlation_id", correlationID.String(),
			"error", err,
		)
		return false
	}
}

func (s *Service) dispatch(ctx context.Context, req *models.Request, responder common.Address) error {
	if s.dispatcher == nil {
		return dErrors.New(dErrors.CodeDispatchFailed, "no responder dispatcher configured")
	}
	ctx, span := s.tracer.Start(ctx, "verification.dispatch",
		tracer.Stringer("correlation_id", req.CorrelationID),
		tracer.Stringer("responder", responder),
	)
	start := time.Now()
	err := s.dispatcher.Dispatch(ctx, dispatch.OracleRequest{
		CorrelationID:    req.CorrelationID,
		CorrelationTag:   req.CorrelationTag,
		Fee:              req.Fee,
		SubjectID:        req.SubjectID,
		DID:              req.DID,
		DestinationChain: req.DestinationChain,
		Responder:        responder,
		CallbackURL:      s.callbackURL(req.CorrelationID),
	})
	span.End(err)
	if err != nil {
		category := string(dispatch.CategoryOf(err))
		s.observeDispatch(start, category)
		s.logger.WarnContext(ctx, "responder dispatch failed",
			"correlation_id", req.CorrelationID.String(),
			"category", category,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeDispatchFailed, "responder dispatch failed")
	}
	s.observeDispatch(start, "")
	return nil
}

func (s *Service) callbackURL(correlationID id.CorrelationID) string {
	if s.callbackBaseURL == "" {
		return ""
	}
	return s.callbackBaseURL + "/verifications/" + correlationID.String() + "/fulfill"
}

// FulfillVerification records the responder's verdict. Only the configured
// responder may call it, and each correlation ID is accepted once.
func (s *Service) FulfillVerification(ctx context.Context, caller common.Address, correlationID id.CorrelationID, resultCode int64) (*models.Request, error) {
	return s.fulfill(ctx, "verification.fulfill", caller, correlationID, resultCode, false)
}

// MockFulfillVerification lets any caller complete a request while mock mode is on.
func (s *Service) MockFulfillVerification(ctx context.Context, caller common.Address, correlationID id.CorrelationID, resultCode int64) (*models.Request, error) {
	return s.fulfill(ctx, "verification.mock_fulfill", caller, correlationID, resultCode, true)
}

func (s *Service) fulfill(ctx context.Context, spanName string, caller common.Address, correlationID id.CorrelationID, resultCode int64, mock bool) (*models.Request, error) {
	ctx, span := s.tracer.Start(ctx, spanName,
		tracer.Stringer("correlation_id", correlationID),
		tracer.Int64("result_code", resultCode),
		tracer.Bool("mock", mock),
	)
	var err error
	defer func() { span.End(err) }()

	var fulfilled *models.Request
	err = s.tx.RunInTx(ctx, func(ctx context.Context, stores Stores) error {
		settings, loadErr := stores.Settings.Load(ctx)
		if loadErr != nil {
			return wrapSettingsErr(loadErr, "failed to load settings")
		}
		if authErr := authorizeFulfillment(settings, caller, mock); authErr != nil {
			return authErr
		}

		result, parseErr := models.ParseResultCode(resultCode)
		if parseErr != nil {
			return parseErr
		}

		reg := registry.New(stores.Requests, s.instance, registry.WithClock(s.now))
		req, markErr := reg.MarkFulfilled(ctx, correlationID, result, caller)
		if markErr != nil {
			return markErr
		}

		status := models.SubjectStatus{
			SubjectID:     req.SubjectID,
			State:         models.StateFor(result),
			CorrelationID: req.CorrelationID,
			UpdatedAt:     *req.FulfilledAt,
		}
		if setErr := stores.Statuses.Set(ctx, status); setErr != nil {
			return dErrors.Wrap(setErr, dErrors.CodeInternal, "failed to update subject status")
		}
		fulfilled = req
		return nil
	})
	if err != nil {
		s.rejectFulfillment(ctx, caller, correlationID, mock, err)
		return nil, err
	}

	s.emit(ctx, models.VerificationReceived(fulfilled))
	if s.metrics != nil {
		s.metrics.IncrementFulfilled(fulfilled.Result, mock)
		s.metrics.ObserveFulfillmentLatency(fulfilled.FulfilledAt.Sub(fulfilled.CreatedAt).Seconds())
	}
	s.logAudit(ctx, "verification_received",
		"correlation_id", correlationID.String(),
		"subject_id", fulfilled.SubjectID.String(),
		"result", fulfilled.Result.String(),
		"fulfilled_by", caller.Hex(),
		"mock", mock,
	)
	return fulfilled, nil
}

// authorizeFulfillment gates the two fulfillment paths. The mock switch is
// checked before anything about the caller.
func authorizeFulfillment(settings *models.Settings, caller common.Address, mock bool) error {
	if mock {
		if !settings.Responder.MockModeEnabled {
			return ErrMockDisabled
		}
		return requireAuthenticated(caller)
	}
	if err := requireAuthenticated(caller); err != nil {
		return err
	}
	if caller != settings.Responder.ResponderAddress {
		return ErrNotResponder
	}
	return nil
}

func (s *Service) rejectFulfillment(ctx context.Context, caller common.Address, correlationID id.CorrelationID, mock bool, err error) {
	reason := string(dErrors.CodeOf(err))
	s.incrementFulfillmentRejected(reason)
	if errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrNotResponder) {
		s.logDenied(ctx, "fulfill", err,
			"caller", caller.Hex(),
			"correlation_id", correlationID.String(),
			"mock", mock,
		)
		return
	}
	s.logger.InfoContext(ctx, "fulfillment rejected",
		"correlation_id", correlationID.String(),
		"reason", reason,
		"mock", mock,
	)
}

// GetStatus reports whether the subject's latest fulfilled verdict was verified.
// Subjects never fulfilled read as false.
func (s *Service) GetStatus(ctx context.Context, subjectID id.SubjectID) (bool, error) {
	status, err := s.SubjectStatus(ctx, subjectID)
	if err != nil {
		return false, err
	}
	return status.Verified(), nil
}

// SubjectStatus returns the tri-state view of a subject.
func (s *Service) SubjectStatus(ctx context.Context, subjectID id.SubjectID) (models.SubjectStatus, error) {
	status, err := s.stores.Statuses.Find(ctx, subjectID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.UnknownStatus(subjectID), nil
		}
		return models.SubjectStatus{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subject status")
	}
	return status, nil
}

// GetRequest returns the stored request, pending or fulfilled.
func (s *Service) GetRequest(ctx context.Context, correlationID id.CorrelationID) (*models.Request, error) {
	return registry.New(s.stores.Requests, s.instance).Get(ctx, correlationID)
}
