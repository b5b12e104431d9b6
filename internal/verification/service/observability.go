package service

import (
	"context"
	"time"

	"bridgeid/internal/verification/models"
	"bridgeid/pkg/requestcontext"
)

// logAudit writes a structured audit line tagged with the request ID when known.
func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

func (s *Service) logDenied(ctx context.Context, action string, err error, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "action", action, "reason", err.Error(), "log_type", "audit")
	s.logger.WarnContext(ctx, "access_denied", args...)
}

func (s *Service) incrementConfigChange(setting string) {
	if s.metrics != nil {
		s.metrics.IncrementConfigChange(setting)
	}
}

func (s *Service) incrementFulfillmentRejected(reason string) {
	if s.metrics != nil {
		s.metrics.IncrementFulfillmentRejected(reason)
	}
}

func (s *Service) observeDispatch(start time.Time, category string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDispatchDuration(float64(time.Since(start).Milliseconds()))
	if category != "" {
		s.metrics.IncrementDispatchFailure(category)
	}
}

func (s *Service) emit(ctx context.Context, event models.Event) {
	if s.events != nil {
		s.events.Emit(ctx, event)
	}
}
