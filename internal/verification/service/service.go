// Package service implements the verification request/response protocol and
// the owner-controlled configuration surface.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"bridgeid/internal/verification/dispatch"
	"bridgeid/internal/verification/metrics"
	"bridgeid/internal/verification/models"
	id "bridgeid/pkg/domain"
	"bridgeid/pkg/platform/tracer"
)

// RequestStore persists verification requests.
// Error Contract: Find methods return sentinel.ErrNotFound for unknown IDs;
// Create returns sentinel.ErrAlreadyUsed for an existing ID; Update returns
// sentinel.ErrInvalidState when the stored request is no longer pending, and so
// does DeletePending.
type RequestStore interface {
	NextNonce(ctx context.Context) (uint64, error)
	Exists(ctx context.Context, correlationID id.CorrelationID) (bool, error)
	Create(ctx context.Context, req *models.Request) error
	FindByID(ctx context.Context, correlationID id.CorrelationID) (*models.Request, error)
	FindByIDForUpdate(ctx context.Context, correlationID id.CorrelationID) (*models.Request, error)
	Update(ctx context.Context, req *models.Request) error
	DeletePending(ctx context.Context, correlationID id.CorrelationID) error
}

// StatusStore persists the latest outcome per subject.
// Error Contract: Find returns sentinel.ErrNotFound for subjects never fulfilled.
type StatusStore interface {
	Set(ctx context.Context, status models.SubjectStatus) error
	Find(ctx context.Context, subjectID id.SubjectID) (models.SubjectStatus, error)
}

// SettingsStore persists the single owner + responder configuration record.
type SettingsStore interface {
	Initialize(ctx context.Context, settings *models.Settings) (bool, error)
	Load(ctx context.Context) (*models.Settings, error)
	LoadForUpdate(ctx context.Context) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}

// Dispatcher hands a prepared request to the external responder.
type Dispatcher interface {
	Dispatch(ctx context.Context, req dispatch.OracleRequest) error
}

// EventPublisher receives events after the transition that produced them commits.
type EventPublisher interface {
	Emit(ctx context.Context, event models.Event)
}

type Service struct {
	stores          Stores
	tx              StoreTx
	instance        common.Address
	dispatcher      Dispatcher
	events          EventPublisher
	metrics         *metrics.Metrics
	tracer          tracer.Tracer
	logger          *slog.Logger
	callbackBaseURL string
	now             func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithDispatcher(d Dispatcher) Option {
	return func(s *Service) {
		s.dispatcher = d
	}
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		s.events = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithCallbackBaseURL sets the public base URL the responder calls back on.
func WithCallbackBaseURL(base string) Option {
	return func(s *Service) {
		s.callbackBaseURL = strings.TrimRight(base, "/")
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New wires the service. stores serves read paths; every mutation goes through tx.
// instance identifies this deployment and seeds correlation IDs.
func New(stores Stores, tx StoreTx, instance common.Address, opts ...Option) *Service {
	svc := &Service{
		stores:   stores,
		tx:       tx,
		instance: instance,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.tracer == nil {
		svc.tracer = tracer.NewNoop()
	}
	if svc.tx == nil {
		svc.tx = NewInMemoryTx(stores)
	}
	return svc
}
