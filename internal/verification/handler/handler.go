// Package handler exposes the verification protocol and configuration surface over HTTP.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"bridgeid/internal/verification/models"
	"bridgeid/internal/verification/service"
	id "bridgeid/pkg/domain"
	"bridgeid/pkg/platform/httputil"
	request "bridgeid/pkg/platform/middleware/request"
)

// Service defines the protocol operations the handler calls.
type Service interface {
	RequestVerification(ctx context.Context, caller common.Address, cmd service.VerificationCommand) (*models.Request, error)
	FulfillVerification(ctx context.Context, caller common.Address, correlationID id.CorrelationID, resultCode int64) (*models.Request, error)
	MockFulfillVerification(ctx context.Context, caller common.Address, correlationID id.CorrelationID, resultCode int64) (*models.Request, error)
	GetRequest(ctx context.Context, correlationID id.CorrelationID) (*models.Request, error)
	SubjectStatus(ctx context.Context, subjectID id.SubjectID) (models.SubjectStatus, error)
	Config(ctx context.Context) (*models.Settings, error)
	SetResponderAddress(ctx context.Context, caller, responder common.Address) error
	SetCorrelationTag(ctx context.Context, caller common.Address, tag []byte) error
	SetFeeAmount(ctx context.Context, caller common.Address, amount *big.Int) error
	SetMockModeEnabled(ctx context.Context, caller common.Address, enabled bool) error
	TransferOwnership(ctx context.Context, caller, newOwner common.Address) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// RegisterPublic mounts the read-only routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/verifications/{correlationID}", h.HandleGetRequest)
	r.Get("/subjects/{subjectID}/status", h.HandleGetStatus)
	r.Get("/config", h.HandleGetConfig)
}

// RegisterCaller mounts routes that need an authenticated caller.
func (h *Handler) RegisterCaller(r chi.Router) {
	r.Post("/verifications", h.HandleRequestVerification)
	r.Post("/verifications/{correlationID}/fulfill", h.HandleFulfill)
	r.Post("/verifications/{correlationID}/mock-fulfill", h.HandleMockFulfill)
}

// RegisterAdmin mounts the owner routes. The router must already enforce
// caller authentication and ownership.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Put("/admin/config/responder", h.HandleSetResponder)
	r.Put("/admin/config/correlation-tag", h.HandleSetCorrelationTag)
	r.Put("/admin/config/fee", h.HandleSetFee)
	r.Put("/admin/config/mock-mode", h.HandleSetMockMode)
	r.Post("/admin/ownership", h.HandleTransferOwnership)
}

func (h *Handler) HandleRequestVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[VerificationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	created, err := h.service.RequestVerification(ctx, caller, req.ToCommand())
	if err != nil {
		h.logFailure(ctx, "request verification", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, toCreatedResponse(created))
}

func (h *Handler) HandleFulfill(w http.ResponseWriter, r *http.Request) {
	h.handleFulfill(w, r, h.service.FulfillVerification)
}

func (h *Handler) HandleMockFulfill(w http.ResponseWriter, r *http.Request) {
	h.handleFulfill(w, r, h.service.MockFulfillVerification)
}

type fulfillFunc func(ctx context.Context, caller common.Address, correlationID id.CorrelationID, resultCode int64) (*models.Request, error)

func (h *Handler) handleFulfill(w http.ResponseWriter, r *http.Request, fulfill fulfillFunc) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	correlationID, err := id.ParseCorrelationID(chi.URLParam(r, "correlationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[FulfillRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	fulfilled, err := fulfill(ctx, caller, correlationID, *req.ResultCode)
	if err != nil {
		h.logFailure(ctx, "fulfill verification", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(fulfilled))
}

func (h *Handler) HandleGetRequest(w http.ResponseWriter, r *http.Request) {
	correlationID, err := id.ParseCorrelationID(chi.URLParam(r, "correlationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := h.service.GetRequest(r.Context(), correlationID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRequestResponse(req))
}

func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	subjectID, err := id.ParseSubjectID(chi.URLParam(r, "subjectID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	status, err := h.service.SubjectStatus(r.Context(), subjectID)
	if err != nil {
		h.logFailure(r.Context(), "get subject status", request.GetRequestID(r.Context()), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStatusResponse(status))
}

func (h *Handler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Config(r.Context())
	if err != nil {
		h.logFailure(r.Context(), "get config", request.GetRequestID(r.Context()), err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConfigResponse(settings))
}

func (h *Handler) HandleSetResponder(w http.ResponseWriter, r *http.Request) {
	h.adminUpdate(w, r, func(ctx context.Context, caller common.Address) error {
		req, ok := httputil.DecodeAndPrepare[ResponderRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
		if !ok {
			return errAlreadyWritten
		}
		addr, err := req.ToAddress()
		if err != nil {
			return err
		}
		return h.service.SetResponderAddress(ctx, caller, addr)
	})
}

func (h *Handler) HandleSetCorrelationTag(w http.ResponseWriter, r *http.Request) {
	h.adminUpdate(w, r, func(ctx context.Context, caller common.Address) error {
		req, ok := httputil.DecodeAndPrepare[CorrelationTagRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
		if !ok {
			return errAlreadyWritten
		}
		tag, err := req.ToBytes()
		if err != nil {
			return err
		}
		return h.service.SetCorrelationTag(ctx, caller, tag)
	})
}

func (h *Handler) HandleSetFee(w http.ResponseWriter, r *http.Request) {
	h.adminUpdate(w, r, func(ctx context.Context, caller common.Address) error {
		req, ok := httputil.DecodeAndPrepare[FeeRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
		if !ok {
			return errAlreadyWritten
		}
		amount, err := req.ToAmount()
		if err != nil {
			return err
		}
		return h.service.SetFeeAmount(ctx, caller, amount)
	})
}

func (h *Handler) HandleSetMockMode(w http.ResponseWriter, r *http.Request) {
	h.adminUpdate(w, r, func(ctx context.Context, caller common.Address) error {
		req, ok := httputil.DecodeAndPrepare[MockModeRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
		if !ok {
			return errAlreadyWritten
		}
		return h.service.SetMockModeEnabled(ctx, caller, *req.Enabled)
	})
}

func (h *Handler) HandleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	h.adminUpdate(w, r, func(ctx context.Context, caller common.Address) error {
		req, ok := httputil.DecodeAndPrepare[OwnershipRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
		if !ok {
			return errAlreadyWritten
		}
		newOwner, err := id.ParseAddress(req.NewOwner)
		if err != nil {
			return err
		}
		return h.service.TransferOwnership(ctx, caller, newOwner)
	})
}

// errAlreadyWritten signals that the decoder has already sent the error response.
var errAlreadyWritten = errors.New("response already written")

// adminUpdate runs an owner mutation and answers with the resulting configuration.
func (h *Handler) adminUpdate(w http.ResponseWriter, r *http.Request, update func(ctx context.Context, caller common.Address) error) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	caller, err := httputil.RequireCaller(ctx, h.logger, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := update(ctx, caller); err != nil {
		if errors.Is(err, errAlreadyWritten) {
			return
		}
		h.logFailure(ctx, "update configuration", requestID, err)
		httputil.WriteError(w, err)
		return
	}

	settings, err := h.service.Config(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConfigResponse(settings))
}

func (h *Handler) logFailure(ctx context.Context, action, requestID string, err error) {
	h.logger.WarnContext(ctx, action+" failed",
		"request_id", requestID,
		"error", err,
	)
}
