package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	dErrors "bridgeid/pkg/domain-errors"
	"bridgeid/pkg/requestcontext"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding failure cannot change the status.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError centralizes domain error translation to HTTP responses.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		response := map[string]string{
			"error": DomainCodeToHTTPCode(domainErr.Code),
		}
		if domainErr.Message != "" {
			response["error_description"] = domainErr.Message
		}
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), response)
		return
	}

	WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": DomainCodeToHTTPCode(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound, dErrors.CodeUnknownRequest:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput,
		dErrors.CodeInvariantViolation, dErrors.CodeInvalidResultCode:
		return http.StatusBadRequest
	case dErrors.CodeConflict, dErrors.CodeAlreadyFulfilled, dErrors.CodeMockDisabled:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeDispatchFailed:
		return http.StatusBadGateway
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to the "error" field of the JSON body.
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeValidation, dErrors.CodeInvariantViolation:
		return "validation_error"
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodeTimeout:
		return "timeout"
	case dErrors.CodeUnknownRequest:
		return "unknown_request"
	case dErrors.CodeAlreadyFulfilled:
		return "already_fulfilled"
	case dErrors.CodeMockDisabled:
		return "mock_disabled"
	case dErrors.CodeDispatchFailed:
		return "external_dispatch_failed"
	case dErrors.CodeInvalidResultCode:
		return "invalid_result_code"
	default:
		return "internal_error"
	}
}

// RequireCaller extracts the authenticated caller address from context.
// A missing caller behind the caller middleware is a wiring bug, not a client error.
func RequireCaller(ctx context.Context, logger *slog.Logger, requestID string) (common.Address, error) {
	caller, ok := requestcontext.Caller(ctx)
	if !ok {
		if logger != nil {
			logger.ErrorContext(ctx, "caller missing from context despite caller middleware",
				"request_id", requestID)
		}
		return common.Address{}, dErrors.New(dErrors.CodeInternal, "authentication context error")
	}
	return caller, nil
}
