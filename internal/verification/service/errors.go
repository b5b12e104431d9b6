package service

import (
	"errors"

	dErrors "bridgeid/pkg/domain-errors"
	"bridgeid/pkg/platform/sentinel"
)

// Sentinel errors for errors.Is checks by callers. Matching is by code.
var (
	ErrUnauthenticated = dErrors.New(dErrors.CodeUnauthorized, "caller is not authenticated")
	ErrNotOwner        = dErrors.New(dErrors.CodeForbidden, "caller is not the owner")
	ErrNotResponder    = dErrors.New(dErrors.CodeForbidden, "caller is not the configured responder")
	ErrMockDisabled    = dErrors.New(dErrors.CodeMockDisabled, "mock fulfillment is disabled")
	ErrUnknownRequest  = dErrors.New(dErrors.CodeUnknownRequest, "verification request not found")
	ErrAlreadyDone     = dErrors.New(dErrors.CodeAlreadyFulfilled, "verification request already fulfilled")
)

// wrapSettingsErr translates settings store failures. A missing record means
// the process started without bootstrapping, which is a wiring fault.
func wrapSettingsErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "settings not initialized")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
