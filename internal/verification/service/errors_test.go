package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "bridgeid/pkg/domain-errors"
	"bridgeid/pkg/platform/httputil"
)

// Unauthorized callers split into unauthenticated (401) and wrong caller (403).
func TestAccessErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   dErrors.Code
		status int
	}{
		{"missing caller", ErrUnauthenticated, dErrors.CodeUnauthorized, http.StatusUnauthorized},
		{"non-owner", ErrNotOwner, dErrors.CodeForbidden, http.StatusForbidden},
		{"non-responder", ErrNotResponder, dErrors.CodeForbidden, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, dErrors.CodeOf(tc.err))
			assert.Equal(t, tc.status, httputil.DomainCodeToHTTPStatus(dErrors.CodeOf(tc.err)))
		})
	}
}
