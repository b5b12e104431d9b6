// Package caller authenticates the account address acting on a request.
package caller

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"bridgeid/pkg/domain"
	"bridgeid/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// OwnerReader exposes the current contract owner.
type OwnerReader interface {
	Owner(ctx context.Context) (common.Address, error)
}

// Claims represents the claims we expect from the token validator.
type Claims struct {
	// Subject is the hex account address of the caller.
	Subject string
	JTI     string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireCaller validates the bearer token and stores the caller address in context.
func RequireCaller(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			addr, err := domain.ParseAddress(claims.Subject)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed subject",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, addr)))
		})
	}
}

// RequireOwner rejects callers other than the current owner before the handler runs.
// It must be mounted after RequireCaller.
func RequireOwner(owners OwnerReader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			addr, ok := requestcontext.Caller(ctx)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing caller")
				return
			}

			owner, err := owners.Owner(ctx)
			if err != nil {
				logger.ErrorContext(ctx, "failed to load owner",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to check ownership")
				return
			}

			if addr != owner {
				logger.WarnContext(ctx, "forbidden - caller is not the owner",
					"caller", addr.Hex(),
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Caller is not the owner")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
