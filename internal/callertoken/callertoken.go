// Package callertoken issues and validates the bearer tokens that identify a caller's account address.
package callertoken

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"

	"bridgeid/pkg/domain"
	dErrors "bridgeid/pkg/domain-errors"
	"bridgeid/pkg/platform/middleware/caller"
)

// CallerClaims carries the caller address in the standard subject claim.
type CallerClaims struct {
	jwt.RegisteredClaims
}

// Service signs and verifies HS256 caller tokens.
type Service struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

func New(signingKey, issuer string) *Service {
	return &Service{signingKey: []byte(signingKey), issuer: issuer, now: time.Now}
}

// Issue mints a token for addr that expires after ttl.
func (s *Service) Issue(addr common.Address, ttl time.Duration) (string, error) {
	if domain.IsZeroAddress(addr) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "cannot issue a token for the zero address")
	}
	if ttl <= 0 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "token ttl must be positive")
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, CallerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   addr.Hex(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        hex.EncodeToString(b),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken verifies signature, expiry and issuer.
func (s *Service) ValidateToken(tokenString string) (*caller.Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &CallerClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*CallerClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &caller.Claims{Subject: claims.Subject, JTI: claims.ID}, nil
}

var _ caller.TokenValidator = (*Service)(nil)
