package caller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"bridgeid/pkg/requestcontext"
)

var (
	ownerAddr    = common.HexToAddress("0x5B38Da6a701c568545dCfcB03FcB875f56beddC4")
	strangerAddr = common.HexToAddress("0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2")
)

type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(tokenString string) (*Claims, error) {
	args := m.Called(tokenString)
	if claims := args.Get(0); claims != nil {
		return claims.(*Claims), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockOwnerReader struct {
	mock.Mock
}

func (m *MockOwnerReader) Owner(ctx context.Context) (common.Address, error) {
	args := m.Called(ctx)
	return args.Get(0).(common.Address), args.Error(1)
}

type recordingHandler struct {
	called bool
	caller common.Address
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.caller, _ = requestcontext.Caller(r.Context())
	w.WriteHeader(http.StatusOK)
}

type CallerMiddlewareSuite struct {
	suite.Suite
	validator *MockTokenValidator
	owners    *MockOwnerReader
	logger    *slog.Logger
	next      *recordingHandler
}

func TestCallerMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(CallerMiddlewareSuite))
}

func (s *CallerMiddlewareSuite) SetupTest() {
	s.validator = new(MockTokenValidator)
	s.owners = new(MockOwnerReader)
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.next = &recordingHandler{}
}

func (s *CallerMiddlewareSuite) TearDownTest() {
	s.validator.AssertExpectations(s.T())
	s.owners.AssertExpectations(s.T())
}

func (s *CallerMiddlewareSuite) serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/verifications", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func (s *CallerMiddlewareSuite) TestRequireCaller() {
	s.Run("missing header", func() {
		s.SetupTest()
		w := s.serve(RequireCaller(s.validator, s.logger)(s.next), "")
		s.Equal(http.StatusUnauthorized, w.Code)
		s.False(s.next.called)
	})

	s.Run("invalid token", func() {
		s.SetupTest()
		s.validator.On("ValidateToken", "bad").Return(nil, errors.New("expired"))
		w := s.serve(RequireCaller(s.validator, s.logger)(s.next), "Bearer bad")
		s.Equal(http.StatusUnauthorized, w.Code)
		s.False(s.next.called)
	})

	s.Run("subject is not an address", func() {
		s.SetupTest()
		s.validator.On("ValidateToken", "tok").Return(&Claims{Subject: "alice"}, nil)
		w := s.serve(RequireCaller(s.validator, s.logger)(s.next), "Bearer tok")
		s.Equal(http.StatusUnauthorized, w.Code)
		s.False(s.next.called)
	})

	s.Run("valid token puts caller in context", func() {
		s.SetupTest()
		s.validator.On("ValidateToken", "tok").Return(&Claims{Subject: strangerAddr.Hex()}, nil)
		w := s.serve(RequireCaller(s.validator, s.logger)(s.next), "Bearer tok")
		s.Equal(http.StatusOK, w.Code)
		s.True(s.next.called)
		s.Equal(strangerAddr, s.next.caller)
	})
}

func (s *CallerMiddlewareSuite) TestRequireOwner() {
	chain := func() http.Handler {
		return RequireCaller(s.validator, s.logger)(RequireOwner(s.owners, s.logger)(s.next))
	}

	s.Run("owner passes", func() {
		s.SetupTest()
		s.validator.On("ValidateToken", "tok").Return(&Claims{Subject: ownerAddr.Hex()}, nil)
		s.owners.On("Owner", mock.Anything).Return(ownerAddr, nil)
		w := s.serve(chain(), "Bearer tok")
		s.Equal(http.StatusOK, w.Code)
		s.True(s.next.called)
	})

	s.Run("non-owner is forbidden", func() {
		s.SetupTest()
		s.validator.On("ValidateToken", "tok").Return(&Claims{Subject: strangerAddr.Hex()}, nil)
		s.owners.On("Owner", mock.Anything).Return(ownerAddr, nil)
		w := s.serve(chain(), "Bearer tok")
		s.Equal(http.StatusForbidden, w.Code)
		s.False(s.next.called)
	})

	s.Run("owner lookup failure", func() {
		s.SetupTest()
		s.validator.On("ValidateToken", "tok").Return(&Claims{Subject: ownerAddr.Hex()}, nil)
		s.owners.On("Owner", mock.Anything).Return(common.Address{}, errors.New("db down"))
		w := s.serve(chain(), "Bearer tok")
		s.Equal(http.StatusInternalServerError, w.Code)
		s.False(s.next.called)
	})
}
