package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func okProtocol(context.Context) (ProtocolInfo, error) {
	return ProtocolInfo{Instance: "0x1111", Owner: "0x5b38", Responder: "0x4b20", MockMode: true}, nil
}

func TestReadiness(t *testing.T) {
	t.Run("settings not attached", func(t *testing.T) {
		w := serve(New("test"), "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var body ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "down: not initialized", body.Checks["settings"])
	})

	t.Run("all up", func(t *testing.T) {
		h := New("test")
		h.SetProtocolReporter(okProtocol)
		h.RegisterCheck("postgres", func(context.Context) error { return nil })

		w := serve(h, "/health/ready")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("one dependency down", func(t *testing.T) {
		h := New("test")
		h.SetProtocolReporter(okProtocol)
		h.RegisterCheck("postgres", func(context.Context) error { return nil })
		h.RegisterCheck("redis", func(context.Context) error { return errors.New("connection refused") })

		w := serve(h, "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var body ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "not_ready", body.Status)
		assert.Equal(t, "up", body.Checks["postgres"])
		assert.Equal(t, "up", body.Checks["settings"])
		assert.Equal(t, "down: connection refused", body.Checks["redis"])
	})
}

func TestStatus(t *testing.T) {
	t.Run("includes protocol summary", func(t *testing.T) {
		h := New("test")
		h.SetProtocolReporter(okProtocol)

		w := serve(h, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		var body StatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotNil(t, body.Protocol)
		assert.True(t, body.Protocol.MockMode)
		assert.Equal(t, "test", body.Environment)
	})

	t.Run("omits protocol when settings fail", func(t *testing.T) {
		h := New("test")
		h.SetProtocolReporter(func(context.Context) (ProtocolInfo, error) {
			return ProtocolInfo{}, errors.New("settings not initialized")
		})

		w := serve(h, "/health")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "protocol")
	})
}

func TestLiveness(t *testing.T) {
	w := serve(New("test"), "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"alive"}`, w.Body.String())
}
