package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "bridgeid/pkg/domain-errors"
)

type tagRequest struct {
	Tag        string `json:"tag"`
	normalized bool
}

func (r *tagRequest) Normalize() { r.normalized = true }

func (r *tagRequest) Validate() error {
	if r.Tag == "" {
		return errors.New("tag is required")
	}
	return nil
}

type resultRequest struct {
	ResultCode *int64 `json:"result_code"`
}

func (r *resultRequest) Validate() error {
	if r.ResultCode == nil {
		return dErrors.New(dErrors.CodeInvalidResultCode, "result_code is required")
	}
	return nil
}

func decodeLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDecodeAndPrepare(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes and validates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(`{"tag":"0xabcd"}`))
		w := httptest.NewRecorder()

		got, ok := DecodeAndPrepare[tagRequest](w, req, decodeLogger(), ctx, "req-1")

		require.True(t, ok)
		assert.Equal(t, "0xabcd", got.Tag)
		assert.True(t, got.normalized)
	})

	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(`{tag`))
		w := httptest.NewRecorder()

		got, ok := DecodeAndPrepare[tagRequest](w, req, decodeLogger(), ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, got)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(`{"tag":"x","extra":1}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[tagRequest](w, req, decodeLogger(), ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("plain validation error becomes validation_error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/", bytes.NewBufferString(`{"tag":""}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[tagRequest](w, req, decodeLogger(), ctx, "req-1")

		assert.False(t, ok)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "validation_error", body["error"])
		assert.Contains(t, body["error_description"], "tag is required")
	})

	t.Run("domain error code from Validate is preserved", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[resultRequest](w, req, decodeLogger(), ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "invalid_result_code", body["error"])
	})
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		code   dErrors.Code
		status int
		body   string
	}{
		{dErrors.CodeUnknownRequest, http.StatusNotFound, "unknown_request"},
		{dErrors.CodeAlreadyFulfilled, http.StatusConflict, "already_fulfilled"},
		{dErrors.CodeMockDisabled, http.StatusConflict, "mock_disabled"},
		{dErrors.CodeForbidden, http.StatusForbidden, "forbidden"},
		{dErrors.CodeUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{dErrors.CodeDispatchFailed, http.StatusBadGateway, "external_dispatch_failed"},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, dErrors.New(tc.code, "x"))
			assert.Equal(t, tc.status, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.body, body["error"])
		})
	}

	t.Run("non-domain errors are opaque 500s", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("pq: connection reset"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection reset")
	})
}
