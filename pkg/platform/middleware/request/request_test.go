package request

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"bridgeid/pkg/requestcontext"
)

func TestRequestID(t *testing.T) {
	capture := func(dst *string) http.Handler {
		return RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*dst = GetRequestID(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
	}

	t.Run("generates UUID when no header provided", func(t *testing.T) {
		var got string
		w := httptest.NewRecorder()
		capture(&got).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/config", nil))

		assert.Len(t, got, 36)
		assert.Equal(t, got, w.Header().Get("X-Request-ID"))
	})

	t.Run("reuses valid client ID", func(t *testing.T) {
		var got string
		req := httptest.NewRequest(http.MethodGet, "/config", nil)
		req.Header.Set("X-Request-ID", "oracle.cb_17")
		w := httptest.NewRecorder()
		capture(&got).ServeHTTP(w, req)

		assert.Equal(t, "oracle.cb_17", got)
	})

	t.Run("replaces oversized or unsafe IDs", func(t *testing.T) {
		for _, bad := range []string{strings.Repeat("a", MaxRequestIDLength+1), "id\nforged", "a b"} {
			var got string
			req := httptest.NewRequest(http.MethodGet, "/config", nil)
			req.Header.Set("X-Request-ID", bad)
			capture(&got).ServeHTTP(httptest.NewRecorder(), req)

			assert.NotEqual(t, bad, got)
			assert.Len(t, got, 36)
		}
	})
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(requestcontext.WithRequestID(req.Context(), "req-1"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLogger_SkipsHealthyProbes(t *testing.T) {
	var sb strings.Builder
	logger := slog.New(slog.NewJSONHandler(&sb, nil))
	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, sb.String())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/config", nil))
	assert.Contains(t, sb.String(), `"path":"/config"`)
}
