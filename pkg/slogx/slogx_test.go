package slogx_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/miniboss/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		require.Equal(t, want, slogx.ParseLevel(in), "level %q", in)
	}
}

func TestFromContext_Default(t *testing.T) {
	require.Equal(t, slog.Default(), slogx.FromContext(t.Context()))
}

func TestHTTPMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var inner *slog.Logger
	h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = slogx.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates request id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

		require.NotNil(t, inner)
		require.NotEqual(t, slog.Default(), inner)
		require.NotEmpty(t, rec.Header().Get(slogx.RequestIDHeader))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		require.Equal(t, "http_request", entry["msg"])
		require.EqualValues(t, http.StatusTeapot, entry["status"])
		require.Equal(t, rec.Header().Get(slogx.RequestIDHeader), entry["req_id"])
	})

	t.Run("propagates request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/livez", nil)
		req.Header.Set(slogx.RequestIDHeader, "abc123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, "abc123", rec.Header().Get(slogx.RequestIDHeader))
		require.Contains(t, buf.String(), `"req_id":"abc123"`)
	})
}
