package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/miniboss/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serveFrom(h http.Handler, target, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.IPKeyExtractor(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.IPKeyExtractor(req))
	})
}

func TestFormFieldKeyExtractor(t *testing.T) {
	form := url.Values{}
	form.Set("email", " Bob@Example.com ")

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	require.Equal(t, "bob@example.com", httpx.FormFieldKeyExtractor("email")(req))
	require.Equal(t, "", httpx.FormFieldKeyExtractor("missing")(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3})(okHandler)

		for i := range 3 {
			require.Equal(t, http.StatusOK, serveFrom(h, "/", "192.168.1.1:1").Code, "request %d", i+1)
		}

		rec := serveFrom(h, "/", "192.168.1.1:1")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1})(okHandler)

		require.Equal(t, http.StatusOK, serveFrom(h, "/", "192.168.1.1:1").Code)
		require.Equal(t, http.StatusTooManyRequests, serveFrom(h, "/", "192.168.1.1:1").Code)
		require.Equal(t, http.StatusOK, serveFrom(h, "/", "192.168.1.2:1").Code)
	})

	t.Run("ip and form field", func(t *testing.T) {
		h := httpx.RateLimitByIPAndFormField(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}, "email")(okHandler)

		require.Equal(t, http.StatusOK, serveFrom(h, "/?email=alice@example.com", "10.0.0.1:1").Code)
		require.Equal(t, http.StatusTooManyRequests, serveFrom(h, "/?email=alice@example.com", "10.0.0.1:1").Code)
		require.Equal(t, http.StatusOK, serveFrom(h, "/?email=bob@example.com", "10.0.0.1:1").Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		empty := func(*http.Request) string { return "" }
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}, empty)(okHandler)

		for range 3 {
			require.Equal(t, http.StatusOK, serveFrom(h, "/", "192.168.1.1:1").Code)
		}
	})
}

func TestRateLimitProfiles(t *testing.T) {
	for name, config := range map[string]httpx.RateLimitConfig{
		"strict":   httpx.StrictLimit,
		"moderate": httpx.ModerateLimit,
		"public":   httpx.PublicLimit,
	} {
		t.Run(name, func(t *testing.T) {
			require.Positive(t, config.RequestsPerWindow)
			require.Positive(t, config.Window)
			require.Positive(t, config.Burst)
		})
	}

	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.PublicLimit.RequestsPerWindow)
}
