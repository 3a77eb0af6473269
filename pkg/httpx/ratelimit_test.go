package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/turnstile/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// TestRateLimitByIP verifies the bucket empties after the configured burst
// and that distinct clients don't share one.
func TestRateLimitByIP(t *testing.T) {
	limit := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
	handler := httpx.RateLimitByIP(limit)(okHandler())

	send := func(addr string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
		r.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	t.Run("burst admitted then limited", func(t *testing.T) {
		for i := range 3 {
			require.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code, "request %d", i)
		}

		w := send("10.0.0.1:1234")
		require.Equal(t, http.StatusTooManyRequests, w.Code)
		require.NotEmpty(t, w.Header().Get("Retry-After"))
		require.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	})

	t.Run("other clients unaffected", func(t *testing.T) {
		require.Equal(t, http.StatusOK, send("10.0.0.2:1234").Code)
	})
}

// TestIPKeyExtractor pins the proxy header precedence.
func TestIPKeyExtractor(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr only", "192.0.2.7:5050", nil, "192.0.2.7"},
		{"x-forwarded-for wins", "192.0.2.7:5050", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"first forwarded hop", "192.0.2.7:5050", map[string]string{"X-Forwarded-For": "203.0.113.9, 198.51.100.2"}, "203.0.113.9"},
		{"x-real-ip fallback", "192.0.2.7:5050", map[string]string{"X-Real-IP": "203.0.113.10"}, "203.0.113.10"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			require.Equal(t, tc.want, httpx.IPKeyExtractor(r))
		})
	}
}

// TestRateLimitKeylessPassThrough verifies a request with no attributable
// key is admitted rather than pooled into a shared bucket.
func TestRateLimitKeylessPassThrough(t *testing.T) {
	limit := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
	handler := httpx.RateLimit(limit, func(*http.Request) string { return "" })(okHandler())

	for range 5 {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code)
	}
}
