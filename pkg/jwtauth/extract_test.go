package jwtauth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/turnstile/pkg/jwtauth"
	"github.com/stretchr/testify/require"
)

func encodeToken(t *testing.T, cfg jwtauth.Config, claims jwtauth.Claims) string {
	t.Helper()
	codec, err := jwtauth.NewCodec(cfg)
	require.NoError(t, err)
	token, err := codec.Encode(claims)
	require.NoError(t, err)
	return token
}

// TestExtractFromHeader covers the default Authorization: Bearer transport.
func TestExtractFromHeader(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	cfg := testConfig()
	cfg.Clock = fixedClock(now)

	extractor, err := jwtauth.NewExtractor(cfg)
	require.NoError(t, err)

	token := encodeToken(t, cfg, testClaims(jwtauth.TypeAccess, now))

	t.Run("bearer token accepted", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.Header.Set("Authorization", "Bearer "+token)

		claims, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.NoError(t, err)
		require.Equal(t, "alice", claims.Identity)
	})

	t.Run("missing header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)

		_, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.ErrorIs(t, err, jwtauth.ErrMissingToken)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.Header.Set("Authorization", "Basic "+token)

		_, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.ErrorIs(t, err, jwtauth.ErrMalformedHeader)
	})

	t.Run("missing scheme", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.Header.Set("Authorization", token)

		_, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.ErrorIs(t, err, jwtauth.ErrMalformedHeader)
	})

	t.Run("trailing garbage", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.Header.Set("Authorization", "Bearer "+token+" extra")

		_, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.ErrorIs(t, err, jwtauth.ErrMalformedHeader)
	})

	t.Run("garbage token", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.Header.Set("Authorization", "Bearer not.a.token")

		_, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.ErrorIs(t, err, jwtauth.ErrDecode)
	})
}

// TestExtractBareHeader covers a custom header configured without a scheme,
// where the header value is the token itself.
func TestExtractBareHeader(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	cfg := testConfig()
	cfg.Clock = fixedClock(now)
	cfg.HeaderName = "X-API-Token"

	extractor, err := jwtauth.NewExtractor(cfg)
	require.NoError(t, err)

	token := encodeToken(t, cfg, testClaims(jwtauth.TypeAccess, now))

	t.Run("bare token accepted", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.Header.Set("X-API-Token", token)

		claims, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.NoError(t, err)
		require.Equal(t, "alice", claims.Identity)
	})

	t.Run("scheme prefix rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.Header.Set("X-API-Token", "Bearer "+token)

		_, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.ErrorIs(t, err, jwtauth.ErrMalformedHeader)
	})
}

func cookieConfig(now time.Time) jwtauth.Config {
	cfg := testConfig()
	cfg.Clock = fixedClock(now)
	cfg.Locations = []jwtauth.TokenLocation{jwtauth.LocationCookie}
	return cfg
}

// TestExtractFromCookie covers cookie transport with the CSRF double submit
// check.
func TestExtractFromCookie(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	cfg := cookieConfig(now)

	extractor, err := jwtauth.NewExtractor(cfg)
	require.NoError(t, err)

	claims := testClaims(jwtauth.TypeAccess, now)
	claims.CSRF = "csrf-double-submit"
	token := encodeToken(t, cfg, claims)

	t.Run("GET needs no csrf header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.AddCookie(&http.Cookie{Name: "access_token_cookie", Value: token})

		got, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.NoError(t, err)
		require.Equal(t, claims.JTI, got.JTI)
	})

	t.Run("POST with matching csrf header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/protected", nil)
		r.AddCookie(&http.Cookie{Name: "access_token_cookie", Value: token})
		r.Header.Set("X-CSRF-Token", "csrf-double-submit")

		_, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.NoError(t, err)
	})

	t.Run("POST without csrf header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/protected", nil)
		r.AddCookie(&http.Cookie{Name: "access_token_cookie", Value: token})

		_, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.ErrorIs(t, err, jwtauth.ErrCSRFMismatch)
	})

	t.Run("POST with wrong csrf header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/protected", nil)
		r.AddCookie(&http.Cookie{Name: "access_token_cookie", Value: token})
		r.Header.Set("X-CSRF-Token", "guessed-value")

		_, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.ErrorIs(t, err, jwtauth.ErrCSRFMismatch)
	})

	t.Run("missing cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)

		_, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.ErrorIs(t, err, jwtauth.ErrMissingToken)
	})

	t.Run("refresh cookie uses its own name", func(t *testing.T) {
		refreshClaims := testClaims(jwtauth.TypeRefresh, now)
		refreshClaims.UserClaims = nil
		refreshToken := encodeToken(t, cfg, refreshClaims)

		r := httptest.NewRequest(http.MethodGet, "/refresh", nil)
		r.AddCookie(&http.Cookie{Name: "refresh_token_cookie", Value: refreshToken})

		got, err := extractor.Extract(r, jwtauth.TypeRefresh)
		require.NoError(t, err)
		require.Equal(t, jwtauth.TypeRefresh, got.Type)
	})
}

// TestExtractCSRFDisabled verifies the double submit check can be opted out
// even with cookie transport.
func TestExtractCSRFDisabled(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	cfg := cookieConfig(now)
	off := false
	cfg.CSRFProtect = &off

	extractor, err := jwtauth.NewExtractor(cfg)
	require.NoError(t, err)

	token := encodeToken(t, cfg, testClaims(jwtauth.TypeAccess, now))

	r := httptest.NewRequest(http.MethodPost, "/protected", nil)
	r.AddCookie(&http.Cookie{Name: "access_token_cookie", Value: token})

	_, err = extractor.Extract(r, jwtauth.TypeAccess)
	require.NoError(t, err)
}

// TestExtractLocationOrder verifies that the first configured location wins
// and that only a genuinely missing token falls through to the next one.
func TestExtractLocationOrder(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	cfg := testConfig()
	cfg.Clock = fixedClock(now)
	cfg.Locations = []jwtauth.TokenLocation{jwtauth.LocationHeader, jwtauth.LocationCookie}

	extractor, err := jwtauth.NewExtractor(cfg)
	require.NoError(t, err)

	headerClaims := testClaims(jwtauth.TypeAccess, now)
	cookieClaims := testClaims(jwtauth.TypeAccess, now)
	headerToken := encodeToken(t, cfg, headerClaims)
	cookieToken := encodeToken(t, cfg, cookieClaims)

	t.Run("header wins when both present", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.Header.Set("Authorization", "Bearer "+headerToken)
		r.AddCookie(&http.Cookie{Name: "access_token_cookie", Value: cookieToken})

		got, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.NoError(t, err)
		require.Equal(t, headerClaims.JTI, got.JTI)
	})

	t.Run("cookie used when header absent", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.AddCookie(&http.Cookie{Name: "access_token_cookie", Value: cookieToken})

		got, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.NoError(t, err)
		require.Equal(t, cookieClaims.JTI, got.JTI)
	})

	t.Run("malformed header does not fall through", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/protected", nil)
		r.Header.Set("Authorization", "Basic nope")
		r.AddCookie(&http.Cookie{Name: "access_token_cookie", Value: cookieToken})

		_, err := extractor.Extract(r, jwtauth.TypeAccess)
		require.ErrorIs(t, err, jwtauth.ErrMalformedHeader)
	})
}
