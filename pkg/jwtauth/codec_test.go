package jwtauth_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/turnstile/pkg/jwtauth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// fixedClock pins validation time so expiry tests don't depend on the wall
// clock.
func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func testConfig() jwtauth.Config {
	return jwtauth.Config{
		Secret:     []byte("test-secret-0123456789abcdef"),
		AccessTTL:  5 * time.Minute,
		RefreshTTL: 1 * time.Hour,
	}
}

func testClaims(typ jwtauth.TokenType, now time.Time) jwtauth.Claims {
	return jwtauth.Claims{
		JTI:        jwtauth.NewJTI(),
		Identity:   "alice",
		Type:       typ,
		IssuedAt:   now,
		NotBefore:  now,
		ExpiresAt:  now.Add(5 * time.Minute),
		UserClaims: map[string]any{},
	}
}

// TestCodecRoundTrip verifies that what Encode signs is exactly what Decode
// hands back, for both token types.
func TestCodecRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	cfg := testConfig()
	cfg.Clock = fixedClock(now)
	codec, err := jwtauth.NewCodec(cfg)
	require.NoError(t, err)

	t.Run("access token", func(t *testing.T) {
		claims := testClaims(jwtauth.TypeAccess, now)
		claims.Fresh = true
		claims.UserClaims = map[string]any{"role": "admin"}

		token, err := codec.Encode(claims)
		require.NoError(t, err)

		decoded, err := codec.Decode(token)
		require.NoError(t, err)
		require.Equal(t, claims.JTI, decoded.JTI)
		require.Equal(t, "alice", decoded.Identity)
		require.Equal(t, jwtauth.TypeAccess, decoded.Type)
		require.True(t, decoded.Fresh)
		require.Equal(t, map[string]any{"role": "admin"}, decoded.UserClaims)
		require.Equal(t, claims.ExpiresAt, decoded.ExpiresAt)
		require.Equal(t, claims.IssuedAt, decoded.IssuedAt)
	})

	t.Run("refresh token", func(t *testing.T) {
		claims := testClaims(jwtauth.TypeRefresh, now)
		claims.UserClaims = nil

		token, err := codec.Encode(claims)
		require.NoError(t, err)

		decoded, err := codec.Decode(token)
		require.NoError(t, err)
		require.Equal(t, jwtauth.TypeRefresh, decoded.Type)
		require.False(t, decoded.Fresh, "refresh tokens never carry freshness")
		require.Nil(t, decoded.UserClaims, "refresh tokens never carry custom claims")
	})

	t.Run("csrf value survives", func(t *testing.T) {
		claims := testClaims(jwtauth.TypeAccess, now)
		claims.CSRF = "double-submit-value"

		token, err := codec.Encode(claims)
		require.NoError(t, err)

		csrf, err := codec.CSRFToken(token)
		require.NoError(t, err)
		require.Equal(t, "double-submit-value", csrf)
	})
}

// TestCodecExpiry verifies that an expired token fails with the distinct
// ErrExpired, not the generic decode error.
func TestCodecExpiry(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	cfg := testConfig()
	cfg.Clock = fixedClock(now)
	codec, err := jwtauth.NewCodec(cfg)
	require.NoError(t, err)

	claims := testClaims(jwtauth.TypeAccess, now)
	token, err := codec.Encode(claims)
	require.NoError(t, err)

	t.Run("valid before expiry", func(t *testing.T) {
		_, err := codec.Decode(token)
		require.NoError(t, err)
	})

	t.Run("expired after ttl", func(t *testing.T) {
		late := testConfig()
		late.Clock = fixedClock(now.Add(6 * time.Minute))
		lateCodec, err := jwtauth.NewCodec(late)
		require.NoError(t, err)

		_, err = lateCodec.Decode(token)
		require.ErrorIs(t, err, jwtauth.ErrExpired)
	})

	t.Run("leeway tolerates small skew", func(t *testing.T) {
		late := testConfig()
		late.Leeway = 2 * time.Minute
		late.Clock = fixedClock(now.Add(6 * time.Minute))
		lateCodec, err := jwtauth.NewCodec(late)
		require.NoError(t, err)

		_, err = lateCodec.Decode(token)
		require.NoError(t, err)
	})

	t.Run("not yet valid before nbf", func(t *testing.T) {
		early := testConfig()
		early.Clock = fixedClock(now.Add(-1 * time.Minute))
		earlyCodec, err := jwtauth.NewCodec(early)
		require.NoError(t, err)

		_, err = earlyCodec.Decode(token)
		require.ErrorIs(t, err, jwtauth.ErrNotYetValid)
	})
}

// TestCodecRejectsTampering covers wrong secrets and downgraded algorithms.
func TestCodecRejectsTampering(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	cfg := testConfig()
	cfg.Clock = fixedClock(now)
	codec, err := jwtauth.NewCodec(cfg)
	require.NoError(t, err)

	token, err := codec.Encode(testClaims(jwtauth.TypeAccess, now))
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := testConfig()
		other.Secret = []byte("completely-different-secret!")
		other.Clock = fixedClock(now)
		otherCodec, err := jwtauth.NewCodec(other)
		require.NoError(t, err)

		_, err = otherCodec.Decode(token)
		require.ErrorIs(t, err, jwtauth.ErrDecode)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		hs512 := testConfig()
		hs512.Algorithm = "HS512"
		hs512.Clock = fixedClock(now)
		hs512Codec, err := jwtauth.NewCodec(hs512)
		require.NoError(t, err)

		// A token signed with HS256 must not pass an HS512-only verifier.
		_, err = hs512Codec.Decode(token)
		require.ErrorIs(t, err, jwtauth.ErrDecode)
	})
}

// TestCodecClaimShape verifies that a correctly signed token is still
// rejected when required claims are missing or mistyped.
func TestCodecClaimShape(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	secret := []byte("test-secret-0123456789abcdef")

	cfg := testConfig()
	cfg.Secret = secret
	cfg.Clock = fixedClock(now)
	codec, err := jwtauth.NewCodec(cfg)
	require.NoError(t, err)

	sign := func(t *testing.T, payload jwt.MapClaims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(secret)
		require.NoError(t, err)
		return token
	}

	exp := jwt.NewNumericDate(now.Add(5 * time.Minute))

	cases := []struct {
		name    string
		payload jwt.MapClaims
	}{
		{"missing jti", jwt.MapClaims{"identity": "alice", "type": "access", "fresh": false, "user_claims": map[string]any{}, "exp": exp}},
		{"missing identity", jwt.MapClaims{"jti": "abc", "type": "access", "fresh": false, "user_claims": map[string]any{}, "exp": exp}},
		{"unknown type", jwt.MapClaims{"jti": "abc", "identity": "alice", "type": "session", "exp": exp}},
		{"access without fresh", jwt.MapClaims{"jti": "abc", "identity": "alice", "type": "access", "user_claims": map[string]any{}, "exp": exp}},
		{"access without user_claims", jwt.MapClaims{"jti": "abc", "identity": "alice", "type": "access", "fresh": true, "exp": exp}},
		{"missing exp", jwt.MapClaims{"jti": "abc", "identity": "alice", "type": "refresh"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := codec.Decode(sign(t, tc.payload))
			require.ErrorIs(t, err, jwtauth.ErrDecode)
		})
	}

	t.Run("refresh needs neither fresh nor user_claims", func(t *testing.T) {
		token := sign(t, jwt.MapClaims{"jti": "abc", "identity": "alice", "type": "refresh", "exp": exp})
		claims, err := codec.Decode(token)
		require.NoError(t, err)
		require.Equal(t, jwtauth.TypeRefresh, claims.Type)
	})
}

// TestCodecEncodeRejectsUnserializable verifies encode fails loudly instead
// of minting a token with silently dropped claims.
func TestCodecEncodeRejectsUnserializable(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	cfg := testConfig()
	cfg.Clock = fixedClock(now)
	codec, err := jwtauth.NewCodec(cfg)
	require.NoError(t, err)

	t.Run("bad user claims", func(t *testing.T) {
		claims := testClaims(jwtauth.TypeAccess, now)
		claims.UserClaims = map[string]any{"ch": make(chan int)}

		_, err := codec.Encode(claims)
		require.ErrorIs(t, err, jwtauth.ErrEncode)
	})

	t.Run("bad identity", func(t *testing.T) {
		claims := testClaims(jwtauth.TypeAccess, now)
		claims.Identity = func() {}

		_, err := codec.Encode(claims)
		require.ErrorIs(t, err, jwtauth.ErrEncode)
	})

	t.Run("bad token type", func(t *testing.T) {
		claims := testClaims(jwtauth.TypeAccess, now)
		claims.Type = "session"

		_, err := codec.Encode(claims)
		require.ErrorIs(t, err, jwtauth.ErrEncode)
	})
}

// TestNewCodecConfig verifies constructor-time validation.
func TestNewCodecConfig(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		_, err := jwtauth.NewCodec(jwtauth.Config{})
		require.ErrorIs(t, err, jwtauth.ErrConfiguration)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		cfg := testConfig()
		cfg.Algorithm = "RS256"
		_, err := jwtauth.NewCodec(cfg)
		require.ErrorIs(t, err, jwtauth.ErrConfiguration)
	})
}

// TestNewJTIUnique spot-checks jti generation for uniqueness and ordering.
func TestNewJTIUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		jti := jwtauth.NewJTI()
		require.Len(t, jti, 26)
		require.False(t, seen[jti], "jti %s repeated", jti)
		seen[jti] = true
	}
}
