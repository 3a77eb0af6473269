package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/turnstile/internal/service"
	"github.com/aussiebroadwan/turnstile/pkg/jwtauth"
	"github.com/aussiebroadwan/turnstile/pkg/kvstore"
	"github.com/stretchr/testify/require"
)

func newTokenService(t *testing.T) *service.TokenService {
	t.Helper()

	bl := &jwtauth.Blocklist{Store: kvstore.NewMemory()}
	issuer, err := jwtauth.NewIssuer(jwtauth.Config{
		Secret:     []byte("test-secret-0123456789abcdef"),
		AccessTTL:  5 * time.Minute,
		RefreshTTL: time.Hour,
	}, bl)
	require.NoError(t, err)

	return &service.TokenService{Issuer: issuer, Blocklist: bl}
}

// TestTokenServiceLogin verifies a login yields a fresh access token and a
// refresh token, both registered in the ledger.
func TestTokenServiceLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(t)

	pair, err := svc.Login(ctx, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := svc.Issuer.Codec().Decode(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, jwtauth.TypeAccess, access.Type)
	require.True(t, access.Fresh)

	refresh, err := svc.Issuer.Codec().Decode(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, jwtauth.TypeRefresh, refresh.Type)

	all, err := svc.AllTokens(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

// TestTokenServiceRefresh verifies refreshed tokens are never fresh.
func TestTokenServiceRefresh(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(t)

	token, err := svc.Refresh(ctx, "alice")
	require.NoError(t, err)

	claims, err := svc.Issuer.Codec().Decode(token)
	require.NoError(t, err)
	require.Equal(t, jwtauth.TypeAccess, claims.Type)
	require.False(t, claims.Fresh)
}

// TestTokenServiceRevocation walks revoke, lookup and unrevoke through the
// service layer.
func TestTokenServiceRevocation(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(t)

	pair, err := svc.Login(ctx, "alice")
	require.NoError(t, err)

	claims, err := svc.Issuer.Codec().Decode(pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeJTI(ctx, claims.JTI))

	stored, err := svc.StoredToken(ctx, claims.JTI)
	require.NoError(t, err)
	require.True(t, stored.Revoked)

	byEncoded, err := svc.StoredTokenByEncoded(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.True(t, byEncoded.Revoked)
	require.Equal(t, claims.JTI, byEncoded.Token.JTI)

	require.NoError(t, svc.UnrevokeJTI(ctx, claims.JTI))
	stored, err = svc.StoredToken(ctx, claims.JTI)
	require.NoError(t, err)
	require.False(t, stored.Revoked)

	t.Run("logout revokes by claims", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, claims))
		stored, err := svc.StoredToken(ctx, claims.JTI)
		require.NoError(t, err)
		require.True(t, stored.Revoked)
	})

	t.Run("unknown jti", func(t *testing.T) {
		require.ErrorIs(t, svc.RevokeJTI(ctx, "no-such-jti"), jwtauth.ErrTokenNotFound)
	})

	t.Run("garbage encoded token", func(t *testing.T) {
		_, err := svc.StoredTokenByEncoded(ctx, "not.a.token")
		require.ErrorIs(t, err, jwtauth.ErrDecode)
	})
}

// TestTokenServiceIdentityListing verifies the per-identity view.
func TestTokenServiceIdentityListing(t *testing.T) {
	ctx := context.Background()
	svc := newTokenService(t)

	_, err := svc.Login(ctx, "alice")
	require.NoError(t, err)
	for range 3 {
		_, err := svc.Login(ctx, "bob")
		require.NoError(t, err)
	}

	bobs, err := svc.TokensForIdentity(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bobs, 6, "three logins, an access and a refresh token each")

	alices, err := svc.TokensForIdentity(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, alices, 2)
}

// TestTokenServiceRevocationDisabled verifies the nil-blocklist degradation.
func TestTokenServiceRevocationDisabled(t *testing.T) {
	issuer, err := jwtauth.NewIssuer(jwtauth.Config{
		Secret: []byte("test-secret-0123456789abcdef"),
	}, nil)
	require.NoError(t, err)

	svc := &service.TokenService{Issuer: issuer}
	require.False(t, svc.RevocationEnabled())

	pair, err := svc.Login(context.Background(), "alice")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
}
