package service

import (
	"context"

	"github.com/aussiebroadwan/turnstile/pkg/jwtauth"
)

// TokenPair is what a successful login returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService fronts the issuer and blocklist for the HTTP layer.
type TokenService struct {
	Issuer    *jwtauth.Issuer
	Blocklist *jwtauth.Blocklist // nil when revocation is disabled
}

// Login mints a fresh access token and a refresh token for the identity.
// Fresh because the caller just proved primary credentials.
func (s *TokenService) Login(ctx context.Context, identity string) (TokenPair, error) {
	access, err := s.Issuer.CreateAccessToken(ctx, identity, true)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.Issuer.CreateRefreshToken(ctx, identity)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh mints a new non-fresh access token for the identity carried by an
// already-validated refresh token.
func (s *TokenService) Refresh(ctx context.Context, identity any) (string, error) {
	return s.Issuer.CreateAccessToken(ctx, identity, false)
}

// RevokeJTI / UnrevokeJTI flip the stored status for a token id.
func (s *TokenService) RevokeJTI(ctx context.Context, jti string) error {
	return s.Blocklist.Revoke(ctx, jti)
}

func (s *TokenService) UnrevokeJTI(ctx context.Context, jti string) error {
	return s.Blocklist.Unrevoke(ctx, jti)
}

// Logout revokes the presented token so it stops working before its natural
// expiry.
func (s *TokenService) Logout(ctx context.Context, claims jwtauth.Claims) error {
	return s.Blocklist.Revoke(ctx, claims.JTI)
}

// StoredToken looks up one record by jti.
func (s *TokenService) StoredToken(ctx context.Context, jti string) (jwtauth.StoredToken, error) {
	return s.Blocklist.GetToken(ctx, jti)
}

// StoredTokenByEncoded resolves an encoded token string to its record. The
// token must still verify; we only trust jtis we can authenticate.
func (s *TokenService) StoredTokenByEncoded(ctx context.Context, encoded string) (jwtauth.StoredToken, error) {
	jti, err := s.Issuer.Codec().GetJTI(encoded)
	if err != nil {
		return jwtauth.StoredToken{}, err
	}
	return s.Blocklist.GetToken(ctx, jti)
}

// TokensForIdentity lists the stored tokens belonging to one identity.
func (s *TokenService) TokensForIdentity(ctx context.Context, identity any) ([]jwtauth.StoredToken, error) {
	return s.Blocklist.TokensForIdentity(ctx, identity)
}

// AllTokens lists every stored token. O(store size), admin use only.
func (s *TokenService) AllTokens(ctx context.Context) ([]jwtauth.StoredToken, error) {
	return s.Blocklist.AllTokens(ctx)
}

// RevocationEnabled reports whether a blocklist is wired in at all.
func (s *TokenService) RevocationEnabled() bool { return s.Blocklist != nil }
