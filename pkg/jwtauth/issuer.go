package jwtauth

import (
	"context"
	"time"
)

// Issuer mints access and refresh tokens and registers them with the
// blocklist when one is configured.
type Issuer struct {
	cfg   Config
	codec *Codec

	// Blocklist is optional; nil skips issuance-time registration.
	Blocklist *Blocklist
}

// NewIssuer validates cfg and returns an issuer. blocklist may be nil.
func NewIssuer(cfg Config, blocklist *Blocklist) (*Issuer, error) {
	codec, err := NewCodec(cfg)
	if err != nil {
		return nil, err
	}
	if blocklist != nil {
		if _, err := blocklist.store(); err != nil {
			return nil, err
		}
	}
	return &Issuer{cfg: cfg.withDefaults(), codec: codec, Blocklist: blocklist}, nil
}

// Codec returns the codec the issuer signs with, for callers that need to
// decode their own output (jti lookups, cookie csrf values).
func (i *Issuer) Codec() *Codec { return i.codec }

// UsesCookies reports whether the issuer's configuration delivers tokens via
// cookies, so callers know to set them on login and clear them on logout.
func (i *Issuer) UsesCookies() bool { return i.cfg.usesCookies() }

// CreateAccessToken mints an access token for principal. fresh should be
// true only when the principal just proved primary credentials; tokens
// minted through the refresh flow pass false and cannot clear the freshness
// gate later.
func (i *Issuer) CreateAccessToken(ctx context.Context, principal any, fresh bool) (string, error) {
	claims := i.baseClaims(TypeAccess)
	claims.Identity = i.identity(principal)
	claims.Fresh = fresh
	claims.UserClaims = i.userClaims(principal)
	return i.finish(ctx, claims)
}

// CreateRefreshToken mints a refresh token for principal. Refresh tokens
// carry neither freshness nor custom claims.
func (i *Issuer) CreateRefreshToken(ctx context.Context, principal any) (string, error) {
	claims := i.baseClaims(TypeRefresh)
	claims.Identity = i.identity(principal)
	return i.finish(ctx, claims)
}

func (i *Issuer) baseClaims(typ TokenType) Claims {
	// Truncate to the codec's time resolution so a decode of this token
	// compares equal to what we stored.
	now := i.cfg.Clock().UTC().Truncate(time.Second)

	claims := Claims{
		JTI:       NewJTI(),
		Type:      typ,
		IssuedAt:  now,
		NotBefore: now,
		ExpiresAt: now.Add(i.cfg.ttlFor(typ)),
	}
	if i.cfg.csrfEnabled() {
		claims.CSRF = newCSRFValue()
	}
	return claims
}

func (i *Issuer) identity(principal any) any {
	if i.cfg.IdentityFn != nil {
		return i.cfg.IdentityFn(principal)
	}
	return principal
}

func (i *Issuer) userClaims(principal any) map[string]any {
	if i.cfg.UserClaimsFn != nil {
		if claims := i.cfg.UserClaimsFn(principal); claims != nil {
			return claims
		}
	}
	return map[string]any{}
}

func (i *Issuer) finish(ctx context.Context, claims Claims) (string, error) {
	token, err := i.codec.Encode(claims)
	if err != nil {
		return "", err
	}
	if i.Blocklist != nil {
		if err := i.Blocklist.RegisterToken(ctx, claims, false); err != nil {
			return "", err
		}
	}
	return token, nil
}
