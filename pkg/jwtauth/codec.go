package jwtauth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Codec turns a claim set into a compact signed token string and back. It is
// stateless; one codec serves every request concurrently.
type Codec struct {
	cfg    Config
	method jwt.SigningMethod
}

// NewCodec validates cfg and returns a codec signing with its secret and
// algorithm.
func NewCodec(cfg Config) (*Codec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	method, err := cfg.signingMethod()
	if err != nil {
		return nil, err
	}
	return &Codec{cfg: cfg, method: method}, nil
}

// Encode serialises and signs claims. Fails with ErrEncode when the custom
// user claims or identity are not JSON-serializable.
func (c *Codec) Encode(claims Claims) (string, error) {
	if !claims.Type.Valid() {
		return "", fmt.Errorf("%w: invalid token type %q", ErrEncode, claims.Type)
	}
	if _, err := json.Marshal(claims.Identity); err != nil {
		return "", fmt.Errorf("%w: identity not json serializable: %v", ErrEncode, err)
	}

	payload := jwt.MapClaims{
		"jti":      claims.JTI,
		"identity": claims.Identity,
		"type":     string(claims.Type),
		"iat":      jwt.NewNumericDate(claims.IssuedAt),
		"nbf":      jwt.NewNumericDate(claims.NotBefore),
		"exp":      jwt.NewNumericDate(claims.ExpiresAt),
	}

	if claims.Type == TypeAccess {
		userClaims := claims.UserClaims
		if userClaims == nil {
			userClaims = map[string]any{}
		}
		if _, err := json.Marshal(userClaims); err != nil {
			return "", fmt.Errorf("%w: user claims not json serializable: %v", ErrEncode, err)
		}
		payload["fresh"] = claims.Fresh
		payload["user_claims"] = userClaims
	}

	if claims.CSRF != "" {
		payload["csrf"] = claims.CSRF
	}

	signed, err := jwt.NewWithClaims(c.method, payload).SignedString(c.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return signed, nil
}

// Decode verifies the signature and temporal claims of token and validates
// the claim shape. Expiry is reported as the distinct ErrExpired so callers
// can answer with a specific "token expired" response rather than a generic
// invalid-token one.
func (c *Codec) Decode(token string) (Claims, error) {
	raw := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, raw,
		func(t *jwt.Token) (any, error) { return c.cfg.Secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithLeeway(c.cfg.Leeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.cfg.Clock),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return Claims{}, ErrNotYetValid
	default:
		return Claims{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return claimsFromMap(raw)
}

// GetJTI decodes an encoded token and returns its unique id. Useful when a
// caller holds the token string but needs the blocklist key.
func (c *Codec) GetJTI(token string) (string, error) {
	claims, err := c.Decode(token)
	if err != nil {
		return "", err
	}
	return claims.JTI, nil
}

// CSRFToken decodes an encoded token and returns its embedded double submit
// value.
func (c *Codec) CSRFToken(token string) (string, error) {
	claims, err := c.Decode(token)
	if err != nil {
		return "", err
	}
	return claims.CSRF, nil
}

// claimsFromMap checks the shape of a verified payload and converts it to
// typed Claims. Everything here is about untrusted input: a token can carry
// a valid signature and still be missing claims we rely on.
func claimsFromMap(raw jwt.MapClaims) (Claims, error) {
	var claims Claims

	jti, ok := raw["jti"].(string)
	if !ok || jti == "" {
		return Claims{}, fmt.Errorf("%w: missing or invalid claim: jti", ErrDecode)
	}
	claims.JTI = jti

	identity, ok := raw["identity"]
	if !ok {
		return Claims{}, fmt.Errorf("%w: missing claim: identity", ErrDecode)
	}
	claims.Identity = identity

	typ, ok := raw["type"].(string)
	if !ok || !TokenType(typ).Valid() {
		return Claims{}, fmt.Errorf("%w: missing or invalid claim: type", ErrDecode)
	}
	claims.Type = TokenType(typ)

	if claims.Type == TypeAccess {
		fresh, ok := raw["fresh"].(bool)
		if !ok {
			return Claims{}, fmt.Errorf("%w: missing or invalid claim: fresh", ErrDecode)
		}
		claims.Fresh = fresh

		userClaims, ok := raw["user_claims"].(map[string]any)
		if !ok {
			return Claims{}, fmt.Errorf("%w: missing or invalid claim: user_claims", ErrDecode)
		}
		claims.UserClaims = userClaims
	}

	if csrf, ok := raw["csrf"].(string); ok {
		claims.CSRF = csrf
	}

	if exp, err := raw.GetExpirationTime(); err != nil || exp == nil {
		return Claims{}, fmt.Errorf("%w: missing or invalid claim: exp", ErrDecode)
	} else {
		claims.ExpiresAt = exp.Time.UTC()
	}
	if iat, err := raw.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time.UTC()
	}
	if nbf, err := raw.GetNotBefore(); err == nil && nbf != nil {
		claims.NotBefore = nbf.Time.UTC()
	}

	return claims, nil
}
