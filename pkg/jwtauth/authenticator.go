package jwtauth

import (
	"fmt"
	"net/http"
)

// Authenticator runs the per-request validation pass: extract (which
// decodes), type check, revocation check, freshness gate. Every rejection is
// terminal for the request and carries one of the sentinel errors.
type Authenticator struct {
	cfg       Config
	extractor *Extractor

	// Blocklist is optional; nil disables revocation checks entirely.
	Blocklist *Blocklist

	errorHandler ErrorHandler
}

// NewAuthenticator validates cfg and returns an authenticator. blocklist may
// be nil.
func NewAuthenticator(cfg Config, blocklist *Blocklist) (*Authenticator, error) {
	extractor, err := NewExtractor(cfg)
	if err != nil {
		return nil, err
	}
	if blocklist != nil {
		if _, err := blocklist.store(); err != nil {
			return nil, err
		}
	}
	return &Authenticator{cfg: cfg.withDefaults(), extractor: extractor, Blocklist: blocklist}, nil
}

// Authenticate validates the token carried by r against the required type
// and freshness. On success it returns the decoded claims; the caller binds
// them into the request scope. Store failures reject the request: we fail
// closed, never open.
func (a *Authenticator) Authenticate(r *http.Request, typ TokenType, requireFresh bool) (Claims, error) {
	claims, err := a.extractor.Extract(r, typ)
	if err != nil {
		return Claims{}, err
	}

	if claims.Type != typ {
		return Claims{}, fmt.Errorf("%w: only %s tokens can access this endpoint", ErrWrongTokenType, typ)
	}

	if a.Blocklist != nil {
		if err := a.Blocklist.CheckIfRevoked(r.Context(), claims); err != nil {
			return Claims{}, err
		}
	}

	if requireFresh && !claims.Fresh {
		return Claims{}, ErrFreshRequired
	}

	return claims, nil
}
