package jwtauth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Extractor locates a candidate token in an inbound request, decodes it, and
// for cookie-carried tokens enforces the CSRF double submit pairing.
type Extractor struct {
	cfg   Config
	codec *Codec
}

// NewExtractor validates cfg and returns an extractor backed by its own
// codec.
func NewExtractor(cfg Config) (*Extractor, error) {
	codec, err := NewCodec(cfg)
	if err != nil {
		return nil, err
	}
	return &Extractor{cfg: cfg.withDefaults(), codec: codec}, nil
}

// Extract tries each configured location in order and returns the decoded
// claims of the first token found. Only a missing token falls through to the
// next location; malformed headers, CSRF mismatches and decode failures
// propagate immediately.
func (e *Extractor) Extract(r *http.Request, typ TokenType) (Claims, error) {
	for _, loc := range e.cfg.Locations {
		var (
			claims Claims
			err    error
		)
		switch loc {
		case LocationHeader:
			claims, err = e.fromHeader(r)
		case LocationCookie:
			claims, err = e.fromCookie(r, typ)
		default:
			return Claims{}, fmt.Errorf("%w: unknown token location %q", ErrConfiguration, loc)
		}

		if err == nil {
			return claims, nil
		}
		if !errors.Is(err, ErrMissingToken) {
			return Claims{}, err
		}
	}
	return Claims{}, ErrMissingToken
}

func (e *Extractor) fromHeader(r *http.Request) (Claims, error) {
	value := r.Header.Get(e.cfg.HeaderName)
	if value == "" {
		return Claims{}, fmt.Errorf("%w: %s header not set", ErrMissingToken, e.cfg.HeaderName)
	}

	parts := strings.Split(value, " ")
	var token string
	if e.cfg.HeaderScheme != "" {
		// Must be exactly "<scheme> <token>".
		if len(parts) != 2 || parts[0] != e.cfg.HeaderScheme {
			return Claims{}, fmt.Errorf("%w: expected %q header like %q",
				ErrMalformedHeader, e.cfg.HeaderName, e.cfg.HeaderScheme+" <token>")
		}
		token = parts[1]
	} else {
		if len(parts) != 1 {
			return Claims{}, fmt.Errorf("%w: expected bare token in %q header",
				ErrMalformedHeader, e.cfg.HeaderName)
		}
		token = parts[0]
	}

	return e.codec.Decode(token)
}

func (e *Extractor) fromCookie(r *http.Request, typ TokenType) (Claims, error) {
	cookie, err := r.Cookie(e.cfg.cookieNameFor(typ))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %s cookie not set", ErrMissingToken, e.cfg.cookieNameFor(typ))
	}

	claims, err := e.codec.Decode(cookie.Value)
	if err != nil {
		return Claims{}, err
	}

	if e.cfg.csrfEnabled() && e.cfg.csrfCheckedMethod(r.Method) {
		sent := r.Header.Get(e.cfg.csrfHeaderFor(typ))
		if err := checkCSRF(claims.CSRF, sent); err != nil {
			return Claims{}, err
		}
	}

	return claims, nil
}

// checkCSRF compares the token's embedded double submit value with the one
// sent alongside the request. Constant time, and absence on either side is a
// mismatch.
func checkCSRF(embedded, sent string) error {
	if embedded == "" {
		return fmt.Errorf("%w: token carries no csrf value", ErrCSRFMismatch)
	}
	if sent == "" {
		return fmt.Errorf("%w: csrf header not set", ErrCSRFMismatch)
	}
	if subtle.ConstantTimeCompare([]byte(embedded), []byte(sent)) != 1 {
		return ErrCSRFMismatch
	}
	return nil
}
