package jwtauth

import "errors"

// Every failure the core can produce is one of these sentinels (possibly
// wrapped with detail). The HTTP boundary discriminates with errors.Is and
// maps each kind to a response status, see StatusForError.
var (
	ErrMissingToken    = errors.New("jwtauth: missing token")
	ErrMalformedHeader = errors.New("jwtauth: malformed authorization header")
	ErrDecode          = errors.New("jwtauth: invalid token")
	ErrExpired         = errors.New("jwtauth: token expired")
	ErrNotYetValid     = errors.New("jwtauth: token not yet valid")
	ErrEncode          = errors.New("jwtauth: token encode failed")

	ErrWrongTokenType = errors.New("jwtauth: wrong token type")
	ErrFreshRequired  = errors.New("jwtauth: fresh token required")
	ErrCSRFMismatch   = errors.New("jwtauth: csrf double submit mismatch")

	ErrRevoked       = errors.New("jwtauth: token has been revoked")
	ErrTokenNotFound = errors.New("jwtauth: token not found")

	ErrConfiguration    = errors.New("jwtauth: invalid configuration")
	ErrStoreUnavailable = errors.New("jwtauth: blocklist store unavailable")
)
