package jwtauth

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/turnstile/pkg/httpx"
	"github.com/aussiebroadwan/turnstile/pkg/slogx"
)

// ErrorHandler writes the response for a rejected request. Replace it on the
// Authenticator to control the wire shape; the default writes a small JSON
// body with the status from StatusForError.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// SetErrorHandler replaces the rejection writer used by the middleware.
func (a *Authenticator) SetErrorHandler(h ErrorHandler) { a.errorHandler = h }

// RequireAccess admits requests carrying a valid access token.
func (a *Authenticator) RequireAccess(next http.Handler) http.Handler {
	return a.require(TypeAccess, false, next)
}

// RequireFresh admits requests carrying a valid access token minted directly
// from a login, for the operations where a refreshed token isn't enough.
func (a *Authenticator) RequireFresh(next http.Handler) http.Handler {
	return a.require(TypeAccess, true, next)
}

// RequireRefresh admits requests carrying a valid refresh token.
func (a *Authenticator) RequireRefresh(next http.Handler) http.Handler {
	return a.require(TypeRefresh, false, next)
}

func (a *Authenticator) require(typ TokenType, fresh bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.Authenticate(r, typ, fresh)
		if err != nil {
			log := slogx.FromContext(r.Context())
			log.Warn("request rejected", "err", err, "required_type", string(typ))

			handler := a.errorHandler
			if handler == nil {
				handler = DefaultErrorHandler
			}
			handler(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// DefaultErrorHandler writes the rejection as JSON using StatusForError.
// Internal failures get a generic message so store details never leak.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusForError(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	httpx.WriteJSON(w, status, map[string]string{"msg": msg})
}

// StatusForError maps a rejection to a response status: 401 for the routine
// auth failures, 403 for CSRF mismatch, 404 for lookups by jti, 500 for
// configuration and store failures.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ErrCSRFMismatch):
		return http.StatusForbidden
	case errors.Is(err, ErrTokenNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrEncode):
		return http.StatusInternalServerError
	case errors.Is(err, ErrMissingToken),
		errors.Is(err, ErrMalformedHeader),
		errors.Is(err, ErrDecode),
		errors.Is(err, ErrExpired),
		errors.Is(err, ErrNotYetValid),
		errors.Is(err, ErrWrongTokenType),
		errors.Is(err, ErrRevoked),
		errors.Is(err, ErrFreshRequired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
