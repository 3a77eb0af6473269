package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/turnstile/internal/service"
	"github.com/aussiebroadwan/turnstile/pkg/httpx"
	"github.com/aussiebroadwan/turnstile/pkg/jwtauth"
	"github.com/aussiebroadwan/turnstile/pkg/slogx"
)

// LogoutHandler serves POST /v1/auth/logout. It revokes the access token the
// request was made with and clears token cookies when cookie delivery is
// configured. The refresh token, if one exists, stays valid; clients that
// want a full logout revoke it separately.
type LogoutHandler struct {
	TokenService *service.TokenService
	Issuer       *jwtauth.Issuer
}

// ServeHTTP godoc
//
//	@Summary		Logout Endpoint
//	@Description	Revokes the presented access token so it can no longer be replayed.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	map[string]string	"msg"
//	@Failure		401	{object}	map[string]string	"msg"
//	@Security		BearerAuth
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := jwtauth.ClaimsFromContext(ctx)
	if !ok {
		httpx.WriteMsg(w, http.StatusUnauthorized, "missing access token")
		return
	}

	if !h.TokenService.RevocationEnabled() {
		// Nothing to revoke without a ledger; clearing cookies is the most
		// we can do.
		if h.Issuer.UsesCookies() {
			h.Issuer.UnsetCookies(w)
		}
		httpx.WriteMsg(w, http.StatusOK, "logged out")
		return
	}

	if err := h.TokenService.Logout(ctx, claims); err != nil {
		// A token the ledger never saw cannot be revoked, but from the
		// client's point of view it is logged out either way.
		if !errors.Is(err, jwtauth.ErrTokenNotFound) {
			log.Error("logout failed", "err", err, "jti", claims.JTI)
			httpx.WriteMsg(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	if h.Issuer.UsesCookies() {
		h.Issuer.UnsetCookies(w)
	}

	log.Info("logout", "jti", claims.JTI)
	httpx.WriteMsg(w, http.StatusOK, "access token revoked")
}
