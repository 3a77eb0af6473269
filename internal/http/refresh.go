package http

import (
	"net/http"

	"github.com/aussiebroadwan/turnstile/internal/service"
	"github.com/aussiebroadwan/turnstile/pkg/httpx"
	"github.com/aussiebroadwan/turnstile/pkg/jwtauth"
	"github.com/aussiebroadwan/turnstile/pkg/slogx"
)

// RefreshHandler serves POST /v1/auth/refresh. The middleware has already
// verified a valid, unrevoked refresh token; this mints a new non-fresh
// access token for the same identity.
type RefreshHandler struct {
	TokenService *service.TokenService
	Issuer       *jwtauth.Issuer
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
}

// ServeHTTP godoc
//
//	@Summary		Token Refresh Endpoint
//	@Description	Exchanges a valid refresh token for a new access token.
//	@Description	Tokens minted here are non-fresh: they cannot pass endpoints that require a fresh login.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	refreshResponse		"access_token"
//	@Failure		401	{object}	map[string]string	"msg"
//	@Security		BearerAuth
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := jwtauth.ClaimsFromContext(ctx)
	if !ok {
		httpx.WriteMsg(w, http.StatusUnauthorized, "missing refresh token")
		return
	}

	token, err := h.TokenService.Refresh(ctx, claims.Identity)
	if err != nil {
		log.Error("refresh failed", "err", err, "jti", claims.JTI)
		httpx.WriteMsg(w, http.StatusInternalServerError, "internal error")
		return
	}

	if h.Issuer.UsesCookies() {
		if err := h.Issuer.SetAccessCookies(w, token); err != nil {
			log.Error("set access cookies failed", "err", err)
			httpx.WriteMsg(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	httpx.WriteJSON(w, http.StatusOK, refreshResponse{AccessToken: token})
}
