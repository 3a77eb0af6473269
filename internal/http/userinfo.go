package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/turnstile/pkg/httpx"
	"github.com/aussiebroadwan/turnstile/pkg/jwtauth"
)

// MeHandler serves GET /v1/me, echoing back what the presented access token
// says about its holder.
type MeHandler struct{}

type meResponse struct {
	Identity   any            `json:"identity"`
	UserClaims map[string]any `json:"user_claims"`
	JTI        string         `json:"jti"`
	Fresh      bool           `json:"fresh"`
	ExpiresAt  time.Time      `json:"expires_at"`
}

// ServeHTTP godoc
//
//	@Summary		Current Token Info
//	@Description	Returns the identity, custom claims, freshness and expiry carried by the access token used for the request.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	meResponse			"identity, user_claims, jti, fresh, expires_at"
//	@Failure		401	{object}	map[string]string	"msg"
//	@Security		BearerAuth
//	@Router			/v1/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := jwtauth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.WriteMsg(w, http.StatusUnauthorized, "missing access token")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, meResponse{
		Identity:   claims.Identity,
		UserClaims: claims.UserClaims,
		JTI:        claims.JTI,
		Fresh:      claims.Fresh,
		ExpiresAt:  claims.ExpiresAt,
	})
}
