package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/turnstile/internal/service"
	"github.com/aussiebroadwan/turnstile/pkg/httpx"
	"github.com/aussiebroadwan/turnstile/pkg/jwtauth"
	"github.com/aussiebroadwan/turnstile/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login. A successful login returns a fresh
// access token plus a refresh token, and additionally sets token cookies when
// the service is configured for cookie delivery.
type LoginHandler struct {
	UserService  *service.UserService
	TokenService *service.TokenService
	Issuer       *jwtauth.Issuer
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

// ServeHTTP godoc
//
//	@Summary		Login Endpoint
//	@Description	Authenticates a user with username/password (and a TOTP code when MFA is enabled)
//	@Description	and issues a fresh access token plus a refresh token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	service.TokenPair	"access_token, refresh_token"
//	@Failure		400		{object}	map[string]string	"msg"
//	@Failure		401		{object}	map[string]string	"msg"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	// 1. Parse the credentials
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.WriteMsg(w, http.StatusBadRequest, "username and password are required")
		return
	}

	// 2. Verify credentials
	user, err := h.UserService.Login(ctx, req.Username, req.Password, req.TOTPCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMFACodeRequired):
			httpx.WriteMsg(w, http.StatusUnauthorized, "mfa code required")
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteMsg(w, http.StatusUnauthorized, "bad username or password")
		default:
			log.Error("login failed", "err", err)
			httpx.WriteMsg(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	// 3. Mint the token pair. The access token is fresh because the caller
	// just proved primary credentials.
	pair, err := h.TokenService.Login(ctx, user.Username)
	if err != nil {
		log.Error("token issuance failed", "err", err, "user_id", user.ID)
		httpx.WriteMsg(w, http.StatusInternalServerError, "internal error")
		return
	}

	// 4. Deliver via cookies as well when configured
	if h.Issuer.UsesCookies() {
		if err := h.Issuer.SetAccessCookies(w, pair.AccessToken); err != nil {
			log.Error("set access cookies failed", "err", err)
			httpx.WriteMsg(w, http.StatusInternalServerError, "internal error")
			return
		}
		if err := h.Issuer.SetRefreshCookies(w, pair.RefreshToken); err != nil {
			log.Error("set refresh cookies failed", "err", err)
			httpx.WriteMsg(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	log.Info("login succeeded", "user_id", user.ID)
	httpx.WriteJSON(w, http.StatusOK, pair)
}
