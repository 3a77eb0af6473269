package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/turnstile/internal/service"
	"github.com/aussiebroadwan/turnstile/internal/store"
	"github.com/aussiebroadwan/turnstile/pkg/httpx"
	"github.com/aussiebroadwan/turnstile/pkg/jwtauth"
	"github.com/aussiebroadwan/turnstile/pkg/slogx"
)

const minPasswordLength = 8

// PasswordHandler serves PUT /v1/users/password. The route is gated on a
// fresh access token, so a stolen refresh token alone is never enough to
// take over an account.
type PasswordHandler struct {
	UserService *service.UserService
}

type passwordRequest struct {
	NewPassword string `json:"new_password"`
}

// ServeHTTP godoc
//
//	@Summary		Change Password Endpoint
//	@Description	Changes the password of the user identified by the access token.
//	@Description	Requires a fresh access token, i.e. one minted by a direct login rather than the refresh flow.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		passwordRequest		true	"New password"
//	@Success		200		{object}	map[string]string	"msg"
//	@Failure		400		{object}	map[string]string	"msg"
//	@Failure		401		{object}	map[string]string	"msg"
//	@Security		BearerAuth
//	@Router			/v1/users/password [put].
func (h *PasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	claims, ok := jwtauth.ClaimsFromContext(ctx)
	if !ok {
		httpx.WriteMsg(w, http.StatusUnauthorized, "missing access token")
		return
	}
	username, ok := claims.Identity.(string)
	if !ok || username == "" {
		httpx.WriteMsg(w, http.StatusUnauthorized, "token carries no usable identity")
		return
	}

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		httpx.WriteMsg(w, http.StatusBadRequest,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
		return
	}

	if err := h.UserService.ChangePassword(ctx, username, req.NewPassword); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteMsg(w, http.StatusNotFound, "user not found")
			return
		}
		log.Error("change password failed", "err", err)
		httpx.WriteMsg(w, http.StatusInternalServerError, "internal error")
		return
	}

	log.Info("password changed", "username", username)
	httpx.WriteMsg(w, http.StatusOK, "password updated")
}
