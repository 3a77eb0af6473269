package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/turnstile/internal/service"
	"github.com/aussiebroadwan/turnstile/pkg/httpx"
	"github.com/aussiebroadwan/turnstile/pkg/jwtauth"
	"github.com/aussiebroadwan/turnstile/pkg/slogx"
)

// TokensHandler groups the token ledger endpoints: listing stored tokens,
// looking one up by jti or by its encoded form, and flipping revocation
// status. All of them require the blocklist to be enabled.
type TokensHandler struct {
	TokenService *service.TokenService
}

type tokenListResponse struct {
	Tokens []jwtauth.StoredToken `json:"tokens"`
}

func (h *TokensHandler) ledgerEnabled(w http.ResponseWriter) bool {
	if h.TokenService.RevocationEnabled() {
		return true
	}
	httpx.WriteMsg(w, http.StatusServiceUnavailable, "token revocation is disabled")
	return false
}

// HandleListAll godoc
//
//	@Summary		List All Stored Tokens
//	@Description	Returns every token record in the revocation ledger. Expired records are pruned lazily.
//	@Tags			Tokens
//	@Produce		json
//	@Success		200	{object}	tokenListResponse	"tokens"
//	@Failure		503	{object}	map[string]string	"msg"
//	@Router			/v1/auth/tokens [get].
func (h *TokensHandler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.ledgerEnabled(w) {
		return
	}

	tokens, err := h.TokenService.AllTokens(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("list tokens failed", "err", err)
		httpx.WriteMsg(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenListResponse{Tokens: tokens})
}

// HandleListIdentity godoc
//
//	@Summary		List Tokens For An Identity
//	@Description	Returns the stored token records whose identity matches the path parameter.
//	@Tags			Tokens
//	@Produce		json
//	@Param			identity	path		string				true	"Token identity"
//	@Success		200			{object}	tokenListResponse	"tokens"
//	@Failure		503			{object}	map[string]string	"msg"
//	@Router			/v1/auth/tokens/{identity} [get].
func (h *TokensHandler) HandleListIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.ledgerEnabled(w) {
		return
	}

	identity := r.PathValue("identity")
	tokens, err := h.TokenService.TokensForIdentity(ctx, identity)
	if err != nil {
		slogx.FromContext(ctx).Error("list tokens failed", "err", err, "identity", identity)
		httpx.WriteMsg(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenListResponse{Tokens: tokens})
}

// HandleGet godoc
//
//	@Summary		Get Stored Token By ID
//	@Description	Returns one token record, including its revocation status and remaining store TTL.
//	@Tags			Tokens
//	@Produce		json
//	@Param			jti	path		string					true	"Token id"
//	@Success		200	{object}	jwtauth.StoredToken		"token, revoked, ttl_seconds"
//	@Failure		404	{object}	map[string]string		"msg"
//	@Failure		503	{object}	map[string]string		"msg"
//	@Router			/v1/auth/token/{jti} [get].
func (h *TokensHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.ledgerEnabled(w) {
		return
	}

	jti := r.PathValue("jti")
	stored, err := h.TokenService.StoredToken(ctx, jti)
	if err != nil {
		h.writeLookupError(w, r, err, jti)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stored)
}

// HandleGetEncoded godoc
//
//	@Summary		Get Stored Token By Encoded Form
//	@Description	Decodes and verifies the encoded token, then returns its ledger record.
//	@Tags			Tokens
//	@Produce		json
//	@Param			token	path		string					true	"Encoded JWT"
//	@Success		200		{object}	jwtauth.StoredToken		"token, revoked, ttl_seconds"
//	@Failure		404		{object}	map[string]string		"msg"
//	@Failure		422		{object}	map[string]string		"msg"
//	@Failure		503		{object}	map[string]string		"msg"
//	@Router			/v1/auth/token/encoded/{token} [get].
func (h *TokensHandler) HandleGetEncoded(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.ledgerEnabled(w) {
		return
	}

	encoded := r.PathValue("token")
	stored, err := h.TokenService.StoredTokenByEncoded(ctx, encoded)
	if err != nil {
		if errors.Is(err, jwtauth.ErrDecode) || errors.Is(err, jwtauth.ErrExpired) {
			httpx.WriteMsg(w, http.StatusUnprocessableEntity, "could not decode token")
			return
		}
		h.writeLookupError(w, r, err, "")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stored)
}

// HandleRevoke godoc
//
//	@Summary		Revoke Token
//	@Description	Marks the stored token revoked. Idempotent: revoking an already revoked token succeeds.
//	@Tags			Tokens
//	@Produce		json
//	@Param			jti	path		string				true	"Token id"
//	@Success		200	{object}	map[string]string	"msg"
//	@Failure		404	{object}	map[string]string	"msg"
//	@Failure		503	{object}	map[string]string	"msg"
//	@Router			/v1/auth/revoke/{jti} [post].
func (h *TokensHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.ledgerEnabled(w) {
		return
	}

	jti := r.PathValue("jti")
	if err := h.TokenService.RevokeJTI(ctx, jti); err != nil {
		h.writeLookupError(w, r, err, jti)
		return
	}
	slogx.FromContext(ctx).Info("token revoked", "jti", jti)
	httpx.WriteMsg(w, http.StatusOK, "token revoked")
}

// HandleUnrevoke godoc
//
//	@Summary		Unrevoke Token
//	@Description	Clears the revoked flag on a stored token, restoring it for its remaining lifetime.
//	@Tags			Tokens
//	@Produce		json
//	@Param			jti	path		string				true	"Token id"
//	@Success		200	{object}	map[string]string	"msg"
//	@Failure		404	{object}	map[string]string	"msg"
//	@Failure		503	{object}	map[string]string	"msg"
//	@Router			/v1/auth/unrevoke/{jti} [post].
func (h *TokensHandler) HandleUnrevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.ledgerEnabled(w) {
		return
	}

	jti := r.PathValue("jti")
	if err := h.TokenService.UnrevokeJTI(ctx, jti); err != nil {
		h.writeLookupError(w, r, err, jti)
		return
	}
	slogx.FromContext(ctx).Info("token unrevoked", "jti", jti)
	httpx.WriteMsg(w, http.StatusOK, "token unrevoked")
}

func (h *TokensHandler) writeLookupError(w http.ResponseWriter, r *http.Request, err error, jti string) {
	if errors.Is(err, jwtauth.ErrTokenNotFound) {
		httpx.WriteMsg(w, http.StatusNotFound, "could not find the specified token")
		return
	}
	slogx.FromContext(r.Context()).Error("token lookup failed", "err", err, "jti", jti)
	httpx.WriteMsg(w, http.StatusInternalServerError, "internal error")
}
