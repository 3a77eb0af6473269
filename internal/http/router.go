package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/turnstile/internal/service"
	"github.com/aussiebroadwan/turnstile/internal/store"
	"github.com/aussiebroadwan/turnstile/pkg/httpx"
	"github.com/aussiebroadwan/turnstile/pkg/jwtauth"
	"github.com/aussiebroadwan/turnstile/pkg/slogx"

	_ "github.com/aussiebroadwan/turnstile/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	auth         *jwtauth.Authenticator
	issuer       *jwtauth.Issuer
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store        store.Store
	TokenService *service.TokenService
	UserService  *service.UserService
}

func NewRouter(
	auth *jwtauth.Authenticator,
	issuer *jwtauth.Issuer,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		auth:         auth,
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTokens()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
//
//	@title			Turnstile Authentication Service API
//	@version		0.1.0
//	@description	Issues, refreshes and revokes JWT access/refresh tokens.
//	@description	Tokens are signed with a shared HMAC secret and individual
//	@description	tokens can be revoked before expiry through the blocklist.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/turnstile
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	login := &LoginHandler{
		UserService:  r.UserService,
		TokenService: r.TokenService,
		Issuer:       r.issuer,
	}

	// POST /login - strict rate limit (authentication attempts)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(login, httpx.RateLimitByIP(httpx.StrictLimit)),
	)

	// POST /refresh - requires a refresh token, strict rate limit
	refresh := &RefreshHandler{TokenService: r.TokenService, Issuer: r.issuer}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(r.auth.RequireRefresh(refresh), httpx.RateLimitByIP(httpx.StrictLimit)),
	)

	// POST /logout - revokes the presented access token
	logout := &LogoutHandler{TokenService: r.TokenService, Issuer: r.issuer}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(r.auth.RequireAccess(logout), httpx.RateLimitByIP(httpx.ModerateLimit)),
	)
}

func (r *Router) registerTokens() {
	h := &TokensHandler{TokenService: r.TokenService}

	// Token management endpoints. Deliberately unauthenticated in this demo
	// service, mirroring how an operator-only surface would sit behind a
	// separate gate; do not expose these on a public listener.
	moderate := httpx.RateLimitByIP(httpx.ModerateLimit)

	r.Mux.Handle("GET /v1/auth/tokens", httpx.Chain(http.HandlerFunc(h.HandleListAll), moderate))
	r.Mux.Handle("GET /v1/auth/tokens/{identity}", httpx.Chain(http.HandlerFunc(h.HandleListIdentity), moderate))
	r.Mux.Handle("GET /v1/auth/token/{jti}", httpx.Chain(http.HandlerFunc(h.HandleGet), moderate))
	r.Mux.Handle("GET /v1/auth/token/encoded/{token}", httpx.Chain(http.HandlerFunc(h.HandleGetEncoded), moderate))
	r.Mux.Handle("POST /v1/auth/revoke/{jti}", httpx.Chain(http.HandlerFunc(h.HandleRevoke), moderate))
	r.Mux.Handle("POST /v1/auth/unrevoke/{jti}", httpx.Chain(http.HandlerFunc(h.HandleUnrevoke), moderate))
}

func (r *Router) registerUsers() {
	me := &MeHandler{}
	r.Mux.Handle("GET /v1/me",
		httpx.Chain(r.auth.RequireAccess(me), httpx.RateLimitByIP(httpx.LenientLimit)),
	)

	// Password changes need a token minted directly from a login, not one
	// from the refresh flow.
	password := &PasswordHandler{UserService: r.UserService}
	r.Mux.Handle("PUT /v1/users/password",
		httpx.Chain(r.auth.RequireFresh(password), httpx.RateLimitByIP(httpx.ModerateLimit)),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
