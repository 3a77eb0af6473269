package jwtauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLocation names a place tokens may be presented in a request.
type TokenLocation string

const (
	LocationHeader TokenLocation = "header"
	LocationCookie TokenLocation = "cookie"
)

// Default token TTLs. Short access tokens, week-long refresh tokens, same
// reasoning as everywhere else: the refresh token is the thing you revoke.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Config carries everything the issuer, extractor and authenticator share.
// The zero value plus a Secret is usable; withDefaults fills in the rest.
type Config struct {
	// Secret signs and verifies every token. Required.
	Secret []byte

	// Algorithm is the HMAC signing algorithm name (HS256, HS384, HS512).
	// Defaults to HS256.
	Algorithm string

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Leeway allows small clock skew when validating exp/nbf.
	Leeway time.Duration

	// Locations is the ordered set of places to look for a token.
	// Defaults to header only.
	Locations []TokenLocation

	// HeaderName and HeaderScheme control header extraction. With a scheme
	// the header must be exactly "<scheme> <token>"; with an empty scheme it
	// must be the bare token. Defaults: "Authorization", "Bearer".
	HeaderName   string
	HeaderScheme string

	// Cookie names per token type.
	AccessCookieName  string // default "access_token_cookie"
	RefreshCookieName string // default "refresh_token_cookie"

	// CSRFProtect enables double submit checks for cookie-carried tokens.
	// Defaults to on whenever the cookie location is configured.
	CSRFProtect *bool

	// CSRF header and readable-cookie names per token type.
	AccessCSRFHeaderName  string // default "X-CSRF-Token"
	RefreshCSRFHeaderName string // default "X-CSRF-Token"
	AccessCSRFCookieName  string // default "csrf_access_token"
	RefreshCSRFCookieName string // default "csrf_refresh_token"

	// CSRFMethods is the set of HTTP methods that require the double submit
	// check. Defaults to the mutating methods.
	CSRFMethods []string

	// CookiePath and CookieSecure apply to the cookies the issuer sets.
	CookiePath   string // default "/"
	CookieSecure bool

	// IdentityFn maps an application principal to the identity claim at
	// issuance. Nil means the principal is used as-is.
	IdentityFn func(principal any) any

	// UserClaimsFn maps an application principal to the custom claims of an
	// access token. Nil means no custom claims.
	UserClaimsFn func(principal any) map[string]any

	// Clock is overridable for tests. Defaults to time.Now.
	Clock func() time.Time
}

var defaultCSRFMethods = []string{"POST", "PUT", "PATCH", "DELETE"}

// Validate checks the parts of the configuration that cannot be defaulted.
// Called by every constructor so misconfiguration surfaces at startup, not
// on the first request.
func (c Config) Validate() error {
	if len(c.Secret) == 0 {
		return fmt.Errorf("%w: secret must not be empty", ErrConfiguration)
	}
	if _, err := c.signingMethod(); err != nil {
		return err
	}
	for _, loc := range c.Locations {
		if loc != LocationHeader && loc != LocationCookie {
			return fmt.Errorf("%w: unknown token location %q", ErrConfiguration, loc)
		}
	}
	return nil
}

func (c Config) signingMethod() (jwt.SigningMethod, error) {
	switch c.Algorithm {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrConfiguration, c.Algorithm)
	}
}

func (c Config) withDefaults() Config {
	if c.Algorithm == "" {
		c.Algorithm = "HS256"
	}
	if c.AccessTTL <= 0 {
		c.AccessTTL = DefaultAccessTTL
	}
	if c.RefreshTTL <= 0 {
		c.RefreshTTL = DefaultRefreshTTL
	}
	if len(c.Locations) == 0 {
		c.Locations = []TokenLocation{LocationHeader}
	}
	if c.HeaderName == "" {
		c.HeaderName = "Authorization"
		if c.HeaderScheme == "" {
			c.HeaderScheme = "Bearer"
		}
	}
	if c.AccessCookieName == "" {
		c.AccessCookieName = "access_token_cookie"
	}
	if c.RefreshCookieName == "" {
		c.RefreshCookieName = "refresh_token_cookie"
	}
	if c.CSRFProtect == nil {
		enabled := c.usesCookies()
		c.CSRFProtect = &enabled
	}
	if c.AccessCSRFHeaderName == "" {
		c.AccessCSRFHeaderName = "X-CSRF-Token"
	}
	if c.RefreshCSRFHeaderName == "" {
		c.RefreshCSRFHeaderName = "X-CSRF-Token"
	}
	if c.AccessCSRFCookieName == "" {
		c.AccessCSRFCookieName = "csrf_access_token"
	}
	if c.RefreshCSRFCookieName == "" {
		c.RefreshCSRFCookieName = "csrf_refresh_token"
	}
	if len(c.CSRFMethods) == 0 {
		c.CSRFMethods = defaultCSRFMethods
	}
	if c.CookiePath == "" {
		c.CookiePath = "/"
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

func (c Config) usesCookies() bool {
	for _, loc := range c.Locations {
		if loc == LocationCookie {
			return true
		}
	}
	return false
}

func (c Config) csrfEnabled() bool {
	return c.CSRFProtect != nil && *c.CSRFProtect && c.usesCookies()
}

func (c Config) csrfCheckedMethod(method string) bool {
	for _, m := range c.CSRFMethods {
		if m == method {
			return true
		}
	}
	return false
}

func (c Config) ttlFor(typ TokenType) time.Duration {
	if typ == TypeRefresh {
		return c.RefreshTTL
	}
	return c.AccessTTL
}

func (c Config) cookieNameFor(typ TokenType) string {
	if typ == TypeRefresh {
		return c.RefreshCookieName
	}
	return c.AccessCookieName
}

func (c Config) csrfHeaderFor(typ TokenType) string {
	if typ == TypeRefresh {
		return c.RefreshCSRFHeaderName
	}
	return c.AccessCSRFHeaderName
}
