package jwtauth

import (
	"net/http"
)

// SetAccessCookies writes the HttpOnly access token cookie and, when CSRF
// protection is on, the readable csrf cookie client scripts echo back in the
// double submit header.
func (i *Issuer) SetAccessCookies(w http.ResponseWriter, token string) error {
	return i.setCookies(w, token, i.cfg.AccessCookieName, i.cfg.AccessCSRFCookieName)
}

// SetRefreshCookies writes the HttpOnly refresh token cookie and its csrf
// counterpart.
func (i *Issuer) SetRefreshCookies(w http.ResponseWriter, token string) error {
	return i.setCookies(w, token, i.cfg.RefreshCookieName, i.cfg.RefreshCSRFCookieName)
}

// UnsetCookies expires every cookie this package sets, for logout.
func (i *Issuer) UnsetCookies(w http.ResponseWriter) {
	for _, name := range []string{
		i.cfg.AccessCookieName,
		i.cfg.RefreshCookieName,
		i.cfg.AccessCSRFCookieName,
		i.cfg.RefreshCSRFCookieName,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     i.cfg.CookiePath,
			MaxAge:   -1,
			Secure:   i.cfg.CookieSecure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (i *Issuer) setCookies(w http.ResponseWriter, token, tokenCookie, csrfCookie string) error {
	claims, err := i.codec.Decode(token)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     i.cfg.CookiePath,
		Expires:  claims.ExpiresAt,
		Secure:   i.cfg.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if i.cfg.csrfEnabled() && claims.CSRF != "" {
		// Deliberately not HttpOnly, the client script reads this value and
		// sends it back in the csrf header.
		http.SetCookie(w, &http.Cookie{
			Name:     csrfCookie,
			Value:    claims.CSRF,
			Path:     i.cfg.CookiePath,
			Expires:  claims.ExpiresAt,
			Secure:   i.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return nil
}
