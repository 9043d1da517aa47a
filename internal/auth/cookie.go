package auth

import (
	"net/http"
	"time"
)

const DefaultCookieName = "session"

// CookieOptions describes the session cookie transport.
type CookieOptions struct {
	Name   string
	Domain string
	// CrossSite selects SameSite=None (and forces Secure); otherwise SameSite=Lax.
	CrossSite bool
	Secure    bool
}

func (o CookieOptions) name() string {
	if o.Name == "" {
		return DefaultCookieName
	}
	return o.Name
}

func (o CookieOptions) cookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     o.name(),
		Value:    value,
		Path:     "/",
		Domain:   o.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   o.Secure || o.CrossSite,
		SameSite: http.SameSiteLaxMode,
	}
	if o.CrossSite {
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

// SetSessionCookie writes the signed token with a 7 day Max-Age.
func SetSessionCookie(w http.ResponseWriter, o CookieOptions, token string) {
	http.SetCookie(w, o.cookie(token, int(SessionTTL/time.Second)))
}

// ClearSessionCookie expires the cookie on the client. There is no server-side revocation.
func ClearSessionCookie(w http.ResponseWriter, o CookieOptions) {
	http.SetCookie(w, o.cookie("", -1))
}
