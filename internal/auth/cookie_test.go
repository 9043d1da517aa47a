package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSetSessionCookie_SameSite(t *testing.T) {
	w := httptest.NewRecorder()
	SetSessionCookie(w, CookieOptions{}, "tok")

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != "session" || c.Value != "tok" || c.Path != "/" {
		t.Fatalf("unexpected cookie %+v", c)
	}
	if !c.HttpOnly || c.Secure {
		t.Fatalf("expected HttpOnly and not Secure, got %+v", c)
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("expected SameSite=Lax, got %v", c.SameSite)
	}
	if c.MaxAge != 7*24*60*60 {
		t.Fatalf("expected 7 day max-age, got %d", c.MaxAge)
	}
}

func TestSetSessionCookie_CrossSiteForcesSecure(t *testing.T) {
	w := httptest.NewRecorder()
	SetSessionCookie(w, CookieOptions{Name: "wlp", Domain: "example.com", CrossSite: true}, "tok")

	c := w.Result().Cookies()[0]
	if c.Name != "wlp" || c.Domain != "example.com" {
		t.Fatalf("unexpected cookie %+v", c)
	}
	if !c.Secure || c.SameSite != http.SameSiteNoneMode {
		t.Fatalf("expected Secure SameSite=None, got %+v", c)
	}
}

func TestClearSessionCookie(t *testing.T) {
	w := httptest.NewRecorder()
	ClearSessionCookie(w, CookieOptions{Secure: true})

	c := w.Result().Cookies()[0]
	if c.Value != "" || c.MaxAge >= 0 {
		t.Fatalf("expected expired empty cookie, got %+v", c)
	}
	if !c.Secure || !c.HttpOnly {
		t.Fatalf("expected attributes preserved, got %+v", c)
	}
}
