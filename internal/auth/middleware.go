package auth

import (
	"time"

	"workforce-lodging/internal/identity"

	"github.com/gin-gonic/gin"
)

// Gin context key holding the resolved identity.Principal, for handler convenience.
const GinPrincipalKey = "principal"

// Verifier is the part of Manager the middleware needs.
type Verifier interface {
	Verify(token string, now time.Time) (identity.Principal, error)
}

// AttachIdentity resolves the session cookie into a principal.
// It never aborts: a missing or invalid cookie just leaves the request
// anonymous, and rejection is left to the rbac guards so public routes stay reachable.
func AttachIdentity(v Verifier, cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return func(c *gin.Context) {
		raw, err := c.Cookie(cookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		p, err := v.Verify(raw, time.Now())
		if err != nil {
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(identity.WithPrincipal(c.Request.Context(), p))
		c.Set(GinPrincipalKey, p)
		c.Next()
	}
}
