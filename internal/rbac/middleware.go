package rbac

import (
	"net/http"

	"workforce-lodging/internal/identity"

	"github.com/gin-gonic/gin"
)

// RequireAuthenticated rejects anonymous requests with 401.
// Identity must already be attached by auth.AttachIdentity.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := identity.FromContext(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireRole allows access if the caller holds any of the allowed roles.
// Rules:
// - no principal is always 401, checked before the role
// - a principal outside allowed is 403
// - there is no bypass role; ADMIN must be listed explicitly
func RequireRole(allowed ...identity.Role) gin.HandlerFunc {
	allowedSet := make(map[identity.Role]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		p, ok := identity.FromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if _, ok := allowedSet[p.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}
