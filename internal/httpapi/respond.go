package httpapi

import (
	"net/http"

	"workforce-lodging/internal/apperr"
	"workforce-lodging/internal/identity"
	"workforce-lodging/pkg/logger"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to its status code and a safe message.
// 5xx causes are logged with the request logger and never sent to the client.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromGin(c).Error("request failed", "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": apperr.PublicMessage(err)})
}

func badJSON(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
}

// principal returns the caller. Routes using it sit behind an rbac guard,
// so a missing principal only happens on misconfigured routes.
func principal(c *gin.Context) (identity.Principal, bool) {
	p, ok := identity.FromContext(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return p, ok
}
