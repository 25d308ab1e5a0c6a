package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/domain"
)

const ctxUserKey = "httpserver.user"

// authRequired validates the Authorization bearer token and stashes the
// authenticated user in the request context.
func (a *api) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing bearer token"})
			return
		}
		u, err := a.auth.Identify(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid or expired token"})
			return
		}
		c.Set(ctxUserKey, u)
		c.Next()
	}
}

// authOptional identifies the caller when a valid bearer token is present and
// otherwise lets the request through anonymously. Registration uses it: the
// endpoint is public, but an authenticated admin may grant elevated roles.
func (a *api) authOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if ok {
			if u, err := a.auth.Identify(c.Request.Context(), strings.TrimSpace(token)); err == nil {
				c.Set(ctxUserKey, u)
			}
		}
		c.Next()
	}
}

// requireRole rejects callers whose role is not in the allow list. Must run
// after authRequired.
func requireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
			return
		}
		for _, r := range roles {
			if u.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "insufficient permissions"})
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}
