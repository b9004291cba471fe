package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authpkg "github.com/mikios34/customer-admin/auth"
	authsvc "github.com/mikios34/customer-admin/auth/service"
)

// RequireAuth validates the Bearer (or cookie) token against the verifiers
// in order, places the identity into context and continues.
func RequireAuth(cookie string, verifiers ...authpkg.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := authsvc.BearerToken(c, cookie)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}

		for _, v := range verifiers {
			id, err := v.Verify(c.Request.Context(), token)
			if errors.Is(err, authpkg.ErrRevocationUnavailable) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
				return
			}
			if err != nil {
				continue
			}
			c.Set("user_id", id.UserID)
			c.Set("role", id.Role)
			if id.AdminID != "" {
				c.Set("admin_id", id.AdminID)
			}
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
	}
}

// RequireRoles ensures the authenticated principal has one of the allowed roles.
func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	roleSet := map[string]struct{}{}
	for _, r := range allowedRoles {
		roleSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetString("role")
		if _, ok := roleSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient role"})
			return
		}
		c.Next()
	}
}
