package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/samudrayan/backend/pkg/errors"
	"github.com/samudrayan/backend/pkg/response"
)

// RequireRole allows the request through only when the authenticated user's
// role is one of the listed roles. Must run after Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, errors.ErrInsufficientScope)
			c.Abort()
			return
		}
		c.Next()
	}
}
