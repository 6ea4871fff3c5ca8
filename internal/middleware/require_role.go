// require_role.go
package middleware

import (
	"net/http"

	"replacement-request-service/internal/model"

	"github.com/gin-gonic/gin"
)

// RequireRole gates a route group to the given roles. AuthMiddleware must
// have run first.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := model.Role(c.GetString("userRole"))
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient privileges"})
		c.Abort()
	}
}
