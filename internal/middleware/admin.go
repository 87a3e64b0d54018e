package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/domain"
)

// AdminRequired checks that the authenticated account has the ADMIN role.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role.(string) != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
