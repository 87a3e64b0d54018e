package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/config"
	"github.com/shyamchaturvedi/OYO-INESTMENT-sub000/internal/auth"
)

// AuthRequired validates the bearer JWT and sets account id, email and role
// in the request context.
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		claims, err := auth.ParseToken(cfg, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set("account_id", claims.AccountID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// GetAccountID returns the authenticated account id (after AuthRequired).
func GetAccountID(c *gin.Context) uint {
	v, _ := c.Get("account_id")
	if v == nil {
		return 0
	}
	return v.(uint)
}
