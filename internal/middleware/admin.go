package middleware

import (
	"net/http"

	"giftpay/internal/domain"

	"github.com/gin-gonic/gin"
)

// AdminRequired gates the review, stocking and audit routes on the ADMIN
// role set by AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role.(string) != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}
