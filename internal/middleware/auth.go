package middleware

import (
	"strings"

	"github.com/chachabrian/uniride-backend/internal/models"
	"github.com/chachabrian/uniride-backend/pkg/utils"
	"github.com/gin-gonic/gin"
)

func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		// First try to get token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// If not found in header, try query parameter (for WebSocket)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "Authorization header or token query parameter required", "code": "unauthorized"})
			return
		}

		identity, err := tokens.ParseIdentity(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid token", "code": "unauthorized"})
			return
		}

		c.Set("userId", identity.UserID)
		c.Set("email", identity.Email)
		c.Set("gender", identity.Gender)
		c.Next()
	}
}

// UserID returns the authenticated user set by AuthMiddleware.
func UserID(c *gin.Context) uint {
	return c.GetUint("userId")
}

func Gender(c *gin.Context) models.Gender {
	if g, ok := c.Get("gender"); ok {
		if gender, ok := g.(models.Gender); ok {
			return gender
		}
	}
	return models.GenderUnspecified
}
