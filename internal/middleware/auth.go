package middleware

import (
	"net/http"
	"strings"

	authService "anoa.com/proofofgrind/internal/modules/auth/service"
	"anoa.com/proofofgrind/pkg/response"
	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	sessions authService.SessionService
}

func NewAuthMiddleware(sessions authService.SessionService) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {

		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Fallback to query parameter "token" (useful for WebSockets)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		addr, err := m.sessions.ParseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(response.ContextAddressKey, addr)
		c.Next()
	}
}
