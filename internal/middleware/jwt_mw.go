package middleware

import (
	"net/http"
	"strings"

	"gym_backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	AuthUserKey = "authUser"
	AuthRoleKey = "authRole"

	// LegacyTokenHeader is accepted when no Authorization header is sent
	LegacyTokenHeader = "x-auth-token"
)

// JWTAuthMiddleware creates a middleware for JWT authentication
func JWTAuthMiddleware(jwtUtil *utils.JWTUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token, authorization denied"})
			return
		}

		claims, err := jwtUtil.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
			return
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Token is not valid"})
			return
		}

		c.Set(AuthUserKey, userID)
		c.Set(AuthRoleKey, claims.Role)

		c.Next()
	}
}

func extractToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", false
		}
		return parts[1], true
	}
	if token := strings.TrimSpace(c.GetHeader(LegacyTokenHeader)); token != "" {
		return token, true
	}
	return "", false
}

// AuthUserID returns the authenticated user's id set by JWTAuthMiddleware
func AuthUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(AuthUserKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
