package middleware

import (
	"net/http"
	"slices"

	"gym_backend/internal/model"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware allows the request through when the caller's role is one of allowedRoles.
// With no roles given any authenticated caller passes.
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(AuthRoleKey)
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated"})
			return
		}

		userRole, ok := roleVal.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated"})
			return
		}

		if len(allowedRoles) > 0 && !slices.Contains(allowedRoles, userRole) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden: You do not have the required role"})
			return
		}

		c.Next()
	}
}

// AdminMiddleware checks if the user is an admin
func AdminMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleAdmin)
}

// MemberMiddleware lets members and admins through
func MemberMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleMember, model.RoleAdmin)
}

// StrictlyMemberMiddleware lets only members through
func StrictlyMemberMiddleware() gin.HandlerFunc {
	return RoleMiddleware(model.RoleMember)
}
