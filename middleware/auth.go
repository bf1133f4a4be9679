package middleware

import (
	"net/http"
	"os"
	"strings"

	"journal-editorial-api/config"
	"journal-editorial-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates JWT token
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get token from header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		// Check Bearer prefix
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		// Parse token
		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// Get claims
		claims, ok := token.Claims.(*Claims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		// Check if user still exists
		var user models.User
		if err := config.DB.Where("user_id = ? AND delete_at IS NULL", claims.UserID).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			c.Abort()
			return
		}

		// Set user info in context
		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)

		c.Next()
	}
}

// RequireRole checks that the user holds at least one user group carrying
// one of the given roles. Roles are not embedded in the token because group
// membership can change between requests.
func RequireRole(roleIDs ...models.RoleID) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "User not found"})
			c.Abort()
			return
		}

		var count int64
		err := config.DB.Model(&models.UserUserGroup{}).
			Joins("JOIN user_groups ON user_groups.user_group_id = user_user_groups.user_group_id").
			Where("user_user_groups.user_id = ? AND user_groups.role_id IN ?", userID, roleIDs).
			Count(&count).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check permissions"})
			c.Abort()
			return
		}

		if count == 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// HasRole reports whether the user holds one of the given roles in the
// context. Used by handlers that change behavior by role instead of
// refusing outright.
func HasRole(userID int, contextID int, roleIDs ...models.RoleID) (bool, error) {
	q := config.DB.Model(&models.UserUserGroup{}).
		Joins("JOIN user_groups ON user_groups.user_group_id = user_user_groups.user_group_id").
		Where("user_user_groups.user_id = ? AND user_groups.role_id IN ?", userID, roleIDs)
	if contextID != 0 {
		q = q.Where("user_groups.context_id = ?", contextID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
