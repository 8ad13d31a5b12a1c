package middleware

import (
	"log"
	"net/http"
	"strings"

	"anoa.com/eventhub/internal/entity"
	userRepo "anoa.com/eventhub/internal/modules/user/repository"
	userService "anoa.com/eventhub/internal/modules/user/service"
	"anoa.com/eventhub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type AuthMiddleware struct {
	userRepo    userRepo.UserRepository
	tokens      *userService.TokenManager
	redisClient *redis.Client
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, tokens *userService.TokenManager, redisClient *redis.Client) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo:    userRepo,
		tokens:      tokens,
		redisClient: redisClient,
	}
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

		claims, err := m.tokens.Parse(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		if m.redisClient != nil && claims.ID != "" {
			revoked, err := m.redisClient.Exists(c.Request.Context(), userService.BlacklistKey(claims.ID)).Result()
			if err != nil {
				log.Printf("token blacklist lookup failed: %v", err)
			} else if revoked > 0 {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "token has been revoked"})
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.Subject)
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := response.GetUserID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			c.Abort()
			return
		}

		if user.Role.Name != entity.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}
