package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/branchly/inventory-service/internal/auth"
	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Auth validates the bearer token, resolves the caller through the user
// resolver and attaches the auth.UserContext to the request context.
func Auth(secret string, resolver auth.UserResolver, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(c, "missing bearer token")
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			logger.Debug("token rejected", zap.Error(err))
			unauthorized(c, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(c, "invalid token claims")
			return
		}
		userID, _ := claims["sub"].(string)
		if userID == "" {
			unauthorized(c, "invalid token claims")
			return
		}

		user, err := resolver.ResolveUser(c.Request.Context(), userID)
		if err != nil {
			logger.Debug("user resolution failed", zap.String("user_id", userID), zap.Error(err))
			unauthorized(c, "unknown user")
			return
		}

		c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), user))
		c.Next()
	}
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   message,
	})
}
