package middleware

import (
	"net/http"
	"strings"

	"learnez/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TokenValidator is satisfied by *utils.TokenVerifier.
type TokenValidator interface {
	ValidateToken(tokenString string) (*utils.Claims, error)
}

func JWTAuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated")
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(tokenString)
		if err != nil {
			utils.LoggerFrom(c).Debug("token rejected", "error", err)
			utils.RespondError(c, http.StatusUnauthorized, "Unauthenticated")
			c.Abort()
			return
		}

		c.Set(utils.ContextUserIDKey, claims.UserID)
		c.Set(utils.ContextRoleKey, claims.Role)
		c.Next()
	}
}

// bearerToken reads the Authorization header, falling back to the
// access_token query parameter for EventSource clients that cannot set
// headers.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if c.Request.Method == http.MethodGet {
		return strings.TrimSpace(c.Query("access_token"))
	}
	return ""
}
