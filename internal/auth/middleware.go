package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	principalKey = "principal"

	// ElevatedHeader is the privileged-access signal. Carrying a valid admin
	// token alone is not enough to see restricted content.
	ElevatedHeader = "X-Show-Restricted"
)

// Middleware resolves the request principal from an optional bearer token.
// Requests without credentials proceed as Anonymous; a present but invalid
// token is rejected.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		elevated := c.GetHeader(ElevatedHeader) == "1"

		header := c.GetHeader("Authorization")
		if header == "" {
			c.Set(principalKey, s.PrincipalFor("", elevated))
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must use Bearer scheme"})
			return
		}

		username, err := s.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(principalKey, s.PrincipalFor(username, elevated))
		c.Next()
	}
}

// FromContext returns the principal set by Middleware, or Anonymous.
func FromContext(c *gin.Context) Principal {
	if v, exists := c.Get(principalKey); exists {
		if p, ok := v.(Principal); ok {
			return p
		}
	}
	return Anonymous
}
