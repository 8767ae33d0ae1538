package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"botspoof-chat/internal/domain"
	"botspoof-chat/internal/identity"
)

const authUserKey = "auth_user"

// AuthMiddleware resuelve el token portador hacia la identidad del usuario y
// la deja en el contexto. Sin identidad no hay conversación: el cliente debe
// redirigir a autenticación.
func AuthMiddleware(logger *zap.Logger, resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if resolver == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "identity resolver not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		user, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			logger.Warn("identity resolve failed", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

// boundUser recupera la identidad que dejó AuthMiddleware.
func boundUser(c *gin.Context) (domain.User, bool) {
	v, ok := c.Get(authUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := v.(domain.User)
	return user, ok
}
