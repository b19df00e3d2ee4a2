package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/field-service/internal/application/service"
	"github.com/garyjia/field-service/internal/domain/entity"
)

const principalKey = "principal"

// authMiddleware resolves the bearer token into a Principal for downstream handlers
func authMiddleware(users service.UserService, logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			abortUnauthorized(c)
			return
		}

		principal, err := users.Authenticate(c.Request.Context(), token)
		if err != nil {
			if statusOf(err) != http.StatusUnauthorized {
				logger.Error("Authentication failed", "path", c.Request.URL.Path, "error", err)
			}
			abortUnauthorized(c)
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Response{Success: false, Error: unauthenticatedMessage})
}

// principalFrom returns the caller set by authMiddleware
func principalFrom(c *gin.Context) entity.Principal {
	v, _ := c.Get(principalKey)
	p, _ := v.(entity.Principal)
	return p
}
