package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/resqnow/emergency-dispatch/internal/models"
	"github.com/resqnow/emergency-dispatch/internal/service"
)

const responderContextKey = "responder"

// SessionAuthMiddleware resolves the acting responder from a Bearer session
// token and stores it in the request context. Requests without a valid
// session get 401; a valid session whose user has no recognized responder
// role gets 403 and never reaches a dashboard handler.
func SessionAuthMiddleware(auth service.AuthService, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if token == "" {
			log.Warn("Session token missing from request")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session token required"})
			return
		}

		responder, err := auth.CurrentResponder(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrRoleUnrecognized) {
				log.WithError(err).Warn("Signed-in user has no recognized responder role")
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role not recognized"})
				return
			}
			log.WithError(err).Warn("Failed to resolve session")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}

		c.Set(responderContextKey, *responder)
		c.Next()
	}
}

// responderFromContext returns the responder the middleware resolved.
func responderFromContext(c *gin.Context) (models.ResponderContext, bool) {
	val, ok := c.Get(responderContextKey)
	if !ok {
		return models.ResponderContext{}, false
	}
	responder, ok := val.(models.ResponderContext)
	return responder, ok
}
