package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all API v1 routes. Report submission and sign-in
// are public; everything else sits behind the session middleware.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Public surface
	api.POST("/reports", h.submitReport)
	api.POST("/auth/login", h.login)
	api.GET("/system/health", h.healthCheck)

	// Responder dashboard surface
	authed := api.Group("")
	authed.Use(SessionAuthMiddleware(h.authService, h.logger))
	{
		authed.POST("/auth/logout", h.logout)
		authed.GET("/feed", h.getFeed)
		authed.GET("/feed/stream", h.streamFeed)
		authed.POST("/incidents/:id/claim", h.claimIncident)
		authed.POST("/incidents/:id/resolve", h.resolveIncident)
		authed.POST("/incidents/:id/investigate", h.investigateIncident)
		authed.PUT("/responders/me/location", h.updateLocation)
	}
}
