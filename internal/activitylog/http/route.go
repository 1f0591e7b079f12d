package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/logs")

	// === Admin Routes ===
	group.Use(authMiddleware, adminMiddleware)
	{
		group.GET("", h.List)
		group.GET("/user/:id", h.ListByUser)
	}
}
