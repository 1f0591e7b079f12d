package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/reservations")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("/me", h.ListMine)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.POST("/:id/cancel", h.Cancel)

		// === Admin Routes ===
		group.GET("", adminMiddleware, h.List)
		group.POST("/:id/confirm", adminMiddleware, h.Confirm)
	}

	// Room-scoped reads live under /rooms but are handled here because
	// they are reservation queries.
	rooms := g.Group("/rooms")
	rooms.Use(authMiddleware)
	{
		rooms.GET("/:id/available-slots", h.AvailableSlots)
		rooms.GET("/:id/reservations", h.ByRoomAndDate)
	}
}
