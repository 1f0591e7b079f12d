package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marcyhel/room-booking-backend/internal/activitylog"
	"github.com/marcyhel/room-booking-backend/internal/pkg/response"
)

type Handler struct {
	service activitylog.Service
}

func NewHandler(service activitylog.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var q ListLogsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	q.Normalize()

	logs, total, err := h.service.List(c.Request.Context(), activitylog.Filter{
		Module:   q.Module,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]LogResponse, len(logs))
	for i, l := range logs {
		items[i] = NewLogResponse(l)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, q.Page, q.PageSize, total))
}

func (h *Handler) ListByUser(c *gin.Context) {
	userID := c.Param("id")
	if _, err := uuid.Parse(userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var q ListLogsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	q.Normalize()

	logs, total, err := h.service.ListByUser(c.Request.Context(), userID, activitylog.Filter{
		Module:   q.Module,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]LogResponse, len(logs))
	for i, l := range logs {
		items[i] = NewLogResponse(l)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, q.Page, q.PageSize, total))
}
