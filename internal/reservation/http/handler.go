package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/marcyhel/room-booking-backend/internal/auth"
	"github.com/marcyhel/room-booking-backend/internal/pkg/response"
	"github.com/marcyhel/room-booking-backend/internal/reservation"
	"github.com/marcyhel/room-booking-backend/internal/user"
)

type Handler struct {
	service reservation.Service
}

func NewHandler(service reservation.Service) *Handler {
	return &Handler{service: service}
}

// List is admin-only and supports the full filter set. Regular users read
// their own reservations through ListMine.
func (h *Handler) List(c *gin.Context) {
	var q ListReservationsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	q.Normalize()

	filter := reservation.Filter{
		UserID:    q.UserID,
		RoomID:    q.RoomID,
		Status:    q.Status,
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
	if q.Date != "" {
		d, _ := time.Parse(dateLayout, q.Date)
		filter.Date = &d
	}

	reservations, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ReservationResponse, len(reservations))
	for i, res := range reservations {
		items[i] = NewReservationResponse(res)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, q.Page, q.PageSize, total))
}

// ListMine returns the authenticated user's own reservations.
func (h *Handler) ListMine(c *gin.Context) {
	var q ListReservationsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	q.Normalize()

	filter := reservation.Filter{
		UserID:    auth.GetUserID(c),
		RoomID:    q.RoomID,
		Status:    q.Status,
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
	if q.Date != "" {
		d, _ := time.Parse(dateLayout, q.Date)
		filter.Date = &d
	}

	reservations, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ReservationResponse, len(reservations))
	for i, res := range reservations {
		items[i] = NewReservationResponse(res)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, q.Page, q.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	res, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Users may only read their own reservations.
	if res.UserID != auth.GetUserID(c) && auth.GetUserRole(c) != string(user.RoleAdmin) {
		response.Error(c, reservation.ErrPermissionDenied)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(res))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateReservationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	date, _ := time.Parse(dateLayout, body.Date)

	res, err := h.service.Create(c.Request.Context(), reservation.CreateRequest{
		UserID: userID,
		RoomID: body.RoomID,
		Date:   date,
		Time:   body.Time,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewReservationResponse(res))
}

// Confirm is admin-only: it settles the slot, cancelling every competing hold.
func (h *Handler) Confirm(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	res, err := h.service.Confirm(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(res))
}

func (h *Handler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	isAdmin := auth.GetUserRole(c) == string(user.RoleAdmin)

	res, err := h.service.Cancel(c.Request.Context(), id, auth.GetUserID(c), isAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(res))
}

// AvailableSlots lists the free grid slots of a room for one day.
func (h *Handler) AvailableSlots(c *gin.Context) {
	roomID := c.Param("id")
	if _, err := uuid.Parse(roomID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var q AvailableSlotsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required (YYYY-MM-DD)"})
		return
	}

	date, _ := time.Parse(dateLayout, q.Date)

	slots, err := h.service.AvailableSlots(c.Request.Context(), roomID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AvailableSlotsResponse{AvailableSlots: slots})
}

// ByRoomAndDate lists a room's reservations for one day.
func (h *Handler) ByRoomAndDate(c *gin.Context) {
	roomID := c.Param("id")
	if _, err := uuid.Parse(roomID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var q AvailableSlotsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required (YYYY-MM-DD)"})
		return
	}

	date, _ := time.Parse(dateLayout, q.Date)

	reservations, err := h.service.ListByRoomAndDate(c.Request.Context(), roomID, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ReservationResponse, len(reservations))
	for i, res := range reservations {
		items[i] = NewReservationResponse(res)
	}

	c.JSON(http.StatusOK, items)
}
