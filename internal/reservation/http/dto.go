package http

import (
	"strings"
	"time"

	"github.com/marcyhel/room-booking-backend/internal/pkg/request"
	"github.com/marcyhel/room-booking-backend/internal/reservation"
	roomHttp "github.com/marcyhel/room-booking-backend/internal/room/http"
	userHttp "github.com/marcyhel/room-booking-backend/internal/user/http"
)

const dateLayout = "2006-01-02"

type CreateReservationRequest struct {
	RoomID string `json:"room_id" binding:"required,uuid"`
	Date   string `json:"date" binding:"required,datetime=2006-01-02"`
	Time   string `json:"time" binding:"required"`
}

// ListReservationsRequest defines query parameters for listing reservations.
type ListReservationsRequest struct {
	request.ListParams
	RoomID string `form:"room_id" binding:"omitempty,uuid"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
	Status string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	Date   string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	SortBy string `form:"sort_by" binding:"omitempty,oneof=date time status created_at"`
}

// AvailableSlotsRequest binds the date query for the slot listing.
type AvailableSlotsRequest struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

type ReservationResponse struct {
	ID        string           `json:"id"`
	Room      roomHttp.RoomTag `json:"room"`
	User      userHttp.UserTag `json:"user"`
	Date      string           `json:"date"`
	Time      string           `json:"time"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func NewReservationResponse(res *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:        res.ID,
		Room:      roomHttp.RoomTag{ID: res.RoomID, Name: res.RoomName},
		User:      userHttp.UserTag{ID: res.UserID, Name: fullName(res.UserName, res.UserLastName)},
		Date:      res.Date.Format(dateLayout),
		Time:      res.Time,
		Status:    string(res.Status),
		CreatedAt: res.CreatedAt,
		UpdatedAt: res.UpdatedAt,
	}
}

type AvailableSlotsResponse struct {
	AvailableSlots []string `json:"available_slots"`
}

func fullName(name, lastName string) string {
	return strings.TrimSpace(name + " " + lastName)
}
