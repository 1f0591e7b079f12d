package http

import (
	"time"

	"github.com/marcyhel/room-booking-backend/internal/pkg/request"
	"github.com/marcyhel/room-booking-backend/internal/room"
)

type CreateRoomRequest struct {
	Name      string `json:"name" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	TimeBlock int    `json:"time_block" binding:"required,min=1"`
}

// UpdateRoomRequest uses pointers so an omitted field leaves the room's
// current value untouched.
type UpdateRoomRequest struct {
	Name      *string `json:"name"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	TimeBlock *int    `json:"time_block" binding:"omitempty,min=1"`
}

// ListRoomsRequest defines query parameters for listing rooms.
type ListRoomsRequest struct {
	request.ListParams
	Name string `form:"name"`
}

type RoomResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	TimeBlock int       `json:"time_block"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewRoomResponse(rm *room.Room) RoomResponse {
	return RoomResponse{
		ID:        rm.ID,
		Name:      rm.Name,
		StartTime: rm.StartTime,
		EndTime:   rm.EndTime,
		TimeBlock: rm.TimeBlock,
		CreatedAt: rm.CreatedAt,
		UpdatedAt: rm.UpdatedAt,
	}
}

// RoomTag is the minimal room reference embedded in other responses.
type RoomTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
