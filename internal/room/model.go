package room

import (
	"net/http"
	"time"

	"github.com/marcyhel/room-booking-backend/internal/pkg/apperror"
	"github.com/marcyhel/room-booking-backend/internal/schedule"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "room not found")
	ErrNameRequired      = apperror.New(http.StatusBadRequest, "room name is required")
	ErrNameTaken         = apperror.New(http.StatusConflict, "room name already in use")
	ErrInvalidTimeFormat = apperror.New(http.StatusBadRequest, "operating times must be in HH:MM format")
	ErrInvalidWindow     = apperror.New(http.StatusBadRequest, "start time must be before end time")
	ErrInvalidBlock      = apperror.New(http.StatusBadRequest, "time block must be a positive number of minutes")
)

// Room is a bookable room with its operating window and block size.
// StartTime/EndTime are wall-clock "HH:MM"; TimeBlock is in minutes.
type Room struct {
	ID        string // UUID
	Name      string
	StartTime string
	EndTime   string
	TimeBlock int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Grid derives the room's slot grid. It fails only if the stored schedule
// fields are inconsistent, which the service rules out on write.
func (r *Room) Grid() (schedule.Grid, error) {
	return schedule.NewGrid(r.StartTime, r.EndTime, r.TimeBlock)
}

// Filter defines parameters for listing rooms.
type Filter struct {
	Name string

	Page     int
	PageSize int
}
