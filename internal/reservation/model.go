package reservation

import (
	"net/http"
	"time"

	"github.com/marcyhel/room-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "reservation not found")
	ErrInvalidTime      = apperror.New(http.StatusBadRequest, "time must be in HH:MM format")
	ErrTimeOutOfWindow  = apperror.New(http.StatusBadRequest, "time is outside the room's operating hours")
	ErrTimeMisaligned   = apperror.New(http.StatusBadRequest, "time does not match the room's slot grid")
	ErrPastTime         = apperror.New(http.StatusBadRequest, "cannot create a reservation in the past")
	ErrSlotTaken        = apperror.New(http.StatusConflict, "time slot already booked")
	ErrNotPending       = apperror.New(http.StatusBadRequest, "reservation is not in pending status")
	ErrAlreadyCancelled = apperror.New(http.StatusBadRequest, "reservation is already cancelled")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCancelled
}

// Reservation is one hold on a room slot. Date is the calendar day
// (midnight, no time component); Time is the grid-aligned "HH:MM" start.
// Reservations are never deleted; cancellation is a terminal status.
type Reservation struct {
	ID           string // UUID
	Date         time.Time
	Time         string
	UserID       string
	UserName     string
	UserLastName string
	RoomID       string
	RoomName     string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Filter defines parameters for listing reservations.
type Filter struct {
	UserID string
	RoomID string
	Status string
	Date   *time.Time

	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
