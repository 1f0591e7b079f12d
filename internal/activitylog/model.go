package activitylog

import (
	"net/http"
	"time"

	"github.com/marcyhel/room-booking-backend/internal/pkg/apperror"
)

var ErrUserIDRequired = apperror.New(http.StatusBadRequest, "user id is required")

type Module string

const (
	ModuleAccount     Module = "account"
	ModuleReservation Module = "reservation"
)

// Log is one append-only activity record. Logs are never updated or deleted.
type Log struct {
	ID        string
	UserID    string
	Module    Module
	Activity  string
	Details   string
	CreatedAt time.Time
}

// Entry is the payload handed to the Recorder. The recorder fills in
// persistence details; callers only describe what happened.
type Entry struct {
	UserID   string
	Module   Module
	Activity string
	Details  string
}

// Filter defines parameters for listing activity logs.
type Filter struct {
	UserID string
	Module string

	Page     int
	PageSize int
}
