package http

import (
	"time"

	"github.com/marcyhel/room-booking-backend/internal/activitylog"
	"github.com/marcyhel/room-booking-backend/internal/pkg/request"
)

// ListLogsRequest defines query parameters for listing activity logs.
type ListLogsRequest struct {
	request.ListParams
	Module string `form:"module" binding:"omitempty,oneof=account reservation"`
}

type LogResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Module    string    `json:"module"`
	Activity  string    `json:"activity"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

func NewLogResponse(l *activitylog.Log) LogResponse {
	return LogResponse{
		ID:        l.ID,
		UserID:    l.UserID,
		Module:    string(l.Module),
		Activity:  l.Activity,
		Details:   l.Details,
		CreatedAt: l.CreatedAt,
	}
}
