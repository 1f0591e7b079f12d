package reservation

import (
	"context"
	"time"

	"github.com/marcyhel/room-booking-backend/internal/db"
	"github.com/marcyhel/room-booking-backend/internal/room"
)

// Canceller implements room.ReservationCanceller so that a room schedule
// edit can cascade into reservation cancellations inside the room update's
// transaction.
type Canceller struct {
	repo Repository
}

func NewCanceller(repo Repository) *Canceller {
	return &Canceller{repo: repo}
}

func (c *Canceller) CancelForScheduleChange(ctx context.Context, q db.Querier, roomID string, fromDate time.Time) ([]room.CancelledReservation, error) {
	repo := c.repo.WithQuerier(q)

	// Read phase: collect every target first, then batch the update, so the
	// cascade is a single write applied to a known id set.
	affected, err := repo.FindCancellableForRoom(ctx, roomID, fromDate)
	if err != nil {
		return nil, err
	}
	if len(affected) == 0 {
		return nil, nil
	}

	ids := make([]string, len(affected))
	cancelled := make([]room.CancelledReservation, len(affected))
	for i, res := range affected {
		ids[i] = res.ID
		cancelled[i] = room.CancelledReservation{ID: res.ID, UserID: res.UserID}
	}

	if _, err := repo.CancelMany(ctx, ids); err != nil {
		return nil, err
	}

	return cancelled, nil
}
