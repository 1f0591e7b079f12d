package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marcyhel/room-booking-backend/internal/activitylog"
	"github.com/marcyhel/room-booking-backend/internal/db"
	"github.com/marcyhel/room-booking-backend/internal/room"
	"github.com/marcyhel/room-booking-backend/internal/schedule"
	"github.com/marcyhel/room-booking-backend/internal/user"
)

type CreateRequest struct {
	UserID string
	RoomID string
	Date   time.Time // calendar day, midnight
	Time   string    // "HH:MM"
}

type Service interface {
	// AvailableSlots returns the room's free grid slots for the given day.
	// Only confirmed reservations occupy slots; pending holds are resolved
	// at confirmation time, not at request time.
	AvailableSlots(ctx context.Context, roomID string, date time.Time) ([]string, error)

	// Create places a pending hold on a slot.
	Create(ctx context.Context, req CreateRequest) (*Reservation, error)

	// Confirm transitions a pending reservation to confirmed, cancelling
	// every competing pending or confirmed hold on the same slot in the
	// same transaction. First confirmation wins.
	Confirm(ctx context.Context, id string) (*Reservation, error)

	// Cancel transitions a reservation to cancelled. Only the owner or an
	// admin may cancel; an already-cancelled reservation is an error.
	Cancel(ctx context.Context, id, requestingUserID string, isAdmin bool) (*Reservation, error)

	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, filter Filter) ([]*Reservation, int, error)
	ListByRoomAndDate(ctx context.Context, roomID string, date time.Time) ([]*Reservation, error)
}

type service struct {
	repo  Repository
	rooms room.Service
	users user.Service
	tx    db.TxRunner
	logs  activitylog.Recorder

	now func() time.Time
	loc *time.Location
}

// NewService creates the reservation Service. The clock and timezone are
// injected so the past-slot check is deterministic under test.
func NewService(
	repo Repository,
	rooms room.Service,
	users user.Service,
	tx db.TxRunner,
	logs activitylog.Recorder,
	now func() time.Time,
	loc *time.Location,
) Service {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		repo:  repo,
		rooms: rooms,
		users: users,
		tx:    tx,
		logs:  logs,
		now:   now,
		loc:   loc,
	}
}

func (s *service) AvailableSlots(ctx context.Context, roomID string, date time.Time) ([]string, error) {
	rm, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	grid, err := rm.Grid()
	if err != nil {
		return nil, fmt.Errorf("room %s has an inconsistent schedule: %w", rm.ID, err)
	}

	confirmed, err := s.repo.FindByRoomAndDate(ctx, roomID, normalizeDate(date), []Status{StatusConfirmed}, "")
	if err != nil {
		return nil, err
	}

	times := make([]string, 0, len(confirmed))
	for _, res := range confirmed {
		times = append(times, res.Time)
	}

	return grid.AvailableSlots(times), nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Reservation, error) {
	rm, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, user.ErrInactiveUser
	}

	grid, err := rm.Grid()
	if err != nil {
		return nil, fmt.Errorf("room %s has an inconsistent schedule: %w", rm.ID, err)
	}
	if err := validateSlot(grid, req.Time); err != nil {
		return nil, err
	}

	date := normalizeDate(req.Date)

	// Reject slots that have already elapsed in the operating timezone.
	// Equal-to-now is allowed; only strictly past slots fail.
	if s.slotStart(date, req.Time).Before(s.now().In(s.loc)) {
		return nil, ErrPastTime
	}

	// Primary occupancy check. Pending holds deliberately do not block
	// others; contention between holds is resolved at confirmation time.
	confirmed, err := s.repo.FindByRoomAndDate(ctx, req.RoomID, date, []Status{StatusConfirmed}, "")
	if err != nil {
		return nil, err
	}
	if len(overlapping(grid, req.Time, confirmed)) > 0 {
		return nil, ErrSlotTaken
	}

	res := &Reservation{
		Date:   date,
		Time:   req.Time,
		UserID: req.UserID,
		RoomID: req.RoomID,
		Status: StatusPending,
	}

	// The storage-level unique index is the race-closing backstop for two
	// creates slipping past the check above; the repository reports it as
	// ErrSlotTaken.
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}

	s.logs.Record(activitylog.Entry{
		UserID:   req.UserID,
		Module:   activitylog.ModuleReservation,
		Activity: "reservation created",
		Details: fmt.Sprintf("reservation created for room %s on %s at %s",
			rm.Name, date.Format("2006-01-02"), req.Time),
	})

	return res, nil
}

func (s *service) Confirm(ctx context.Context, id string) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status != StatusPending {
		return nil, ErrNotPending
	}

	rm, err := s.rooms.GetByID(ctx, res.RoomID)
	if err != nil {
		return nil, err
	}
	grid, err := rm.Grid()
	if err != nil {
		return nil, fmt.Errorf("room %s has an inconsistent schedule: %w", rm.ID, err)
	}

	var displaced []*Reservation

	// Cascade and confirmation land together or not at all. A failure
	// partway leaves the target pending and every competitor untouched.
	err = s.tx.Within(ctx, func(ctx context.Context, q db.Querier) error {
		repo := s.repo.WithQuerier(q)

		competitors, err := repo.FindByRoomAndDate(ctx, res.RoomID, res.Date,
			[]Status{StatusPending, StatusConfirmed}, res.ID)
		if err != nil {
			return err
		}

		displaced = overlapping(grid, res.Time, competitors)
		if len(displaced) > 0 {
			ids := make([]string, len(displaced))
			for i, d := range displaced {
				ids[i] = d.ID
			}
			if _, err := repo.CancelMany(ctx, ids); err != nil {
				return err
			}
		}

		return repo.UpdateStatus(ctx, res.ID, StatusConfirmed)
	})
	if err != nil {
		return nil, err
	}

	for _, d := range displaced {
		s.logs.Record(activitylog.Entry{
			UserID:   d.UserID,
			Module:   activitylog.ModuleReservation,
			Activity: "reservation auto-cancelled by conflict",
			Details: fmt.Sprintf("reservation %s cancelled automatically because a competing reservation for the same slot was confirmed", d.ID),
		})
	}
	s.logs.Record(activitylog.Entry{
		UserID:   res.UserID,
		Module:   activitylog.ModuleReservation,
		Activity: "reservation confirmed",
		Details: fmt.Sprintf("reservation %s confirmed, %d conflicting reservations cancelled",
			res.ID, len(displaced)),
	})

	res.Status = StatusConfirmed
	return res, nil
}

func (s *service) Cancel(ctx context.Context, id, requestingUserID string, isAdmin bool) (*Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isAdmin && res.UserID != requestingUserID {
		return nil, ErrPermissionDenied
	}
	if res.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, err
	}

	s.logs.Record(activitylog.Entry{
		UserID:   res.UserID,
		Module:   activitylog.ModuleReservation,
		Activity: "reservation cancelled",
		Details:  fmt.Sprintf("reservation %s has been cancelled", res.ID),
	})

	res.Status = StatusCancelled
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Reservation, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListByRoomAndDate(ctx context.Context, roomID string, date time.Time) ([]*Reservation, error) {
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	return s.repo.FindByRoomAndDate(ctx, roomID, normalizeDate(date), nil, "")
}

// slotStart is the wall-clock instant the slot begins in the operating
// timezone.
func (s *service) slotStart(date time.Time, clock string) time.Time {
	minutes, err := schedule.ParseClock(clock)
	if err != nil {
		// validateSlot runs first; an unparsable time cannot reach here.
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, s.loc)
}

// overlapping returns the reservations whose slot interval intersects the
// slot beginning at clock. Same-room reservations are all one block long,
// but the check is a general interval test.
func overlapping(grid schedule.Grid, clock string, others []*Reservation) []*Reservation {
	start, err := schedule.ParseClock(clock)
	if err != nil {
		return nil
	}
	q := grid.SlotInterval(start)

	var out []*Reservation
	for _, o := range others {
		os, err := schedule.ParseClock(o.Time)
		if err != nil {
			continue
		}
		if q.Overlaps(grid.SlotInterval(os)) {
			out = append(out, o)
		}
	}
	return out
}

// normalizeDate strips any time component, keeping the calendar day.
func normalizeDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func validateSlot(grid schedule.Grid, clock string) error {
	err := grid.ValidateSlot(clock)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, schedule.ErrInvalidFormat):
		return ErrInvalidTime
	case errors.Is(err, schedule.ErrOutOfBounds):
		return ErrTimeOutOfWindow
	case errors.Is(err, schedule.ErrMisaligned):
		return ErrTimeMisaligned
	default:
		return err
	}
}
