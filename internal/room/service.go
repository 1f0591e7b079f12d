package room

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marcyhel/room-booking-backend/internal/activitylog"
	"github.com/marcyhel/room-booking-backend/internal/db"
	"github.com/marcyhel/room-booking-backend/internal/schedule"
)

// CancelledReservation identifies a reservation cancelled by a schedule change.
type CancelledReservation struct {
	ID     string
	UserID string
}

// ReservationCanceller is implemented by the reservation module. It cancels
// every pending reservation for the room plus every confirmed reservation
// dated fromDate or later, using the given querier so the cancellations share
// the room update's transaction.
type ReservationCanceller interface {
	CancelForScheduleChange(ctx context.Context, q db.Querier, roomID string, fromDate time.Time) ([]CancelledReservation, error)
}

type CreateRequest struct {
	Name      string
	StartTime string
	EndTime   string
	TimeBlock int
}

type UpdateRequest struct {
	Name      *string
	StartTime *string
	EndTime   *string
	TimeBlock *int
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	List(ctx context.Context, filter Filter) ([]*Room, int, error)

	// Update edits the room in place. Changing any schedule field cancels
	// the room's pending reservations and its confirmed reservations dated
	// today or later, atomically with the room update.
	Update(ctx context.Context, id string, req UpdateRequest, actorID string) (*Room, error)
}

type service struct {
	repo         Repository
	reservations ReservationCanceller
	tx           db.TxRunner
	logs         activitylog.Recorder

	now func() time.Time
	loc *time.Location
}

func NewService(
	repo Repository,
	reservations ReservationCanceller,
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
		repo:         repo,
		reservations: reservations,
		tx:           tx,
		logs:         logs,
		now:          now,
		loc:          loc,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Room, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if err := validateSchedule(req.StartTime, req.EndTime, req.TimeBlock); err != nil {
		return nil, err
	}

	rm := &Room{
		Name:      strings.TrimSpace(req.Name),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		TimeBlock: req.TimeBlock,
	}

	if err := s.repo.Create(ctx, rm); err != nil {
		return nil, err
	}
	return rm, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Room, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Room, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, actorID string) (*Room, error) {
	rm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	scheduleChanged := false

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrNameRequired
		}
		rm.Name = strings.TrimSpace(*req.Name)
	}
	if req.StartTime != nil && *req.StartTime != rm.StartTime {
		rm.StartTime = *req.StartTime
		scheduleChanged = true
	}
	if req.EndTime != nil && *req.EndTime != rm.EndTime {
		rm.EndTime = *req.EndTime
		scheduleChanged = true
	}
	if req.TimeBlock != nil && *req.TimeBlock != rm.TimeBlock {
		rm.TimeBlock = *req.TimeBlock
		scheduleChanged = true
	}

	// The resulting schedule must still describe a valid grid.
	if err := validateSchedule(rm.StartTime, rm.EndTime, rm.TimeBlock); err != nil {
		return nil, err
	}

	var cancelled []CancelledReservation

	err = s.tx.Within(ctx, func(ctx context.Context, q db.Querier) error {
		if scheduleChanged {
			// Past confirmed reservations already happened under the old
			// schedule and are left untouched.
			var err error
			cancelled, err = s.reservations.CancelForScheduleChange(ctx, q, rm.ID, s.today())
			if err != nil {
				return err
			}
		}
		return s.repo.WithQuerier(q).Update(ctx, rm)
	})
	if err != nil {
		return nil, err
	}

	for _, c := range cancelled {
		s.logs.Record(activitylog.Entry{
			UserID:   c.UserID,
			Module:   activitylog.ModuleReservation,
			Activity: "reservation auto-cancelled by room change",
			Details:  fmt.Sprintf("reservation %s cancelled because room %s changed its schedule", c.ID, rm.Name),
		})
	}
	s.logs.Record(activitylog.Entry{
		UserID:   actorID,
		Module:   activitylog.ModuleReservation,
		Activity: "room updated",
		Details:  fmt.Sprintf("room %s modified, %d reservations auto-cancelled", rm.Name, len(cancelled)),
	})

	return rm, nil
}

// today is midnight of the current civil date in the operating timezone,
// expressed in UTC the way DATE columns are scanned.
func (s *service) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func validateSchedule(startTime, endTime string, block int) error {
	_, err := schedule.NewGrid(startTime, endTime, block)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, schedule.ErrInvalidFormat):
		return ErrInvalidTimeFormat
	case errors.Is(err, schedule.ErrInvalidWindow):
		return ErrInvalidWindow
	case errors.Is(err, schedule.ErrInvalidBlock):
		return ErrInvalidBlock
	default:
		return err
	}
}
