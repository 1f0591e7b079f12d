package reservation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcyhel/room-booking-backend/internal/activitylog"
	"github.com/marcyhel/room-booking-backend/internal/db"
	"github.com/marcyhel/room-booking-backend/internal/room"
	"github.com/marcyhel/room-booking-backend/internal/user"
)

// saoPaulo stands in for the operating timezone without depending on the
// host's tzdata.
var saoPaulo = time.FixedZone("-03", -3*60*60)

type fakeRepo struct {
	store     map[string]*Reservation
	nextID    int
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{store: map[string]*Reservation{}}
}

func (f *fakeRepo) seed(res *Reservation) *Reservation {
	f.nextID++
	res.ID = fmt.Sprintf("res-%d", f.nextID)
	f.store[res.ID] = res
	return res
}

func (f *fakeRepo) Create(_ context.Context, res *Reservation) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.seed(res)
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Reservation, error) {
	res, ok := f.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (f *fakeRepo) List(_ context.Context, _ Filter) ([]*Reservation, int, error) {
	out := make([]*Reservation, 0, len(f.store))
	for _, res := range f.store {
		out = append(out, res)
	}
	return out, len(out), nil
}

func (f *fakeRepo) FindByRoomAndDate(_ context.Context, roomID string, date time.Time, statuses []Status, excludeID string) ([]*Reservation, error) {
	var out []*Reservation
	for _, res := range f.store {
		if res.RoomID != roomID || !res.Date.Equal(date) || res.ID == excludeID {
			continue
		}
		if len(statuses) > 0 {
			match := false
			for _, st := range statuses {
				if res.Status == st {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, res)
	}
	return out, nil
}

func (f *fakeRepo) FindCancellableForRoom(_ context.Context, roomID string, fromDate time.Time) ([]*Reservation, error) {
	var out []*Reservation
	for _, res := range f.store {
		if res.RoomID != roomID {
			continue
		}
		if res.Status == StatusPending {
			out = append(out, res)
		} else if res.Status == StatusConfirmed && !res.Date.Before(fromDate) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id string, status Status) error {
	res, ok := f.store[id]
	if !ok {
		return ErrNotFound
	}
	res.Status = status
	res.UpdatedAt = res.UpdatedAt.Add(time.Minute)
	return nil
}

func (f *fakeRepo) CancelMany(_ context.Context, ids []string) (int64, error) {
	var n int64
	for _, id := range ids {
		if res, ok := f.store[id]; ok {
			res.Status = StatusCancelled
			res.UpdatedAt = res.UpdatedAt.Add(time.Minute)
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) WithQuerier(_ db.Querier) Repository { return f }

type fakeRoomService struct {
	rooms map[string]*room.Room
}

func (f *fakeRoomService) Create(_ context.Context, _ room.CreateRequest) (*room.Room, error) {
	panic("not used")
}

func (f *fakeRoomService) GetByID(_ context.Context, id string) (*room.Room, error) {
	rm, ok := f.rooms[id]
	if !ok {
		return nil, room.ErrNotFound
	}
	return rm, nil
}

func (f *fakeRoomService) List(_ context.Context, _ room.Filter) ([]*room.Room, int, error) {
	panic("not used")
}

func (f *fakeRoomService) Update(_ context.Context, _ string, _ room.UpdateRequest, _ string) (*room.Room, error) {
	panic("not used")
}

type fakeUserService struct {
	users map[string]*user.User
}

func (f *fakeUserService) Register(_ context.Context, _ user.RegisterRequest) (*user.User, error) {
	panic("not used")
}

func (f *fakeUserService) Login(_ context.Context, _, _ string) (*user.User, error) {
	panic("not used")
}

func (f *fakeUserService) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserService) List(_ context.Context, _ user.Filter) ([]*user.User, int, error) {
	panic("not used")
}

type fakeTxRunner struct{}

func (fakeTxRunner) Within(ctx context.Context, fn func(ctx context.Context, q db.Querier) error) error {
	return fn(ctx, nil)
}

type fakeRecorder struct {
	entries []activitylog.Entry
}

func (f *fakeRecorder) Record(e activitylog.Entry) {
	f.entries = append(f.entries, e)
}

type fixture struct {
	repo     *fakeRepo
	recorder *fakeRecorder
	service  Service
}

// newFixture wires the service against one room (08:00-18:00, 60-minute
// blocks) and two active users. The clock is pinned to 2025-06-01 12:00 in
// the operating timezone.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeRepo()
	recorder := &fakeRecorder{}

	rooms := &fakeRoomService{rooms: map[string]*room.Room{
		"room-1": {ID: "room-1", Name: "Meeting Room A", StartTime: "08:00", EndTime: "18:00", TimeBlock: 60},
	}}
	users := &fakeUserService{users: map[string]*user.User{
		"user-1":   {ID: "user-1", Name: "Alice", IsActive: true},
		"user-2":   {ID: "user-2", Name: "Bob", IsActive: true},
		"inactive": {ID: "inactive", Name: "Mallory", IsActive: false},
	}}

	now := func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, saoPaulo)
	}

	return &fixture{
		repo:     repo,
		recorder: recorder,
		service:  NewService(repo, rooms, users, fakeTxRunner{}, recorder, now, saoPaulo),
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, CreateRequest{
		UserID: "user-1",
		RoomID: "room-1",
		Date:   day(2025, 6, 2),
		Time:   "09:00",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, StatusPending, created.Status)

	got, err := f.service.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "room-1", got.RoomID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "09:00", got.Time)
	assert.True(t, got.Date.Equal(day(2025, 6, 2)))
	assert.Equal(t, StatusPending, got.Status)

	require.Len(t, f.recorder.entries, 1)
	assert.Equal(t, "reservation created", f.recorder.entries[0].Activity)
	assert.Equal(t, "user-1", f.recorder.entries[0].UserID)
}

func TestCreateRejectsElapsedSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The clock reads 12:00 on 2025-06-01.
	_, err := f.service.Create(ctx, CreateRequest{
		UserID: "user-1", RoomID: "room-1", Date: day(2025, 6, 1), Time: "09:00",
	})
	assert.ErrorIs(t, err, ErrPastTime)

	// A slot starting exactly now is not in the past.
	_, err = f.service.Create(ctx, CreateRequest{
		UserID: "user-1", RoomID: "room-1", Date: day(2025, 6, 1), Time: "12:00",
	})
	assert.NoError(t, err)

	// The same clock time tomorrow is fine.
	_, err = f.service.Create(ctx, CreateRequest{
		UserID: "user-2", RoomID: "room-1", Date: day(2025, 6, 2), Time: "09:00",
	})
	assert.NoError(t, err)
}

func TestCreateValidatesSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		time    string
		wantErr error
	}{
		{"malformed time", "25:00", ErrInvalidTime},
		{"single digit minute", "9:5", ErrInvalidTime},
		{"empty time", "", ErrInvalidTime},
		{"before opening", "07:00", ErrTimeOutOfWindow},
		{"slot spills past closing", "17:30", ErrTimeOutOfWindow},
		{"between grid points", "09:30", ErrTimeMisaligned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(ctx, CreateRequest{
				UserID: "user-1", RoomID: "room-1", Date: day(2025, 6, 2), Time: tt.time,
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateUnknownRoomAndUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, CreateRequest{
		UserID: "user-1", RoomID: "no-such-room", Date: day(2025, 6, 2), Time: "09:00",
	})
	assert.ErrorIs(t, err, room.ErrNotFound)

	_, err = f.service.Create(ctx, CreateRequest{
		UserID: "no-such-user", RoomID: "room-1", Date: day(2025, 6, 2), Time: "09:00",
	})
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = f.service.Create(ctx, CreateRequest{
		UserID: "inactive", RoomID: "room-1", Date: day(2025, 6, 2), Time: "09:00",
	})
	assert.ErrorIs(t, err, user.ErrInactiveUser)
}

func TestCreateConfirmedSlotBlocksPendingDoesNot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.seed(&Reservation{
		Date: day(2025, 6, 2), Time: "09:00", UserID: "user-1", RoomID: "room-1",
		Status: StatusConfirmed,
	})
	f.repo.seed(&Reservation{
		Date: day(2025, 6, 2), Time: "10:00", UserID: "user-1", RoomID: "room-1",
		Status: StatusPending,
	})

	_, err := f.service.Create(ctx, CreateRequest{
		UserID: "user-2", RoomID: "room-1", Date: day(2025, 6, 2), Time: "09:00",
	})
	assert.ErrorIs(t, err, ErrSlotTaken)

	// A competing pending hold does not block a new request.
	_, err = f.service.Create(ctx, CreateRequest{
		UserID: "user-2", RoomID: "room-1", Date: day(2025, 6, 2), Time: "10:00",
	})
	assert.NoError(t, err)
}

func TestConfirmCancelsCompetingHolds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.repo.seed(&Reservation{
		Date: day(2025, 6, 2), Time: "09:00", UserID: "user-1", RoomID: "room-1",
		Status: StatusPending,
	})
	second := f.repo.seed(&Reservation{
		Date: day(2025, 6, 2), Time: "09:00", UserID: "user-2", RoomID: "room-1",
		Status: StatusPending,
	})
	unrelated := f.repo.seed(&Reservation{
		Date: day(2025, 6, 2), Time: "11:00", UserID: "user-2", RoomID: "room-1",
		Status: StatusPending,
	})

	confirmed, err := f.service.Confirm(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)

	got, err := f.service.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	got, err = f.service.GetByID(ctx, unrelated.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)

	// One entry for the displaced hold, one for the confirmation.
	require.Len(t, f.recorder.entries, 2)
	assert.Equal(t, "reservation auto-cancelled by conflict", f.recorder.entries[0].Activity)
	assert.Equal(t, "user-2", f.recorder.entries[0].UserID)
	assert.Equal(t, "reservation confirmed", f.recorder.entries[1].Activity)

	// The loser cannot be confirmed afterwards.
	_, err = f.service.Confirm(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestConfirmRequiresPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	confirmed := f.repo.seed(&Reservation{
		Date: day(2025, 6, 2), Time: "09:00", UserID: "user-1", RoomID: "room-1",
		Status: StatusConfirmed,
	})
	cancelled := f.repo.seed(&Reservation{
		Date: day(2025, 6, 2), Time: "10:00", UserID: "user-1", RoomID: "room-1",
		Status: StatusCancelled,
	})

	_, err := f.service.Confirm(ctx, confirmed.ID)
	assert.ErrorIs(t, err, ErrNotPending)

	_, err = f.service.Confirm(ctx, cancelled.ID)
	assert.ErrorIs(t, err, ErrNotPending)

	_, err = f.service.Confirm(ctx, "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.repo.seed(&Reservation{
		Date: day(2025, 6, 2), Time: "09:00", UserID: "user-1", RoomID: "room-1",
		Status: StatusPending,
	})

	_, err := f.service.Cancel(ctx, res.ID, "user-2", false)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	cancelled, err := f.service.Cancel(ctx, res.ID, "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	// Admins may cancel reservations they do not own.
	other := f.repo.seed(&Reservation{
		Date: day(2025, 6, 2), Time: "10:00", UserID: "user-2", RoomID: "room-1",
		Status: StatusConfirmed,
	})
	_, err = f.service.Cancel(ctx, other.ID, "user-1", true)
	assert.NoError(t, err)
}

func TestCancelAlreadyCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.repo.seed(&Reservation{
		Date: day(2025, 6, 2), Time: "09:00", UserID: "user-1", RoomID: "room-1",
		Status: StatusPending,
	})

	_, err := f.service.Cancel(ctx, res.ID, "user-1", false)
	require.NoError(t, err)

	stamp := f.repo.store[res.ID].UpdatedAt

	_, err = f.service.Cancel(ctx, res.ID, "user-1", false)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Equal(t, stamp, f.repo.store[res.ID].UpdatedAt)
}

func TestAvailableSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.repo.seed(&Reservation{
		Date: day(2025, 6, 2), Time: "09:00", UserID: "user-1", RoomID: "room-1",
		Status: StatusConfirmed,
	})
	f.repo.seed(&Reservation{
		Date: day(2025, 6, 2), Time: "10:00", UserID: "user-2", RoomID: "room-1",
		Status: StatusPending,
	})
	f.repo.seed(&Reservation{
		Date: day(2025, 6, 3), Time: "11:00", UserID: "user-2", RoomID: "room-1",
		Status: StatusConfirmed,
	})

	slots, err := f.service.AvailableSlots(ctx, "room-1", day(2025, 6, 2))
	require.NoError(t, err)

	// Only the confirmed slot for that day is taken. The pending hold and
	// another day's confirmation do not occupy anything.
	assert.NotContains(t, slots, "09:00")
	assert.Contains(t, slots, "10:00")
	assert.Contains(t, slots, "11:00")
	assert.Len(t, slots, 9)

	_, err = f.service.AvailableSlots(ctx, "no-such-room", day(2025, 6, 2))
	assert.ErrorIs(t, err, room.ErrNotFound)
}

func TestCreateSurfacesStorageConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Simulates losing the insert race against a concurrent confirmation.
	f.repo.createErr = ErrSlotTaken

	_, err := f.service.Create(ctx, CreateRequest{
		UserID: "user-1", RoomID: "room-1", Date: day(2025, 6, 2), Time: "09:00",
	})
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Empty(t, f.recorder.entries)
}
