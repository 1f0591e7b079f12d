package room

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcyhel/room-booking-backend/internal/activitylog"
	"github.com/marcyhel/room-booking-backend/internal/db"
)

var saoPaulo = time.FixedZone("-03", -3*60*60)

type fakeRepo struct {
	store  map[string]*Room
	nextID int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{store: map[string]*Room{}}
}

func (f *fakeRepo) seed(rm *Room) *Room {
	f.nextID++
	rm.ID = fmt.Sprintf("room-%d", f.nextID)
	f.store[rm.ID] = rm
	return rm
}

func (f *fakeRepo) Create(_ context.Context, rm *Room) error {
	for _, existing := range f.store {
		if existing.Name == rm.Name {
			return ErrNameTaken
		}
	}
	f.seed(rm)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Room, error) {
	rm, ok := f.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rm
	return &cp, nil
}

func (f *fakeRepo) List(_ context.Context, _ Filter) ([]*Room, int, error) {
	out := make([]*Room, 0, len(f.store))
	for _, rm := range f.store {
		out = append(out, rm)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Update(_ context.Context, rm *Room) error {
	if _, ok := f.store[rm.ID]; !ok {
		return ErrNotFound
	}
	cp := *rm
	f.store[rm.ID] = &cp
	return nil
}

func (f *fakeRepo) WithQuerier(_ db.Querier) Repository { return f }

// fakeCanceller records the cascade invocation and answers with a fixed set
// of cancelled reservations.
type fakeCanceller struct {
	calls     int
	roomID    string
	fromDate  time.Time
	cancelled []CancelledReservation
}

func (f *fakeCanceller) CancelForScheduleChange(_ context.Context, _ db.Querier, roomID string, fromDate time.Time) ([]CancelledReservation, error) {
	f.calls++
	f.roomID = roomID
	f.fromDate = fromDate
	return f.cancelled, nil
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
	repo      *fakeRepo
	canceller *fakeCanceller
	recorder  *fakeRecorder
	service   Service
}

// newFixture pins the clock to 2025-06-01 12:00 in the operating timezone.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newFakeRepo()
	canceller := &fakeCanceller{}
	recorder := &fakeRecorder{}

	now := func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, saoPaulo)
	}

	return &fixture{
		repo:      repo,
		canceller: canceller,
		recorder:  recorder,
		service:   NewService(repo, canceller, fakeTxRunner{}, recorder, now, saoPaulo),
	}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestCreateRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rm, err := f.service.Create(ctx, CreateRequest{
		Name: "  Meeting Room A  ", StartTime: "09:00", EndTime: "18:00", TimeBlock: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "Meeting Room A", rm.Name)
	assert.NotEmpty(t, rm.ID)

	tests := []struct {
		name    string
		req     CreateRequest
		wantErr error
	}{
		{"empty name", CreateRequest{Name: "  ", StartTime: "09:00", EndTime: "18:00", TimeBlock: 30}, ErrNameRequired},
		{"bad time format", CreateRequest{Name: "B", StartTime: "9am", EndTime: "18:00", TimeBlock: 30}, ErrInvalidTimeFormat},
		{"window inverted", CreateRequest{Name: "B", StartTime: "18:00", EndTime: "09:00", TimeBlock: 30}, ErrInvalidWindow},
		{"zero block", CreateRequest{Name: "B", StartTime: "09:00", EndTime: "18:00", TimeBlock: 0}, ErrInvalidBlock},
		{"duplicate name", CreateRequest{Name: "Meeting Room A", StartTime: "09:00", EndTime: "18:00", TimeBlock: 30}, ErrNameTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateScheduleChangeCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rm := f.repo.seed(&Room{Name: "Meeting Room A", StartTime: "09:00", EndTime: "18:00", TimeBlock: 60})
	f.canceller.cancelled = []CancelledReservation{
		{ID: "res-1", UserID: "user-1"},
		{ID: "res-2", UserID: "user-2"},
	}

	updated, err := f.service.Update(ctx, rm.ID, UpdateRequest{TimeBlock: intPtr(30)}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 30, updated.TimeBlock)

	require.Equal(t, 1, f.canceller.calls)
	assert.Equal(t, rm.ID, f.canceller.roomID)

	// The cascade cutoff is today's civil date in the operating timezone
	// (the clock reads 2025-06-01 12:00 there): pending reservations on any
	// date go, confirmed ones strictly before this date survive.
	assert.True(t, f.canceller.fromDate.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))

	require.Len(t, f.recorder.entries, 3)
	assert.Equal(t, "reservation auto-cancelled by room change", f.recorder.entries[0].Activity)
	assert.Equal(t, "user-1", f.recorder.entries[0].UserID)
	assert.Equal(t, "reservation auto-cancelled by room change", f.recorder.entries[1].Activity)
	assert.Equal(t, "room updated", f.recorder.entries[2].Activity)
	assert.Equal(t, "admin-1", f.recorder.entries[2].UserID)
	assert.Contains(t, f.recorder.entries[2].Details, "2 reservations auto-cancelled")
}

func TestUpdateNameOnlySkipsCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rm := f.repo.seed(&Room{Name: "Meeting Room A", StartTime: "09:00", EndTime: "18:00", TimeBlock: 60})

	updated, err := f.service.Update(ctx, rm.ID, UpdateRequest{Name: strPtr("Meeting Room B")}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "Meeting Room B", updated.Name)
	assert.Equal(t, 0, f.canceller.calls)
}

func TestUpdateUnchangedScheduleSkipsCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rm := f.repo.seed(&Room{Name: "Meeting Room A", StartTime: "09:00", EndTime: "18:00", TimeBlock: 60})

	// Resubmitting the current values is not a schedule change.
	_, err := f.service.Update(ctx, rm.ID, UpdateRequest{
		StartTime: strPtr("09:00"), EndTime: strPtr("18:00"), TimeBlock: intPtr(60),
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 0, f.canceller.calls)
}

func TestUpdateRejectsInvalidSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rm := f.repo.seed(&Room{Name: "Meeting Room A", StartTime: "09:00", EndTime: "18:00", TimeBlock: 60})

	_, err := f.service.Update(ctx, rm.ID, UpdateRequest{EndTime: strPtr("08:00")}, "admin-1")
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = f.service.Update(ctx, rm.ID, UpdateRequest{TimeBlock: intPtr(-5)}, "admin-1")
	assert.ErrorIs(t, err, ErrInvalidBlock)

	// A failed validation never reaches the cascade.
	assert.Equal(t, 0, f.canceller.calls)

	_, err = f.service.Update(ctx, "no-such-room", UpdateRequest{Name: strPtr("X")}, "admin-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
