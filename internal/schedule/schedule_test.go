package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		input   string
		minutes int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"9:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"25:00", 0, true},
		{"9:5", 0, true},
		{"09:60", 0, true},
		{"", 0, true},
		{"0900", 0, true},
		{"ab:cd", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseClock(tc.input)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidFormat, "input %q", tc.input)
			continue
		}
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.minutes, got, "input %q", tc.input)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "09:05", FormatClock(545))
	assert.Equal(t, "23:30", FormatClock(1410))
}

func TestNewGridRejectsBadSchedules(t *testing.T) {
	_, err := NewGrid("10:00", "09:00", 30)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = NewGrid("09:00", "09:00", 30)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = NewGrid("09:00", "10:00", 0)
	assert.ErrorIs(t, err, ErrInvalidBlock)

	_, err = NewGrid("9am", "10:00", 30)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestSlotsGridShape(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
		block      int
		want       []string
	}{
		{
			name:  "exact multiple",
			start: "09:00", end: "10:00", block: 30,
			want: []string{"09:00", "09:30"},
		},
		{
			name:  "trailing remainder dropped",
			start: "09:00", end: "10:10", block: 30,
			want: []string{"09:00", "09:30"},
		},
		{
			name:  "fifteen minute grid",
			start: "08:00", end: "09:00", block: 15,
			want: []string{"08:00", "08:15", "08:30", "08:45"},
		},
		{
			name:  "window shorter than one block",
			start: "09:00", end: "09:20", block: 30,
			want: []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := NewGrid(tc.start, tc.end, tc.block)
			require.NoError(t, err)
			assert.Equal(t, tc.want, g.Slots())
			assert.Len(t, g.Slots(), g.TotalBlocks())
		})
	}
}

func TestSlotsStrictlyIncreasingOnGrid(t *testing.T) {
	g, err := NewGrid("07:30", "19:45", 45)
	require.NoError(t, err)

	slots := g.Slots()
	require.Len(t, slots, g.TotalBlocks())

	prev := -1
	for i, s := range slots {
		m, err := ParseClock(s)
		require.NoError(t, err)
		assert.Greater(t, m, prev, "slots must be strictly increasing")
		assert.Equal(t, g.Start+i*g.Block, m, "slot %d must sit on the grid", i)
		prev = m
	}
}

func TestAvailableSlots(t *testing.T) {
	g, err := NewGrid("09:00", "11:00", 30)
	require.NoError(t, err)

	t.Run("no occupation", func(t *testing.T) {
		assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, g.AvailableSlots(nil))
	})

	t.Run("occupied slots excluded", func(t *testing.T) {
		got := g.AvailableSlots([]string{"09:30", "10:30"})
		assert.Equal(t, []string{"09:00", "10:00"}, got)
	})

	t.Run("occupation outside the grid is ignored", func(t *testing.T) {
		got := g.AvailableSlots([]string{"08:00", "11:00", "12:15"})
		assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, got)
	})

	t.Run("malformed occupied time is ignored", func(t *testing.T) {
		got := g.AvailableSlots([]string{"not-a-time", "09:00"})
		assert.Equal(t, []string{"09:30", "10:00", "10:30"}, got)
	})
}

func TestValidateSlot(t *testing.T) {
	g, err := NewGrid("09:00", "10:00", 30)
	require.NoError(t, err)

	t.Run("valid grid points", func(t *testing.T) {
		assert.NoError(t, g.ValidateSlot("09:00"))
		assert.NoError(t, g.ValidateSlot("09:30"))
	})

	t.Run("format", func(t *testing.T) {
		assert.ErrorIs(t, g.ValidateSlot("25:00"), ErrInvalidFormat)
		assert.ErrorIs(t, g.ValidateSlot("9:5"), ErrInvalidFormat)
		assert.ErrorIs(t, g.ValidateSlot(""), ErrInvalidFormat)
	})

	t.Run("bounds", func(t *testing.T) {
		assert.ErrorIs(t, g.ValidateSlot("08:30"), ErrOutOfBounds)
		// A start whose slot would spill past closing time.
		assert.ErrorIs(t, g.ValidateSlot("09:45"), ErrOutOfBounds)
		assert.ErrorIs(t, g.ValidateSlot("10:00"), ErrOutOfBounds)
	})

	t.Run("alignment", func(t *testing.T) {
		assert.ErrorIs(t, g.ValidateSlot("09:15"), ErrMisaligned)
		assert.ErrorIs(t, g.ValidateSlot("09:07"), ErrMisaligned)
	})
}

func TestIntervalOverlaps(t *testing.T) {
	a := Interval{Start: 540, End: 570}

	assert.True(t, a.Overlaps(Interval{Start: 540, End: 570}), "identical")
	assert.True(t, a.Overlaps(Interval{Start: 555, End: 585}), "partial")
	assert.True(t, a.Overlaps(Interval{Start: 530, End: 545}), "leading edge")
	assert.False(t, a.Overlaps(Interval{Start: 570, End: 600}), "adjacent after")
	assert.False(t, a.Overlaps(Interval{Start: 510, End: 540}), "adjacent before")
	assert.False(t, a.Overlaps(Interval{Start: 600, End: 630}), "disjoint")
}
