// Package schedule derives the bookable slot grid of a room from its
// operating window and block size. Everything here is pure: no storage,
// no clock, just wall-clock arithmetic in minutes since midnight.
package schedule

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidFormat = errors.New("time must be in HH:MM format")
	ErrOutOfBounds   = errors.New("time is outside the room's operating window")
	ErrMisaligned    = errors.New("time does not align with the room's slot grid")
	ErrInvalidWindow = errors.New("start time must be before end time")
	ErrInvalidBlock  = errors.New("time block must be a positive number of minutes")
)

var clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ParseClock converts a "HH:MM" wall-clock string to minutes since midnight.
func ParseClock(s string) (int, error) {
	if !clockPattern.MatchString(s) {
		return 0, ErrInvalidFormat
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, ErrInvalidFormat
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as a zero-padded "HH:MM" string.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Grid is the discrete set of valid slot start times for one room.
// Start and End are minutes since midnight; Block is the slot length in minutes.
type Grid struct {
	Start int
	End   int
	Block int
}

// NewGrid builds a Grid from a room's schedule fields.
func NewGrid(startTime, endTime string, block int) (Grid, error) {
	start, err := ParseClock(startTime)
	if err != nil {
		return Grid{}, err
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return Grid{}, err
	}
	if start >= end {
		return Grid{}, ErrInvalidWindow
	}
	if block <= 0 {
		return Grid{}, ErrInvalidBlock
	}
	return Grid{Start: start, End: end, Block: block}, nil
}

// TotalBlocks is the number of whole slots that fit in the operating window.
// A trailing remainder shorter than one block is not offered.
func (g Grid) TotalBlocks() int {
	return (g.End - g.Start) / g.Block
}

// Slots returns every grid-aligned start time, ascending, as "HH:MM".
func (g Grid) Slots() []string {
	total := g.TotalBlocks()
	slots := make([]string, 0, total)
	for i := 0; i < total; i++ {
		slots = append(slots, FormatClock(g.Start+i*g.Block))
	}
	return slots
}

// BlockIndex returns the index of the slot containing the given start time.
// The index may fall outside [0, TotalBlocks()) for out-of-window times.
func (g Grid) BlockIndex(startMinutes int) int {
	if startMinutes < g.Start {
		// Integer division truncates toward zero; force floor semantics
		// so times before opening map to a negative index.
		return -1
	}
	return (startMinutes - g.Start) / g.Block
}

// AvailableSlots returns the slots not occupied by any of the given
// reservation start times. Occupied times landing outside the grid
// (e.g. left over from an earlier schedule) are ignored.
func (g Grid) AvailableSlots(occupiedTimes []string) []string {
	total := g.TotalBlocks()
	occupied := make([]bool, total)

	for _, t := range occupiedTimes {
		start, err := ParseClock(t)
		if err != nil {
			continue
		}
		idx := g.BlockIndex(start)
		if idx >= 0 && idx < total {
			occupied[idx] = true
		}
	}

	available := make([]string, 0, total)
	for i := 0; i < total; i++ {
		if !occupied[i] {
			available = append(available, FormatClock(g.Start+i*g.Block))
		}
	}
	return available
}

// ValidateSlot decides whether the desired "HH:MM" string is a legally
// requestable slot: well-formed, inside the window (a slot may not extend
// past closing time) and exactly on a grid boundary.
func (g Grid) ValidateSlot(desired string) error {
	start, err := ParseClock(desired)
	if err != nil {
		return err
	}
	if start < g.Start || start+g.Block > g.End {
		return ErrOutOfBounds
	}
	if g.Start+g.BlockIndex(start)*g.Block != start {
		return ErrMisaligned
	}
	return nil
}

// SlotInterval returns the half-open interval [start, start+block) of the
// slot beginning at the given time.
func (g Grid) SlotInterval(startMinutes int) Interval {
	return Interval{Start: startMinutes, End: startMinutes + g.Block}
}
