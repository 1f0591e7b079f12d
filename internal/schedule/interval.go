package schedule

// Interval is a half-open [Start, End) range in minutes since midnight.
//
// Reservations in this system are always grid-aligned and one block long,
// so same-room overlap degenerates to equal start times. The check is still
// written as a general interval test so it stays correct if variable-length
// bookings ever appear.
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether the two intervals intersect.
func (a Interval) Overlaps(b Interval) bool {
	return a.Start < b.End && b.Start < a.End
}
