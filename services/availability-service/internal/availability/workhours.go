package availability

import "time"

// WorkingHours is a recurring daily window in the owner's local time.
type WorkingHours struct {
	Start    Clock
	End      Clock
	Location *time.Location
}

// WithinWorkingHours reports whether t falls in the working window of t's UTC calendar day,
// both bounds inclusive. The bounds are built in wh.Location for that specific date, so the
// zone offset in force on that day (DST included) is the one applied.
func WithinWorkingHours(wh WorkingHours, t time.Time) bool {
	loc := wh.Location
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.UTC().Date()
	dayStart := wh.Start.On(y, m, d, loc)
	dayEnd := wh.End.On(y, m, d, loc)
	return !t.Before(dayStart) && !t.After(dayEnd)
}

// OutsideWorkingHours reports whether either endpoint of the slice misses the working window.
func OutsideWorkingHours(wh WorkingHours, start, end time.Time) bool {
	return !WithinWorkingHours(wh, start) || !WithinWorkingHours(wh, end)
}
