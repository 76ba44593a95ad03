package availability

import "time"

// Conflicts reports whether either end of the slice [start, end) lands inside the event.
// The slice start is tested against [e.Start, e.End) and the slice end against
// (e.Start, e.End], so a slice may begin when an event ends or end when the next one begins.
// An event with Start after End never matches.
func Conflicts(e Event, start, end time.Time) bool {
	return startsWithin(start, e) || endsWithin(end, e)
}

func startsWithin(t time.Time, e Event) bool {
	return !t.Before(e.Start) && t.Before(e.End)
}

func endsWithin(t time.Time, e Event) bool {
	return t.After(e.Start) && !t.After(e.End)
}
