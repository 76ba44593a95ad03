// Package availability finds the fixed-size time slices in which the most requested
// users are free, given their calendar events and daily working hours.
package availability

import (
	"sort"
	"time"
)

// NoMinimum disables the minimum attendee filter.
const NoMinimum = -1

type Event struct {
	Start time.Time
	End   time.Time
}

// User is a read-only snapshot of one roster entry. A nil WorkingHours means the
// user is not bound by working hours.
type User struct {
	ID           int
	Events       []Event
	WorkingHours *WorkingHours
}

type Query struct {
	Start            time.Time
	End              time.Time
	Interval         time.Duration
	UserIDs          []int
	MinimumAttendees int
	Limit            int
}

// Window is one candidate slice [Start, End) and the users free for all of it,
// listed in request order.
type Window struct {
	Attendees []int
	Start     time.Time
	End       time.Time
}

type ownedEvent struct {
	Event
	owner int
}

// Slices returns how many whole slices of q.Interval fit in [q.Start, q.End).
func (q Query) Slices() int {
	if q.Interval <= 0 || !q.End.After(q.Start) {
		return 0
	}
	return int(q.End.Sub(q.Start) / q.Interval)
}

// Compute walks the requested range slice by slice and returns the windows that reach
// q.MinimumAttendees, best attended first, at most q.Limit of them. Windows with the same
// attendee count stay in chronological order. Requested ids missing from users are never
// attendees. users is not modified.
func Compute(q Query, users []User) []Window {
	if q.Interval <= 0 {
		return []Window{}
	}

	known := make(map[int]bool, len(users))
	var events []ownedEvent
	for _, u := range users {
		known[u.ID] = true
		for _, e := range u.Events {
			events = append(events, ownedEvent{Event: e, owner: u.ID})
		}
	}

	var windows []Window
	for start, end := q.Start, q.Start.Add(q.Interval); !end.After(q.End); start, end = end, end.Add(q.Interval) {
		busy := disqualified(events, users, start, end)

		attendees := make([]int, 0, len(q.UserIDs))
		for _, id := range q.UserIDs {
			if known[id] && !busy[id] {
				attendees = append(attendees, id)
			}
		}
		if len(attendees) < q.MinimumAttendees {
			continue
		}
		windows = append(windows, Window{Attendees: attendees, Start: start, End: end})
	}

	sort.SliceStable(windows, func(i, j int) bool {
		return len(windows[i].Attendees) > len(windows[j].Attendees)
	})

	limit := max(q.Limit, 0)
	if len(windows) > limit {
		windows = windows[:limit]
	}
	if len(windows) == 0 {
		return []Window{}
	}
	return windows
}

// disqualified builds the set of users who cannot attend [start, end), either because one
// of their events touches an endpoint or because an endpoint is outside their working hours.
func disqualified(events []ownedEvent, users []User, start, end time.Time) map[int]bool {
	out := map[int]bool{}
	for _, e := range events {
		if out[e.owner] {
			continue
		}
		if Conflicts(e.Event, start, end) {
			out[e.owner] = true
		}
	}
	for _, u := range users {
		if out[u.ID] || u.WorkingHours == nil {
			continue
		}
		if OutsideWorkingHours(*u.WorkingHours, start, end) {
			out[u.ID] = true
		}
	}
	return out
}
