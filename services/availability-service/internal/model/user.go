package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/availability"
)

var ErrInvalidUser = errors.New("invalid user")

// User is a roster entry as stored and as exchanged over HTTP and Kafka.
type User struct {
	ID           int           `json:"user_id"`
	Events       []Event       `json:"events"`
	WorkingHours *WorkingHours `json:"working_hours,omitempty"`
}

type Event struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// WorkingHours uses "HH:MM" clocks in an IANA zone, e.g. 09:00-17:00 America/New_York.
type WorkingHours struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	TimeZone string `json:"time_zone"`
}

func (u User) Validate() error {
	if u.ID <= 0 {
		return fmt.Errorf("%w: user_id must be positive", ErrInvalidUser)
	}
	for i, e := range u.Events {
		if e.Start.IsZero() || e.End.IsZero() {
			return fmt.Errorf("%w: event %d needs start and end", ErrInvalidUser, i)
		}
		if e.End.Before(e.Start) {
			return fmt.Errorf("%w: event %d ends before it starts", ErrInvalidUser, i)
		}
	}
	if u.WorkingHours != nil {
		if _, err := u.WorkingHours.parse(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidUser, err)
		}
	}
	return nil
}

// Normalize trims the working hours fields and stores event instants in UTC.
func (u User) Normalize() User {
	events := make([]Event, len(u.Events))
	for i, e := range u.Events {
		events[i] = Event{Start: e.Start.UTC(), End: e.End.UTC()}
	}
	u.Events = events
	if u.WorkingHours != nil {
		wh := WorkingHours{
			Start:    strings.TrimSpace(u.WorkingHours.Start),
			End:      strings.TrimSpace(u.WorkingHours.End),
			TimeZone: strings.TrimSpace(u.WorkingHours.TimeZone),
		}
		u.WorkingHours = &wh
	}
	return u
}

func (wh WorkingHours) parse() (availability.WorkingHours, error) {
	start, err := availability.ParseClock(wh.Start)
	if err != nil {
		return availability.WorkingHours{}, fmt.Errorf("working_hours.start: %w", err)
	}
	end, err := availability.ParseClock(wh.End)
	if err != nil {
		return availability.WorkingHours{}, fmt.Errorf("working_hours.end: %w", err)
	}
	if end.Before(start) {
		return availability.WorkingHours{}, errors.New("working_hours.end is before working_hours.start")
	}
	if wh.TimeZone == "" {
		return availability.WorkingHours{}, errors.New("working_hours.time_zone is required")
	}
	loc, err := time.LoadLocation(wh.TimeZone)
	if err != nil {
		return availability.WorkingHours{}, fmt.Errorf("working_hours.time_zone: %w", err)
	}
	return availability.WorkingHours{Start: start, End: end, Location: loc}, nil
}

// ToAvailability converts stored users into engine snapshots. A user whose working hours no
// longer parse (for example a zone removed from the tz database) is returned as an error.
func ToAvailability(users []User) ([]availability.User, error) {
	out := make([]availability.User, 0, len(users))
	for _, u := range users {
		au := availability.User{ID: u.ID}
		if len(u.Events) > 0 {
			au.Events = make([]availability.Event, len(u.Events))
			for i, e := range u.Events {
				au.Events[i] = availability.Event{Start: e.Start, End: e.End}
			}
		}
		if u.WorkingHours != nil {
			wh, err := u.WorkingHours.parse()
			if err != nil {
				return nil, fmt.Errorf("user %d: %w", u.ID, err)
			}
			au.WorkingHours = &wh
		}
		out = append(out, au)
	}
	return out, nil
}
