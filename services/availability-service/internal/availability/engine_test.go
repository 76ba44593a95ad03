package availability

import (
	"reflect"
	"testing"
	"time"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load %s: %v", name, err)
	}
	return loc
}

func mustClock(t *testing.T, s string) Clock {
	t.Helper()
	c, err := ParseClock(s)
	if err != nil {
		t.Fatalf("ParseClock(%q): %v", s, err)
	}
	return c
}

func utc(s string) time.Time {
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return v.UTC()
}

// threeUsers: user 1 busy 15:15-15:30 Eastern, user 2 free all afternoon,
// user 3 in Denver starting work at 13:45 Mountain (15:45 Eastern).
func threeUsers(t *testing.T) []User {
	ny := mustLoad(t, "America/New_York")
	denver := mustLoad(t, "America/Denver")
	return []User{
		{
			ID:           1,
			Events:       []Event{{Start: utc("2019-01-01T15:15:00-05:00"), End: utc("2019-01-01T15:30:00-05:00")}},
			WorkingHours: &WorkingHours{Start: mustClock(t, "09:00"), End: mustClock(t, "17:00"), Location: ny},
		},
		{
			ID:           2,
			WorkingHours: &WorkingHours{Start: mustClock(t, "09:00"), End: mustClock(t, "17:00"), Location: ny},
		},
		{
			ID:           3,
			WorkingHours: &WorkingHours{Start: mustClock(t, "13:45"), End: mustClock(t, "21:00"), Location: denver},
		},
	}
}

func TestComputeRanksByAttendees(t *testing.T) {
	got := Compute(Query{
		Start:            utc("2019-01-01T15:15:00-05:00"),
		End:              utc("2019-01-01T16:00:00-05:00"),
		Interval:         15 * time.Minute,
		UserIDs:          []int{1, 2, 3},
		MinimumAttendees: 1,
		Limit:            5,
	}, threeUsers(t))

	if len(got) != 3 {
		t.Fatalf("expected 3 windows, got %d: %+v", len(got), got)
	}
	want := []struct {
		attendees []int
		start     string
	}{
		{[]int{1, 2, 3}, "2019-01-01T15:45:00-05:00"},
		{[]int{1, 2}, "2019-01-01T15:30:00-05:00"},
		{[]int{2}, "2019-01-01T15:15:00-05:00"},
	}
	for i, w := range want {
		if !reflect.DeepEqual(got[i].Attendees, w.attendees) {
			t.Fatalf("window %d: expected attendees %v, got %v", i, w.attendees, got[i].Attendees)
		}
		if !got[i].Start.Equal(utc(w.start)) {
			t.Fatalf("window %d: expected start %s, got %s", i, w.start, got[i].Start)
		}
		if got[i].End.Sub(got[i].Start) != 15*time.Minute {
			t.Fatalf("window %d: expected 15 minute slice, got %s", i, got[i].End.Sub(got[i].Start))
		}
	}
}

func TestComputeWiderInterval(t *testing.T) {
	q := Query{
		Start:            utc("2019-01-01T15:15:00-05:00"),
		End:              utc("2019-01-01T16:00:00-05:00"),
		Interval:         15 * time.Minute,
		UserIDs:          []int{1, 2, 3},
		MinimumAttendees: 1,
		Limit:            5,
	}
	narrow := Compute(q, threeUsers(t))

	q.Interval = 30 * time.Minute
	wide := Compute(q, threeUsers(t))

	if len(wide) != 1 {
		t.Fatalf("expected a single 30 minute window, got %d: %+v", len(wide), wide)
	}
	if len(wide) > len(narrow) {
		t.Fatalf("doubling the interval must not add windows (%d > %d)", len(wide), len(narrow))
	}
	if !reflect.DeepEqual(wide[0].Attendees, []int{2}) {
		t.Fatalf("expected only user 2 for 15:15-15:45, got %v", wide[0].Attendees)
	}
	if !wide[0].End.Equal(utc("2019-01-01T15:45:00-05:00")) {
		t.Fatalf("unexpected end %s", wide[0].End)
	}
}

func TestComputeEveryoneFreeWithoutConflicts(t *testing.T) {
	users := []User{{ID: 1}, {ID: 2}, {ID: 3}}
	got := Compute(Query{
		Start:            utc("1990-01-01T01:00:00Z"),
		End:              utc("1990-01-01T02:00:00Z"),
		Interval:         15 * time.Minute,
		UserIDs:          []int{1, 2, 3},
		MinimumAttendees: 3,
		Limit:            10,
	}, users)

	if len(got) != 4 {
		t.Fatalf("expected 4 windows, got %d", len(got))
	}
	for i, w := range got {
		if !reflect.DeepEqual(w.Attendees, []int{1, 2, 3}) {
			t.Fatalf("window %d: expected everyone, got %v", i, w.Attendees)
		}
	}
	for i := 1; i < len(got); i++ {
		if !got[i].Start.After(got[i-1].Start) {
			t.Fatal("equal-sized windows must stay chronological")
		}
	}
}

func TestComputeConflictExclusion(t *testing.T) {
	users := []User{
		{ID: 1, Events: []Event{{Start: utc("2024-05-01T09:00:00Z"), End: utc("2024-05-01T12:00:00Z")}}},
		{ID: 2},
	}
	got := Compute(Query{
		Start:            utc("2024-05-01T10:00:00Z"),
		End:              utc("2024-05-01T11:00:00Z"),
		Interval:         30 * time.Minute,
		UserIDs:          []int{1, 2},
		MinimumAttendees: NoMinimum,
		Limit:            10,
	}, users)

	if len(got) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(got))
	}
	for _, w := range got {
		if !reflect.DeepEqual(w.Attendees, []int{2}) {
			t.Fatalf("user 1 is busy for the whole range, got %v", w.Attendees)
		}
	}
}

func TestComputeEventBoundaries(t *testing.T) {
	users := []User{{
		ID: 1,
		Events: []Event{
			{Start: utc("2024-05-01T09:00:00Z"), End: utc("2024-05-01T10:00:00Z")},
			{Start: utc("2024-05-01T10:30:00Z"), End: utc("2024-05-01T11:00:00Z")},
		},
	}}
	got := Compute(Query{
		Start:            utc("2024-05-01T10:00:00Z"),
		End:              utc("2024-05-01T10:30:00Z"),
		Interval:         15 * time.Minute,
		UserIDs:          []int{1},
		MinimumAttendees: NoMinimum,
		Limit:            10,
	}, users)

	if len(got) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(got))
	}
	// Starting when an event ends and ending when the next one starts are both free.
	for i, start := range []string{"2024-05-01T10:00:00Z", "2024-05-01T10:15:00Z"} {
		if !reflect.DeepEqual(got[i].Attendees, []int{1}) || !got[i].Start.Equal(utc(start)) {
			t.Fatalf("expected user 1 free at %s, got %+v", start, got[i])
		}
	}
}

func TestComputeSliceEndingAtEventStart(t *testing.T) {
	users := []User{{
		ID:     1,
		Events: []Event{{Start: utc("2024-05-01T10:30:00Z"), End: utc("2024-05-01T11:00:00Z")}},
	}}
	got := Compute(Query{
		Start:            utc("2024-05-01T10:15:00Z"),
		End:              utc("2024-05-01T10:30:00Z"),
		Interval:         15 * time.Minute,
		UserIDs:          []int{1},
		MinimumAttendees: 1,
		Limit:            5,
	}, users)
	if len(got) != 1 || !reflect.DeepEqual(got[0].Attendees, []int{1}) {
		t.Fatalf("slice ending as the event begins must stay free, got %+v", got)
	}
}

func TestComputeMinimumAttendees(t *testing.T) {
	q := Query{
		Start:            utc("2019-01-01T15:15:00-05:00"),
		End:              utc("2019-01-01T16:00:00-05:00"),
		Interval:         15 * time.Minute,
		UserIDs:          []int{1, 2, 3},
		MinimumAttendees: 2,
		Limit:            5,
	}
	got := Compute(q, threeUsers(t))
	if len(got) != 2 {
		t.Fatalf("expected 2 windows with at least 2 attendees, got %d", len(got))
	}
	for _, w := range got {
		if len(w.Attendees) < 2 {
			t.Fatalf("window below minimum: %v", w.Attendees)
		}
	}

	q.MinimumAttendees = 4
	if got := Compute(q, threeUsers(t)); len(got) != 0 {
		t.Fatalf("minimum above roster size must yield nothing, got %d", len(got))
	}
}

func TestComputeNoMinimumKeepsEmptyWindows(t *testing.T) {
	users := []User{{ID: 1, Events: []Event{{Start: utc("2024-05-01T09:00:00Z"), End: utc("2024-05-01T10:00:00Z")}}}}
	got := Compute(Query{
		Start:            utc("2024-05-01T09:00:00Z"),
		End:              utc("2024-05-01T09:30:00Z"),
		Interval:         15 * time.Minute,
		UserIDs:          []int{1},
		MinimumAttendees: NoMinimum,
		Limit:            5,
	}, users)
	if len(got) != 2 {
		t.Fatalf("expected both slices without a minimum, got %d", len(got))
	}
	if len(got[0].Attendees) != 0 {
		t.Fatalf("expected nobody free, got %v", got[0].Attendees)
	}
}

func TestComputeLimit(t *testing.T) {
	q := Query{
		Start:            utc("2019-01-01T15:15:00-05:00"),
		End:              utc("2019-01-01T16:00:00-05:00"),
		Interval:         15 * time.Minute,
		UserIDs:          []int{1, 2, 3},
		MinimumAttendees: 1,
		Limit:            2,
	}
	got := Compute(q, threeUsers(t))
	if len(got) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(got))
	}
	if len(got[0].Attendees) != 3 || len(got[1].Attendees) != 2 {
		t.Fatalf("limit must keep the best-ranked prefix, got %v and %v", got[0].Attendees, got[1].Attendees)
	}

	q.Limit = 0
	got = Compute(q, threeUsers(t))
	if got == nil || len(got) != 0 {
		t.Fatalf("limit 0 must return an empty, non-nil result, got %#v", got)
	}
}

func TestComputeSliceMustFitRange(t *testing.T) {
	got := Compute(Query{
		Start:            utc("2024-05-01T09:00:00Z"),
		End:              utc("2024-05-01T09:40:00Z"),
		Interval:         15 * time.Minute,
		UserIDs:          []int{1},
		MinimumAttendees: 1,
		Limit:            10,
	}, []User{{ID: 1}})
	if len(got) != 2 {
		t.Fatalf("expected 2 whole slices, got %d", len(got))
	}
	if last := got[len(got)-1]; last.End.After(utc("2024-05-01T09:40:00Z")) {
		t.Fatalf("slice %s-%s leaks past the range", last.Start, last.End)
	}

	if got := Compute(Query{
		Start:            utc("2024-05-01T09:00:00Z"),
		End:              utc("2024-05-01T09:10:00Z"),
		Interval:         15 * time.Minute,
		UserIDs:          []int{1},
		MinimumAttendees: 1,
		Limit:            10,
	}, []User{{ID: 1}}); len(got) != 0 {
		t.Fatalf("interval longer than range must yield nothing, got %d", len(got))
	}
}

func TestComputeUnknownUserNeverAttends(t *testing.T) {
	got := Compute(Query{
		Start:            utc("2024-05-01T09:00:00Z"),
		End:              utc("2024-05-01T09:15:00Z"),
		Interval:         15 * time.Minute,
		UserIDs:          []int{7, 1},
		MinimumAttendees: 1,
		Limit:            10,
	}, []User{{ID: 1}})
	if len(got) != 1 || !reflect.DeepEqual(got[0].Attendees, []int{1}) {
		t.Fatalf("expected only the stored user, got %+v", got)
	}
}

func TestComputeAttendeeOrderFollowsRequest(t *testing.T) {
	got := Compute(Query{
		Start:            utc("2024-05-01T09:00:00Z"),
		End:              utc("2024-05-01T09:15:00Z"),
		Interval:         15 * time.Minute,
		UserIDs:          []int{3, 1, 2},
		MinimumAttendees: 1,
		Limit:            10,
	}, []User{{ID: 1}, {ID: 2}, {ID: 3}})
	if !reflect.DeepEqual(got[0].Attendees, []int{3, 1, 2}) {
		t.Fatalf("expected request order, got %v", got[0].Attendees)
	}
}

func TestComputeDoesNotMutateUsers(t *testing.T) {
	users := threeUsers(t)
	before := len(users[0].Events)
	first := users[0].Events[0]

	Compute(Query{
		Start:            utc("2019-01-01T15:15:00-05:00"),
		End:              utc("2019-01-01T16:00:00-05:00"),
		Interval:         15 * time.Minute,
		UserIDs:          []int{1, 2, 3},
		MinimumAttendees: 1,
		Limit:            5,
	}, users)

	if len(users[0].Events) != before || users[0].Events[0] != first {
		t.Fatal("Compute must not modify the roster")
	}
}

func TestComputeAcrossDaylightSavingStart(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	users := []User{{
		ID:           1,
		WorkingHours: &WorkingHours{Start: mustClock(t, "09:00"), End: mustClock(t, "17:00"), Location: ny},
	}}
	q := Query{
		Interval:         15 * time.Minute,
		UserIDs:          []int{1},
		MinimumAttendees: 1,
		Limit:            10,
	}

	// 13:00Z is 08:00 EST in winter but 09:00 EDT after the March 10 switch.
	q.Start, q.End = utc("2019-03-08T13:00:00Z"), utc("2019-03-08T13:15:00Z")
	if got := Compute(q, users); len(got) != 0 {
		t.Fatalf("08:00 EST is before working hours, got %+v", got)
	}

	q.Start, q.End = utc("2019-03-11T13:00:00Z"), utc("2019-03-11T13:15:00Z")
	if got := Compute(q, users); len(got) != 1 {
		t.Fatalf("09:00 EDT is the start of working hours, got %+v", got)
	}
}

func TestQuerySlices(t *testing.T) {
	q := Query{Start: utc("2024-05-01T09:00:00Z"), End: utc("2024-05-01T10:00:00Z"), Interval: 15 * time.Minute}
	if q.Slices() != 4 {
		t.Fatalf("expected 4 slices, got %d", q.Slices())
	}
	q.Interval = 0
	if q.Slices() != 0 {
		t.Fatal("zero interval has no slices")
	}
}
