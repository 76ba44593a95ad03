package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/availability"
)

// QueryLimits bounds what a caller may ask the engine to do.
type QueryLimits struct {
	DefaultInterval time.Duration
	DefaultLimit    int
	MaxSlices       int
}

const (
	maxIntervalMinutes = 24 * 60
	maxLimit           = 1000

	maxMinimumAttendees = 100000
)

// Options may also arrive nested under interval[...], the form qs-style clients produce for
// {interval: {interval_minutes: 30}}.
var (
	intervalKeys = []string{"interval_minutes", "intervalMinutes", "interval[interval_minutes]", "interval[intervalMinutes]"}
	limitKeys    = []string{"limit", "interval[limit]"}
	minimumKeys  = []string{"minimum_attendees", "minimumAttendees", "interval[minimum_attendees]", "interval[minimumAttendees]"}
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseInstant accepts RFC 3339 and, for inputs without an offset, treats them as UTC.
func parseInstant(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", raw)
}

// parseUserIDs collects ids from user_ids, user_ids[] and user_ids[n] (in index order),
// splitting comma separated values. Duplicates keep their first position.
func parseUserIDs(values url.Values) ([]int, error) {
	var raw []string
	raw = append(raw, values["user_ids"]...)
	raw = append(raw, values["user_ids[]"]...)

	type indexed struct {
		n      int
		values []string
	}
	var numbered []indexed
	for key, vs := range values {
		if !strings.HasPrefix(key, "user_ids[") || !strings.HasSuffix(key, "]") || key == "user_ids[]" {
			continue
		}
		n, err := strconv.Atoi(key[len("user_ids[") : len(key)-1])
		if err != nil {
			return nil, fmt.Errorf("invalid parameter %q", key)
		}
		numbered = append(numbered, indexed{n: n, values: vs})
	}
	sort.Slice(numbered, func(i, j int) bool { return numbered[i].n < numbered[j].n })
	for _, p := range numbered {
		raw = append(raw, p.values...)
	}

	seen := map[int]bool{}
	var ids []int
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid user id %q", part)
			}
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("user_ids is required")
	}
	return ids, nil
}

func intParam(values url.Values, keys []string, fallback, min, max int) (int, error) {
	for _, key := range keys {
		raw := strings.TrimSpace(values.Get(key))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < min || n > max {
			return 0, fmt.Errorf("%s must be an integer between %d and %d", key, min, max)
		}
		return n, nil
	}
	return fallback, nil
}

// ParseAvailabilityQuery turns request parameters into an engine query.
func ParseAvailabilityQuery(values url.Values, limits QueryLimits) (availability.Query, error) {
	var q availability.Query

	rawStart, rawEnd := values.Get("start"), values.Get("end")
	if strings.TrimSpace(rawStart) == "" || strings.TrimSpace(rawEnd) == "" {
		return q, errors.New("start and end are required")
	}
	start, err := parseInstant(rawStart)
	if err != nil {
		return q, fmt.Errorf("start: %w", err)
	}
	end, err := parseInstant(rawEnd)
	if err != nil {
		return q, fmt.Errorf("end: %w", err)
	}
	if !start.Before(end) {
		return q, errors.New("start must be before end")
	}

	ids, err := parseUserIDs(values)
	if err != nil {
		return q, err
	}

	defaultMinutes := int(limits.DefaultInterval / time.Minute)
	if defaultMinutes <= 0 {
		defaultMinutes = 15
	}
	minutes, err := intParam(values, intervalKeys, defaultMinutes, 1, maxIntervalMinutes)
	if err != nil {
		return q, err
	}
	limit, err := intParam(values, limitKeys, limits.DefaultLimit, 0, maxLimit)
	if err != nil {
		return q, err
	}
	// A minimum above len(ids) is legal and simply matches nothing; -1 disables the filter.
	minimum, err := intParam(values, minimumKeys, 1, availability.NoMinimum, maxMinimumAttendees)
	if err != nil {
		return q, err
	}

	q = availability.Query{
		Start:            start,
		End:              end,
		Interval:         time.Duration(minutes) * time.Minute,
		UserIDs:          ids,
		MinimumAttendees: minimum,
		Limit:            limit,
	}
	if limits.MaxSlices > 0 && q.Slices() > limits.MaxSlices {
		return q, fmt.Errorf("range holds %d slices, more than the allowed %d", q.Slices(), limits.MaxSlices)
	}
	return q, nil
}
