package service

import (
	"strings"
	"time"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Period is a half-open time range [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

// parseInstant accepts RFC 3339 timestamps or bare dates, which are taken
// as midnight in loc.
func parseInstant(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(dayLayout, raw, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// dayPeriod covers the calendar day of raw, or of now when raw is empty.
func dayPeriod(raw string, now time.Time, loc *time.Location) (Period, error) {
	day := now
	if raw != "" {
		t, err := parseInstant(raw, loc)
		if err != nil {
			return Period{}, err
		}
		day = t
	}
	start := startOfDay(day, loc)
	return Period{Start: start, End: start.AddDate(0, 0, 1)}, nil
}

// monthPeriod covers the calendar month "YYYY-MM", or the current one.
func monthPeriod(raw string, now time.Time, loc *time.Location) (Period, error) {
	var start time.Time
	if raw == "" {
		n := now.In(loc)
		start = time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, loc)
	} else {
		t, err := time.ParseInLocation(monthLayout, strings.TrimSpace(raw), loc)
		if err != nil {
			return Period{}, ErrInvalidDate
		}
		start = t
	}
	return Period{Start: start, End: start.AddDate(0, 1, 0)}, nil
}

// rangePeriod covers whole days from..to in either order. Without both
// bounds it covers the last seven days including today.
func rangePeriod(from, to string, now time.Time, loc *time.Location) (Period, error) {
	if from == "" || to == "" {
		today := startOfDay(now, loc)
		return Period{Start: today.AddDate(0, 0, -6), End: today.AddDate(0, 0, 1)}, nil
	}
	a, err := parseInstant(from, loc)
	if err != nil {
		return Period{}, err
	}
	b, err := parseInstant(to, loc)
	if err != nil {
		return Period{}, err
	}
	if b.Before(a) {
		a, b = b, a
	}
	return Period{Start: startOfDay(a, loc), End: startOfDay(b, loc).AddDate(0, 0, 1)}, nil
}

// dayBounds turns optional from/to dates into [start of from, end of to).
func dayBounds(from, to string, loc *time.Location) (start, end *time.Time, err error) {
	if from != "" {
		t, err := parseInstant(from, loc)
		if err != nil {
			return nil, nil, err
		}
		t = startOfDay(t, loc)
		start = &t
	}
	if to != "" {
		t, err := parseInstant(to, loc)
		if err != nil {
			return nil, nil, err
		}
		t = startOfDay(t, loc).AddDate(0, 0, 1)
		end = &t
	}
	return start, end, nil
}
