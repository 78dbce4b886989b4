package model

import (
	"fmt"
	"strings"
	"time"
)

// DateKind tells how a DateSpec selects data.
type DateKind int

const (
	DateLatest DateKind = iota
	DateToday
	DateDay
	DateRange
)

// DateSpec is the date selector accepted by every fetch operation: the most
// recent interval, the current market day, one day, or a [Start, End) range.
type DateSpec struct {
	Kind  DateKind
	Start time.Time
	End   time.Time
}

func Latest() DateSpec { return DateSpec{Kind: DateLatest} }

func Today() DateSpec { return DateSpec{Kind: DateToday} }

func Day(t time.Time) DateSpec { return DateSpec{Kind: DateDay, Start: t} }

// Range selects every day from start (inclusive) to end (exclusive).
func Range(start, end time.Time) DateSpec {
	return DateSpec{Kind: DateRange, Start: start, End: end}
}

func (d DateSpec) String() string {
	switch d.Kind {
	case DateLatest:
		return "latest"
	case DateToday:
		return "today"
	case DateDay:
		return d.Start.Format("2006-01-02")
	case DateRange:
		return d.Start.Format("2006-01-02") + ".." + d.End.Format("2006-01-02")
	default:
		return "invalid"
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02", "20060102"}

// ParseDate parses "latest", "today" or a calendar date. Dates without an
// offset are interpreted in loc.
func ParseDate(s string, loc *time.Location) (DateSpec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "latest":
		return Latest(), nil
	case "today":
		return Today(), nil
	}
	t, err := parseInLocation(strings.TrimSpace(s), loc)
	if err != nil {
		return DateSpec{}, err
	}
	return Day(t), nil
}

// ParseDateRange parses a start and an optional end. An empty end yields the
// same result as ParseDate(start).
func ParseDateRange(start, end string, loc *time.Location) (DateSpec, error) {
	d, err := ParseDate(start, loc)
	if err != nil || strings.TrimSpace(end) == "" {
		return d, err
	}
	if d.Kind != DateDay {
		return DateSpec{}, fmt.Errorf("range start must be a date, got %q", start)
	}
	e, err := parseInLocation(strings.TrimSpace(end), loc)
	if err != nil {
		return DateSpec{}, err
	}
	if !e.After(d.Start) {
		return DateSpec{}, fmt.Errorf("range end %s must be after start %s", end, start)
	}
	return Range(d.Start, e), nil
}

func parseInLocation(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
