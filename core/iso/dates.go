package iso

import (
	"time"

	"github.com/kilianp07/gridstatus/core/model"
)

// DateClass groups requested dates by what an ISO can serve for them.
type DateClass string

const (
	ClassLatest     DateClass = "latest"
	ClassToday      DateClass = "today"
	ClassHistorical DateClass = "historical"
)

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ResolveDay returns the market day a non-range DateSpec refers to. Latest and
// today both resolve to the current day in loc.
func ResolveDay(d model.DateSpec, loc *time.Location, now time.Time) time.Time {
	switch d.Kind {
	case model.DateDay, model.DateRange:
		return StartOfDay(d.Start, loc)
	default:
		return StartOfDay(now, loc)
	}
}

// IsToday reports whether d designates the current day in loc.
func IsToday(d model.DateSpec, loc *time.Location, now time.Time) bool {
	switch d.Kind {
	case model.DateLatest, model.DateToday:
		return true
	case model.DateDay:
		return StartOfDay(d.Start, loc).Equal(StartOfDay(now, loc))
	default:
		return false
	}
}

// Classify maps a DateSpec to latest, today or historical. A day equal to the
// current day is classified as today.
func Classify(d model.DateSpec, loc *time.Location, now time.Time) DateClass {
	switch {
	case d.Kind == model.DateLatest:
		return ClassLatest
	case IsToday(d, loc, now):
		return ClassToday
	default:
		return ClassHistorical
	}
}

// SplitDays returns the day starts covering [start, end) in loc.
func SplitDays(start, end time.Time, loc *time.Location) []time.Time {
	var days []time.Time
	for d := StartOfDay(start, loc); d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
