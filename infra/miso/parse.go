package miso

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var intervalLayouts = []string{
	"2006-01-02 3:04:05 PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

// parseEST parses a MISO wall clock time and returns it in loc.
func parseEST(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range intervalLayouts {
		if t, err := time.ParseInLocation(layout, s, est); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized interval time %q", s)
}

var dayLayouts = []string{"02-Jan-2006", "2-Jan-2006", "2006-01-02", "01/02/2006", "1/2/2006"}

// parseRefDay extracts the market day from a RefId such as
// "08-Mar-2023 - Interval 20:05 EST".
func parseRefDay(refID string) (year int, month time.Month, day int, err error) {
	fields := strings.Fields(refID)
	if len(fields) == 0 {
		return 0, 0, 0, fmt.Errorf("empty RefId")
	}
	for _, layout := range dayLayouts {
		if t, perr := time.Parse(layout, fields[0]); perr == nil {
			return t.Year(), t.Month(), t.Day(), nil
		}
	}
	return 0, 0, 0, fmt.Errorf("unrecognized RefId date %q", fields[0])
}

// number accepts JSON numbers as well as numeric strings, which the MISO
// APIs use interchangeably.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = number(math.NaN())
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = number(toFloat(s))
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*n = number(f)
	return nil
}

// toFloat parses s, returning NaN when it is not a number.
func toFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// parseHHMM splits "20:05" into hours and minutes.
func parseHHMM(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	mi, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	return h, mi, nil
}
