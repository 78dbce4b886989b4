package model

import (
	"fmt"
	"strings"
	"time"
)

// Market identifies an energy market product published by an ISO.
type Market int

const (
	MarketUnknown Market = iota
	MarketRealTime5Min
	MarketDayAheadHourly
)

// String returns the canonical market name.
func (m Market) String() string {
	switch m {
	case MarketRealTime5Min:
		return "REAL_TIME_5_MIN"
	case MarketDayAheadHourly:
		return "DAY_AHEAD_HOURLY"
	default:
		return "unknown"
	}
}

// IntervalDuration is the length of one settlement interval of the market.
func (m Market) IntervalDuration() time.Duration {
	switch m {
	case MarketRealTime5Min:
		return 5 * time.Minute
	case MarketDayAheadHourly:
		return time.Hour
	default:
		return 0
	}
}

// ParseMarket converts a market name, case-insensitively.
func ParseMarket(s string) (Market, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "REAL_TIME_5_MIN":
		return MarketRealTime5Min, nil
	case "DAY_AHEAD_HOURLY":
		return MarketDayAheadHourly, nil
	default:
		return MarketUnknown, fmt.Errorf("unknown market: %s", s)
	}
}

func (m Market) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Market) UnmarshalText(b []byte) error {
	v, err := ParseMarket(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
