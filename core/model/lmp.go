package model

import "math"

// LMP is a locational marginal price decomposed into its energy, congestion
// and loss components. Unparsable components are NaN.
type LMP struct {
	Interval
	Market       Market  `json:"market"`
	Location     string  `json:"location"`
	LocationType string  `json:"location_type"`
	LMP          float64 `json:"lmp"`
	Energy       float64 `json:"energy"`
	Congestion   float64 `json:"congestion"`
	Loss         float64 `json:"loss"`
}

// NewLMP derives the energy component as LMP - Loss - Congestion.
func NewLMP(iv Interval, market Market, location, locationType string, lmp, congestion, loss float64) LMP {
	return LMP{
		Interval:     iv,
		Market:       market,
		Location:     location,
		LocationType: locationType,
		LMP:          lmp,
		Energy:       lmp - loss - congestion,
		Congestion:   congestion,
		Loss:         loss,
	}
}

// Valid reports whether every price component parsed.
func (l LMP) Valid() bool {
	return !math.IsNaN(l.LMP) && !math.IsNaN(l.Congestion) && !math.IsNaN(l.Loss)
}

func (l LMP) Columns() []string {
	return append(append([]string{}, intervalColumns...),
		"Market", "Location", "Location Type", "LMP", "Energy", "Congestion", "Loss")
}

func (l LMP) Values() []any {
	return append(l.Interval.values(),
		l.Market.String(), l.Location, l.LocationType, l.LMP, l.Energy, l.Congestion, l.Loss)
}

// LocationName is used by location filters.
func (l LMP) LocationName() string { return l.Location }
