package model

// FuelSource is the output of one generation category.
type FuelSource struct {
	Fuel string  `json:"fuel"`
	MW   float64 `json:"mw"`
}

// FuelMix is the generation by fuel category for one interval.
type FuelMix struct {
	Interval
	Sources []FuelSource `json:"sources"`
}

// MW returns the output of a fuel category and whether it is present.
func (f FuelMix) MW(fuel string) (float64, bool) {
	for _, s := range f.Sources {
		if s.Fuel == fuel {
			return s.MW, true
		}
	}
	return 0, false
}

// Total sums every category.
func (f FuelMix) Total() float64 {
	var total float64
	for _, s := range f.Sources {
		total += s.MW
	}
	return total
}

func (f FuelMix) Columns() []string {
	cols := append([]string{}, intervalColumns...)
	for _, s := range f.Sources {
		cols = append(cols, s.Fuel)
	}
	return cols
}

func (f FuelMix) Values() []any {
	vals := f.Interval.values()
	for _, s := range f.Sources {
		vals = append(vals, s.MW)
	}
	return vals
}
