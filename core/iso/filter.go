package iso

import "strings"

// Located records carry a pricing location.
type Located interface {
	LocationName() string
}

// AllLocations keeps every location when used as the only filter entry.
const AllLocations = "ALL"

// TradingHubs expands to the ISO's trading hubs in a location filter.
const TradingHubs = "HUBS"

// ExpandLocations replaces the TradingHubs entry with hubs. Other entries
// are kept in order and duplicates are dropped.
func ExpandLocations(locations, hubs []string) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(l string) {
		if _, ok := seen[l]; !ok {
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	for _, l := range locations {
		if strings.EqualFold(l, TradingHubs) {
			for _, h := range hubs {
				add(h)
			}
			continue
		}
		add(l)
	}
	return out
}

// FilterLocations keeps the records whose location is listed.
func FilterLocations[T Located](recs []T, locations []string) []T {
	if len(locations) == 0 || (len(locations) == 1 && strings.EqualFold(locations[0], AllLocations)) {
		return recs
	}
	keep := make(map[string]struct{}, len(locations))
	for _, l := range locations {
		keep[l] = struct{}{}
	}
	out := recs[:0:0]
	for _, r := range recs {
		if _, ok := keep[r.LocationName()]; ok {
			out = append(out, r)
		}
	}
	return out
}
