package iso

import (
	"fmt"
	"time"

	"github.com/kilianp07/gridstatus/core/model"
)

// LMPSupport lists, per market, the date classes an ISO publishes prices for.
type LMPSupport map[model.Market][]DateClass

// Check returns ErrNotSupported when the market is unknown to the ISO or the
// date falls in a class the market does not serve.
func (s LMPSupport) Check(m model.Market, d model.DateSpec, loc *time.Location, now time.Time) error {
	classes, ok := s[m]
	if !ok {
		return NotSupported("lmp", fmt.Sprintf("market %s", m))
	}
	c := Classify(d, loc, now)
	for _, allowed := range classes {
		if allowed == c {
			return nil
		}
	}
	return NotSupported("lmp", fmt.Sprintf("%s data for market %s", c, m))
}
