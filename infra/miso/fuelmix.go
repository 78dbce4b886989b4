package miso

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/gridstatus/core/iso"
	"github.com/kilianp07/gridstatus/core/model"
)

type fuelMixResponse struct {
	Fuel struct {
		Type []struct {
			IntervalEST string `json:"INTERVALEST"`
			Category    string `json:"CATEGORY"`
			Act         number `json:"ACT"`
		} `json:"Type"`
	} `json:"Fuel"`
}

// GetFuelMix returns the current generation by fuel category. MISO only
// publishes the latest interval.
func (m *MISO) GetFuelMix(ctx context.Context, date model.DateSpec) ([]model.FuelMix, error) {
	if date.Kind != model.DateLatest {
		return nil, iso.NotSupported("fuel mix", fmt.Sprintf("date %s", date))
	}

	url := m.endpoints.DataBroker + "?messageType=getfuelmix&returnType=json"
	m.log.Debugf("Downloading fuel mix from %s", url)
	var resp fuelMixResponse
	if err := m.fetcher.GetJSON(ctx, url, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch fuel mix: %w", err)
	}
	if len(resp.Fuel.Type) == 0 {
		return nil, fmt.Errorf("fuel mix response has no categories")
	}

	start, err := parseEST(resp.Fuel.Type[0].IntervalEST, m.loc)
	if err != nil {
		return nil, fmt.Errorf("fuel mix INTERVALEST: %w", err)
	}
	mix := model.FuelMix{Interval: model.NewInterval(start, 5*time.Minute)}
	for _, t := range resp.Fuel.Type {
		mix.Sources = append(mix.Sources, model.FuelSource{Fuel: t.Category, MW: float64(t.Act)})
	}
	return []model.FuelMix{mix}, nil
}
