package eia

import (
	"context"
	"fmt"
	"time"
)

// RegionQuery selects hourly demand, forecast, generation and interchange
// series for a balancing authority.
type RegionQuery struct {
	Respondent string
	Start      time.Time
	End        time.Time
	// Types filters by series type (D, DF, NG, TI). Empty means all.
	Types []string
}

// FuelTypeQuery selects hourly net generation by energy source.
type FuelTypeQuery struct {
	Respondent string
	Start      time.Time
	End        time.Time
	FuelTypes  []string
}

// RegionRecord is one hourly region-data value. Period is in UTC.
type RegionRecord struct {
	Period         time.Time `json:"period"`
	Respondent     string    `json:"respondent"`
	RespondentName string    `json:"respondent_name"`
	Type           string    `json:"type"`
	TypeName       string    `json:"type_name"`
	Value          float64   `json:"value"`
	Units          string    `json:"units"`
}

func (r RegionRecord) Columns() []string {
	return []string{"Period", "Respondent", "Respondent Name", "Type", "Type Name", "Value", "Units"}
}

func (r RegionRecord) Values() []any {
	return []any{r.Period, r.Respondent, r.RespondentName, r.Type, r.TypeName, r.Value, r.Units}
}

// FuelTypeRecord is one hourly net generation value for a fuel.
type FuelTypeRecord struct {
	Period         time.Time `json:"period"`
	Respondent     string    `json:"respondent"`
	RespondentName string    `json:"respondent_name"`
	FuelType       string    `json:"fuel_type"`
	TypeName       string    `json:"type_name"`
	Value          float64   `json:"value"`
	Units          string    `json:"units"`
}

func (r FuelTypeRecord) Columns() []string {
	return []string{"Period", "Respondent", "Respondent Name", "Fuel Type", "Type Name", "Value", "Units"}
}

func (r FuelTypeRecord) Values() []any {
	return []any{r.Period, r.Respondent, r.RespondentName, r.FuelType, r.TypeName, r.Value, r.Units}
}

type rawRow struct {
	Period         string `json:"period"`
	Respondent     string `json:"respondent"`
	RespondentName string `json:"respondent-name"`
	Type           string `json:"type"`
	FuelType       string `json:"fueltype"`
	TypeName       string `json:"type-name"`
	Value          number `json:"value"`
	Units          string `json:"value-units"`
}

// RegionData returns every row matching q.
func (c *Client) RegionData(ctx context.Context, q RegionQuery) ([]RegionRecord, error) {
	f := facets{}
	if q.Respondent != "" {
		f["respondent"] = []string{q.Respondent}
	}
	if len(q.Types) > 0 {
		f["type"] = q.Types
	}
	rows, err := fetchAll[rawRow](ctx, c, regionDataRoute, f, q.Start, q.End)
	if err != nil {
		return nil, err
	}
	out := make([]RegionRecord, 0, len(rows))
	for _, r := range rows {
		p, err := parsePeriod(r.Period)
		if err != nil {
			return nil, fmt.Errorf("region data period: %w", err)
		}
		out = append(out, RegionRecord{
			Period:         p,
			Respondent:     r.Respondent,
			RespondentName: r.RespondentName,
			Type:           r.Type,
			TypeName:       r.TypeName,
			Value:          float64(r.Value),
			Units:          r.Units,
		})
	}
	return out, nil
}

// FuelTypeData returns every row matching q.
func (c *Client) FuelTypeData(ctx context.Context, q FuelTypeQuery) ([]FuelTypeRecord, error) {
	f := facets{}
	if q.Respondent != "" {
		f["respondent"] = []string{q.Respondent}
	}
	if len(q.FuelTypes) > 0 {
		f["fueltype"] = q.FuelTypes
	}
	rows, err := fetchAll[rawRow](ctx, c, fuelTypeRoute, f, q.Start, q.End)
	if err != nil {
		return nil, err
	}
	out := make([]FuelTypeRecord, 0, len(rows))
	for _, r := range rows {
		p, err := parsePeriod(r.Period)
		if err != nil {
			return nil, fmt.Errorf("fuel type period: %w", err)
		}
		out = append(out, FuelTypeRecord{
			Period:         p,
			Respondent:     r.Respondent,
			RespondentName: r.RespondentName,
			FuelType:       r.FuelType,
			TypeName:       r.TypeName,
			Value:          float64(r.Value),
			Units:          r.Units,
		})
	}
	return out, nil
}
