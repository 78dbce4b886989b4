package miso

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/gridstatus/core/iso"
	"github.com/kilianp07/gridstatus/core/model"
)

type totalLoadResponse struct {
	LoadInfo struct {
		RefID            string `json:"RefId"`
		FiveMinTotalLoad []struct {
			Load struct {
				Time  string `json:"Time"`
				Value number `json:"Value"`
			} `json:"Load"`
		} `json:"FiveMinTotalLoad"`
		MediumTermLoadForecast []struct {
			Forecast struct {
				HourEnding   number `json:"HourEnding"`
				LoadForecast number `json:"LoadForecast"`
			} `json:"Forecast"`
		} `json:"MediumTermLoadForecast"`
	} `json:"LoadInfo"`
}

func (m *MISO) totalLoad(ctx context.Context) (*totalLoadResponse, time.Time, error) {
	url := m.endpoints.DataBroker + "?messageType=gettotalload&returnType=json"
	m.log.Debugf("Downloading total load from %s", url)
	var resp totalLoadResponse
	if err := m.fetcher.GetJSON(ctx, url, &resp); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to fetch total load: %w", err)
	}
	y, mo, d, err := parseRefDay(resp.LoadInfo.RefID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("total load RefId: %w", err)
	}
	return &resp, time.Date(y, mo, d, 0, 0, 0, 0, est), nil
}

// GetLoad returns today's five minute system load. Latest is served as today.
func (m *MISO) GetLoad(ctx context.Context, date model.DateSpec) ([]model.Load, error) {
	if !iso.IsToday(date, m.loc, m.now()) {
		return nil, iso.NotSupported("load", fmt.Sprintf("date %s", date))
	}
	resp, day, err := m.totalLoad(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.Load, 0, len(resp.LoadInfo.FiveMinTotalLoad))
	for _, row := range resp.LoadInfo.FiveMinTotalLoad {
		h, mi, err := parseHHMM(row.Load.Time)
		if err != nil {
			return nil, fmt.Errorf("load Time: %w", err)
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), h, mi, 0, 0, est).In(m.loc)
		out = append(out, model.Load{
			Interval: model.NewInterval(start, 5*time.Minute),
			Load:     float64(row.Load.Value),
		})
	}
	return out, nil
}

// GetLoadForecast returns the medium term hourly forecast for today.
func (m *MISO) GetLoadForecast(ctx context.Context, date model.DateSpec) ([]model.LoadForecast, error) {
	if !iso.IsToday(date, m.loc, m.now()) {
		return nil, iso.NotSupported("load forecast", fmt.Sprintf("date %s", date))
	}
	resp, day, err := m.totalLoad(ctx)
	if err != nil {
		return nil, err
	}

	forecastTime := day.In(m.loc)
	out := make([]model.LoadForecast, 0, len(resp.LoadInfo.MediumTermLoadForecast))
	for _, row := range resp.LoadInfo.MediumTermLoadForecast {
		he := float64(row.Forecast.HourEnding)
		if math.IsNaN(he) || he < 1 {
			return nil, fmt.Errorf("load forecast HourEnding: invalid value %v", he)
		}
		start := forecastTime.Add(time.Duration(int(he)-1) * time.Hour)
		out = append(out, model.LoadForecast{
			Interval:     model.NewInterval(start, time.Hour),
			ForecastTime: forecastTime,
			LoadForecast: float64(row.Forecast.LoadForecast),
		})
	}
	return out, nil
}
