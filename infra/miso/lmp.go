package miso

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/gridstatus/core/iso"
	"github.com/kilianp07/gridstatus/core/model"
	"github.com/kilianp07/gridstatus/infra/httpx"
)

// expostPreamble is the number of report title lines before the CSV header.
const expostPreamble = 4

// GetLMP returns locational marginal prices for the requested market.
func (m *MISO) GetLMP(ctx context.Context, q iso.LMPQuery) ([]model.LMP, error) {
	recs, err := iso.FetchRange(ctx, q.Date, m.loc, m.maxConcurrency,
		func(ctx context.Context, d model.DateSpec) ([]model.LMP, error) {
			if err := lmpSupport.Check(q.Market, d, m.loc, m.now()); err != nil {
				return nil, err
			}
			switch q.Market {
			case model.MarketRealTime5Min:
				return m.realTimeLMP(ctx, d)
			case model.MarketDayAheadHourly:
				return m.dayAheadLMP(ctx, iso.ResolveDay(d, m.loc, m.now()))
			default:
				return nil, iso.NotSupported("lmp", fmt.Sprintf("market %s", q.Market))
			}
		})
	if err != nil {
		return nil, err
	}
	return iso.FilterLocations(recs, iso.ExpandLocations(q.Locations, Hubs)), nil
}

func (m *MISO) expostURL(day time.Time) string {
	return fmt.Sprintf("%s/%s_da_expost_lmp.csv", m.endpoints.MarketReports, day.Format("20060102"))
}

func (m *MISO) expostTable(ctx context.Context, day time.Time) (*httpx.Table, error) {
	url := m.expostURL(day)
	m.log.Debugf("Downloading LMP data from %s", url)
	body, err := m.fetcher.GetBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch day ahead report: %w", err)
	}
	t, err := httpx.ParseCSV(body, expostPreamble)
	if err != nil {
		return nil, fmt.Errorf("failed to parse day ahead report: %w", err)
	}
	return t, nil
}

// nodeTypes maps each pricing node to its type using today's day ahead report.
func (m *MISO) nodeTypes(ctx context.Context) (map[string]string, error) {
	t, err := m.expostTable(ctx, m.today())
	if err != nil {
		return nil, err
	}
	idx, err := t.Require("Node", "Type")
	if err != nil {
		return nil, err
	}
	types := make(map[string]string, len(t.Rows)/3)
	for _, row := range t.Rows {
		node := httpx.Cell(row, idx[0])
		if _, ok := types[node]; !ok {
			types[node] = httpx.Cell(row, idx[1])
		}
	}
	return types, nil
}

func (m *MISO) realTimeLMP(ctx context.Context, d model.DateSpec) ([]model.LMP, error) {
	messageType := "rollingmarketday"
	if d.Kind == model.DateLatest {
		messageType = "currentinterval"
	}
	url := fmt.Sprintf("%s?messageType=%s&returnType=csv", m.endpoints.Reporter, messageType)
	m.log.Debugf("Downloading LMP data from %s", url)
	body, err := m.fetcher.GetBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch real time lmp: %w", err)
	}
	t, err := httpx.ParseCSV(body, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse real time lmp: %w", err)
	}
	idx, err := t.Require("INTERVAL", "CPNODE", "LMP", "MLC", "MCC")
	if err != nil {
		return nil, err
	}

	types, err := m.nodeTypes(ctx)
	if err != nil {
		m.log.Warnf("node types unavailable, location types left empty: %v", err)
		types = map[string]string{}
	}

	out := make([]model.LMP, 0, len(t.Rows))
	for _, row := range t.Rows {
		start, err := parseEST(httpx.Cell(row, idx[0]), m.loc)
		if err != nil {
			return nil, fmt.Errorf("real time lmp INTERVAL: %w", err)
		}
		node := httpx.Cell(row, idx[1])
		out = append(out, model.NewLMP(
			model.NewInterval(start, 5*time.Minute),
			model.MarketRealTime5Min,
			node,
			types[node],
			toFloat(httpx.Cell(row, idx[2])),
			toFloat(httpx.Cell(row, idx[4])),
			toFloat(httpx.Cell(row, idx[3])),
		))
	}
	sortLMP(out)
	return out, nil
}

type nodeHour struct {
	node, typ string
	he        int
}

func (m *MISO) dayAheadLMP(ctx context.Context, day time.Time) ([]model.LMP, error) {
	t, err := m.expostTable(ctx, day)
	if err != nil {
		return nil, err
	}
	idx, err := t.Require("Node", "Type", "Value")
	if err != nil {
		return nil, err
	}

	type hourCol struct {
		col int
		he  int
	}
	var hours []hourCol
	for i, name := range t.Header {
		if !strings.HasPrefix(name, "HE") {
			continue
		}
		he, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(name, "HE")))
		if err != nil || he < 1 {
			return nil, fmt.Errorf("day ahead report: invalid hour column %q", name)
		}
		hours = append(hours, hourCol{col: i, he: he})
	}
	if len(hours) == 0 {
		return nil, fmt.Errorf("day ahead report: no hour columns")
	}

	// Each node has one row per value kind; pivot them into one price triple.
	values := map[nodeHour]map[string]string{}
	var order []nodeHour
	for _, row := range t.Rows {
		node, typ, kind := httpx.Cell(row, idx[0]), httpx.Cell(row, idx[1]), httpx.Cell(row, idx[2])
		if node == "" {
			continue
		}
		for _, h := range hours {
			k := nodeHour{node: node, typ: typ, he: h.he}
			v, ok := values[k]
			if !ok {
				v = map[string]string{}
				values[k] = v
				order = append(order, k)
			}
			if _, seen := v[kind]; !seen {
				v[kind] = httpx.Cell(row, h.col)
			}
		}
	}

	out := make([]model.LMP, 0, len(order))
	for _, k := range order {
		v := values[k]
		start := time.Date(day.Year(), day.Month(), day.Day(), k.he-1, 0, 0, 0, est).In(m.loc)
		out = append(out, model.NewLMP(
			model.NewInterval(start, time.Hour),
			model.MarketDayAheadHourly,
			k.node,
			k.typ,
			toFloat(v["LMP"]),
			toFloat(v["MCC"]),
			toFloat(v["MLC"]),
		))
	}
	sortLMP(out)
	return out, nil
}

func sortLMP(recs []model.LMP) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.Location < b.Location
	})
}
