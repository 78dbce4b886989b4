// Package miso fetches and normalizes market data published by the
// Midcontinent Independent System Operator.
//
// MISO spans several timezones; every timestamp returned by this package is
// expressed in US/Eastern. The MISO APIs report times in Eastern Standard Time
// all year round, so raw values are parsed in a fixed UTC-5 zone first.
package miso

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/kilianp07/gridstatus/core/iso"
	"github.com/kilianp07/gridstatus/core/model"
	"github.com/kilianp07/gridstatus/infra/logger"
)

const (
	ID   = "miso"
	Name = "Midcontinent ISO"

	DefaultTimezone = "US/Eastern"
)

// Hubs are the MISO trading hubs, selected by the HUBS location filter.
var Hubs = []string{
	"ILLINOIS.HUB",
	"INDIANA.HUB",
	"LOUISIANA.HUB",
	"MICHIGAN.HUB",
	"MINN.HUB",
	"MS.HUB",
	"TEXAS.HUB",
	"ARKANSAS.HUB",
}

// est is the zone of every raw MISO timestamp.
var est = time.FixedZone("EST", -5*60*60)

var lmpSupport = iso.LMPSupport{
	model.MarketRealTime5Min:   {iso.ClassLatest, iso.ClassToday},
	model.MarketDayAheadHourly: {iso.ClassToday, iso.ClassHistorical},
}

// Endpoints are the MISO base URLs. Tests point them at local servers.
type Endpoints struct {
	DataBroker    string
	Reporter      string
	MarketReports string
	Queue         string
}

// DefaultEndpoints are the public MISO services.
var DefaultEndpoints = Endpoints{
	DataBroker:    "https://api.misoenergy.org/MISORTWDDataBroker/DataBrokerServices.asmx",
	Reporter:      "https://api.misoenergy.org/MISORTWDBIReporter/Reporter.asmx",
	MarketReports: "https://docs.misoenergy.org/marketreports",
	Queue:         "https://www.misoenergy.org/api/giqueue/getprojects",
}

// MISO implements iso.ISO.
type MISO struct {
	fetcher        iso.Fetcher
	log            logger.Logger
	now            func() time.Time
	loc            *time.Location
	endpoints      Endpoints
	maxConcurrency int
}

// Option customizes a MISO client.
type Option func(*MISO)

// WithEndpoints overrides the service URLs.
func WithEndpoints(e Endpoints) Option { return func(m *MISO) { m.endpoints = e } }

// New creates a MISO client.
func New(opts iso.Options, mods ...Option) (*MISO, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("miso: fetcher required")
	}
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return nil, fmt.Errorf("miso: load timezone: %w", err)
	}
	m := &MISO{
		fetcher:        opts.Fetcher,
		log:            opts.Logger,
		now:            opts.Now,
		loc:            loc,
		endpoints:      DefaultEndpoints,
		maxConcurrency: opts.MaxConcurrency,
	}
	if m.log == nil {
		m.log = logger.New("miso")
	}
	if m.now == nil {
		m.now = time.Now
	}
	for _, mod := range mods {
		mod(m)
	}
	return m, nil
}

func init() {
	iso.Register(ID, func(o iso.Options) (iso.ISO, error) { return New(o) })
}

func (m *MISO) ID() string               { return ID }
func (m *MISO) Name() string             { return Name }
func (m *MISO) Location() *time.Location { return m.loc }

func (m *MISO) Markets() []model.Market {
	return []model.Market{model.MarketRealTime5Min, model.MarketDayAheadHourly}
}

// today is the current market day in US/Eastern.
func (m *MISO) today() time.Time { return iso.StartOfDay(m.now(), m.loc) }
