package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/gridstatus/core/events"
	"github.com/kilianp07/gridstatus/core/iso"
	"github.com/kilianp07/gridstatus/core/logger"
	"github.com/kilianp07/gridstatus/core/metrics"
	"github.com/kilianp07/gridstatus/core/model"
	"github.com/kilianp07/gridstatus/core/monitoring"
	"github.com/kilianp07/gridstatus/core/store"
	"github.com/kilianp07/gridstatus/internal/eventbus"
)

// Deps are the collaborators of a Poller. Only ISOs is required.
type Deps struct {
	ISOs   func(id string) (iso.ISO, error)
	Store  store.Store
	Sink   metrics.MetricsSink
	Bus    *eventbus.TypedBus[events.FetchEvent]
	Logger logger.Logger
	Now    func() time.Time
}

// Poller runs collection jobs.
type Poller struct {
	jobs  []Job
	isos  map[string]iso.ISO
	store store.Store
	sink  metrics.MetricsSink
	bus   *eventbus.TypedBus[events.FetchEvent]
	log   logger.Logger
	now   func() time.Time
}

// New resolves the ISO of every job. Jobs must already be validated.
func New(jobs []Job, d Deps) (*Poller, error) {
	if d.ISOs == nil {
		return nil, fmt.Errorf("poller: iso resolver required")
	}
	p := &Poller{
		jobs:  jobs,
		isos:  map[string]iso.ISO{},
		store: d.Store,
		sink:  d.Sink,
		bus:   d.Bus,
		log:   d.Logger,
		now:   d.Now,
	}
	if p.sink == nil {
		p.sink = metrics.NopSink{}
	}
	if p.log == nil {
		p.log = logger.NopLogger{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	for _, j := range jobs {
		if _, ok := p.isos[j.ISO]; ok {
			continue
		}
		i, err := d.ISOs(j.ISO)
		if err != nil {
			return nil, fmt.Errorf("job %q: %w", j.Name, err)
		}
		p.isos[j.ISO] = i
	}
	return p, nil
}

// Jobs returns the scheduled jobs.
func (p *Poller) Jobs() []Job { return p.jobs }

// Run starts one ticker per job, running each immediately, and blocks until
// ctx is canceled. Fetch errors never stop a job.
func (p *Poller) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, j := range p.jobs {
		wg.Add(1)
		go func(j Job) {
			defer wg.Done()
			defer monitoring.Recover()
			p.loop(ctx, j)
		}(j)
	}
	p.log.Infof("poller started with %d jobs", len(p.jobs))
	wg.Wait()
	p.log.Infof("poller stopped")
}

func (p *Poller) loop(ctx context.Context, j Job) {
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()
	for {
		p.RunJob(ctx, j)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce runs every job once, in order, and returns their events.
func (p *Poller) RunOnce(ctx context.Context) []events.FetchEvent {
	out := make([]events.FetchEvent, 0, len(p.jobs))
	for _, j := range p.jobs {
		if ctx.Err() != nil {
			break
		}
		out = append(out, p.RunJob(ctx, j))
	}
	return out
}

// RunJob fetches, stores and reports one job.
func (p *Poller) RunJob(ctx context.Context, j Job) events.FetchEvent {
	ctx, cancel := context.WithTimeout(ctx, j.Interval)
	defer cancel()

	start := p.now()
	ev := events.FetchEvent{
		RunID:   uuid.NewString(),
		Job:     j.Name,
		ISO:     j.ISO,
		Dataset: j.Dataset,
		Market:  j.Market,
	}
	if j.Dataset != model.DatasetLMP {
		ev.Market = ""
	}
	log := p.log.With(map[string]any{"job": j.Name, "run_id": ev.RunID})

	records, obs, err := p.fetch(ctx, j)
	if err == nil && p.store != nil {
		if serr := p.store.Append(ctx, obs); serr != nil {
			err = fmt.Errorf("failed to store observations: %w", serr)
		}
	}
	ev.Duration = p.now().Sub(start)
	ev.Time = p.now()
	if err != nil {
		ev.Error = err.Error()
		log.Errorf("fetch failed: %v", err)
		monitoring.CaptureFetchError(err, "poller", j.ISO, string(j.Dataset))
	} else {
		ev.Records = records
		ev.Observations = obs
		log.Debugw("fetch complete", map[string]any{"records": records, "observations": len(obs)})
	}

	if merr := p.sink.RecordFetch(ev); merr != nil {
		log.Warnf("record metrics: %v", merr)
	}
	if r, ok := p.sink.(metrics.ObservationRecorder); ok && !ev.Failed() {
		if merr := r.RecordObservations(obs); merr != nil {
			log.Warnf("record observations: %v", merr)
		}
	}
	if p.bus != nil {
		p.bus.Publish(ev)
	}
	return ev
}

func (p *Poller) fetch(ctx context.Context, j Job) (int, []model.Observation, error) {
	i, ok := p.isos[j.ISO]
	if !ok {
		return 0, nil, fmt.Errorf("unknown iso %q", j.ISO)
	}
	date := j.Date()
	switch j.Dataset {
	case model.DatasetFuelMix:
		recs, err := i.GetFuelMix(ctx, date)
		return len(recs), model.ToObservations(i.ID(), recs), err
	case model.DatasetLoad:
		recs, err := i.GetLoad(ctx, date)
		return len(recs), model.ToObservations(i.ID(), recs), err
	case model.DatasetLoadForecast:
		recs, err := i.GetLoadForecast(ctx, date)
		return len(recs), model.ToObservations(i.ID(), recs), err
	case model.DatasetLMP:
		market, err := model.ParseMarket(j.Market)
		if err != nil {
			return 0, nil, err
		}
		recs, err := i.GetLMP(ctx, iso.LMPQuery{Date: date, Market: market, Locations: j.Locations})
		return len(recs), model.ToObservations(i.ID(), recs), err
	default:
		return 0, nil, fmt.Errorf("unknown dataset %q", j.Dataset)
	}
}
