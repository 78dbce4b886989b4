package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/gridstatus/api"
	"github.com/kilianp07/gridstatus/config"
	"github.com/kilianp07/gridstatus/core/events"
	"github.com/kilianp07/gridstatus/core/iso"
	coremetrics "github.com/kilianp07/gridstatus/core/metrics"
	coremon "github.com/kilianp07/gridstatus/core/monitoring"
	"github.com/kilianp07/gridstatus/core/poller"
	"github.com/kilianp07/gridstatus/core/store"
	"github.com/kilianp07/gridstatus/infra/httpx"
	"github.com/kilianp07/gridstatus/infra/logger"
	"github.com/kilianp07/gridstatus/infra/metrics"
	"github.com/kilianp07/gridstatus/infra/monitoring"
	"github.com/kilianp07/gridstatus/infra/mqtt"
	"github.com/kilianp07/gridstatus/infra/tracing"
	"github.com/kilianp07/gridstatus/internal/eventbus"

	// Register the storage backends.
	_ "github.com/kilianp07/gridstatus/infra/store"
)

// Service wires the poller, storage, sinks, live publication and the API.
type Service struct {
	cfg    *config.Config
	log    logger.Logger
	ISOs   []iso.ISO
	Store  store.Store
	Sink   coremetrics.MetricsSink
	Bus    *eventbus.TypedBus[events.FetchEvent]
	Poller *poller.Poller

	mqtt            *mqtt.PahoClient
	shutdownTracing tracing.ShutdownFunc
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	shutdownTracing, err := tracing.Setup(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	var observer httpx.RequestObserver
	if cfg.Metrics.PrometheusAddr != "" {
		o, err := metrics.NewHTTPObserver(prometheus.DefaultRegisterer)
		if err != nil {
			return nil, fmt.Errorf("http observer: %w", err)
		}
		observer = o
	}
	isos, err := NewISOs(cfg, observer)
	if err != nil {
		return nil, err
	}

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	jobs, err := cfg.Poller.Resolve()
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	bus := eventbus.NewTyped[events.FetchEvent]()
	byID := make(map[string]iso.ISO, len(isos))
	for _, i := range isos {
		byID[i.ID()] = i
	}
	p, err := poller.New(jobs, poller.Deps{
		ISOs: func(id string) (iso.ISO, error) {
			if i, ok := byID[id]; ok {
				return i, nil
			}
			return nil, fmt.Errorf("unknown iso %q (available: %v)", id, iso.IDs())
		},
		Store:  st,
		Sink:   sink,
		Bus:    bus,
		Logger: logger.New("poller"),
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	svc := &Service{
		cfg:             cfg,
		log:             log,
		ISOs:            isos,
		Store:           st,
		Sink:            sink,
		Bus:             bus,
		Poller:          p,
		shutdownTracing: shutdownTracing,
	}
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqtt = client
	}
	return svc, nil
}

// Collect runs every poller job once.
func (s *Service) Collect(ctx context.Context) []events.FetchEvent {
	return s.Poller.RunOnce(ctx)
}

// Run starts the poller, live publication, the metrics endpoint and, when
// serveAPI is set, the HTTP API. It blocks until ctx is canceled.
func (s *Service) Run(ctx context.Context, serveAPI bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.mqtt != nil {
		mqtt.StartPublisher(ctx, s.Bus, s.mqtt)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				errs <- fmt.Errorf("prom server: %w", err)
			}
		}()
	}
	if serveAPI {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.serveAPI(ctx); err != nil {
				errs <- fmt.Errorf("api server: %w", err)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Poller.Run(ctx)
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errs:
		s.log.Errorf("%v", err)
		coremon.CaptureException(err, map[string]string{"module": "service"})
		cancel()
	}
	wg.Wait()
	return err
}

func (s *Service) serveAPI(ctx context.Context) error {
	handler := api.NewRouter(api.Deps{
		Store:    s.Store,
		ISOs:     s.ISOs,
		Bus:      s.Bus,
		Logger:   logger.New("api"),
		Token:    s.cfg.API.Token,
		MaxLimit: s.cfg.API.MaxLimit,
		Metrics:  s.cfg.Metrics.PrometheusAddr == "",
	})
	srv := &http.Server{
		Addr:              s.cfg.API.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.API.ReadTimeout,
		WriteTimeout:      s.cfg.API.WriteTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("serving api on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the resources held by the service.
func (s *Service) Close() error {
	s.Bus.Close()
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	if c, ok := s.Sink.(interface{ Close() }); ok {
		c.Close()
	}
	var errs []error
	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.shutdownTracing(ctx); err != nil {
		errs = append(errs, err)
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
