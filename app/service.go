// Package app wires the planner components from configuration and runs them.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/sessionplanner/api/calls"
	"github.com/kilianp07/sessionplanner/api/planner"
	"github.com/kilianp07/sessionplanner/config"
	"github.com/kilianp07/sessionplanner/core/calllog"
	coremetrics "github.com/kilianp07/sessionplanner/core/metrics"
	"github.com/kilianp07/sessionplanner/core/normalize"
	"github.com/kilianp07/sessionplanner/core/options"
	"github.com/kilianp07/sessionplanner/core/selection"
	"github.com/kilianp07/sessionplanner/core/session"
	"github.com/kilianp07/sessionplanner/infra/logger"
	"github.com/kilianp07/sessionplanner/infra/metrics"
	"github.com/kilianp07/sessionplanner/infra/mqtt"
	"github.com/kilianp07/sessionplanner/infra/optimizer"
	"github.com/kilianp07/sessionplanner/internal/eventbus"
)

// Service owns the planner components and the servers exposing them.
type Service struct {
	cfg       *config.Config
	Sessions  *session.MemoryStore
	Submitter *session.Submitter
	Optimizer *optimizer.Client
	Bus       *eventbus.Bus[session.Event]
	Sink      coremetrics.MetricsSink
	Calls     calllog.Store
	bridge    *mqtt.Bridge
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	norm, err := normalize.New(normalize.RangePolicy(cfg.Planner.RangePolicy))
	if err != nil {
		return nil, fmt.Errorf("normalizer: %w", err)
	}
	deriver, err := options.NewDeriver(cfg.Planner.Options)
	if err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	policy, err := selection.ParsePolicy(cfg.Planner.SelectionPolicy)
	if err != nil {
		return nil, fmt.Errorf("selection: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	callStore, err := calllog.Open(cfg.CallLog)
	if err != nil {
		return nil, fmt.Errorf("call log: %w", err)
	}

	bus := eventbus.New[session.Event]()
	client := optimizer.New(cfg.Optimizer, logger.New("optimizer"))
	svc := &Service{
		cfg: cfg,
		Sessions: session.NewMemoryStore(session.Config{
			Deriver:   deriver,
			Selection: policy,
			Events:    bus,
		}),
		Submitter: &session.Submitter{
			Normalizer: norm,
			Optimizer:  client,
			Calls:      callStore,
			Metrics:    sink,
			Log:        logger.New("submitter"),
		},
		Optimizer: client,
		Bus:       bus,
		Sink:      sink,
		Calls:     callStore,
		log:       logg,
	}
	if cfg.MQTT.Enabled() {
		svc.bridge, err = mqtt.NewBridge(cfg.MQTT, logger.New("mqtt"))
		if err != nil {
			_ = callStore.Close()
			return nil, fmt.Errorf("mqtt bridge: %w", err)
		}
	}
	return svc, nil
}

// Handler returns the HTTP API: planner sessions and the call log.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	planner.NewHandler(s.Sessions, s.Submitter, s.Optimizer, logger.New("api")).Register(r)
	r.Handle("/api/v1/calls", calls.NewHandler(s.Calls, s.cfg.HTTP.CallsToken)).Methods(http.MethodGet)
	r.Use(planner.RequestLogger(logger.New("http")))
	return r
}

// Run starts the API server and the background workers. It blocks until the
// context is cancelled or one of them fails.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.serve(ctx) })
	if s.cfg.Metrics.HasSink("prometheus") {
		g.Go(func() error { return metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort) })
	}
	collected := metrics.StartEventCollector(ctx, s.Bus, s.Sink)
	g.Go(func() error {
		<-collected
		return nil
	})
	if s.bridge != nil {
		g.Go(func() error { return s.bridge.Run(ctx, s.Bus) })
	}
	g.Go(func() error {
		s.prune(ctx, s.cfg.Planner.SessionTTL())
		return nil
	})
	return g.Wait()
}

func (s *Service) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.HTTP.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(s.cfg.HTTP.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.HTTP.WriteTimeoutSeconds) * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
		cancel()
	}()
	s.log.Infof("planner API listening on %s", s.cfg.HTTP.Address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// prune drops sessions idle for longer than ttl until ctx is cancelled.
func (s *Service) prune(ctx context.Context, ttl time.Duration) {
	every := min(max(ttl/4, time.Second), 5*time.Minute)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sessions.Prune(ttl); n > 0 {
				s.log.Infof("pruned %d idle sessions", n)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.bridge != nil {
		s.bridge.Disconnect()
	}
	s.Bus.Close()
	return s.Calls.Close()
}
