package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/sessionplanner/core/metrics"
)

// PromSink records planner events in Prometheus metrics.
type PromSink struct {
	submissions  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	entries      prometheus.Histogram
	driveTime    *prometheus.GaugeVec
	interactions *prometheus.CounterVec
}

// NewPromSink registers planner metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered under the same name are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_submissions_total",
			Help: "Form submissions by outcome",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planner_optimizer_latency_seconds",
			Help:    "Duration of optimizer calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		entries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "planner_schedule_entries",
			Help:    "Entries per canonical schedule",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		driveTime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "planner_option_drive_minutes",
			Help: "Total drive time of the last derived options by strategy",
		}, []string{"strategy"}),
		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_interactions_total",
			Help: "Option selections and detail toggles",
		}, []string{"action"}),
	}
	var err error
	if s.submissions, err = register(reg, s.submissions); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, s.latency); err != nil {
		return nil, err
	}
	if s.entries, err = register(reg, s.entries); err != nil {
		return nil, err
	}
	if s.driveTime, err = register(reg, s.driveTime); err != nil {
		return nil, err
	}
	if s.interactions, err = register(reg, s.interactions); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSubmission counts the submission and observes the call latency.
func (s *PromSink) RecordSubmission(ev coremetrics.SubmissionEvent) error {
	s.submissions.WithLabelValues(ev.Outcome).Inc()
	if ev.Outcome == coremetrics.OutcomeInvalid {
		return nil
	}
	s.latency.WithLabelValues(ev.Outcome).Observe(ev.Latency.Seconds())
	if ev.Outcome == coremetrics.OutcomeApplied || ev.Outcome == coremetrics.OutcomeEmpty {
		s.entries.Observe(float64(ev.Entries))
	}
	return nil
}

// RecordOptions sets the drive time gauge for each strategy.
func (s *PromSink) RecordOptions(ev coremetrics.OptionsEvent) error {
	for _, o := range ev.Options {
		s.driveTime.WithLabelValues(o.Strategy).Set(float64(o.TotalDriveTime))
	}
	return nil
}

// RecordInteraction counts user interactions.
func (s *PromSink) RecordInteraction(ev coremetrics.InteractionEvent) error {
	s.interactions.WithLabelValues(ev.Action).Inc()
	return nil
}
