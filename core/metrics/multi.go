package metrics

import "errors"

// MultiSink fans events out to several sinks. Every sink is called even when
// an earlier one fails; the errors are joined.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordSubmission(ev SubmissionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordSubmission(ev))
	}
	return errors.Join(errs...)
}

// RecordOptions forwards to sinks implementing OptionsRecorder.
func (m *MultiSink) RecordOptions(ev OptionsEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(OptionsRecorder); ok {
			errs = append(errs, r.RecordOptions(ev))
		}
	}
	return errors.Join(errs...)
}

// RecordInteraction forwards to sinks implementing InteractionRecorder.
func (m *MultiSink) RecordInteraction(ev InteractionEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if r, ok := s.(InteractionRecorder); ok {
			errs = append(errs, r.RecordInteraction(ev))
		}
	}
	return errors.Join(errs...)
}
