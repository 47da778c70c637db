package metrics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/sessionplanner/core/factory"
)

type recordSink struct {
	count int
	err   error
}

func (r *recordSink) RecordSubmission(SubmissionEvent) error {
	r.count++
	return r.err
}

func (r *recordSink) RecordInteraction(InteractionEvent) error {
	r.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2, NopSink{})
	assert.NoError(t, m.RecordSubmission(SubmissionEvent{Outcome: OutcomeApplied}))
	assert.NoError(t, m.RecordInteraction(InteractionEvent{Action: ActionSelect}))
	assert.NoError(t, m.RecordOptions(OptionsEvent{}))
	assert.Equal(t, 2, s1.count)
	assert.Equal(t, 2, s2.count)
}

func TestMultiSink_ContinuesAfterError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &recordSink{}
	err := NewMultiSink(s1, s2).RecordSubmission(SubmissionEvent{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, s2.count)
}

func TestConfig_HasSink(t *testing.T) {
	var c Config
	assert.False(t, c.HasSink("prometheus"))
	c.Sinks = append(c.Sinks, factory.ModuleConfig{Type: "prometheus"})
	assert.True(t, c.HasSink("prometheus"))
}
