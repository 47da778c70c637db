package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/sessionplanner/core/metrics"
)

func TestPromSink_RecordSubmission(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordSubmission(coremetrics.SubmissionEvent{Outcome: coremetrics.OutcomeApplied, Entries: 5, Latency: 20 * time.Millisecond}))
	require.NoError(t, sink.RecordSubmission(coremetrics.SubmissionEvent{Outcome: coremetrics.OutcomeApplied, Entries: 2, Latency: 10 * time.Millisecond}))
	require.NoError(t, sink.RecordSubmission(coremetrics.SubmissionEvent{Outcome: coremetrics.OutcomeInvalid}))

	expected := `
# HELP planner_submissions_total Form submissions by outcome
# TYPE planner_submissions_total counter
planner_submissions_total{outcome="applied"} 2
planner_submissions_total{outcome="invalid"} 1
`
	require.NoError(t, testutil.CollectAndCompare(sink.submissions, strings.NewReader(expected)))
	// invalid submissions never reach the optimizer
	assert.Equal(t, 1, testutil.CollectAndCount(sink.latency))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.entries))
}

func TestPromSink_RecordOptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordOptions(coremetrics.OptionsEvent{Options: []coremetrics.OptionSummary{
		{Strategy: "identity", TotalDriveTime: 80},
		{Strategy: "truncate", TotalDriveTime: 45},
		{Strategy: "rotate", TotalDriveTime: 110},
	}}))
	assert.Equal(t, 80.0, testutil.ToFloat64(sink.driveTime.WithLabelValues("identity")))
	assert.Equal(t, 45.0, testutil.ToFloat64(sink.driveTime.WithLabelValues("truncate")))
	assert.Equal(t, 110.0, testutil.ToFloat64(sink.driveTime.WithLabelValues("rotate")))
}

func TestPromSink_RecordInteraction(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordInteraction(coremetrics.InteractionEvent{Action: coremetrics.ActionSelect, Index: 1}))
	require.NoError(t, sink.RecordInteraction(coremetrics.InteractionEvent{Action: coremetrics.ActionSelect, Index: 2}))
	require.NoError(t, sink.RecordInteraction(coremetrics.InteractionEvent{Action: coremetrics.ActionDetailOpen, Index: 2}))

	families, err := reg.Gather()
	require.NoError(t, err)
	var counts map[string]float64
	for _, mf := range families {
		if mf.GetName() != "planner_interactions_total" {
			continue
		}
		assert.Equal(t, dto.MetricType_COUNTER, mf.GetType())
		counts = map[string]float64{}
		for _, m := range mf.GetMetric() {
			counts[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"select": 2, "detail_open": 1}, counts)
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordSubmission(coremetrics.SubmissionEvent{Outcome: coremetrics.OutcomeFailed}))
	require.NoError(t, second.RecordSubmission(coremetrics.SubmissionEvent{Outcome: coremetrics.OutcomeFailed}))
	assert.Equal(t, 2.0, testutil.ToFloat64(second.submissions.WithLabelValues("failed")))
}
