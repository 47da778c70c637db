package metrics

import "time"

// Submission outcomes.
const (
	OutcomeApplied = "applied"
	OutcomeEmpty   = "empty"
	OutcomeFailed  = "failed"
	OutcomeInvalid = "invalid"
	OutcomeStale   = "stale"
)

// SubmissionEvent describes one form submission and its optimizer call.
type SubmissionEvent struct {
	SessionID string
	Seq       uint64
	Outcome   string
	Entries   int
	Latency   time.Duration
	Time      time.Time
}

// MetricsSink records submissions. Sinks may implement the optional
// recorder interfaces below.
type MetricsSink interface {
	RecordSubmission(ev SubmissionEvent) error
}

// OptionSummary holds the aggregates of one derived option.
type OptionSummary struct {
	Strategy       string
	Entries        int
	Clients        int
	TotalHours     int
	TotalDriveTime int
	AvgDriveTime   float64
}

// OptionsEvent is emitted when a schedule's options are derived.
type OptionsEvent struct {
	SessionID string
	Options   []OptionSummary
	Time      time.Time
}

// OptionsRecorder records derived option aggregates.
type OptionsRecorder interface {
	RecordOptions(ev OptionsEvent) error
}

// Interaction actions.
const (
	ActionSelect      = "select"
	ActionDetailOpen  = "detail_open"
	ActionDetailClose = "detail_close"
)

// InteractionEvent is a selection or detail toggle by the user.
type InteractionEvent struct {
	SessionID string
	Action    string
	Index     int
	Time      time.Time
}

// InteractionRecorder records user interactions.
type InteractionRecorder interface {
	RecordInteraction(ev InteractionEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordSubmission(SubmissionEvent) error   { return nil }
func (NopSink) RecordOptions(OptionsEvent) error         { return nil }
func (NopSink) RecordInteraction(InteractionEvent) error { return nil }
