package session

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/sessionplanner/core/calllog"
	"github.com/kilianp07/sessionplanner/core/logger"
	"github.com/kilianp07/sessionplanner/core/metrics"
	"github.com/kilianp07/sessionplanner/core/model"
	"github.com/kilianp07/sessionplanner/core/normalize"
	"github.com/kilianp07/sessionplanner/core/options"
)

// Optimizer produces a canonical schedule for a request.
type Optimizer interface {
	Optimize(ctx context.Context, req model.ClinicianRequest) ([]model.ScheduleEntry, error)
}

// Submitter runs the submission flow of a session: normalize the form, call
// the optimizer and apply the result if it is still the latest request.
type Submitter struct {
	Normalizer *normalize.Normalizer
	Optimizer  Optimizer
	Calls      calllog.Store
	Metrics    metrics.MetricsSink
	Log        logger.Logger
	Now        func() time.Time
}

func (s *Submitter) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Submit processes form for sess. A ValidationError is returned without
// calling the optimizer. Optimizer failures are recorded on the session and
// returned. A result superseded by a newer submission is discarded and the
// current view is returned without error.
func (s *Submitter) Submit(ctx context.Context, sess *Session, form normalize.FormInput) (View, error) {
	res, err := s.Normalizer.Normalize(form)
	if err != nil {
		sess.Reject(form, res.Warnings, err)
		s.recordMetric(metrics.SubmissionEvent{SessionID: sess.ID(), Outcome: metrics.OutcomeInvalid, Time: s.now()})
		return sess.View(), err
	}
	for _, w := range res.Warnings {
		s.log().Warnf("session %s: kept unparsed time %q for %s", sess.ID(), w.Value, w.Field)
	}

	seq := sess.Begin(form)
	sess.Warn(seq, res.Warnings)
	start := s.now()
	entries, callErr := s.Optimizer.Optimize(ctx, res.Request)
	elapsed := s.now().Sub(start)

	rec := calllog.Record{
		Timestamp:  start,
		SessionID:  sess.ID(),
		Seq:        seq,
		Request:    res.Request,
		DurationMS: elapsed.Milliseconds(),
	}
	ev := metrics.SubmissionEvent{SessionID: sess.ID(), Seq: seq, Latency: elapsed, Time: start}

	var applied bool
	if callErr != nil {
		applied = sess.Fail(seq, callErr)
		rec.Status, ev.Outcome = calllog.StatusFailed, metrics.OutcomeFailed
		rec.Error = callErr.Error()
		switch {
		case !applied:
		case errors.Is(callErr, context.Canceled):
			s.log().Warnf("session %s: optimizer call %d canceled", sess.ID(), seq)
		default:
			s.log().Errorf("session %s: optimizer call %d failed: %v", sess.ID(), seq, callErr)
		}
	} else {
		applied = sess.Complete(seq, entries)
		rec.Entries, ev.Entries = len(entries), len(entries)
		rec.DriveTime = totalDrive(entries)
		rec.Status, ev.Outcome = calllog.StatusApplied, metrics.OutcomeApplied
		if len(entries) == 0 {
			rec.Status, ev.Outcome = calllog.StatusEmpty, metrics.OutcomeEmpty
		}
	}
	if !applied {
		rec.Status, ev.Outcome = calllog.StatusStale, metrics.OutcomeStale
		s.log().Infof("session %s: discarded result of request %d", sess.ID(), seq)
	}

	if s.Calls != nil {
		if err := s.Calls.Append(context.WithoutCancel(ctx), rec); err != nil {
			s.log().Warnf("call log append: %v", err)
		}
	}
	s.recordMetric(ev)

	view := sess.View()
	if applied && callErr == nil {
		s.recordOptions(view)
		logger.Infow(s.log(), "schedule applied", map[string]any{
			"session_id": sess.ID(), "seq": seq, "entries": len(entries),
		})
	}
	if applied && callErr != nil {
		return view, callErr
	}
	return view, nil
}

func (s *Submitter) log() logger.Logger {
	if s.Log == nil {
		return logger.Nop{}
	}
	return s.Log
}

func (s *Submitter) recordMetric(ev metrics.SubmissionEvent) {
	if s.Metrics == nil {
		return
	}
	if err := s.Metrics.RecordSubmission(ev); err != nil {
		s.log().Warnf("record submission: %v", err)
	}
}

func (s *Submitter) recordOptions(v View) {
	r, ok := s.Metrics.(metrics.OptionsRecorder)
	if !ok {
		return
	}
	ev := metrics.OptionsEvent{SessionID: v.ID, Time: s.now(), Options: Summaries(v.Options)}
	if err := r.RecordOptions(ev); err != nil {
		s.log().Warnf("record options: %v", err)
	}
}

// Summaries extracts the aggregates of opts.
func Summaries(opts []options.Option) []metrics.OptionSummary {
	out := make([]metrics.OptionSummary, len(opts))
	for i, o := range opts {
		out[i] = metrics.OptionSummary{
			Strategy:       o.Strategy,
			Entries:        len(o.Entries),
			Clients:        len(o.Clients),
			TotalHours:     o.TotalHours,
			TotalDriveTime: o.TotalDriveTime,
			AvgDriveTime:   o.AvgDriveTime,
		}
	}
	return out
}

func totalDrive(entries []model.ScheduleEntry) int {
	n := 0
	for _, e := range entries {
		n += e.DriveTime
	}
	return n
}

// IsValidation reports whether err blocked a submission before the optimizer
// was called.
func IsValidation(err error) bool { return errors.Is(err, normalize.ErrValidation) }
