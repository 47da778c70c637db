package session

import (
	"errors"
	"sync"
	"time"

	"github.com/kilianp07/sessionplanner/core/calendar"
	"github.com/kilianp07/sessionplanner/core/model"
	"github.com/kilianp07/sessionplanner/core/normalize"
	"github.com/kilianp07/sessionplanner/core/options"
	"github.com/kilianp07/sessionplanner/core/selection"
)

var (
	// ErrNotFound is returned for unknown session ids.
	ErrNotFound = errors.New("session not found")
	// ErrNoSchedule is returned by schedule actions before any schedule was
	// applied.
	ErrNoSchedule = errors.New("no schedule available")
)

// Mode is the visible half of the planner.
type Mode string

const (
	FormVisible     Mode = "form"
	ScheduleVisible Mode = "schedule"
)

// Config holds the collaborators shared by all sessions.
type Config struct {
	Deriver   *options.Deriver
	Selection selection.Policy
	Events    Publisher
	Now       func() time.Time
}

func (c Config) withDefaults() Config {
	if c.Deriver == nil {
		d, err := options.NewDeriver(nil)
		if err != nil {
			panic(err)
		}
		c.Deriver = d
	}
	if c.Events == nil {
		c.Events = nopPublisher{}
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Session is the state of one schedule view. All methods are safe for
// concurrent use; a single mutex guards the whole state.
type Session struct {
	id  string
	cfg Config

	mu          sync.Mutex
	mode        Mode
	form        normalize.FormInput
	warnings    []normalize.TimeWarning
	fieldErrs   map[string]string
	loading     bool
	issued      uint64
	applied     uint64
	lastErr     error
	canonical   []model.ScheduleEntry
	hasSchedule bool
	opts        []options.Option
	sel         *selection.State
	stale       uint64
	touched     time.Time
}

// New creates a session showing form.
func New(id string, form normalize.FormInput, cfg Config) *Session {
	cfg = cfg.withDefaults()
	return &Session{
		id:      id,
		cfg:     cfg,
		mode:    FormVisible,
		form:    form,
		opts:    []options.Option{},
		sel:     selection.New(cfg.Selection),
		touched: cfg.Now(),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

func (s *Session) event(t EventType) Event {
	idx, open := s.sel.Snapshot()
	return Event{Type: t, SessionID: s.id, Index: idx, DetailOpen: open, Time: s.cfg.Now()}
}

func (s *Session) publish(evs ...Event) {
	for _, ev := range evs {
		s.cfg.Events.Publish(ev)
	}
}

// Reject keeps a form that failed validation so it can be corrected. The
// rejected form counts as the latest submission: a request still in flight
// becomes stale and its result is discarded.
func (s *Session) Reject(form normalize.FormInput, warnings []normalize.TimeWarning, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		s.issued++
		s.loading = false
	}
	s.form = form
	s.warnings = warnings
	s.fieldErrs = nil
	var verr *normalize.ValidationError
	if errors.As(err, &verr) {
		s.fieldErrs = verr.Fields
	}
	s.lastErr = err
	s.touched = s.cfg.Now()
}

// Begin records form as submitted, marks the session loading and returns the
// sequence number of the new request.
func (s *Session) Begin(form normalize.FormInput) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.form = form
	s.warnings = nil
	s.fieldErrs = nil
	s.lastErr = nil
	s.loading = true
	s.touched = s.cfg.Now()
	return s.issued
}

// Warn attaches time warnings to request seq if it is still the latest.
func (s *Session) Warn(seq uint64, warnings []normalize.TimeWarning) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == s.issued {
		s.warnings = warnings
	}
}

// Latest returns the newest issued sequence number.
func (s *Session) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}

// Complete applies entries as the canonical schedule when seq is the latest
// request. Options are re-derived and the selection reset in one step. It
// reports whether the result was applied.
func (s *Session) Complete(seq uint64, entries []model.ScheduleEntry) bool {
	s.mu.Lock()
	if seq != s.issued {
		s.stale++
		ev := s.event(EventStaleDiscarded)
		ev.Seq = seq
		ev.Entries = len(entries)
		s.mu.Unlock()
		s.publish(ev)
		return false
	}
	canonical := append(make([]model.ScheduleEntry, 0, len(entries)), entries...)
	s.sel.Reset()
	s.canonical = canonical
	s.opts = s.cfg.Deriver.Derive(canonical, 0)
	s.hasSchedule = true
	s.applied = seq
	s.loading = false
	s.lastErr = nil
	s.fieldErrs = nil
	s.mode = ScheduleVisible
	s.touched = s.cfg.Now()
	ev := s.event(EventScheduleApplied)
	ev.Seq = seq
	ev.Entries = len(canonical)
	s.mu.Unlock()
	s.publish(ev)
	return true
}

// Fail records err for request seq when it is the latest, clearing the
// loading flag. The form and any previous schedule are kept.
func (s *Session) Fail(seq uint64, err error) bool {
	s.mu.Lock()
	if seq != s.issued {
		s.stale++
		ev := s.event(EventStaleDiscarded)
		ev.Seq = seq
		ev.Error = err.Error()
		s.mu.Unlock()
		s.publish(ev)
		return false
	}
	s.loading = false
	s.lastErr = err
	s.touched = s.cfg.Now()
	ev := s.event(EventSubmissionFailed)
	ev.Seq = seq
	ev.Error = err.Error()
	s.mu.Unlock()
	s.publish(ev)
	return true
}

// EditPreferences shows the form again. The form contents and the current
// schedule are kept.
func (s *Session) EditPreferences() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = FormVisible
	s.touched = s.cfg.Now()
}

// ShowSchedule returns to the schedule view without resubmitting.
func (s *Session) ShowSchedule() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSchedule {
		return ErrNoSchedule
	}
	s.mode = ScheduleVisible
	s.touched = s.cfg.Now()
	return nil
}

// Select makes option i active.
func (s *Session) Select(i int) error {
	return s.mutateSelection(EventSelectionChanged, func(st *selection.State) error { return st.Select(i) })
}

// Inspect selects option i and opens its detail calendar.
func (s *Session) Inspect(i int) error {
	return s.mutateSelection(EventSelectionChanged, func(st *selection.State) error { return st.Inspect(i) })
}

// OpenDetail shows the detail calendar of the selected option.
func (s *Session) OpenDetail() error {
	return s.mutateSelection(EventDetailToggled, func(st *selection.State) error {
		st.OpenDetail()
		return nil
	})
}

// CloseDetail hides the detail calendar.
func (s *Session) CloseDetail() error {
	return s.mutateSelection(EventDetailToggled, func(st *selection.State) error {
		st.CloseDetail()
		return nil
	})
}

func (s *Session) mutateSelection(t EventType, fn func(*selection.State) error) error {
	s.mu.Lock()
	if !s.hasSchedule {
		s.mu.Unlock()
		return ErrNoSchedule
	}
	if err := fn(s.sel); err != nil {
		s.mu.Unlock()
		return err
	}
	idx, _ := s.sel.Snapshot()
	s.opts = options.Reselect(s.opts, idx)
	s.touched = s.cfg.Now()
	ev := s.event(t)
	s.mu.Unlock()
	s.publish(ev)
	return nil
}

// Calendar returns the week view of the selected option, recomputed from
// its entries on every call.
func (s *Session) Calendar() ([]calendar.DayColumn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSchedule {
		return nil, ErrNoSchedule
	}
	idx, _ := s.sel.Snapshot()
	return calendar.Week(s.opts[idx].Entries), nil
}

// IdleSince returns the time of the last state change.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}
