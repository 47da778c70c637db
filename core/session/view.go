package session

import (
	"github.com/kilianp07/sessionplanner/core/calendar"
	"github.com/kilianp07/sessionplanner/core/model"
	"github.com/kilianp07/sessionplanner/core/normalize"
	"github.com/kilianp07/sessionplanner/core/options"
)

// View is a read-only snapshot of a session. Slices in a View are never
// modified by the session after the snapshot is taken.
type View struct {
	ID             string                  `json:"id"`
	Mode           Mode                    `json:"mode"`
	Loading        bool                    `json:"loading"`
	Seq            uint64                  `json:"seq"`
	AppliedSeq     uint64                  `json:"applied_seq"`
	Error          string                  `json:"error,omitempty"`
	FieldErrors    map[string]string       `json:"field_errors,omitempty"`
	Warnings       []normalize.TimeWarning `json:"warnings,omitempty"`
	Form           normalize.FormInput     `json:"form"`
	HasSchedule    bool                    `json:"has_schedule"`
	Empty          bool                    `json:"empty"`
	Canonical      []model.ScheduleEntry   `json:"canonical"`
	Options        []options.Option        `json:"options"`
	Selected       int                     `json:"selected"`
	DetailOpen     bool                    `json:"detail_open"`
	Detail         []calendar.DayColumn    `json:"detail,omitempty"`
	StaleDiscarded uint64                  `json:"stale_discarded"`
}

// SelectedOption returns the active option, if any.
func (v View) SelectedOption() (options.Option, bool) {
	if v.Selected < 0 || v.Selected >= len(v.Options) {
		return options.Option{}, false
	}
	return v.Options[v.Selected], true
}

// View returns a snapshot of the session. Empty is true whenever there is no
// schedule to show, either because none was applied yet or because the
// optimizer returned no entries.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, open := s.sel.Snapshot()
	v := View{
		ID:             s.id,
		Mode:           s.mode,
		Loading:        s.loading,
		Seq:            s.issued,
		AppliedSeq:     s.applied,
		Form:           cloneForm(s.form),
		HasSchedule:    s.hasSchedule,
		Empty:          len(s.canonical) == 0,
		Canonical:      append([]model.ScheduleEntry{}, s.canonical...),
		Options:        append([]options.Option{}, s.opts...),
		Selected:       idx,
		DetailOpen:     open,
		StaleDiscarded: s.stale,
	}
	if s.lastErr != nil {
		v.Error = s.lastErr.Error()
	}
	if len(s.fieldErrs) > 0 {
		v.FieldErrors = make(map[string]string, len(s.fieldErrs))
		for k, m := range s.fieldErrs {
			v.FieldErrors[k] = m
		}
	}
	if len(s.warnings) > 0 {
		v.Warnings = append([]normalize.TimeWarning{}, s.warnings...)
	}
	if open && s.hasSchedule {
		v.Detail = calendar.Week(s.opts[idx].Entries)
	}
	return v
}

func cloneForm(f normalize.FormInput) normalize.FormInput {
	f.Availabilities = append([]normalize.AvailabilityInput{}, f.Availabilities...)
	return f
}
