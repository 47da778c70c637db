package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/sessionplanner/core/model"
	"github.com/kilianp07/sessionplanner/core/normalize"
	"github.com/kilianp07/sessionplanner/core/options"
	"github.com/kilianp07/sessionplanner/core/selection"
	"github.com/kilianp07/sessionplanner/internal/eventbus"
)

func entries(n int) []model.ScheduleEntry {
	out := make([]model.ScheduleEntry, n)
	for i := range out {
		out[i] = model.ScheduleEntry{Day: i%5 + 1, ClientName: string(rune('A' + i%3)), DriveTime: 10 * (i + 1)}
	}
	return out
}

type recorder struct {
	mu  sync.Mutex
	evs []Event
}

func (r *recorder) Publish(ev Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, ev)
	return 1
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.evs))
	for i, e := range r.evs {
		out[i] = e.Type
	}
	return out
}

func newTestSession(pub Publisher) *Session {
	return New("s-1", normalize.DefaultForm("Oakland"), Config{Events: pub})
}

func TestSession_InitialView(t *testing.T) {
	v := newTestSession(nil).View()
	assert.Equal(t, "s-1", v.ID)
	assert.Equal(t, FormVisible, v.Mode)
	assert.False(t, v.HasSchedule)
	assert.True(t, v.Empty)
	assert.NotNil(t, v.Options)
	assert.Empty(t, v.Options)
	assert.Equal(t, "Oakland", v.Form.Address.City)
	assert.Nil(t, v.Detail)
}

func TestSession_CompleteAppliesAndResetsSelection(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(rec)

	seq := s.Begin(normalize.DefaultForm("Oakland"))
	assert.True(t, s.View().Loading)
	require.True(t, s.Complete(seq, entries(5)))

	v := s.View()
	assert.Equal(t, ScheduleVisible, v.Mode)
	assert.False(t, v.Loading)
	assert.False(t, v.Empty)
	require.Len(t, v.Options, options.OptionCount)
	assert.True(t, v.Options[0].Selected)

	require.NoError(t, s.Inspect(2))
	v = s.View()
	assert.Equal(t, 2, v.Selected)
	assert.True(t, v.DetailOpen)
	assert.True(t, v.Options[2].Selected)
	assert.False(t, v.Options[0].Selected)
	require.Len(t, v.Detail, 5)

	seq = s.Begin(normalize.DefaultForm("Oakland"))
	require.True(t, s.Complete(seq, entries(3)))
	v = s.View()
	assert.Equal(t, 0, v.Selected)
	assert.False(t, v.DetailOpen)
	assert.Len(t, v.Canonical, 3)
	assert.True(t, v.Options[0].Selected)

	assert.Equal(t, []EventType{EventScheduleApplied, EventSelectionChanged, EventScheduleApplied}, rec.types())
}

func TestSession_LastRequestWins(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(rec)
	first := s.Begin(normalize.DefaultForm("Oakland"))
	second := s.Begin(normalize.DefaultForm("Fresno"))
	require.Greater(t, second, first)

	require.True(t, s.Complete(second, entries(4)))
	assert.False(t, s.Complete(first, entries(9)))
	assert.False(t, s.Fail(first, errors.New("late failure")))

	v := s.View()
	assert.Len(t, v.Canonical, 4)
	assert.Empty(t, v.Error)
	assert.Equal(t, uint64(2), v.StaleDiscarded)
	assert.Equal(t, second, v.AppliedSeq)
	assert.Equal(t, "Fresno", v.Form.Address.City)
	assert.Equal(t, []EventType{EventScheduleApplied, EventStaleDiscarded, EventStaleDiscarded}, rec.types())
}

func TestSession_StaleResultWhileNewerPending(t *testing.T) {
	s := newTestSession(nil)
	first := s.Begin(normalize.DefaultForm("Oakland"))
	s.Begin(normalize.DefaultForm("Oakland"))
	assert.False(t, s.Complete(first, entries(5)))
	v := s.View()
	assert.True(t, v.Loading, "newer request still outstanding")
	assert.False(t, v.HasSchedule)
}

func TestSession_FailKeepsFormAndSchedule(t *testing.T) {
	s := newTestSession(nil)
	seq := s.Begin(normalize.DefaultForm("Oakland"))
	require.True(t, s.Complete(seq, entries(5)))
	s.EditPreferences()

	form := normalize.DefaultForm("Oakland")
	form.MaxClientsPerDay = "7"
	seq = s.Begin(form)
	require.True(t, s.Fail(seq, errors.New("optimizer unreachable")))

	v := s.View()
	assert.False(t, v.Loading)
	assert.Equal(t, "optimizer unreachable", v.Error)
	assert.Equal(t, FormVisible, v.Mode)
	assert.Equal(t, normalize.RawValue("7"), v.Form.MaxClientsPerDay)
	assert.Len(t, v.Canonical, 5, "previous schedule survives")

	require.NoError(t, s.ShowSchedule())
	assert.Equal(t, ScheduleVisible, s.View().Mode)
}

func TestSession_EmptySchedule(t *testing.T) {
	s := newTestSession(nil)
	seq := s.Begin(normalize.DefaultForm("Oakland"))
	require.True(t, s.Complete(seq, nil))
	v := s.View()
	assert.True(t, v.HasSchedule)
	assert.True(t, v.Empty)
	require.Len(t, v.Options, 3)
	for _, o := range v.Options {
		assert.True(t, o.Empty())
	}
}

func TestSession_ActionsNeedSchedule(t *testing.T) {
	s := newTestSession(nil)
	assert.ErrorIs(t, s.Select(1), ErrNoSchedule)
	assert.ErrorIs(t, s.OpenDetail(), ErrNoSchedule)
	assert.ErrorIs(t, s.ShowSchedule(), ErrNoSchedule)
	_, err := s.Calendar()
	assert.ErrorIs(t, err, ErrNoSchedule)
}

func TestSession_SelectionPolicy(t *testing.T) {
	strict := newTestSession(nil)
	strict.Complete(strict.Begin(normalize.FormInput{}), entries(5))
	require.NoError(t, strict.Select(1))
	assert.ErrorIs(t, strict.Select(3), selection.ErrOutOfRange)
	assert.Equal(t, 1, strict.View().Selected)

	clamp := New("c", normalize.FormInput{}, Config{Selection: selection.Clamp})
	clamp.Complete(clamp.Begin(normalize.FormInput{}), entries(5))
	require.NoError(t, clamp.Select(10))
	assert.Equal(t, 2, clamp.View().Selected)
}

func TestSession_CalendarFollowsSelection(t *testing.T) {
	s := newTestSession(nil)
	canonical := entries(5)
	require.True(t, s.Complete(s.Begin(normalize.FormInput{}), canonical))

	week, err := s.Calendar()
	require.NoError(t, err)
	assert.Equal(t, canonical[0], week[0].Entries[0])

	require.NoError(t, s.Select(1))
	week, err = s.Calendar()
	require.NoError(t, err)
	assert.True(t, week[3].Empty, "option 2 drops the last two entries")
	assert.True(t, week[4].Empty)

	require.NoError(t, s.OpenDetail())
	assert.Equal(t, week, s.View().Detail)
	require.NoError(t, s.CloseDetail())
	assert.Nil(t, s.View().Detail)
}

func TestSession_RejectKeepsFieldErrors(t *testing.T) {
	s := newTestSession(nil)
	form := normalize.DefaultForm("Oakland")
	form.MaxClientsPerDay = "99"
	verr := &normalize.ValidationError{Fields: map[string]string{"max_clients_per_day": "too many"}}
	s.Reject(form, nil, verr)
	v := s.View()
	assert.Equal(t, map[string]string{"max_clients_per_day": "too many"}, v.FieldErrors)
	assert.Equal(t, normalize.RawValue("99"), v.Form.MaxClientsPerDay)
	assert.False(t, v.Loading)
	assert.Equal(t, uint64(0), v.Seq)
}

func TestSession_RejectSupersedesPendingRequest(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(rec)
	pending := s.Begin(normalize.DefaultForm("Oakland"))

	bad := normalize.DefaultForm("Fresno")
	bad.MaxClientsPerDay = "bad"
	s.Reject(bad, nil, &normalize.ValidationError{Fields: map[string]string{"max_clients_per_day": "bad"}})
	assert.False(t, s.View().Loading)

	assert.False(t, s.Complete(pending, entries(5)))
	v := s.View()
	assert.Equal(t, FormVisible, v.Mode)
	assert.False(t, v.HasSchedule)
	assert.Empty(t, v.Options)
	assert.Equal(t, "Fresno", v.Form.Address.City)
	assert.Equal(t, map[string]string{"max_clients_per_day": "bad"}, v.FieldErrors)
	assert.Equal(t, uint64(1), v.StaleDiscarded)
	assert.Equal(t, []EventType{EventStaleDiscarded}, rec.types())
}

func TestSession_CompleteClearsFieldErrors(t *testing.T) {
	s := newTestSession(nil)
	s.Reject(normalize.DefaultForm("Oakland"), nil,
		&normalize.ValidationError{Fields: map[string]string{"max_clients_per_day": "bad"}})
	seq := s.Begin(normalize.DefaultForm("Oakland"))
	require.True(t, s.Complete(seq, entries(3)))
	v := s.View()
	assert.Empty(t, v.FieldErrors)
	assert.Empty(t, v.Error)
	assert.Equal(t, ScheduleVisible, v.Mode)
}

func TestSession_ViewIsSnapshot(t *testing.T) {
	s := newTestSession(nil)
	require.True(t, s.Complete(s.Begin(normalize.DefaultForm("Oakland")), entries(5)))
	before := s.View()
	require.NoError(t, s.Select(2))
	assert.True(t, before.Options[0].Selected)
	assert.Equal(t, 0, before.Selected)
}

func TestSession_ConcurrentCompletions(t *testing.T) {
	bus := eventbus.New[Event]()
	defer bus.Close()
	s := newTestSession(bus)

	seqs := make([]uint64, 20)
	for i := range seqs {
		seqs[i] = s.Begin(normalize.FormInput{})
	}
	var wg sync.WaitGroup
	for i, seq := range seqs {
		wg.Add(1)
		go func(i int, seq uint64) {
			defer wg.Done()
			s.Complete(seq, entries(i+1))
		}(i, seq)
	}
	wg.Wait()
	v := s.View()
	assert.Len(t, v.Canonical, 20)
	assert.Equal(t, uint64(19), v.StaleDiscarded)
}

func TestMemoryStore(t *testing.T) {
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	st := NewMemoryStore(Config{Now: clock})

	a := st.Create(normalize.DefaultForm("Oakland"))
	b := st.Create(normalize.DefaultForm("Fresno"))
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, st.Len())
	assert.Len(t, st.IDs(), 2)

	got, err := st.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)
	_, err = st.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	now = now.Add(time.Hour)
	b.EditPreferences()
	assert.Equal(t, 1, st.Prune(30*time.Minute))
	_, err = st.Get(a.ID())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.True(t, st.Delete(b.ID()))
	assert.False(t, st.Delete(b.ID()))
	assert.Equal(t, 0, st.Len())
}
