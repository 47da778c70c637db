package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/sessionplanner/core/metrics"
	"github.com/kilianp07/sessionplanner/core/session"
	"github.com/kilianp07/sessionplanner/internal/eventbus"
)

type interactionSink struct {
	coremetrics.NopSink
	mu     sync.Mutex
	events []coremetrics.InteractionEvent
}

func (s *interactionSink) RecordInteraction(ev coremetrics.InteractionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *interactionSink) snapshot() []coremetrics.InteractionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]coremetrics.InteractionEvent(nil), s.events...)
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New[session.Event]()
	sink := &interactionSink{}
	ctx, cancel := context.WithCancel(context.Background())
	done := StartEventCollector(ctx, bus, sink)

	// wait for the subscription before publishing
	require.Eventually(t, func() bool {
		return bus.Publish(session.Event{Type: session.EventScheduleApplied}) > 0
	}, time.Second, 5*time.Millisecond)

	bus.Publish(session.Event{Type: session.EventSelectionChanged, SessionID: "s1", Index: 2})
	bus.Publish(session.Event{Type: session.EventDetailToggled, SessionID: "s1", Index: 2, DetailOpen: true})
	bus.Publish(session.Event{Type: session.EventDetailToggled, SessionID: "s1", Index: 2})

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 3 }, time.Second, 5*time.Millisecond)
	got := sink.snapshot()
	assert.Equal(t, coremetrics.ActionSelect, got[0].Action)
	assert.Equal(t, 2, got[0].Index)
	assert.Equal(t, coremetrics.ActionDetailOpen, got[1].Action)
	assert.Equal(t, coremetrics.ActionDetailClose, got[2].Action)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop")
	}
}

func TestStartEventCollector_NoRecorder(t *testing.T) {
	bus := eventbus.New[session.Event]()
	done := StartEventCollector(context.Background(), bus, onlySubmissions{})
	_, open := <-done
	assert.False(t, open)
}

type onlySubmissions struct{}

func (onlySubmissions) RecordSubmission(coremetrics.SubmissionEvent) error { return nil }
