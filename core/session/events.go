package session

import "time"

// EventType names a session event.
type EventType string

const (
	EventScheduleApplied  EventType = "schedule_applied"
	EventStaleDiscarded   EventType = "stale_discarded"
	EventSubmissionFailed EventType = "submission_failed"
	EventSelectionChanged EventType = "selection_changed"
	EventDetailToggled    EventType = "detail_toggled"
)

// Event is published on every visible state change and on discarded
// optimizer results.
type Event struct {
	Type       EventType `json:"type"`
	SessionID  string    `json:"session_id"`
	Seq        uint64    `json:"seq,omitempty"`
	Index      int       `json:"index"`
	DetailOpen bool      `json:"detail_open"`
	Entries    int       `json:"entries"`
	Error      string    `json:"error,omitempty"`
	Time       time.Time `json:"time"`
}

// Publisher receives session events. *eventbus.Bus[Event] satisfies it.
type Publisher interface {
	Publish(Event) int
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) int { return 0 }
