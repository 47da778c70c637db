package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/sessionplanner/core/metrics"
	"github.com/kilianp07/sessionplanner/core/session"
	"github.com/kilianp07/sessionplanner/internal/eventbus"
)

// StartEventCollector subscribes to the session bus and records selection and
// detail events as interactions. It stops when the context is canceled or
// the bus is closed. The returned channel is closed once the collector exits.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[session.Event], sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.InteractionRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if ie, ok := interaction(ev); ok {
					_ = rec.RecordInteraction(ie)
				}
			}
		}
	}()
	return done
}

func interaction(ev session.Event) (coremetrics.InteractionEvent, bool) {
	out := coremetrics.InteractionEvent{SessionID: ev.SessionID, Index: ev.Index, Time: ev.Time}
	switch ev.Type {
	case session.EventSelectionChanged:
		out.Action = coremetrics.ActionSelect
	case session.EventDetailToggled:
		out.Action = coremetrics.ActionDetailClose
		if ev.DetailOpen {
			out.Action = coremetrics.ActionDetailOpen
		}
	default:
		return out, false
	}
	return out, true
}
