package eventbus

import (
	"log/slog"
	"sync"
)

// catchupLimit is how many of a run's most recent events are replayed to a
// subscriber that joins (or polls) late (spec.md §4.9: "bounded buffer,
// last >=20 entries").
const catchupLimit = 20

// subscriberQueueDepth bounds each live subscriber's delivery channel.
// A subscriber whose channel is full is dropped rather than blocking the
// publisher (spec.md §4.9, §5).
const subscriberQueueDepth = 64

// runLog is one run's append-only event history plus its live subscribers.
type runLog struct {
	mu          sync.Mutex
	events      []Event
	subscribers map[int]chan Event
	nextSubID   int
}

// Bus is the process-wide Event Bus: one runLog per active or completed run.
type Bus struct {
	mu     sync.RWMutex
	runs   map[string]*runLog
	Logger *slog.Logger
}

// New constructs an empty Bus.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{runs: make(map[string]*runLog), Logger: logger}
}

func (b *Bus) logFor(runID string) *runLog {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.runs[runID]
	if !ok {
		l = &runLog{subscribers: make(map[int]chan Event)}
		b.runs[runID] = l
	}
	return l
}

// Publish appends evt to its run's log and best-effort delivers it to every
// live subscriber of that run. A subscriber whose queue is full is dropped
// without affecting others (spec.md §4.9).
func (b *Bus) Publish(evt Event) {
	l := b.logFor(evt.RunID)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, evt)
	// Sends are non-blocking, so delivering under the lock stays cheap and
	// keeps Unsubscribe from closing a channel while it is being sent on.
	for id, ch := range l.subscribers {
		select {
		case ch <- evt:
		default:
			b.Logger.Warn("eventbus: dropping slow subscriber", "runId", evt.RunID, "event", evt.Event)
			delete(l.subscribers, id)
			close(ch)
		}
	}
}

// Catchup returns the last catchupLimit events recorded for runID, for
// late-joining pollers.
func (b *Bus) Catchup(runID string) []Event {
	l := b.logFor(runID)
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.events) <= catchupLimit {
		out := make([]Event, len(l.events))
		copy(out, l.events)
		return out
	}
	out := make([]Event, catchupLimit)
	copy(out, l.events[len(l.events)-catchupLimit:])
	return out
}

// All returns every event recorded for runID, in emission order.
func (b *Bus) All(runID string) []Event {
	l := b.logFor(runID)
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Subscribe registers a new live listener for runID and returns its channel
// and an unsubscribe function. The channel is closed by Unsubscribe, never
// by the publisher.
func (b *Bus) Subscribe(runID string) (<-chan Event, func()) {
	l := b.logFor(runID)

	l.mu.Lock()
	id := l.nextSubID
	l.nextSubID++
	ch := make(chan Event, subscriberQueueDepth)
	l.subscribers[id] = ch
	l.mu.Unlock()

	unsubscribe := func() {
		l.mu.Lock()
		if _, ok := l.subscribers[id]; ok {
			delete(l.subscribers, id)
			close(ch)
		}
		l.mu.Unlock()
	}
	return ch, unsubscribe
}

// Forget drops a completed run's log once it is no longer needed, e.g.
// after the final report has been durably written. Safe to call even if the
// run was never observed.
func (b *Bus) Forget(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.runs, runID)
}
