package ecs

// Event is a queued notification. Systems and controllers push; the host
// drains once per frame, so observers never run re-entrantly inside a tick.
type Event struct {
	Type string
	Data any
}

// Event types emitted by the preview core.
const (
	EventTimeChanged        = "time_changed"
	EventTransitionProgress = "transition_progress"
	EventPlaybackChanged    = "playback_changed"
)

// TimeChanged reports a new normalized playback time for a subject.
type TimeChanged struct {
	Entity         Entity
	NormalizedTime float32
}

// TransitionProgress reports transition completion in [0,1] for a subject.
type TransitionProgress struct {
	Entity   Entity
	Progress float32
}

// PlaybackChanged reports a play/pause flip for a subject.
type PlaybackChanged struct {
	Entity  Entity
	Playing bool
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all queued events and clears the queue. Ordering is
// preserved: events come back in the order they were pushed.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
