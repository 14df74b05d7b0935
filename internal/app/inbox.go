package app

import "sync/atomic"

// EventKind identifies an inbox event.
type EventKind int

const (
	// EventTrigger requests the glow and particle burst.
	EventTrigger EventKind = iota
	// EventSwitchModel requests a hot swap to Event.Model.
	EventSwitchModel
)

func (k EventKind) String() string {
	switch k {
	case EventTrigger:
		return "trigger"
	case EventSwitchModel:
		return "switch_model"
	}
	return "unknown"
}

// Event is a request posted from a background goroutine to the frame loop.
type Event struct {
	Kind    EventKind
	Keyword string // matched keyword, if any
	Model   string // target model for EventSwitchModel
	Source  string // speech, chat, ...
}

// Inbox hands events from background goroutines to the render goroutine,
// which drains it once per frame. Only the render goroutine touches the
// particle set and the active model as a result.
type Inbox struct {
	ch      chan Event
	dropped atomic.Uint64
}

// NewInbox creates an Inbox buffering up to size events.
func NewInbox(size int) *Inbox {
	if size < 1 {
		size = 1
	}
	return &Inbox{ch: make(chan Event, size)}
}

// Post enqueues e without blocking. It returns false if the inbox is full.
func (b *Inbox) Post(e Event) bool {
	select {
	case b.ch <- e:
		return true
	default:
		b.dropped.Add(1)
		return false
	}
}

// Drain returns every pending event in arrival order.
func (b *Inbox) Drain() []Event {
	var events []Event
	for {
		select {
		case e := <-b.ch:
			events = append(events, e)
		default:
			return events
		}
	}
}

// Dropped returns how many events were rejected because the inbox was full.
func (b *Inbox) Dropped() uint64 { return b.dropped.Load() }
