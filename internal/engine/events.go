package engine

import (
	"sync"
	"time"
)

// Event names a notification a Store can emit.
type Event string

const (
	EventConnect Event = "connect"
	EventError   Event = "error"
	EventQuery   Event = "query"
)

// EventInfo is passed to listeners. Fields irrelevant to the event are zero.
type EventInfo struct {
	Event    Event
	ConnID   string
	SQL      string
	RowCount int
	Elapsed  time.Duration
	Err      error
}

type Listener func(EventInfo)

type emitter struct {
	mu        sync.RWMutex
	listeners map[Event][]Listener
}

func (e *emitter) on(ev Event, l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[Event][]Listener)
	}
	e.listeners[ev] = append(e.listeners[ev], l)
}

// emit calls listeners synchronously, in registration order.
func (e *emitter) emit(info EventInfo) {
	e.mu.RLock()
	ls := e.listeners[info.Event]
	e.mu.RUnlock()
	for _, l := range ls {
		l(info)
	}
}
