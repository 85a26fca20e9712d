package jobs

import (
	"sync"
	"time"
)

// EventType classifies bus entries.
type EventType string

const (
	EventStatus   EventType = "status"
	EventProgress EventType = "progress"
)

// Event is one bus entry. Seq increases monotonically across all jobs.
type Event struct {
	Seq     int64     `json:"seq"`
	Time    time.Time `json:"time"`
	Type    EventType `json:"type"`
	JobID   string    `json:"job_id"`
	Kind    Kind      `json:"kind"`
	Status  Status    `json:"status,omitempty"`
	Percent float64   `json:"percent,omitempty"`
	Message string    `json:"message,omitempty"`
}

// EventBus keeps a bounded history of events for polling clients. When the
// buffer is full the oldest entries fall off; clients that poll with a
// stale sequence simply miss them.
type EventBus struct {
	mu     sync.Mutex
	buffer []Event
	cap    int
	seq    int64
}

// NewEventBus creates a bus retaining at most capacity events.
func NewEventBus(capacity int) *EventBus {
	if capacity <= 0 {
		capacity = 500
	}
	return &EventBus{cap: capacity}
}

// Publish stamps the event with the next sequence number and appends it.
func (b *EventBus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	ev.Seq = b.seq
	ev.Time = time.Now()
	b.buffer = append(b.buffer, ev)
	if len(b.buffer) > b.cap {
		b.buffer = b.buffer[len(b.buffer)-b.cap:]
	}
}

// Since returns events with Seq greater than after, oldest first.
func (b *EventBus) Since(after int64) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := len(b.buffer)
	for i, ev := range b.buffer {
		if ev.Seq > after {
			idx = i
			break
		}
	}
	out := make([]Event, len(b.buffer)-idx)
	copy(out, b.buffer[idx:])
	return out
}

// Seq returns the sequence number of the newest event.
func (b *EventBus) Seq() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}
