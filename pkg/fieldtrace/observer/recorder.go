package observer

import (
	"sync"

	"github.com/coral-mesh/fieldtrace/pkg/fieldtrace"
)

// Recorder keeps every event it observes in memory.
type Recorder struct {
	mu     sync.Mutex
	events []fieldtrace.ErasedAccessEvent
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Observe is a fieldtrace.ErasedObserver.
func (r *Recorder) Observe(e fieldtrace.ErasedAccessEvent, _ fieldtrace.AnySelfToken) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events in delivery order.
func (r *Recorder) Events() []fieldtrace.ErasedAccessEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]fieldtrace.ErasedAccessEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Count returns how many recorded events have the given kind.
func (r *Recorder) Count(kind fieldtrace.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
