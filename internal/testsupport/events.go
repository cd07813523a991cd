package testsupport

import (
	"sync"
	"testing"
	"time"

	"filterbridge/internal/notifier"
)

// Recorder is a notifier.Publisher that keeps every published event.
type Recorder struct {
	mu     sync.Mutex
	events []notifier.Event
}

// Publish records the event.
func (r *Recorder) Publish(name string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, notifier.Event{Name: name, Args: append([]any(nil), args...)})
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []notifier.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifier.Event(nil), r.events...)
}

// Last returns the most recent event, failing the test if none exist.
func (r *Recorder) Last(t testing.TB) notifier.Event {
	t.Helper()
	events := r.Events()
	if len(events) == 0 {
		t.Fatalf("no events recorded")
	}
	return events[len(events)-1]
}

// WaitFor polls cond until it returns true or the timeout elapses.
func WaitFor(t testing.TB, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}
