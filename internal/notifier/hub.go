package notifier

import (
	"sync"
)

// Event is one backend notification.
type Event struct {
	Name string
	Args []any
}

// Handler consumes events for one subscription. Calls for a subscription are
// sequential.
type Handler func(Event)

// Publisher is the publish side of the hub, as seen by collaborators.
type Publisher interface {
	Publish(name string, args ...any)
}

// Hub fans out events to all active subscriptions. It is safe for concurrent
// use.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers handler and starts its delivery goroutine. The caller
// must Close the returned subscription.
func (h *Hub) Subscribe(handler Handler) *Subscription {
	sub := &Subscription{
		hub:     h,
		handler: handler,
		done:    make(chan struct{}),
	}
	sub.cond = sync.NewCond(&sub.mu)

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go sub.run()
	return sub
}

// Publish enqueues an event for every active subscription and returns without
// waiting for delivery.
func (h *Hub) Publish(name string, args ...any) {
	if h == nil {
		return
	}
	evt := Event{Name: name, Args: append([]any(nil), args...)}

	// Enqueueing under the hub lock gives every subscription the same order
	// when several goroutines publish at once.
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		sub.enqueue(evt)
	}
}

// Len reports the number of active subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

// Subscription is one registered handler.
type Subscription struct {
	hub     *Hub
	handler Handler

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Event
	closed bool

	done chan struct{}
}

func (s *Subscription) enqueue(evt Event) {
	s.mu.Lock()
	if !s.closed {
		s.queue = append(s.queue, evt)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

func (s *Subscription) run() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.queue = nil
			s.mu.Unlock()
			return
		}
		evt := s.queue[0]
		s.queue[0] = Event{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.handler(evt)
	}
}

// Close detaches the subscription from the hub and discards undelivered
// events. It does not wait for an in-flight handler call; use Done for that.
// Close is idempotent and may be called from the handler.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
	s.hub.remove(s)
}

// Done is closed once the delivery goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Pending reports the number of queued, undelivered events.
func (s *Subscription) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
