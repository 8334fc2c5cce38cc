package scheduler

import "sync"

// queue is an unbounded FIFO of events with selective removal. Push never
// blocks, and wake is signalled whenever the queue becomes non-empty.
type queue struct {
	mu     sync.Mutex
	events []Event
	wake   chan struct{}
}

func newQueue() *queue {
	return &queue{wake: make(chan struct{}, 1)}
}

func (q *queue) push(ev Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
	q.signal()
}

// pushFront is used for the context creation step so it always runs before
// anything posted ahead of Start.
func (q *queue) pushFront(ev Event) {
	q.mu.Lock()
	q.events = append([]Event{ev}, q.events...)
	q.mu.Unlock()
	q.signal()
}

func (q *queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// pop blocks until an event is available.
func (q *queue) pop() Event {
	for {
		q.mu.Lock()
		if len(q.events) > 0 {
			ev := q.events[0]
			q.events = q.events[1:]
			q.mu.Unlock()
			return ev
		}
		q.mu.Unlock()
		<-q.wake
	}
}

// remove drops every queued event for which drop returns true and reports
// how many were removed.
func (q *queue) remove(drop func(Event) bool) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.events[:0]
	for _, ev := range q.events {
		if !drop(ev) {
			kept = append(kept, ev)
		}
	}
	n := len(q.events) - len(kept)
	q.events = kept
	return n
}

// pushUnique queues ev unless an identical event is already pending.
func (q *queue) pushUnique(ev Event) bool {
	q.mu.Lock()
	for _, queued := range q.events {
		if queued == ev {
			q.mu.Unlock()
			return false
		}
	}
	q.events = append(q.events, ev)
	q.mu.Unlock()
	q.signal()
	return true
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
