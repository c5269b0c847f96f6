// Package nav provides the deferred action queue: a FIFO buffer for
// navigation commands issued before the navigation host is ready.
package nav

import "sync"

// Queue buffers zero-argument actions until Flush is called by the host's
// ready signal. A queue instance is flushed at most once and then
// discarded; actions enqueued during the flush are retained but never run.
type Queue struct {
	mu      sync.Mutex
	actions []func()
	flushed bool
}

func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends an action to the queue.
func (q *Queue) Enqueue(action func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.actions = append(q.actions, action)
}

// Flush drains the queue in FIFO order, exactly once per queue instance.
// The pending list is copied and cleared before anything runs, so actions
// enqueued during the flush land in the (never flushed again) next batch.
// A panic in one action does not prevent the rest from running.
func (q *Queue) Flush() {
	q.mu.Lock()
	if q.flushed {
		q.mu.Unlock()
		return
	}
	q.flushed = true
	batch := q.actions
	q.actions = nil
	q.mu.Unlock()

	for _, action := range batch {
		runIsolated(action)
	}
}

// Len reports the number of pending actions.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

func runIsolated(action func()) {
	defer func() {
		// A failing navigation action must not take down its siblings.
		_ = recover()
	}()
	action()
}
