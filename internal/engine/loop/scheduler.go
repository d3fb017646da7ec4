package loop

import "sync"

// Scheduler runs a callback at the host's next display refresh.
type Scheduler interface {
	RequestFrame(fn func())
}

// FrameQueue is a Scheduler for hosts that own their main loop. Callbacks
// requested during Flush run on the next Flush, never the current one.
// RequestFrame may be called from any goroutine; Flush runs callbacks on
// the caller's goroutine.
type FrameQueue struct {
	mu      sync.Mutex
	pending []func()
	running []func()
}

// RequestFrame queues fn for the next Flush.
func (q *FrameQueue) RequestFrame(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Flush runs every callback queued before the call. It returns how many ran.
func (q *FrameQueue) Flush() int {
	q.mu.Lock()
	q.running, q.pending = q.pending, q.running[:0]
	q.mu.Unlock()

	for _, fn := range q.running {
		fn()
	}
	n := len(q.running)
	q.running = q.running[:0]
	return n
}

// Pending returns the number of callbacks waiting for the next Flush.
func (q *FrameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
