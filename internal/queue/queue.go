// Package queue implements the unbounded, multi-producer/multi-consumer
// FIFO the transaction generator (C7) fans requests out onto and the
// worker pool (C8) drains: one Queue per configured worker queue.
package queue

import (
	"sync"
	"time"

	"github.com/act-storage/act/internal/iodev"
)

// ReadRequest is a transient record: allocated by the generator, owned by
// exactly one Queue until a worker pops it, then discarded after the
// worker completes the read.
type ReadRequest struct {
	Device        *iodev.Device
	Offset        uint64
	Size          uint32
	EnqueueTimeNs uint64
}

// Queue is an unbounded FIFO of ReadRequest values, safe for concurrent
// pushes from the generator and concurrent pops from every worker on the
// queue.
type Queue struct {
	mu     sync.Mutex
	items  []ReadRequest
	notify chan struct{}
}

// New returns an empty Queue.
func New() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Push appends r to the tail of the queue and wakes one blocked Pop, if
// any is waiting.
func (q *Queue) Push(r ReadRequest) {
	q.mu.Lock()
	q.items = append(q.items, r)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Pop removes and returns the head of the queue, blocking up to timeout
// when the queue is empty. The 100ms timeout the workers use bounds how
// long shutdown takes to notice `running` has cleared.
func (q *Queue) Pop(timeout time.Duration) (ReadRequest, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			r := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return r, true
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
			continue
		case <-deadline.C:
			return ReadRequest{}, false
		}
	}
}

// Len reports the current queue depth. Used for reporting only; callers
// must not rely on it staying accurate past the call.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
