package comm

import "sync"

// Inbox is the FIFO message queue owned by one actor.
// Any number of senders may Push; only the owner calls Drain.
// Each inbox has its own lock so unrelated actors never contend.
type Inbox struct {
	mu      sync.Mutex
	pending []Message
	spare   []Message // recycled backing array for the next drain
}

// Push appends msg to the end of the queue.
func (q *Inbox) Push(msg Message) {
	q.mu.Lock()
	q.pending = append(q.pending, msg)
	q.mu.Unlock()
}

// Len returns the number of queued messages.
func (q *Inbox) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain hands every message queued at call time to fn in arrival order.
// Messages pushed while fn runs, including ones fn sends to this inbox,
// stay queued for the next Drain. Returns the number of messages handled.
func (q *Inbox) Drain(fn func(Message)) int {
	q.mu.Lock()
	batch := q.pending
	q.pending = q.spare[:0]
	q.spare = nil
	q.mu.Unlock()

	for _, msg := range batch {
		fn(msg)
	}

	q.mu.Lock()
	if q.spare == nil {
		clear(batch)
		q.spare = batch[:0]
	}
	q.mu.Unlock()

	return len(batch)
}
