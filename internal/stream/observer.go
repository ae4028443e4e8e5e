// Package stream implements per-patient live monitoring sessions: a tick
// loop generating and classifying readings, and observer fan-out with
// bounded queues.
package stream

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// DefaultQueueSize bounds an observer's outbound queue.
const DefaultQueueSize = 16

// outbound is one queued wire payload. Alert payloads are never evicted.
type outbound struct {
	alert bool
	data  []byte
}

// Observer is one attached stream consumer. The session enqueues payloads;
// the connection handler drains them with Next. A slow observer loses old
// readings rather than stalling the tick loop.
type Observer struct {
	id    string
	limit int

	mu     sync.Mutex
	queue  []outbound
	closed bool

	signal chan struct{}
	done   chan struct{}
}

// NewObserver creates an observer with the given queue bound. A
// non-positive size falls back to DefaultQueueSize.
func NewObserver(queueSize int) *Observer {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Observer{
		id:     uuid.NewString(),
		limit:  queueSize,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// ID returns the observer's unique identifier.
func (o *Observer) ID() string { return o.id }

// enqueue adds a payload to the queue. When the queue is full, the oldest
// queued reading is evicted; a new reading with no evictable entry is
// dropped outright. Returns ok=false when the observer is closed or an
// alert payload cannot be queued, in which case the caller must detach
// the observer. dropped reports whether a reading was lost.
func (o *Observer) enqueue(msg outbound) (ok, dropped bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return false, false
	}

	if len(o.queue) >= o.limit {
		evict := -1
		for i, m := range o.queue {
			if !m.alert {
				evict = i
				break
			}
		}
		switch {
		case evict >= 0:
			o.queue = append(o.queue[:evict], o.queue[evict+1:]...)
			dropped = true
		case !msg.alert:
			// Queue is all alerts; the incoming reading is the one
			// thing safe to lose.
			return true, true
		default:
			return false, false
		}
	}

	o.queue = append(o.queue, msg)
	select {
	case o.signal <- struct{}{}:
	default:
	}
	return true, dropped
}

// Next blocks until a payload is available, the observer is closed, or
// ctx is done. ok=false means the stream is over for this observer.
func (o *Observer) Next(ctx context.Context) (data []byte, ok bool) {
	for {
		o.mu.Lock()
		if len(o.queue) > 0 {
			msg := o.queue[0]
			o.queue = o.queue[1:]
			o.mu.Unlock()
			return msg.data, true
		}
		closed := o.closed
		o.mu.Unlock()
		if closed {
			return nil, false
		}

		select {
		case <-o.signal:
		case <-o.done:
		case <-ctx.Done():
			return nil, false
		}
	}
}

// Close marks the observer finished and wakes any blocked Next call.
// Safe to call more than once.
func (o *Observer) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.mu.Unlock()
	close(o.done)
}

// Done is closed when the observer is closed.
func (o *Observer) Done() <-chan struct{} { return o.done }
