// Package eventqueue is a typed in-process publish/subscribe bus. It
// replaces stringly-keyed global broadcast: payloads are plain Go types
// (see domain events) and every subscriber owns a private buffered
// channel, so one slow consumer can never stall a sync pass.
package eventqueue

import (
	"sync"

	"github.com/google/uuid"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/logger"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 16

// Queue fans published events out to all subscribers.
type Queue struct {
	mu     sync.RWMutex
	subs   map[string]chan any
	closed bool
}

// Subscription is one subscriber's view of the queue.
type Subscription struct {
	// C delivers published events until Cancel or queue close.
	C <-chan any

	token string
	queue *Queue
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{subs: make(map[string]chan any)}
}

// Subscribe registers a subscriber with the given channel buffer.
// buffer <= 0 uses DefaultBuffer.
func (q *Queue) Subscribe(buffer int) (*Subscription, error) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, domain.ErrQueueClosed
	}

	token := uuid.NewString()
	ch := make(chan any, buffer)
	q.subs[token] = ch

	return &Subscription{C: ch, token: token, queue: q}, nil
}

// Cancel removes the subscription and closes its channel.
func (s *Subscription) Cancel() {
	s.queue.mu.Lock()
	defer s.queue.mu.Unlock()

	if ch, ok := s.queue.subs[s.token]; ok {
		delete(s.queue.subs, s.token)
		close(ch)
	}
}

// Publish delivers the event to every subscriber without blocking. A
// subscriber whose buffer is full misses the event.
func (q *Queue) Publish(event any) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return domain.ErrQueueClosed
	}

	for _, ch := range q.subs {
		select {
		case ch <- event:
		default:
			logger.Warn("event queue subscriber full, dropping %T", event)
		}
	}
	return nil
}

// Close shuts the queue down and closes all subscriber channels.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true

	for token, ch := range q.subs {
		delete(q.subs, token)
		close(ch)
	}
}
