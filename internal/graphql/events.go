package graphql

import (
	"context"
	"sync"
	"time"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
	"github.com/lumen-labs/engagekit/internal/logger"
)

const (
	// TrackerBufferSize bounds the unflushed event buffer. When full,
	// the oldest events are dropped; tracking must never block or fail
	// a store mutation.
	TrackerBufferSize = 256

	// TrackerFlushInterval is how often buffered events are delivered.
	TrackerFlushInterval = 30 * time.Second
)

// trackEventsMutation delivers a batch of analytics events.
const trackEventsMutation = `mutation TrackEvents($events:[EventInput]!) {
	trackEvents(events:$events)
}`

// Ensure Tracker implements the sink port.
var _ driven.EventSink = (*Tracker)(nil)

// Tracker is a buffered, fire-and-forget analytics event sink that
// flushes batches to the backend through the GraphQL transport's
// gzip-compressed POST path.
type Tracker struct {
	client driven.GraphQLClient

	mu     sync.Mutex
	buffer []domain.TrackedEvent

	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

// NewTracker creates a tracker and starts its background flush loop.
func NewTracker(client driven.GraphQLClient) *Tracker {
	t := &Tracker{
		client: client,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go t.loop()
	return t
}

// Track enqueues an event. Never blocks: a full buffer drops the oldest
// events to make room.
func (t *Tracker) Track(event domain.TrackedEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.buffer) >= TrackerBufferSize {
		dropped := len(t.buffer) - TrackerBufferSize + 1
		t.buffer = t.buffer[dropped:]
		logger.Warn("event buffer full, dropped %d oldest event(s)", dropped)
	}
	t.buffer = append(t.buffer, event)
}

// Flush delivers all buffered events now. On failure the batch is put
// back for the next flush.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	batch := t.buffer
	t.buffer = nil
	t.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	req := domain.NewSyncRequest(trackEventsMutation, map[string]any{
		"events": batch,
	})
	if _, err := t.client.Mutate(ctx, req); err != nil {
		t.mu.Lock()
		t.buffer = append(batch, t.buffer...)
		t.mu.Unlock()
		return err
	}

	logger.Debug("flushed %d analytics event(s)", len(batch))
	return nil
}

// Close stops the flush loop and delivers any remaining events.
func (t *Tracker) Close() error {
	var err error
	t.once.Do(func() {
		close(t.stopCh)
		<-t.doneCh

		ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		defer cancel()
		err = t.Flush(ctx)
	})
	return err
}

// loop flushes on an interval until Close.
func (t *Tracker) loop() {
	defer close(t.doneCh)

	ticker := time.NewTicker(TrackerFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
			if err := t.Flush(ctx); err != nil {
				logger.Warn("event flush failed: %v", err)
			}
			cancel()
		}
	}
}
