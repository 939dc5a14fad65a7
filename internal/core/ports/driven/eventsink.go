package driven

import (
	"context"

	"github.com/lumen-labs/engagekit/internal/core/domain"
)

// EventSink receives analytics events for delivery to the backend.
// Track is fire-and-forget: it must never block the caller and a full
// or unavailable sink drops rather than fails. Store mutations treat a
// nil sink as "skip emission silently".
type EventSink interface {
	// Track enqueues an event for delivery.
	Track(event domain.TrackedEvent)

	// Flush delivers buffered events now.
	Flush(ctx context.Context) error

	// Close flushes and releases resources.
	Close() error
}
