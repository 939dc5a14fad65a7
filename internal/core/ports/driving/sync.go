package driving

import (
	"context"
	"time"

	"github.com/lumen-labs/engagekit/internal/core/domain"
)

// SyncCoordinator orchestrates sync passes across all registered
// participants.
type SyncCoordinator interface {
	// Sync runs one pass and blocks until it completes. Calling Sync
	// while a pass is running coalesces into at most one pending pass;
	// two passes never run concurrently against the same cursor keys.
	Sync(ctx context.Context) (*PassResult, error)

	// SyncAsync triggers a pass without waiting for completion.
	SyncAsync(ctx context.Context)

	// Status reports whether a pass is running and the last result.
	Status() Status
}

// PassResult aggregates each participant's terminal state for one pass.
type PassResult struct {
	// Results maps participant name to its terminal result.
	Results map[string]domain.SyncResult

	// CompletedAt is when the pass finished.
	CompletedAt time.Time
}

// Succeeded reports whether no participant failed. A pass with partial
// failures still merged the successful participants' data.
func (r *PassResult) Succeeded() bool {
	for _, result := range r.Results {
		if result == domain.SyncResultFailed {
			return false
		}
	}
	return true
}

// Status is a point-in-time view of the coordinator.
type Status struct {
	// Running indicates a pass is currently in progress.
	Running bool

	// Pending indicates a coalesced pass is queued behind the running one.
	Pending bool

	// LastResult is the most recent completed pass, nil before the first.
	LastResult *PassResult
}
