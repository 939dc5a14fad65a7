package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSyncInProgress indicates a sync pass is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrMissingPageInfo indicates a page decoded structurally but carried
	// no pageInfo. Treated as a malformed response, not as pagination end.
	ErrMissingPageInfo = errors.New("page info missing from response")

	// ErrObserverNotFound indicates an unknown observer token was removed.
	ErrObserverNotFound = errors.New("observer not found")

	// ErrUnknownTypename indicates a tagged-union payload carried a
	// discriminator outside the known closed set of variants.
	ErrUnknownTypename = errors.New("unknown __typename")

	// ErrQueueClosed indicates a publish or subscribe on a closed event queue.
	ErrQueueClosed = errors.New("event queue closed")
)
