package driving

import "github.com/lumen-labs/engagekit/internal/core/domain"

// ObserverToken identifies a registered store observer.
type ObserverToken string

// NotificationObserver receives the full collection snapshot after
// every successful mutation.
type NotificationObserver func(notifications []domain.Notification)

// NotificationCenter is the host-facing notification store. All
// mutation goes through it so the merge, capacity and persistence
// invariants are centrally enforced.
type NotificationCenter interface {
	// Restore loads the persisted collection from disk. Best effort:
	// corrupt data is discarded with a logged warning, never fatal.
	Restore() error

	// List returns a snapshot of the collection, newest first.
	List() []domain.Notification

	// UnreadCount returns the number of unread, undeleted notifications.
	UnreadCount() int

	// MarkRead flips the read flag. Monotonic: a no-op when already set.
	MarkRead(id string) error

	// MarkDeleted flips the deleted flag. Monotonic like MarkRead.
	MarkDeleted(id string) error

	// AddObserver registers an observer invoked synchronously with the
	// new snapshot after every successful mutation.
	AddObserver(observer NotificationObserver) ObserverToken

	// RemoveObserver unregisters an observer.
	RemoveObserver(token ObserverToken) error
}
