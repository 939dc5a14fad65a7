package driven

import "github.com/lumen-labs/engagekit/internal/core/domain"

// NotificationCache is the on-disk snapshot of the notification
// collection, reloaded at startup. It is a best-effort cache: the
// in-memory collection stays authoritative for the running process and
// a failed write never rolls back store state.
type NotificationCache interface {
	// Load reads the cached collection. A missing cache returns an
	// empty collection and no error; corrupt data returns an error the
	// caller logs and discards.
	Load() ([]domain.Notification, error)

	// Save writes the full collection snapshot.
	Save(notifications []domain.Notification) error
}
