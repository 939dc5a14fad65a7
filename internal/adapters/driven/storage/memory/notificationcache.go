package memory

import (
	"sync"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
)

// Ensure NotificationCache implements the interface.
var _ driven.NotificationCache = (*NotificationCache)(nil)

// NotificationCache is an in-memory implementation of
// driven.NotificationCache.
type NotificationCache struct {
	mu            sync.RWMutex
	notifications []domain.Notification
}

// NewNotificationCache creates an empty in-memory cache.
func NewNotificationCache() *NotificationCache {
	return &NotificationCache{}
}

// Load returns the cached collection.
func (c *NotificationCache) Load() ([]domain.Notification, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := make([]domain.Notification, len(c.notifications))
	copy(snapshot, c.notifications)
	return snapshot, nil
}

// Save replaces the cached collection.
func (c *NotificationCache) Save(notifications []domain.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = make([]domain.Notification, len(notifications))
	copy(c.notifications, notifications)
	return nil
}
