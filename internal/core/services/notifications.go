package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
	"github.com/lumen-labs/engagekit/internal/core/ports/driving"
	"github.com/lumen-labs/engagekit/internal/eventqueue"
	"github.com/lumen-labs/engagekit/internal/logger"
)

// UnreadCountKey is the preferences key the unread count is mirrored
// under, for cross-process visibility (widget and extension reads).
const UnreadCountKey = "notifications.unreadCount"

// Analytics event names.
const (
	EventNotificationRead    = "Notification Read"
	EventNotificationDeleted = "Notification Deleted"
)

// Ensure NotificationCenter implements the interface.
var _ driving.NotificationCenter = (*NotificationCenter)(nil)

// NotificationCenter owns the local notification collection. All
// mutation is serialised behind its mutex so merges, trims, persistence
// and observer snapshots are seen atomically. The in-memory collection
// is authoritative for the running process; disk is a best-effort cache
// for restore-on-launch.
type NotificationCenter struct {
	maxSize int
	cache   driven.NotificationCache
	prefs   driven.KeyValueStore
	sink    driven.EventSink
	queue   *eventqueue.Queue

	mu            sync.RWMutex
	notifications []domain.Notification
	observers     map[driving.ObserverToken]driving.NotificationObserver
}

// NewNotificationCenter creates a notification center. The event sink
// and queue are optional: a nil sink skips analytics emission silently.
func NewNotificationCenter(
	maxSize int,
	cache driven.NotificationCache,
	prefs driven.KeyValueStore,
	sink driven.EventSink,
	queue *eventqueue.Queue,
) *NotificationCenter {
	if maxSize <= 0 {
		maxSize = domain.DefaultMaxNotifications
	}
	return &NotificationCenter{
		maxSize:   maxSize,
		cache:     cache,
		prefs:     prefs,
		sink:      sink,
		queue:     queue,
		observers: make(map[driving.ObserverToken]driving.NotificationObserver),
	}
}

// Restore loads the persisted collection from disk. Corrupt cache data
// is discarded with a warning; the center starts empty.
func (c *NotificationCenter) Restore() error {
	loaded, err := c.cache.Load()
	if err != nil {
		logger.Warn("discarding corrupt notification cache: %v", err)
		loaded = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = domain.MergeNotifications(nil, loaded, c.maxSize)
	return nil
}

// List returns a snapshot of the collection, newest first.
func (c *NotificationCenter) List() []domain.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// UnreadCount returns the number of unread, undeleted notifications.
func (c *NotificationCenter) UnreadCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.UnreadCount(c.notifications)
}

// Add merges a batch into the collection, trims to capacity, persists
// and notifies observers. It reports whether anything changed, so a
// sync participant can distinguish new data from a no-op page.
func (c *NotificationCenter) Add(batch []domain.Notification) (bool, error) {
	c.mu.Lock()
	merged := domain.MergeNotifications(c.notifications, batch, c.maxSize)
	if domain.NotificationsEqual(c.notifications, merged) {
		c.mu.Unlock()
		return false, nil
	}
	c.notifications = merged
	c.persistLocked()
	snapshot, observers := c.snapshotLocked(), c.observersLocked()
	c.mu.Unlock()

	notifyObservers(observers, snapshot)
	return true, nil
}

// MarkRead flips the read flag. Monotonic: already-read is a no-op.
func (c *NotificationCenter) MarkRead(id string) error {
	return c.markFlag(id, EventNotificationRead)
}

// MarkDeleted flips the deleted flag. Monotonic like MarkRead.
func (c *NotificationCenter) MarkDeleted(id string) error {
	return c.markFlag(id, EventNotificationDeleted)
}

// AddObserver registers an observer invoked with the new snapshot after
// every successful mutation.
func (c *NotificationCenter) AddObserver(observer driving.NotificationObserver) driving.ObserverToken {
	token := driving.ObserverToken(uuid.NewString())
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers[token] = observer
	return token
}

// RemoveObserver unregisters an observer.
func (c *NotificationCenter) RemoveObserver(token driving.ObserverToken) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.observers[token]; !ok {
		return domain.ErrObserverNotFound
	}
	delete(c.observers, token)
	return nil
}

// markFlag flips one monotonic flag, persists, notifies and reports.
func (c *NotificationCenter) markFlag(id, eventName string) error {
	c.mu.Lock()

	index := -1
	for i := range c.notifications {
		if c.notifications[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		c.mu.Unlock()
		return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
	}

	n := &c.notifications[index]
	already := (eventName == EventNotificationRead && n.IsRead) ||
		(eventName == EventNotificationDeleted && n.IsDeleted)
	if already {
		c.mu.Unlock()
		return nil
	}

	if eventName == EventNotificationRead {
		n.IsRead = true
	} else {
		n.IsDeleted = true
	}
	campaignID := n.CampaignID

	c.persistLocked()
	snapshot, observers := c.snapshotLocked(), c.observersLocked()
	c.mu.Unlock()

	notifyObservers(observers, snapshot)
	c.track(eventName, id, campaignID)
	return nil
}

// persistLocked writes the disk cache and mirrors the unread count.
// Failures are logged, never propagated: in-memory state stays
// authoritative.
func (c *NotificationCenter) persistLocked() {
	if err := c.cache.Save(c.notifications); err != nil {
		logger.Warn("persisting notifications: %v", err)
	}
	if err := c.prefs.SetInt(UnreadCountKey, domain.UnreadCount(c.notifications)); err != nil {
		logger.Warn("mirroring unread count: %v", err)
	}
}

// track emits an analytics event and its typed queue counterpart.
// Fire-and-forget: a nil sink skips emission silently.
func (c *NotificationCenter) track(eventName, id, campaignID string) {
	if c.sink != nil {
		c.sink.Track(domain.TrackedEvent{
			ID:        uuid.NewString(),
			Name:      eventName,
			Timestamp: time.Now(),
			Attributes: map[string]any{
				"notificationID": id,
				"campaignID":     campaignID,
			},
		})
	}

	if c.queue != nil {
		switch eventName {
		case EventNotificationRead:
			_ = c.queue.Publish(domain.NotificationReadEvent{NotificationID: id, CampaignID: campaignID})
		case EventNotificationDeleted:
			_ = c.queue.Publish(domain.NotificationDeletedEvent{NotificationID: id, CampaignID: campaignID})
		}
	}
}

// snapshotLocked copies the collection. Callers hold at least a read lock.
func (c *NotificationCenter) snapshotLocked() []domain.Notification {
	snapshot := make([]domain.Notification, len(c.notifications))
	copy(snapshot, c.notifications)
	return snapshot
}

// observersLocked copies the observer set. Callers hold the lock.
func (c *NotificationCenter) observersLocked() []driving.NotificationObserver {
	observers := make([]driving.NotificationObserver, 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	return observers
}

// notifyObservers invokes every observer with the snapshot. Observers
// run synchronously on the mutating caller, outside the lock so they
// may call back into the center.
func notifyObservers(observers []driving.NotificationObserver, snapshot []domain.Notification) {
	for _, fn := range observers {
		fn(snapshot)
	}
}
