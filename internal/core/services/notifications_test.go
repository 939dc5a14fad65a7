package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
	"github.com/lumen-labs/engagekit/internal/eventqueue"
)

// mockCache implements driven.NotificationCache for testing.
type mockCache struct {
	mu      sync.Mutex
	data    []domain.Notification
	loadErr error
	saves   int
}

func (m *mockCache) Load() ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data, nil
}

func (m *mockCache) Save(notifications []domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = notifications
	m.saves++
	return nil
}

func (m *mockCache) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// mockSink implements driven.EventSink for testing.
type mockSink struct {
	mu     sync.Mutex
	events []domain.TrackedEvent
}

func (m *mockSink) Track(event domain.TrackedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *mockSink) Flush(_ context.Context) error { return nil }
func (m *mockSink) Close() error                  { return nil }

func (m *mockSink) tracked() []domain.TrackedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]domain.TrackedEvent, len(m.events))
	copy(events, m.events)
	return events
}

// Ensure mocks implement interfaces
var (
	_ driven.NotificationCache = (*mockCache)(nil)
	_ driven.EventSink         = (*mockSink)(nil)
)

func notification(id string, deliveredAt time.Time) domain.Notification {
	return domain.Notification{
		ID:          id,
		CampaignID:  "campaign-1",
		Title:       "Title " + id,
		DeliveredAt: deliveredAt,
	}
}

func newTestCenter(maxSize int, cache *mockCache, sink driven.EventSink) (*NotificationCenter, *mockKV) {
	kv := newMockKV()
	return NewNotificationCenter(maxSize, cache, kv, sink, nil), kv
}

// ==================== Notification Center Tests ====================

func TestNotificationCenter_Restore_LoadsPersisted(t *testing.T) {
	now := time.Now()
	cache := &mockCache{data: []domain.Notification{notification("n1", now)}}
	center, _ := newTestCenter(10, cache, nil)

	require.NoError(t, center.Restore())

	list := center.List()
	require.Len(t, list, 1)
	assert.Equal(t, "n1", list[0].ID)
}

func TestNotificationCenter_Restore_CorruptCacheStartsEmpty(t *testing.T) {
	cache := &mockCache{loadErr: errors.New("unexpected end of JSON input")}
	center, _ := newTestCenter(10, cache, nil)

	require.NoError(t, center.Restore())
	assert.Empty(t, center.List())
}

func TestNotificationCenter_Add_MergesAndPersists(t *testing.T) {
	now := time.Now()
	cache := &mockCache{}
	center, kv := newTestCenter(10, cache, nil)

	changed, err := center.Add([]domain.Notification{notification("n1", now)})
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, 1, cache.saveCount())
	unread, ok := kv.GetInt(UnreadCountKey)
	require.True(t, ok)
	assert.Equal(t, 1, unread)
}

func TestNotificationCenter_Add_IdenticalBatchIsNoOp(t *testing.T) {
	now := time.Now()
	cache := &mockCache{}
	center, _ := newTestCenter(10, cache, nil)

	batch := []domain.Notification{notification("n1", now)}
	changed, err := center.Add(batch)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = center.Add(batch)
	require.NoError(t, err)
	assert.False(t, changed)
	// The no-op second add never touched disk
	assert.Equal(t, 1, cache.saveCount())
}

func TestNotificationCenter_Add_TrimsToCapacity(t *testing.T) {
	base := time.Now()
	center, _ := newTestCenter(2, &mockCache{}, nil)

	_, err := center.Add([]domain.Notification{
		notification("n1", base),
		notification("n2", base.Add(-time.Hour)),
		notification("n3", base.Add(-2*time.Hour)),
	})
	require.NoError(t, err)

	list := center.List()
	require.Len(t, list, 2)
	assert.Equal(t, "n1", list[0].ID)
	assert.Equal(t, "n2", list[1].ID)
}

func TestNotificationCenter_Add_RedeliveryKeepsReadFlag(t *testing.T) {
	now := time.Now()
	center, _ := newTestCenter(10, &mockCache{}, nil)

	_, err := center.Add([]domain.Notification{notification("n1", now)})
	require.NoError(t, err)
	require.NoError(t, center.MarkRead("n1"))

	// Server re-delivers the same notification without the flag
	changed, err := center.Add([]domain.Notification{notification("n1", now)})
	require.NoError(t, err)
	assert.False(t, changed)

	list := center.List()
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRead)
}

func TestNotificationCenter_MarkRead_NotFound(t *testing.T) {
	center, _ := newTestCenter(10, &mockCache{}, nil)

	err := center.MarkRead("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNotificationCenter_MarkRead_TracksOnce(t *testing.T) {
	now := time.Now()
	sink := &mockSink{}
	center, kv := newTestCenter(10, &mockCache{}, sink)

	_, err := center.Add([]domain.Notification{notification("n1", now)})
	require.NoError(t, err)

	require.NoError(t, center.MarkRead("n1"))

	events := sink.tracked()
	require.Len(t, events, 1)
	assert.Equal(t, EventNotificationRead, events[0].Name)
	assert.Equal(t, "n1", events[0].Attributes["notificationID"])

	unread, _ := kv.GetInt(UnreadCountKey)
	assert.Equal(t, 0, unread)

	// Marking again is a silent no-op: no second event
	require.NoError(t, center.MarkRead("n1"))
	assert.Len(t, sink.tracked(), 1)
}

func TestNotificationCenter_MarkDeleted(t *testing.T) {
	now := time.Now()
	sink := &mockSink{}
	center, _ := newTestCenter(10, &mockCache{}, sink)

	_, err := center.Add([]domain.Notification{notification("n1", now)})
	require.NoError(t, err)

	require.NoError(t, center.MarkDeleted("n1"))

	list := center.List()
	require.Len(t, list, 1)
	assert.True(t, list[0].IsDeleted)
	assert.Equal(t, 0, center.UnreadCount())

	events := sink.tracked()
	require.Len(t, events, 1)
	assert.Equal(t, EventNotificationDeleted, events[0].Name)
}

func TestNotificationCenter_PublishesTypedEvents(t *testing.T) {
	now := time.Now()
	queue := eventqueue.New()
	defer queue.Close()

	sub, err := queue.Subscribe(2)
	require.NoError(t, err)
	defer sub.Cancel()

	center := NewNotificationCenter(10, &mockCache{}, newMockKV(), nil, queue)
	_, err = center.Add([]domain.Notification{notification("n1", now)})
	require.NoError(t, err)

	require.NoError(t, center.MarkRead("n1"))

	select {
	case event := <-sub.C:
		read, ok := event.(domain.NotificationReadEvent)
		require.True(t, ok)
		assert.Equal(t, "n1", read.NotificationID)
		assert.Equal(t, "campaign-1", read.CampaignID)
	case <-time.After(time.Second):
		t.Fatal("expected a NotificationReadEvent")
	}
}

func TestNotificationCenter_ObserverReceivesSnapshot(t *testing.T) {
	now := time.Now()
	center, _ := newTestCenter(10, &mockCache{}, nil)

	var (
		mu        sync.Mutex
		snapshots [][]domain.Notification
	)
	center.AddObserver(func(notifications []domain.Notification) {
		mu.Lock()
		defer mu.Unlock()
		snapshots = append(snapshots, notifications)
	})

	_, err := center.Add([]domain.Notification{notification("n1", now)})
	require.NoError(t, err)
	require.NoError(t, center.MarkRead("n1"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, snapshots, 2)
	assert.False(t, snapshots[0][0].IsRead)
	assert.True(t, snapshots[1][0].IsRead)
}

func TestNotificationCenter_ObserverMayCallBack(t *testing.T) {
	now := time.Now()
	center, _ := newTestCenter(10, &mockCache{}, nil)

	var observedUnread int
	center.AddObserver(func(_ []domain.Notification) {
		// Callbacks run outside the lock, so calling back in is safe
		observedUnread = center.UnreadCount()
	})

	_, err := center.Add([]domain.Notification{notification("n1", now)})
	require.NoError(t, err)
	assert.Equal(t, 1, observedUnread)
}

func TestNotificationCenter_RemoveObserver(t *testing.T) {
	now := time.Now()
	center, _ := newTestCenter(10, &mockCache{}, nil)

	calls := 0
	token := center.AddObserver(func(_ []domain.Notification) { calls++ })

	require.NoError(t, center.RemoveObserver(token))
	_, err := center.Add([]domain.Notification{notification("n1", now)})
	require.NoError(t, err)
	assert.Equal(t, 0, calls)

	// Removing twice reports the unknown token
	assert.ErrorIs(t, center.RemoveObserver(token), domain.ErrObserverNotFound)
}

func TestNotificationCenter_UnreadCount(t *testing.T) {
	base := time.Now()
	center, _ := newTestCenter(10, &mockCache{}, nil)

	_, err := center.Add([]domain.Notification{
		notification("n1", base),
		notification("n2", base.Add(-time.Minute)),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, center.UnreadCount())

	require.NoError(t, center.MarkRead("n1"))
	assert.Equal(t, 1, center.UnreadCount())
}
