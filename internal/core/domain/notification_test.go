package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeNotification(id string, deliveredAt time.Time) Notification {
	return Notification{
		ID:          id,
		CampaignID:  "campaign-1",
		Title:       "Title " + id,
		Body:        "Body " + id,
		DeliveredAt: deliveredAt,
	}
}

func TestNotification_Merge_FlagsAreMonotonic(t *testing.T) {
	now := time.Now()
	stored := makeNotification("n1", now)
	stored.IsRead = true
	stored.IsDeleted = true

	// Server re-delivers the notification with both flags cleared.
	incoming := makeNotification("n1", now)

	merged := stored.Merge(incoming)
	assert.True(t, merged.IsRead)
	assert.True(t, merged.IsDeleted)
}

func TestNotification_Merge_IncomingFlagsWin(t *testing.T) {
	now := time.Now()
	stored := makeNotification("n1", now)

	incoming := makeNotification("n1", now)
	incoming.IsRead = true

	merged := stored.Merge(incoming)
	assert.True(t, merged.IsRead)
	assert.False(t, merged.IsDeleted)
}

func TestNotification_Merge_ContentIsLastWriteWins(t *testing.T) {
	now := time.Now()
	stored := makeNotification("n1", now)
	stored.Title = "Old Title"

	incoming := makeNotification("n1", now)
	incoming.Title = "New Title"
	incoming.Body = "New Body"

	merged := stored.Merge(incoming)
	assert.Equal(t, "New Title", merged.Title)
	assert.Equal(t, "New Body", merged.Body)
}

func TestMergeNotifications_SortsNewestFirst(t *testing.T) {
	base := time.Now()
	existing := []Notification{makeNotification("old", base.Add(-2 * time.Hour))}
	incoming := []Notification{
		makeNotification("newest", base),
		makeNotification("middle", base.Add(-time.Hour)),
	}

	merged := MergeNotifications(existing, incoming, 0)

	require.Len(t, merged, 3)
	assert.Equal(t, "newest", merged[0].ID)
	assert.Equal(t, "middle", merged[1].ID)
	assert.Equal(t, "old", merged[2].ID)
}

func TestMergeNotifications_TrimsOldestOverflow(t *testing.T) {
	base := time.Now()
	incoming := []Notification{
		makeNotification("n1", base),
		makeNotification("n2", base.Add(-time.Hour)),
		makeNotification("n3", base.Add(-2*time.Hour)),
	}

	merged := MergeNotifications(nil, incoming, 2)

	require.Len(t, merged, 2)
	assert.Equal(t, "n1", merged[0].ID)
	assert.Equal(t, "n2", merged[1].ID)
}

func TestMergeNotifications_IsIdempotent(t *testing.T) {
	base := time.Now()
	incoming := []Notification{
		makeNotification("n1", base),
		makeNotification("n2", base.Add(-time.Hour)),
	}

	once := MergeNotifications(nil, incoming, 10)
	twice := MergeNotifications(once, incoming, 10)

	assert.True(t, NotificationsEqual(once, twice))
}

func TestMergeNotifications_RedeliveryKeepsLocalFlags(t *testing.T) {
	base := time.Now()
	read := makeNotification("n1", base)
	read.IsRead = true
	existing := []Notification{read}

	// Same notification re-delivered without flags.
	merged := MergeNotifications(existing, []Notification{makeNotification("n1", base)}, 10)

	require.Len(t, merged, 1)
	assert.True(t, merged[0].IsRead)
}

func TestNotificationsEqual(t *testing.T) {
	base := time.Now()
	a := []Notification{makeNotification("n1", base)}
	b := []Notification{makeNotification("n1", base)}
	assert.True(t, NotificationsEqual(a, b))

	b[0].IsRead = true
	assert.False(t, NotificationsEqual(a, b))

	assert.False(t, NotificationsEqual(a, nil))
	assert.True(t, NotificationsEqual(nil, nil))
}

func TestUnreadCount(t *testing.T) {
	base := time.Now()
	read := makeNotification("n1", base)
	read.IsRead = true
	deleted := makeNotification("n2", base)
	deleted.IsDeleted = true
	unread := makeNotification("n3", base)

	assert.Equal(t, 1, UnreadCount([]Notification{read, deleted, unread}))
	assert.Equal(t, 0, UnreadCount(nil))
}
