package domain

import (
	"sort"
	"time"
)

// Notification is a server-authored message delivered to the device.
// ID is stable across re-delivery; IsRead and IsDeleted are monotonic:
// once true they stay true no matter what the server re-sends.
type Notification struct {
	ID            string    `json:"id"`
	CampaignID    string    `json:"campaignID"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	AttachmentURL string    `json:"attachmentURL,omitempty"`
	DeliveredAt   time.Time `json:"deliveredAt"`
	ExpiresAt     time.Time `json:"expiresAt,omitempty"`
	IsRead        bool      `json:"isRead"`
	IsDeleted     bool      `json:"isDeleted"`
}

// Merge combines an incoming version of the same notification with the
// stored one. Non-monotonic fields are last-write-wins from the incoming
// record; the read and deleted flags take the logical OR so a stale
// re-delivery can never regress local progress.
func (n Notification) Merge(incoming Notification) Notification {
	incoming.IsRead = incoming.IsRead || n.IsRead
	incoming.IsDeleted = incoming.IsDeleted || n.IsDeleted
	return incoming
}

// MergeNotifications merges a batch of incoming notifications into an
// existing collection. The merge is idempotent and commutative on ID.
// The result is sorted by delivery time descending and trimmed to
// maxSize, discarding the oldest overflow. maxSize <= 0 means unbounded.
func MergeNotifications(existing, incoming []Notification, maxSize int) []Notification {
	byID := make(map[string]int, len(existing))
	merged := make([]Notification, len(existing))
	copy(merged, existing)
	for i, n := range merged {
		byID[n.ID] = i
	}

	for _, in := range incoming {
		if i, ok := byID[in.ID]; ok {
			merged[i] = merged[i].Merge(in)
			continue
		}
		byID[in.ID] = len(merged)
		merged = append(merged, in)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].DeliveredAt.After(merged[j].DeliveredAt)
	})

	if maxSize > 0 && len(merged) > maxSize {
		merged = merged[:maxSize]
	}
	return merged
}

// NotificationsEqual reports whether two collections hold identical
// records in identical order.
func NotificationsEqual(a, b []Notification) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID ||
			a[i].CampaignID != b[i].CampaignID ||
			a[i].Title != b[i].Title ||
			a[i].Body != b[i].Body ||
			a[i].AttachmentURL != b[i].AttachmentURL ||
			!a[i].DeliveredAt.Equal(b[i].DeliveredAt) ||
			!a[i].ExpiresAt.Equal(b[i].ExpiresAt) ||
			a[i].IsRead != b[i].IsRead ||
			a[i].IsDeleted != b[i].IsDeleted {
			return false
		}
	}
	return true
}

// UnreadCount counts notifications that are neither read nor deleted.
func UnreadCount(notifications []Notification) int {
	count := 0
	for _, n := range notifications {
		if !n.IsRead && !n.IsDeleted {
			count++
		}
	}
	return count
}
