package domain

import "time"

// Typed event payloads carried on the in-process event queue. Components
// publish these instead of broadcasting stringly-keyed notifications.

// PassCompletedEvent is published when a sync pass finishes.
type PassCompletedEvent struct {
	Succeeded   bool
	Results     map[string]SyncResult
	CompletedAt time.Time
}

// NotificationReadEvent is published when a notification is marked read.
type NotificationReadEvent struct {
	NotificationID string
	CampaignID     string
}

// NotificationDeletedEvent is published when a notification is marked
// deleted.
type NotificationDeletedEvent struct {
	NotificationID string
	CampaignID     string
}

// ConfigChangedEvent is published when the settings file changes on disk.
type ConfigChangedEvent struct {
	Settings Settings
}

// TrackedEvent is an analytics event reported back to the backend.
type TrackedEvent struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Timestamp  time.Time      `json:"timestamp"`
	Attributes map[string]any `json:"attributes,omitempty"`
}
