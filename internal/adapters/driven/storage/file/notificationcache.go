// Package file provides a JSON-file-backed notification cache.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
)

// Ensure NotificationCache implements the interface.
var _ driven.NotificationCache = (*NotificationCache)(nil)

// cacheFileName is the notification cache file within the cache dir.
const cacheFileName = "notifications.json"

// NotificationCache persists the notification collection as a JSON
// file. Writes go through a temp file and rename so a crash mid-write
// never leaves a truncated cache behind.
type NotificationCache struct {
	mu       sync.Mutex
	filePath string
}

// NewNotificationCache creates a cache rooted at cacheDir.
// If cacheDir is empty, defaults to ~/.engagekit/cache.
func NewNotificationCache(cacheDir string) (*NotificationCache, error) {
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cacheDir = filepath.Join(home, ".engagekit", "cache")
	}

	// Ensure directory exists
	if err := os.MkdirAll(cacheDir, 0700); err != nil {
		return nil, err
	}

	return &NotificationCache{
		filePath: filepath.Join(cacheDir, cacheFileName),
	}, nil
}

// Load reads the cached collection. A missing file yields an empty
// collection and no error.
func (c *NotificationCache) Load() ([]domain.Notification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading notification cache: %w", err)
	}

	var notifications []domain.Notification
	if err := json.Unmarshal(data, &notifications); err != nil {
		return nil, fmt.Errorf("parsing notification cache: %w", err)
	}

	return notifications, nil
}

// Save replaces the cached collection.
func (c *NotificationCache) Save(notifications []domain.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(notifications)
	if err != nil {
		return fmt.Errorf("marshalling notification cache: %w", err)
	}

	tmpPath := c.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("writing notification cache: %w", err)
	}
	if err := os.Rename(tmpPath, c.filePath); err != nil {
		return fmt.Errorf("replacing notification cache: %w", err)
	}

	return nil
}

// Path returns the cache file path.
func (c *NotificationCache) Path() string {
	return c.filePath
}
