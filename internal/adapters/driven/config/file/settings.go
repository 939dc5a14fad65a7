package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/lumen-labs/engagekit/internal/core/domain"
)

// settingsFile is the TOML shape of the settings file. Durations are
// written as Go duration strings ("15m", "30s").
type settingsFile struct {
	Endpoint         string `toml:"endpoint"`
	AccountToken     string `toml:"account_token"`
	PageSize         int    `toml:"page_size,omitempty"`
	MaxNotifications int    `toml:"max_notifications,omitempty"`
	SyncInterval     string `toml:"sync_interval,omitempty"`
	RequestTimeout   string `toml:"request_timeout,omitempty"`
	Verbose          bool   `toml:"verbose,omitempty"`
}

// SettingsStore loads and persists domain.Settings as a TOML file.
type SettingsStore struct {
	mu       sync.RWMutex
	filePath string
}

// NewSettingsStore creates a settings store rooted at configDir.
// If configDir is empty, defaults to ~/.engagekit.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".engagekit")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &SettingsStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads settings from disk, applying defaults to unset fields.
// A missing file yields default settings and no error.
func (s *SettingsStore) Load() (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Settings{}.WithDefaults(), nil
		}
		return domain.Settings{}, fmt.Errorf("reading settings file: %w", err)
	}

	var raw settingsFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return domain.Settings{}, fmt.Errorf("parsing settings file: %w", err)
	}

	settings := domain.Settings{
		Endpoint:         raw.Endpoint,
		AccountToken:     raw.AccountToken,
		PageSize:         raw.PageSize,
		MaxNotifications: raw.MaxNotifications,
		Verbose:          raw.Verbose,
	}

	if raw.SyncInterval != "" {
		interval, err := time.ParseDuration(raw.SyncInterval)
		if err != nil {
			return domain.Settings{}, fmt.Errorf("parsing sync_interval: %w", err)
		}
		settings.SyncInterval = interval
	}
	if raw.RequestTimeout != "" {
		timeout, err := time.ParseDuration(raw.RequestTimeout)
		if err != nil {
			return domain.Settings{}, fmt.Errorf("parsing request_timeout: %w", err)
		}
		settings.RequestTimeout = timeout
	}

	return settings.WithDefaults(), nil
}

// Save persists settings to disk with restricted permissions.
func (s *SettingsStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := settingsFile{
		Endpoint:         settings.Endpoint,
		AccountToken:     settings.AccountToken,
		PageSize:         settings.PageSize,
		MaxNotifications: settings.MaxNotifications,
		Verbose:          settings.Verbose,
	}
	if settings.SyncInterval > 0 {
		raw.SyncInterval = settings.SyncInterval.String()
	}
	if settings.RequestTimeout > 0 {
		raw.RequestTimeout = settings.RequestTimeout.String()
	}

	data, err := toml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshalling settings: %w", err)
	}

	// Token lives in this file
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}
