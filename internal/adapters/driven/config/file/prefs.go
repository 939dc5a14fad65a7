package file

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
)

// Ensure PrefsStore implements the interface.
var _ driven.KeyValueStore = (*PrefsStore)(nil)

// PrefsStore is a TOML-file-backed implementation of
// driven.KeyValueStore. It holds small durable values such as sync
// cursors and the unread count, persisting on every write.
type PrefsStore struct {
	mu       sync.RWMutex
	filePath string
	strings  map[string]string
	ints     map[string]int
}

// prefsFile is the TOML shape of the preferences file.
type prefsFile struct {
	Strings map[string]string `toml:"strings,omitempty"`
	Ints    map[string]int    `toml:"ints,omitempty"`
}

// NewPrefsStore creates a prefs store rooted at configDir.
// If configDir is empty, defaults to ~/.engagekit.
func NewPrefsStore(configDir string) (*PrefsStore, error) {
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

	s := &PrefsStore{
		filePath: filepath.Join(configDir, "prefs.toml"),
		strings:  make(map[string]string),
		ints:     make(map[string]int),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

// GetString retrieves a string value by key.
func (s *PrefsStore) GetString(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.strings[key]
	return value, ok
}

// SetString stores a string value and persists immediately.
func (s *PrefsStore) SetString(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings[key] = value
	return s.save()
}

// GetInt retrieves an integer value by key.
func (s *PrefsStore) GetInt(key string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.ints[key]
	return value, ok
}

// SetInt stores an integer value and persists immediately.
func (s *PrefsStore) SetInt(key string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ints[key] = value
	return s.save()
}

// Delete removes a key from both namespaces and persists immediately.
func (s *PrefsStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.strings, key)
	delete(s.ints, key)
	return s.save()
}

// Path returns the preferences file path.
func (s *PrefsStore) Path() string {
	return s.filePath
}

// save writes preferences to the TOML file (caller must hold lock).
func (s *PrefsStore) save() error {
	data, err := toml.Marshal(prefsFile{Strings: s.strings, Ints: s.ints})
	if err != nil {
		return err
	}

	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// load reads preferences from the TOML file.
func (s *PrefsStore) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// No prefs file yet - that's fine, start empty
			return nil
		}
		return err
	}

	var loaded prefsFile
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}

	if loaded.Strings != nil {
		s.strings = loaded.Strings
	}
	if loaded.Ints != nil {
		s.ints = loaded.Ints
	}
	return nil
}
