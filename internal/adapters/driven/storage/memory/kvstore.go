// Package memory provides in-memory implementations of the driven
// storage ports, used in tests and as defaults before persistent
// storage is configured.
package memory

import (
	"sync"

	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
)

// Ensure KeyValueStore implements the interface.
var _ driven.KeyValueStore = (*KeyValueStore)(nil)

// KeyValueStore is an in-memory implementation of driven.KeyValueStore.
type KeyValueStore struct {
	mu      sync.RWMutex
	strings map[string]string
	ints    map[string]int
}

// NewKeyValueStore creates an empty in-memory key-value store.
func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{
		strings: make(map[string]string),
		ints:    make(map[string]int),
	}
}

// GetString retrieves a string value by key.
func (s *KeyValueStore) GetString(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.strings[key]
	return value, ok
}

// SetString stores a string value.
func (s *KeyValueStore) SetString(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings[key] = value
	return nil
}

// GetInt retrieves an integer value by key.
func (s *KeyValueStore) GetInt(key string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.ints[key]
	return value, ok
}

// SetInt stores an integer value.
func (s *KeyValueStore) SetInt(key string, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ints[key] = value
	return nil
}

// Delete removes a key from both namespaces.
func (s *KeyValueStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.strings, key)
	delete(s.ints, key)
	return nil
}
