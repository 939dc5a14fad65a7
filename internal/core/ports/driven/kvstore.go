package driven

// KeyValueStore is durable string/integer key-value storage, the
// app-preferences analogue. Sync cursors and the mirrored unread count
// live here under stable namespaced keys.
type KeyValueStore interface {
	// GetString retrieves a string value by key.
	// Returns the value and whether the key exists.
	GetString(key string) (string, bool)

	// SetString stores a string value. Persisted immediately.
	SetString(key, value string) error

	// GetInt retrieves an integer value by key.
	GetInt(key string) (int, bool)

	// SetInt stores an integer value. Persisted immediately.
	SetInt(key string, value int) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key string) error
}
