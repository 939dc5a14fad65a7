package domain

import "time"

// Default settings values.
const (
	DefaultPageSize         = 50
	DefaultMaxNotifications = 500
	DefaultSyncInterval     = 15 * time.Minute
	DefaultRequestTimeout   = 30 * time.Second
)

// Settings holds the SDK configuration supplied by the embedding
// application, normally loaded from the TOML settings file.
type Settings struct {
	// Endpoint is the GraphQL backend URL.
	Endpoint string

	// AccountToken authenticates every request as a bearer token.
	AccountToken string

	// PageSize is how many records each participant requests per page.
	PageSize int

	// MaxNotifications bounds the local notification collection.
	MaxNotifications int

	// SyncInterval is how often the scheduler triggers a background pass.
	SyncInterval time.Duration

	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration

	// Verbose enables diagnostic logging.
	Verbose bool
}

// WithDefaults fills zero-valued fields with defaults.
func (s Settings) WithDefaults() Settings {
	if s.PageSize <= 0 {
		s.PageSize = DefaultPageSize
	}
	if s.MaxNotifications <= 0 {
		s.MaxNotifications = DefaultMaxNotifications
	}
	if s.SyncInterval <= 0 {
		s.SyncInterval = DefaultSyncInterval
	}
	if s.RequestTimeout <= 0 {
		s.RequestTimeout = DefaultRequestTimeout
	}
	return s
}
