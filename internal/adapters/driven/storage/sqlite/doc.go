// Package sqlite provides a unified SQLite-backed implementation of the
// persistent storage ports. A single database file holds geofences,
// beacons, campaigns, and scheduler state, with schema migrations
// embedded at compile time.
package sqlite
