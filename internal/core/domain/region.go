package domain

import "time"

// Geofence is a circular geographic region monitored by the host app.
type Geofence struct {
	ID        string    `json:"id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Radius    float64   `json:"radius"`
	Tags      []string  `json:"tags,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Beacon is a Bluetooth beacon region monitored by the host app.
type Beacon struct {
	ID        string    `json:"id"`
	UUID      string    `json:"uuid"`
	Major     int       `json:"major"`
	Minor     int       `json:"minor"`
	Tags      []string  `json:"tags,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GeofencesEqual reports whether two geofence collections hold the same
// records. Comparison is by ID→record map, so ordering differences alone
// never register as a change.
func GeofencesEqual(a, b []Geofence) bool {
	if len(a) != len(b) {
		return false
	}
	byID := make(map[string]Geofence, len(a))
	for _, g := range a {
		byID[g.ID] = g
	}
	for _, g := range b {
		other, ok := byID[g.ID]
		if !ok || !geofenceEqual(g, other) {
			return false
		}
	}
	return true
}

// BeaconsEqual reports whether two beacon collections hold the same
// records, ignoring order.
func BeaconsEqual(a, b []Beacon) bool {
	if len(a) != len(b) {
		return false
	}
	byID := make(map[string]Beacon, len(a))
	for _, bc := range a {
		byID[bc.ID] = bc
	}
	for _, bc := range b {
		other, ok := byID[bc.ID]
		if !ok || !beaconEqual(bc, other) {
			return false
		}
	}
	return true
}

func geofenceEqual(a, b Geofence) bool {
	return a.ID == b.ID &&
		a.Latitude == b.Latitude &&
		a.Longitude == b.Longitude &&
		a.Radius == b.Radius &&
		a.UpdatedAt.Equal(b.UpdatedAt) &&
		stringSlicesEqual(a.Tags, b.Tags)
}

func beaconEqual(a, b Beacon) bool {
	return a.ID == b.ID &&
		a.UUID == b.UUID &&
		a.Major == b.Major &&
		a.Minor == b.Minor &&
		a.UpdatedAt.Equal(b.UpdatedAt) &&
		stringSlicesEqual(a.Tags, b.Tags)
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
