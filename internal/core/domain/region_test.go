package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGeofencesEqual_OrderInsensitive(t *testing.T) {
	now := time.Now()
	a := []Geofence{
		{ID: "g1", Latitude: 43.65, Longitude: -79.38, Radius: 100, UpdatedAt: now},
		{ID: "g2", Latitude: 45.50, Longitude: -73.57, Radius: 200, UpdatedAt: now},
	}
	b := []Geofence{a[1], a[0]}

	assert.True(t, GeofencesEqual(a, b))
}

func TestGeofencesEqual_DetectsFieldChange(t *testing.T) {
	now := time.Now()
	a := []Geofence{{ID: "g1", Latitude: 43.65, Longitude: -79.38, Radius: 100, UpdatedAt: now}}
	b := []Geofence{{ID: "g1", Latitude: 43.65, Longitude: -79.38, Radius: 150, UpdatedAt: now}}

	assert.False(t, GeofencesEqual(a, b))
}

func TestGeofencesEqual_LengthMismatch(t *testing.T) {
	now := time.Now()
	a := []Geofence{{ID: "g1", UpdatedAt: now}}

	assert.False(t, GeofencesEqual(a, nil))
	assert.True(t, GeofencesEqual(nil, nil))
}

func TestGeofencesEqual_ComparesTags(t *testing.T) {
	now := time.Now()
	a := []Geofence{{ID: "g1", Tags: []string{"store"}, UpdatedAt: now}}
	b := []Geofence{{ID: "g1", Tags: []string{"store", "downtown"}, UpdatedAt: now}}

	assert.False(t, GeofencesEqual(a, b))
}

func TestBeaconsEqual_OrderInsensitive(t *testing.T) {
	now := time.Now()
	a := []Beacon{
		{ID: "b1", UUID: "uuid-1", Major: 1, Minor: 10, UpdatedAt: now},
		{ID: "b2", UUID: "uuid-2", Major: 2, Minor: 20, UpdatedAt: now},
	}
	b := []Beacon{a[1], a[0]}

	assert.True(t, BeaconsEqual(a, b))
}

func TestBeaconsEqual_DetectsFieldChange(t *testing.T) {
	now := time.Now()
	a := []Beacon{{ID: "b1", UUID: "uuid-1", Major: 1, Minor: 10, UpdatedAt: now}}
	b := []Beacon{{ID: "b1", UUID: "uuid-1", Major: 1, Minor: 11, UpdatedAt: now}}

	assert.False(t, BeaconsEqual(a, b))
}
