package memory

import (
	"context"
	"sync"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
)

// Ensure the stores implement their interfaces.
var (
	_ driven.GeofenceStore = (*GeofenceStore)(nil)
	_ driven.BeaconStore   = (*BeaconStore)(nil)
)

// GeofenceStore is an in-memory implementation of driven.GeofenceStore.
type GeofenceStore struct {
	mu        sync.RWMutex
	geofences map[string]domain.Geofence
}

// NewGeofenceStore creates an empty in-memory geofence store.
func NewGeofenceStore() *GeofenceStore {
	return &GeofenceStore{geofences: make(map[string]domain.Geofence)}
}

// UpsertBatch inserts or replaces a batch of geofences.
func (s *GeofenceStore) UpsertBatch(_ context.Context, geofences []domain.Geofence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range geofences {
		s.geofences[g.ID] = g
	}
	return nil
}

// List returns all stored geofences.
func (s *GeofenceStore) List(_ context.Context) ([]domain.Geofence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	geofences := make([]domain.Geofence, 0, len(s.geofences))
	for _, g := range s.geofences {
		geofences = append(geofences, g)
	}
	return geofences, nil
}

// DeleteByIDs removes geofences by ID.
func (s *GeofenceStore) DeleteByIDs(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.geofences, id)
	}
	return nil
}

// BeaconStore is an in-memory implementation of driven.BeaconStore.
type BeaconStore struct {
	mu      sync.RWMutex
	beacons map[string]domain.Beacon
}

// NewBeaconStore creates an empty in-memory beacon store.
func NewBeaconStore() *BeaconStore {
	return &BeaconStore{beacons: make(map[string]domain.Beacon)}
}

// UpsertBatch inserts or replaces a batch of beacons.
func (s *BeaconStore) UpsertBatch(_ context.Context, beacons []domain.Beacon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range beacons {
		s.beacons[b.ID] = b
	}
	return nil
}

// List returns all stored beacons.
func (s *BeaconStore) List(_ context.Context) ([]domain.Beacon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	beacons := make([]domain.Beacon, 0, len(s.beacons))
	for _, b := range s.beacons {
		beacons = append(beacons, b)
	}
	return beacons, nil
}

// DeleteByIDs removes beacons by ID.
func (s *BeaconStore) DeleteByIDs(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.beacons, id)
	}
	return nil
}
