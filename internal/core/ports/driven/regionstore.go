package driven

import (
	"context"

	"github.com/lumen-labs/engagekit/internal/core/domain"
)

// GeofenceStore persists the monitored geofence regions.
type GeofenceStore interface {
	// UpsertBatch inserts or replaces a batch of geofences in one
	// transaction.
	UpsertBatch(ctx context.Context, geofences []domain.Geofence) error

	// List returns all stored geofences.
	List(ctx context.Context) ([]domain.Geofence, error)

	// DeleteByIDs removes geofences by ID. Missing IDs are ignored.
	DeleteByIDs(ctx context.Context, ids []string) error
}

// BeaconStore persists the monitored beacon regions.
type BeaconStore interface {
	// UpsertBatch inserts or replaces a batch of beacons in one
	// transaction.
	UpsertBatch(ctx context.Context, beacons []domain.Beacon) error

	// List returns all stored beacons.
	List(ctx context.Context) ([]domain.Beacon, error)

	// DeleteByIDs removes beacons by ID. Missing IDs are ignored.
	DeleteByIDs(ctx context.Context, ids []string) error
}
