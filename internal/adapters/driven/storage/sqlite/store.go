package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lumen-labs/engagekit/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a unified SQLite-based storage that provides access to
// all persistent store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.engagekit/data/state.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".engagekit", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "state.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// GeofenceStore returns a GeofenceStore interface backed by this store.
func (s *Store) GeofenceStore() driven.GeofenceStore {
	return &geofenceStore{store: s}
}

// BeaconStore returns a BeaconStore interface backed by this store.
func (s *Store) BeaconStore() driven.BeaconStore {
	return &beaconStore{store: s}
}

// CampaignStore returns a CampaignStore interface backed by this store.
func (s *Store) CampaignStore() driven.CampaignStore {
	return &campaignStore{store: s}
}

// SchedulerStore returns a SchedulerStore interface backed by this store.
func (s *Store) SchedulerStore() driven.SchedulerStore {
	return &schedulerStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Geofence Store ====================

// geofenceStore implements driven.GeofenceStore.
type geofenceStore struct {
	store *Store
}

var _ driven.GeofenceStore = (*geofenceStore)(nil)

// UpsertBatch inserts or replaces a batch of geofences in one transaction.
func (s *geofenceStore) UpsertBatch(ctx context.Context, geofences []domain.Geofence) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO geofences (id, latitude, longitude, radius, tags, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			radius = excluded.radius,
			tags = excluded.tags,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, g := range geofences {
		tagsJSON, err := json.Marshal(g.Tags)
		if err != nil {
			return fmt.Errorf("marshalling tags: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, g.ID, g.Latitude, g.Longitude, g.Radius,
			string(tagsJSON), g.UpdatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("saving geofence: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// List returns all stored geofences.
func (s *geofenceStore) List(ctx context.Context) ([]domain.Geofence, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, latitude, longitude, radius, tags, updated_at
		FROM geofences
	`)
	if err != nil {
		return nil, fmt.Errorf("querying geofences: %w", err)
	}
	defer rows.Close()

	var geofences []domain.Geofence //nolint:prealloc // size unknown from query
	for rows.Next() {
		var g domain.Geofence
		var tagsJSON sql.NullString
		var updatedAt string
		if err := rows.Scan(&g.ID, &g.Latitude, &g.Longitude, &g.Radius,
			&tagsJSON, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning geofence: %w", err)
		}

		if tagsJSON.Valid && tagsJSON.String != jsonNull {
			if err := json.Unmarshal([]byte(tagsJSON.String), &g.Tags); err != nil {
				return nil, fmt.Errorf("unmarshalling tags: %w", err)
			}
		}
		g.UpdatedAt = parseTimestamp(updatedAt)

		geofences = append(geofences, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating geofences: %w", err)
	}

	return geofences, nil
}

// DeleteByIDs removes geofences by ID.
func (s *geofenceStore) DeleteByIDs(ctx context.Context, ids []string) error {
	return deleteByIDs(ctx, s.store.db, "geofences", ids)
}

// ==================== Beacon Store ====================

// beaconStore implements driven.BeaconStore.
type beaconStore struct {
	store *Store
}

var _ driven.BeaconStore = (*beaconStore)(nil)

// UpsertBatch inserts or replaces a batch of beacons in one transaction.
func (s *beaconStore) UpsertBatch(ctx context.Context, beacons []domain.Beacon) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO beacons (id, uuid, major, minor, tags, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			uuid = excluded.uuid,
			major = excluded.major,
			minor = excluded.minor,
			tags = excluded.tags,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, b := range beacons {
		tagsJSON, err := json.Marshal(b.Tags)
		if err != nil {
			return fmt.Errorf("marshalling tags: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, b.ID, b.UUID, b.Major, b.Minor,
			string(tagsJSON), b.UpdatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("saving beacon: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// List returns all stored beacons.
func (s *beaconStore) List(ctx context.Context) ([]domain.Beacon, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, uuid, major, minor, tags, updated_at
		FROM beacons
	`)
	if err != nil {
		return nil, fmt.Errorf("querying beacons: %w", err)
	}
	defer rows.Close()

	var beacons []domain.Beacon //nolint:prealloc // size unknown from query
	for rows.Next() {
		var b domain.Beacon
		var tagsJSON sql.NullString
		var updatedAt string
		if err := rows.Scan(&b.ID, &b.UUID, &b.Major, &b.Minor,
			&tagsJSON, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning beacon: %w", err)
		}

		if tagsJSON.Valid && tagsJSON.String != jsonNull {
			if err := json.Unmarshal([]byte(tagsJSON.String), &b.Tags); err != nil {
				return nil, fmt.Errorf("unmarshalling tags: %w", err)
			}
		}
		b.UpdatedAt = parseTimestamp(updatedAt)

		beacons = append(beacons, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating beacons: %w", err)
	}

	return beacons, nil
}

// DeleteByIDs removes beacons by ID.
func (s *beaconStore) DeleteByIDs(ctx context.Context, ids []string) error {
	return deleteByIDs(ctx, s.store.db, "beacons", ids)
}

// ==================== Campaign Store ====================

// campaignStore implements driven.CampaignStore.
type campaignStore struct {
	store *Store
}

var _ driven.CampaignStore = (*campaignStore)(nil)

// UpsertBatch inserts or replaces a batch of campaigns in one transaction.
// Trigger and predicate trees are stored as their wire-format JSON.
func (s *campaignStore) UpsertBatch(ctx context.Context, campaigns []domain.Campaign) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO campaigns (id, name, status, trigger, predicate, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			trigger = excluded.trigger,
			predicate = excluded.predicate,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range campaigns {
		var triggerJSON, predicateJSON interface{}
		if c.Trigger != nil {
			data, err := domain.MarshalTrigger(c.Trigger)
			if err != nil {
				return fmt.Errorf("marshalling trigger: %w", err)
			}
			triggerJSON = string(data)
		}
		if c.Predicate != nil {
			data, err := domain.MarshalPredicate(c.Predicate)
			if err != nil {
				return fmt.Errorf("marshalling predicate: %w", err)
			}
			predicateJSON = string(data)
		}

		if _, err := stmt.ExecContext(ctx, c.ID, c.Name, string(c.Status),
			triggerJSON, predicateJSON, c.UpdatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("saving campaign: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get retrieves a campaign by ID.
func (s *campaignStore) Get(ctx context.Context, id string) (*domain.Campaign, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, status, trigger, predicate, updated_at
		FROM campaigns WHERE id = ?
	`, id)

	var c domain.Campaign
	var status, updatedAt string
	var triggerJSON, predicateJSON sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &status, &triggerJSON, &predicateJSON, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning campaign: %w", err)
	}

	if err := hydrateCampaign(&c, status, triggerJSON, predicateJSON, updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all stored campaigns.
func (s *campaignStore) List(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, status, trigger, predicate, updated_at
		FROM campaigns
	`)
	if err != nil {
		return nil, fmt.Errorf("querying campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []domain.Campaign //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.Campaign
		var status, updatedAt string
		var triggerJSON, predicateJSON sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &status, &triggerJSON, &predicateJSON, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning campaign: %w", err)
		}

		if err := hydrateCampaign(&c, status, triggerJSON, predicateJSON, updatedAt); err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating campaigns: %w", err)
	}

	return campaigns, nil
}

// DeleteByIDs removes campaigns by ID.
func (s *campaignStore) DeleteByIDs(ctx context.Context, ids []string) error {
	return deleteByIDs(ctx, s.store.db, "campaigns", ids)
}

// hydrateCampaign fills the decoded fields of a scanned campaign row.
func hydrateCampaign(c *domain.Campaign, status string, triggerJSON, predicateJSON sql.NullString, updatedAt string) error {
	c.Status = domain.CampaignStatus(status)
	c.UpdatedAt = parseTimestamp(updatedAt)

	if triggerJSON.Valid && triggerJSON.String != jsonNull {
		trigger, err := domain.UnmarshalTrigger([]byte(triggerJSON.String))
		if err != nil {
			return fmt.Errorf("unmarshalling trigger for campaign %s: %w", c.ID, err)
		}
		c.Trigger = trigger
	}

	if predicateJSON.Valid && predicateJSON.String != jsonNull {
		predicate, err := domain.UnmarshalPredicate([]byte(predicateJSON.String))
		if err != nil {
			return fmt.Errorf("unmarshalling predicate for campaign %s: %w", c.ID, err)
		}
		c.Predicate = predicate
	}

	return nil
}

// ==================== Helper Functions ====================

// deleteByIDs removes rows from a table by primary key, in one transaction.
func deleteByIDs(ctx context.Context, db *sql.DB, table string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM "+table+" WHERE id = ?")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("deleting from %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// parseTimestamp parses an RFC3339 timestamp string.
// Returns zero time if the string is empty or invalid.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
