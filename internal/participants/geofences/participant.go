// Package geofences syncs the monitored geofence regions from the
// backend into local region storage.
package geofences

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
)

// CursorKey is the durable-storage key for the resume cursor.
const CursorKey = "sync.geofencesCursor"

const participantName = "geofences"

const pageInfoFragment = `fragment pageInfoFields on PageInfo { endCursor hasNextPage }`

const geofencesQuery = `query Geofences($first:Int, $after:String, $orderBy:GeofenceOrder) {
	geofences(first:$first, after:$after, orderBy:$orderBy) {
		nodes {
			id
			latitude
			longitude
			radius
			tags
			updatedAt
		}
		pageInfo { ...pageInfoFields }
	}
}`

// Ensure Participant implements the interface.
var _ driven.SyncParticipant = (*Participant)(nil)

// Participant pages the geofences query oldest-update-first and upserts
// each page. A page whose nodes already match stored state writes
// nothing, so an unchanged server collection terminates as "no data".
type Participant struct {
	store    driven.GeofenceStore
	pageSize int
}

// New creates the geofences participant.
func New(store driven.GeofenceStore, pageSize int) *Participant {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &Participant{store: store, pageSize: pageSize}
}

// Name identifies the participant.
func (p *Participant) Name() string { return participantName }

// CursorKey returns the participant's durable cursor key.
func (p *Participant) CursorKey() string { return CursorKey }

// NextRequest builds the next page query.
func (p *Participant) NextRequest(cursor string) domain.SyncRequest {
	variables := map[string]any{
		"first": p.pageSize,
		"orderBy": map[string]any{
			"field":     "UPDATED_AT",
			"direction": "ASC",
		},
	}
	if cursor != "" {
		variables["after"] = cursor
	}
	return domain.NewSyncRequest(geofencesQuery, variables, pageInfoFragment)
}

// ProcessPage decodes one page and upserts nodes that differ from
// stored state.
func (p *Participant) ProcessPage(ctx context.Context, data json.RawMessage) (driven.PageResult, error) {
	var page struct {
		Geofences struct {
			Nodes    []domain.Geofence `json:"nodes"`
			PageInfo *domain.PageInfo  `json:"pageInfo"`
		} `json:"geofences"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return driven.PageResult{}, fmt.Errorf("decode geofences page: %w", err)
	}
	if page.Geofences.PageInfo == nil {
		return driven.PageResult{}, domain.ErrMissingPageInfo
	}

	result := driven.PageResult{PageInfo: page.Geofences.PageInfo}
	if len(page.Geofences.Nodes) == 0 {
		return result, nil
	}

	stored, err := p.store.List(ctx)
	if err != nil {
		return driven.PageResult{}, fmt.Errorf("list geofences: %w", err)
	}
	if allStored(stored, page.Geofences.Nodes) {
		return result, nil
	}

	if err := p.store.UpsertBatch(ctx, page.Geofences.Nodes); err != nil {
		return driven.PageResult{}, fmt.Errorf("merge geofences: %w", err)
	}
	result.Changed = true
	return result, nil
}

// allStored reports whether every node already exists in stored state
// with identical fields. Comparison is by ID, order-insensitive.
func allStored(stored, nodes []domain.Geofence) bool {
	if len(stored) < len(nodes) {
		return false
	}
	subset := make([]domain.Geofence, 0, len(nodes))
	byID := make(map[string]domain.Geofence, len(stored))
	for _, g := range stored {
		byID[g.ID] = g
	}
	for _, n := range nodes {
		existing, ok := byID[n.ID]
		if !ok {
			return false
		}
		subset = append(subset, existing)
	}
	return domain.GeofencesEqual(subset, nodes)
}
