// Package beacons syncs the monitored Bluetooth beacon regions from the
// backend into local region storage.
package beacons

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
)

// CursorKey is the durable-storage key for the resume cursor.
const CursorKey = "sync.beaconsCursor"

const participantName = "beacons"

const pageInfoFragment = `fragment pageInfoFields on PageInfo { endCursor hasNextPage }`

const beaconsQuery = `query Beacons($first:Int, $after:String, $orderBy:BeaconOrder) {
	beacons(first:$first, after:$after, orderBy:$orderBy) {
		nodes {
			id
			uuid
			major
			minor
			tags
			updatedAt
		}
		pageInfo { ...pageInfoFields }
	}
}`

// Ensure Participant implements the interface.
var _ driven.SyncParticipant = (*Participant)(nil)

// Participant pages the beacons query and upserts pages that differ
// from stored state, mirroring the geofences participant.
type Participant struct {
	store    driven.BeaconStore
	pageSize int
}

// New creates the beacons participant.
func New(store driven.BeaconStore, pageSize int) *Participant {
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
	return domain.NewSyncRequest(beaconsQuery, variables, pageInfoFragment)
}

// ProcessPage decodes one page and upserts nodes that differ from
// stored state.
func (p *Participant) ProcessPage(ctx context.Context, data json.RawMessage) (driven.PageResult, error) {
	var page struct {
		Beacons struct {
			Nodes    []domain.Beacon  `json:"nodes"`
			PageInfo *domain.PageInfo `json:"pageInfo"`
		} `json:"beacons"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return driven.PageResult{}, fmt.Errorf("decode beacons page: %w", err)
	}
	if page.Beacons.PageInfo == nil {
		return driven.PageResult{}, domain.ErrMissingPageInfo
	}

	result := driven.PageResult{PageInfo: page.Beacons.PageInfo}
	if len(page.Beacons.Nodes) == 0 {
		return result, nil
	}

	stored, err := p.store.List(ctx)
	if err != nil {
		return driven.PageResult{}, fmt.Errorf("list beacons: %w", err)
	}
	if allStored(stored, page.Beacons.Nodes) {
		return result, nil
	}

	if err := p.store.UpsertBatch(ctx, page.Beacons.Nodes); err != nil {
		return driven.PageResult{}, fmt.Errorf("merge beacons: %w", err)
	}
	result.Changed = true
	return result, nil
}

// allStored reports whether every node already exists in stored state
// with identical fields.
func allStored(stored, nodes []domain.Beacon) bool {
	if len(stored) < len(nodes) {
		return false
	}
	subset := make([]domain.Beacon, 0, len(nodes))
	byID := make(map[string]domain.Beacon, len(stored))
	for _, b := range stored {
		byID[b.ID] = b
	}
	for _, n := range nodes {
		existing, ok := byID[n.ID]
		if !ok {
			return false
		}
		subset = append(subset, existing)
	}
	return domain.BeaconsEqual(subset, nodes)
}
