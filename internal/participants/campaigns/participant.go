// Package campaigns syncs server-authored campaigns, including their
// tagged-union triggers and targeting predicates, into local storage.
package campaigns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lumen-labs/engagekit/internal/cache"
	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
)

// CursorKey is the durable-storage key for the resume cursor.
const CursorKey = "sync.campaignsCursor"

const participantName = "campaigns"

const pageInfoFragment = `fragment pageInfoFields on PageInfo { endCursor hasNextPage }`

const campaignsQuery = `query Campaigns($first:Int, $after:String, $orderBy:CampaignOrder) {
	campaigns(first:$first, after:$after, orderBy:$orderBy) {
		nodes {
			id
			name
			status
			trigger { __typename ... on ScheduledCampaignTrigger { startsAt endsAt } ... on AutomatedCampaignTrigger { eventName filter } }
			predicate { __typename }
			updatedAt
		}
		pageInfo { ...pageInfoFields }
	}
}`

// Ensure Participant implements the interface.
var _ driven.SyncParticipant = (*Participant)(nil)

// Participant pages the campaigns query and upserts changed campaigns.
// A freshness cache keyed by campaign ID skips storage writes for
// campaigns whose updatedAt has not moved since the last pass.
type Participant struct {
	store     driven.CampaignStore
	freshness *cache.LRU
	pageSize  int
}

// New creates the campaigns participant with its freshness cache.
func New(store driven.CampaignStore, freshness *cache.LRU, pageSize int) *Participant {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	return &Participant{store: store, freshness: freshness, pageSize: pageSize}
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
	return domain.NewSyncRequest(campaignsQuery, variables, pageInfoFragment)
}

// ProcessPage decodes one page, including the union variants, and
// upserts campaigns the freshness cache does not already know.
func (p *Participant) ProcessPage(ctx context.Context, data json.RawMessage) (driven.PageResult, error) {
	var page struct {
		Campaigns struct {
			Nodes    []domain.Campaign `json:"nodes"`
			PageInfo *domain.PageInfo  `json:"pageInfo"`
		} `json:"campaigns"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return driven.PageResult{}, fmt.Errorf("decode campaigns page: %w", err)
	}
	if page.Campaigns.PageInfo == nil {
		return driven.PageResult{}, domain.ErrMissingPageInfo
	}

	result := driven.PageResult{PageInfo: page.Campaigns.PageInfo}

	stale := make([]domain.Campaign, 0, len(page.Campaigns.Nodes))
	for _, campaign := range page.Campaigns.Nodes {
		if p.isFresh(campaign) {
			continue
		}
		stale = append(stale, campaign)
	}
	if len(stale) == 0 {
		return result, nil
	}

	if err := p.store.UpsertBatch(ctx, stale); err != nil {
		return driven.PageResult{}, fmt.Errorf("merge campaigns: %w", err)
	}
	for _, campaign := range stale {
		p.remember(campaign)
	}

	result.Changed = true
	return result, nil
}

// isFresh reports whether the cache already holds this exact revision.
func (p *Participant) isFresh(campaign domain.Campaign) bool {
	if p.freshness == nil {
		return false
	}
	seen, ok := p.freshness.Get(campaign.ID)
	return ok && seen == campaign.UpdatedAt.UTC().String()
}

// remember records the campaign revision after a successful upsert.
func (p *Participant) remember(campaign domain.Campaign) {
	if p.freshness == nil {
		return
	}
	p.freshness.Set(campaign.ID, campaign.UpdatedAt.UTC().String())
}
