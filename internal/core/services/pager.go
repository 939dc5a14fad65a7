package services

import (
	"context"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
	"github.com/lumen-labs/engagekit/internal/logger"
)

// Pager walks one participant's paginated query from its persisted
// cursor to exhaustion. The cursor is written only after a page's data
// has been successfully merged, and cleared once pagination is
// exhausted so the next pass re-syncs the collection from page one.
type Pager struct {
	transport driven.GraphQLClient
	kv        driven.KeyValueStore
}

// NewPager creates a pager over the given transport and cursor storage.
func NewPager(transport driven.GraphQLClient, kv driven.KeyValueStore) *Pager {
	return &Pager{transport: transport, kv: kv}
}

// Run pages the participant to its terminal result for this pass.
func (p *Pager) Run(ctx context.Context, participant driven.SyncParticipant) domain.SyncResult {
	cursor, _ := p.kv.GetString(participant.CursorKey())
	merged := false

	for {
		req := participant.NextRequest(cursor)

		data, err := p.transport.Query(ctx, req)
		if err != nil {
			logger.Warn("%s: page fetch failed: %v", participant.Name(), err)
			return domain.SyncResultFailed
		}

		page, err := participant.ProcessPage(ctx, data)
		if err != nil {
			logger.Warn("%s: page processing failed: %v", participant.Name(), err)
			return domain.SyncResultFailed
		}
		if page.PageInfo == nil {
			logger.Warn("%s: page missing pagination info", participant.Name())
			return domain.SyncResultFailed
		}

		if !page.Changed {
			// Server state matches the store; nothing was written and
			// the cursor stays where the last merge left it.
			if merged {
				return domain.SyncResultNewData
			}
			return domain.SyncResultNoData
		}
		merged = true

		if !page.PageInfo.HasNextPage {
			// Exhausted. No cursor survives a completed collection:
			// the next pass starts over from page one.
			if err := p.kv.Delete(participant.CursorKey()); err != nil {
				logger.Warn("%s: clearing cursor: %v", participant.Name(), err)
			}
			return domain.SyncResultNewData
		}

		cursor = page.PageInfo.EndCursor
		if err := p.kv.SetString(participant.CursorKey(), cursor); err != nil {
			// Non-fatal: the page is merged and merge is idempotent,
			// so an unrecorded cursor only means a re-fetch next pass.
			logger.Warn("%s: persisting cursor: %v", participant.Name(), err)
		}
		logger.Debug("%s: advancing to cursor %q", participant.Name(), cursor)
	}
}
