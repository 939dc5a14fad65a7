package driven

import (
	"context"

	"github.com/lumen-labs/engagekit/internal/core/domain"
)

// CampaignStore persists server-authored campaigns.
type CampaignStore interface {
	// UpsertBatch inserts or replaces a batch of campaigns in one
	// transaction.
	UpsertBatch(ctx context.Context, campaigns []domain.Campaign) error

	// Get retrieves a campaign by ID.
	Get(ctx context.Context, id string) (*domain.Campaign, error)

	// List returns all stored campaigns.
	List(ctx context.Context) ([]domain.Campaign, error)

	// DeleteByIDs removes campaigns by ID. Missing IDs are ignored.
	DeleteByIDs(ctx context.Context, ids []string) error
}
