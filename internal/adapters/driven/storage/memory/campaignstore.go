package memory

import (
	"context"
	"sync"

	"github.com/lumen-labs/engagekit/internal/core/domain"
	"github.com/lumen-labs/engagekit/internal/core/ports/driven"
)

// Ensure CampaignStore implements the interface.
var _ driven.CampaignStore = (*CampaignStore)(nil)

// CampaignStore is an in-memory implementation of driven.CampaignStore.
type CampaignStore struct {
	mu        sync.RWMutex
	campaigns map[string]domain.Campaign
}

// NewCampaignStore creates an empty in-memory campaign store.
func NewCampaignStore() *CampaignStore {
	return &CampaignStore{campaigns: make(map[string]domain.Campaign)}
}

// UpsertBatch inserts or replaces a batch of campaigns.
func (s *CampaignStore) UpsertBatch(_ context.Context, campaigns []domain.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range campaigns {
		s.campaigns[c.ID] = c
	}
	return nil
}

// Get retrieves a campaign by ID.
func (s *CampaignStore) Get(_ context.Context, id string) (*domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	campaign, ok := s.campaigns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &campaign, nil
}

// List returns all stored campaigns.
func (s *CampaignStore) List(_ context.Context) ([]domain.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	campaigns := make([]domain.Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		campaigns = append(campaigns, c)
	}
	return campaigns, nil
}

// DeleteByIDs removes campaigns by ID.
func (s *CampaignStore) DeleteByIDs(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.campaigns, id)
	}
	return nil
}
