package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

// Campaign statuses.
const (
	CampaignStatusDraft     CampaignStatus = "DRAFT"
	CampaignStatusPublished CampaignStatus = "PUBLISHED"
	CampaignStatusArchived  CampaignStatus = "ARCHIVED"
)

// Campaign is a server-authored engagement campaign. Trigger and
// Predicate arrive from the backend as polymorphic objects discriminated
// by a __typename field; they are modelled as closed tagged unions with
// exhaustive decoding.
type Campaign struct {
	ID        string
	Name      string
	Status    CampaignStatus
	Trigger   Trigger
	Predicate Predicate
	UpdatedAt time.Time
}

// campaignJSON is the wire shape of a campaign.
type campaignJSON struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Status    CampaignStatus  `json:"status"`
	Trigger   json.RawMessage `json:"trigger,omitempty"`
	Predicate json.RawMessage `json:"predicate,omitempty"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// UnmarshalJSON decodes a campaign including its tagged-union fields.
func (c *Campaign) UnmarshalJSON(data []byte) error {
	var raw campaignJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.ID = raw.ID
	c.Name = raw.Name
	c.Status = raw.Status
	c.UpdatedAt = raw.UpdatedAt

	if len(raw.Trigger) > 0 && string(raw.Trigger) != "null" {
		trigger, err := UnmarshalTrigger(raw.Trigger)
		if err != nil {
			return fmt.Errorf("campaign %s trigger: %w", raw.ID, err)
		}
		c.Trigger = trigger
	}

	if len(raw.Predicate) > 0 && string(raw.Predicate) != "null" {
		predicate, err := UnmarshalPredicate(raw.Predicate)
		if err != nil {
			return fmt.Errorf("campaign %s predicate: %w", raw.ID, err)
		}
		c.Predicate = predicate
	}

	return nil
}

// MarshalJSON encodes a campaign including its tagged-union fields.
func (c Campaign) MarshalJSON() ([]byte, error) {
	raw := campaignJSON{
		ID:        c.ID,
		Name:      c.Name,
		Status:    c.Status,
		UpdatedAt: c.UpdatedAt,
	}

	if c.Trigger != nil {
		data, err := MarshalTrigger(c.Trigger)
		if err != nil {
			return nil, err
		}
		raw.Trigger = data
	}

	if c.Predicate != nil {
		data, err := MarshalPredicate(c.Predicate)
		if err != nil {
			return nil, err
		}
		raw.Predicate = data
	}

	return json.Marshal(raw)
}
