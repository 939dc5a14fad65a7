package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalPredicate_Comparison(t *testing.T) {
	data := []byte(`{
		"__typename": "ComparisonPredicate",
		"attribute": "appVersion",
		"operator": "EQUALS",
		"value": "2.1.0"
	}`)

	p, err := UnmarshalPredicate(data)
	require.NoError(t, err)

	comparison, ok := p.(ComparisonPredicate)
	require.True(t, ok)
	assert.Equal(t, "appVersion", comparison.Attribute)
	assert.Equal(t, OperatorEquals, comparison.Operator)
	assert.Equal(t, "2.1.0", comparison.Value)
}

func TestUnmarshalPredicate_CompoundNested(t *testing.T) {
	data := []byte(`{
		"__typename": "CompoundPredicate",
		"logical": "ALL",
		"predicates": [
			{"__typename": "ComparisonPredicate", "attribute": "tags", "operator": "CONTAINS", "value": "vip"},
			{
				"__typename": "CompoundPredicate",
				"logical": "ANY",
				"predicates": [
					{"__typename": "ComparisonPredicate", "attribute": "city", "operator": "IS_SET"}
				]
			}
		]
	}`)

	p, err := UnmarshalPredicate(data)
	require.NoError(t, err)

	compound, ok := p.(CompoundPredicate)
	require.True(t, ok)
	assert.Equal(t, LogicalAll, compound.Logical)
	require.Len(t, compound.Predicates, 2)

	inner, ok := compound.Predicates[1].(CompoundPredicate)
	require.True(t, ok)
	assert.Equal(t, LogicalAny, inner.Logical)
	require.Len(t, inner.Predicates, 1)
}

func TestUnmarshalPredicate_UnknownTypename(t *testing.T) {
	data := []byte(`{"__typename": "MysteryPredicate"}`)

	_, err := UnmarshalPredicate(data)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTypename)
}

func TestUnmarshalPredicate_UnknownNestedTypename(t *testing.T) {
	data := []byte(`{
		"__typename": "CompoundPredicate",
		"logical": "ANY",
		"predicates": [{"__typename": "MysteryPredicate"}]
	}`)

	_, err := UnmarshalPredicate(data)
	assert.ErrorIs(t, err, ErrUnknownTypename)
}

func TestMarshalPredicate_RoundTrip(t *testing.T) {
	original := CompoundPredicate{
		Logical: LogicalAny,
		Predicates: []Predicate{
			ComparisonPredicate{Attribute: "osVersion", Operator: OperatorGreaterThan, Value: "16"},
			ComparisonPredicate{Attribute: "pushEnabled", Operator: OperatorIsSet},
		},
	}

	data, err := MarshalPredicate(original)
	require.NoError(t, err)

	decoded, err := UnmarshalPredicate(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestUnmarshalTrigger_Scheduled(t *testing.T) {
	data := []byte(`{
		"__typename": "ScheduledCampaignTrigger",
		"startsAt": "2026-09-01T00:00:00Z",
		"endsAt": "2026-09-08T00:00:00Z"
	}`)

	trigger, err := UnmarshalTrigger(data)
	require.NoError(t, err)

	scheduled, ok := trigger.(ScheduledTrigger)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), scheduled.StartsAt)
	assert.Equal(t, time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC), scheduled.EndsAt)
}

func TestUnmarshalTrigger_AutomatedWithFilter(t *testing.T) {
	data := []byte(`{
		"__typename": "AutomatedCampaignTrigger",
		"eventName": "Screen Viewed",
		"filter": {"__typename": "ComparisonPredicate", "attribute": "screen", "operator": "EQUALS", "value": "home"}
	}`)

	trigger, err := UnmarshalTrigger(data)
	require.NoError(t, err)

	automated, ok := trigger.(AutomatedTrigger)
	require.True(t, ok)
	assert.Equal(t, "Screen Viewed", automated.EventName)
	require.NotNil(t, automated.Filter)

	filter, ok := automated.Filter.(ComparisonPredicate)
	require.True(t, ok)
	assert.Equal(t, "screen", filter.Attribute)
}

func TestUnmarshalTrigger_AutomatedWithoutFilter(t *testing.T) {
	data := []byte(`{"__typename": "AutomatedCampaignTrigger", "eventName": "App Opened"}`)

	trigger, err := UnmarshalTrigger(data)
	require.NoError(t, err)

	automated, ok := trigger.(AutomatedTrigger)
	require.True(t, ok)
	assert.Equal(t, "App Opened", automated.EventName)
	assert.Nil(t, automated.Filter)
}

func TestUnmarshalTrigger_UnknownTypename(t *testing.T) {
	_, err := UnmarshalTrigger([]byte(`{"__typename": "MysteryTrigger"}`))
	assert.ErrorIs(t, err, ErrUnknownTypename)
}

func TestCampaign_UnmarshalJSON(t *testing.T) {
	data := []byte(`{
		"id": "c1",
		"name": "Welcome Series",
		"status": "PUBLISHED",
		"updatedAt": "2026-08-15T12:00:00Z",
		"trigger": {"__typename": "AutomatedCampaignTrigger", "eventName": "Sign Up"},
		"predicate": {"__typename": "ComparisonPredicate", "attribute": "locale", "operator": "EQUALS", "value": "en"}
	}`)

	var campaign Campaign
	require.NoError(t, json.Unmarshal(data, &campaign))

	assert.Equal(t, "c1", campaign.ID)
	assert.Equal(t, "Welcome Series", campaign.Name)
	assert.Equal(t, CampaignStatusPublished, campaign.Status)
	assert.IsType(t, AutomatedTrigger{}, campaign.Trigger)
	assert.IsType(t, ComparisonPredicate{}, campaign.Predicate)
}

func TestCampaign_UnmarshalJSON_NullUnionFields(t *testing.T) {
	data := []byte(`{
		"id": "c2",
		"name": "Draft",
		"status": "DRAFT",
		"updatedAt": "2026-08-15T12:00:00Z",
		"trigger": null,
		"predicate": null
	}`)

	var campaign Campaign
	require.NoError(t, json.Unmarshal(data, &campaign))
	assert.Nil(t, campaign.Trigger)
	assert.Nil(t, campaign.Predicate)
}

func TestCampaign_UnmarshalJSON_BadUnionFails(t *testing.T) {
	data := []byte(`{
		"id": "c3",
		"name": "Broken",
		"status": "PUBLISHED",
		"updatedAt": "2026-08-15T12:00:00Z",
		"trigger": {"__typename": "MysteryTrigger"}
	}`)

	var campaign Campaign
	err := json.Unmarshal(data, &campaign)
	assert.ErrorIs(t, err, ErrUnknownTypename)
}

func TestCampaign_MarshalJSON_RoundTrip(t *testing.T) {
	original := Campaign{
		ID:     "c4",
		Name:   "Win Back",
		Status: CampaignStatusPublished,
		Trigger: AutomatedTrigger{
			EventName: "Cart Abandoned",
			Filter:    ComparisonPredicate{Attribute: "total", Operator: OperatorGreaterThan, Value: float64(50)},
		},
		Predicate: CompoundPredicate{
			Logical: LogicalAll,
			Predicates: []Predicate{
				ComparisonPredicate{Attribute: "country", Operator: OperatorEquals, Value: "CA"},
			},
		},
		UpdatedAt: time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Campaign
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}
