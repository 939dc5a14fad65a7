package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Trigger is a closed union of campaign activation conditions.
type Trigger interface {
	isTrigger()
}

// ScheduledTrigger activates a campaign inside a delivery window.
type ScheduledTrigger struct {
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

func (ScheduledTrigger) isTrigger() {}

// AutomatedTrigger activates a campaign when a named device event fires,
// optionally filtered by a predicate over the event's attributes.
type AutomatedTrigger struct {
	EventName string
	Filter    Predicate
}

func (AutomatedTrigger) isTrigger() {}

// UnmarshalTrigger decodes a trigger union variant.
func UnmarshalTrigger(data []byte) (Trigger, error) {
	var head struct {
		Typename string `json:"__typename"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch head.Typename {
	case typenameScheduledTrigger:
		var t ScheduledTrigger
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		return t, nil

	case typenameAutomatedTrigger:
		var raw struct {
			EventName string          `json:"eventName"`
			Filter    json.RawMessage `json:"filter,omitempty"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		t := AutomatedTrigger{EventName: raw.EventName}
		if len(raw.Filter) > 0 && string(raw.Filter) != "null" {
			filter, err := UnmarshalPredicate(raw.Filter)
			if err != nil {
				return nil, err
			}
			t.Filter = filter
		}
		return t, nil

	default:
		return nil, fmt.Errorf("%w: trigger %q", ErrUnknownTypename, head.Typename)
	}
}

// MarshalTrigger encodes a trigger with its __typename discriminator.
func MarshalTrigger(t Trigger) (json.RawMessage, error) {
	switch v := t.(type) {
	case ScheduledTrigger:
		return json.Marshal(struct {
			Typename string `json:"__typename"`
			ScheduledTrigger
		}{typenameScheduledTrigger, v})

	case AutomatedTrigger:
		var filter json.RawMessage
		if v.Filter != nil {
			data, err := MarshalPredicate(v.Filter)
			if err != nil {
				return nil, err
			}
			filter = data
		}
		return json.Marshal(struct {
			Typename  string          `json:"__typename"`
			EventName string          `json:"eventName"`
			Filter    json.RawMessage `json:"filter,omitempty"`
		}{typenameAutomatedTrigger, v.EventName, filter})

	default:
		return nil, fmt.Errorf("%w: trigger %T", ErrUnknownTypename, t)
	}
}
