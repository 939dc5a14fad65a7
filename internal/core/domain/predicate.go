package domain

import (
	"encoding/json"
	"fmt"
)

// Predicate is a closed union of campaign targeting conditions. The wire
// format discriminates variants with a __typename field; decoding is
// exhaustive and an unknown typename is an error, never a silent skip.
type Predicate interface {
	isPredicate()
}

// ComparisonOperator compares one device attribute against a value.
type ComparisonOperator string

// Comparison operators.
const (
	OperatorEquals         ComparisonOperator = "EQUALS"
	OperatorNotEquals      ComparisonOperator = "NOT_EQUALS"
	OperatorGreaterThan    ComparisonOperator = "GREATER_THAN"
	OperatorLessThan       ComparisonOperator = "LESS_THAN"
	OperatorIsSet          ComparisonOperator = "IS_SET"
	OperatorIsUnset        ComparisonOperator = "IS_UNSET"
	OperatorContains       ComparisonOperator = "CONTAINS"
	OperatorDoesNotContain ComparisonOperator = "DOES_NOT_CONTAIN"
)

// LogicalOperator joins child predicates in a compound predicate.
type LogicalOperator string

// Logical operators.
const (
	LogicalAny LogicalOperator = "ANY"
	LogicalAll LogicalOperator = "ALL"
)

// Type names used as union discriminators on the wire.
const (
	typenameComparisonPredicate = "ComparisonPredicate"
	typenameCompoundPredicate   = "CompoundPredicate"
	typenameScheduledTrigger    = "ScheduledCampaignTrigger"
	typenameAutomatedTrigger    = "AutomatedCampaignTrigger"
)

// ComparisonPredicate tests a single attribute.
type ComparisonPredicate struct {
	Attribute string             `json:"attribute"`
	Operator  ComparisonOperator `json:"operator"`
	Value     any                `json:"value,omitempty"`
}

func (ComparisonPredicate) isPredicate() {}

// CompoundPredicate joins child predicates with a logical operator.
type CompoundPredicate struct {
	Logical    LogicalOperator
	Predicates []Predicate
}

func (CompoundPredicate) isPredicate() {}

// UnmarshalPredicate decodes a predicate union variant.
func UnmarshalPredicate(data []byte) (Predicate, error) {
	var head struct {
		Typename string `json:"__typename"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch head.Typename {
	case typenameComparisonPredicate:
		var p ComparisonPredicate
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		return p, nil

	case typenameCompoundPredicate:
		var raw struct {
			Logical    LogicalOperator   `json:"logical"`
			Predicates []json.RawMessage `json:"predicates"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		compound := CompoundPredicate{Logical: raw.Logical}
		for _, child := range raw.Predicates {
			p, err := UnmarshalPredicate(child)
			if err != nil {
				return nil, err
			}
			compound.Predicates = append(compound.Predicates, p)
		}
		return compound, nil

	default:
		return nil, fmt.Errorf("%w: predicate %q", ErrUnknownTypename, head.Typename)
	}
}

// MarshalPredicate encodes a predicate with its __typename discriminator.
func MarshalPredicate(p Predicate) (json.RawMessage, error) {
	switch v := p.(type) {
	case ComparisonPredicate:
		return json.Marshal(struct {
			Typename string `json:"__typename"`
			ComparisonPredicate
		}{typenameComparisonPredicate, v})

	case CompoundPredicate:
		children := make([]json.RawMessage, 0, len(v.Predicates))
		for _, child := range v.Predicates {
			data, err := MarshalPredicate(child)
			if err != nil {
				return nil, err
			}
			children = append(children, data)
		}
		return json.Marshal(struct {
			Typename   string            `json:"__typename"`
			Logical    LogicalOperator   `json:"logical"`
			Predicates []json.RawMessage `json:"predicates"`
		}{typenameCompoundPredicate, v.Logical, children})

	default:
		return nil, fmt.Errorf("%w: predicate %T", ErrUnknownTypename, p)
	}
}
