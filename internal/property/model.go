// Package property provides the property domain model, type inference and
// data access.
package property

import (
	"slices"
	"strings"
	"time"
)

// Type is the coarse building classification used for targeting.
type Type string

const (
	TypeSingleFamily Type = "single_family"
	TypeMultiFamily  Type = "multi_family"
	TypeCommercial   Type = "commercial"
	TypeUnknown      Type = "unknown"
)

// ValidType returns true if s is a known property type.
func ValidType(s string) bool {
	switch Type(s) {
	case TypeSingleFamily, TypeMultiFamily, TypeCommercial, TypeUnknown:
		return true
	}
	return false
}

// Label returns a human-readable label for the type.
func (t Type) Label() string {
	switch t {
	case TypeSingleFamily:
		return "Single Family"
	case TypeMultiFamily:
		return "Multi-Family"
	case TypeCommercial:
		return "Commercial"
	default:
		return "Unknown"
	}
}

// Property is a physical address keyed by its normalized form.
type Property struct {
	Address          string    `json:"address"`
	DisplayAddress   string    `json:"display_address"`
	Variants         []string  `json:"variants,omitempty"`
	Type             Type      `json:"property_type"`
	TypeConfidence   int       `json:"type_confidence"`
	EstimatedValue   *float64  `json:"estimated_value,omitempty"`
	EquityPercent    *float64  `json:"equity_percent,omitempty"`
	Units            *int64    `json:"units,omitempty"`
	Bedrooms         *int64    `json:"bedrooms,omitempty"`
	Sqft             *int64    `json:"sqft,omitempty"`
	Zoning           string    `json:"zoning,omitempty"`
	Flags            []string  `json:"flags,omitempty"`
	CorporateOwner   bool      `json:"corporate_owner"`
	OutOfStateOwner  bool      `json:"out_of_state_owner"`
	ValuesAsOf       time.Time `json:"values_as_of"`
	ValuesConfidence int       `json:"values_confidence"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Attrs is one observation of a property from an import source. Nil and
// zero fields carry no information and never overwrite stored values.
type Attrs struct {
	DisplayAddress  string
	Type            Type
	TypeConfidence  int
	EstimatedValue  *float64
	EquityPercent   *float64
	Units           *int64
	Bedrooms        *int64
	Sqft            *int64
	Zoning          string
	Flags           []string
	CorporateOwner  bool
	OutOfStateOwner bool

	// ObservedAt and Confidence rank this observation's numeric values
	// against what is already stored.
	ObservedAt time.Time
	Confidence int
}

// New creates a property for a normalized address from its first observation.
func New(address string, a Attrs, now time.Time) *Property {
	p := &Property{
		Address:   address,
		Type:      TypeUnknown,
		CreatedAt: now,
	}
	p.Merge(a, now)
	return p
}

// Merge folds an observation into the property.
//
// The type is replaced only when the stored type is unknown or the incoming
// confidence is strictly greater; an unknown observation never replaces a
// known type. Numeric values are replaced when the observation is newer or
// more confident than the one that last set them. Flags accumulate.
func (p *Property) Merge(a Attrs, now time.Time) {
	if a.DisplayAddress != "" {
		if p.DisplayAddress == "" {
			p.DisplayAddress = a.DisplayAddress
		}
		if !slices.Contains(p.Variants, a.DisplayAddress) {
			p.Variants = append(p.Variants, a.DisplayAddress)
		}
	}

	if a.Type != "" && a.Type != TypeUnknown {
		if p.Type == "" || p.Type == TypeUnknown || a.TypeConfidence > p.TypeConfidence {
			p.Type = a.Type
			p.TypeConfidence = a.TypeConfidence
		}
	}
	if p.Type == "" {
		p.Type = TypeUnknown
	}

	observed := a.ObservedAt
	if observed.IsZero() {
		observed = now
	}
	replace := p.ValuesAsOf.IsZero() || observed.After(p.ValuesAsOf) || a.Confidence > p.ValuesConfidence

	changed := false
	changed = mergeValue(&p.EstimatedValue, a.EstimatedValue, replace) || changed
	changed = mergeValue(&p.EquityPercent, a.EquityPercent, replace) || changed
	changed = mergeValue(&p.Units, a.Units, replace) || changed
	changed = mergeValue(&p.Bedrooms, a.Bedrooms, replace) || changed
	changed = mergeValue(&p.Sqft, a.Sqft, replace) || changed
	if a.Zoning != "" && (p.Zoning == "" || replace) {
		p.Zoning = a.Zoning
		changed = true
	}
	if changed {
		if observed.After(p.ValuesAsOf) {
			p.ValuesAsOf = observed
		}
		p.ValuesConfidence = max(p.ValuesConfidence, a.Confidence)
	}

	for _, f := range a.Flags {
		f = strings.TrimSpace(f)
		if f != "" && !p.HasFlag(f) {
			p.Flags = append(p.Flags, f)
		}
	}
	p.CorporateOwner = p.CorporateOwner || a.CorporateOwner
	p.OutOfStateOwner = p.OutOfStateOwner || a.OutOfStateOwner

	p.UpdatedAt = now
}

// mergeValue sets *dst from src when src carries a value and either dst is
// empty or replace is set. It reports whether dst changed.
func mergeValue[T comparable](dst **T, src *T, replace bool) bool {
	if src == nil {
		return false
	}
	if *dst != nil && (!replace || **dst == *src) {
		return false
	}
	v := *src
	*dst = &v
	return true
}

// HasFlag reports whether the property carries the flag, ignoring case.
func (p *Property) HasFlag(flag string) bool {
	for _, f := range p.Flags {
		if strings.EqualFold(f, flag) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the property.
func (p *Property) Clone() *Property {
	c := *p
	c.Variants = slices.Clone(p.Variants)
	c.Flags = slices.Clone(p.Flags)
	c.EstimatedValue = clonePtr(p.EstimatedValue)
	c.EquityPercent = clonePtr(p.EquityPercent)
	c.Units = clonePtr(p.Units)
	c.Bedrooms = clonePtr(p.Bedrooms)
	c.Sqft = clonePtr(p.Sqft)
	return &c
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
