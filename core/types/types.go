// Package types - Core domain types for painting quotes
package types

import (
	"bytes"
	"encoding/json"
	"strings"

	"paint-quote/internal/errors"
)

// Model is a canonical pricing model identifier
type Model string

const (
	ModelTurnkey         Model = "turnkey"
	ModelRateBasedSqft   Model = "rate_based_sqft"
	ModelProductionBased Model = "production_based"
	ModelFlatRateUnit    Model = "flat_rate_unit"
)

// String returns the string representation
func (m Model) String() string {
	return string(m)
}

// IsValid checks if the model is one of the canonical identifiers
func (m Model) IsValid() bool {
	switch m {
	case ModelTurnkey, ModelRateBasedSqft, ModelProductionBased, ModelFlatRateUnit:
		return true
	}
	return false
}

// Tier is a product quality tier
type Tier string

const (
	TierGood   Tier = "good"
	TierBetter Tier = "better"
	TierBest   Tier = "best"
	TierSingle Tier = "single"
)

// ParseTier normalizes a tier name
func ParseTier(s string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case TierGood, TierBetter, TierBest, TierSingle:
		return t, true
	}
	return "", false
}

// Unit is the measurement unit of a labor item
type Unit string

const (
	UnitSqft       Unit = "sqft"
	UnitLinearFoot Unit = "linear_foot"
	UnitEach       Unit = "unit"
	UnitHour       Unit = "hour"
)

var unitAliases = map[string]Unit{
	"sqft":        UnitSqft,
	"sq ft":       UnitSqft,
	"sq_ft":       UnitSqft,
	"square_feet": UnitSqft,
	"square feet": UnitSqft,
	"linear_foot": UnitLinearFoot,
	"linear_feet": UnitLinearFoot,
	"linear foot": UnitLinearFoot,
	"linear_ft":   UnitLinearFoot,
	"lf":          UnitLinearFoot,
	"unit":        UnitEach,
	"units":       UnitEach,
	"each":        UnitEach,
	"ea":          UnitEach,
	"hour":        UnitHour,
	"hours":       UnitHour,
	"hr":          UnitHour,
	"hrs":         UnitHour,
}

// ParseUnit normalizes a measurement unit; unknown units report false.
func ParseUnit(s string) (Unit, bool) {
	u, ok := unitAliases[strings.ToLower(strings.TrimSpace(s))]
	return u, ok
}

// UnmarshalJSON accepts any known alias. An empty unit decodes to the
// empty Unit, which downstream code treats as sqft; an unknown unit is a
// validation error.
func (u *Unit) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*u = ""
		return nil
	}
	parsed, ok := ParseUnit(s)
	if !ok {
		return errors.Validation("measurementUnit", "unknown measurement unit "+s)
	}
	*u = parsed
	return nil
}

// OrDefault returns the unit, or sqft when unset
func (u Unit) OrDefault() Unit {
	if u == "" {
		return UnitSqft
	}
	return u
}

// ProductID identifies a product configuration. Legacy payloads carry
// numeric ids; they are kept as their decimal string.
type ProductID string

// UnmarshalJSON accepts strings and numbers
func (p *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ProductID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = ProductID(n.String())
	return nil
}

// IsZero reports whether the id is unset. "0" is the legacy "no product".
func (p ProductID) IsZero() bool {
	return p == "" || p == "0"
}

// TierMap maps a tier to the product chosen for it
type TierMap map[Tier]ProductID

// JobType selects the turnkey base rate
type JobType string

const (
	JobInterior JobType = "interior"
	JobExterior JobType = "exterior"
)

// ParseJobType normalizes a job type
func ParseJobType(s string) (JobType, bool) {
	j := JobType(strings.ToLower(strings.TrimSpace(s)))
	switch j {
	case JobInterior, JobExterior:
		return j, true
	}
	return "", false
}

// Condition is the property condition used by turnkey pricing
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionAverage   Condition = "average"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

// ParseCondition normalizes a property condition
func ParseCondition(s string) (Condition, bool) {
	c := Condition(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case ConditionExcellent, ConditionGood, ConditionAverage, ConditionFair, ConditionPoor:
		return c, true
	}
	return "", false
}

// ApplicationMethod is how paint is applied
type ApplicationMethod string

const (
	ApplicationBrushRoll ApplicationMethod = "brush_roll"
	ApplicationSpray     ApplicationMethod = "spray"
)

// ParseApplicationMethod normalizes an application method. Spaces and
// hyphens fold to underscores so "brush-roll" and "Brush Roll" match.
func ParseApplicationMethod(s string) (ApplicationMethod, bool) {
	m := strings.ToLower(strings.TrimSpace(s))
	m = strings.NewReplacer(" ", "_", "-", "_").Replace(m)
	switch ApplicationMethod(m) {
	case ApplicationBrushRoll, ApplicationSpray:
		return ApplicationMethod(m), true
	}
	return "", false
}

// TaxMode selects the tax base
type TaxMode string

const (
	// TaxMaterialsOnly taxes marked-up materials only
	TaxMaterialsOnly TaxMode = "materials_only"
	// TaxFullSubtotal taxes the full subtotal
	TaxFullSubtotal TaxMode = "full_subtotal"
)

// IsValid checks the tax mode
func (m TaxMode) IsValid() bool {
	return m == TaxMaterialsOnly || m == TaxFullSubtotal
}

// GallonRounding selects how raw gallons are rounded
type GallonRounding string

const (
	// RoundWhole rounds up to the next whole gallon
	RoundWhole GallonRounding = "whole"
	// RoundQuarter rounds to the nearest quarter gallon
	RoundQuarter GallonRounding = "quarter"
)

// IsValid checks the rounding policy
func (r GallonRounding) IsValid() bool {
	return r == RoundWhole || r == RoundQuarter
}

// MaterialMode selects how material is computed across areas
type MaterialMode string

const (
	// MaterialPerItem computes gallons for each area item
	MaterialPerItem MaterialMode = "per_item"
	// MaterialPerSurface sums quantities per surface before computing gallons
	MaterialPerSurface MaterialMode = "per_surface"
)

// IsValid checks the material mode
func (m MaterialMode) IsValid() bool {
	return m == MaterialPerItem || m == MaterialPerSurface
}

// DefaultRounding returns the rounding policy each material path has
// historically used.
func (m MaterialMode) DefaultRounding() GallonRounding {
	if m == MaterialPerSurface {
		return RoundQuarter
	}
	return RoundWhole
}
