// Package scheme resolves stored pricing-scheme types, including legacy
// aliases, to a canonical pricing model.
package scheme

import (
	"strings"

	"paint-quote/core/types"
	"paint-quote/internal/errors"
)

// ErrCalculationSkipped is returned when the scheme type is unknown and
// there is not enough data to fall back to rate-based pricing.
var ErrCalculationSkipped = errors.New(errors.TypeSkipped, "calculation skipped: unknown pricing scheme without areas and product selections")

var aliases = map[string]types.Model{
	"turnkey":               types.ModelTurnkey,
	"sqft_turnkey":          types.ModelTurnkey,
	"rate_based_sqft":       types.ModelRateBasedSqft,
	"sqft_labor_paint":      types.ModelRateBasedSqft,
	"production_based":      types.ModelProductionBased,
	"hourly_time_materials": types.ModelProductionBased,
	"flat_rate_unit":        types.ModelFlatRateUnit,
	"unit_pricing":          types.ModelFlatRateUnit,
	"room_flat_rate":        types.ModelFlatRateUnit,
}

// Resolve maps a scheme type to its canonical model
func Resolve(typ string) (types.Model, bool) {
	m, ok := aliases[strings.ToLower(strings.TrimSpace(typ))]
	return m, ok
}

// ResolveForCalculation resolves typ, falling back to rate-based pricing
// for unknown types when the quote has areas and product selections.
func ResolveForCalculation(typ string, hasAreas, hasProducts bool) (types.Model, error) {
	if m, ok := Resolve(typ); ok {
		return m, nil
	}
	if hasAreas && hasProducts {
		return types.ModelRateBasedSqft, nil
	}
	return "", errors.New(errors.TypeSkipped, ErrCalculationSkipped.Message).WithContext("schemeType", typ)
}

// Aliases returns the accepted type names for model, canonical name first
func Aliases(model types.Model) []string {
	out := []string{string(model)}
	for _, name := range []string{"sqft_turnkey", "sqft_labor_paint", "hourly_time_materials", "unit_pricing", "room_flat_rate"} {
		if aliases[name] == model {
			out = append(out, name)
		}
	}
	return out
}
