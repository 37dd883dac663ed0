// Package turnkey adjusts the per-square-foot home rate for quality tier
// and property condition, and splits the turnkey total into labor and
// material.
package turnkey

import (
	"github.com/shopspring/decimal"

	"paint-quote/core/coerce"
	"paint-quote/core/types"
)

// materialShare is the material portion of a turnkey total; labor takes
// the remainder
var materialShare = decimal.RequireFromString("0.40")

var conditionMultipliers = map[types.Condition]decimal.Decimal{
	types.ConditionExcellent: decimal.RequireFromString("0.90"),
	types.ConditionGood:      decimal.RequireFromString("0.95"),
	types.ConditionAverage:   decimal.RequireFromString("1.00"),
	types.ConditionFair:      decimal.RequireFromString("1.10"),
	types.ConditionPoor:      decimal.RequireFromString("1.25"),
}

// Multiplier returns the condition multiplier; unknown conditions are 1
func Multiplier(c types.Condition) decimal.Decimal {
	if m, ok := conditionMultipliers[c]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// Params selects and adjusts the turnkey rate
type Params struct {
	HomeSqft  decimal.Decimal
	JobType   types.JobType
	Tier      types.Tier
	Condition types.Condition

	// Rules supplies scheme base rates and the GBB table
	Rules types.PricingRules

	// Settings supplies the tenant base rates used when the scheme has none
	Settings types.ResolvedSettings
}

// Adjustment is the adjusted turnkey rate and how it was reached
type Adjustment struct {
	BaseRate     decimal.Decimal
	TierRate     decimal.Decimal
	TierOverride bool
	Multiplier   decimal.Decimal
	AdjustedRate decimal.Decimal
}

// BaseRate returns the scheme rate for the job type, falling back to the
// tenant rate. Anything but exterior is priced as interior.
func BaseRate(p Params) decimal.Decimal {
	if p.JobType == types.JobExterior {
		return coerce.Positive(p.Rules.TurnkeyRates.Exterior, p.Settings.TurnkeyExteriorRate)
	}
	return coerce.Positive(p.Rules.TurnkeyRates.Interior, p.Settings.TurnkeyInteriorRate)
}

// Adjust applies the GBB override (when a tier table exists and the tier
// is not single) and then the condition multiplier.
func Adjust(p Params) Adjustment {
	a := Adjustment{BaseRate: BaseRate(p)}
	a.TierRate = a.BaseRate
	if p.Rules.TierRates != nil && p.Tier != types.TierSingle {
		if r, ok := p.Rules.TierRates.For(p.Tier); ok {
			a.TierRate = r
			a.TierOverride = true
		}
	}
	a.Multiplier = Multiplier(p.Condition)
	a.AdjustedRate = a.TierRate.Mul(a.Multiplier)
	return a
}

// Split divides a turnkey total 60/40 between labor and material, or
// assigns it all to labor when materials are excluded.
func Split(total decimal.Decimal, includeMaterials bool) (labor, material decimal.Decimal) {
	if !includeMaterials {
		return total, decimal.Zero
	}
	material = total.Mul(materialShare)
	return total.Sub(material), material
}

// Detail prices a home and explains the result
func Detail(p Params, includeMaterials bool) types.TurnkeyDetail {
	a := Adjust(p)
	sqft := coerce.NonNegative(p.HomeSqft)
	total := sqft.Mul(a.AdjustedRate)
	labor, material := Split(total, includeMaterials)

	jobType := p.JobType
	if jobType != types.JobExterior {
		jobType = types.JobInterior
	}
	condition := p.Condition
	if _, ok := conditionMultipliers[condition]; !ok {
		condition = types.ConditionAverage
	}

	return types.TurnkeyDetail{
		HomeSqft:            sqft,
		JobType:             jobType,
		BaseRate:            a.BaseRate,
		Tier:                p.Tier,
		TierRate:            a.TierRate,
		TierOverride:        a.TierOverride,
		Condition:           condition,
		ConditionMultiplier: a.Multiplier,
		AdjustedRate:        a.AdjustedRate,
		BaseTotal:           total,
		LaborShare:          labor,
		MaterialShare:       material,
	}
}
