// Package labor computes the labor cost of a single work item under each
// pricing model.
package labor

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"paint-quote/core/catalog"
	"paint-quote/core/coerce"
	"paint-quote/core/types"
	"paint-quote/internal/errors"
)

var (
	// ErrNoQuantity marks an item with a zero, negative or underivable quantity
	ErrNoQuantity = errors.New(errors.TypeSkipped, "item has no positive quantity")

	// ErrNotSelected marks an item the quote author deselected
	ErrNotSelected = errors.New(errors.TypeSkipped, "item is not selected")
)

var ten = decimal.NewFromInt(10)

// Params is everything labor pricing reads besides the item
type Params struct {
	Model    types.Model
	Tier     types.Tier
	Rules    types.PricingRules
	Settings types.ResolvedSettings

	// LaborRates is the tenant labor-rate table keyed by lower-cased
	// category name
	LaborRates map[string]decimal.Decimal

	// Catalog classifies category names; nil means catalog.Default
	Catalog *catalog.Catalog
}

func (p Params) catalog() *catalog.Catalog {
	if p.Catalog == nil {
		return catalog.Default
	}
	return p.Catalog
}

// Calculate prices one item. Unselected items and items without a usable
// quantity return a zero line with ErrNotSelected or ErrNoQuantity.
func Calculate(item types.LaborItem, p Params) (types.LaborLine, error) {
	if !item.Selected {
		return types.LaborLine{}, ErrNotSelected
	}

	cat := p.catalog()
	qty, derived, ok := item.EffectiveQuantity(cat)
	if !ok {
		return types.LaborLine{}, ErrNoQuantity
	}

	line := types.LaborLine{
		Quantity:        qty,
		Unit:            item.MeasurementUnit.OrDefault(),
		QuantityDerived: derived,
	}

	switch p.Model {
	case types.ModelRateBasedSqft:
		rateBased(&line, item, p)
	case types.ModelProductionBased:
		productionBased(&line, item, item.Classify(cat), p)
	case types.ModelFlatRateUnit:
		flatRate(&line, item, item.Classify(cat), p)
	case types.ModelTurnkey:
		return types.LaborLine{}, errors.New(errors.TypeValidation, "turnkey labor is priced per home, not per item")
	default:
		return types.LaborLine{}, errors.Newf(errors.TypeValidation, "unknown pricing model %q", p.Model)
	}
	return line, nil
}

// CalculateTurnkey prices a whole home at an already adjusted rate
func CalculateTurnkey(homeSqft, adjustedRate decimal.Decimal) types.LaborLine {
	qty := coerce.NonNegative(homeSqft)
	return types.LaborLine{
		Quantity:   qty,
		Unit:       types.UnitSqft,
		Rate:       adjustedRate,
		RateSource: types.RateTurnkey,
		Cost:       qty.Mul(adjustedRate),
		Formula:    fmt.Sprintf("%s sqft * $%s/sqft", qty, adjustedRate),
	}
}

// RoundHours rounds hours up to the next tenth
func RoundHours(h decimal.Decimal) decimal.Decimal {
	return h.Mul(ten).Ceil().Div(ten)
}

func rateBased(line *types.LaborLine, item types.LaborItem, p Params) {
	line.Rate, line.RateSource = lookupRate(item, p)
	line.Cost = line.Quantity.Mul(line.Rate)
	line.Formula = fmt.Sprintf("%s %s * $%s (%s)", line.Quantity, line.Unit, line.Rate, line.RateSource)
}

// lookupRate walks GBB override, scheme override, tenant table and the
// inline rate, in that order.
func lookupRate(item types.LaborItem, p Params) (decimal.Decimal, types.RateSource) {
	name := item.Label()
	if p.Tier != types.TierSingle && p.Tier != "" {
		if r, ok := p.Rules.TierLaborRate(name, p.Tier); ok {
			return r, types.RateTierOverride
		}
	}
	if r, ok := p.Rules.LaborRate(name); ok {
		return r, types.RateSchemeOverride
	}
	if r, ok := p.LaborRates[strings.ToLower(strings.TrimSpace(name))]; ok && !r.IsNegative() {
		return r, types.RateLaborTable
	}
	return inlineRate(item), types.RateInline
}

func inlineRate(item types.LaborItem) decimal.Decimal {
	return coerce.NonNegative(coerce.Or(item.LaborRate, decimal.Zero))
}

func productionBased(line *types.LaborLine, item types.LaborItem, category catalog.Category, p Params) {
	hourly := p.Settings.HourlyRate
	crew := p.Settings.CrewSize

	var hours decimal.Decimal
	if line.Unit == types.UnitHour {
		hours = line.Quantity
		line.Formula = fmt.Sprintf("%s h * $%s/h * %s crew", hours, hourly, crew)
	} else {
		rate, ok := p.Settings.ProductionRates[category]
		if !ok || !rate.IsPositive() {
			line.Rate = inlineRate(item)
			line.RateSource = types.RateInline
			line.Cost = line.Quantity.Mul(line.Rate)
			line.Formula = fmt.Sprintf("%s %s * $%s (no production rate for %s)", line.Quantity, line.Unit, line.Rate, category)
			return
		}
		hours = RoundHours(line.Quantity.Div(rate))
		line.Formula = fmt.Sprintf("ceil(%s %s / %s per h, 0.1) = %s h * $%s/h * %s crew",
			line.Quantity, line.Unit, rate, hours.StringFixed(1), hourly, crew)
	}

	line.Hours = &hours
	line.Rate = hourly
	line.RateSource = types.RateProduction
	line.Cost = hours.Mul(hourly).Mul(crew)
}

func flatRate(line *types.LaborLine, item types.LaborItem, category catalog.Category, p Params) {
	if price, ok := p.Settings.FlatRatePrices[category]; ok && price.IsPositive() {
		line.Rate, line.RateSource = price, types.RateFlatTable
	} else {
		line.Rate, line.RateSource = inlineRate(item), types.RateInline
	}
	line.Cost = line.Quantity.Mul(line.Rate)
	line.Formula = fmt.Sprintf("%s %s * $%s (%s)", line.Quantity, line.Unit, line.Rate, line.RateSource)
}
