// Package material computes paint gallons and material cost from
// coverage, coats and a fixed waste factor.
package material

import (
	"fmt"

	"github.com/shopspring/decimal"

	"paint-quote/core/coerce"
	"paint-quote/core/tier"
	"paint-quote/core/types"
)

var (
	// WasteFactor covers spillage and overage
	WasteFactor = decimal.RequireFromString("1.10")

	// MinCoverage and MaxCoverage bound coverage in sqft per gallon
	MinCoverage = decimal.NewFromInt(250)
	MaxCoverage = decimal.NewFromInt(450)

	// SprayCoverage caps coverage for sprayed jobs
	SprayCoverage = decimal.NewFromInt(300)

	four = decimal.NewFromInt(4)
)

// Reasons recorded on unconfigured lines
const (
	ReasonNoProduct       = "no_product_configured"
	ReasonProductNotFound = "product_not_found"
)

// Params is everything material pricing reads besides the surface
type Params struct {
	Tier     types.Tier
	Products map[types.ProductID]types.ProductConfig

	// Defaults are the scheme material defaults with built-ins applied
	Defaults types.ResolvedMaterialDefaults

	// Coverage and Coats are request-level overrides
	Coverage coerce.Number
	Coats    coerce.Number

	Method   types.ApplicationMethod
	Rounding types.GallonRounding
}

// RoundGallonsWhole rounds up to the next whole gallon
func RoundGallonsWhole(raw decimal.Decimal) decimal.Decimal {
	return raw.Ceil()
}

// RoundGallonsQuarter rounds to the nearest quarter gallon
func RoundGallonsQuarter(raw decimal.Decimal) decimal.Decimal {
	return raw.Mul(four).Round(0).Div(four)
}

// Round applies a rounding policy; unset means whole gallons
func Round(raw decimal.Decimal, policy types.GallonRounding) decimal.Decimal {
	if policy == types.RoundQuarter {
		return RoundGallonsQuarter(raw)
	}
	return RoundGallonsWhole(raw)
}

// RawGallons is quantity * coats / coverage with waste applied
func RawGallons(quantity decimal.Decimal, coats int, coverage decimal.Decimal) decimal.Decimal {
	if !coverage.IsPositive() {
		return decimal.Zero
	}
	return quantity.Mul(decimal.NewFromInt(int64(coats))).Mul(WasteFactor).Div(coverage)
}

// Calculate prices paint for quantity sqft of surface. itemCoats of zero
// defers to the product, request and scheme coat counts. A tier without
// a resolvable product yields a zero-cost line flagged Unconfigured.
func Calculate(surface string, quantity decimal.Decimal, products types.TierMap, itemCoats int, p Params) types.MaterialLine {
	sel := tier.Select(products, p.Tier)
	line := types.MaterialLine{
		SurfaceType:   surface,
		RequestedTier: p.Tier,
		Quantity:      quantity,
		Rounding:      roundingOrDefault(p.Rounding),
	}

	if !sel.Configured {
		line.Unconfigured = true
		line.UnconfiguredReason = ReasonNoProduct
		return line
	}
	line.ProductID = sel.ProductID
	line.ResolvedTier = sel.Resolved

	product, ok := p.Products[sel.ProductID]
	if !ok {
		line.Unconfigured = true
		line.UnconfiguredReason = ReasonProductNotFound
		return line
	}
	line.ProductName = product.Name

	line.PricePerGallon = pricePerGallon(product, p)
	line.Coverage = coverage(product, p)
	line.Coats = coats(itemCoats, product, p)
	line.RawGallons = RawGallons(quantity, line.Coats, line.Coverage)
	line.Gallons = Round(line.RawGallons, line.Rounding)
	line.Cost = line.Gallons.Mul(line.PricePerGallon)
	line.Formula = fmt.Sprintf("%s(%s sqft * %d coats * %s / %s sqft/gal) = %s gal * $%s/gal",
		line.Rounding, quantity, line.Coats, WasteFactor, line.Coverage, line.Gallons, line.PricePerGallon)
	return line
}

func roundingOrDefault(r types.GallonRounding) types.GallonRounding {
	if r.IsValid() {
		return r
	}
	return types.RoundWhole
}

func pricePerGallon(product types.ProductConfig, p Params) decimal.Decimal {
	if sheen, ok := product.PrimarySheen(); ok {
		if price := coerce.Positive(sheen.Price, decimal.Zero); price.IsPositive() {
			return price
		}
	}
	return p.Defaults.CostPerGallon
}

// coverage takes the product, then first sheen, then request, then scheme
// value. Spray caps a non-product coverage at 300; the result is clamped.
func coverage(product types.ProductConfig, p Params) decimal.Decimal {
	cov := coerce.Positive(product.CoverageSqftPerGal, decimal.Zero)
	fromProduct := cov.IsPositive()
	if !fromProduct {
		if sheen, ok := product.PrimarySheen(); ok {
			cov = coerce.Positive(sheen.Coverage, decimal.Zero)
			fromProduct = cov.IsPositive()
		}
	}
	if !fromProduct {
		cov = coerce.Positive(p.Coverage, p.Defaults.Coverage)
		if p.Method == types.ApplicationSpray && cov.GreaterThan(SprayCoverage) {
			cov = SprayCoverage
		}
	}
	return coerce.Clamp(cov, MinCoverage, MaxCoverage)
}

func coats(itemCoats int, product types.ProductConfig, p Params) int {
	switch {
	case itemCoats > 0:
		return itemCoats
	case product.DefaultCoats > 0:
		return product.DefaultCoats
	}
	if c := coerce.Int(p.Coats, 0); c > 0 {
		return c
	}
	if p.Defaults.Coats > 0 {
		return p.Defaults.Coats
	}
	return types.DefaultCoats
}
