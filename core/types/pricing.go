// Package types - Pricing schemes and contractor settings
package types

import (
	"strings"

	"github.com/shopspring/decimal"

	"paint-quote/core/catalog"
	"paint-quote/core/coerce"
)

// Built-in defaults applied when a contractor leaves a field unset
var (
	DefaultCostPerGallon       = decimal.NewFromInt(35)
	DefaultCoverage            = decimal.NewFromInt(350)
	DefaultCoats               = 2
	DefaultHourlyRate          = decimal.NewFromInt(50)
	DefaultCrewSize            = 1
	DefaultTurnkeyInteriorRate = decimal.RequireFromString("3.50")
	DefaultTurnkeyExteriorRate = decimal.RequireFromString("2.75")
)

// PricingScheme is a contractor's pricing scheme
type PricingScheme struct {
	// ID is the scheme id
	ID string `json:"id"`

	// Type is the scheme type as stored; may be a legacy alias
	Type string `json:"type"`

	// Rules is the scheme configuration
	Rules PricingRules `json:"pricingRules"`
}

// TierRates is a Good/Better/Best rate table
type TierRates struct {
	Good   coerce.Number `json:"good"`
	Better coerce.Number `json:"better"`
	Best   coerce.Number `json:"best"`
}

// For returns the configured rate for tier. Single never has a tier rate.
func (r TierRates) For(t Tier) (decimal.Decimal, bool) {
	var n coerce.Number
	switch t {
	case TierGood:
		n = r.Good
	case TierBetter:
		n = r.Better
	case TierBest:
		n = r.Best
	default:
		return decimal.Zero, false
	}
	if !n.Valid || !n.Value.IsPositive() {
		return decimal.Zero, false
	}
	return n.Value, true
}

// IsEmpty reports whether no tier has a rate
func (r TierRates) IsEmpty() bool {
	return !r.Good.Valid && !r.Better.Valid && !r.Best.Valid
}

// TurnkeyRates are per-square-foot home rates by job type
type TurnkeyRates struct {
	Interior coerce.Number `json:"interior"`
	Exterior coerce.Number `json:"exterior"`
}

// MaterialDefaults are scheme-level paint defaults
type MaterialDefaults struct {
	CostPerGallon coerce.Number `json:"costPerGallon"`
	Coverage      coerce.Number `json:"coverage"`
	Coats         coerce.Number `json:"coats"`
}

// Or fills absent fields from fallback
func (m MaterialDefaults) Or(fallback MaterialDefaults) MaterialDefaults {
	if !m.CostPerGallon.Valid {
		m.CostPerGallon = fallback.CostPerGallon
	}
	if !m.Coverage.Valid {
		m.Coverage = fallback.Coverage
	}
	if !m.Coats.Valid {
		m.Coats = fallback.Coats
	}
	return m
}

// ResolvedMaterialDefaults are material defaults with built-ins applied
type ResolvedMaterialDefaults struct {
	CostPerGallon decimal.Decimal
	Coverage      decimal.Decimal
	Coats         int
}

// Resolve applies built-in defaults
func (m MaterialDefaults) Resolve() ResolvedMaterialDefaults {
	coats := coerce.Int(m.Coats, DefaultCoats)
	if coats < 1 {
		coats = DefaultCoats
	}
	return ResolvedMaterialDefaults{
		CostPerGallon: coerce.Positive(m.CostPerGallon, DefaultCostPerGallon),
		Coverage:      coerce.Positive(m.Coverage, DefaultCoverage),
		Coats:         coats,
	}
}

// PricingRules is the free-form scheme configuration
type PricingRules struct {
	// LaborRates overrides tenant labor rates, keyed by lower-cased category name
	LaborRates map[string]coerce.Number `json:"laborRates,omitempty"`

	// TierLaborRates are GBB labor overrides, keyed by lower-cased category name
	TierLaborRates map[string]TierRates `json:"tierLaborRates,omitempty"`

	// TurnkeyRates are the turnkey base rates
	TurnkeyRates TurnkeyRates `json:"turnkeyRates"`

	// TierRates is the GBB turnkey rate table; nil means no table
	TierRates *TierRates `json:"tierRates,omitempty"`

	// MaterialDefaults are the paint defaults
	MaterialDefaults MaterialDefaults `json:"materialDefaults"`

	// TaxMode optionally pins the tax base for this scheme
	TaxMode TaxMode `json:"taxMode,omitempty"`

	// GallonRounding optionally pins the gallon rounding for this scheme
	GallonRounding GallonRounding `json:"gallonRounding,omitempty"`
}

// LaborRate returns the scheme override for a category name
func (r PricingRules) LaborRate(categoryName string) (decimal.Decimal, bool) {
	n, ok := r.LaborRates[strings.ToLower(strings.TrimSpace(categoryName))]
	if !ok || !n.Valid || n.Value.IsNegative() {
		return decimal.Zero, false
	}
	return n.Value, true
}

// TierLaborRate returns the GBB labor override for a category name
func (r PricingRules) TierLaborRate(categoryName string, t Tier) (decimal.Decimal, bool) {
	rates, ok := r.TierLaborRates[strings.ToLower(strings.TrimSpace(categoryName))]
	if !ok {
		return decimal.Zero, false
	}
	return rates.For(t)
}

// ContractorSettings is the tenant settings record as stored. Every
// numeric field may be absent; Resolve applies defaults.
type ContractorSettings struct {
	TenantID string `json:"tenantId"`

	LaborMarkupPercent    coerce.Number `json:"laborMarkupPercent"`
	MaterialMarkupPercent coerce.Number `json:"materialMarkupPercent"`
	OverheadPercent       coerce.Number `json:"overheadPercent"`
	NetProfitPercent      coerce.Number `json:"netProfitPercent"`
	TaxRatePercentage     coerce.Number `json:"taxRatePercentage"`
	DepositPercentage     coerce.Number `json:"depositPercentage"`

	TurnkeyInteriorRate coerce.Number `json:"turnkeyInteriorRate"`
	TurnkeyExteriorRate coerce.Number `json:"turnkeyExteriorRate"`

	// ProductionRates is quantity per labor hour by category
	ProductionRates map[catalog.Category]coerce.Number `json:"productionRates,omitempty"`

	// FlatRatePrices is price per unit by category
	FlatRatePrices map[catalog.Category]coerce.Number `json:"flatRatePrices,omitempty"`

	HourlyRate coerce.Number `json:"hourlyRate"`
	CrewSize   coerce.Number `json:"crewSize"`
}

// ResolvedSettings is ContractorSettings with every default applied
type ResolvedSettings struct {
	TenantID string

	LaborMarkupPercent    decimal.Decimal
	MaterialMarkupPercent decimal.Decimal
	OverheadPercent       decimal.Decimal
	NetProfitPercent      decimal.Decimal
	TaxRatePercent        decimal.Decimal
	DepositPercent        decimal.Decimal

	TurnkeyInteriorRate decimal.Decimal
	TurnkeyExteriorRate decimal.Decimal

	ProductionRates map[catalog.Category]decimal.Decimal
	FlatRatePrices  map[catalog.Category]decimal.Decimal

	HourlyRate decimal.Decimal
	CrewSize   decimal.Decimal
}

// Resolve coerces every field once. Category tables start from the
// catalog defaults and are overridden by positive tenant values.
func (s ContractorSettings) Resolve() ResolvedSettings {
	crew := coerce.Int(s.CrewSize, DefaultCrewSize)
	if crew < 1 {
		crew = DefaultCrewSize
	}

	return ResolvedSettings{
		TenantID:              s.TenantID,
		LaborMarkupPercent:    coerce.Percent(s.LaborMarkupPercent, decimal.Zero),
		MaterialMarkupPercent: coerce.Percent(s.MaterialMarkupPercent, decimal.Zero),
		OverheadPercent:       coerce.Percent(s.OverheadPercent, decimal.Zero),
		NetProfitPercent:      coerce.Percent(s.NetProfitPercent, decimal.Zero),
		TaxRatePercent:        coerce.Percent(s.TaxRatePercentage, decimal.Zero),
		DepositPercent:        coerce.Clamp(coerce.Percent(s.DepositPercentage, decimal.Zero), decimal.Zero, decimal.NewFromInt(100)),
		TurnkeyInteriorRate:   coerce.Positive(s.TurnkeyInteriorRate, DefaultTurnkeyInteriorRate),
		TurnkeyExteriorRate:   coerce.Positive(s.TurnkeyExteriorRate, DefaultTurnkeyExteriorRate),
		ProductionRates:       mergeRates(catalog.Default.ProductionRates(), s.ProductionRates),
		FlatRatePrices:        mergeRates(catalog.Default.FlatRates(), s.FlatRatePrices),
		HourlyRate:            coerce.Positive(s.HourlyRate, DefaultHourlyRate),
		CrewSize:              decimal.NewFromInt(int64(crew)),
	}
}

func mergeRates(defaults map[catalog.Category]decimal.Decimal, overrides map[catalog.Category]coerce.Number) map[catalog.Category]decimal.Decimal {
	for k, n := range overrides {
		if n.Valid && n.Value.IsPositive() {
			defaults[k] = n.Value
		}
	}
	return defaults
}
