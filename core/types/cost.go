// Package types - Pricing result types
package types

import (
	"github.com/shopspring/decimal"

	"paint-quote/core/catalog"
)

// RateSource records which table a labor rate came from
type RateSource string

const (
	RateTierOverride   RateSource = "tier_override"
	RateSchemeOverride RateSource = "scheme_override"
	RateLaborTable     RateSource = "labor_rate_table"
	RateProduction     RateSource = "production_table"
	RateFlatTable      RateSource = "flat_rate_table"
	RateInline         RateSource = "inline"
	RateTurnkey        RateSource = "turnkey"
)

// LaborLine is the priced labor of one work item
type LaborLine struct {
	// Quantity is the priced quantity
	Quantity decimal.Decimal `json:"quantity"`

	// Unit is the unit of Quantity
	Unit Unit `json:"unit"`

	// QuantityDerived is true when Quantity came from dimensions
	QuantityDerived bool `json:"quantityDerived,omitempty"`

	// Rate is the per-unit (or per-hour) rate applied
	Rate decimal.Decimal `json:"rate"`

	// RateSource records where Rate came from
	RateSource RateSource `json:"rateSource"`

	// Hours is set for production-based pricing
	Hours *decimal.Decimal `json:"hours,omitempty"`

	// Cost is the labor cost
	Cost decimal.Decimal `json:"cost"`

	// Formula describes how the cost was calculated
	Formula string `json:"formula"`
}

// MaterialLine is the priced paint for one item or one surface
type MaterialLine struct {
	SurfaceType   string    `json:"surfaceType"`
	ProductID     ProductID `json:"productId,omitempty"`
	ProductName   string    `json:"productName,omitempty"`
	RequestedTier Tier      `json:"requestedTier"`
	ResolvedTier  Tier      `json:"resolvedTier,omitempty"`

	// Unconfigured is true when no product could be resolved; Cost is then zero
	Unconfigured       bool   `json:"unconfigured,omitempty"`
	UnconfiguredReason string `json:"unconfiguredReason,omitempty"`

	Quantity       decimal.Decimal `json:"quantity"`
	PricePerGallon decimal.Decimal `json:"pricePerGallon"`
	Coverage       decimal.Decimal `json:"coverage"`
	Coats          int             `json:"coats"`
	RawGallons     decimal.Decimal `json:"rawGallons"`
	Gallons        decimal.Decimal `json:"gallons"`
	Rounding       GallonRounding  `json:"rounding"`
	Cost           decimal.Decimal `json:"cost"`
	Formula        string          `json:"formula,omitempty"`
}

// ItemBreakdown is the cost trace of one labor item
type ItemBreakdown struct {
	ItemID       string           `json:"itemId,omitempty"`
	CategoryName string           `json:"categoryName"`
	Category     catalog.Category `json:"category"`
	Labor        LaborLine        `json:"labor"`
	Material     *MaterialLine    `json:"material,omitempty"`
}

// Total returns labor plus material cost
func (b ItemBreakdown) Total() decimal.Decimal {
	if b.Material == nil {
		return b.Labor.Cost
	}
	return b.Labor.Cost.Add(b.Material.Cost)
}

// AreaBreakdown groups item costs by area
type AreaBreakdown struct {
	AreaID        string          `json:"areaId"`
	AreaName      string          `json:"areaName"`
	Items         []ItemBreakdown `json:"items"`
	LaborTotal    decimal.Decimal `json:"laborTotal"`
	MaterialTotal decimal.Decimal `json:"materialTotal"`
}

// Add appends an item and updates totals
func (a *AreaBreakdown) Add(item ItemBreakdown) {
	a.Items = append(a.Items, item)
	a.LaborTotal = a.LaborTotal.Add(item.Labor.Cost)
	if item.Material != nil {
		a.MaterialTotal = a.MaterialTotal.Add(item.Material.Cost)
	}
}

// TurnkeyDetail explains a turnkey rate
type TurnkeyDetail struct {
	HomeSqft            decimal.Decimal `json:"homeSqft"`
	JobType             JobType         `json:"jobType"`
	BaseRate            decimal.Decimal `json:"baseRate"`
	Tier                Tier            `json:"tier"`
	TierRate            decimal.Decimal `json:"tierRate"`
	TierOverride        bool            `json:"tierOverride"`
	Condition           Condition       `json:"condition"`
	ConditionMultiplier decimal.Decimal `json:"conditionMultiplier"`
	AdjustedRate        decimal.Decimal `json:"adjustedRate"`
	BaseTotal           decimal.Decimal `json:"baseTotal"`
	LaborShare          decimal.Decimal `json:"laborShare"`
	MaterialShare       decimal.Decimal `json:"materialShare"`
}

// AddOn is a prep or add-on cost that joins the subtotal before overhead
type AddOn struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// PricingResult is the fully layered quote price
type PricingResult struct {
	Model            Model `json:"model"`
	Tier             Tier  `json:"tier"`
	IncludeMaterials bool  `json:"includeMaterials"`

	LaborTotal    decimal.Decimal `json:"laborTotal"`
	MaterialTotal decimal.Decimal `json:"materialTotal"`

	LaborMarkup        decimal.Decimal `json:"laborMarkup"`
	MaterialMarkup     decimal.Decimal `json:"materialMarkup"`
	LaborWithMarkup    decimal.Decimal `json:"laborWithMarkup"`
	MaterialWithMarkup decimal.Decimal `json:"materialWithMarkup"`
	AddOnTotal         decimal.Decimal `json:"addOnTotal"`

	SubtotalBeforeOverhead decimal.Decimal `json:"subtotalBeforeOverhead"`
	Overhead               decimal.Decimal `json:"overhead"`
	SubtotalBeforeProfit   decimal.Decimal `json:"subtotalBeforeProfit"`
	ProfitAmount           decimal.Decimal `json:"profitAmount"`
	Subtotal               decimal.Decimal `json:"subtotal"`

	TaxMode TaxMode         `json:"taxMode"`
	Tax     decimal.Decimal `json:"tax"`
	Total   decimal.Decimal `json:"total"`
	Deposit decimal.Decimal `json:"deposit"`
	Balance decimal.Decimal `json:"balance"`

	Breakdown         []AreaBreakdown `json:"breakdown"`
	SurfaceMaterials  []MaterialLine  `json:"surfaceMaterials,omitempty"`
	Skipped           []SkippedItem   `json:"skipped,omitempty"`
	UnconfiguredCount int             `json:"unconfiguredCount"`
	Turnkey           *TurnkeyDetail  `json:"turnkey,omitempty"`
}
