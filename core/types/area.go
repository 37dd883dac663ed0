// Package types - Areas, labor items and product sets
package types

import (
	"strconv"

	"github.com/shopspring/decimal"

	"paint-quote/core/catalog"
	"paint-quote/core/coerce"
)

// Area is a room or exterior zone on a quote
type Area struct {
	// ID identifies the area within the quote
	ID string `json:"id"`

	// Name is the display name (e.g. "Living Room")
	Name string `json:"name"`

	// Items are the work items in this area, in author order
	Items []LaborItem `json:"items"`
}

// Key identifies the area within a quote: its ID, or a positional key
// for areas sent without one. index is the area's position in the quote.
func (a Area) Key(index int) string {
	if a.ID != "" {
		return a.ID
	}
	return "area-" + strconv.Itoa(index+1)
}

// Dimensions are room measurements in feet
type Dimensions struct {
	Length coerce.Number `json:"length"`
	Width  coerce.Number `json:"width"`
	Height coerce.Number `json:"height"`
}

// LaborItem is a single line of work within an area
type LaborItem struct {
	// ID identifies the item within the area
	ID string `json:"id,omitempty"`

	// CategoryName is the free-form category (e.g. "Interior Walls")
	CategoryName string `json:"categoryName"`

	// Category optionally pins the canonical category, bypassing
	// classification of CategoryName
	Category catalog.Category `json:"category,omitempty"`

	// Quantity is the measured amount; absent means derive from Dimensions
	Quantity coerce.Number `json:"quantity"`

	// MeasurementUnit is the unit of Quantity
	MeasurementUnit Unit `json:"measurementUnit"`

	// LaborRate is the inline fallback rate
	LaborRate coerce.Number `json:"laborRate"`

	// NumberOfCoats is the number of coats; 0 means use product/default
	NumberOfCoats int `json:"numberOfCoats"`

	// Selected items are priced; unselected items are excluded entirely
	Selected bool `json:"selected"`

	// Dimensions derive Quantity when it is absent
	Dimensions *Dimensions `json:"dimensions,omitempty"`
}

// Label returns the category name, or the canonical category
func (i LaborItem) Label() string {
	if i.CategoryName != "" {
		return i.CategoryName
	}
	return string(i.Category)
}

// ProductSetEntry is the canonical product selection record
type ProductSetEntry struct {
	// AreaID scopes the entry to an area; empty means a global selection
	AreaID string `json:"areaId,omitempty"`

	// AreaName is carried for display
	AreaName string `json:"areaName,omitempty"`

	// SurfaceType is the canonical surface key (see catalog.NormalizeSurface)
	SurfaceType string `json:"surfaceType"`

	// Products maps tier to product id
	Products TierMap `json:"products"`

	// Quantity optionally overrides the area quantity for this surface
	Quantity coerce.Number `json:"quantity"`

	// Unit is the unit of Quantity
	Unit Unit `json:"unit,omitempty"`

	// Overridden marks a quantity entered by hand; enrichment never replaces it
	Overridden bool `json:"overridden,omitempty"`
}

// IsGlobal reports whether the entry is not area-scoped
func (e ProductSetEntry) IsGlobal() bool {
	return e.AreaID == ""
}

// SkipReason explains why an item did not contribute to a quote
type SkipReason string

const (
	// SkipNoQuantity means the quantity was zero, negative or underivable
	SkipNoQuantity SkipReason = "no_quantity"
	// SkipNoProductSelection means no product set covers the item's surface
	SkipNoProductSelection SkipReason = "no_product_selection"
)

// SkippedItem records an item that was left out, and why
type SkippedItem struct {
	AreaID       string     `json:"areaId,omitempty"`
	AreaName     string     `json:"areaName,omitempty"`
	ItemID       string     `json:"itemId,omitempty"`
	CategoryName string     `json:"categoryName"`
	SurfaceType  string     `json:"surfaceType,omitempty"`
	Reason       SkipReason `json:"reason"`
}

// Classify returns the pinned category, or classifies CategoryName
func (i LaborItem) Classify(c *catalog.Catalog) catalog.Category {
	if i.Category != "" && c.Valid(i.Category) {
		return i.Category
	}
	return c.Classify(i.CategoryName)
}

// EffectiveQuantity returns the item quantity, deriving it from
// dimensions when absent or zero. Derived quantities are rounded up to a
// whole unit. ok is false for negative or underivable quantities.
func (i LaborItem) EffectiveQuantity(c *catalog.Catalog) (qty decimal.Decimal, derived bool, ok bool) {
	if i.Quantity.Valid && !i.Quantity.Value.IsZero() {
		return i.Quantity.Value, false, i.Quantity.Value.IsPositive()
	}
	if i.Dimensions == nil {
		return decimal.Zero, false, false
	}
	d := i.Dimensions
	if !d.Length.Valid || !d.Width.Valid {
		return decimal.Zero, false, false
	}
	shape := c.Entry(i.Classify(c)).Shape
	if shape == catalog.ShapeWall && !d.Height.Valid {
		return decimal.Zero, false, false
	}
	qty = shape.Derive(d.Length.Value, d.Width.Value, d.Height.Value).Ceil()
	return qty, true, qty.IsPositive()
}
