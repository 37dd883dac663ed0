// Package types - Product configurations
package types

import "paint-quote/core/coerce"

// Sheen is a finish option of a product with its own price
type Sheen struct {
	SheenName string        `json:"sheenName"`
	Price     coerce.Number `json:"price"`
	Coverage  coerce.Number `json:"coverage"`
}

// ProductConfig is a paint product as configured by the contractor
type ProductConfig struct {
	// ID is the product configuration id
	ID ProductID `json:"id"`

	// Name is the display name
	Name string `json:"name"`

	// Sheens lists available finishes; the first is the priced one
	Sheens []Sheen `json:"sheens"`

	// DefaultCoats is the manufacturer-recommended coat count
	DefaultCoats int `json:"defaultCoats"`

	// CoverageSqftPerGal is the spread rate per coat
	CoverageSqftPerGal coerce.Number `json:"coverageSqftPerGal"`
}

// PrimarySheen returns the first sheen, if any
func (p ProductConfig) PrimarySheen() (Sheen, bool) {
	if len(p.Sheens) == 0 {
		return Sheen{}, false
	}
	return p.Sheens[0], true
}
