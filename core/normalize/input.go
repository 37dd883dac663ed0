// Package normalize turns the product-set shapes accepted at the API
// boundary into one canonical flat list, and cross-references that list
// with the quote's areas.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"paint-quote/core/coerce"
	"paint-quote/core/types"
	"paint-quote/internal/errors"
)

// Shape identifies which product-set layout an Input holds
type Shape int

const (
	// ShapeEmpty is a missing or empty product-set payload
	ShapeEmpty Shape = iota
	// ShapeCanonical is a flat array of entries exposing surfaceType
	ShapeCanonical
	// ShapeSurfaceKeyed is an object keyed by surface type (turnkey)
	ShapeSurfaceKeyed
	// ShapeAreaKeyed is an object keyed by area id with nested surfaces
	ShapeAreaKeyed
)

// String returns string representation
func (s Shape) String() string {
	switch s {
	case ShapeCanonical:
		return "canonical"
	case ShapeSurfaceKeyed:
		return "surface_keyed"
	case ShapeAreaKeyed:
		return "area_keyed"
	default:
		return "empty"
	}
}

// Input is a decoded product-set payload. Exactly one of the payload
// fields is set, selected by Shape.
type Input struct {
	Shape        Shape
	Entries      []types.ProductSetEntry
	SurfaceKeyed map[string]LegacySurface
	AreaKeyed    map[string]LegacyArea
}

// Canonical wraps already-canonical entries
func Canonical(entries []types.ProductSetEntry) Input {
	if len(entries) == 0 {
		return Input{Shape: ShapeEmpty}
	}
	return Input{Shape: ShapeCanonical, Entries: entries}
}

// LegacySurface is one surface selection in the object-keyed layouts.
// Tiers may sit at the top level or under "products".
type LegacySurface struct {
	Products   types.TierMap
	Quantity   coerce.Number
	Unit       types.Unit
	Overridden bool
}

var tierKeys = []types.Tier{types.TierGood, types.TierBetter, types.TierBest, types.TierSingle}

// UnmarshalJSON decodes either tier layout
func (s *LegacySurface) UnmarshalJSON(data []byte) error {
	var raw struct {
		Products   types.TierMap    `json:"products"`
		Quantity   coerce.Number    `json:"quantity"`
		Unit       types.Unit       `json:"unit"`
		Overridden bool             `json:"overridden"`
		Good       *types.ProductID `json:"good"`
		Better     *types.ProductID `json:"better"`
		Best       *types.ProductID `json:"best"`
		Single     *types.ProductID `json:"single"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	products := raw.Products
	if products == nil {
		products = types.TierMap{}
	}
	for i, id := range []*types.ProductID{raw.Good, raw.Better, raw.Best, raw.Single} {
		if id == nil {
			continue
		}
		if _, ok := products[tierKeys[i]]; !ok {
			products[tierKeys[i]] = *id
		}
	}
	*s = LegacySurface{
		Products:   products,
		Quantity:   raw.Quantity,
		Unit:       raw.Unit,
		Overridden: raw.Overridden,
	}
	return nil
}

// LegacyArea is one area in the area-keyed layout
type LegacyArea struct {
	AreaName string                   `json:"areaName"`
	Name     string                   `json:"name"`
	Surfaces map[string]LegacySurface `json:"surfaces"`
}

// DisplayName returns areaName, falling back to name
func (a LegacyArea) DisplayName() string {
	if a.AreaName != "" {
		return a.AreaName
	}
	return a.Name
}

// Decode resolves the payload shape once. Strings, scalars and arrays
// without surfaceType are rejected with a validation error.
func Decode(data []byte) (Input, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Input{Shape: ShapeEmpty}, nil
	}

	switch data[0] {
	case '[':
		return decodeArray(data)
	case '{':
		return decodeObject(data)
	case '"':
		return Input{}, invalid("product sets must be an array or object, got a JSON-encoded string", nil)
	default:
		return Input{}, invalid(fmt.Sprintf("product sets must be an array or object, got %q", truncate(data)), nil)
	}
}

func decodeArray(data []byte) (Input, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return Input{}, invalid("malformed product set array", err)
	}
	if len(items) == 0 {
		return Input{Shape: ShapeEmpty}, nil
	}

	var first map[string]json.RawMessage
	if err := json.Unmarshal(items[0], &first); err != nil {
		return Input{}, invalid("product set array elements must be objects", err)
	}
	if _, ok := first["surfaceType"]; !ok {
		return Input{}, invalid("product set array elements must expose surfaceType", nil)
	}

	var entries []types.ProductSetEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return Input{}, invalid("malformed product set entry", err)
	}
	return Input{Shape: ShapeCanonical, Entries: entries}, nil
}

func decodeObject(data []byte) (Input, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return Input{}, invalid("malformed product set object", err)
	}
	if len(obj) == 0 {
		return Input{Shape: ShapeEmpty}, nil
	}

	nested, flat := 0, 0
	for _, v := range obj {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(v, &probe); err != nil {
			return Input{}, invalid("product set object values must be objects", err)
		}
		if _, ok := probe["surfaces"]; ok {
			nested++
		} else {
			flat++
		}
	}

	switch {
	case nested > 0 && flat > 0:
		return Input{}, invalid("product set object mixes area-keyed and surface-keyed values", nil)
	case nested > 0:
		var areas map[string]LegacyArea
		if err := json.Unmarshal(data, &areas); err != nil {
			return Input{}, invalid("malformed area-keyed product sets", err)
		}
		return Input{Shape: ShapeAreaKeyed, AreaKeyed: areas}, nil
	default:
		var surfaces map[string]LegacySurface
		if err := json.Unmarshal(data, &surfaces); err != nil {
			return Input{}, invalid("malformed surface-keyed product sets", err)
		}
		return Input{Shape: ShapeSurfaceKeyed, SurfaceKeyed: surfaces}, nil
	}
}

// UnmarshalJSON lets request structs decode product sets in one pass
func (in *Input) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*in = decoded
	return nil
}

// MarshalJSON writes the canonical form
func (in Input) MarshalJSON() ([]byte, error) {
	entries := Normalize(in)
	if entries == nil {
		entries = []types.ProductSetEntry{}
	}
	return json.Marshal(entries)
}

func invalid(msg string, cause error) error {
	if cause != nil {
		return errors.Wrap(errors.TypeValidation, msg, cause).WithContext("field", "productSets")
	}
	return errors.Validation("productSets", msg)
}

func truncate(data []byte) string {
	if len(data) > 32 {
		return string(data[:32]) + "..."
	}
	return string(data)
}
