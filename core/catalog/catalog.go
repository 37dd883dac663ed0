// Package catalog - Authoritative painting surface catalog
// Defines the canonical work categories, how free-form category names map
// onto them, and the default production/flat-rate tables keyed by them.
// The classification table is built once; rate lookups never match strings.
package catalog

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Category is the canonical key for a kind of painting work
type Category string

const (
	InteriorWalls Category = "interior_walls"
	ExteriorWalls Category = "exterior_walls"
	Ceilings      Category = "ceilings"
	InteriorTrim  Category = "interior_trim"
	ExteriorTrim  Category = "exterior_trim"
	Doors         Category = "doors"
	Windows       Category = "windows"
	Cabinets      Category = "cabinets"
	Siding        Category = "siding"
	SoffitFascia  Category = "soffit_fascia"
	Gutters       Category = "gutters"
	Deck          Category = "deck"
	Fence         Category = "fence"
	Other         Category = "other"
)

// Shape selects the formula used to derive a quantity from room dimensions
type Shape int

const (
	// ShapeArea is length x width
	ShapeArea Shape = iota
	// ShapeWall is the perimeter times the height
	ShapeWall
	// ShapeCeiling is length x width
	ShapeCeiling
	// ShapePerimeter is the perimeter, used for trim runs
	ShapePerimeter
)

// String returns string representation
func (s Shape) String() string {
	switch s {
	case ShapeWall:
		return "wall"
	case ShapeCeiling:
		return "ceiling"
	case ShapePerimeter:
		return "perimeter"
	default:
		return "area"
	}
}

// Entry is a catalog entry for a category
type Entry struct {
	Category Category
	Label    string
	// Surface is the product-set surface type this category consumes paint for
	Surface string
	Shape   Shape
	// ProductionRate is the default quantity processed per labor hour
	ProductionRate decimal.Decimal
	// FlatRate is the default price per unit under flat-rate pricing;
	// zero means the category has no flat-rate price
	FlatRate decimal.Decimal
}

// rule matches a lower-cased category name. All of `all` must appear and
// at least one of `oneOf` (when non-empty).
type rule struct {
	all      []string
	oneOf    []string
	category Category
}

func (r rule) matches(name string) bool {
	for _, s := range r.all {
		if !strings.Contains(name, s) {
			return false
		}
	}
	if len(r.oneOf) == 0 {
		return true
	}
	for _, s := range r.oneOf {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// Catalog is the category catalog
type Catalog struct {
	entries map[Category]*Entry
	rules   []rule
}

// NewCatalog creates a new catalog
func NewCatalog() *Catalog {
	return &Catalog{
		entries: make(map[Category]*Entry),
	}
}

// Register adds a category to the catalog
func (c *Catalog) Register(entry Entry) {
	c.entries[entry.Category] = &entry
}

// Match appends a classification rule. Rules are evaluated in
// registration order and the first match wins.
func (c *Catalog) Match(category Category, all []string, oneOf ...string) {
	c.rules = append(c.rules, rule{all: all, oneOf: oneOf, category: category})
}

// Get returns an entry
func (c *Catalog) Get(category Category) (*Entry, bool) {
	e, ok := c.entries[category]
	return e, ok
}

// Entry returns the entry for category, or the Other entry.
func (c *Catalog) Entry(category Category) *Entry {
	if e, ok := c.entries[category]; ok {
		return e
	}
	return c.entries[Other]
}

// Classify maps a free-form category name to a Category.
func (c *Catalog) Classify(name string) Category {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return Other
	}
	if _, ok := c.entries[Category(n)]; ok {
		return Category(n)
	}
	for _, r := range c.rules {
		if r.matches(n) {
			return r.category
		}
	}
	return Other
}

// Categories returns all registered categories, sorted.
func (c *Catalog) Categories() []Category {
	out := make([]Category, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// ProductionRates returns the default production table
func (c *Catalog) ProductionRates() map[Category]decimal.Decimal {
	out := make(map[Category]decimal.Decimal, len(c.entries))
	for k, e := range c.entries {
		if e.ProductionRate.IsPositive() {
			out[k] = e.ProductionRate
		}
	}
	return out
}

// FlatRates returns the default flat-rate price table
func (c *Catalog) FlatRates() map[Category]decimal.Decimal {
	out := make(map[Category]decimal.Decimal, len(c.entries))
	for k, e := range c.entries {
		if e.FlatRate.IsPositive() {
			out[k] = e.FlatRate
		}
	}
	return out
}

// Valid reports whether category is registered
func (c *Catalog) Valid(category Category) bool {
	_, ok := c.entries[category]
	return ok
}

// NormalizeSurface canonicalizes a product-set surface key so that
// "Wall", "walls" and " WALLS " refer to the same surface.
func NormalizeSurface(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_", "/", "_").Replace(s)
	if alias, ok := surfaceAliases[s]; ok {
		return alias
	}
	return s
}

var surfaceAliases = map[string]string{
	"wall":           "walls",
	"interior_walls": "walls",
	"exterior_walls": "walls",
	"ceiling":        "ceilings",
	"door":           "doors",
	"window":         "windows",
	"cabinet":        "cabinets",
	"baseboards":     "trim",
	"baseboard":      "trim",
	"interior_trim":  "trim",
	"exterior_trim":  "trim",
	"soffit":         "soffit_fascia",
	"fascia":         "soffit_fascia",
	"gutter":         "gutters",
	"decks":          "deck",
	"fences":         "fence",
}

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// Default is the built-in catalog
var Default = newDefault()

func newDefault() *Catalog {
	c := NewCatalog()

	c.Register(Entry{Category: InteriorWalls, Label: "Interior walls", Surface: "walls", Shape: ShapeWall, ProductionRate: d("250"), FlatRate: d("1.50")})
	c.Register(Entry{Category: ExteriorWalls, Label: "Exterior walls", Surface: "walls", Shape: ShapeWall, ProductionRate: d("200"), FlatRate: d("1.75")})
	c.Register(Entry{Category: Ceilings, Label: "Ceilings", Surface: "ceilings", Shape: ShapeCeiling, ProductionRate: d("200"), FlatRate: d("1.25")})
	c.Register(Entry{Category: InteriorTrim, Label: "Interior trim", Surface: "trim", Shape: ShapePerimeter, ProductionRate: d("80"), FlatRate: d("1.50")})
	c.Register(Entry{Category: ExteriorTrim, Label: "Exterior trim", Surface: "trim", Shape: ShapePerimeter, ProductionRate: d("60"), FlatRate: d("2.00")})
	c.Register(Entry{Category: Doors, Label: "Doors", Surface: "doors", Shape: ShapeArea, ProductionRate: d("2"), FlatRate: d("85")})
	c.Register(Entry{Category: Windows, Label: "Windows", Surface: "windows", Shape: ShapeArea, ProductionRate: d("3"), FlatRate: d("60")})
	c.Register(Entry{Category: Cabinets, Label: "Cabinets", Surface: "cabinets", Shape: ShapeArea, ProductionRate: d("1.5"), FlatRate: d("75")})
	c.Register(Entry{Category: Siding, Label: "Siding", Surface: "siding", Shape: ShapeWall, ProductionRate: d("180"), FlatRate: d("2.50")})
	c.Register(Entry{Category: SoffitFascia, Label: "Soffit & fascia", Surface: "soffit_fascia", Shape: ShapePerimeter, ProductionRate: d("60"), FlatRate: d("3.00")})
	c.Register(Entry{Category: Gutters, Label: "Gutters", Surface: "gutters", Shape: ShapePerimeter, ProductionRate: d("80"), FlatRate: d("2.50")})
	c.Register(Entry{Category: Deck, Label: "Deck", Surface: "deck", Shape: ShapeArea, ProductionRate: d("150"), FlatRate: d("1.75")})
	c.Register(Entry{Category: Fence, Label: "Fence", Surface: "fence", Shape: ShapeArea, ProductionRate: d("120"), FlatRate: d("1.50")})
	c.Register(Entry{Category: Other, Label: "Other", Surface: "other", Shape: ShapeArea, ProductionRate: d("200")})

	// Order matters: more specific phrases first.
	c.Match(SoffitFascia, nil, "soffit", "fascia", "eave")
	c.Match(Gutters, []string{"gutter"})
	c.Match(Deck, nil, "deck", "porch floor")
	c.Match(Fence, []string{"fence"})
	c.Match(Cabinets, []string{"cabinet"})
	c.Match(ExteriorTrim, []string{"exterior"}, "trim", "baseboard", "molding", "moulding", "casing")
	c.Match(InteriorTrim, nil, "trim", "baseboard", "molding", "moulding", "casing", "crown")
	c.Match(Doors, []string{"door"})
	c.Match(Windows, nil, "window", "shutter")
	c.Match(Siding, nil, "siding", "stucco", "brick")
	c.Match(Ceilings, []string{"ceiling"})
	c.Match(ExteriorWalls, []string{"wall", "exterior"})
	c.Match(InteriorWalls, []string{"wall"})

	c.MustValidate()
	return c
}

// Derive computes a quantity from room dimensions in feet
func (s Shape) Derive(length, width, height decimal.Decimal) decimal.Decimal {
	perimeter := length.Add(width).Mul(decimal.NewFromInt(2))
	switch s {
	case ShapeWall:
		return perimeter.Mul(height)
	case ShapePerimeter:
		return perimeter
	default:
		return length.Mul(width)
	}
}
