package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		expected Category
	}{
		{"Interior Walls", InteriorWalls},
		{"walls - interior", InteriorWalls},
		{"Accent Wall", InteriorWalls},
		{"Exterior Walls", ExteriorWalls},
		{"Ceiling", Ceilings},
		{"Vaulted ceilings", Ceilings},
		{"Baseboards", InteriorTrim},
		{"Crown molding", InteriorTrim},
		{"Exterior Trim", ExteriorTrim},
		{"Exterior door casing", ExteriorTrim},
		{"Interior Doors", Doors},
		{"Garage door", Doors},
		{"Windows", Windows},
		{"Kitchen Cabinets", Cabinets},
		{"Cabinet doors", Cabinets},
		{"Exterior Siding", Siding},
		{"Soffit", SoffitFascia},
		{"Fascia boards", SoffitFascia},
		{"Gutters", Gutters},
		{"Back deck", Deck},
		{"Fence", Fence},
		{"doors", Doors},
		{"", Other},
		{"Pressure washing", Other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Default.Classify(tt.name); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	c := NewCatalog()
	c.Register(Entry{Category: Other, Surface: "other"})
	c.Register(Entry{Category: Ceilings, Surface: "ceilings"})
	c.Register(Entry{Category: InteriorWalls, Surface: "walls"})
	c.Match(Ceilings, []string{"ceiling"})
	c.Match(InteriorWalls, []string{"wall"})

	if got := c.Classify("ceiling and wall"); got != Ceilings {
		t.Errorf("expected first registered rule to win, got %s", got)
	}
}

func TestNormalizeSurface(t *testing.T) {
	tests := map[string]string{
		" Walls ":        "walls",
		"wall":           "walls",
		"Ceiling":        "ceilings",
		"soffit":         "soffit_fascia",
		"Soffit-Fascia":  "soffit_fascia",
		"Interior Trim":  "trim",
		"kitchen island": "kitchen_island",
	}
	for in, expected := range tests {
		if got := NormalizeSurface(in); got != expected {
			t.Errorf("NormalizeSurface(%q): expected %q, got %q", in, expected, got)
		}
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	if errs := Default.Validate(DefaultValidationRules()); len(errs) != 0 {
		t.Fatalf("expected default catalog to validate, got %v", errs)
	}
	if rate := Default.FlatRates()[Doors]; !rate.Equal(decimal.NewFromInt(85)) {
		t.Errorf("expected door flat rate 85, got %s", rate)
	}
	if _, ok := Default.FlatRates()[Other]; ok {
		t.Error("expected Other to have no flat rate")
	}
}

func TestValidateRateTable(t *testing.T) {
	errs := Default.ValidateRateTable("production_rates", map[Category]decimal.Decimal{
		InteriorWalls:      decimal.NewFromInt(300),
		Category("garage"): decimal.NewFromInt(10),
		Doors:              decimal.NewFromInt(-1),
	})
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
}

func TestInvalidCatalogPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for catalog without fallback category")
		}
	}()
	c := NewCatalog()
	c.Register(Entry{Category: Doors, Surface: "doors"})
	c.MustValidate()
}
