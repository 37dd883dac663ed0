package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"paint-quote/core/catalog"
	"paint-quote/core/coerce"
	"paint-quote/internal/errors"
)

func TestParseUnit(t *testing.T) {
	tests := []struct {
		input    string
		expected Unit
		ok       bool
	}{
		{"sqft", UnitSqft, true},
		{"Sq Ft", UnitSqft, true},
		{"LF", UnitLinearFoot, true},
		{"each", UnitEach, true},
		{"hrs", UnitHour, true},
		{"gallon", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseUnit(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("expected (%s, %v), got (%s, %v)", tt.expected, tt.ok, got, ok)
			}
		})
	}
}

func TestProductIDUnmarshal(t *testing.T) {
	var m TierMap
	if err := json.Unmarshal([]byte(`{"good": 12, "better": "abc", "best": null}`), &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m[TierGood] != "12" {
		t.Errorf("expected numeric id 12, got %q", m[TierGood])
	}
	if m[TierBetter] != "abc" {
		t.Errorf("expected abc, got %q", m[TierBetter])
	}
	if !m[TierBest].IsZero() {
		t.Errorf("expected null id to be zero, got %q", m[TierBest])
	}
	if !ProductID("0").IsZero() {
		t.Error("expected legacy 0 to be zero")
	}
}

func TestTierRatesFor(t *testing.T) {
	rates := TierRates{Good: coerce.FromInt(3), Best: coerce.FromInt(0)}

	if r, ok := rates.For(TierGood); !ok || !r.Equal(decimal.NewFromInt(3)) {
		t.Errorf("expected good rate 3, got %s (%v)", r, ok)
	}
	if _, ok := rates.For(TierBest); ok {
		t.Error("expected zero best rate to be unconfigured")
	}
	if _, ok := rates.For(TierSingle); ok {
		t.Error("expected single to never have a tier rate")
	}
}

func TestSettingsResolveDefaults(t *testing.T) {
	s := ContractorSettings{
		TenantID:          "t1",
		DepositPercentage: coerce.FromInt(150),
		OverheadPercent:   coerce.Parse("NaN"),
		CrewSize:          coerce.FromInt(0),
		ProductionRates: map[catalog.Category]coerce.Number{
			catalog.InteriorWalls: coerce.FromInt(300),
			catalog.Ceilings:      coerce.FromInt(-5),
		},
	}
	r := s.Resolve()

	if !r.DepositPercent.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected deposit clamped to 100, got %s", r.DepositPercent)
	}
	if !r.OverheadPercent.IsZero() {
		t.Errorf("expected NaN overhead to default to 0, got %s", r.OverheadPercent)
	}
	if !r.CrewSize.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected crew size 1, got %s", r.CrewSize)
	}
	if !r.HourlyRate.Equal(DefaultHourlyRate) {
		t.Errorf("expected default hourly rate, got %s", r.HourlyRate)
	}
	if !r.ProductionRates[catalog.InteriorWalls].Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected tenant production rate 300, got %s", r.ProductionRates[catalog.InteriorWalls])
	}
	if !r.ProductionRates[catalog.Ceilings].Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected catalog ceiling rate 200, got %s", r.ProductionRates[catalog.Ceilings])
	}
	if !r.FlatRatePrices[catalog.Doors].Equal(decimal.NewFromInt(85)) {
		t.Errorf("expected door flat rate 85, got %s", r.FlatRatePrices[catalog.Doors])
	}
}

func TestPricingRulesLookupIsCaseInsensitive(t *testing.T) {
	rules := PricingRules{
		LaborRates: map[string]coerce.Number{"interior walls": coerce.NewNumber(1.25)},
		TierLaborRates: map[string]TierRates{
			"interior walls": {Best: coerce.NewNumber(2)},
		},
	}
	if r, ok := rules.LaborRate(" Interior Walls "); !ok || !r.Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("expected 1.25, got %s (%v)", r, ok)
	}
	if r, ok := rules.TierLaborRate("INTERIOR WALLS", TierBest); !ok || !r.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected 2, got %s (%v)", r, ok)
	}
}

func TestAreaBreakdownAdd(t *testing.T) {
	var a AreaBreakdown
	a.Add(ItemBreakdown{Labor: LaborLine{Cost: decimal.NewFromInt(100)}})
	a.Add(ItemBreakdown{
		Labor:    LaborLine{Cost: decimal.NewFromInt(50)},
		Material: &MaterialLine{Cost: decimal.NewFromInt(35)},
	})
	if !a.LaborTotal.Equal(decimal.NewFromInt(150)) {
		t.Errorf("expected labor 150, got %s", a.LaborTotal)
	}
	if !a.MaterialTotal.Equal(decimal.NewFromInt(35)) {
		t.Errorf("expected material 35, got %s", a.MaterialTotal)
	}
	if !a.Items[1].Total().Equal(decimal.NewFromInt(85)) {
		t.Errorf("expected item total 85, got %s", a.Items[1].Total())
	}
}

func TestEffectiveQuantity(t *testing.T) {
	dims := &Dimensions{Length: coerce.NewNumber(12), Width: coerce.NewNumber(10.5), Height: coerce.NewNumber(8)}
	tests := []struct {
		name     string
		item     LaborItem
		expected int64
		derived  bool
		ok       bool
	}{
		{"explicit quantity", LaborItem{CategoryName: "Walls", Quantity: coerce.FromInt(400), Dimensions: dims}, 400, false, true},
		{"walls from dimensions", LaborItem{CategoryName: "Interior Walls", Dimensions: dims}, 360, true, true},
		{"ceiling from dimensions", LaborItem{CategoryName: "Ceiling", Dimensions: dims}, 126, true, true},
		{"trim from dimensions", LaborItem{CategoryName: "Baseboards", Dimensions: dims}, 45, true, true},
		{"zero quantity derives", LaborItem{CategoryName: "Ceiling", Quantity: coerce.FromInt(0), Dimensions: dims}, 126, true, true},
		{"negative quantity", LaborItem{CategoryName: "Walls", Quantity: coerce.FromInt(-3)}, -3, false, false},
		{"nothing to derive from", LaborItem{CategoryName: "Walls"}, 0, false, false},
		{"walls without height", LaborItem{CategoryName: "Walls", Dimensions: &Dimensions{Length: coerce.FromInt(10), Width: coerce.FromInt(10)}}, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty, derived, ok := tt.item.EffectiveQuantity(catalog.Default)
			if ok != tt.ok || derived != tt.derived {
				t.Fatalf("expected ok=%v derived=%v, got ok=%v derived=%v", tt.ok, tt.derived, ok, derived)
			}
			if !qty.Equal(decimal.NewFromInt(tt.expected)) {
				t.Errorf("expected %d, got %s", tt.expected, qty)
			}
		})
	}
}

func TestMaterialDefaultsOr(t *testing.T) {
	scheme := MaterialDefaults{Coverage: coerce.FromInt(300)}
	policy := MaterialDefaults{Coverage: coerce.FromInt(400), CostPerGallon: coerce.FromInt(42)}

	got := scheme.Or(policy).Resolve()
	if !got.Coverage.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected scheme coverage 300 to win, got %s", got.Coverage)
	}
	if !got.CostPerGallon.Equal(decimal.NewFromInt(42)) {
		t.Errorf("expected policy cost per gallon 42, got %s", got.CostPerGallon)
	}
	if got.Coats != DefaultCoats {
		t.Errorf("expected built-in coats %d, got %d", DefaultCoats, got.Coats)
	}
}

func TestUnitUnmarshalRejectsUnknownUnits(t *testing.T) {
	var item LaborItem
	if err := json.Unmarshal([]byte(`{"measurementUnit": "LF"}`), &item); err != nil || item.MeasurementUnit != UnitLinearFoot {
		t.Fatalf("expected LF to decode as linear_foot, got %q %v", item.MeasurementUnit, err)
	}
	if err := json.Unmarshal([]byte(`{"measurementUnit": ""}`), &item); err != nil || item.MeasurementUnit.OrDefault() != UnitSqft {
		t.Fatalf("expected empty unit to default to sqft, got %q %v", item.MeasurementUnit, err)
	}

	for _, unit := range []string{"room", "gallon"} {
		err := json.Unmarshal([]byte(`{"measurementUnit": "`+unit+`"}`), &item)
		if !errors.IsType(err, errors.TypeValidation) {
			t.Errorf("expected validation error for %q, got %v", unit, err)
		}
	}
}

func TestParseRequestEnums(t *testing.T) {
	if j, ok := ParseJobType(" Exterior "); !ok || j != JobExterior {
		t.Errorf("expected exterior, got %q %v", j, ok)
	}
	if _, ok := ParseJobType("garage"); ok {
		t.Error("expected unknown job type to be rejected")
	}
	if c, ok := ParseCondition("POOR"); !ok || c != ConditionPoor {
		t.Errorf("expected poor, got %q %v", c, ok)
	}
	if _, ok := ParseCondition("ruined"); ok {
		t.Error("expected unknown condition to be rejected")
	}
	if m, ok := ParseApplicationMethod("Brush Roll"); !ok || m != ApplicationBrushRoll {
		t.Errorf("expected brush_roll, got %q %v", m, ok)
	}
	if m, ok := ParseApplicationMethod("Spray"); !ok || m != ApplicationSpray {
		t.Errorf("expected spray, got %q %v", m, ok)
	}
}

func TestAreaKey(t *testing.T) {
	if k := (Area{ID: "kitchen"}).Key(3); k != "kitchen" {
		t.Errorf("expected the area id, got %q", k)
	}
	if a, b := (Area{}).Key(0), (Area{}).Key(1); a == b || a != "area-1" {
		t.Errorf("expected distinct positional keys, got %q and %q", a, b)
	}
}
