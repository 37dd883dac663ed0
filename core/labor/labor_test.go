package labor

import (
	stderrors "errors"
	"testing"

	"github.com/shopspring/decimal"

	"paint-quote/core/catalog"
	"paint-quote/core/coerce"
	"paint-quote/core/types"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func settings(mut func(*types.ContractorSettings)) types.ResolvedSettings {
	s := types.ContractorSettings{TenantID: "t1"}
	if mut != nil {
		mut(&s)
	}
	return s.Resolve()
}

func TestProductionBasedScenario(t *testing.T) {
	p := Params{
		Model: types.ModelProductionBased,
		Settings: settings(func(s *types.ContractorSettings) {
			s.HourlyRate = coerce.FromInt(50)
			s.CrewSize = coerce.FromInt(2)
			s.ProductionRates = map[catalog.Category]coerce.Number{catalog.InteriorWalls: coerce.FromInt(300)}
		}),
	}
	item := types.LaborItem{CategoryName: "Interior Walls", Quantity: coerce.FromInt(900), MeasurementUnit: types.UnitSqft, Selected: true}

	line, err := Calculate(item, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Hours == nil || !line.Hours.Equal(dec("3.0")) {
		t.Fatalf("expected 3.0 hours, got %v", line.Hours)
	}
	if !line.Cost.Equal(dec("300")) {
		t.Errorf("expected cost 300, got %s", line.Cost)
	}
	if line.RateSource != types.RateProduction {
		t.Errorf("expected production rate source, got %s", line.RateSource)
	}
}

func TestProductionHoursRoundUpToTenth(t *testing.T) {
	tests := []struct {
		in, expected string
	}{
		{"3", "3"},
		{"3.01", "3.1"},
		{"3.3333333333333333", "3.4"},
		{"0.04", "0.1"},
	}
	for _, tt := range tests {
		if got := RoundHours(dec(tt.in)); !got.Equal(dec(tt.expected)) {
			t.Errorf("RoundHours(%s): expected %s, got %s", tt.in, tt.expected, got)
		}
	}
}

func TestProductionHourUnit(t *testing.T) {
	p := Params{Model: types.ModelProductionBased, Settings: settings(func(s *types.ContractorSettings) {
		s.HourlyRate = coerce.FromInt(60)
		s.CrewSize = coerce.FromInt(3)
	})}
	item := types.LaborItem{CategoryName: "Prep work", Quantity: coerce.NewNumber(2.5), MeasurementUnit: types.UnitHour, Selected: true}

	line, err := Calculate(item, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !line.Hours.Equal(dec("2.5")) {
		t.Errorf("expected hours taken as-is, got %s", line.Hours)
	}
	if !line.Cost.Equal(dec("450")) {
		t.Errorf("expected 2.5 * 60 * 3 = 450, got %s", line.Cost)
	}
}

func TestProductionFallsBackToInlineRate(t *testing.T) {
	cat := catalog.NewCatalog()
	cat.Register(catalog.Entry{Category: catalog.Other, Surface: "other"})
	p := Params{Model: types.ModelProductionBased, Catalog: cat, Settings: types.ResolvedSettings{
		HourlyRate: dec("50"),
		CrewSize:   dec("1"),
	}}
	item := types.LaborItem{CategoryName: "Mural", Quantity: coerce.FromInt(10), LaborRate: coerce.FromInt(4), Selected: true}

	line, err := Calculate(item, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.RateSource != types.RateInline || !line.Cost.Equal(dec("40")) {
		t.Errorf("expected inline 40, got %s from %s", line.Cost, line.RateSource)
	}
	if line.Hours != nil {
		t.Error("expected no hours without a production rate")
	}
}

func TestFlatRateDoors(t *testing.T) {
	p := Params{Model: types.ModelFlatRateUnit, Settings: settings(nil)}
	item := types.LaborItem{CategoryName: "Interior Doors", Quantity: coerce.FromInt(3), MeasurementUnit: types.UnitEach, Selected: true}

	line, err := Calculate(item, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !line.Cost.Equal(dec("255")) {
		t.Errorf("expected 3 * 85 = 255, got %s", line.Cost)
	}
	if line.RateSource != types.RateFlatTable {
		t.Errorf("expected flat table rate, got %s", line.RateSource)
	}
}

func TestFlatRateInlineFallback(t *testing.T) {
	p := Params{Model: types.ModelFlatRateUnit, Settings: settings(nil)}
	item := types.LaborItem{CategoryName: "Pressure washing", Quantity: coerce.FromInt(1), LaborRate: coerce.FromInt(150), Selected: true}

	line, err := Calculate(item, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.RateSource != types.RateInline || !line.Cost.Equal(dec("150")) {
		t.Errorf("expected inline 150, got %s from %s", line.Cost, line.RateSource)
	}
}

func TestRateBasedLookupOrder(t *testing.T) {
	item := types.LaborItem{CategoryName: "Interior Walls", Quantity: coerce.FromInt(100), LaborRate: coerce.NewNumber(0.5), Selected: true}
	tenant := map[string]decimal.Decimal{"interior walls": dec("1.10")}
	rules := types.PricingRules{
		LaborRates:     map[string]coerce.Number{"interior walls": coerce.NewNumber(1.25)},
		TierLaborRates: map[string]types.TierRates{"interior walls": {Best: coerce.NewNumber(2)}},
	}

	tests := []struct {
		name     string
		tier     types.Tier
		rules    types.PricingRules
		tenant   map[string]decimal.Decimal
		expected string
		source   types.RateSource
	}{
		{"tier override", types.TierBest, rules, tenant, "200", types.RateTierOverride},
		{"tier without override uses scheme", types.TierGood, rules, tenant, "125", types.RateSchemeOverride},
		{"single ignores tier table", types.TierSingle, types.PricingRules{TierLaborRates: rules.TierLaborRates}, tenant, "110", types.RateLaborTable},
		{"tenant table", types.TierBest, types.PricingRules{}, tenant, "110", types.RateLaborTable},
		{"inline", types.TierBest, types.PricingRules{}, nil, "50", types.RateInline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := Calculate(item, Params{Model: types.ModelRateBasedSqft, Tier: tt.tier, Rules: tt.rules, LaborRates: tt.tenant})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !line.Cost.Equal(dec(tt.expected)) {
				t.Errorf("expected %s, got %s", tt.expected, line.Cost)
			}
			if line.RateSource != tt.source {
				t.Errorf("expected source %s, got %s", tt.source, line.RateSource)
			}
		})
	}
}

func TestSkippedItems(t *testing.T) {
	p := Params{Model: types.ModelRateBasedSqft}
	tests := []struct {
		name     string
		item     types.LaborItem
		expected error
	}{
		{"unselected", types.LaborItem{CategoryName: "Walls", Quantity: coerce.FromInt(10)}, ErrNotSelected},
		{"zero", types.LaborItem{CategoryName: "Walls", Quantity: coerce.FromInt(0), Selected: true}, ErrNoQuantity},
		{"negative", types.LaborItem{CategoryName: "Walls", Quantity: coerce.FromInt(-4), Selected: true}, ErrNoQuantity},
		{"absent", types.LaborItem{CategoryName: "Walls", Selected: true}, ErrNoQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := Calculate(tt.item, p)
			if !stderrors.Is(err, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, err)
			}
			if !line.Cost.IsZero() {
				t.Errorf("expected zero cost, got %s", line.Cost)
			}
		})
	}
}

func TestDerivedQuantity(t *testing.T) {
	item := types.LaborItem{
		CategoryName: "Walls",
		LaborRate:    coerce.FromInt(1),
		Selected:     true,
		Dimensions:   &types.Dimensions{Length: coerce.NewNumber(12.3), Width: coerce.FromInt(10), Height: coerce.FromInt(8)},
	}
	line, err := Calculate(item, Params{Model: types.ModelRateBasedSqft})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 2 * (12.3 + 10) * 8 = 356.8, rounded up
	if !line.Quantity.Equal(dec("357")) || !line.QuantityDerived {
		t.Errorf("expected derived 357, got %s (derived=%v)", line.Quantity, line.QuantityDerived)
	}
}

func TestLaborIsMonotonicInQuantity(t *testing.T) {
	models := []Params{
		{Model: types.ModelRateBasedSqft, LaborRates: map[string]decimal.Decimal{"interior walls": dec("1.35")}},
		{Model: types.ModelProductionBased, Settings: settings(func(s *types.ContractorSettings) { s.CrewSize = coerce.FromInt(2) })},
		{Model: types.ModelFlatRateUnit, Settings: settings(nil)},
	}
	for _, p := range models {
		t.Run(string(p.Model), func(t *testing.T) {
			prev := decimal.Zero
			for q := int64(1); q <= 2000; q += 37 {
				item := types.LaborItem{CategoryName: "Interior Walls", Quantity: coerce.FromInt(q), Selected: true}
				line, err := Calculate(item, p)
				if err != nil {
					t.Fatalf("quantity %d: %v", q, err)
				}
				if line.Cost.LessThan(prev) {
					t.Fatalf("quantity %d: cost %s decreased from %s", q, line.Cost, prev)
				}
				prev = line.Cost
			}
		})
	}
}

func TestTurnkeyItemsRejected(t *testing.T) {
	item := types.LaborItem{CategoryName: "Walls", Quantity: coerce.FromInt(10), Selected: true}
	if _, err := Calculate(item, Params{Model: types.ModelTurnkey}); err == nil {
		t.Error("expected turnkey per-item pricing to be rejected")
	}

	line := CalculateTurnkey(dec("2000"), dec("3.325"))
	if !line.Cost.Equal(dec("6650")) {
		t.Errorf("expected 6650, got %s", line.Cost)
	}
}
