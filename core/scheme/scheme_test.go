package scheme

import (
	stderrors "errors"
	"testing"

	"paint-quote/core/types"
	"paint-quote/internal/errors"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		input    string
		expected types.Model
		ok       bool
	}{
		{"turnkey", types.ModelTurnkey, true},
		{"sqft_turnkey", types.ModelTurnkey, true},
		{"sqft_labor_paint", types.ModelRateBasedSqft, true},
		{"rate_based_sqft", types.ModelRateBasedSqft, true},
		{"hourly_time_materials", types.ModelProductionBased, true},
		{"production_based", types.ModelProductionBased, true},
		{"unit_pricing", types.ModelFlatRateUnit, true},
		{"room_flat_rate", types.ModelFlatRateUnit, true},
		{" Flat_Rate_Unit ", types.ModelFlatRateUnit, true},
		{"per_room", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Resolve(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("expected (%s, %v), got (%s, %v)", tt.expected, tt.ok, got, ok)
			}
		})
	}
}

func TestResolveForCalculationFallback(t *testing.T) {
	m, err := ResolveForCalculation("mystery", true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != types.ModelRateBasedSqft {
		t.Errorf("expected fallback to rate_based_sqft, got %s", m)
	}
}

func TestResolveForCalculationSkips(t *testing.T) {
	tests := []struct {
		name        string
		hasAreas    bool
		hasProducts bool
	}{
		{"no areas", false, true},
		{"no products", true, false},
		{"nothing", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveForCalculation("", tt.hasAreas, tt.hasProducts)
			if !stderrors.Is(err, ErrCalculationSkipped) {
				t.Fatalf("expected ErrCalculationSkipped, got %v", err)
			}
			if !errors.IsType(err, errors.TypeSkipped) {
				t.Errorf("expected SKIPPED type, got %s", errors.TypeOf(err))
			}
		})
	}
}

func TestKnownTypeNeverSkips(t *testing.T) {
	m, err := ResolveForCalculation("sqft_turnkey", false, false)
	if err != nil || m != types.ModelTurnkey {
		t.Errorf("expected turnkey, got %s (%v)", m, err)
	}
}

func TestAliases(t *testing.T) {
	got := Aliases(types.ModelFlatRateUnit)
	if len(got) != 3 || got[0] != "flat_rate_unit" || got[1] != "unit_pricing" || got[2] != "room_flat_rate" {
		t.Errorf("unexpected aliases: %v", got)
	}
}
