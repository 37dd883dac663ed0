package normalize

import (
	"encoding/json"
	"testing"

	"paint-quote/core/catalog"
	"paint-quote/core/coerce"
	"paint-quote/core/types"
	"paint-quote/internal/errors"
)

const (
	canonicalJSON = `[
		{"areaId": "a1", "areaName": "Kitchen", "surfaceType": "walls", "products": {"good": 1, "best": "3"}},
		{"surfaceType": "Ceiling", "products": {"single": 9}, "quantity": "120"}
	]`
	surfaceKeyedJSON = `{
		"walls": {"good": 1, "better": 2, "quantity": 1800, "unit": "sqft"},
		"trim": {"products": {"best": 4}},
		"ceilings": {"good": 5, "overridden": true, "quantity": 900}
	}`
	areaKeyedJSON = `{
		"a2": {"areaName": "Bedroom", "surfaces": {"walls": {"good": 1}, "ceiling": {"products": {"good": 5}}}},
		"a1": {"name": "Kitchen", "surfaces": {"trim": {"best": 4, "quantity": 60, "unit": "lf"}}}
	}`
)

func mustDecode(t *testing.T, data string) Input {
	t.Helper()
	in, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return in
}

func encode(t *testing.T, entries []types.ProductSetEntry) string {
	t.Helper()
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func TestDecodeShapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Shape
	}{
		{"canonical array", canonicalJSON, ShapeCanonical},
		{"surface keyed", surfaceKeyedJSON, ShapeSurfaceKeyed},
		{"area keyed", areaKeyedJSON, ShapeAreaKeyed},
		{"null", `null`, ShapeEmpty},
		{"empty array", `[]`, ShapeEmpty},
		{"empty object", `{}`, ShapeEmpty},
		{"blank", ``, ShapeEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustDecode(t, tt.input).Shape; got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"json encoded string", `"[{\"surfaceType\":\"walls\"}]"`},
		{"number", `42`},
		{"array without surfaceType", `[{"areaId": "a1", "products": {}}]`},
		{"array of scalars", `[1, 2]`},
		{"object with scalar values", `{"walls": 5}`},
		{"mixed object", `{"a1": {"surfaces": {}}, "walls": {"good": 1}}`},
		{"truncated", `[{"surfaceType": "walls"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsType(err, errors.TypeValidation) {
				t.Errorf("expected VALIDATION_ERROR, got %s: %v", errors.TypeOf(err), err)
			}
		})
	}
}

func TestNormalizeSurfaceKeyed(t *testing.T) {
	entries := Normalize(mustDecode(t, surfaceKeyedJSON))
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	expectedOrder := []string{"ceilings", "trim", "walls"}
	for i, s := range expectedOrder {
		if entries[i].SurfaceType != s {
			t.Errorf("expected %s at %d, got %s", s, i, entries[i].SurfaceType)
		}
		if !entries[i].IsGlobal() {
			t.Errorf("expected %s to be global", s)
		}
	}

	walls := entries[2]
	if walls.Products[types.TierGood] != "1" || walls.Products[types.TierBetter] != "2" {
		t.Errorf("expected top-level tiers to be collected, got %v", walls.Products)
	}
	if walls.Quantity.String() != "1800" {
		t.Errorf("expected quantity 1800, got %s", walls.Quantity)
	}
	if entries[1].Products[types.TierBest] != "4" {
		t.Errorf("expected nested products to be kept, got %v", entries[1].Products)
	}
	if !entries[0].Overridden {
		t.Error("expected overridden flag to carry over")
	}
}

func TestNormalizeAreaKeyed(t *testing.T) {
	entries := Normalize(mustDecode(t, areaKeyedJSON))
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	expected := []struct {
		areaID, areaName, surface string
	}{
		{"a1", "Kitchen", "trim"},
		{"a2", "Bedroom", "ceilings"},
		{"a2", "Bedroom", "walls"},
	}
	for i, e := range expected {
		got := entries[i]
		if got.AreaID != e.areaID || got.AreaName != e.areaName || got.SurfaceType != e.surface {
			t.Errorf("entry %d: expected %+v, got %s/%s/%s", i, e, got.AreaID, got.AreaName, got.SurfaceType)
		}
	}
	if entries[0].Unit != types.UnitLinearFoot {
		t.Errorf("expected lf to parse as linear_foot, got %s", entries[0].Unit)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for name, payload := range map[string]string{
		"canonical":     canonicalJSON,
		"surface keyed": surfaceKeyedJSON,
		"area keyed":    areaKeyedJSON,
		"empty":         `[]`,
	} {
		t.Run(name, func(t *testing.T) {
			once := Normalize(mustDecode(t, payload))
			twice := Normalize(Canonical(once))
			if encode(t, once) != encode(t, twice) {
				t.Errorf("normalize is not idempotent:\n once: %s\ntwice: %s", encode(t, once), encode(t, twice))
			}

			// Through the wire form as well
			data, err := json.Marshal(mustDecode(t, payload))
			if err != nil {
				t.Fatalf("marshal input: %v", err)
			}
			again := Normalize(mustDecode(t, string(data)))
			if encode(t, once) != encode(t, again) {
				t.Errorf("wire round trip changed entries:\n once: %s\nagain: %s", encode(t, once), encode(t, again))
			}
		})
	}
}

func TestInputUnmarshalInsideRequest(t *testing.T) {
	var req struct {
		ProductSets Input `json:"productSets"`
	}
	if err := json.Unmarshal([]byte(`{"productSets": `+areaKeyedJSON+`}`), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ProductSets.Shape != ShapeAreaKeyed {
		t.Errorf("expected area keyed, got %s", req.ProductSets.Shape)
	}

	err := json.Unmarshal([]byte(`{"productSets": "oops"}`), &req)
	if !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func item(name string, qty int64) types.LaborItem {
	return types.LaborItem{CategoryName: name, Quantity: coerce.FromInt(qty), MeasurementUnit: types.UnitSqft, Selected: true}
}

func TestEnrich(t *testing.T) {
	areas := []types.Area{
		{ID: "a1", Name: "Kitchen", Items: []types.LaborItem{
			item("Walls", 300),
			item("Accent wall", 100),
			item("Ceiling", 150),
			{CategoryName: "Doors", Quantity: coerce.FromInt(2), MeasurementUnit: types.UnitEach, Selected: true},
		}},
		{ID: "a2", Name: "Bedroom", Items: []types.LaborItem{
			item("Walls", 500),
			item("Cabinets", 40),
			{CategoryName: "Ceiling", Quantity: coerce.FromInt(200), Selected: false},
		}},
	}
	entries := []types.ProductSetEntry{
		{AreaID: "a1", SurfaceType: "walls", Products: types.TierMap{types.TierGood: "1"}},
		{AreaID: "a1", SurfaceType: "ceilings", Products: types.TierMap{types.TierGood: "5"}, Quantity: coerce.FromInt(999), Overridden: true},
		{SurfaceType: "walls", Products: types.TierMap{types.TierBest: "3"}},
	}

	out, skipped := Enrich(entries, areas, catalog.Default)

	if len(out) != 4 {
		t.Fatalf("expected 4 entries, got %d: %s", len(out), encode(t, out))
	}
	if out[0].AreaName != "Kitchen" || out[0].Quantity.String() != "400" {
		t.Errorf("expected kitchen walls filled with 400, got %s %s", out[0].AreaName, out[0].Quantity)
	}
	if out[1].Quantity.String() != "999" {
		t.Errorf("expected overridden quantity to be kept, got %s", out[1].Quantity)
	}
	derived := out[3]
	if derived.AreaID != "a2" || derived.SurfaceType != "walls" || derived.Products[types.TierBest] != "3" {
		t.Errorf("expected bedroom walls derived from global entry, got %+v", derived)
	}
	if derived.Quantity.String() != "500" {
		t.Errorf("expected derived quantity 500, got %s", derived.Quantity)
	}

	if len(skipped) != 1 {
		t.Fatalf("expected 1 skipped item, got %d: %+v", len(skipped), skipped)
	}
	if skipped[0].CategoryName != "Cabinets" || skipped[0].Reason != types.SkipNoProductSelection {
		t.Errorf("unexpected skip: %+v", skipped[0])
	}

	// Derived entries must not leak into the caller's slice
	if len(entries) != 3 || entries[0].AreaName != "" {
		t.Error("expected input entries to be left untouched")
	}
}

func TestEnrichIsStable(t *testing.T) {
	areas := []types.Area{{ID: "a1", Name: "Hall", Items: []types.LaborItem{item("Walls", 200)}}}
	entries := []types.ProductSetEntry{{SurfaceType: "walls", Products: types.TierMap{types.TierGood: "1"}}}

	first, _ := Enrich(entries, areas, catalog.Default)
	second, _ := Enrich(first, areas, catalog.Default)
	if encode(t, first) != encode(t, second) {
		t.Errorf("expected enrich to be stable:\n first: %s\nsecond: %s", encode(t, first), encode(t, second))
	}
}

func TestEnrichAreasWithoutIDs(t *testing.T) {
	areas := []types.Area{
		{Name: "Hall", Items: []types.LaborItem{item("Walls", 300)}},
		{Name: "Den", Items: []types.LaborItem{item("Walls", 200)}},
	}
	entries := []types.ProductSetEntry{{SurfaceType: "walls", Products: types.TierMap{types.TierGood: "1"}}}

	out, skipped := Enrich(entries, areas, catalog.Default)

	if len(skipped) != 0 {
		t.Fatalf("expected the global entry to cover both areas, got skipped %+v", skipped)
	}
	if len(out) != 3 {
		t.Fatalf("expected global plus one entry per area, got %d: %s", len(out), encode(t, out))
	}
	tests := []struct {
		areaID   string
		areaName string
		quantity string
	}{
		{"area-1", "Hall", "300"},
		{"area-2", "Den", "200"},
	}
	for i, tt := range tests {
		e := out[i+1]
		if e.IsGlobal() || e.AreaID != tt.areaID || e.AreaName != tt.areaName || e.Quantity.String() != tt.quantity {
			t.Errorf("expected %s %s %s, got %+v", tt.areaID, tt.areaName, tt.quantity, e)
		}
	}
}

func TestEnrichDropsEntriesForDeselectedWork(t *testing.T) {
	areas := []types.Area{
		{ID: "a1", Name: "Kitchen", Items: []types.LaborItem{item("Walls", 700)}},
		{ID: "a2", Name: "Bedroom", Items: []types.LaborItem{
			{CategoryName: "Walls", Quantity: coerce.FromInt(700), MeasurementUnit: types.UnitSqft, Selected: false},
		}},
	}
	entries := []types.ProductSetEntry{
		{AreaID: "a1", SurfaceType: "walls", Products: types.TierMap{types.TierGood: "1"}},
		{AreaID: "a2", SurfaceType: "walls", Products: types.TierMap{types.TierGood: "1"}, Quantity: coerce.FromInt(700)},
		{AreaID: "a1", SurfaceType: "walls", Products: types.TierMap{types.TierGood: "2"}},
	}

	out, _ := Enrich(entries, areas, catalog.Default)

	if len(out) != 1 {
		t.Fatalf("expected only the kitchen walls entry, got %d: %s", len(out), encode(t, out))
	}
	if out[0].AreaID != "a1" || out[0].Products[types.TierGood] != "1" || out[0].Quantity.String() != "700" {
		t.Errorf("unexpected entry %+v", out[0])
	}
}
