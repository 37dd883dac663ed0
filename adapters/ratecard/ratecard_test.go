package ratecard

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"paint-quote/adapters/storage"
	"paint-quote/core/catalog"
	"paint-quote/core/engine"
	"paint-quote/core/normalize"
	"paint-quote/core/types"
	"paint-quote/internal/errors"
)

func loadCard(t *testing.T) *RateCard {
	t.Helper()
	rc, err := ParseFile(filepath.Join("testdata", "acme.hcl"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return rc
}

func TestParseFile(t *testing.T) {
	rc := loadCard(t)

	if rc.Tenant != "acme" {
		t.Errorf("expected tenant acme, got %q", rc.Tenant)
	}

	settings := rc.Settings.Resolve()
	if !settings.HourlyRate.Equal(decimal.NewFromInt(55)) {
		t.Errorf("expected hourly rate 55, got %s", settings.HourlyRate)
	}
	if !settings.CrewSize.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected crew 2, got %s", settings.CrewSize)
	}
	if !settings.FlatRatePrices[catalog.Doors].Equal(decimal.NewFromInt(95)) {
		t.Errorf("expected doors flat rate 95, got %s", settings.FlatRatePrices[catalog.Doors])
	}
	if !settings.ProductionRates[catalog.Ceilings].Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected catalog default for ceilings, got %s", settings.ProductionRates[catalog.Ceilings])
	}

	if !rc.LaborRates["interior walls"].Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("expected lower-cased labor rate key, got %v", rc.LaborRates)
	}

	if len(rc.Schemes) != 3 {
		t.Fatalf("expected 3 schemes, got %d", len(rc.Schemes))
	}
	def, ok := rc.DefaultScheme()
	if !ok || def.ID != "standard" {
		t.Fatalf("expected standard default scheme, got %+v", def)
	}
	if r, ok := def.Rules.TierLaborRate("Interior Walls", types.TierBest); !ok || !r.Equal(decimal.NewFromInt(2)) {
		t.Errorf("expected best tier labor rate 2, got %s", r)
	}
	md := def.Rules.MaterialDefaults.Resolve()
	if !md.Coverage.Equal(decimal.NewFromInt(375)) || md.Coats != 2 {
		t.Errorf("unexpected material defaults %+v", md)
	}

	turnkey, ok := rc.SchemeByID("whole-home")
	if !ok || turnkey.Rules.TierRates == nil {
		t.Fatalf("expected whole-home scheme with tier rates")
	}
	if r, ok := turnkey.Rules.TierRates.For(types.TierBest); !ok || !r.Equal(decimal.RequireFromString("4.5")) {
		t.Errorf("expected best tier rate 4.5, got %s", r)
	}

	if len(rc.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(rc.Products))
	}
	sheen, _ := rc.Products[1].PrimarySheen()
	if !sheen.Coverage.Valid || !sheen.Coverage.Value.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected satin coverage 400, got %s", sheen.Coverage)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		message string
	}{
		{
			name:    "syntax error",
			src:     `tenant = `,
			message: "invalid rate card",
		},
		{
			name:    "missing tenant",
			src:     `labor_rates = { doors = 1 }`,
			message: "tenant",
		},
		{
			name:    "unknown scheme type",
			src:     "tenant = \"t\"\nscheme \"x\" {\n  type = \"per_room\"\n}\n",
			message: `unknown type "per_room"`,
		},
		{
			name:    "unknown category",
			src:     "tenant = \"t\"\nsettings {\n  flat_rate_prices = { garage = 10 }\n}\n",
			message: `unknown category "garage"`,
		},
		{
			name:    "two defaults",
			src:     "tenant = \"t\"\nscheme \"a\" {\n  type = \"turnkey\"\n  default = true\n}\nscheme \"b\" {\n  type = \"turnkey\"\n  default = true\n}\n",
			message: "at most one scheme",
		},
		{
			name:    "invalid tax mode",
			src:     "tenant = \"t\"\nscheme \"a\" {\n  type = \"turnkey\"\n  tax_mode = \"everything\"\n}\n",
			message: "invalid tax_mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "card.hcl")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsType(err, errors.TypeConfig) {
				t.Errorf("expected config error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("expected error to mention %q, got %v", tt.message, err)
			}
		})
	}
}

func TestImport(t *testing.T) {
	rc := loadCard(t)
	ctx := context.Background()

	store, err := storage.Open(filepath.Join(t.TempDir(), "ratecard.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	stats, err := Import(ctx, store, rc, nil)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if stats.LaborRates != 2 || stats.Schemes != 3 || stats.Products != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}

	if _, err := Import(ctx, store, rc, nil); err != nil {
		t.Fatalf("re-import: %v", err)
	}

	def, err := store.GetPricingScheme(ctx, "acme", "")
	if err != nil || def.ID != "standard" {
		t.Errorf("expected standard as stored default, got %+v %v", def, err)
	}
	products, err := store.GetProducts(ctx, "acme", []types.ProductID{"p-eggshell", "p-satin"})
	if err != nil || len(products) != 2 {
		t.Errorf("expected both products stored, got %d %v", len(products), err)
	}
	rates, err := store.GetLaborRates(ctx, "acme")
	if err != nil || !rates["ceiling"].Equal(decimal.RequireFromString("1.1")) {
		t.Errorf("expected ceiling rate 1.1, got %v %v", rates, err)
	}
}

func TestCollaboratorsOfflineQuote(t *testing.T) {
	rc := loadCard(t)

	var req engine.Request
	if err := json.Unmarshal([]byte(`{
		"tenantId": "acme",
		"areas": [{"id": "a1", "name": "Hallway", "items": [
			{"id": "i1", "categoryName": "Interior Doors", "quantity": 3, "measurementUnit": "unit", "selected": true}
		]}]
	}`), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}

	collab, err := rc.Collaborators("doors", normalize.Normalize(req.ProductSets))
	if err != nil {
		t.Fatalf("collaborators: %v", err)
	}
	res, err := engine.New().Calculate(context.Background(), &req, collab)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if res.Model != types.ModelFlatRateUnit {
		t.Errorf("expected flat_rate_unit, got %s", res.Model)
	}
	if !res.LaborTotal.Equal(decimal.NewFromInt(285)) {
		t.Errorf("expected 3 doors at 95 = 285, got %s", res.LaborTotal)
	}
	if !res.MaterialTotal.IsZero() {
		t.Errorf("expected no materials under flat-rate pricing, got %s", res.MaterialTotal)
	}

	if _, err := rc.Collaborators("missing", nil); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("expected not found for unknown scheme, got %v", err)
	}
}
