package normalize

import (
	"github.com/shopspring/decimal"

	"paint-quote/core/catalog"
	"paint-quote/core/coerce"
	"paint-quote/core/types"
)

type key struct {
	areaID  string
	surface string
}

// surfaceNeed is the material demand of one area surface
type surfaceNeed struct {
	key      key
	areaName string
	quantity decimal.Decimal
	items    []types.LaborItem
}

// Enrich cross-references entries with the selected square-foot items of
// every area, the only items that consume paint. Areas are matched by
// Area.Key, so areas sent without an id still pair with their entries.
// Area entries missing a quantity get the summed item quantity unless
// they are overridden. An area surface without its own entry inherits the
// global entry for that surface. Area entries with no selected square-foot
// item behind them are dropped, as are duplicates of an area surface, so
// deselected work never buys paint.
// Items left without any selection are reported as skipped, so a partial
// selection never vanishes silently.
func Enrich(entries []types.ProductSetEntry, areas []types.Area, cat *catalog.Catalog) ([]types.ProductSetEntry, []types.SkippedItem) {
	out := make([]types.ProductSetEntry, len(entries))
	copy(out, entries)

	index := make(map[key]int, len(out))
	globals := make(map[string]int)
	for i, e := range out {
		if e.IsGlobal() {
			if _, ok := globals[e.SurfaceType]; !ok {
				globals[e.SurfaceType] = i
			}
			continue
		}
		k := key{e.AreaID, e.SurfaceType}
		if _, ok := index[k]; !ok {
			index[k] = i
		}
	}

	var skipped []types.SkippedItem
	needs := collectNeeds(areas, cat)
	demanded := make(map[key]bool, len(needs))
	for _, need := range needs {
		demanded[need.key] = true
		if i, ok := index[need.key]; ok {
			e := &out[i]
			if e.AreaName == "" {
				e.AreaName = need.areaName
			}
			if !e.Overridden && !(e.Quantity.Valid && e.Quantity.Value.IsPositive()) {
				e.Quantity = coerce.FromDecimal(need.quantity)
				e.Unit = types.UnitSqft
			}
			continue
		}

		if g, ok := globals[need.key.surface]; ok {
			index[need.key] = len(out)
			out = append(out, types.ProductSetEntry{
				AreaID:      need.key.areaID,
				AreaName:    need.areaName,
				SurfaceType: need.key.surface,
				Products:    cloneProducts(out[g].Products),
				Quantity:    coerce.FromDecimal(need.quantity),
				Unit:        types.UnitSqft,
			})
			continue
		}

		for _, item := range need.items {
			skipped = append(skipped, types.SkippedItem{
				AreaID:       need.key.areaID,
				AreaName:     need.areaName,
				ItemID:       item.ID,
				CategoryName: item.Label(),
				SurfaceType:  need.key.surface,
				Reason:       types.SkipNoProductSelection,
			})
		}
	}

	kept := out[:0]
	for i, e := range out {
		k := key{e.AreaID, e.SurfaceType}
		if e.IsGlobal() || (demanded[k] && index[k] == i) {
			kept = append(kept, e)
		}
	}
	return kept, skipped
}

// collectNeeds groups selected square-foot items by area and surface, in
// area then item order.
func collectNeeds(areas []types.Area, cat *catalog.Catalog) []*surfaceNeed {
	var needs []*surfaceNeed
	seen := make(map[key]*surfaceNeed)
	for ai, area := range areas {
		areaKey := area.Key(ai)
		for _, item := range area.Items {
			if !item.Selected || item.MeasurementUnit.OrDefault() != types.UnitSqft {
				continue
			}
			qty, _, ok := item.EffectiveQuantity(cat)
			if !ok {
				continue
			}
			k := key{areaKey, cat.Entry(item.Classify(cat)).Surface}
			need, exists := seen[k]
			if !exists {
				need = &surfaceNeed{key: k, areaName: area.Name}
				seen[k] = need
				needs = append(needs, need)
			}
			need.quantity = need.quantity.Add(qty)
			need.items = append(need.items, item)
		}
	}
	return needs
}
