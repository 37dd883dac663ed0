package normalize

import (
	"maps"

	"paint-quote/core/catalog"
	"paint-quote/core/determinism"
	"paint-quote/core/types"
)

// Normalize flattens any Input into canonical entries, one per
// area x surface. Object layouts are emitted in sorted key order;
// canonical input keeps its order. Surface types are canonicalized.
func Normalize(in Input) []types.ProductSetEntry {
	switch in.Shape {
	case ShapeCanonical:
		out := make([]types.ProductSetEntry, 0, len(in.Entries))
		for _, e := range in.Entries {
			e.SurfaceType = catalog.NormalizeSurface(e.SurfaceType)
			e.Products = cloneProducts(e.Products)
			out = append(out, e)
		}
		return out

	case ShapeSurfaceKeyed:
		out := make([]types.ProductSetEntry, 0, len(in.SurfaceKeyed))
		for _, surface := range determinism.SortedKeys(in.SurfaceKeyed) {
			out = append(out, fromLegacy("", "", surface, in.SurfaceKeyed[surface]))
		}
		return out

	case ShapeAreaKeyed:
		var out []types.ProductSetEntry
		for _, areaID := range determinism.SortedKeys(in.AreaKeyed) {
			area := in.AreaKeyed[areaID]
			for _, surface := range determinism.SortedKeys(area.Surfaces) {
				out = append(out, fromLegacy(areaID, area.DisplayName(), surface, area.Surfaces[surface]))
			}
		}
		return out
	}
	return nil
}

func fromLegacy(areaID, areaName, surface string, s LegacySurface) types.ProductSetEntry {
	return types.ProductSetEntry{
		AreaID:      areaID,
		AreaName:    areaName,
		SurfaceType: catalog.NormalizeSurface(surface),
		Products:    cloneProducts(s.Products),
		Quantity:    s.Quantity,
		Unit:        s.Unit,
		Overridden:  s.Overridden,
	}
}

func cloneProducts(p types.TierMap) types.TierMap {
	if p == nil {
		return types.TierMap{}
	}
	return maps.Clone(p)
}
