// Package tier resolves a concrete product for a requested quality tier.
package tier

import (
	"slices"

	"paint-quote/core/types"
)

// FallbackOrder is the fixed order tried after the requested tier
var FallbackOrder = []types.Tier{types.TierBetter, types.TierGood, types.TierBest, types.TierSingle}

// Selection is the outcome of tier resolution
type Selection struct {
	// Configured is false when no tier has a product
	Configured bool
	ProductID  types.ProductID
	Requested  types.Tier
	Resolved   types.Tier
	// Fallback is true when Resolved differs from Requested
	Fallback bool
}

// Select resolves products for requested: the requested tier first, then
// FallbackOrder. Ids that are empty or the legacy "0" count as absent.
func Select(products types.TierMap, requested types.Tier) Selection {
	sel := Selection{Requested: requested}
	if len(products) == 0 {
		return sel
	}
	if id, ok := products[requested]; ok && !id.IsZero() {
		sel.Configured, sel.ProductID, sel.Resolved = true, id, requested
		return sel
	}
	for _, t := range FallbackOrder {
		if id, ok := products[t]; ok && !id.IsZero() {
			sel.Configured, sel.ProductID, sel.Resolved, sel.Fallback = true, id, t, true
			return sel
		}
	}
	return sel
}

// CollectProductIDs returns every product id referenced by entries,
// sorted and de-duplicated, for a single bulk lookup.
func CollectProductIDs(entries []types.ProductSetEntry) []types.ProductID {
	seen := make(map[types.ProductID]struct{})
	var out []types.ProductID
	for _, e := range entries {
		for _, id := range e.Products {
			if id.IsZero() {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}
