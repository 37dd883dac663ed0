package material

import (
	"cmp"

	"github.com/shopspring/decimal"

	"paint-quote/core/determinism"
	"paint-quote/core/tier"
	"paint-quote/core/types"
)

type group struct {
	surface  string
	product  types.ProductID
	products types.TierMap
	quantity decimal.Decimal
}

// Aggregate prices paint per surface rather than per item: quantities of
// every entry that resolves to the same surface and product are summed
// before gallons are rounded. Global entries count only for surfaces no
// area entry covers.
func Aggregate(entries []types.ProductSetEntry, p Params) []types.MaterialLine {
	covered := make(map[string]bool)
	for _, e := range entries {
		if !e.IsGlobal() {
			covered[e.SurfaceType] = true
		}
	}

	groups := make(map[[2]string]*group)
	for _, e := range entries {
		if e.IsGlobal() && covered[e.SurfaceType] {
			continue
		}
		if !e.Quantity.Valid || !e.Quantity.Value.IsPositive() {
			continue
		}
		if u := e.Unit.OrDefault(); u != types.UnitSqft {
			continue
		}
		sel := tier.Select(e.Products, p.Tier)
		k := [2]string{e.SurfaceType, string(sel.ProductID)}
		g, ok := groups[k]
		if !ok {
			g = &group{surface: e.SurfaceType, product: sel.ProductID, products: e.Products}
			groups[k] = g
		}
		g.quantity = g.quantity.Add(e.Quantity.Value)
	}

	sorted := make([]*group, 0, len(groups))
	for _, g := range groups {
		sorted = append(sorted, g)
	}
	determinism.SortSlice(sorted, func(a, b *group) int {
		if c := cmp.Compare(a.surface, b.surface); c != 0 {
			return c
		}
		return cmp.Compare(a.product, b.product)
	})

	lines := make([]types.MaterialLine, 0, len(sorted))
	for _, g := range sorted {
		lines = append(lines, Calculate(g.surface, g.quantity, g.products, 0, p))
	}
	return lines
}

// Total sums line costs
func Total(lines []types.MaterialLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Cost)
	}
	return total
}

// UnconfiguredCount counts lines without a resolvable product
func UnconfiguredCount(lines []types.MaterialLine) int {
	n := 0
	for _, l := range lines {
		if l.Unconfigured {
			n++
		}
	}
	return n
}
