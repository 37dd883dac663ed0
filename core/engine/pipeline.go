package engine

import (
	"context"
	stderrors "errors"
	"strconv"

	"github.com/shopspring/decimal"

	"paint-quote/core/catalog"
	"paint-quote/core/labor"
	"paint-quote/core/material"
	"paint-quote/core/normalize"
	"paint-quote/core/trace"
	"paint-quote/core/turnkey"
	"paint-quote/core/types"
	"paint-quote/internal/errors"
)

// calculation is the per-call state of one Calculate
type calculation struct {
	ctx    context.Context
	engine *Engine
	req    *Request
	collab Collaborators

	entries []types.ProductSetEntry
	rules   types.PricingRules

	model        types.Model
	tier         types.Tier
	taxMode      types.TaxMode
	materialMode types.MaterialMode
	rounding     types.GallonRounding
	jobType      types.JobType
	condition    types.Condition
	method       types.ApplicationMethod
	materials    bool

	trace  *trace.Trace
	result *Result
}

type entryKey struct {
	areaID  string
	surface string
}

func (c *calculation) materialParams() material.Params {
	return material.Params{
		Tier:     c.tier,
		Products: c.collab.Products,
		Defaults: c.rules.MaterialDefaults.Or(c.engine.policy.MaterialDefaults).Resolve(),
		Coverage: c.req.Coverage,
		Coats:    c.req.Coats,
		Method:   c.method,
		Rounding: c.rounding,
	}
}

// turnkey prices the whole home and splits it into labor and material
func (c *calculation) turnkey() (decimal.Decimal, decimal.Decimal, error) {
	if !c.req.HomeSqft.Valid || !c.req.HomeSqft.Value.IsPositive() {
		return decimal.Zero, decimal.Zero, errors.Validation("homeSqft", "home square footage is required for turnkey pricing")
	}

	detail := turnkey.Detail(turnkey.Params{
		HomeSqft:  c.req.HomeSqft.Value,
		JobType:   c.jobType,
		Tier:      c.tier,
		Condition: c.condition,
		Rules:     c.rules,
		Settings:  c.collab.Settings,
	}, c.materials)

	c.trace.Record(PhaseTurnkey.String(), "adjusted turnkey rate",
		"baseRate", detail.BaseRate.String(),
		"tierRate", detail.TierRate.String(),
		"multiplier", detail.ConditionMultiplier.String(),
		"adjustedRate", detail.AdjustedRate.String(),
		"baseTotal", detail.BaseTotal.String())

	line := labor.CalculateTurnkey(detail.HomeSqft, detail.AdjustedRate)
	line.Cost = detail.LaborShare
	if c.materials {
		line.Formula += " * 60% labor share"
	}

	area := types.AreaBreakdown{AreaID: "home", AreaName: "Whole home"}
	area.Add(types.ItemBreakdown{
		ItemID:       "turnkey",
		CategoryName: "Turnkey",
		Category:     catalog.Other,
		Labor:        line,
	})
	area.MaterialTotal = detail.MaterialShare

	c.result.Breakdown = append(c.result.Breakdown, area)
	c.result.Turnkey = &detail
	return detail.LaborShare, detail.MaterialShare, nil
}

// itemized prices every selected item of every area
func (c *calculation) itemized() (decimal.Decimal, decimal.Decimal, error) {
	cat := c.engine.catalog

	entries, missing := normalize.Enrich(c.entries, c.req.Areas, cat)
	index := make(map[entryKey]types.ProductSetEntry, len(entries))
	for _, e := range entries {
		k := entryKey{e.AreaID, e.SurfaceType}
		if _, ok := index[k]; !ok && !e.IsGlobal() {
			index[k] = e
		}
	}
	c.trace.Record(PhaseNormalize.String(), "normalized product sets",
		"shape", c.req.ProductSets.Shape.String(),
		"entries", strconv.Itoa(len(entries)),
		"missing", strconv.Itoa(len(missing)))

	lp := labor.Params{
		Model:      c.model,
		Tier:       c.tier,
		Rules:      c.rules,
		Settings:   c.collab.Settings,
		LaborRates: c.collab.LaborRates,
		Catalog:    cat,
	}
	mp := c.materialParams()
	perItem := c.materials && c.materialMode == types.MaterialPerItem

	laborTotal, materialTotal := decimal.Zero, decimal.Zero
	for ai, area := range c.req.Areas {
		if err := c.ctx.Err(); err != nil {
			return decimal.Zero, decimal.Zero, errors.Wrap(errors.TypeInternal, "calculation cancelled", err)
		}

		areaKey := area.Key(ai)
		breakdown := types.AreaBreakdown{AreaID: areaKey, AreaName: area.Name}
		for i, item := range area.Items {
			if !item.Selected {
				continue
			}
			itemID := item.ID
			if itemID == "" {
				itemID = c.engine.ids.ItemID(areaKey, i)
			}
			category := item.Classify(cat)
			surface := cat.Entry(category).Surface

			line, err := labor.Calculate(item, lp)
			if stderrors.Is(err, labor.ErrNoQuantity) {
				c.result.Skipped = append(c.result.Skipped, types.SkippedItem{
					AreaID:       areaKey,
					AreaName:     area.Name,
					ItemID:       itemID,
					CategoryName: item.Label(),
					SurfaceType:  surface,
					Reason:       types.SkipNoQuantity,
				})
				c.trace.Record(PhaseLabor.String(), "skipped item without quantity", "area", areaKey, "item", itemID)
				continue
			}
			if err != nil {
				return decimal.Zero, decimal.Zero, err
			}
			c.trace.Record(PhaseLabor.String(), "priced labor",
				"area", areaKey,
				"item", itemID,
				"category", string(category),
				"formula", line.Formula,
				"cost", line.Cost.String())

			out := types.ItemBreakdown{
				ItemID:       itemID,
				CategoryName: item.Label(),
				Category:     category,
				Labor:        line,
			}

			if perItem && line.Unit == types.UnitSqft {
				var m types.MaterialLine
				if entry, ok := index[entryKey{areaKey, surface}]; ok {
					m = material.Calculate(surface, line.Quantity, entry.Products, item.NumberOfCoats, mp)
				} else {
					m = types.MaterialLine{
						SurfaceType:        surface,
						RequestedTier:      c.tier,
						Unconfigured:       true,
						UnconfiguredReason: string(types.SkipNoProductSelection),
						Quantity:           line.Quantity,
						Rounding:           c.rounding,
					}
				}
				if m.Unconfigured {
					c.result.UnconfiguredCount++
				}
				c.trace.Record(PhaseMaterial.String(), "priced material",
					"area", areaKey,
					"item", itemID,
					"surface", surface,
					"product", string(m.ProductID),
					"unconfigured", strconv.FormatBool(m.Unconfigured),
					"gallons", m.Gallons.String(),
					"cost", m.Cost.String())
				out.Material = &m
			}

			breakdown.Add(out)
		}

		if len(breakdown.Items) > 0 {
			laborTotal = laborTotal.Add(breakdown.LaborTotal)
			materialTotal = materialTotal.Add(breakdown.MaterialTotal)
			c.result.Breakdown = append(c.result.Breakdown, breakdown)
		}
	}

	if c.materials {
		c.result.Skipped = append(c.result.Skipped, missing...)
	}

	if c.materials && c.materialMode == types.MaterialPerSurface {
		lines := material.Aggregate(entries, mp)
		c.result.SurfaceMaterials = lines
		c.result.UnconfiguredCount += material.UnconfiguredCount(lines)
		materialTotal = material.Total(lines)
		for _, l := range lines {
			c.trace.Record(PhaseMaterial.String(), "priced surface material",
				"surface", l.SurfaceType,
				"product", string(l.ProductID),
				"unconfigured", strconv.FormatBool(l.Unconfigured),
				"gallons", l.Gallons.String(),
				"cost", l.Cost.String())
		}
	}

	return laborTotal, materialTotal, nil
}
