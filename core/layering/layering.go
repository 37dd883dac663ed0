// Package layering applies markup, overhead, profit, tax and deposit to
// base labor and material totals, in a fixed order.
package layering

import (
	"github.com/shopspring/decimal"

	"paint-quote/core/coerce"
	"paint-quote/core/types"
)

var hundred = decimal.NewFromInt(100)

// Percentages are the contractor's layer percentages, 0-100
type Percentages struct {
	LaborMarkup    decimal.Decimal
	MaterialMarkup decimal.Decimal
	Overhead       decimal.Decimal
	Profit         decimal.Decimal
	TaxRate        decimal.Decimal
	Deposit        decimal.Decimal
}

// FromSettings takes the percentages of resolved contractor settings
func FromSettings(s types.ResolvedSettings) Percentages {
	return Percentages{
		LaborMarkup:    s.LaborMarkupPercent,
		MaterialMarkup: s.MaterialMarkupPercent,
		Overhead:       s.OverheadPercent,
		Profit:         s.NetProfitPercent,
		TaxRate:        s.TaxRatePercent,
		Deposit:        s.DepositPercent,
	}
}

// Input is the base of the pipeline
type Input struct {
	Labor            decimal.Decimal
	Material         decimal.Decimal
	AddOns           []types.AddOn
	IncludeMaterials bool
	TaxMode          types.TaxMode
	Percentages      Percentages
}

// Totals is every intermediate and final amount of the pipeline
type Totals struct {
	LaborTotal             decimal.Decimal
	MaterialTotal          decimal.Decimal
	LaborMarkup            decimal.Decimal
	MaterialMarkup         decimal.Decimal
	LaborWithMarkup        decimal.Decimal
	MaterialWithMarkup     decimal.Decimal
	AddOnTotal             decimal.Decimal
	SubtotalBeforeOverhead decimal.Decimal
	Overhead               decimal.Decimal
	SubtotalBeforeProfit   decimal.Decimal
	ProfitAmount           decimal.Decimal
	Subtotal               decimal.Decimal
	TaxMode                types.TaxMode
	Tax                    decimal.Decimal
	Total                  decimal.Decimal
	Deposit                decimal.Decimal
	Balance                decimal.Decimal
}

func pct(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

// Apply runs the pipeline. Negative inputs are floored at zero and an
// unset tax mode taxes materials only. Balance is Total minus Deposit, so
// the two always sum to Total exactly.
func Apply(in Input) Totals {
	p := in.Percentages
	t := Totals{
		LaborTotal: coerce.NonNegative(in.Labor),
		TaxMode:    in.TaxMode,
	}
	if !t.TaxMode.IsValid() {
		t.TaxMode = types.TaxMaterialsOnly
	}

	t.LaborMarkup = pct(t.LaborTotal, coerce.NonNegative(p.LaborMarkup))
	t.LaborWithMarkup = t.LaborTotal.Add(t.LaborMarkup)

	if in.IncludeMaterials {
		t.MaterialTotal = coerce.NonNegative(in.Material)
		t.MaterialMarkup = pct(t.MaterialTotal, coerce.NonNegative(p.MaterialMarkup))
		t.MaterialWithMarkup = t.MaterialTotal.Add(t.MaterialMarkup)
	}

	for _, a := range in.AddOns {
		t.AddOnTotal = t.AddOnTotal.Add(coerce.NonNegative(a.Amount))
	}

	t.SubtotalBeforeOverhead = t.LaborWithMarkup.Add(t.MaterialWithMarkup).Add(t.AddOnTotal)
	t.Overhead = pct(t.SubtotalBeforeOverhead, coerce.NonNegative(p.Overhead))
	t.SubtotalBeforeProfit = t.SubtotalBeforeOverhead.Add(t.Overhead)
	t.ProfitAmount = pct(t.SubtotalBeforeProfit, coerce.NonNegative(p.Profit))
	t.Subtotal = t.SubtotalBeforeProfit.Add(t.ProfitAmount)

	switch t.TaxMode {
	case types.TaxFullSubtotal:
		t.Tax = pct(t.Subtotal, coerce.NonNegative(p.TaxRate))
	default:
		t.Tax = pct(t.MaterialWithMarkup, coerce.NonNegative(p.TaxRate))
	}

	t.Total = t.Subtotal.Add(t.Tax)
	deposit := coerce.Clamp(p.Deposit, decimal.Zero, hundred)
	t.Deposit = pct(t.Total, deposit)
	t.Balance = t.Total.Sub(t.Deposit)
	return t
}

// ApplyTo copies the totals onto a result
func (t Totals) ApplyTo(r *types.PricingResult) {
	r.LaborTotal = t.LaborTotal
	r.MaterialTotal = t.MaterialTotal
	r.LaborMarkup = t.LaborMarkup
	r.MaterialMarkup = t.MaterialMarkup
	r.LaborWithMarkup = t.LaborWithMarkup
	r.MaterialWithMarkup = t.MaterialWithMarkup
	r.AddOnTotal = t.AddOnTotal
	r.SubtotalBeforeOverhead = t.SubtotalBeforeOverhead
	r.Overhead = t.Overhead
	r.SubtotalBeforeProfit = t.SubtotalBeforeProfit
	r.ProfitAmount = t.ProfitAmount
	r.Subtotal = t.Subtotal
	r.TaxMode = t.TaxMode
	r.Tax = t.Tax
	r.Total = t.Total
	r.Deposit = t.Deposit
	r.Balance = t.Balance
}
