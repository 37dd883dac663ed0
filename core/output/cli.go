package output

import (
	"fmt"
	"io"
	"strings"
)

const (
	boxWidth   = 73
	labelWidth = 50
	valueWidth = 20
)

// CLIFormatter renders quotes as a boxed table
type CLIFormatter struct {
	details bool
}

// NewCLIFormatter creates a CLI formatter; details adds per-item lines
func NewCLIFormatter(details bool) *CLIFormatter {
	return &CLIFormatter{details: details}
}

// Format returns FormatCLI
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

type box struct {
	w   io.Writer
	err error
}

func (b *box) printf(format string, args ...any) {
	if b.err != nil {
		return
	}
	_, b.err = fmt.Fprintf(b.w, format, args...)
}

func (b *box) rule(left, right string) {
	b.printf("%s%s%s\n", left, strings.Repeat("─", boxWidth), right)
}

func (b *box) row(label, value string) {
	b.printf("│ %-*s %*s │\n", labelWidth, truncate(label, labelWidth), valueWidth, value)
}

func (b *box) title(s string) {
	pad := boxWidth - len(s)
	b.printf("│%s%s%s│\n", strings.Repeat(" ", pad/2), s, strings.Repeat(" ", pad-pad/2))
}

// Render writes the quote summary
func (f *CLIFormatter) Render(w io.Writer, quote *Quote) error {
	r := quote.Result
	b := &box{w: w}

	b.rule("┌", "┐")
	b.title("PAINTING QUOTE SUMMARY")
	b.rule("├", "┤")
	b.row("Pricing model", string(r.Model))
	b.row("Tier", string(r.Tier))
	b.rule("├", "┤")

	for _, area := range r.Breakdown {
		b.row(area.AreaName, Money(area.LaborTotal.Add(area.MaterialTotal)))
		if !f.details {
			continue
		}
		for _, item := range area.Items {
			b.row("  └─ "+item.CategoryName+" labor", Money(item.Labor.Cost))
			if m := item.Material; m != nil {
				if m.Unconfigured {
					b.row("     paint (unconfigured: "+m.UnconfiguredReason+")", Money(m.Cost))
				} else {
					b.row(fmt.Sprintf("     paint %s gal", m.Gallons), Money(m.Cost))
				}
			}
		}
	}
	for _, m := range r.SurfaceMaterials {
		label := fmt.Sprintf("Paint: %s %s gal", m.SurfaceType, m.Gallons)
		if m.Unconfigured {
			label = "Paint: " + m.SurfaceType + " (unconfigured)"
		}
		b.row(label, Money(m.Cost))
	}
	if r.Turnkey != nil {
		b.row(fmt.Sprintf("Turnkey %s sqft @ $%s/sqft", r.Turnkey.HomeSqft, r.Turnkey.AdjustedRate), Money(r.Turnkey.BaseTotal))
	}

	b.rule("├", "┤")
	b.row("Labor (with markup)", Money(r.LaborWithMarkup))
	if r.IncludeMaterials {
		b.row("Materials (with markup)", Money(r.MaterialWithMarkup))
	}
	if r.AddOnTotal.IsPositive() {
		b.row("Add-ons", Money(r.AddOnTotal))
	}
	b.row("Overhead", Money(r.Overhead))
	b.row("Profit", Money(r.ProfitAmount))
	b.row("Subtotal", Money(r.Subtotal))
	b.row("Tax ("+string(r.TaxMode)+")", Money(r.Tax))
	b.rule("├", "┤")
	b.row("TOTAL", Money(r.Total))
	b.row("Deposit", Money(r.Deposit))
	b.row("Balance", Money(r.Balance))
	b.rule("└", "┘")

	if n := len(r.Skipped); n > 0 {
		b.printf("\n%d item(s) skipped:\n", n)
		for _, s := range r.Skipped {
			b.printf("  - %s / %s: %s\n", s.AreaName, s.CategoryName, s.Reason)
		}
	}
	if r.UnconfiguredCount > 0 {
		b.printf("\nWarning: %d paint selection(s) have no configured product and are priced at $0.00\n", r.UnconfiguredCount)
	}
	if quote.Metadata.Duration != "" {
		b.printf("\nCalculated in %s\n", quote.Metadata.Duration)
	}
	return b.err
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
