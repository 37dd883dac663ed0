// Package catalog - Catalog validation
// Ensures catalog integrity and that tenant rate tables only name known
// categories.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationRule is a catalog validation rule
type ValidationRule func(*Entry) error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateSurface,
		validateNonNegativeRates,
	}
}

// Validate checks a catalog against validation rules
func (c *Catalog) Validate(rules []ValidationRule) []error {
	var errs []error

	for _, category := range c.Categories() {
		entry := c.entries[category]
		for _, rule := range rules {
			if err := rule(entry); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", entry.Category, err))
			}
		}
	}
	if _, ok := c.entries[Other]; !ok {
		errs = append(errs, fmt.Errorf("catalog must register %q as the fallback category", Other))
	}
	for _, r := range c.rules {
		if _, ok := c.entries[r.category]; !ok {
			errs = append(errs, fmt.Errorf("rule targets unregistered category %q", r.category))
		}
	}

	return errs
}

func validateSurface(e *Entry) error {
	if e.Surface == "" {
		return fmt.Errorf("surface is required")
	}
	if NormalizeSurface(e.Surface) != e.Surface {
		return fmt.Errorf("surface %q is not canonical", e.Surface)
	}
	return nil
}

func validateNonNegativeRates(e *Entry) error {
	if e.ProductionRate.IsNegative() || e.FlatRate.IsNegative() {
		return fmt.Errorf("rates must be non-negative")
	}
	return nil
}

// MustValidate panics if validation fails
func (c *Catalog) MustValidate() {
	errs := c.Validate(DefaultValidationRules())
	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		panic(fmt.Sprintf("catalog has %d validation errors: %s", len(errs), strings.Join(msgs, "; ")))
	}
}

// ValidateRateTable checks a tenant rate table keyed by category name.
// Keys must name registered categories and rates must be non-negative.
func (c *Catalog) ValidateRateTable(table string, rates map[Category]decimal.Decimal) []error {
	var errs []error
	for _, category := range sortedKeys(rates) {
		if !c.Valid(category) {
			errs = append(errs, fmt.Errorf("%s: unknown category %q", table, category))
			continue
		}
		if rates[category].IsNegative() {
			errs = append(errs, fmt.Errorf("%s: %s rate is negative", table, category))
		}
	}
	return errs
}

func sortedKeys(m map[Category]decimal.Decimal) []Category {
	out := make([]Category, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
