// Package coerce - Centralized numeric coercion
// Every loosely-typed rate, percentage and quantity that enters the engine
// passes through this package exactly once. Defaults live at the call site
// that owns the field, never in arithmetic code.
package coerce

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is a numeric input that may be absent, null, NaN or a numeric
// string. The zero value is absent.
type Number struct {
	Value decimal.Decimal
	Valid bool
}

// NewNumber creates a valid number from a float. NaN and infinities are
// treated as absent.
func NewNumber(f float64) Number {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}
	}
	return Number{Value: decimal.NewFromFloat(f), Valid: true}
}

// FromDecimal creates a valid number
func FromDecimal(d decimal.Decimal) Number {
	return Number{Value: d, Valid: true}
}

// FromInt creates a valid number from an integer
func FromInt(i int64) Number {
	return Number{Value: decimal.NewFromInt(i), Valid: true}
}

// Parse interprets a string the way JSON string values are interpreted.
func Parse(s string) Number {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", "undefined", "+inf", "-inf", "inf", "infinity", "-infinity":
		return Number{}
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return Number{}
	}
	return Number{Value: d, Valid: true}
}

// UnmarshalJSON accepts numbers, numeric strings, booleans-as-absent and null.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Parse(s)
		return nil
	}
	if data[0] == 't' || data[0] == 'f' {
		*n = Number{}
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		*n = Number{}
		return nil
	}
	*n = Number{Value: d, Valid: true}
	return nil
}

// MarshalJSON writes the number unquoted, or null when absent.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(n.Value.String()), nil
}

// String returns the decimal string or "unset"
func (n Number) String() string {
	if !n.Valid {
		return "unset"
	}
	return n.Value.String()
}

// Or returns the value, or def when absent.
func Or(n Number, def decimal.Decimal) decimal.Decimal {
	if !n.Valid {
		return def
	}
	return n.Value
}

// Positive returns the value when present and > 0, otherwise def.
// Rates and coverages use this: a zero rate means "not configured".
func Positive(n Number, def decimal.Decimal) decimal.Decimal {
	if !n.Valid || !n.Value.IsPositive() {
		return def
	}
	return n.Value
}

// Percent returns a non-negative percentage, or def when absent.
func Percent(n Number, def decimal.Decimal) decimal.Decimal {
	return NonNegative(Or(n, def))
}

// NonNegative floors d at zero
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Clamp bounds d to [lo, hi]
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

// Int returns the integer part of a present value, or def.
func Int(n Number, def int) int {
	if !n.Valid {
		return def
	}
	return int(n.Value.IntPart())
}

// Float64 parses a float flag value into a Number; empty means absent.
func Float64(s string) Number {
	if s == "" {
		return Number{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}
	}
	return NewNumber(f)
}
