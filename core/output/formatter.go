// Package output provides output formatting interfaces.
// This package produces human and machine-readable quote outputs.
package output

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"paint-quote/core/engine"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given quote
	Render(w io.Writer, quote *Quote) error
}

// Quote is a priced quote with its execution context
type Quote struct {
	*engine.Result

	// Metadata contains execution context
	Metadata Metadata `json:"metadata"`
}

// Metadata contains execution context
type Metadata struct {
	// QuoteID is the stored quote id, if persisted
	QuoteID string `json:"quoteId,omitempty"`

	// TenantID is the contractor the quote belongs to
	TenantID string `json:"tenantId"`

	// Timestamp is when the calculation was performed
	Timestamp string `json:"timestamp"`

	// Duration is how long the calculation took
	Duration string `json:"duration"`

	// Version is the tool version
	Version string `json:"version"`
}

// Money formats an amount as dollars and cents
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Registry manages formatter registration
type Registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates a registry with the built-in formatters
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	_ = r.Register(NewCLIFormatter(false))
	_ = r.Register(NewJSONFormatter(true))
	return r
}

// Register adds a formatter to the registry, replacing any formatter for
// the same format
func (r *Registry) Register(f Formatter) error {
	if f == nil {
		return fmt.Errorf("formatter is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formatters[f.Format()] = f
	return nil
}

// Get returns a formatter for a format type
func (r *Registry) Get(format Format) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[format]
	return f, ok
}

// Formats returns all registered formats, sorted
func (r *Registry) Formats() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}
