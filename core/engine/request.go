package engine

import (
	"github.com/shopspring/decimal"

	"paint-quote/core/coerce"
	"paint-quote/core/normalize"
	"paint-quote/core/trace"
	"paint-quote/core/types"
)

// Request is one quote calculation
type Request struct {
	// TenantID scopes the calculation; it is carried for logging and
	// hashing, the engine itself never looks anything up
	TenantID string `json:"tenantId"`

	// QuoteID is optional and carried through to logs
	QuoteID string `json:"quoteId,omitempty"`

	// SchemeType overrides the scheme's stored type when set
	SchemeType string `json:"schemeType,omitempty"`

	// Rules overrides the scheme's rules when set
	Rules *types.PricingRules `json:"rules,omitempty"`

	Areas       []types.Area    `json:"areas"`
	ProductSets normalize.Input `json:"productSets"`

	// HomeSqft is the home size for turnkey pricing
	HomeSqft  coerce.Number   `json:"homeSqft"`
	JobType   types.JobType   `json:"jobType,omitempty"`
	Condition types.Condition `json:"condition,omitempty"`

	SelectedTier types.Tier `json:"selectedTier,omitempty"`

	// IncludeMaterials defaults to true
	IncludeMaterials *bool `json:"includeMaterials,omitempty"`

	Coverage          coerce.Number           `json:"coverage"`
	Coats             coerce.Number           `json:"coats"`
	ApplicationMethod types.ApplicationMethod `json:"applicationMethod,omitempty"`

	TaxMode        types.TaxMode        `json:"taxMode,omitempty"`
	GallonRounding types.GallonRounding `json:"gallonRounding,omitempty"`
	MaterialMode   types.MaterialMode   `json:"materialMode,omitempty"`

	AddOns []types.AddOn `json:"addOns,omitempty"`

	// Debug attaches a calculation trace to the result
	Debug bool `json:"debug,omitempty"`
}

// Materials reports whether materials are priced
func (r *Request) Materials() bool {
	return r.IncludeMaterials == nil || *r.IncludeMaterials
}

// Collaborators is the pre-resolved data a calculation reads. Callers
// fetch it in bulk before calling the engine.
type Collaborators struct {
	// Scheme is the tenant's pricing scheme; may be nil when the request
	// carries its own type and rules
	Scheme *types.PricingScheme `json:"scheme,omitempty"`

	// Products holds every product the product sets reference
	Products map[types.ProductID]types.ProductConfig `json:"products"`

	// LaborRates is keyed by lower-cased category name
	LaborRates map[string]decimal.Decimal `json:"laborRates"`

	Settings types.ResolvedSettings `json:"settings"`
}

// Result is a priced quote
type Result struct {
	types.PricingResult

	// InputHash identifies the request and collaborator data priced
	InputHash string `json:"inputHash"`

	Trace *trace.Trace `json:"trace,omitempty"`
}
