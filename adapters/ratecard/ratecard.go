// Package ratecard reads contractor rate cards written in HCL. A rate card
// holds everything a tenant needs to price quotes: settings, labor rates,
// pricing schemes and paint products.
package ratecard

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"paint-quote/core/catalog"
	"paint-quote/core/coerce"
	"paint-quote/core/engine"
	"paint-quote/core/scheme"
	"paint-quote/core/tier"
	"paint-quote/core/types"
	"paint-quote/internal/errors"
)

// RateCard is a decoded rate card
type RateCard struct {
	Tenant     string
	Settings   types.ContractorSettings
	LaborRates map[string]decimal.Decimal
	Schemes    []Scheme
	Products   []types.ProductConfig
}

// Scheme is a pricing scheme and whether it is the tenant default
type Scheme struct {
	types.PricingScheme
	Default bool
}

type fileSpec struct {
	Tenant     string             `hcl:"tenant"`
	Settings   *settingsSpec      `hcl:"settings,block"`
	LaborRates map[string]float64 `hcl:"labor_rates,optional"`
	Schemes    []schemeSpec       `hcl:"scheme,block"`
	Products   []productSpec      `hcl:"product,block"`
}

type settingsSpec struct {
	LaborMarkupPercent    *float64           `hcl:"labor_markup_percent,optional"`
	MaterialMarkupPercent *float64           `hcl:"material_markup_percent,optional"`
	OverheadPercent       *float64           `hcl:"overhead_percent,optional"`
	NetProfitPercent      *float64           `hcl:"net_profit_percent,optional"`
	TaxRatePercent        *float64           `hcl:"tax_rate_percent,optional"`
	DepositPercent        *float64           `hcl:"deposit_percent,optional"`
	TurnkeyInteriorRate   *float64           `hcl:"turnkey_interior_rate,optional"`
	TurnkeyExteriorRate   *float64           `hcl:"turnkey_exterior_rate,optional"`
	HourlyRate            *float64           `hcl:"hourly_rate,optional"`
	CrewSize              *float64           `hcl:"crew_size,optional"`
	ProductionRates       map[string]float64 `hcl:"production_rates,optional"`
	FlatRatePrices        map[string]float64 `hcl:"flat_rate_prices,optional"`
}

type schemeSpec struct {
	ID               string             `hcl:"id,label"`
	Type             string             `hcl:"type"`
	Default          bool               `hcl:"default,optional"`
	TaxMode          string             `hcl:"tax_mode,optional"`
	GallonRounding   string             `hcl:"gallon_rounding,optional"`
	LaborRates       map[string]float64 `hcl:"labor_rates,optional"`
	TurnkeyInterior  *float64           `hcl:"turnkey_interior_rate,optional"`
	TurnkeyExterior  *float64           `hcl:"turnkey_exterior_rate,optional"`
	TierRates        *tierRatesSpec     `hcl:"tier_rates,block"`
	TierLaborRates   []tierLaborSpec    `hcl:"tier_labor_rate,block"`
	MaterialDefaults *materialSpec      `hcl:"material_defaults,block"`
}

type tierRatesSpec struct {
	Good   *float64 `hcl:"good,optional"`
	Better *float64 `hcl:"better,optional"`
	Best   *float64 `hcl:"best,optional"`
}

type tierLaborSpec struct {
	Category string   `hcl:"category,label"`
	Good     *float64 `hcl:"good,optional"`
	Better   *float64 `hcl:"better,optional"`
	Best     *float64 `hcl:"best,optional"`
}

type materialSpec struct {
	CostPerGallon *float64 `hcl:"cost_per_gallon,optional"`
	Coverage      *float64 `hcl:"coverage,optional"`
	Coats         *float64 `hcl:"coats,optional"`
}

type productSpec struct {
	ID           string      `hcl:"id,label"`
	Name         string      `hcl:"name"`
	Coverage     *float64    `hcl:"coverage,optional"`
	DefaultCoats int         `hcl:"default_coats,optional"`
	Sheens       []sheenSpec `hcl:"sheen,block"`
}

type sheenSpec struct {
	Name     string   `hcl:"name,label"`
	Price    float64  `hcl:"price"`
	Coverage *float64 `hcl:"coverage,optional"`
}

// ParseFile reads and decodes a rate card file
func ParseFile(path string) (*RateCard, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("read rate card", err)
	}
	return Parse(src, path)
}

// Parse decodes rate card source. filename is used in diagnostics.
func Parse(src []byte, filename string) (*RateCard, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diagError(diags)
	}

	var spec fileSpec
	if diags := gohcl.DecodeBody(file.Body, nil, &spec); diags.HasErrors() {
		return nil, diagError(diags)
	}
	return spec.convert()
}

func diagError(diags hcl.Diagnostics) error {
	var msgs []string
	for _, diag := range diags {
		if diag.Severity != hcl.DiagError {
			continue
		}
		msg := diag.Summary
		if diag.Detail != "" {
			msg += ": " + diag.Detail
		}
		if diag.Subject != nil {
			msg = fmt.Sprintf("%s:%d: %s", diag.Subject.Filename, diag.Subject.Start.Line, msg)
		}
		msgs = append(msgs, msg)
	}
	return errors.Config("invalid rate card", fmt.Errorf("%s", strings.Join(msgs, "; ")))
}

func (f *fileSpec) convert() (*RateCard, error) {
	if strings.TrimSpace(f.Tenant) == "" {
		return nil, errors.Config("invalid rate card", fmt.Errorf("tenant is required"))
	}

	var problems []string
	rc := &RateCard{
		Tenant:     f.Tenant,
		Settings:   types.ContractorSettings{TenantID: f.Tenant},
		LaborRates: make(map[string]decimal.Decimal, len(f.LaborRates)),
	}

	if s := f.Settings; s != nil {
		rc.Settings.LaborMarkupPercent = number(s.LaborMarkupPercent)
		rc.Settings.MaterialMarkupPercent = number(s.MaterialMarkupPercent)
		rc.Settings.OverheadPercent = number(s.OverheadPercent)
		rc.Settings.NetProfitPercent = number(s.NetProfitPercent)
		rc.Settings.TaxRatePercentage = number(s.TaxRatePercent)
		rc.Settings.DepositPercentage = number(s.DepositPercent)
		rc.Settings.TurnkeyInteriorRate = number(s.TurnkeyInteriorRate)
		rc.Settings.TurnkeyExteriorRate = number(s.TurnkeyExteriorRate)
		rc.Settings.HourlyRate = number(s.HourlyRate)
		rc.Settings.CrewSize = number(s.CrewSize)

		var errs []error
		rc.Settings.ProductionRates, errs = categoryTable("production_rates", s.ProductionRates)
		problems = appendErrs(problems, errs)
		rc.Settings.FlatRatePrices, errs = categoryTable("flat_rate_prices", s.FlatRatePrices)
		problems = appendErrs(problems, errs)
	}

	for name, rate := range f.LaborRates {
		if rate < 0 {
			problems = append(problems, fmt.Sprintf("labor_rates: %q is negative", name))
			continue
		}
		rc.LaborRates[strings.ToLower(strings.TrimSpace(name))] = decimal.NewFromFloat(rate)
	}

	defaults := 0
	for _, s := range f.Schemes {
		converted, errs := s.convert()
		problems = append(problems, errs...)
		if s.Default {
			defaults++
		}
		rc.Schemes = append(rc.Schemes, converted)
	}
	if defaults > 1 {
		problems = append(problems, "at most one scheme may be the default")
	}

	seen := make(map[string]bool, len(f.Products))
	for _, p := range f.Products {
		if seen[p.ID] {
			problems = append(problems, fmt.Sprintf("product %q is declared twice", p.ID))
			continue
		}
		seen[p.ID] = true
		rc.Products = append(rc.Products, p.convert())
	}

	if len(problems) > 0 {
		slices.Sort(problems)
		return nil, errors.Config("invalid rate card", fmt.Errorf("%s", strings.Join(problems, "; "))).
			WithContext("tenant", f.Tenant)
	}
	return rc, nil
}

func (s schemeSpec) convert() (Scheme, []string) {
	var problems []string
	prefix := fmt.Sprintf("scheme %q", s.ID)

	if _, ok := scheme.Resolve(s.Type); !ok {
		problems = append(problems, fmt.Sprintf("%s: unknown type %q", prefix, s.Type))
	}

	rules := types.PricingRules{
		TaxMode:        types.TaxMode(s.TaxMode),
		GallonRounding: types.GallonRounding(s.GallonRounding),
		TurnkeyRates: types.TurnkeyRates{
			Interior: number(s.TurnkeyInterior),
			Exterior: number(s.TurnkeyExterior),
		},
	}
	if s.TaxMode != "" && !rules.TaxMode.IsValid() {
		problems = append(problems, fmt.Sprintf("%s: invalid tax_mode %q", prefix, s.TaxMode))
	}
	if s.GallonRounding != "" && !rules.GallonRounding.IsValid() {
		problems = append(problems, fmt.Sprintf("%s: invalid gallon_rounding %q", prefix, s.GallonRounding))
	}

	if len(s.LaborRates) > 0 {
		rules.LaborRates = make(map[string]coerce.Number, len(s.LaborRates))
		for name, rate := range s.LaborRates {
			rules.LaborRates[strings.ToLower(strings.TrimSpace(name))] = coerce.NewNumber(rate)
		}
	}
	if t := s.TierRates; t != nil {
		rules.TierRates = &types.TierRates{Good: number(t.Good), Better: number(t.Better), Best: number(t.Best)}
	}
	if len(s.TierLaborRates) > 0 {
		rules.TierLaborRates = make(map[string]types.TierRates, len(s.TierLaborRates))
		for _, t := range s.TierLaborRates {
			rules.TierLaborRates[strings.ToLower(strings.TrimSpace(t.Category))] = types.TierRates{
				Good:   number(t.Good),
				Better: number(t.Better),
				Best:   number(t.Best),
			}
		}
	}
	if m := s.MaterialDefaults; m != nil {
		rules.MaterialDefaults = types.MaterialDefaults{
			CostPerGallon: number(m.CostPerGallon),
			Coverage:      number(m.Coverage),
			Coats:         number(m.Coats),
		}
	}

	return Scheme{
		PricingScheme: types.PricingScheme{ID: s.ID, Type: s.Type, Rules: rules},
		Default:       s.Default,
	}, problems
}

func (p productSpec) convert() types.ProductConfig {
	out := types.ProductConfig{
		ID:                 types.ProductID(p.ID),
		Name:               p.Name,
		DefaultCoats:       p.DefaultCoats,
		CoverageSqftPerGal: number(p.Coverage),
	}
	for _, s := range p.Sheens {
		out.Sheens = append(out.Sheens, types.Sheen{
			SheenName: s.Name,
			Price:     coerce.NewNumber(s.Price),
			Coverage:  number(s.Coverage),
		})
	}
	return out
}

func categoryTable(table string, in map[string]float64) (map[catalog.Category]coerce.Number, []error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[catalog.Category]coerce.Number, len(in))
	rates := make(map[catalog.Category]decimal.Decimal, len(in))
	for k, v := range in {
		c := catalog.Category(strings.ToLower(strings.TrimSpace(k)))
		out[c] = coerce.NewNumber(v)
		rates[c] = decimal.NewFromFloat(v)
	}
	return out, catalog.Default.ValidateRateTable(table, rates)
}

func appendErrs(problems []string, errs []error) []string {
	for _, err := range errs {
		problems = append(problems, err.Error())
	}
	return problems
}

func number(f *float64) coerce.Number {
	if f == nil {
		return coerce.Number{}
	}
	return coerce.NewNumber(*f)
}

// DefaultScheme returns the scheme marked default, or the first declared
func (rc *RateCard) DefaultScheme() (*types.PricingScheme, bool) {
	for i := range rc.Schemes {
		if rc.Schemes[i].Default {
			return &rc.Schemes[i].PricingScheme, true
		}
	}
	if len(rc.Schemes) > 0 {
		return &rc.Schemes[0].PricingScheme, true
	}
	return nil, false
}

// SchemeByID returns the scheme with id, or the default for an empty id
func (rc *RateCard) SchemeByID(id string) (*types.PricingScheme, bool) {
	if id == "" {
		return rc.DefaultScheme()
	}
	for i := range rc.Schemes {
		if rc.Schemes[i].ID == id {
			return &rc.Schemes[i].PricingScheme, true
		}
	}
	return nil, false
}

// Collaborators builds engine inputs for an offline calculation. Only the
// products the product sets reference are included.
func (rc *RateCard) Collaborators(schemeID string, entries []types.ProductSetEntry) (engine.Collaborators, error) {
	sch, ok := rc.SchemeByID(schemeID)
	if !ok && schemeID != "" {
		return engine.Collaborators{}, errors.NotFound("pricing scheme", schemeID)
	}

	wanted := make(map[types.ProductID]bool)
	for _, id := range tier.CollectProductIDs(entries) {
		wanted[id] = true
	}
	products := make(map[types.ProductID]types.ProductConfig, len(wanted))
	for _, p := range rc.Products {
		if wanted[p.ID] {
			products[p.ID] = p
		}
	}

	rates := make(map[string]decimal.Decimal, len(rc.LaborRates))
	for k, v := range rc.LaborRates {
		rates[k] = v
	}

	return engine.Collaborators{
		Scheme:     sch,
		Products:   products,
		LaborRates: rates,
		Settings:   rc.Settings.Resolve(),
	}, nil
}
