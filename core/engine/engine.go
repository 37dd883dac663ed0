// Package engine provides the API-primary pricing engine.
// CLI and HTTP are thin wrappers around this engine. The engine is pure:
// every collaborator record is resolved by the caller before Calculate.
package engine

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paint-quote/core/catalog"
	"paint-quote/core/determinism"
	"paint-quote/core/layering"
	"paint-quote/core/normalize"
	"paint-quote/core/scheme"
	"paint-quote/core/trace"
	"paint-quote/core/types"
	"paint-quote/internal/errors"
	"paint-quote/internal/logging"
)

// Phase is a stage of the calculation, in execution order
type Phase int

const (
	PhaseResolve Phase = iota
	PhaseNormalize
	PhaseLabor
	PhaseMaterial
	PhaseTurnkey
	PhaseLayering
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseResolve:
		return "resolve"
	case PhaseNormalize:
		return "normalize"
	case PhaseLabor:
		return "labor"
	case PhaseMaterial:
		return "material"
	case PhaseTurnkey:
		return "turnkey"
	case PhaseLayering:
		return "layering"
	default:
		return "unknown"
	}
}

// Policy holds the defaults used when neither the request nor the scheme
// pins a mode
type Policy struct {
	TaxMode types.TaxMode

	// GallonRounding empty means the material mode's own rounding
	GallonRounding types.GallonRounding

	MaterialMode types.MaterialMode
	Tier         types.Tier

	// MaterialDefaults fill paint defaults a scheme leaves unset
	MaterialDefaults types.MaterialDefaults
}

// DefaultPolicy returns the built-in policy
func DefaultPolicy() Policy {
	return Policy{
		TaxMode:      types.TaxMaterialsOnly,
		MaterialMode: types.MaterialPerItem,
		Tier:         types.TierBetter,
	}
}

// Engine prices quotes. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
	policy  Policy
	trace   bool
	ids     *determinism.IDGenerator
}

// Option configures an Engine
type Option func(*Engine)

// WithCatalog replaces the default category catalog
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.OrNop(l)
	}
}

// WithPolicy sets the default modes
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithTrace attaches a trace to every result
func WithTrace() Option {
	return func(e *Engine) {
		e.trace = true
	}
}

// New creates an engine
func New(opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog.Default,
		logger:  zap.NewNop(),
		policy:  DefaultPolicy(),
		ids:     determinism.NewIDGenerator("item"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the engine's default modes
func (e *Engine) Policy() Policy {
	return e.policy
}

// Calculate prices a quote
func (e *Engine) Calculate(ctx context.Context, req *Request, collab Collaborators) (*Result, error) {
	if req == nil {
		return nil, errors.Input("request is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.TypeInternal, "calculation cancelled", err)
	}

	var tr *trace.Trace
	if e.trace || req.Debug {
		tr = trace.New()
	}

	calc, err := e.resolve(ctx, req, collab, tr)
	if err != nil {
		return nil, err
	}

	var labor, material decimal.Decimal
	if calc.model == types.ModelTurnkey {
		labor, material, err = calc.turnkey()
	} else {
		labor, material, err = calc.itemized()
	}
	if err != nil {
		return nil, err
	}

	totals := layering.Apply(layering.Input{
		Labor:            labor,
		Material:         material,
		AddOns:           req.AddOns,
		IncludeMaterials: calc.materials,
		TaxMode:          calc.taxMode,
		Percentages:      layering.FromSettings(collab.Settings),
	})
	totals.ApplyTo(&calc.result.PricingResult)
	tr.Record(PhaseLayering.String(), "applied markup, overhead, profit and tax",
		"subtotal", totals.Subtotal.String(),
		"tax", totals.Tax.String(),
		"total", totals.Total.String(),
		"deposit", totals.Deposit.String(),
		"balance", totals.Balance.String())

	hash, err := determinism.HashJSON(struct {
		Request       *Request      `json:"request"`
		Collaborators Collaborators `json:"collaborators"`
	}{req, collab})
	if err != nil {
		return nil, errors.Internal("failed to hash calculation input", err)
	}

	res := calc.result
	res.InputHash = hash.Hex()
	res.Trace = tr

	tr.Log(e.logger)
	e.logger.Debug("quote calculated",
		logging.Tenant(req.TenantID),
		logging.Quote(req.QuoteID),
		zap.String("model", string(res.Model)),
		zap.String("total", res.Total.StringFixed(2)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("unconfigured", res.UnconfiguredCount))
	return res, nil
}

// resolve settles the model, tier and every mode before any pricing
func (e *Engine) resolve(ctx context.Context, req *Request, collab Collaborators, tr *trace.Trace) (*calculation, error) {
	rules := types.PricingRules{}
	typ := req.SchemeType
	if collab.Scheme != nil {
		rules = collab.Scheme.Rules
		if typ == "" {
			typ = collab.Scheme.Type
		}
	}
	if req.Rules != nil {
		rules = *req.Rules
	}

	entries := normalize.Normalize(req.ProductSets)
	model, err := scheme.ResolveForCalculation(typ, len(req.Areas) > 0, len(entries) > 0)
	if err != nil {
		return nil, err
	}

	tier, err := e.resolveTier(req.SelectedTier)
	if err != nil {
		return nil, err
	}
	taxMode, err := pick("taxMode", req.TaxMode, rules.TaxMode, e.policy.TaxMode, types.TaxMaterialsOnly)
	if err != nil {
		return nil, err
	}
	materialMode, err := pick("materialMode", req.MaterialMode, "", e.policy.MaterialMode, types.MaterialPerItem)
	if err != nil {
		return nil, err
	}
	rounding, err := pick("gallonRounding", req.GallonRounding, rules.GallonRounding, e.policy.GallonRounding, materialMode.DefaultRounding())
	if err != nil {
		return nil, err
	}

	jobType, err := parseOptional("jobType", req.JobType, types.ParseJobType)
	if err != nil {
		return nil, err
	}
	condition, err := parseOptional("condition", req.Condition, types.ParseCondition)
	if err != nil {
		return nil, err
	}
	method, err := parseOptional("applicationMethod", req.ApplicationMethod, types.ParseApplicationMethod)
	if err != nil {
		return nil, err
	}

	materials := req.Materials() && model != types.ModelFlatRateUnit

	tr.Record(PhaseResolve.String(), "resolved pricing model",
		"schemeType", typ,
		"model", string(model),
		"tier", string(tier),
		"taxMode", string(taxMode),
		"materialMode", string(materialMode),
		"gallonRounding", string(rounding))

	return &calculation{
		ctx:          ctx,
		engine:       e,
		req:          req,
		collab:       collab,
		entries:      entries,
		rules:        rules,
		model:        model,
		tier:         tier,
		taxMode:      taxMode,
		materialMode: materialMode,
		rounding:     rounding,
		jobType:      jobType,
		condition:    condition,
		method:       method,
		materials:    materials,
		trace:        tr,
		result: &Result{PricingResult: types.PricingResult{
			Model:            model,
			Tier:             tier,
			IncludeMaterials: materials,
			TaxMode:          taxMode,
			Breakdown:        []types.AreaBreakdown{},
		}},
	}, nil
}

func (e *Engine) resolveTier(requested types.Tier) (types.Tier, error) {
	if requested == "" {
		if e.policy.Tier != "" {
			return e.policy.Tier, nil
		}
		return types.TierBetter, nil
	}
	t, ok := types.ParseTier(string(requested))
	if !ok {
		return "", errors.Validation("selectedTier", "unknown tier "+string(requested))
	}
	return t, nil
}

// parseOptional normalizes a free-text request field. Empty stays empty;
// a non-empty value the parser rejects is a validation error.
func parseOptional[T ~string](field string, v T, parse func(string) (T, bool)) (T, error) {
	if v == "" {
		return "", nil
	}
	parsed, ok := parse(string(v))
	if !ok {
		return "", errors.Validation(field, "unknown "+field+" "+string(v))
	}
	return parsed, nil
}

type mode interface {
	~string
	IsValid() bool
}

// pick returns the first non-empty of request, scheme and policy values,
// then fallback. A non-empty invalid request or scheme value is an error.
func pick[M mode](field string, request, fromScheme, policy, fallback M) (M, error) {
	for _, m := range []M{request, fromScheme} {
		if m == "" {
			continue
		}
		if !m.IsValid() {
			return "", errors.Validation(field, "unknown "+field+" "+string(m))
		}
		return m, nil
	}
	if policy != "" && policy.IsValid() {
		return policy, nil
	}
	return fallback, nil
}
