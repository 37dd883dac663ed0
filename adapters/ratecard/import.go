package ratecard

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paint-quote/core/determinism"
	"paint-quote/core/types"
	"paint-quote/internal/logging"
)

// Writer is the subset of the storage adapter a rate card import needs
type Writer interface {
	PutContractorSettings(ctx context.Context, settings *types.ContractorSettings) error
	PutLaborRate(ctx context.Context, tenantID, category string, rate decimal.Decimal) error
	PutProduct(ctx context.Context, tenantID string, product *types.ProductConfig) error
	PutPricingScheme(ctx context.Context, tenantID string, scheme *types.PricingScheme, isDefault bool) error
}

// ImportStats counts written records
type ImportStats struct {
	LaborRates int `json:"laborRates"`
	Schemes    int `json:"schemes"`
	Products   int `json:"products"`
}

// Import writes every record of the rate card for its tenant. Records are
// upserted, so re-importing a card is safe.
func Import(ctx context.Context, w Writer, rc *RateCard, logger *zap.Logger) (ImportStats, error) {
	logger = logging.OrNop(logger)
	var stats ImportStats

	settings := rc.Settings
	settings.TenantID = rc.Tenant
	if err := w.PutContractorSettings(ctx, &settings); err != nil {
		return stats, err
	}

	for _, category := range determinism.SortedKeys(rc.LaborRates) {
		if err := w.PutLaborRate(ctx, rc.Tenant, category, rc.LaborRates[category]); err != nil {
			return stats, err
		}
		stats.LaborRates++
	}

	for i := range rc.Schemes {
		s := rc.Schemes[i]
		if err := w.PutPricingScheme(ctx, rc.Tenant, &s.PricingScheme, s.Default); err != nil {
			return stats, err
		}
		stats.Schemes++
	}

	for i := range rc.Products {
		p := rc.Products[i]
		if err := w.PutProduct(ctx, rc.Tenant, &p); err != nil {
			return stats, err
		}
		stats.Products++
	}

	logger.Info("rate card imported",
		logging.Tenant(rc.Tenant),
		zap.Int("labor_rates", stats.LaborRates),
		zap.Int("schemes", stats.Schemes),
		zap.Int("products", stats.Products))
	return stats, nil
}
