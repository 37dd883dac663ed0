package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paint-quote/core/types"
	"paint-quote/internal/errors"
	"paint-quote/internal/logging"
)

// GetContractorSettings returns the tenant's settings record
func (s *SQLiteStore) GetContractorSettings(ctx context.Context, tenantID string) (*types.ContractorSettings, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT settings_json FROM contractor_settings WHERE tenant_id = ?`, tenantID,
	).Scan(&raw)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("contractor settings", tenantID)
	}
	if err != nil {
		return nil, errors.Storage("query contractor settings", err)
	}

	var settings types.ContractorSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, errors.Storage("decode contractor settings", err)
	}
	settings.TenantID = tenantID
	return &settings, nil
}

// PutContractorSettings upserts the tenant's settings record
func (s *SQLiteStore) PutContractorSettings(ctx context.Context, settings *types.ContractorSettings) error {
	if settings.TenantID == "" {
		return errors.Validation("tenantId", "tenant id is required")
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return errors.Internal("encode contractor settings", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contractor_settings (tenant_id, settings_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (tenant_id) DO UPDATE SET
			settings_json = excluded.settings_json,
			updated_at = excluded.updated_at`,
		settings.TenantID, string(raw), s.timestamp(),
	)
	if err != nil {
		return errors.Storage("upsert contractor settings", err)
	}
	s.logger.Debug("contractor settings saved", logging.Tenant(settings.TenantID))
	return nil
}

// GetLaborRates returns rates keyed by lower-cased category name
func (s *SQLiteStore) GetLaborRates(ctx context.Context, tenantID string) (map[string]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, rate FROM labor_rates WHERE tenant_id = ?`, tenantID)
	if err != nil {
		return nil, errors.Storage("query labor rates", err)
	}
	defer rows.Close()

	rates := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			category string
			rate     decimal.Decimal
		)
		if err := rows.Scan(&category, &rate); err != nil {
			return nil, errors.Storage("scan labor rate", err)
		}
		rates[category] = rate
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("iterate labor rates", err)
	}
	return rates, nil
}

// PutLaborRate upserts one labor rate
func (s *SQLiteStore) PutLaborRate(ctx context.Context, tenantID, category string, rate decimal.Decimal) error {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return errors.Validation("category", "category is required")
	}
	if rate.IsNegative() {
		return errors.Validation("rate", "labor rate must be non-negative")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO labor_rates (tenant_id, category, rate)
		VALUES (?, ?, ?)
		ON CONFLICT (tenant_id, category) DO UPDATE SET rate = excluded.rate`,
		tenantID, category, rate.String(),
	)
	if err != nil {
		return errors.Storage("upsert labor rate", err)
	}
	return nil
}

// GetProducts returns the requested products in one batch
func (s *SQLiteStore) GetProducts(ctx context.Context, tenantID string, ids []types.ProductID) (map[types.ProductID]types.ProductConfig, error) {
	products := make(map[types.ProductID]types.ProductConfig, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, tenantID)
	for _, id := range ids {
		args = append(args, string(id))
	}
	query := `SELECT config_json FROM products WHERE tenant_id = ? AND id IN (?` +
		strings.Repeat(", ?", len(ids)-1) + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Storage("query products", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Storage("scan product", err)
		}
		var p types.ProductConfig
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, errors.Storage("decode product", err)
		}
		products[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("iterate products", err)
	}

	if missing := len(ids) - len(products); missing > 0 {
		s.logger.Debug("products not found",
			logging.Tenant(tenantID), zap.Int("missing", missing))
	}
	return products, nil
}

// PutProduct upserts a product
func (s *SQLiteStore) PutProduct(ctx context.Context, tenantID string, product *types.ProductConfig) error {
	if product.ID.IsZero() {
		return errors.Validation("id", "product id is required")
	}
	raw, err := json.Marshal(product)
	if err != nil {
		return errors.Internal("encode product", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products (tenant_id, id, name, config_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (tenant_id, id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json`,
		tenantID, string(product.ID), product.Name, string(raw),
	)
	if err != nil {
		return errors.Storage("upsert product", err)
	}
	return nil
}

// GetPricingScheme returns a scheme by id, or the tenant default for an
// empty id
func (s *SQLiteStore) GetPricingScheme(ctx context.Context, tenantID, schemeID string) (*types.PricingScheme, error) {
	var row *sql.Row
	if schemeID == "" {
		row = s.db.QueryRowContext(ctx, `
			SELECT id, type, rules_json FROM pricing_schemes
			WHERE tenant_id = ? AND is_default = 1
			ORDER BY updated_at DESC, id LIMIT 1`, tenantID)
	} else {
		row = s.db.QueryRowContext(ctx, `
			SELECT id, type, rules_json FROM pricing_schemes
			WHERE tenant_id = ? AND id = ?`, tenantID, schemeID)
	}

	var (
		scheme types.PricingScheme
		rules  string
	)
	err := row.Scan(&scheme.ID, &scheme.Type, &rules)
	if stderrors.Is(err, sql.ErrNoRows) {
		id := schemeID
		if id == "" {
			id = "default for " + tenantID
		}
		return nil, errors.NotFound("pricing scheme", id)
	}
	if err != nil {
		return nil, errors.Storage("query pricing scheme", err)
	}
	if err := json.Unmarshal([]byte(rules), &scheme.Rules); err != nil {
		return nil, errors.Storage("decode pricing rules", err)
	}
	return &scheme, nil
}

// PutPricingScheme upserts a scheme. Marking a scheme default clears the
// flag on the tenant's other schemes.
func (s *SQLiteStore) PutPricingScheme(ctx context.Context, tenantID string, scheme *types.PricingScheme, isDefault bool) error {
	if scheme.ID == "" {
		return errors.Validation("id", "scheme id is required")
	}
	rules, err := json.Marshal(scheme.Rules)
	if err != nil {
		return errors.Internal("encode pricing rules", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("begin transaction", err)
	}
	defer tx.Rollback()

	if isDefault {
		if _, err := tx.ExecContext(ctx,
			`UPDATE pricing_schemes SET is_default = 0 WHERE tenant_id = ?`, tenantID); err != nil {
			return errors.Storage("clear default scheme", err)
		}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO pricing_schemes (tenant_id, id, type, rules_json, is_default, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, id) DO UPDATE SET
			type = excluded.type,
			rules_json = excluded.rules_json,
			is_default = excluded.is_default,
			updated_at = excluded.updated_at`,
		tenantID, scheme.ID, scheme.Type, string(rules), isDefault, s.timestamp(),
	)
	if err != nil {
		return errors.Storage("upsert pricing scheme", err)
	}
	if err := tx.Commit(); err != nil {
		return errors.Storage("commit pricing scheme", err)
	}
	return nil
}
