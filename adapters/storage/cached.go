package storage

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"paint-quote/core/types"
)

// CachedStore caches per-tenant settings, labor rates and default schemes.
// Concurrent misses for the same key share one database read.
type CachedStore struct {
	Store

	cache *cache.Cache
	sf    singleflight.Group
}

// NewCachedStore wraps a store. Writes through the wrapper invalidate the
// affected tenant entries.
func NewCachedStore(store Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		Store: store,
		cache: cache.New(ttl, 2*ttl),
	}
}

func settingsKey(tenantID string) string {
	return "settings:" + tenantID
}

func ratesKey(tenantID string) string {
	return "labor_rates:" + tenantID
}

func schemeKey(tenantID, id string) string {
	return "scheme:" + tenantID + ":" + id
}

// load returns a cached value or runs fetch once for all concurrent callers.
// The shared fetch ignores the first caller's cancellation so one dropped
// request cannot fail every waiter on the same key.
func (c *CachedStore) load(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.sf.Do(key, func() (any, error) {
		if v, ok := c.cache.Get(key); ok {
			return v, nil
		}
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, v, cache.DefaultExpiration)
		return v, nil
	})
	return v, err
}

// GetContractorSettings returns the cached settings record. Callers get a
// copy.
func (c *CachedStore) GetContractorSettings(ctx context.Context, tenantID string) (*types.ContractorSettings, error) {
	v, err := c.load(ctx, settingsKey(tenantID), func(ctx context.Context) (any, error) {
		return c.Store.GetContractorSettings(ctx, tenantID)
	})
	if err != nil {
		return nil, err
	}
	settings := *v.(*types.ContractorSettings)
	return &settings, nil
}

// PutContractorSettings writes through and invalidates
func (c *CachedStore) PutContractorSettings(ctx context.Context, settings *types.ContractorSettings) error {
	if err := c.Store.PutContractorSettings(ctx, settings); err != nil {
		return err
	}
	c.cache.Delete(settingsKey(settings.TenantID))
	return nil
}

// GetLaborRates returns a copy of the cached rate table
func (c *CachedStore) GetLaborRates(ctx context.Context, tenantID string) (map[string]decimal.Decimal, error) {
	v, err := c.load(ctx, ratesKey(tenantID), func(ctx context.Context) (any, error) {
		return c.Store.GetLaborRates(ctx, tenantID)
	})
	if err != nil {
		return nil, err
	}
	cached := v.(map[string]decimal.Decimal)
	rates := make(map[string]decimal.Decimal, len(cached))
	for k, r := range cached {
		rates[k] = r
	}
	return rates, nil
}

// PutLaborRate writes through and invalidates
func (c *CachedStore) PutLaborRate(ctx context.Context, tenantID, category string, rate decimal.Decimal) error {
	if err := c.Store.PutLaborRate(ctx, tenantID, category, rate); err != nil {
		return err
	}
	c.cache.Delete(ratesKey(tenantID))
	return nil
}

// GetPricingScheme returns the cached scheme
func (c *CachedStore) GetPricingScheme(ctx context.Context, tenantID, schemeID string) (*types.PricingScheme, error) {
	v, err := c.load(ctx, schemeKey(tenantID, schemeID), func(ctx context.Context) (any, error) {
		return c.Store.GetPricingScheme(ctx, tenantID, schemeID)
	})
	if err != nil {
		return nil, err
	}
	scheme := *v.(*types.PricingScheme)
	return &scheme, nil
}

// PutPricingScheme writes through and drops every cached scheme for the
// tenant, since the default may have moved
func (c *CachedStore) PutPricingScheme(ctx context.Context, tenantID string, scheme *types.PricingScheme, isDefault bool) error {
	if err := c.Store.PutPricingScheme(ctx, tenantID, scheme, isDefault); err != nil {
		return err
	}
	prefix := schemeKey(tenantID, "")
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
	return nil
}

// Flush drops every cached entry
func (c *CachedStore) Flush() {
	c.cache.Flush()
}
