// Package storage provides the SQLite persistence adapter for tenant
// pricing data and calculated quotes. Every call takes an explicit tenant.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"paint-quote/core/types"
	"paint-quote/internal/errors"
	"paint-quote/internal/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	driverName    = "sqlite"
	gooseDialect  = "sqlite3"
	migrationsDir = "migrations"
)

// Backend is a storage backend type
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// Store is the storage interface
type Store interface {
	// GetContractorSettings returns the tenant's settings record
	GetContractorSettings(ctx context.Context, tenantID string) (*types.ContractorSettings, error)

	// PutContractorSettings upserts the tenant's settings record
	PutContractorSettings(ctx context.Context, settings *types.ContractorSettings) error

	// GetLaborRates returns rates keyed by lower-cased category name
	GetLaborRates(ctx context.Context, tenantID string) (map[string]decimal.Decimal, error)

	// PutLaborRate upserts one labor rate
	PutLaborRate(ctx context.Context, tenantID, category string, rate decimal.Decimal) error

	// GetProducts returns the requested products in one batch; missing
	// ids are absent from the map
	GetProducts(ctx context.Context, tenantID string, ids []types.ProductID) (map[types.ProductID]types.ProductConfig, error)

	// PutProduct upserts a product
	PutProduct(ctx context.Context, tenantID string, product *types.ProductConfig) error

	// GetPricingScheme returns a scheme by id, or the tenant default for
	// an empty id
	GetPricingScheme(ctx context.Context, tenantID, schemeID string) (*types.PricingScheme, error)

	// PutPricingScheme upserts a scheme
	PutPricingScheme(ctx context.Context, tenantID string, scheme *types.PricingScheme, isDefault bool) error

	// SaveQuote persists a calculated quote
	SaveQuote(ctx context.Context, quote *StoredQuote) error

	// GetQuote retrieves a quote by id
	GetQuote(ctx context.Context, tenantID, id string) (*StoredQuote, error)

	// ListQuotes lists quotes newest first
	ListQuotes(ctx context.Context, tenantID string, filter *ListFilter) ([]*StoredQuote, error)

	// Compare compares two quotes
	Compare(ctx context.Context, tenantID, oldID, newID string) (*CompareResult, error)

	// Close closes the store
	Close() error
}

// SQLiteStore is the SQLite-backed Store
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a SQLiteStore
type Option func(*SQLiteStore)

// WithLogger sets the store logger
func WithLogger(l *zap.Logger) Option {
	return func(s *SQLiteStore) {
		s.logger = logging.OrNop(l)
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		s.now = now
	}
}

// Open opens a SQLite database, sets recommended pragmas, and validates
// connectivity. Migrations are not applied; call Migrate.
func Open(path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.Storage("open sqlite database", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, errors.Storage("set sqlite pragmas", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Storage("ping sqlite database", err)
	}

	s := &SQLiteStore{db: db, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Migrate applies all pending embedded migrations
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{s.logger.Sugar()})
	if err := goose.SetDialect(gooseDialect); err != nil {
		return errors.Storage("set goose dialect", err)
	}
	if err := goose.UpContext(ctx, s.db, migrationsDir); err != nil {
		return errors.Storage("run goose up migrations", err)
	}
	return nil
}

// Version returns the applied schema version
func (s *SQLiteStore) Version(ctx context.Context) (int64, error) {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return 0, errors.Storage("set goose dialect", err)
	}
	v, err := goose.GetDBVersionContext(ctx, s.db)
	if err != nil {
		return 0, errors.Storage("read schema version", err)
	}
	return v, nil
}

// Close closes the store
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

type gooseLogger struct {
	sugar *zap.SugaredLogger
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.sugar.Fatalf(format, v...)
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// StoreFactory creates a migrated store for a backend
func StoreFactory(ctx context.Context, backend Backend, config map[string]string, opts ...Option) (Store, error) {
	var path string
	switch backend {
	case BackendSQLite:
		path = config["path"]
		if path == "" {
			return nil, errors.Config(fmt.Sprintf("%s backend requires a path", backend), nil)
		}
	case BackendMemory:
		path = ":memory:"
	default:
		return nil, errors.Config(fmt.Sprintf("unsupported backend: %s", backend), nil)
	}

	s, err := Open(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
