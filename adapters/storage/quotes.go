package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paint-quote/core/types"
	"paint-quote/internal/errors"
	"paint-quote/internal/logging"
)

// StoredQuote is a persisted calculation
type StoredQuote struct {
	// ID is unique identifier
	ID string `json:"id"`

	// TenantID owns the quote
	TenantID string `json:"tenantId"`

	Model types.Model     `json:"model"`
	Tier  types.Tier      `json:"tier"`
	Total decimal.Decimal `json:"total"`

	// InputHash identifies the priced inputs
	InputHash string `json:"inputHash"`

	// Request is the calculation request as received
	Request json.RawMessage `json:"request,omitempty"`

	// Result is the full pricing result
	Result json.RawMessage `json:"result,omitempty"`

	// CreatedAt timestamp
	CreatedAt time.Time `json:"createdAt"`
}

// ListFilter filters quote listing
type ListFilter struct {
	Model  types.Model
	Since  time.Time
	Until  time.Time
	Limit  int
	Offset int
}

// CompareResult is a comparison between two quotes
type CompareResult struct {
	OldID        string          `json:"oldId"`
	NewID        string          `json:"newId"`
	OldTotal     decimal.Decimal `json:"oldTotal"`
	NewTotal     decimal.Decimal `json:"newTotal"`
	Delta        decimal.Decimal `json:"delta"`
	DeltaPercent decimal.Decimal `json:"deltaPercent"`
	SameInputs   bool            `json:"sameInputs"`
}

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// SaveQuote persists a calculated quote, assigning an id and timestamp
// when they are unset
func (s *SQLiteStore) SaveQuote(ctx context.Context, quote *StoredQuote) error {
	if quote.TenantID == "" {
		return errors.Validation("tenantId", "tenant id is required")
	}
	if quote.ID == "" {
		quote.ID = uuid.New().String()
	}
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (id, tenant_id, model, tier, total, input_hash, request_json, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		quote.ID, quote.TenantID, string(quote.Model), string(quote.Tier), quote.Total.String(),
		quote.InputHash, rawOrNull(quote.Request), rawOrNull(quote.Result),
		quote.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Storage("insert quote", err)
	}
	s.logger.Info("quote saved",
		logging.Tenant(quote.TenantID), logging.Quote(quote.ID),
		zap.String("total", quote.Total.StringFixed(2)))
	return nil
}

// GetQuote retrieves a quote by id
func (s *SQLiteStore) GetQuote(ctx context.Context, tenantID, id string) (*StoredQuote, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, model, tier, total, input_hash, request_json, result_json, created_at
		FROM quotes WHERE tenant_id = ? AND id = ?`, tenantID, id)
	q, err := scanQuote(row.Scan)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("quote", id)
	}
	if err != nil {
		return nil, errors.Storage("query quote", err)
	}
	return q, nil
}

// ListQuotes lists quotes newest first. Request and result payloads are
// left out of listings.
func (s *SQLiteStore) ListQuotes(ctx context.Context, tenantID string, filter *ListFilter) ([]*StoredQuote, error) {
	if filter == nil {
		filter = &ListFilter{}
	}

	var (
		where = []string{"tenant_id = ?"}
		args  = []any{tenantID}
	)
	if filter.Model != "" {
		where = append(where, "model = ?")
		args = append(args, string(filter.Model))
	}
	if !filter.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339Nano))
	}
	if !filter.Until.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, filter.Until.UTC().Format(time.RFC3339Nano))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, model, tier, total, input_hash, NULL, NULL, created_at
		FROM quotes WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, errors.Storage("query quotes", err)
	}
	defer rows.Close()

	var quotes []*StoredQuote
	for rows.Next() {
		q, err := scanQuote(rows.Scan)
		if err != nil {
			return nil, errors.Storage("scan quote", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("iterate quotes", err)
	}
	return quotes, nil
}

// Compare compares two quotes
func (s *SQLiteStore) Compare(ctx context.Context, tenantID, oldID, newID string) (*CompareResult, error) {
	oldQuote, err := s.GetQuote(ctx, tenantID, oldID)
	if err != nil {
		return nil, err
	}
	newQuote, err := s.GetQuote(ctx, tenantID, newID)
	if err != nil {
		return nil, err
	}

	delta := newQuote.Total.Sub(oldQuote.Total)
	percent := decimal.Zero
	if !oldQuote.Total.IsZero() {
		percent = delta.Div(oldQuote.Total).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return &CompareResult{
		OldID:        oldID,
		NewID:        newID,
		OldTotal:     oldQuote.Total,
		NewTotal:     newQuote.Total,
		Delta:        delta,
		DeltaPercent: percent,
		SameInputs:   oldQuote.InputHash == newQuote.InputHash,
	}, nil
}

func scanQuote(scan func(dest ...any) error) (*StoredQuote, error) {
	var (
		q         StoredQuote
		model     string
		tier      string
		request   sql.NullString
		result    sql.NullString
		createdAt string
	)
	if err := scan(&q.ID, &q.TenantID, &model, &tier, &q.Total, &q.InputHash, &request, &result, &createdAt); err != nil {
		return nil, err
	}
	q.Model = types.Model(model)
	q.Tier = types.Tier(tier)
	if request.Valid {
		q.Request = json.RawMessage(request.String)
	}
	if result.Valid {
		q.Result = json.RawMessage(result.String)
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, err
	}
	q.CreatedAt = t
	return &q, nil
}

func rawOrNull(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}
