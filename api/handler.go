package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"paint-quote/adapters/events"
	"paint-quote/adapters/storage"
	"paint-quote/core/engine"
	"paint-quote/core/normalize"
	"paint-quote/core/output"
	"paint-quote/core/tier"
	"paint-quote/core/types"
	"paint-quote/internal/errors"
	"paint-quote/internal/logging"
)

const maxRequestBytes = 1 << 20

// CalculateRequest is the calculation request body
type CalculateRequest struct {
	// SchemeID selects a stored scheme; empty means the tenant default
	SchemeID string `json:"schemeId,omitempty"`

	engine.Request
}

// handleCalculate handles POST /calculate (persist) and POST /preview
func (s *Server) handleCalculate(persist bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := s.now()
		tenantID := chi.URLParam(r, "tenantID")

		formatter, err := s.formatter(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err != nil {
			s.writeError(w, r, errors.Input("failed to read request body", err))
			return
		}
		var req CalculateRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			if errors.IsType(err, errors.TypeValidation) {
				s.writeError(w, r, err)
				return
			}
			s.writeError(w, r, errors.Input("invalid JSON", err))
			return
		}
		req.TenantID = tenantID

		collab, err := s.fetchCollaborators(ctx, tenantID, req.SchemeID, &req.Request)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		res, err := s.engine.Calculate(ctx, &req.Request, collab)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		quote := &output.Quote{
			Result: res,
			Metadata: output.Metadata{
				TenantID:  tenantID,
				Timestamp: start.UTC().Format(time.RFC3339),
				Version:   s.version,
			},
		}

		status := http.StatusOK
		if persist {
			id, err := s.persist(ctx, tenantID, raw, res)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			quote.Metadata.QuoteID = id
			status = http.StatusCreated
		}
		quote.Metadata.Duration = s.now().Sub(start).String()

		s.render(w, r, formatter, quote, status)
	}
}

// fetchCollaborators reads tenant data concurrently. Missing settings
// fall back to defaults; a missing default scheme is allowed when the
// request names its own type.
func (s *Server) fetchCollaborators(ctx context.Context, tenantID, schemeID string, req *engine.Request) (engine.Collaborators, error) {
	var collab engine.Collaborators
	ids := tier.CollectProductIDs(normalize.Normalize(req.ProductSets))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		settings, err := s.store.GetContractorSettings(ctx, tenantID)
		if errors.IsType(err, errors.TypeNotFound) {
			settings = &types.ContractorSettings{TenantID: tenantID}
		} else if err != nil {
			return err
		}
		collab.Settings = settings.Resolve()
		return nil
	})
	g.Go(func() error {
		rates, err := s.store.GetLaborRates(ctx, tenantID)
		collab.LaborRates = rates
		return err
	})
	g.Go(func() error {
		products, err := s.store.GetProducts(ctx, tenantID, ids)
		collab.Products = products
		return err
	})
	g.Go(func() error {
		scheme, err := s.store.GetPricingScheme(ctx, tenantID, schemeID)
		if errors.IsType(err, errors.TypeNotFound) && schemeID == "" {
			return nil
		}
		collab.Scheme = scheme
		return err
	})

	if err := g.Wait(); err != nil {
		return engine.Collaborators{}, err
	}
	return collab, nil
}

func (s *Server) persist(ctx context.Context, tenantID string, request []byte, res *engine.Result) (string, error) {
	result, err := json.Marshal(res)
	if err != nil {
		return "", errors.Internal("encode result", err)
	}
	stored := &storage.StoredQuote{
		TenantID:  tenantID,
		Model:     res.Model,
		Tier:      res.Tier,
		Total:     res.Total,
		InputHash: res.InputHash,
		Request:   request,
		Result:    result,
	}
	if err := s.store.SaveQuote(ctx, stored); err != nil {
		return "", err
	}

	event := events.QuoteCalculated(tenantID, stored.ID, res, stored.CreatedAt)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("quote event not published",
			logging.Tenant(tenantID), logging.Quote(stored.ID), zap.Error(err))
	}
	return stored.ID, nil
}

// formatter picks the output format from the format query parameter
func (s *Server) formatter(r *http.Request) (output.Formatter, error) {
	q := r.URL.Query()
	format := output.Format(q.Get("format"))
	switch format {
	case "":
		format = output.FormatJSON
	case output.FormatCLI:
		return output.NewCLIFormatter(q.Get("details") == "true"), nil
	}
	f, ok := s.formatters.Get(format)
	if !ok {
		return nil, errors.Validation("format", "unsupported format "+string(format))
	}
	return f, nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, f output.Formatter, quote *output.Quote, status int) {
	if f.Format() == output.FormatJSON {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(status)
	if err := f.Render(w, quote); err != nil {
		s.logger.Warn("failed to render quote", zap.Error(err))
	}
}

// handleGetQuote handles GET /quotes/{quoteID}
func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := s.store.GetQuote(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "quoteID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, quote, http.StatusOK)
}

// handleListQuotes handles GET /quotes
func (s *Server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	quotes, err := s.store.ListQuotes(r.Context(), chi.URLParam(r, "tenantID"), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if quotes == nil {
		quotes = []*storage.StoredQuote{}
	}
	s.writeJSON(w, map[string]interface{}{
		"quotes": quotes,
		"count":  len(quotes),
	}, http.StatusOK)
}

// handleCompareQuotes handles GET /quotes/compare?old=&new=
func (s *Server) handleCompareQuotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	oldID, newID := q.Get("old"), q.Get("new")
	if oldID == "" || newID == "" {
		s.writeError(w, r, errors.Validation("old,new", "old and new quote ids are required"))
		return
	}
	cmp, err := s.store.Compare(r.Context(), chi.URLParam(r, "tenantID"), oldID, newID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, cmp, http.StatusOK)
}

func parseListFilter(r *http.Request) (*storage.ListFilter, error) {
	q := r.URL.Query()
	filter := &storage.ListFilter{Model: types.Model(q.Get("model"))}

	if filter.Model != "" && !filter.Model.IsValid() {
		return nil, errors.Validation("model", "unknown model "+string(filter.Model))
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"limit", &filter.Limit},
		{"offset", &filter.Offset},
	} {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return nil, errors.Validation(p.name, p.name+" must be a non-negative integer")
			}
			*p.dst = n
		}
	}
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{
		{"since", &filter.Since},
		{"until", &filter.Until},
	} {
		if v := q.Get(p.name); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, errors.Validation(p.name, p.name+" must be an RFC3339 timestamp")
			}
			*p.dst = t
		}
	}
	return filter, nil
}
