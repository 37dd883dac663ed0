// Package api - Thin HTTP layer over the quote engine
// The API is ONLY responsible for: tenant data fetching, engine
// invocation, persistence, event publishing and output serialization.
// The API NEVER performs pricing logic.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paint-quote/adapters/events"
	"paint-quote/adapters/storage"
	"paint-quote/core/engine"
	"paint-quote/core/output"
	"paint-quote/core/types"
	"paint-quote/internal/errors"
	"paint-quote/internal/logging"
)

// Store is the storage the API reads and writes
type Store interface {
	GetContractorSettings(ctx context.Context, tenantID string) (*types.ContractorSettings, error)
	GetLaborRates(ctx context.Context, tenantID string) (map[string]decimal.Decimal, error)
	GetProducts(ctx context.Context, tenantID string, ids []types.ProductID) (map[types.ProductID]types.ProductConfig, error)
	GetPricingScheme(ctx context.Context, tenantID, schemeID string) (*types.PricingScheme, error)
	SaveQuote(ctx context.Context, quote *storage.StoredQuote) error
	GetQuote(ctx context.Context, tenantID, id string) (*storage.StoredQuote, error)
	ListQuotes(ctx context.Context, tenantID string, filter *storage.ListFilter) ([]*storage.StoredQuote, error)
	Compare(ctx context.Context, tenantID, oldID, newID string) (*storage.CompareResult, error)
}

// Options configures a Server
type Options struct {
	Version   string
	Engine    *engine.Engine
	Store     Store
	Publisher events.Publisher
	Logger    *zap.Logger

	// RateLimit is requests per second per client; zero disables limiting
	RateLimit float64
	RateBurst int

	// RequestTimeout bounds each request; zero means no timeout
	RequestTimeout time.Duration
}

// Server is the API server
type Server struct {
	router     chi.Router
	version    string
	engine     *engine.Engine
	store      Store
	publisher  events.Publisher
	formatters *output.Registry
	logger     *zap.Logger
	now        func() time.Time
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	s := &Server{
		version:    opts.Version,
		engine:     opts.Engine,
		store:      opts.Store,
		publisher:  opts.Publisher,
		formatters: output.NewRegistry(),
		logger:     logging.OrNop(opts.Logger),
		now:        time.Now,
	}
	if s.engine == nil {
		s.engine = engine.New(engine.WithLogger(s.logger))
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if opts.RateLimit > 0 {
		r.Use(newClientLimiter(opts.RateLimit, opts.RateBurst).middleware)
	}
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	s.router = r

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/version", s.handleVersion)

	s.router.Route("/v1/tenants/{tenantID}/quotes", func(r chi.Router) {
		r.Post("/calculate", s.handleCalculate(true))
		r.Post("/preview", s.handleCalculate(false))
		r.Get("/", s.handleListQuotes)
		r.Get("/compare", s.handleCompareQuotes)
		r.Get("/{quoteID}", s.handleGetQuote)
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    s.now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "paint-quote",
		"api_version": "v1",
	}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

// errorBody is the error response payload
type errorBody struct {
	Code    errors.Type            `json:"code"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Code: errors.TypeOf(err), Message: err.Error()}

	var e *errors.Error
	if errors.As(err, &e) {
		body.Message = e.Message
		body.Context = e.Context
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		body.Message = "internal error"
		body.Context = nil
	}
	s.writeJSON(w, map[string]errorBody{"error": body}, status)
}

// statusFor maps error types to HTTP status codes
func statusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.TypeInput, errors.TypeValidation:
		return http.StatusBadRequest
	case errors.TypeNotFound:
		return http.StatusNotFound
	case errors.TypeSkipped:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the server and shuts it down when ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", zap.String("addr", addr), zap.String("version", s.version))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
