// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/courtquote/internal/adapters/render"
	"github.com/okian/courtquote/internal/domain/catalog"
	"github.com/okian/courtquote/internal/domain/model"
	"github.com/okian/courtquote/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	QuotationDependencies
	CatalogDependencies
	StatsProvider
}

// QuotationDependencies covers submission and retrieval of quotations.
type QuotationDependencies interface {
	// Submit validates, prices and stores a raw request body.
	Submit(ctx context.Context, body []byte, idempotencyKey string) (model.Quotation, bool, error)
	Get(ctx context.Context, number string) (model.Quotation, error)
	List(ctx context.Context, limit int) ([]model.Quotation, error)
	Document(ctx context.Context, number string, format render.Format) ([]byte, error)
}

// CatalogDependencies exposes read-only views of the pricing catalog.
type CatalogDependencies interface {
	Sports() ([]catalog.Sport, error)
	EquipmentKit(sport string) ([]model.EquipmentItem, error)
	Pricing() (catalog.Dump, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	quotationHandler *QuotationHandler
	catalogHandler   *CatalogHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		quotationHandler: NewQuotationHandler(deps, opts...),
		catalogHandler:   NewCatalogHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /quotations", MetricsMiddleware(s.quotationHandler.HandleCreate, "quotations"))
	mux.HandleFunc("POST /api/quotations", MetricsMiddleware(s.quotationHandler.HandleCreate, "quotations"))
	mux.HandleFunc("GET /quotations", MetricsMiddleware(s.quotationHandler.HandleList, "quotations"))
	mux.HandleFunc("GET /quotations/{number}", MetricsMiddleware(s.quotationHandler.HandleGet, "quotation"))
	mux.HandleFunc("GET /quotations/{number}/document", MetricsMiddleware(s.quotationHandler.HandleDocument, "document"))

	mux.HandleFunc("GET /sports-config", MetricsMiddleware(s.catalogHandler.HandleSports, "sports_config"))
	mux.HandleFunc("GET /equipment/{sport}", MetricsMiddleware(s.catalogHandler.HandleEquipment, "equipment"))
	mux.HandleFunc("GET /debug/pricing", MetricsMiddleware(s.catalogHandler.HandlePricing, "debug_pricing"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure classifies err and writes the matching error response.
// Server-side causes are logged, never echoed to the client.
func writeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Named("api").Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("code", code),
			logger.Error(Wrap(op, err)),
		)
		if code == "persistence_unavailable" {
			w.Header().Set("Retry-After", "1")
		}
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}
