package api

import (
	"net/http"
	"strings"
)

type sportsResponse struct {
	Sports any `json:"sports"`
}

// CatalogHandler serves read-only catalog views used by the configurator.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleSports handles GET /sports-config requests.
func (h *CatalogHandler) HandleSports(w http.ResponseWriter, r *http.Request) {
	const op = "api.sports_config"
	sports, err := h.deps.Sports()
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sportsResponse{Sports: sports})
}

// HandleEquipment handles GET /equipment/{sport} requests.
func (h *CatalogHandler) HandleEquipment(w http.ResponseWriter, r *http.Request) {
	const op = "api.equipment"
	sport := strings.TrimSpace(r.PathValue("sport"))
	if sport == "" {
		writeFailure(w, r, op, NewKind(op, ErrBadRequest))
		return
	}
	kit, err := h.deps.EquipmentKit(sport)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, kit)
}

// HandlePricing handles GET /debug/pricing requests.
func (h *CatalogHandler) HandlePricing(w http.ResponseWriter, r *http.Request) {
	const op = "api.debug_pricing"
	tables, err := h.deps.Pricing()
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}
