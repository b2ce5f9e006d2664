// Package estimate prices a canonical request against a catalog.
package estimate

import (
	"math"

	"github.com/okian/courtquote/internal/domain/catalog"
	"github.com/okian/courtquote/internal/domain/model"
)

// DefaultArea is used when neither the catalog nor the client supplies a court area.
const DefaultArea = 100.0

// ConstructionStandard selects the catalog court size for the sport. Any
// other construction type uses the client supplied area.
const ConstructionStandard = "standard"

// Engine computes cost breakdowns. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	recomputeEquipment bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithEquipmentRecompute prices equipment from the catalog instead of
// trusting the client supplied line totals.
func WithEquipmentRecompute(enabled bool) Option {
	return func(e *Engine) {
		e.recomputeEquipment = enabled
	}
}

// New returns an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = New()

// Estimate prices req with the default engine.
func Estimate(req model.Request, cat *catalog.Catalog) model.Breakdown {
	return defaultEngine.Estimate(req, cat)
}

// Estimate prices req. Lines derived from a catalog rate are rounded to the
// nearest rupee; equipment and legacy extras are summed as sent.
func (e *Engine) Estimate(req model.Request, cat *catalog.Catalog) model.Breakdown {
	r := req.Requirements
	area := e.ResolveArea(req.ProjectInfo, cat)

	b := model.Breakdown{
		Area:          area,
		BaseCost:      round(cat.Rate(catalog.TableBase, r.Base.Type) * area),
		FlooringCost:  round(cat.Rate(catalog.TableFlooring, r.Flooring.Type) * area),
		EquipmentCost: equipmentCost(r.Equipment),
	}

	switch r.FeatureShape {
	case model.ShapeCurrent:
		e.currentFeatures(&b, r.AdditionalFeatures, cat)
	case model.ShapeLegacy:
		e.legacyFeatures(&b, r, cat)
	}

	b.TotalCost = b.LineSum()
	return b
}

// ResolveArea returns the court area for p. Standard construction uses the
// catalog size for the sport; anything else uses the client area. Either
// falls back to the default area when missing or not positive.
func (e *Engine) ResolveArea(p model.ProjectInfo, cat *catalog.Catalog) float64 {
	if p.ConstructionType != ConstructionStandard {
		return positiveOr(p.CustomArea, DefaultArea)
	}
	if a, ok := cat.StandardArea(p.Sport); ok && a > 0 {
		return a
	}
	return DefaultArea
}

// PriceEquipment returns the equipment lines the engine charges for. With
// recompute enabled they are repriced from the catalog, otherwise items is
// returned unchanged.
func (e *Engine) PriceEquipment(items []model.EquipmentItem, cat *catalog.Catalog) []model.EquipmentItem {
	if !e.recomputeEquipment {
		return items
	}
	return Reprice(items, cat)
}

func equipmentCost(items []model.EquipmentItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.TotalCost
	}
	return sum
}

func (e *Engine) currentFeatures(b *model.Breakdown, fs model.FeatureSet, cat *catalog.Catalog) {
	rate := func(key string) float64 { return cat.Rate(catalog.TableAdditionalFeatures, key) }

	if fs.Drainage.Required {
		b.DrainageCost = round(rate(catalog.DrainageKey) * b.Area)
	}
	if fs.Fencing.Active() {
		b.FencingCost = round(rate(fs.Fencing.Type) * fs.Fencing.Length)
	}
	if fs.Lighting.Active() {
		b.LightingCost = round(rate(fs.Lighting.Type) * quantityOrOne(fs.Lighting.Quantity))
	}
	if fs.Shed.Active() {
		b.ShedCost = round(rate(fs.Shed.Type) * positiveOr(fs.Shed.Area, b.Area))
	}
}

func (e *Engine) legacyFeatures(b *model.Breakdown, r model.Requirements, cat *catalog.Catalog) {
	if r.Lighting.Active() {
		b.LightingCost = round(cat.Rate(catalog.TableLighting, r.Lighting.Type) * quantityOrOne(r.Lighting.Quantity))
	}
	if r.Roof.Active() {
		b.ShedCost = round(cat.Rate(catalog.TableRoof, r.Roof.Type) * positiveOr(r.Roof.Area, b.Area))
	}
	var extras float64
	for _, f := range r.LegacyFeatures {
		extras += f.Cost
	}
	b.AdditionalCost = extras
}

// Reprice returns a copy of items with unit and line costs taken from the
// equipment table. A missing quantity counts as one. Items the catalog does
// not price keep their client values.
func Reprice(items []model.EquipmentItem, cat *catalog.Catalog) []model.EquipmentItem {
	out := make([]model.EquipmentItem, len(items))
	for i, it := range items {
		unit, ok := cat.LookupRate(catalog.TableEquipment, it.ID)
		if ok {
			qty := quantityOrOne(it.Quantity)
			it.Quantity = qty
			it.UnitCost = unit
			it.TotalCost = round(unit * qty)
		}
		out[i] = it
	}
	return out
}

func quantityOrOne(q float64) float64 {
	return positiveOr(q, 1)
}

func positiveOr(v, fallback float64) float64 {
	if v > 0 {
		return v
	}
	return fallback
}

// round rounds half away from zero.
func round(v float64) float64 {
	return math.Round(v)
}
