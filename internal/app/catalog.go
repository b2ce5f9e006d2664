package service

import (
	"github.com/okian/courtquote/internal/domain/catalog"
	"github.com/okian/courtquote/internal/domain/model"
)

// Sports lists the sports offered by the active catalog.
func (s *Service) Sports() ([]catalog.Sport, error) {
	cat, err := s.catalog.Snapshot()
	if err != nil {
		return nil, err
	}
	return cat.Sports(), nil
}

// EquipmentKit returns the default equipment for sport priced from the
// catalog. Unknown sports have an empty kit.
func (s *Service) EquipmentKit(sport string) ([]model.EquipmentItem, error) {
	cat, err := s.catalog.Snapshot()
	if err != nil {
		return nil, err
	}

	kit := cat.Kit(sport)
	items := make([]model.EquipmentItem, 0, len(kit))
	for _, k := range kit {
		qty := float64(k.Quantity)
		if qty <= 0 {
			qty = 1
		}
		unit := cat.Rate(catalog.TableEquipment, k.ID)
		items = append(items, model.EquipmentItem{
			ID:        k.ID,
			Name:      k.Name,
			Quantity:  qty,
			UnitCost:  unit,
			TotalCost: unit * qty,
		})
	}
	return items, nil
}

// Pricing returns every table of the active catalog.
func (s *Service) Pricing() (catalog.Dump, error) {
	cat, err := s.catalog.Snapshot()
	if err != nil {
		return catalog.Dump{}, err
	}
	return cat.Dump(), nil
}
