package model

import "encoding/json"

// Breakdown is the priced result of a request. Every line is a whole rupee
// amount and TotalCost is the sum of the eight lines.
type Breakdown struct {
	Area           float64 `json:"area"`
	BaseCost       float64 `json:"baseCost"`
	FlooringCost   float64 `json:"flooringCost"`
	EquipmentCost  float64 `json:"equipmentCost"`
	DrainageCost   float64 `json:"drainageCost"`
	FencingCost    float64 `json:"fencingCost"`
	LightingCost   float64 `json:"lightingCost"`
	ShedCost       float64 `json:"shedCost"`
	AdditionalCost float64 `json:"additionalCost"`
	TotalCost      float64 `json:"totalCost"`
}

// LineSum adds the eight cost lines.
func (b Breakdown) LineSum() float64 {
	return b.BaseCost + b.FlooringCost + b.EquipmentCost + b.DrainageCost +
		b.FencingCost + b.LightingCost + b.ShedCost + b.AdditionalCost
}

type breakdownFields Breakdown

// MarshalJSON writes roofCost alongside shedCost for clients that read the older name.
func (b Breakdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		breakdownFields
		RoofCost float64 `json:"roofCost"`
	}{breakdownFields(b), b.ShedCost})
}

// UnmarshalJSON accepts records that only carry roofCost.
func (b *Breakdown) UnmarshalJSON(data []byte) error {
	var aux struct {
		breakdownFields
		ShedCost *float64 `json:"shedCost"`
		RoofCost *float64 `json:"roofCost"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = Breakdown(aux.breakdownFields)
	switch {
	case aux.ShedCost != nil:
		b.ShedCost = *aux.ShedCost
	case aux.RoofCost != nil:
		b.ShedCost = *aux.RoofCost
	}
	return nil
}
