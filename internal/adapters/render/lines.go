package render

import (
	"math"

	"github.com/okian/courtquote/internal/domain/model"
)

// DefaultGSTPercent is applied to documents unless overridden.
const DefaultGSTPercent = 18.0

// Line is one row of the cost table.
type Line struct {
	No          int
	Description string
	Unit        string
	Quantity    float64
	Rate        float64
	Amount      float64
}

// Summary is the document view of a quotation's pricing.
type Summary struct {
	Lines      []Line
	Subtotal   float64
	GSTPercent float64
	GST        float64
	GrandTotal float64
}

// Summarize lists the non-zero cost lines of q and adds GST on top of the
// stored total. The stored breakdown is never modified.
func Summarize(q model.Quotation, gstPercent float64) Summary {
	if gstPercent < 0 {
		gstPercent = 0
	}
	p := q.Pricing
	req := q.Requirements
	af := req.AdditionalFeatures

	candidates := []Line{
		{Description: "Base Construction (" + Title(req.Base.Type) + ")", Unit: "Sft", Quantity: p.Area, Amount: p.BaseCost},
		{Description: "Flooring (" + Title(req.Flooring.Type) + ")", Unit: "Sft", Quantity: p.Area, Amount: p.FlooringCost},
		{Description: "Sports Equipment", Unit: "Lot", Quantity: 1, Amount: p.EquipmentCost},
		{Description: "Drainage System", Unit: "Sft", Quantity: p.Area, Amount: p.DrainageCost},
		{Description: "Fencing (" + Title(af.Fencing.Type) + ")", Unit: "Rft", Quantity: af.Fencing.Length, Amount: p.FencingCost},
		{Description: "Lighting (" + Title(af.Lighting.Type) + ")", Unit: "Nos", Quantity: orDefault(af.Lighting.Quantity, 1), Amount: p.LightingCost},
		{Description: "Shed Structure (" + Title(af.Shed.Type) + ")", Unit: "Sft", Quantity: orDefault(af.Shed.Area, p.Area), Amount: p.ShedCost},
		{Description: "Additional Features", Unit: "Lot", Quantity: 1, Amount: p.AdditionalCost},
	}

	s := Summary{GSTPercent: gstPercent, Subtotal: p.TotalCost}
	for _, l := range candidates {
		if l.Amount == 0 {
			continue
		}
		if l.Quantity <= 0 {
			l.Quantity = 1
		}
		l.Rate = l.Amount / l.Quantity
		l.No = len(s.Lines) + 1
		s.Lines = append(s.Lines, l)
	}
	s.GST = math.Round(s.Subtotal * gstPercent / 100)
	s.GrandTotal = s.Subtotal + s.GST
	return s
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
