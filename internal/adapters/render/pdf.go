package render

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/okian/courtquote/internal/domain/model"
)

const documentDateLayout = "02/01/2006"

var (
	grey      = &props.Color{Red: 100, Green: 100, Blue: 100}
	white     = &props.Color{Red: 255, Green: 255, Blue: 255}
	brandBlue = &props.Color{Red: 41, Green: 128, Blue: 185}
)

// PDFRenderer renders quotations as A4 PDF documents.
type PDFRenderer struct {
	settings settings
}

// NewPDFRenderer creates a PDF renderer.
func NewPDFRenderer(opts ...Option) *PDFRenderer {
	return &PDFRenderer{settings: newSettings(opts)}
}

// Render implements Renderer.
func (r *PDFRenderer) Render(q model.Quotation) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)
	summary := Summarize(q, r.settings.gstPercent)

	r.addHeader(m, q)
	addClientDetails(m, q)
	addProposal(m, q)
	addCostTable(m, summary)
	addTotals(m, summary)
	r.addTerms(m)
	r.addFooter(m)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("%w: pdf: %w", ErrRenderFailed, err)
	}
	return doc.GetBytes(), nil
}

func (r *PDFRenderer) addHeader(m core.Maroto, q model.Quotation) {
	lh := r.settings.letterhead
	contact := props.Text{Size: 7, Align: align.Right, Color: grey}

	m.AddRows(
		row.New(8).Add(
			col.New(8).Add(text.New(lh.Company, props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Left, Color: brandBlue})),
			col.New(4).Add(text.New(lh.Phone, contact)),
		),
		row.New(5).Add(
			col.New(8).Add(text.New(lh.Tagline, props.Text{Size: 9, Align: align.Left})),
			col.New(4).Add(text.New(lh.Email, contact)),
		),
		row.New(5).Add(
			col.New(8),
			col.New(4).Add(text.New(lh.Website, contact)),
		),
		row.New(6),
		row.New(8).Add(
			col.New(12).Add(text.New("QUOTATION FOR SPORTS COURT CONSTRUCTION", props.Text{
				Size:  12,
				Style: fontstyle.Bold,
				Align: align.Center,
			})),
		),
		row.New(7).Add(
			col.New(6).Add(text.New("Ref. No: "+q.QuotationNumber, props.Text{Size: 9, Align: align.Left})),
			col.New(6).Add(text.New("Date: "+q.CreatedAt.Format(documentDateLayout), props.Text{Size: 9, Align: align.Right})),
		),
		row.New(3),
	)
}

func addClientDetails(m core.Maroto, q model.Quotation) {
	value := props.Text{Size: 9, Align: align.Left}
	c := q.ClientInfo

	m.AddRows(
		row.New(6).Add(col.New(12).Add(text.New("CLIENT DETAILS:", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left}))),
		row.New(5).Add(col.New(12).Add(text.New("Name: "+c.Name, value))),
		row.New(5).Add(col.New(12).Add(text.New("Email: "+c.Email, value))),
		row.New(5).Add(col.New(12).Add(text.New("Phone: "+c.Phone, value))),
		row.New(5).Add(col.New(12).Add(text.New("Address: "+c.Address, value))),
		row.New(4),
	)
}

func addProposal(m core.Maroto, q model.Quotation) {
	m.AddRows(
		row.New(6).Add(col.New(12).Add(text.New("PROPOSAL DETAILS", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Left}))),
		row.New(6).Add(col.New(12).Add(text.New(proposalLine(q), props.Text{Size: 9, Align: align.Left}))),
		row.New(3),
	)
}

func proposalLine(q model.Quotation) string {
	p := q.ProjectInfo
	return fmt.Sprintf("Proposal for %s court (%s, %s construction, %s sft)",
		Title(p.Sport), Title(p.CourtType), Title(p.ConstructionType), formatQty(q.Pricing.Area))
}

func addCostTable(m core.Maroto, s Summary) {
	headerCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	header := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center}
	headerLeft := header
	headerLeft.Align = align.Left

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("S.No.", header)).WithStyle(headerCell),
			col.New(5).Add(text.New("Description", headerLeft)).WithStyle(headerCell),
			col.New(1).Add(text.New("Unit", header)).WithStyle(headerCell),
			col.New(1).Add(text.New("Qty", header)).WithStyle(headerCell),
			col.New(2).Add(text.New("Rate", header)).WithStyle(headerCell),
			col.New(2).Add(text.New("Amount", header)).WithStyle(headerCell),
		),
	)

	center := props.Text{Size: 8, Align: align.Center}
	left := props.Text{Size: 8, Align: align.Left}
	right := props.Text{Size: 8, Align: align.Right}
	for _, l := range s.Lines {
		m.AddRows(
			row.New(7).Add(
				col.New(1).Add(text.New(fmt.Sprintf("%d.", l.No), center)),
				col.New(5).Add(text.New(l.Description, left)),
				col.New(1).Add(text.New(l.Unit, center)),
				col.New(1).Add(text.New(formatQty(l.Quantity), center)),
				col.New(2).Add(text.New(FormatINR(l.Rate), right)),
				col.New(2).Add(text.New(FormatINR(l.Amount), right)),
			),
		)
	}
	m.AddRows(row.New(3))
}

func addTotals(m core.Maroto, s Summary) {
	label := props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}
	value := props.Text{Size: 10, Align: align.Right}
	grand := props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right}

	m.AddRows(
		row.New(7).Add(
			col.New(8).Add(text.New("Total", label)),
			col.New(4).Add(text.New(FormatINR(s.Subtotal), value)),
		),
		row.New(7).Add(
			col.New(8).Add(text.New(fmt.Sprintf("GST@%s%%", formatQty(s.GSTPercent)), label)),
			col.New(4).Add(text.New(FormatINR(s.GST), value)),
		),
		row.New(8).Add(
			col.New(8).Add(text.New("Grand Total", label)),
			col.New(4).Add(text.New(FormatINR(s.GrandTotal), grand)),
		),
		row.New(6),
	)
}

func (r *PDFRenderer) addTerms(m core.Maroto) {
	if len(r.settings.terms) == 0 {
		return
	}
	m.AddRows(row.New(6).Add(col.New(12).Add(text.New("TERMS & CONDITIONS:", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Left}))))
	for _, t := range r.settings.terms {
		m.AddRows(row.New(5).Add(col.New(12).Add(text.New("• "+t, props.Text{Size: 8, Align: align.Left}))))
	}
	m.AddRows(row.New(6))
}

func (r *PDFRenderer) addFooter(m core.Maroto) {
	lh := r.settings.letterhead
	band := &props.Cell{BackgroundColor: brandBlue}
	footer := props.Text{Size: 7, Align: align.Center, Color: white}

	m.AddRows(
		row.New(5).Add(col.New(12).Add(text.New(fmt.Sprintf("%s - %s | %s", lh.Company, lh.Tagline, lh.Address), footer)).WithStyle(band)),
		row.New(5).Add(col.New(12).Add(text.New(fmt.Sprintf("%s | %s | %s", lh.Phone, lh.Email, lh.Website), footer)).WithStyle(band)),
	)
}
