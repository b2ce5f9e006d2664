package render

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/okian/courtquote/internal/domain/model"
)

// SheetName is the worksheet holding the quotation.
const SheetName = "Quotation"

// amountFormat is the built-in "#,##0.00" number format.
const amountFormat = 4

// XLSXRenderer renders quotations as Excel workbooks.
type XLSXRenderer struct {
	settings settings
}

// NewXLSXRenderer creates an Excel renderer.
func NewXLSXRenderer(opts ...Option) *XLSXRenderer {
	return &XLSXRenderer{settings: newSettings(opts)}
}

// Render implements Renderer.
func (r *XLSXRenderer) Render(q model.Quotation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("%w: xlsx: set sheet name: %w", ErrRenderFailed, err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F"}
	widths := []float64{6, 44, 8, 10, 16, 18}
	for i, c := range columns {
		if err := f.SetColWidth(SheetName, c, c, widths[i]); err != nil {
			return nil, fmt.Errorf("%w: xlsx: col width %s: %w", ErrRenderFailed, c, err)
		}
	}

	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %w", ErrRenderFailed, err)
	}

	lh := r.settings.letterhead
	c := q.ClientInfo

	if err := f.MergeCell(SheetName, "A1", "F1"); err != nil {
		return nil, fmt.Errorf("%w: xlsx: merge title: %w", ErrRenderFailed, err)
	}
	f.SetCellValue(SheetName, "A1", lh.Company+" - "+lh.Tagline)
	f.SetCellStyle(SheetName, "A1", "F1", styles.title)

	header := [][2]string{
		{"Ref. No", q.QuotationNumber},
		{"Date", q.CreatedAt.Format(documentDateLayout)},
		{"Client", c.Name},
		{"Email", c.Email},
		{"Phone", c.Phone},
		{"Address", c.Address},
		{"Proposal", proposalLine(q)},
	}
	row := 2
	for _, kv := range header {
		f.SetCellValue(SheetName, fmt.Sprintf("A%d", row), kv[0])
		f.SetCellValue(SheetName, fmt.Sprintf("B%d", row), sanitizeExcelCell(kv[1]))
		f.SetCellStyle(SheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles.label)
		row++
	}
	row++

	headerRow := row
	for i, h := range []string{"S.No.", "Description", "Unit", "Qty", "Rate", "Amount"} {
		f.SetCellValue(SheetName, fmt.Sprintf("%s%d", columns[i], headerRow), h)
	}
	f.SetCellStyle(SheetName, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("F%d", headerRow), styles.header)
	row++

	s := Summarize(q, r.settings.gstPercent)
	for _, l := range s.Lines {
		f.SetCellValue(SheetName, fmt.Sprintf("A%d", row), l.No)
		f.SetCellValue(SheetName, fmt.Sprintf("B%d", row), sanitizeExcelCell(l.Description))
		f.SetCellValue(SheetName, fmt.Sprintf("C%d", row), l.Unit)
		f.SetCellValue(SheetName, fmt.Sprintf("D%d", row), l.Quantity)
		f.SetCellValue(SheetName, fmt.Sprintf("E%d", row), l.Rate)
		f.SetCellValue(SheetName, fmt.Sprintf("F%d", row), l.Amount)
		f.SetCellStyle(SheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), styles.body)
		f.SetCellStyle(SheetName, fmt.Sprintf("E%d", row), fmt.Sprintf("F%d", row), styles.amount)
		row++
	}
	row++

	totals := []struct {
		label string
		value float64
	}{
		{"Total", s.Subtotal},
		{fmt.Sprintf("GST@%s%%", formatQty(s.GSTPercent)), s.GST},
		{"Grand Total", s.GrandTotal},
	}
	for _, t := range totals {
		f.SetCellValue(SheetName, fmt.Sprintf("E%d", row), t.label)
		f.SetCellValue(SheetName, fmt.Sprintf("F%d", row), t.value)
		f.SetCellStyle(SheetName, fmt.Sprintf("E%d", row), fmt.Sprintf("E%d", row), styles.label)
		f.SetCellStyle(SheetName, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), styles.total)
		row++
	}

	if len(r.settings.terms) > 0 {
		row++
		f.SetCellValue(SheetName, fmt.Sprintf("A%d", row), "TERMS & CONDITIONS")
		f.SetCellStyle(SheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), styles.label)
		row++
		for _, t := range r.settings.terms {
			f.SetCellValue(SheetName, fmt.Sprintf("B%d", row), sanitizeExcelCell(t))
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("%w: xlsx: write: %w", ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}

type sheetStyles struct {
	title, label, header, body, amount, total int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	defs := []struct {
		dst   *int
		name  string
		style *excelize.Style
	}{
		{&s.title, "title", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 16, Color: "#2980B9"}}},
		{&s.label, "label", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}}},
		{&s.header, "header", &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    thinBorders(),
		}},
		{&s.body, "body", &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders()}},
		{&s.amount, "amount", &excelize.Style{Font: &excelize.Font{Size: 10}, Border: thinBorders(), NumFmt: amountFormat}},
		{&s.total, "total", &excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, NumFmt: amountFormat}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(d.style)
		if err != nil {
			return s, fmt.Errorf("create %s style: %w", d.name, err)
		}
		*d.dst = id
	}
	return s, nil
}

// sanitizeExcelCell prefixes formula-leading characters so client text is
// never evaluated by a spreadsheet.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}
