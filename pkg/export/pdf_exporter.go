package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth   = 190.0
	labelWidth  = 50.0
	rowHeight   = 7.0
	headerFont  = "Arial"
	sectionSkip = 4.0
)

// PDFExporter renders Documents onto A4 pages with gofpdf.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderDocument lays out every section of doc in order.
func (e *PDFExporter) RenderDocument(doc Document) ([]byte, error) {
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("pdf requires at least one section")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont(headerFont, "B", 16)
		pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	}
	if doc.Subtitle != "" {
		pdf.SetFont(headerFont, "", 12)
		pdf.CellFormat(0, 8, tr(doc.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(sectionSkip)

	for _, section := range doc.Sections {
		if section.Heading != "" {
			pdf.SetFont(headerFont, "B", 12)
			pdf.CellFormat(0, 8, tr(section.Heading), "", 1, "L", false, 0, "")
		}
		switch section.Kind {
		case SectionKeyValue:
			writeFields(pdf, tr, section.Fields)
		case SectionLineItems:
			if err := writeLineItems(pdf, tr, section); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unknown section kind %q", section.Kind)
		}
		pdf.Ln(sectionSkip)
	}

	if doc.Footer != "" {
		pdf.SetFont(headerFont, "I", 8)
		pdf.CellFormat(0, 6, tr(doc.Footer), "", 1, "R", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderTable renders a flat dataset under an optional title.
func (e *PDFExporter) RenderTable(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	columns := make([]Column, len(data.Headers))
	for i, h := range data.Headers {
		columns[i] = Column{Header: h, Width: 1}
	}
	return e.RenderDocument(Document{
		Title:    title,
		Sections: []Section{{Kind: SectionLineItems, Columns: columns, Rows: data.Rows}},
	})
}

func writeFields(pdf *gofpdf.Fpdf, tr func(string) string, fields []Field) {
	for _, f := range fields {
		pdf.SetFont(headerFont, "B", 10)
		pdf.CellFormat(labelWidth, rowHeight, tr(f.Label), "1", 0, "L", false, 0, "")
		pdf.SetFont(headerFont, "", 10)
		pdf.CellFormat(pageWidth-labelWidth, rowHeight, tr(f.Value), "1", 1, "L", false, 0, "")
	}
}

func writeLineItems(pdf *gofpdf.Fpdf, tr func(string) string, section Section) error {
	if len(section.Columns) == 0 {
		return fmt.Errorf("section %q has no columns", section.Heading)
	}
	widths := columnWidths(section.Columns)

	pdf.SetFont(headerFont, "B", 9)
	pdf.SetFillColor(220, 220, 220)
	for i, col := range section.Columns {
		pdf.CellFormat(widths[i], 8, tr(col.Header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(headerFont, "", 9)
	for _, row := range section.Rows {
		writeRow(pdf, tr, section.Columns, widths, row)
	}
	if len(section.Totals) > 0 {
		pdf.SetFont(headerFont, "B", 9)
		writeRow(pdf, tr, section.Columns, widths, section.Totals)
	}
	return nil
}

func writeRow(pdf *gofpdf.Fpdf, tr func(string) string, columns []Column, widths []float64, row []string) {
	for i := range columns {
		value := ""
		if i < len(row) {
			value = row[i]
		}
		pdf.CellFormat(widths[i], rowHeight, tr(value), "1", 0, columns[i].Align, false, 0, "")
	}
	pdf.Ln(-1)
}

func columnWidths(columns []Column) []float64 {
	total := 0.0
	for _, c := range columns {
		if c.Width > 0 {
			total += c.Width
		} else {
			total++
		}
	}
	widths := make([]float64, len(columns))
	for i, c := range columns {
		w := c.Width
		if w <= 0 {
			w = 1
		}
		widths[i] = pageWidth * w / total
	}
	return widths
}
