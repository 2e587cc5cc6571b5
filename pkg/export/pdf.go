package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// ReportSection is one titled table within a PDF report.
type ReportSection struct {
	Title string
	Table Table
}

const pdfContentWidth = 190.0

// RenderPDF lays the sections out as a portrait A4 document: a centred
// title, then one table per section with a shaded header line and
// zebra-striped rows. Long sections flow onto following pages through
// gofpdf's auto page break.
func RenderPDF(title string, sections []ReportSection) ([]byte, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("export: report has no sections")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	for _, section := range sections {
		if len(section.Table.Headers) == 0 {
			return nil, fmt.Errorf("export: section %q has no headers", section.Title)
		}
		renderSection(pdf, section)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderSection(pdf *gofpdf.Fpdf, section ReportSection) {
	colWidth := pdfContentWidth / float64(len(section.Table.Headers))

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, section.Title, "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, header := range section.Table.Headers {
		pdf.CellFormat(colWidth, 7, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	pdf.SetFillColor(245, 245, 245)
	for i, row := range section.Table.Rows {
		shade := i%2 == 1
		for col := range section.Table.Headers {
			cell := ""
			if col < len(row) {
				cell = row[col]
			}
			pdf.CellFormat(colWidth, 6, cell, "1", 0, "", shade, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}
