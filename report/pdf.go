package report

import (
	"bytes"
	"fmt"

	"rfp-agent/bidform"
	"rfp-agent/web/types"

	"github.com/jung-kurt/gofpdf"
)

// BuildRFPPDF renders a printable RFP summary: title and metadata, scope,
// requirements, and the blank proposal submission form vendors must fill out.
func BuildRFPPDF(rfp types.RFP) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(0, 9, tr(rfp.Title), "", "C", false)
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	meta := []string{
		fmt.Sprintf("Status: %s", orNA(rfp.Status)),
		fmt.Sprintf("Created: %s", rfp.CreatedAt.Format("2006-01-02")),
		fmt.Sprintf("Deadline: %s", orNA(rfp.TimelineEnd)),
		fmt.Sprintf("Budget: %s", orNA(rfp.Budget)),
	}
	for _, line := range meta {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if rfp.Scope != "" {
		sectionHeading(pdf, "Scope of Work")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(rfp.Scope), "", "L", false)
		pdf.Ln(4)
	}

	if len(rfp.Requirements) > 0 {
		sectionHeading(pdf, "Requirements")
		pdf.SetFont("Arial", "", 10)
		for _, req := range rfp.Requirements {
			pdf.CellFormat(5, 5, "", "", 0, "L", false, 0, "")
			pdf.MultiCell(0, 5, tr("- "+req), "", "L", false)
		}
		pdf.Ln(4)
	}

	if rfp.FormSchema != nil && len(rfp.FormSchema.Rows) > 0 {
		sectionHeading(pdf, "Proposal Submission Form")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, "Vendors must fill out the following unit prices:", "", "L", false)
		pdf.Ln(2)
		formTable(pdf, tr, rfp.FormSchema)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render rfp pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func sectionHeading(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func formTable(pdf *gofpdf.Fpdf, tr func(string) string, schema *bidform.FormSchema) {
	headers := []string{"Section", "Item", "Description", "Unit", "Qty"}
	widths := []float64{35, 15, 80, 20, 20}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(0, 102, 178)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(0, 0, 0)
	fill := false
	pdf.SetFillColor(240, 244, 248)
	for _, row := range schema.Rows {
		cells := []string{row.Section, row.ItemID, row.Description, row.Unit, row.Quantity}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, tr(truncate(c, 60)), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
