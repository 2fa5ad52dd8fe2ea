package report

import (
	"testing"

	"rfp-agent/bidform"
	"rfp-agent/web/types"

	"github.com/google/uuid"
)

func matrixFixture() (bidform.ComparisonMatrix, []bidform.VendorProposalData) {
	schema := bidform.FormSchema{
		Title:         "Roof Replacement",
		FixedColumns:  []string{"Item", "Description"},
		VendorColumns: []string{"Quantity", "Unit", "Unit Cost", "Total"},
		Sections:      []string{"I Structural"},
		Rows: []bidform.SchemaRow{
			{Section: "I Structural", ItemID: "1", Description: "Membrane", Unit: "SF"},
			{Section: "I Structural", ItemID: "2", Description: "Flashing", Unit: "LF"},
		},
	}
	datasets := []bidform.VendorProposalData{
		{
			VendorName: "Acme Roofing",
			ProposalID: "p1",
			FilledRows: []bidform.FilledRow{
				{Section: "I Structural", ItemID: "1", Values: bidform.NewOrderedValues(
					"Quantity", "1200", "Unit", "SF", "Unit Cost", "$4.10", "Total", "$4,920.00")},
				{Section: "I Structural", ItemID: "2", Values: bidform.NewOrderedValues(
					"Quantity", "300", "Unit", "LF", "Unit Cost", "$7.49", "Total", "$2,247.00")},
			},
		},
		{
			VendorName: "Best Bids LLC",
			ProposalID: "p2",
			FilledRows: []bidform.FilledRow{
				{Section: "I Structural", ItemID: "1", Values: bidform.NewOrderedValues(
					"Quantity", "1200", "Unit", "SF", "Unit Cost", "$3.95", "Total", "$4,740.00")},
			},
		},
	}
	return bidform.BuildMatrix(schema, datasets), datasets
}

func TestBuildComparisonExcel(t *testing.T) {
	matrix, datasets := matrixFixture()

	f, err := BuildComparisonExcel(matrix, datasets)
	if err != nil {
		t.Fatalf("BuildComparisonExcel: %v", err)
	}
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue(comparisonSheet, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		return v
	}

	if get("A1") != "Roof Replacement" {
		t.Errorf("A1 = %q", get("A1"))
	}
	// Vendor super-headers start after the two fixed columns.
	if get("C3") != "Acme Roofing" {
		t.Errorf("C3 = %q", get("C3"))
	}
	if get("G3") != "Best Bids LLC" {
		t.Errorf("G3 = %q", get("G3"))
	}
	// Column header row.
	if get("A4") != "Item" || get("B4") != "Description" || get("C4") != "Quantity" || get("F4") != "Total" {
		t.Errorf("header row = %q %q %q %q", get("A4"), get("B4"), get("C4"), get("F4"))
	}
	// Section header row precedes item rows.
	if get("A5") != "I Structural" {
		t.Errorf("A5 = %q", get("A5"))
	}
	if get("A6") != "1" || get("F6") != "$4,920.00" {
		t.Errorf("first item row = %q %q", get("A6"), get("F6"))
	}
	// Missing vendor data renders as blank, not an error.
	if get("J7") != "" {
		t.Errorf("vendor 2 row 2 total = %q", get("J7"))
	}
	// Grand total row.
	if get("B8") != "GRAND TOTAL" {
		t.Errorf("B8 = %q", get("B8"))
	}
	if get("F8") != "$7,167.00" {
		t.Errorf("Acme grand total = %q", get("F8"))
	}
	if get("J8") != "$4,740.00" {
		t.Errorf("Best Bids grand total = %q", get("J8"))
	}
}

func TestBuildRFPPDF(t *testing.T) {
	schema := bidform.FallbackSchema("Roof Replacement")
	schema.Rows = []bidform.SchemaRow{
		{Section: "I Structural", ItemID: "1", Description: "Membrane", Unit: "SF", Quantity: "1200"},
	}
	rfp := types.RFP{
		ID:           uuid.New(),
		Title:        "Roof Replacement",
		Scope:        "Replace membrane roof on Building C.",
		Requirements: []string{"10-year warranty"},
		Budget:       "$50,000",
		TimelineEnd:  "2026-10-31",
		Status:       "published",
		FormSchema:   &schema,
	}

	data, err := BuildRFPPDF(rfp)
	if err != nil {
		t.Fatalf("BuildRFPPDF: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty pdf output")
	}
	if string(data[:5]) != "%PDF-" {
		t.Errorf("output does not start with PDF header: %q", data[:5])
	}
}
