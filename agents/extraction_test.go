package agents

import (
	"context"
	"strings"
	"testing"

	"rfp-agent/bidform"
	apperrors "rfp-agent/errors"

	"go.uber.org/zap"
)

func extractionSchema() *bidform.FormSchema {
	return &bidform.FormSchema{
		Title:         "Roof Replacement",
		FixedColumns:  []string{"Item", "Description"},
		VendorColumns: []string{"Quantity", "Unit", "Unit Cost", "Total"},
		Sections:      []string{"I Structural"},
		Rows: []bidform.SchemaRow{
			{Section: "I Structural", ItemID: "1", Description: "Membrane"},
			{Section: "I Structural", ItemID: "2", Description: "Flashing"},
			{Section: "I Structural", ItemID: "3", Description: "Coping"},
		},
	}
}

func TestExtractSchemaComplete(t *testing.T) {
	fake := &fakeCompleter{response: `{
      "vendor_name": "Acme Roofing",
      "rows": [
        {"section": "I Structural", "item_id": "1", "description": "Membrane",
         "values": {"quantity": "1200", "unit": "SF", "unit_cost": "$4.10", "total": "$4,920.00"}},
        {"section": "I Structural", "item_id": "3", "description": "Coping",
         "values": {"total": "$1,000.00"}}
      ],
      "grand_total": 5920.00
    }`}
	e := NewExtraction(fake, zap.NewNop())

	data, err := e.Extract(context.Background(), "vendor text", extractionSchema(), "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if data.VendorName != "Acme Roofing" {
		t.Errorf("vendor = %q", data.VendorName)
	}
	if len(data.FilledRows) != 3 {
		t.Fatalf("expected one filled row per schema row, got %d", len(data.FilledRows))
	}
	// Skipped row 2 still present, with empty values.
	if !data.FilledRows[1].Values.IsEmpty() {
		t.Errorf("row 2 should be empty, got %v", data.FilledRows[1].Values)
	}
	if v, _ := data.FilledRows[0].Values.Get("unit_cost"); v != "$4.10" {
		t.Errorf("row 1 unit_cost = %v", v)
	}
	if data.GrandTotal != "$5,920.00" {
		t.Errorf("grand total = %q", data.GrandTotal)
	}
}

func TestExtractDropsUnsolicitedAndDuplicateRows(t *testing.T) {
	fake := &fakeCompleter{response: `{
      "vendor_name": "Acme",
      "rows": [
        {"section": "I Structural", "item_id": "1", "values": {"total": "$10.00"}},
        {"section": "I Structural", "item_id": "1", "values": {"total": "$99.00"}},
        {"section": "I Structural", "item_id": "99", "values": {"total": "$1.00"}}
      ]
    }`}
	e := NewExtraction(fake, zap.NewNop())

	data, err := e.Extract(context.Background(), "vendor text", extractionSchema(), "Acme")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(data.FilledRows) != 3 {
		t.Fatalf("rows = %d", len(data.FilledRows))
	}
	if v, _ := data.FilledRows[0].Values.Get("total"); v != "$10.00" {
		t.Errorf("first duplicate should win, got %v", v)
	}
	for _, row := range data.FilledRows {
		if row.ItemID == "99" {
			t.Error("unsolicited item should not appear")
		}
	}
}

func TestExtractNoContent(t *testing.T) {
	fake := &fakeCompleter{}
	e := NewExtraction(fake, zap.NewNop())

	data, err := e.Extract(context.Background(), "", extractionSchema(), "Acme")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(data.FilledRows) != 0 {
		t.Errorf("expected no rows without content, got %d", len(data.FilledRows))
	}
	if fake.calls != 0 {
		t.Error("should not call the completer without content")
	}
}

func TestExtractNoRowsFromVendor(t *testing.T) {
	fake := &fakeCompleter{response: `{"vendor_name": "Acme", "rows": []}`}
	e := NewExtraction(fake, zap.NewNop())

	data, err := e.Extract(context.Background(), "cover letter only", extractionSchema(), "Acme")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(data.FilledRows) != 0 {
		t.Errorf("expected no data for this vendor, got %d rows", len(data.FilledRows))
	}
}

func TestExtractCompletionFailure(t *testing.T) {
	fake := &fakeCompleter{err: errDown}
	e := NewExtraction(fake, zap.NewNop())

	_, err := e.Extract(context.Background(), "vendor text", extractionSchema(), "Acme")
	if !apperrors.IsExtractionFailure(err) {
		t.Errorf("expected extraction failure, got %v", err)
	}
}

func TestExtractionPayloadIncludesSchemaAndDocument(t *testing.T) {
	payload, err := extractionPayload("THE VENDOR TEXT", extractionSchema())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(payload, "Membrane") || !strings.Contains(payload, "THE VENDOR TEXT") {
		t.Error("payload missing schema or document content")
	}
}
