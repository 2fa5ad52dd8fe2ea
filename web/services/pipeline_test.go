package services

import (
	"testing"

	"rfp-agent/agents"
	"rfp-agent/bidform"
	"rfp-agent/web/types"
)

func testSchema() *bidform.FormSchema {
	return &bidform.FormSchema{
		Title:         "Roof Replacement Bid Form",
		FixedColumns:  []string{"Item #", "Description"},
		VendorColumns: []string{"Quantity", "Unit", "Unit Price", "Total"},
		Rows: []bidform.SchemaRow{
			{Section: "Roofing", ItemID: "1.1", Description: "Tear-off", Quantity: "120", Unit: "SQ"},
			{Section: "Roofing", ItemID: "1.2", Description: "Shingles", Quantity: "120", Unit: "SQ", PreFilled: map[string]string{"Unit": "SQ"}},
		},
	}
}

func TestIssuerRows(t *testing.T) {
	rows := issuerRows(testSchema())
	if len(rows) != 2 {
		t.Fatalf("expected 2 issuer rows, got %d", len(rows))
	}
	if rows[0].ItemID != "1.1" || rows[0].Section != "Roofing" {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if v, ok := rows[0].Values.Get("Quantity"); !ok || v != "120" {
		t.Errorf("expected quantity 120 carried into issuer row, got %v", v)
	}
	if v, ok := rows[1].Values.Get("Unit"); !ok || v != "SQ" {
		t.Errorf("expected pre-filled unit carried into issuer row, got %v", v)
	}
}

func TestIssuerRowsLumpSum(t *testing.T) {
	fb := bidform.FallbackSchema("Anything")
	if rows := issuerRows(&fb); rows != nil {
		t.Errorf("expected no issuer rows for a lump-sum schema, got %d", len(rows))
	}
	if rows := issuerRows(nil); rows != nil {
		t.Errorf("expected no issuer rows for nil schema")
	}
}

func TestBackfillProposal(t *testing.T) {
	p := types.Proposal{Contractor: "N/A", Currency: "USD"}
	backfillProposal(&p, agents.ProposalDetails{
		ContractorName: "Acme Roofing",
		Price:          "$12,500.00",
		Currency:       "CAD",
		StartDate:      "2026-03-01",
		Summary:        "Full tear-off and replacement.",
		Experience:     []string{"20 years in commercial roofing"},
	})

	if p.Contractor != "Acme Roofing" {
		t.Errorf("placeholder contractor not replaced, got %q", p.Contractor)
	}
	if p.Price == nil || *p.Price != 12500 {
		t.Errorf("expected price 12500, got %v", p.Price)
	}
	if p.Currency != "CAD" {
		t.Errorf("expected currency CAD, got %q", p.Currency)
	}
	if len(p.Experience) != 1 {
		t.Errorf("expected experience carried over")
	}
}

func TestBackfillProposalKeepsExisting(t *testing.T) {
	price := 9800.0
	p := types.Proposal{Contractor: "Summit Builders", Price: &price, Summary: "Existing summary"}
	backfillProposal(&p, agents.ProposalDetails{
		ContractorName: "Wrong Name",
		Price:          "$1.00",
		Summary:        "New summary",
	})

	if p.Contractor != "Summit Builders" {
		t.Errorf("existing contractor overwritten: %q", p.Contractor)
	}
	if *p.Price != 9800 {
		t.Errorf("existing price overwritten: %v", *p.Price)
	}
	if p.Summary != "Existing summary" {
		t.Errorf("existing summary overwritten: %q", p.Summary)
	}
}

func TestMatrixGrandTotal(t *testing.T) {
	schema := testSchema()
	ds := bidform.VendorProposalData{
		VendorName: "Acme Roofing",
		ProposalID: "prop-1",
		FilledRows: []bidform.FilledRow{
			{ItemID: "1.1", Values: bidform.NewOrderedValues("Quantity", "120", "Unit", "SQ", "Unit Price", "$41.00", "Total", "$4,920.00")},
			{ItemID: "1.2", Values: bidform.NewOrderedValues("Quantity", "120", "Unit", "SQ", "Unit Price", "$18.73", "Total", "$2,247.00")},
		},
	}
	matrix := bidform.BuildMatrix(*schema, []bidform.VendorProposalData{ds})

	total, ok := matrixGrandTotal(matrix, "prop-1")
	if !ok {
		t.Fatal("expected a grand total")
	}
	if total != 7167 {
		t.Errorf("expected grand total 7167, got %v", total)
	}
	if _, ok := matrixGrandTotal(matrix, "unknown"); ok {
		t.Error("expected no grand total for unknown proposal")
	}
}
