// Package bidform implements the form-schema discovery data model and the
// value-reconciliation engine: canonical bid-form schemas, per-vendor filled
// rows, and the multi-vendor comparison matrix derived from them.
//
// Everything in this package is pure: no I/O, no collaborator calls. The
// LLM-backed discovery and extraction agents (package agents) produce the
// inputs; this package only validates and reconciles them.
package bidform

import (
	"fmt"
	"strings"
)

// DefaultVendorColumns is the fallback column set used when no bid-form table
// could be located in an RFP document (lump-sum proposals).
var DefaultVendorColumns = []string{"Quantity", "Unit", "Unit Cost", "Total"}

// DefaultFixedColumns is the fallback descriptive column set.
var DefaultFixedColumns = []string{"Item", "Description"}

// GrandTotalItemID identifies the synthesized trailing row of a comparison
// matrix.
const GrandTotalItemID = "GRAND_TOTAL"

// SchemaRow is one canonical line item of a bid form. ItemID is unique within
// a section but may repeat across sections; (Section, ItemID) is the composite
// key used to match vendor data.
type SchemaRow struct {
	Section     string            `json:"section,omitempty"`
	ItemID      string            `json:"item_id"`
	Description string            `json:"description"`
	Quantity    string            `json:"quantity,omitempty"`
	Unit        string            `json:"unit,omitempty"`
	PreFilled   map[string]string `json:"pre_filled_values,omitempty"`
}

// FormSchema is the canonical, vendor-independent structure of an RFP's bid
// form: descriptive columns, vendor-fillable columns, sections, and ordered
// line items. Row order matches the source document's visual order.
type FormSchema struct {
	Title         string      `json:"title"`
	FixedColumns  []string    `json:"fixed_columns"`
	VendorColumns []string    `json:"vendor_columns"`
	Sections      []string    `json:"sections"`
	Rows          []SchemaRow `json:"rows"`
}

// IsLumpSum reports whether the schema carries no line items, meaning no
// per-row comparison is possible.
func (s *FormSchema) IsLumpSum() bool {
	return len(s.Rows) == 0
}

// TotalColumn returns the first vendor column whose lowercase name contains
// "total", or "" when the schema has no total column.
func (s *FormSchema) TotalColumn() string {
	for _, col := range s.VendorColumns {
		if strings.Contains(strings.ToLower(col), "total") {
			return col
		}
	}
	return ""
}

// FallbackSchema returns the degraded schema used when discovery fails: no
// rows, default column sets. Callers treat it as "lump sum, no line-item
// comparison possible".
func FallbackSchema(title string) FormSchema {
	return FormSchema{
		Title:         title,
		FixedColumns:  append([]string(nil), DefaultFixedColumns...),
		VendorColumns: append([]string(nil), DefaultVendorColumns...),
		Sections:      []string{},
		Rows:          []SchemaRow{},
	}
}

// ValidateSchema rejects malformed discovery output before it enters the
// pipeline. Discovered structures are untrusted: the completion collaborator
// may hallucinate empty identifiers or drop the column lists entirely.
func ValidateSchema(s *FormSchema) error {
	if s == nil {
		return fmt.Errorf("schema is nil")
	}
	if len(s.VendorColumns) == 0 {
		return fmt.Errorf("schema has no vendor columns")
	}
	seen := make(map[string]bool, len(s.Rows))
	for i, row := range s.Rows {
		id := strings.TrimSpace(row.ItemID)
		if id == "" {
			return fmt.Errorf("row %d has empty item_id", i)
		}
		key := strings.TrimSpace(row.Section) + "\x00" + id
		if seen[key] {
			return fmt.Errorf("duplicate item_id %q in section %q", id, row.Section)
		}
		seen[key] = true
	}
	return nil
}

// FilledRow is one vendor's answer for a single canonical line item. Values
// keys are whatever labels the extraction found in the vendor document; they
// are NOT guaranteed to match the schema's vendor columns, so reconciliation
// is required downstream.
type FilledRow struct {
	Section     string        `json:"section,omitempty"`
	ItemID      string        `json:"item_id"`
	Description string        `json:"description,omitempty"`
	Values      OrderedValues `json:"values"`
}

// VendorProposalData is the full extracted row set for one vendor's proposal.
type VendorProposalData struct {
	VendorName string      `json:"vendor_name"`
	ProposalID string      `json:"proposal_id"`
	FilledRows []FilledRow `json:"filled_rows"`
	GrandTotal string      `json:"grand_total,omitempty"`
}

// MatrixRow is one reconciled row of the comparison matrix. VendorValues maps
// proposal ID to canonical column to value; every vendor has an entry even
// when no data was found for it.
type MatrixRow struct {
	Section      string                    `json:"section,omitempty"`
	ItemID       string                    `json:"item_id"`
	Description  string                    `json:"description"`
	Quantity     string                    `json:"quantity,omitempty"`
	Unit         string                    `json:"unit,omitempty"`
	VendorValues map[string]map[string]any `json:"vendor_values"`
}

// ComparisonMatrix is the unified side-by-side view of all vendor proposals
// against one canonical schema. Rows contains exactly one entry per schema
// row, in schema order, plus one trailing grand-total row.
type ComparisonMatrix struct {
	Title         string      `json:"title"`
	FixedColumns  []string    `json:"fixed_columns"`
	VendorColumns []string    `json:"vendor_columns"`
	Rows          []MatrixRow `json:"rows"`
}
