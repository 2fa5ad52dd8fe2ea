package bidform

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencyPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders an accumulated total as a dollar string with
// thousands grouping, e.g. 1295648.7 -> "$1,295,648.70".
func FormatCurrency(v float64) string {
	return currencyPrinter.Sprintf("$%.2f", v)
}

// BuildMatrix reconciles every vendor's extracted rows against the canonical
// schema and returns the unified comparison matrix. The output always holds
// exactly len(schema.Rows)+1 rows: one per schema row in schema order, plus a
// trailing grand-total row. Every row's VendorValues contains an entry for
// every vendor, possibly with empty string placeholders.
//
// BuildMatrix is a pure function: identical inputs produce identical output.
func BuildMatrix(schema FormSchema, datasets []VendorProposalData) ComparisonMatrix {
	matrix := ComparisonMatrix{
		Title:         schema.Title,
		FixedColumns:  columnsOrDefault(schema.FixedColumns, DefaultFixedColumns),
		VendorColumns: columnsOrDefault(schema.VendorColumns, DefaultVendorColumns),
		Rows:          make([]MatrixRow, 0, len(schema.Rows)+1),
	}

	totalColumn := ""
	for _, col := range matrix.VendorColumns {
		if strings.Contains(strings.ToLower(col), "total") {
			totalColumn = col
			break
		}
	}

	grandTotals := make(map[string]float64, len(datasets))
	for _, ds := range datasets {
		grandTotals[ds.ProposalID] = 0
	}

	for _, schemaRow := range schema.Rows {
		row := MatrixRow{
			Section:      schemaRow.Section,
			ItemID:       schemaRow.ItemID,
			Description:  schemaRow.Description,
			Quantity:     schemaRow.Quantity,
			Unit:         schemaRow.Unit,
			VendorValues: make(map[string]map[string]any, len(datasets)),
		}

		for _, ds := range datasets {
			values := reconcileRow(schemaRow, ds, matrix.VendorColumns)
			row.VendorValues[ds.ProposalID] = values

			// No total column means no accumulation; that is intentional,
			// not an error.
			if totalColumn != "" {
				if total, ok := Normalize(values[totalColumn]); ok {
					grandTotals[ds.ProposalID] += total
				}
			}
		}

		matrix.Rows = append(matrix.Rows, row)
	}

	matrix.Rows = append(matrix.Rows, grandTotalRow(datasets, totalColumn, grandTotals))
	return matrix
}

// reconcileRow maps one vendor's raw values onto the canonical columns for a
// single schema row. The first FilledRow whose trimmed (section, item_id)
// matches wins; vendors with no matching row yield empty placeholders for
// every column.
func reconcileRow(schemaRow SchemaRow, ds VendorProposalData, vendorColumns []string) map[string]any {
	filled, found := findFilledRow(schemaRow, ds.FilledRows)

	values := make(map[string]any, len(vendorColumns))
	if !found || filled.Values.IsEmpty() {
		for _, col := range vendorColumns {
			values[col] = ""
		}
		return values
	}

	// Fast path: keys already match the canonical columns verbatim, no
	// synonym resolution needed.
	if keysEqualCanonical(filled.Values, vendorColumns) {
		for _, col := range vendorColumns {
			v, _ := filled.Values.Get(col)
			values[col] = v
		}
		return values
	}

	rawKeys := filled.Values.Keys()
	for _, col := range vendorColumns {
		// An unresolved column is represented as an empty value, never
		// omitted, so the presentation layer can render a placeholder.
		values[col] = ""
		if key, ok := ResolveColumn(col, rawKeys); ok {
			if v, ok := filled.Values.Get(key); ok && v != nil {
				values[col] = v
			}
		}
	}
	return values
}

// findFilledRow locates the vendor's row for (section, item_id) using
// trimmed exact comparison. Duplicate item IDs within a section resolve to
// the first match.
func findFilledRow(schemaRow SchemaRow, rows []FilledRow) (FilledRow, bool) {
	wantSection := strings.TrimSpace(schemaRow.Section)
	wantItem := strings.TrimSpace(schemaRow.ItemID)
	for _, row := range rows {
		if strings.TrimSpace(row.ItemID) != wantItem {
			continue
		}
		// A vendor row without a section still matches: some vendors flatten
		// the form and drop section headers.
		section := strings.TrimSpace(row.Section)
		if section == "" || section == wantSection {
			return row, true
		}
	}
	return FilledRow{}, false
}

// keysEqualCanonical reports whether the raw keys cover the canonical vendor
// columns exactly (order-insensitive, no extras).
func keysEqualCanonical(values OrderedValues, vendorColumns []string) bool {
	if values.Len() != len(vendorColumns) {
		return false
	}
	for _, col := range vendorColumns {
		if _, ok := values.Get(col); !ok {
			return false
		}
	}
	return true
}

// grandTotalRow synthesizes the trailing matrix row: only the total column is
// populated. A vendor's stated grand total wins over the accumulated sum when
// it parses, so rounding printed in the vendor document is preserved. When
// the schema has no total column every vendor's entry stays empty.
func grandTotalRow(datasets []VendorProposalData, totalColumn string, grandTotals map[string]float64) MatrixRow {
	row := MatrixRow{
		ItemID:       GrandTotalItemID,
		Description:  "GRAND TOTAL",
		VendorValues: make(map[string]map[string]any, len(datasets)),
	}
	for _, ds := range datasets {
		values := make(map[string]any, 1)
		if totalColumn != "" {
			total := grandTotals[ds.ProposalID]
			if stated, ok := Normalize(ds.GrandTotal); ok {
				total = stated
			}
			values[totalColumn] = FormatCurrency(total)
		}
		row.VendorValues[ds.ProposalID] = values
	}
	return row
}

func columnsOrDefault(cols, fallback []string) []string {
	if len(cols) == 0 {
		return append([]string(nil), fallback...)
	}
	return append([]string(nil), cols...)
}
