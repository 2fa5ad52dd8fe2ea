// Package report renders comparison matrices to Excel and RFP summaries to
// PDF for download.
package report

import (
	"fmt"
	"strings"

	"rfp-agent/bidform"

	"github.com/xuri/excelize/v2"
)

const comparisonSheet = "Bid Comparison"

// BuildComparisonExcel renders a reconciled comparison matrix as a formatted
// workbook. Vendor blocks appear in dataset order; each block spans the
// matrix's vendor columns under a merged vendor-name super-header.
func BuildComparisonExcel(matrix bidform.ComparisonMatrix, datasets []bidform.VendorProposalData) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(comparisonSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"0066B2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
		Border:    thinBorder(),
	})
	if err != nil {
		return nil, err
	}
	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: thinBorder(),
	})
	if err != nil {
		return nil, err
	}
	cellStyle, err := f.NewStyle(&excelize.Style{Border: thinBorder()})
	if err != nil {
		return nil, err
	}
	currencyStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    thinBorder(),
	})
	if err != nil {
		return nil, err
	}

	setCell := func(col, row int, value any, style int) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(comparisonSheet, cell, value); err != nil {
			return err
		}
		return f.SetCellStyle(comparisonSheet, cell, cell, style)
	}

	fixedCount := len(matrix.FixedColumns)
	vendorWidth := len(matrix.VendorColumns)
	currentRow := 1

	if err := setCell(1, currentRow, matrix.Title, titleStyle); err != nil {
		return nil, err
	}
	currentRow += 2

	// Vendor super-headers, one merged block per vendor.
	col := fixedCount + 1
	for _, ds := range datasets {
		start, err := excelize.CoordinatesToCellName(col, currentRow)
		if err != nil {
			return nil, err
		}
		end, err := excelize.CoordinatesToCellName(col+vendorWidth-1, currentRow)
		if err != nil {
			return nil, err
		}
		if err := f.MergeCell(comparisonSheet, start, end); err != nil {
			return nil, fmt.Errorf("merge vendor header: %w", err)
		}
		if err := setCell(col, currentRow, ds.VendorName, headerStyle); err != nil {
			return nil, err
		}
		col += vendorWidth
	}
	currentRow++

	// Column headers.
	col = 1
	for _, name := range matrix.FixedColumns {
		if err := setCell(col, currentRow, name, headerStyle); err != nil {
			return nil, err
		}
		col++
	}
	for range datasets {
		for _, name := range matrix.VendorColumns {
			if err := setCell(col, currentRow, name, headerStyle); err != nil {
				return nil, err
			}
			col++
		}
	}
	currentRow++

	currentSection := ""
	for _, row := range matrix.Rows {
		if row.Section != "" && row.Section != currentSection && row.ItemID != bidform.GrandTotalItemID {
			currentSection = row.Section
			if err := setCell(1, currentRow, row.Section, sectionStyle); err != nil {
				return nil, err
			}
			currentRow++
		}

		rowStyle := cellStyle
		if row.ItemID == bidform.GrandTotalItemID {
			rowStyle = sectionStyle
		}

		if err := setCell(1, currentRow, fixedCellValue(row, matrix.FixedColumns, 0), rowStyle); err != nil {
			return nil, err
		}
		for i := 1; i < fixedCount; i++ {
			if err := setCell(i+1, currentRow, fixedCellValue(row, matrix.FixedColumns, i), rowStyle); err != nil {
				return nil, err
			}
		}

		col = fixedCount + 1
		for _, ds := range datasets {
			values := row.VendorValues[ds.ProposalID]
			for _, name := range matrix.VendorColumns {
				value := values[name]
				style := rowStyle
				if s, ok := value.(string); ok && strings.HasPrefix(s, "$") {
					style = currencyStyle
				}
				if err := setCell(col, currentRow, value, style); err != nil {
					return nil, err
				}
				col++
			}
		}
		currentRow++
	}

	if err := f.SetColWidth(comparisonSheet, "A", "A", 8); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(comparisonSheet, "B", "B", 50); err != nil {
		return nil, err
	}
	if lastCol := fixedCount + vendorWidth*len(datasets); lastCol > 2 {
		startName, err := excelize.ColumnNumberToName(3)
		if err != nil {
			return nil, err
		}
		endName, err := excelize.ColumnNumberToName(lastCol)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(comparisonSheet, startName, endName, 12); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Style: 1},
		{Type: "right", Style: 1},
		{Type: "top", Style: 1},
		{Type: "bottom", Style: 1},
	}
}

// fixedCellValue maps a fixed column position onto the matrix row. The first
// column carries the item id, the second the description; the grand-total row
// reverses that so the label sits under the description column.
func fixedCellValue(row bidform.MatrixRow, fixedColumns []string, idx int) string {
	if row.ItemID == bidform.GrandTotalItemID {
		if idx == 1 || len(fixedColumns) == 1 {
			return "GRAND TOTAL"
		}
		return ""
	}
	switch idx {
	case 0:
		return row.ItemID
	case 1:
		return row.Description
	default:
		return ""
	}
}
