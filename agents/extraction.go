package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rfp-agent/bidform"
	apperrors "rfp-agent/errors"
	"rfp-agent/prompts"

	"go.uber.org/zap"
)

// Extraction pulls the values a vendor wrote into a bid form, matched against
// an already-discovered schema.
type Extraction struct {
	completer Completer
	logger    *zap.Logger
}

func NewExtraction(completer Completer, logger *zap.Logger) *Extraction {
	return &Extraction{completer: completer, logger: logger}
}

type extractedRow struct {
	Section     string                `json:"section"`
	ItemID      string                `json:"item_id"`
	Description string                `json:"description"`
	Values      bidform.OrderedValues `json:"values"`
}

type extractionResponse struct {
	VendorName string         `json:"vendor_name"`
	Rows       []extractedRow `json:"rows"`
	GrandTotal any            `json:"grand_total"`
}

// Extract produces one FilledRow per schema row, in schema order. Rows the
// vendor skipped come back with empty values so the matrix stays complete.
// When the document yields no rows at all, FilledRows is empty and the caller
// must treat it as no data for this vendor. Rows referencing item ids outside
// the schema are dropped.
func (e *Extraction) Extract(ctx context.Context, content string, schema *bidform.FormSchema, vendorName string) (bidform.VendorProposalData, error) {
	data := bidform.VendorProposalData{VendorName: vendorName}
	if content == "" || schema == nil || len(schema.Rows) == 0 {
		return data, nil
	}

	payload, err := extractionPayload(content, schema)
	if err != nil {
		return data, apperrors.WrapErrorf(apperrors.ErrExtractionFailure, "build payload: %v", err)
	}

	var resp extractionResponse
	if err := e.completer.CompleteJSON(ctx, prompts.RowExtraction(), payload, temp(0.1), &resp); err != nil {
		return data, apperrors.WrapErrorf(apperrors.ErrExtractionFailure, "completion: %v", err)
	}

	if resp.VendorName != "" && vendorName == "" {
		data.VendorName = resp.VendorName
	}
	if len(resp.Rows) == 0 {
		e.logger.Warn("No rows extracted from vendor document",
			zap.String("vendor", data.VendorName))
		return data, nil
	}

	// First matching row per (section, item_id) wins; later duplicates and
	// unsolicited items are ignored.
	byKey := make(map[string]extractedRow, len(resp.Rows))
	dropped := 0
	for _, row := range resp.Rows {
		key := rowKey(row.Section, row.ItemID)
		if _, exists := byKey[key]; !exists {
			byKey[key] = row
		} else {
			dropped++
		}
	}

	known := make(map[string]bool, len(schema.Rows))
	for _, sr := range schema.Rows {
		known[rowKey(sr.Section, sr.ItemID)] = true
	}
	for key := range byKey {
		if !known[key] {
			dropped++
		}
	}
	if dropped > 0 {
		e.logger.Info("Dropped duplicate or unsolicited extracted rows",
			zap.String("vendor", data.VendorName),
			zap.Int("dropped", dropped))
	}

	data.FilledRows = make([]bidform.FilledRow, 0, len(schema.Rows))
	for _, sr := range schema.Rows {
		filled := bidform.FilledRow{
			Section:     sr.Section,
			ItemID:      sr.ItemID,
			Description: sr.Description,
			Values:      bidform.NewOrderedValues(),
		}
		if row, ok := byKey[rowKey(sr.Section, sr.ItemID)]; ok && !row.Values.IsEmpty() {
			filled.Values = row.Values
		}
		data.FilledRows = append(data.FilledRows, filled)
	}

	// The stated grand total is carried through in canonical currency form;
	// reconciliation recomputes its own sum from the rows regardless.
	if f, ok := bidform.Normalize(resp.GrandTotal); ok {
		data.GrandTotal = bidform.FormatCurrency(f)
	}
	return data, nil
}

func rowKey(section, itemID string) string {
	return strings.TrimSpace(section) + "\x00" + strings.TrimSpace(itemID)
}

func extractionPayload(content string, schema *bidform.FormSchema) (string, error) {
	schemaJSON, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("FORM SCHEMA:\n%s\n\nVENDOR DOCUMENT:\n%s", schemaJSON, content), nil
}
