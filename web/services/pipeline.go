// Package services orchestrates the document pipeline behind the HTTP
// handlers: save, extract, discover, reconcile, persist.
package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"rfp-agent/agents"
	"rfp-agent/bidform"
	"rfp-agent/config"
	"rfp-agent/database"
	"rfp-agent/docstore"
	"rfp-agent/extract"
	"rfp-agent/utils"
	"rfp-agent/web/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// formContextQuery steers excerpt retrieval toward the bid form when a
// document is too large to prompt whole.
const formContextQuery = "bid proposal form pricing table line items unit cost total"

type Pipeline struct {
	cfg        *config.Config
	store      *database.PostgresStore
	docs       *docstore.Store
	extractor  *extract.Extractor
	discovery  *agents.Discovery
	extraction *agents.Extraction
	details    *agents.Details
	logger     *zap.Logger
}

func NewPipeline(
	cfg *config.Config,
	store *database.PostgresStore,
	docs *docstore.Store,
	extractor *extract.Extractor,
	discovery *agents.Discovery,
	extraction *agents.Extraction,
	details *agents.Details,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		store:      store,
		docs:       docs,
		extractor:  extractor,
		discovery:  discovery,
		extraction: extraction,
		details:    details,
		logger:     logger,
	}
}

// SaveUpload writes an uploaded document under the storage root and returns
// its path. The original filename is kept for traceability after
// sanitization; the owner ID prefix keeps paths unique.
func (p *Pipeline) SaveUpload(kind, ownerID, originalName string, data []byte) (string, error) {
	dir := filepath.Join(p.cfg.StoragePath, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}
	name := ownerID + ".pdf"
	if sanitized := utils.SanitizeFilename(originalName); sanitized != "" {
		name = ownerID + "_" + sanitized
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

// ProcessRFPUpload runs the full RFP ingestion: text extraction, detail
// extraction, form structure discovery, and persistence. Detail and discovery
// failures degrade to defaults; only storage failures surface.
func (p *Pipeline) ProcessRFPUpload(ctx context.Context, id uuid.UUID, pdfPath string) (types.RFP, error) {
	text, err := p.extractor.Text(pdfPath)
	if err != nil {
		return types.RFP{}, fmt.Errorf("extract rfp text: %w", err)
	}

	promptText := p.extractor.TruncateForPrompt(text, p.promptTokenBudget())
	details := p.details.RFP(ctx, promptText)

	rfp := types.RFP{
		ID:            id,
		Title:         details.Title,
		Scope:         details.Scope,
		Requirements:  details.Requirements,
		Budget:        details.Budget,
		TimelineStart: details.TimelineStart,
		TimelineEnd:   details.TimelineEnd,
		Status:        "published",
	}

	if err := p.docs.Ingest(ctx, rfp.ID.String(), text); err != nil {
		p.logger.Warn("RFP ingestion into document store failed, discovery will use raw text",
			zap.String("rfp_id", rfp.ID.String()),
			zap.Error(err))
	}

	content := p.formContext(ctx, rfp.ID.String(), promptText)
	schema := p.discovery.Discover(ctx, content, rfp.Title)
	rfp.FormSchema = schema
	rfp.FormRows = issuerRows(schema)

	if err := p.store.CreateRFP(ctx, &rfp); err != nil {
		return types.RFP{}, err
	}

	p.logger.Info("RFP upload processed",
		zap.String("rfp_id", rfp.ID.String()),
		zap.String("title", rfp.Title),
		zap.Int("form_rows", len(schema.Rows)))
	return rfp, nil
}

// ProcessProposalUpload enriches an already-created proposal from its PDF:
// descriptive details, bid form values reconciled against the RFP's schema,
// and the accumulated grand total. Extraction failures leave the proposal
// without form data rather than failing the upload.
func (p *Pipeline) ProcessProposalUpload(ctx context.Context, proposal types.Proposal, rfp types.RFP, pdfPath string) (types.Proposal, error) {
	text, err := p.extractor.Text(pdfPath)
	if err != nil {
		return types.Proposal{}, fmt.Errorf("extract proposal text: %w", err)
	}
	proposal.ExtractedText = text

	promptText := p.extractor.TruncateForPrompt(text, p.promptTokenBudget())
	details := p.details.Proposal(ctx, promptText)
	backfillProposal(&proposal, details)

	if proposal.ContractorEmail == "" {
		if emails := extract.Emails(text); len(emails) > 0 {
			proposal.ContractorEmail = emails[0]
		}
	}

	if err := p.docs.Ingest(ctx, proposal.ID.String(), text); err != nil {
		p.logger.Warn("Proposal ingestion into document store failed",
			zap.String("proposal_id", proposal.ID.String()),
			zap.Error(err))
	}

	p.extractFormData(ctx, &proposal, rfp, promptText)

	if err := p.store.UpdateProposalExtraction(ctx, proposal); err != nil {
		return types.Proposal{}, err
	}
	return proposal, nil
}

// ReextractProposals re-runs bid form extraction for every proposal on an
// RFP, one goroutine per vendor. A failed vendor never aborts the batch.
func (p *Pipeline) ReextractProposals(ctx context.Context, rfp types.RFP) (int, error) {
	rfpID := rfp.ID
	proposals, err := p.store.ListProposals(ctx, &rfpID)
	if err != nil {
		return 0, err
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	updated := 0

	for i := range proposals {
		proposal := proposals[i]
		wg.Add(1)
		go func() {
			defer wg.Done()

			text := proposal.ExtractedText
			if text == "" {
				text, _ = p.docs.FullText(proposal.ID.String())
			}
			if text == "" {
				p.logger.Warn("No stored text for proposal, skipping re-extraction",
					zap.String("proposal_id", proposal.ID.String()))
				return
			}

			promptText := p.extractor.TruncateForPrompt(text, p.promptTokenBudget())
			before := len(proposal.FormData)
			p.extractFormData(ctx, &proposal, rfp, promptText)
			if len(proposal.FormData) == 0 && before == 0 {
				return
			}

			if err := p.store.UpdateProposalExtraction(ctx, proposal); err != nil {
				p.logger.Error("Failed to persist re-extracted proposal",
					zap.String("proposal_id", proposal.ID.String()),
					zap.Error(err))
				return
			}
			mu.Lock()
			updated++
			mu.Unlock()
		}()
	}
	wg.Wait()

	p.logger.Info("Proposal re-extraction completed",
		zap.String("rfp_id", rfp.ID.String()),
		zap.Int("proposals", len(proposals)),
		zap.Int("updated", updated))
	return updated, nil
}

// GenerateForm discovers a proposal form for an RFP from its stored content
// and persists it. Used when the drafting consultant signals the RFP is
// complete enough for a bid form.
func (p *Pipeline) GenerateForm(ctx context.Context, rfp types.RFP) (*bidform.FormSchema, []bidform.FilledRow, error) {
	content, ok := p.docs.FullText(rfp.ID.String())
	if !ok {
		content = draftText(rfp)
	} else {
		content = p.formContext(ctx, rfp.ID.String(), p.extractor.TruncateForPrompt(content, p.promptTokenBudget()))
	}

	schema := p.discovery.Discover(ctx, content, rfp.Title)
	rows := issuerRows(schema)
	if err := p.store.SaveRFPForm(ctx, rfp.ID, schema, rows); err != nil {
		return nil, nil, err
	}
	return schema, rows, nil
}

// draftText renders a consultant-drafted RFP as prose so the discovery agent
// has something to work from when no document was uploaded.
func draftText(rfp types.RFP) string {
	var b strings.Builder
	b.WriteString("TITLE: " + rfp.Title + "\n\n")
	b.WriteString("SCOPE OF WORK:\n" + rfp.Scope + "\n\n")
	if len(rfp.Requirements) > 0 {
		b.WriteString("REQUIREMENTS:\n")
		for _, req := range rfp.Requirements {
			b.WriteString("- " + req + "\n")
		}
		b.WriteString("\n")
	}
	if rfp.Budget != "" {
		b.WriteString("BUDGET: " + rfp.Budget + "\n")
	}
	if rfp.TimelineEnd != "" {
		b.WriteString("COMPLETION DEADLINE: " + rfp.TimelineEnd + "\n")
	}
	return b.String()
}

// DeleteRFP removes an RFP, its proposals, and their indexed documents.
func (p *Pipeline) DeleteRFP(ctx context.Context, rfp types.RFP) error {
	rfpID := rfp.ID
	proposals, err := p.store.ListProposals(ctx, &rfpID)
	if err != nil {
		return err
	}
	if err := p.store.DeleteRFP(ctx, rfp.ID); err != nil {
		return err
	}
	p.docs.Forget(rfp.ID.String())
	for _, proposal := range proposals {
		p.docs.Forget(proposal.ID.String())
	}
	return nil
}

// DeleteProposal removes a proposal and its indexed document.
func (p *Pipeline) DeleteProposal(ctx context.Context, proposal types.Proposal) error {
	if err := p.store.DeleteProposal(ctx, proposal.ID); err != nil {
		return err
	}
	p.docs.Forget(proposal.ID.String())
	return nil
}

// extractFormData fills proposal.FormData and GrandTotal from the vendor
// document, against the RFP's schema when one exists.
func (p *Pipeline) extractFormData(ctx context.Context, proposal *types.Proposal, rfp types.RFP, promptText string) {
	schema := rfp.FormSchema
	if schema == nil {
		schema = p.discovery.Discover(ctx, promptText, rfp.Title)
	}
	if schema.IsLumpSum() {
		return
	}

	content := p.formContext(ctx, proposal.ID.String(), promptText)
	data, err := p.extraction.Extract(ctx, content, schema, proposal.Contractor)
	if err != nil {
		p.logger.Warn("Vendor form extraction failed",
			zap.String("proposal_id", proposal.ID.String()),
			zap.String("contractor", proposal.Contractor),
			zap.Error(err))
		return
	}
	if len(data.FilledRows) == 0 {
		return
	}

	proposal.FormData = data.FilledRows
	if proposal.Contractor == "" && data.VendorName != "" {
		proposal.Contractor = data.VendorName
	}

	data.ProposalID = proposal.ID.String()
	matrix := bidform.BuildMatrix(*schema, []bidform.VendorProposalData{data})
	if total, ok := matrixGrandTotal(matrix, data.ProposalID); ok {
		proposal.GrandTotal = &total
		if proposal.Price == nil {
			proposal.Price = &total
		}
	}
}

// formContext serves the retrieval-filtered document excerpt when the store
// has the document, otherwise the prompt-bounded raw text.
func (p *Pipeline) formContext(ctx context.Context, docID, fallback string) string {
	content, err := p.docs.Context(ctx, docID, formContextQuery)
	if err != nil {
		p.logger.Debug("Document store context unavailable, using raw text",
			zap.String("doc_id", docID),
			zap.Error(err))
		return fallback
	}
	return content
}

func (p *Pipeline) promptTokenBudget() int {
	budget := int(float64(p.cfg.ContextLength) * p.cfg.ContextTokenRatio)
	if budget <= 0 {
		budget = 3750 // matches the original's 15000-char cap
	}
	return budget
}

func matrixGrandTotal(matrix bidform.ComparisonMatrix, proposalID string) (float64, bool) {
	if len(matrix.Rows) == 0 {
		return 0, false
	}
	last := matrix.Rows[len(matrix.Rows)-1]
	if last.ItemID != bidform.GrandTotalItemID {
		return 0, false
	}
	for _, v := range last.VendorValues[proposalID] {
		if total, ok := bidform.Normalize(v); ok {
			return total, true
		}
	}
	return 0, false
}

func backfillProposal(p *types.Proposal, details agents.ProposalDetails) {
	placeholder := func(s string) bool {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "", "n/a", "not captured", "unknown", "ai will extract this":
			return true
		}
		return false
	}

	if placeholder(p.Contractor) && details.ContractorName != "" {
		p.Contractor = details.ContractorName
	}
	if p.Price == nil {
		if v, ok := bidform.Normalize(details.Price); ok {
			p.Price = &v
		}
	}
	if p.Currency == "" || p.Currency == "USD" {
		if details.Currency != "" {
			p.Currency = details.Currency
		}
	}
	if p.StartDate == "" {
		p.StartDate = details.StartDate
	}
	if p.Summary == "" {
		p.Summary = details.Summary
	}
	// Comparison fields always come from extraction.
	if len(details.Experience) > 0 {
		p.Experience = details.Experience
	}
	if len(details.Methodology) > 0 {
		p.Methodology = details.Methodology
	}
	if len(details.Warranties) > 0 {
		p.Warranties = details.Warranties
	}
	if len(details.TimelineDetails) > 0 {
		p.TimelineDetails = details.TimelineDetails
	}
}

// issuerRows converts schema rows into the issuer-side filled rows stored on
// the RFP record, carrying quantities, units, and any pre-filled values.
func issuerRows(schema *bidform.FormSchema) []bidform.FilledRow {
	if schema == nil || len(schema.Rows) == 0 {
		return nil
	}
	rows := make([]bidform.FilledRow, 0, len(schema.Rows))
	for _, sr := range schema.Rows {
		values := bidform.NewOrderedValues()
		if sr.Quantity != "" {
			values.Set("Quantity", sr.Quantity)
		}
		if sr.Unit != "" {
			values.Set("Unit", sr.Unit)
		}
		for _, col := range schema.VendorColumns {
			if v, ok := sr.PreFilled[col]; ok {
				values.Set(col, v)
			}
		}
		rows = append(rows, bidform.FilledRow{
			Section:     sr.Section,
			ItemID:      sr.ItemID,
			Description: sr.Description,
			Values:      values,
		})
	}
	return rows
}
