package agents

import (
	"context"
	"fmt"

	"rfp-agent/prompts"

	"go.uber.org/zap"
)

// RFPDetails is the structured summary pulled out of an uploaded RFP document.
type RFPDetails struct {
	Title         string   `json:"title"`
	Scope         string   `json:"scope"`
	Requirements  []string `json:"requirements"`
	Budget        string   `json:"budget"`
	TimelineStart string   `json:"timeline_start"`
	TimelineEnd   string   `json:"timeline_end"`
}

// ProposalDetails is the structured summary pulled out of a vendor proposal.
type ProposalDetails struct {
	ContractorName  string   `json:"contractor_name"`
	Price           string   `json:"price"`
	Currency        string   `json:"currency"`
	StartDate       string   `json:"start_date"`
	Summary         string   `json:"summary"`
	Experience      []string `json:"experience"`
	Methodology     []string `json:"methodology"`
	Warranties      []string `json:"warranties"`
	TimelineDetails []string `json:"timeline_details"`
}

// Details extracts descriptive fields from uploaded documents.
type Details struct {
	completer Completer
	logger    *zap.Logger
}

func NewDetails(completer Completer, logger *zap.Logger) *Details {
	return &Details{completer: completer, logger: logger}
}

// RFP never fails; when the collaborator errors the caller gets a marked
// default so the upload can still complete.
func (d *Details) RFP(ctx context.Context, text string) RFPDetails {
	details := RFPDetails{
		Title:         "Untitled RFP",
		Scope:         "No scope detected.",
		Requirements:  []string{},
		Budget:        "TBD",
		TimelineStart: "TBD",
		TimelineEnd:   "TBD",
	}

	var resp RFPDetails
	if err := d.completer.CompleteJSON(ctx, prompts.RFPDetails(), text, temp(0.2), &resp); err != nil {
		d.logger.Warn("RFP detail extraction failed", zap.Error(err))
		details.Title = "Extraction Failed"
		details.Scope = fmt.Sprintf("Could not process document: %v", err)
		return details
	}

	if resp.Title != "" {
		details.Title = resp.Title
	}
	if resp.Scope != "" {
		details.Scope = resp.Scope
	}
	if resp.Requirements != nil {
		details.Requirements = resp.Requirements
	}
	if resp.Budget != "" {
		details.Budget = resp.Budget
	}
	if resp.TimelineStart != "" {
		details.TimelineStart = resp.TimelineStart
	}
	if resp.TimelineEnd != "" {
		details.TimelineEnd = resp.TimelineEnd
	}

	d.logger.Info("RFP details extracted",
		zap.String("title", details.Title),
		zap.String("timeline_start", details.TimelineStart),
		zap.String("timeline_end", details.TimelineEnd))
	return details
}

// Proposal extracts the comparison fields from a vendor proposal. A failed
// completion returns the zero value; the upload proceeds without them.
func (d *Details) Proposal(ctx context.Context, text string) ProposalDetails {
	var resp ProposalDetails
	if err := d.completer.CompleteJSON(ctx, prompts.ProposalDetails(), text, temp(0.2), &resp); err != nil {
		d.logger.Warn("Proposal detail extraction failed", zap.Error(err))
		return ProposalDetails{}
	}
	if resp.Currency == "" {
		resp.Currency = "USD"
	}
	return resp
}
