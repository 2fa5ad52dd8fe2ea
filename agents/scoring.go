package agents

import (
	"context"
	"fmt"
	"strings"

	apperrors "rfp-agent/errors"
	"rfp-agent/prompts"
	"rfp-agent/web/types"

	"go.uber.org/zap"
)

// DimensionScore is one dimension's score for one proposal.
type DimensionScore struct {
	Dimension string `json:"dimension"`
	Score     int    `json:"score"`
	Rationale string `json:"rationale"`
}

// ProposalAnalysis holds all dimension scores for one proposal.
type ProposalAnalysis struct {
	ProposalID string           `json:"proposal_id"`
	Scores     []DimensionScore `json:"scores"`
}

type comparisonResponse struct {
	Analyses []ProposalAnalysis `json:"analyses"`
}

// Scoring compares proposals against an RFP on requested dimensions. Unlike
// discovery and extraction there is no safe default score, so contract
// violations surface as errors.
type Scoring struct {
	completer Completer
	logger    *zap.Logger
}

func NewScoring(completer Completer, logger *zap.Logger) *Scoring {
	return &Scoring{completer: completer, logger: logger}
}

// Compare scores every proposal on every requested dimension. A collaborator
// response that omits a (proposal, dimension) pair, or scores outside 0-100,
// fails with ErrScoringContract.
func (s *Scoring) Compare(ctx context.Context, rfp types.RFP, proposals []types.Proposal, dimensions []string) ([]ProposalAnalysis, error) {
	if len(proposals) == 0 {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "no proposals to compare")
	}
	if len(dimensions) == 0 {
		return nil, apperrors.WrapError(apperrors.ErrInvalidInput, "no dimensions requested")
	}

	payload := comparisonPayload(rfp, proposals, dimensions)

	var resp comparisonResponse
	if err := s.completer.CompleteJSON(ctx, prompts.Compare(), payload, temp(0.2), &resp); err != nil {
		return nil, err
	}

	if err := validateCoverage(resp.Analyses, proposals, dimensions); err != nil {
		return nil, err
	}

	s.logger.Info("Comparison scoring completed",
		zap.String("rfp_id", rfp.ID.String()),
		zap.Int("proposals", len(proposals)),
		zap.Int("dimensions", len(dimensions)))
	return resp.Analyses, nil
}

func validateCoverage(analyses []ProposalAnalysis, proposals []types.Proposal, dimensions []string) error {
	byProposal := make(map[string]map[string]bool, len(analyses))
	for _, a := range analyses {
		dims := make(map[string]bool, len(a.Scores))
		for _, sc := range a.Scores {
			if sc.Score < 0 || sc.Score > 100 {
				return apperrors.WrapErrorf(apperrors.ErrScoringContract,
					"score %d for proposal %s dimension %q out of range", sc.Score, a.ProposalID, sc.Dimension)
			}
			dims[strings.ToLower(strings.TrimSpace(sc.Dimension))] = true
		}
		byProposal[a.ProposalID] = dims
	}

	for _, p := range proposals {
		dims, ok := byProposal[p.ID.String()]
		if !ok {
			return apperrors.WrapErrorf(apperrors.ErrScoringContract,
				"proposal %s missing from analyses", p.ID)
		}
		for _, d := range dimensions {
			if !dims[strings.ToLower(strings.TrimSpace(d))] {
				return apperrors.WrapErrorf(apperrors.ErrScoringContract,
					"proposal %s missing score for dimension %q", p.ID, d)
			}
		}
	}
	return nil
}

func comparisonPayload(rfp types.RFP, proposals []types.Proposal, dimensions []string) string {
	var reqs strings.Builder
	for _, r := range rfp.Requirements {
		fmt.Fprintf(&reqs, "- %s\n", r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `CONTEXT:
RFP TITLE: %s
BUDGET: %s %s
DEADLINE: %s

SCOPE:
%s

REQUIREMENTS:
%s
PROPOSALS TO COMPARE:
`, rfp.Title, orTBD(rfp.Budget), rfp.Currency, orTBD(rfp.TimelineEnd), rfp.Scope, reqs.String())

	for _, p := range proposals {
		price := "TBD"
		if p.Price != nil {
			price = fmt.Sprintf("%.2f", *p.Price)
		}
		bidFormStatus := "No detailed bid form"
		if len(p.FormData) > 0 {
			bidFormStatus = "Bid Form Data Available"
		}
		fmt.Fprintf(&b, `---
PROPOSAL ID: %s
VENDOR: %s
PRICE: %s %s
START DATE: %s
SUMMARY: %s

EXPERIENCE DATA:
%s

WARRANTY DATA:
%s

SCHEDULE DATA:
%s

BID FORM STATUS: %s
---
`, p.ID, p.Contractor, price, p.Currency, orTBD(p.StartDate), p.Summary,
			bulletsOr(p.Experience, "No experience data"),
			bulletsOr(p.Warranties, "No warranty data"),
			bulletsOr(p.TimelineDetails, "No schedule data"),
			bidFormStatus)
	}

	fmt.Fprintf(&b, "\nTASK:\nScore each proposal on the following DIMENSIONS: %s.\nReturn the result in the specified JSON format.\n",
		strings.Join(dimensions, ", "))
	return b.String()
}

func orTBD(s string) string {
	if strings.TrimSpace(s) == "" {
		return "TBD"
	}
	return s
}

func bulletsOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, "\n")
}
