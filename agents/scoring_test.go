package agents

import (
	"context"
	"fmt"
	"strings"
	"testing"

	apperrors "rfp-agent/errors"
	"rfp-agent/prompts"
	"rfp-agent/web/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func comparisonFixture() (types.RFP, []types.Proposal) {
	rfp := types.RFP{
		ID:           uuid.New(),
		Title:        "Roof Replacement",
		Scope:        "Replace membrane roof on Building C",
		Requirements: []string{"10-year warranty", "OSHA compliance"},
		Budget:       "$50,000",
		Currency:     "USD",
		TimelineEnd:  "2026-10-31",
	}
	price := 45000.0
	proposals := []types.Proposal{
		{ID: uuid.New(), RFPID: rfp.ID, Contractor: "Acme Roofing", Price: &price, Currency: "USD",
			Experience: []string{"25 years in commercial roofing"}},
		{ID: uuid.New(), RFPID: rfp.ID, Contractor: "Best Bids LLC", Currency: "USD"},
	}
	return rfp, proposals
}

func analysesJSON(proposals []types.Proposal, dims []string) string {
	out := `{"analyses": [`
	for i, p := range proposals {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"proposal_id": %q, "scores": [`, p.ID)
		for j, d := range dims {
			if j > 0 {
				out += ","
			}
			out += fmt.Sprintf(`{"dimension": %q, "score": %d, "rationale": "because"}`, d, 70+j)
		}
		out += `]}`
	}
	return out + `]}`
}

func TestCompareFullCoverage(t *testing.T) {
	rfp, proposals := comparisonFixture()
	dims := []string{"Cost", "Experience"}
	fake := &fakeCompleter{response: analysesJSON(proposals, dims)}
	s := NewScoring(fake, zap.NewNop())

	analyses, err := s.Compare(context.Background(), rfp, proposals, dims)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(analyses) != 2 {
		t.Fatalf("analyses = %d", len(analyses))
	}
	if analyses[0].Scores[0].Rationale == "" {
		t.Error("rationale should be preserved")
	}
}

func TestComparePromptDocumentsProposalID(t *testing.T) {
	// Coverage validation keys on proposal_id, so the output contract the
	// model sees has to name that field.
	if !strings.Contains(prompts.Compare(), "`proposal_id`") {
		t.Error("comparison prompt does not document the proposal_id field")
	}
}

func TestCompareMissingProposalIsContractViolation(t *testing.T) {
	rfp, proposals := comparisonFixture()
	dims := []string{"Cost"}
	// Response covers only the first proposal.
	fake := &fakeCompleter{response: analysesJSON(proposals[:1], dims)}
	s := NewScoring(fake, zap.NewNop())

	_, err := s.Compare(context.Background(), rfp, proposals, dims)
	if !apperrors.IsScoringContract(err) {
		t.Errorf("expected scoring contract violation, got %v", err)
	}
}

func TestCompareMissingDimensionIsContractViolation(t *testing.T) {
	rfp, proposals := comparisonFixture()
	fake := &fakeCompleter{response: analysesJSON(proposals, []string{"Cost"})}
	s := NewScoring(fake, zap.NewNop())

	_, err := s.Compare(context.Background(), rfp, proposals, []string{"Cost", "Safety"})
	if !apperrors.IsScoringContract(err) {
		t.Errorf("expected scoring contract violation, got %v", err)
	}
}

func TestCompareScoreOutOfRange(t *testing.T) {
	rfp, proposals := comparisonFixture()
	fake := &fakeCompleter{response: fmt.Sprintf(
		`{"analyses": [{"proposal_id": %q, "scores": [{"dimension": "Cost", "score": 140, "rationale": "x"}]}]}`,
		proposals[0].ID)}
	s := NewScoring(fake, zap.NewNop())

	_, err := s.Compare(context.Background(), rfp, proposals[:1], []string{"Cost"})
	if !apperrors.IsScoringContract(err) {
		t.Errorf("expected scoring contract violation, got %v", err)
	}
}

func TestComparePropagatesCompletionFailure(t *testing.T) {
	rfp, proposals := comparisonFixture()
	fake := &fakeCompleter{err: errDown}
	s := NewScoring(fake, zap.NewNop())

	if _, err := s.Compare(context.Background(), rfp, proposals, []string{"Cost"}); err == nil {
		t.Error("scoring failures must surface, not degrade")
	}
}

func TestCompareRejectsEmptyInputs(t *testing.T) {
	rfp, proposals := comparisonFixture()
	s := NewScoring(&fakeCompleter{}, zap.NewNop())

	if _, err := s.Compare(context.Background(), rfp, nil, []string{"Cost"}); !apperrors.IsInvalidInput(err) {
		t.Errorf("expected invalid input for no proposals, got %v", err)
	}
	if _, err := s.Compare(context.Background(), rfp, proposals, nil); !apperrors.IsInvalidInput(err) {
		t.Errorf("expected invalid input for no dimensions, got %v", err)
	}
}
