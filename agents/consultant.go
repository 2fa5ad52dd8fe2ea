package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"rfp-agent/prompts"
	"rfp-agent/web/types"

	"go.uber.org/zap"
)

// ConsultResult is one consultant turn: a conversational reply, the merged
// draft state, and an optional instruction to generate the proposal form.
type ConsultResult struct {
	Reply                string         `json:"reply"`
	UpdatedState         types.RFPDraft `json:"updated_state"`
	GenerateProposalForm *bool          `json:"generate_proposal_form"`
}

// Consultant drives the conversational RFP drafting flow.
type Consultant struct {
	completer Completer
	logger    *zap.Logger
}

func NewConsultant(completer Completer, logger *zap.Logger) *Consultant {
	return &Consultant{completer: completer, logger: logger}
}

const consultHistoryLimit = 10

// Consult merges the user's latest message into the draft. On failure the
// draft is returned unchanged with an apologetic reply, never an error.
func (c *Consultant) Consult(ctx context.Context, draft types.RFPDraft, history []types.ConsultMessage, message string) ConsultResult {
	fallback := ConsultResult{
		Reply:        "I'm having trouble processing that specific request. Please try again later.",
		UpdatedState: draft,
	}

	stateJSON, err := json.Marshal(draft)
	if err != nil {
		c.logger.Error("Failed to encode consultant state", zap.Error(err))
		return fallback
	}
	system := strings.Replace(prompts.Consultant(), "{current_state_json}", string(stateJSON), 1)

	if len(history) > consultHistoryLimit {
		history = history[len(history)-consultHistoryLimit:]
	}
	var historyText strings.Builder
	for _, msg := range history {
		role := "User"
		if msg.Role == "ai" {
			role = "AI"
		}
		fmt.Fprintf(&historyText, "%s: %s\n", role, msg.Text)
	}

	user := fmt.Sprintf("Conversation History:\n%s\nUser's Latest Message:\n%s\n", historyText.String(), message)

	var result ConsultResult
	if err := c.completer.CompleteJSON(ctx, system, user, temp(0.7), &result); err != nil {
		c.logger.Warn("Consultant completion failed", zap.Error(err))
		return fallback
	}
	if result.Reply == "" {
		c.logger.Warn("Consultant returned empty reply, keeping prior state")
		return fallback
	}

	// Never let a partial response blank out fields the user already gave.
	result.UpdatedState = mergeDraft(draft, result.UpdatedState)
	return result
}

func mergeDraft(prev, next types.RFPDraft) types.RFPDraft {
	if strings.TrimSpace(next.Title) == "" {
		next.Title = prev.Title
	}
	if strings.TrimSpace(next.Scope) == "" {
		next.Scope = prev.Scope
	}
	if len(next.Requirements) == 0 {
		next.Requirements = prev.Requirements
	}
	if strings.TrimSpace(next.Budget) == "" {
		next.Budget = prev.Budget
	}
	if strings.TrimSpace(next.TimelineEnd) == "" {
		next.TimelineEnd = prev.TimelineEnd
	}
	return next
}
