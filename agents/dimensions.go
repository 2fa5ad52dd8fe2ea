package agents

import (
	"context"
	"fmt"
	"strings"

	"rfp-agent/prompts"
	"rfp-agent/web/types"

	"go.uber.org/zap"
)

// Dimension is one axis proposals get scored on.
type Dimension struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Weight      int      `json:"weight"`
	Keywords    []string `json:"keywords"`
	Type        string   `json:"type"` // "general" or "dynamic"
}

type dimensionsResponse struct {
	Dimensions []Dimension `json:"dimensions"`
}

// Dimensions derives evaluation dimensions from an RFP's content.
type Dimensions struct {
	completer Completer
	logger    *zap.Logger
}

func NewDimensions(completer Completer, logger *zap.Logger) *Dimensions {
	return &Dimensions{completer: completer, logger: logger}
}

// Generate returns the six standing general dimensions plus scope-specific
// dynamic ones. When the collaborator fails it falls back to the general set
// alone.
func (g *Dimensions) Generate(ctx context.Context, rfp types.RFP) []Dimension {
	payload := dimensionsPayload(rfp)

	var resp dimensionsResponse
	if err := g.completer.CompleteJSON(ctx, prompts.Dimensions(), payload, temp(0.2), &resp); err != nil || len(resp.Dimensions) == 0 {
		g.logger.Warn("Dimension generation failed, using fallback set",
			zap.String("rfp_id", rfp.ID.String()),
			zap.Error(err))
		return FallbackDimensions()
	}
	return resp.Dimensions
}

// FallbackDimensions is the standing general set used when generation fails.
func FallbackDimensions() []Dimension {
	return []Dimension{
		{ID: "experience", Name: "Experience", Description: "Vendor track record", Weight: 10, Type: "general", Keywords: []string{"track record", "history", "years"}},
		{ID: "cost", Name: "Cost", Description: "Total project cost", Weight: 10, Type: "general", Keywords: []string{"price", "cost", "budget"}},
		{ID: "materials_warranty", Name: "Materials/Warranty", Description: "Quality and guarantees", Weight: 10, Type: "general", Keywords: []string{"warranty", "material", "quality"}},
		{ID: "schedule", Name: "Schedule", Description: "Project timeline", Weight: 10, Type: "general", Keywords: []string{"deadline", "schedule", "time"}},
		{ID: "safety", Name: "Safety", Description: "Safety record and compliance", Weight: 10, Type: "general", Keywords: []string{"safety", "osha", "record"}},
		{ID: "responsiveness", Name: "Responsiveness", Description: "Vendor support and availability", Weight: 10, Type: "general", Keywords: []string{"support", "response", "service"}},
	}
}

func dimensionsPayload(rfp types.RFP) string {
	var reqs strings.Builder
	for _, r := range rfp.Requirements {
		fmt.Fprintf(&reqs, "- %s\n", r)
	}
	return fmt.Sprintf(`RFP Title: %s

Scope:
%s

Requirements:
%s
Budget: %s
Deadline: %s
`, rfp.Title, rfp.Scope, reqs.String(), rfp.Budget, rfp.TimelineEnd)
}
