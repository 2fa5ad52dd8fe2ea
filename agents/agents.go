// Package agents holds the LLM-backed workers: bid form structure discovery,
// vendor value extraction, RFP detail extraction, evaluation dimension
// generation, comparative scoring, and the RFP drafting consultant.
package agents

import "context"

// Completer is the structured-completion collaborator the agents block on.
// llmclient.Client satisfies it.
type Completer interface {
	CompleteJSON(ctx context.Context, system, user string, temperature *float64, out any) error
}

func temp(v float64) *float64 { return &v }
