package ai

import "context"

// Provider is one vendor's completion API. Implementations must honor ctx
// cancellation; the orchestrator applies the per-call timeout.
type Provider interface {
	Complete(ctx context.Context, model, systemPrompt, userPrompt string) (string, error)
}
