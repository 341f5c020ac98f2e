package llm

import "context"

// Provider is a single-turn, stateless text generator. Callers supply the
// full prompt each call; no conversation state is held provider-side.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
