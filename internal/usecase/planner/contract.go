package planner

import "context"

// TextGenerator is the optional LLM capability. The engine never requires
// it: every path has a heuristic fallback, and implementations are consulted
// only when IsAvailable reports true.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt, systemPrompt string, maxTokens int) (string, error)
	IsAvailable() bool
}
