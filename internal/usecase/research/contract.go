package research

import (
	"context"

	"github.com/kailas-cloud/hoplite/internal/domain/retrieval"
)

// Retriever fetches evidence documents for one subquery. An empty result is
// a valid outcome, not an error.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]retrieval.Document, error)
}

// TextGenerator produces free text from a prompt. Optional: the session runs
// fully without one.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt, systemPrompt string, maxTokens int) (string, error)
	IsAvailable() bool
}
