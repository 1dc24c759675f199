// Package retrieval implements the document retriever over the redis vector
// index: embed the subquery, KNN-search the index, hydrate documents.
package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/hoplite/internal/domain"
	domret "github.com/kailas-cloud/hoplite/internal/domain/retrieval"
	"github.com/kailas-cloud/hoplite/internal/repository/store"
)

const (
	fieldTitle   = "title"
	fieldContent = "content"
	fieldScore   = "__vector_score"
)

// Searcher is the slice of the store this repository needs.
type Searcher interface {
	SearchKNN(ctx context.Context, index string, vector []float32, k int, returnFields []string) ([]store.Entry, error)
	EnsureIndex(ctx context.Context, name, prefix string, vectorDim int) error
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Repository retrieves evidence documents by vector similarity.
type Repository struct {
	store    Searcher
	embedder Embedder
	index    string
	prefix   string
	dim      int
}

// New creates a retrieval repository over one document index.
func New(s Searcher, e Embedder, index, prefix string, vectorDim int) *Repository {
	return &Repository{store: s, embedder: e, index: index, prefix: prefix, dim: vectorDim}
}

// EnsureIndex creates the document index if absent. Called once at startup.
func (r *Repository) EnsureIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := r.store.EnsureIndex(ctx, r.index, r.prefix, r.dim); err != nil {
		return fmt.Errorf("ensure index %s: %w", r.index, err)
	}
	return nil
}

// Retrieve embeds the query and returns the topK most similar documents.
// No matches is an empty slice, not an error.
func (r *Repository) Retrieve(ctx context.Context, query string, topK int) ([]domret.Document, error) {
	if topK <= 0 {
		topK = 5
	}

	emb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: vectorize query: %w", domain.ErrRetrievalFailed, err)
	}

	entries, err := r.store.SearchKNN(ctx, r.index, emb.Embedding, topK,
		[]string{fieldTitle, fieldContent, fieldScore})
	if err != nil {
		return nil, fmt.Errorf("%w: search knn: %w", domain.ErrRetrievalFailed, err)
	}

	docs := make([]domret.Document, 0, len(entries))
	for i := range entries {
		title := entries[i].Fields[fieldTitle]
		content := entries[i].Fields[fieldContent]
		if title == "" && content == "" {
			continue
		}
		docs = append(docs, domret.Reconstruct(title, content, entries[i].Score))
	}
	return docs, nil
}
