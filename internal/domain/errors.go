// Package domain holds the shared sentinel errors of the service.
package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrConversationNotFound signals a missing conversation.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrEmptyQuestion signals a question with no usable content.
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrRetrievalFailed signals a failed retrieval call for a single subquery.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrGeneratorUnavailable signals that the text generation provider is down.
	ErrGeneratorUnavailable = errors.New("text generator unavailable")
	// ErrGeneratorError signals a text generation provider failure.
	ErrGeneratorError = errors.New("text generator error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)
