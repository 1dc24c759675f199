// Package retrieval holds the document and session records exchanged with
// the retrieval backend.
package retrieval

import "fmt"

// Document is a single retrieved evidence document (value object).
// Provenance beyond title/content/score belongs to the persistence layer,
// not this core.
type Document struct {
	title   string
	content string
	score   float64
}

// New validates and creates a Document. Score is clamped to [0,1].
func New(title, content string, score float64) (Document, error) {
	if title == "" && content == "" {
		return Document{}, fmt.Errorf("document must have a title or content")
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return Document{title: title, content: content, score: score}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(title, content string, score float64) Document {
	return Document{title: title, content: content, score: score}
}

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Content returns the document text.
func (d *Document) Content() string { return d.content }

// Score returns the backend relevance score in [0,1].
func (d *Document) Score() float64 { return d.score }
