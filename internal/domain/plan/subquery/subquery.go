// Package subquery holds scored search subqueries, transient per hop.
package subquery

import "fmt"

// Scored is a ranked search subquery (value object, created per scoring call).
type Scored struct {
	subquery  string
	relevance float64
	priority  int
	reasoning string
}

// New validates and creates a Scored subquery. Relevance is clamped to [0,1].
func New(query string, relevance float64, priority int, reasoning string) (Scored, error) {
	if query == "" {
		return Scored{}, fmt.Errorf("subquery text is required")
	}
	if priority < 1 {
		return Scored{}, fmt.Errorf("priority must be 1-based, got %d", priority)
	}
	if relevance < 0 {
		relevance = 0
	}
	if relevance > 1 {
		relevance = 1
	}
	return Scored{subquery: query, relevance: relevance, priority: priority, reasoning: reasoning}, nil
}

// Subquery returns the search string.
func (s *Scored) Subquery() string { return s.subquery }

// Relevance returns the relevance score against the original question.
func (s *Scored) Relevance() float64 { return s.relevance }

// Priority returns the 1-based rank after sorting (1 = most relevant).
func (s *Scored) Priority() int { return s.priority }

// Reasoning returns a human-readable note about the score.
func (s *Scored) Reasoning() string { return s.reasoning }
