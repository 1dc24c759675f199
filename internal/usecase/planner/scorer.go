package planner

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/hoplite/internal/domain/plan/subquery"
)

// Scorer ranks candidate subqueries by relevance to the original question.
type Scorer struct{}

// NewScorer creates a subquery scorer.
func NewScorer() *Scorer { return &Scorer{} }

// Score computes a Jaccard-style word-set overlap between each subquery and
// the question, sorts descending by relevance (stable, so ties keep input
// order) and assigns priorities 1..N with no gaps.
func (s *Scorer) Score(question string, subqueries []string) []subquery.Scored {
	if len(subqueries) == 0 {
		return nil
	}

	qSet := tokenSet(question)

	type candidate struct {
		text      string
		relevance float64
		matched   int
		union     int
	}
	cands := make([]candidate, 0, len(subqueries))
	for _, sq := range subqueries {
		sqSet := tokenSet(sq)
		matched := 0
		for t := range sqSet {
			if _, ok := qSet[t]; ok {
				matched++
			}
		}
		union := len(qSet) + len(sqSet) - matched
		rel := 0.0
		if union > 0 {
			rel = float64(matched) / float64(union)
		}
		cands = append(cands, candidate{text: sq, relevance: rel, matched: matched, union: union})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].relevance > cands[j].relevance
	})

	out := make([]subquery.Scored, 0, len(cands))
	for i, c := range cands {
		reasoning := fmt.Sprintf("shares %d of %d words with the question", c.matched, c.union)
		scored, err := subquery.New(c.text, c.relevance, i+1, reasoning)
		if err != nil {
			// Empty candidate text; keep priorities gap-free with a placeholder.
			scored, _ = subquery.New("Background information", c.relevance, i+1, reasoning)
		}
		out = append(out, scored)
	}
	return out
}
