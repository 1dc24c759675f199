package planner

import (
	"github.com/kailas-cloud/hoplite/internal/domain/plan/coverage"
	"github.com/kailas-cloud/hoplite/internal/domain/retrieval"
)

// Tracker updates per-aspect coverage from the documents of one hop.
type Tracker struct {
	threshold float64
}

// NewTracker creates a coverage tracker. A non-positive threshold falls back
// to coverage.DefaultThreshold.
func NewTracker(threshold float64) *Tracker {
	if threshold <= 0 {
		threshold = coverage.DefaultThreshold
	}
	return &Tracker{threshold: threshold}
}

// Threshold returns the covered threshold in use.
func (t *Tracker) Threshold() float64 { return t.threshold }

// Update folds one hop's documents into the coverage state. For each aspect
// the observed value is the best keyword overlap across this hop's documents,
// weighted by the document's own relevance score; the coverage merge rule
// keeps the max of existing and observed, so scores never decrease.
func (t *Tracker) Update(cov *coverage.Coverage, docs []retrieval.Document, hop int) {
	if cov == nil || len(docs) == 0 {
		return
	}

	docTokens := make([]map[string]struct{}, len(docs))
	for i := range docs {
		docTokens[i] = tokenSet(docs[i].Title() + " " + docs[i].Content())
	}

	aspects := cov.Aspects()
	for i := range aspects {
		a := &aspects[i]
		kw := a.Keywords()
		if len(kw) == 0 {
			continue
		}

		var best float64
		for j := range docs {
			matched := 0
			for _, k := range kw {
				if _, ok := docTokens[j][k]; ok {
					matched++
				}
			}
			observed := float64(matched) / float64(len(kw)) * docs[j].Score()
			if observed > best {
				best = observed
			}
		}
		cov.Merge(a.Name(), clamp01(best), hop, t.threshold)
	}
}
