package planner

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/hoplite/internal/domain/plan/coverage"
	"github.com/kailas-cloud/hoplite/internal/domain/retrieval"
)

// minFallbackDocs is the smallest document count the quality fallback rule
// accepts as non-trivial evidence.
const minFallbackDocs = 2

// Policy decides after each hop whether the session keeps retrieving.
// The rules are ordered and the first match wins, which guarantees a
// minimum-quality floor and a hard hop ceiling regardless of how the
// evidence looks.
type Policy struct{}

// NewPolicy creates a stopping policy.
func NewPolicy() *Policy { return &Policy{} }

// ShouldContinue evaluates the stopping rules for the hop that just
// finished. cov may be nil, in which case the raw document-quality fallback
// applies. Returns the decision plus a human-readable reason.
func (p *Policy) ShouldContinue(
	docs []retrieval.Document,
	currentHop int,
	bounds Bounds,
	cov *coverage.Coverage,
	coverageThreshold float64,
	minConfidence float64,
) (bool, string) {
	bounds = bounds.Normalize()
	if coverageThreshold <= 0 {
		coverageThreshold = coverage.DefaultThreshold
	}

	if currentHop < bounds.MinHops {
		return true, fmt.Sprintf("minimum hops not yet reached (%d of %d)", currentHop, bounds.MinHops)
	}

	if currentHop >= bounds.MaxHops {
		return false, fmt.Sprintf("maximum hops reached (%d)", bounds.MaxHops)
	}

	if cov != nil {
		if cov.CoreCovered(coverageThreshold) {
			return false, fmt.Sprintf(
				"core aspects covered (weighted coverage %.2f)", cov.Weighted())
		}
		uncovered := cov.Uncovered(coverageThreshold)
		names := make([]string, 0, len(uncovered))
		for i := range uncovered {
			names = append(names, uncovered[i].Name())
		}
		return true, "aspects still uncovered: " + strings.Join(names, "; ")
	}

	if len(docs) >= minFallbackDocs {
		var sum float64
		for i := range docs {
			sum += docs[i].Score()
		}
		mean := sum / float64(len(docs))
		if mean >= minConfidence {
			return false, fmt.Sprintf(
				"sufficient high-quality documents (%d docs, mean score %.2f)", len(docs), mean)
		}
	}

	return true, fmt.Sprintf("evidence quality below threshold after hop %d", currentHop)
}
