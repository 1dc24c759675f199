package planner

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/hoplite/internal/domain/plan/complexity"
)

// Bounds holds the hop budget limits for one question. Passed explicitly per
// invocation; the engine keeps no global planner state.
type Bounds struct {
	MinHops int
	MaxHops int
}

// Normalize applies sane defaults and orders the bounds.
func (b Bounds) Normalize() Bounds {
	if b.MinHops < 1 {
		b.MinHops = 1
	}
	if b.MaxHops < b.MinHops {
		b.MaxHops = b.MinHops
	}
	return b
}

// indicatorRule is one named complexity indicator: a predicate over the
// question plus the weight it contributes when it fires. Keeping these in an
// explicit table makes the indicator set independently testable.
type indicatorRule struct {
	name   string
	weight float64
	strong bool // counts toward confidence when it fires
	match  func(lower string, words int) bool
}

// DefaultLengthThreshold is the word count above which question length
// starts contributing to the complexity score.
const DefaultLengthThreshold = 12

// lengthWeightPerWord is the incremental score per word past the threshold.
const lengthWeightPerWord = 0.02

// maxLengthWeight caps the total length contribution.
const maxLengthWeight = 0.3

// Analyzer estimates how many retrieval hops a question needs from lexical
// indicators. It is a deliberately cheap, explainable heuristic so that hop
// budgets stay auditable and reproducible.
type Analyzer struct {
	lengthThreshold int
	rules           []indicatorRule
}

// NewAnalyzer creates a complexity analyzer with the default indicator table.
func NewAnalyzer() *Analyzer {
	a := &Analyzer{lengthThreshold: DefaultLengthThreshold}
	a.rules = []indicatorRule{
		{
			name: "comparison", weight: 0.35, strong: true,
			match: func(lower string, _ int) bool {
				return containsPhrase(lower, "vs") ||
					containsPhrase(lower, "versus") ||
					containsPhrase(lower, "compare") ||
					strings.Contains(lower, "difference between")
			},
		},
		{
			name: "multi_aspect", weight: 0.25, strong: true,
			match: func(lower string, _ int) bool {
				return strings.Contains(lower, "pros and cons") ||
					strings.Contains(lower, "advantages and disadvantages") ||
					strings.Count(lower, " and ") >= 2
			},
		},
		{
			name: "causal", weight: 0.2, strong: true,
			match: func(lower string, _ int) bool {
				return containsPhrase(lower, "why")
			},
		},
		{
			name: "length", weight: 0, // weight computed incrementally
			match: func(_ string, words int) bool {
				return words > a.lengthThreshold
			},
		},
	}
	return a
}

// WithLengthThreshold overrides the word count threshold.
func (a *Analyzer) WithLengthThreshold(n int) *Analyzer {
	if n > 0 {
		a.lengthThreshold = n
	}
	return a
}

// Analyze estimates the question's complexity. Pure, never fails: degenerate
// input yields a minimal plan with zero score.
func (a *Analyzer) Analyze(question string, bounds Bounds) complexity.Complexity {
	bounds = bounds.Normalize()
	lower := strings.ToLower(strings.TrimSpace(question))
	words := len(strings.Fields(lower))

	var score float64
	strongHits := 0
	indicators := make(map[string]bool, len(a.rules))
	var fired []string

	for _, r := range a.rules {
		hit := r.match(lower, words)
		indicators[r.name] = hit
		if !hit {
			continue
		}
		fired = append(fired, r.name)
		if r.name == "length" {
			extra := float64(words-a.lengthThreshold) * lengthWeightPerWord
			score += math.Min(extra, maxLengthWeight)
			continue
		}
		score += r.weight
		if r.strong {
			strongHits++
		}
	}
	score = clamp01(score)

	hops := bounds.MinHops + int(math.Round(score*float64(bounds.MaxHops-bounds.MinHops)))

	confidence := confidenceFor(strongHits, indicators["length"])
	reasoning := "no complexity indicators matched"
	if len(fired) > 0 {
		reasoning = fmt.Sprintf("indicators matched: %s", strings.Join(fired, ", "))
	}

	return complexity.New(score, hops, confidence, reasoning, indicators, bounds.MinHops, bounds.MaxHops)
}

// confidenceFor scores how reliable the estimate is: explicit indicator
// phrases are unambiguous, a length-only match is weak evidence.
func confidenceFor(strongHits int, lengthOnly bool) float64 {
	switch {
	case strongHits >= 2:
		return 0.9
	case strongHits == 1:
		return 0.75
	case lengthOnly:
		return 0.4
	default:
		return 0.6
	}
}
