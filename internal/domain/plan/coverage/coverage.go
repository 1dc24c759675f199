// Package coverage tracks how well retrieved evidence addresses each aspect
// of a question across retrieval hops.
package coverage

import "github.com/kailas-cloud/hoplite/internal/domain/plan/aspect"

// DefaultThreshold is the score at which an aspect counts as covered.
const DefaultThreshold = 0.5

// Coverage is the mutable per-session coverage state. One instance exists
// per in-flight question and is owned by the session processing it; it is
// never shared between concurrently running hops.
type Coverage struct {
	aspects      []aspect.Aspect
	scores       map[string]float64
	coveredByHop map[string]int
}

// New creates a Coverage with all aspect scores at zero.
func New(aspects []aspect.Aspect) *Coverage {
	scores := make(map[string]float64, len(aspects))
	for i := range aspects {
		scores[aspects[i].Name()] = 0
	}
	return &Coverage{
		aspects:      aspects,
		scores:       scores,
		coveredByHop: make(map[string]int, len(aspects)),
	}
}

// Aspects returns the aspects in extraction order.
func (c *Coverage) Aspects() []aspect.Aspect { return c.aspects }

// Score returns the current coverage score for an aspect, zero if unknown.
func (c *Coverage) Score(name string) float64 { return c.scores[name] }

// CoveredAtHop returns the hop at which the aspect first crossed the covered
// threshold, or 0 if it never did.
func (c *Coverage) CoveredAtHop(name string) int { return c.coveredByHop[name] }

// Merge folds an observed score for an aspect into the state. The merge rule
// is max(existing, observed): coverage never decreases across hops. The first
// hop at which the score reaches threshold is recorded once. Observations for
// unknown aspects are ignored, keeping scores keyed only by known aspects.
func (c *Coverage) Merge(name string, observed float64, hop int, threshold float64) {
	current, ok := c.scores[name]
	if !ok {
		return
	}
	if observed > current {
		c.scores[name] = observed
		current = observed
	}
	if current >= threshold {
		if _, done := c.coveredByHop[name]; !done {
			c.coveredByHop[name] = hop
		}
	}
}

// Percentage returns the fraction of aspects whose score is at or above
// threshold. Returns 0 for an empty aspect set.
func (c *Coverage) Percentage(threshold float64) float64 {
	if len(c.aspects) == 0 {
		return 0
	}
	covered := 0
	for i := range c.aspects {
		if c.scores[c.aspects[i].Name()] >= threshold {
			covered++
		}
	}
	return float64(covered) / float64(len(c.aspects))
}

// Weighted returns the importance-weighted coverage: the sum of each score
// multiplied by its aspect importance, divided by total importance.
func (c *Coverage) Weighted() float64 {
	var sum, total float64
	for i := range c.aspects {
		a := &c.aspects[i]
		sum += c.scores[a.Name()] * a.Importance()
		total += a.Importance()
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// Uncovered returns the aspects whose score is below threshold, in the
// original extraction order.
func (c *Coverage) Uncovered(threshold float64) []aspect.Aspect {
	var out []aspect.Aspect
	for i := range c.aspects {
		if c.scores[c.aspects[i].Name()] < threshold {
			out = append(out, c.aspects[i])
		}
	}
	return out
}

// CoreCovered reports whether every core aspect is at or above threshold.
// Vacuously true when the question has no core aspects.
func (c *Coverage) CoreCovered(threshold float64) bool {
	for i := range c.aspects {
		a := &c.aspects[i]
		if a.IsCore() && c.scores[a.Name()] < threshold {
			return false
		}
	}
	return true
}
