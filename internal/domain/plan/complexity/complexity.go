// Package complexity holds the per-question hop budget estimate.
package complexity

// Complexity is the immutable result of complexity analysis for one question.
// Construction clamps rather than fails: analysis is a pure heuristic and
// must always yield a usable plan.
type Complexity struct {
	score         float64
	estimatedHops int
	confidence    float64
	reasoning     string
	indicators    map[string]bool
}

// New creates a Complexity. The score and confidence are clamped to [0,1]
// and estimatedHops is clamped to [minHops, maxHops].
func New(
	score float64, estimatedHops int, confidence float64,
	reasoning string, indicators map[string]bool,
	minHops, maxHops int,
) Complexity {
	score = clamp01(score)
	confidence = clamp01(confidence)
	if minHops < 1 {
		minHops = 1
	}
	if maxHops < minHops {
		maxHops = minHops
	}
	if estimatedHops < minHops {
		estimatedHops = minHops
	}
	if estimatedHops > maxHops {
		estimatedHops = maxHops
	}
	return Complexity{
		score:         score,
		estimatedHops: estimatedHops,
		confidence:    confidence,
		reasoning:     reasoning,
		indicators:    cloneBoolMap(indicators),
	}
}

// Score returns the heuristic complexity score in [0,1].
func (c *Complexity) Score() float64 { return c.score }

// EstimatedHops returns the estimated retrieval hop budget.
func (c *Complexity) EstimatedHops() int { return c.estimatedHops }

// Confidence returns how reliable the estimate is, in [0,1].
func (c *Complexity) Confidence() float64 { return c.confidence }

// Reasoning returns a human-readable list of the indicators that fired.
func (c *Complexity) Reasoning() string { return c.reasoning }

// Indicators returns which indicator categories matched the question.
func (c *Complexity) Indicators() map[string]bool { return c.indicators }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	if m == nil {
		return nil
	}
	c := make(map[string]bool, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
