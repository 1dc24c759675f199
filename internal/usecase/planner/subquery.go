package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/hoplite/internal/domain/plan/aspect"
	"github.com/kailas-cloud/hoplite/internal/domain/plan/complexity"
)

// maxFixedSubqueries caps the non-adaptive path regardless of complexity.
const maxFixedSubqueries = 5

// questionType classifies a question for the fixed template tables.
type questionType string

const (
	qtDefinition     questionType = "definition"
	qtProcess        questionType = "process"
	qtCausal         questionType = "causal"
	qtComparison     questionType = "comparison"
	qtRecommendation questionType = "recommendation"
	qtExample        questionType = "example"
	qtTrend          questionType = "trend"
)

// fixedTemplates maps a question type to its subquery templates. %s is
// replaced by the question's key terms.
var fixedTemplates = map[questionType][]string{
	qtDefinition: {
		"What is %s?",
		"%s definition and overview",
		"%s key concepts",
		"%s explained",
	},
	qtProcess: {
		"How does %s work?",
		"%s step by step",
		"%s implementation details",
		"%s best practices",
	},
	qtCausal: {
		"Why %s?",
		"%s causes and reasons",
		"%s underlying factors",
		"%s explanation",
	},
	qtComparison: {
		"%s comparison",
		"%s differences",
		"%s similarities",
		"%s trade-offs",
		"%s which to choose",
	},
	qtRecommendation: {
		"%s recommendations",
		"%s best options",
		"%s selection criteria",
		"%s evaluation",
	},
	qtExample: {
		"%s examples",
		"%s use cases",
		"%s real world applications",
		"%s case studies",
	},
	qtTrend: {
		"%s latest developments",
		"%s current state",
		"%s future directions",
		"%s recent research",
	},
}

// aspectTemplates maps an aspect type to its phrasing rule for the adaptive
// path. %s is replaced by the aspect's keywords.
var aspectTemplates = map[aspect.Type]string{
	aspect.Definition:  "What is %s?",
	aspect.Comparison:  "What are the differences and similarities between %s?",
	aspect.Process:     "How does %s work?",
	aspect.Causal:      "Why does %s happen?",
	aspect.Evaluation:  "What are the advantages and disadvantages of %s?",
	aspect.Application: "What are the applications and uses of %s?",
	aspect.General:     "Overview of %s",
}

// AspectSubquery pairs a generated subquery with the aspect it targets.
type AspectSubquery struct {
	Subquery string
	Aspect   string
}

// Generator produces retrieval subqueries, either from fixed question-type
// templates (non-adaptive, backward-compatible behavior) or targeted at
// uncovered aspects (adaptive).
type Generator struct {
	generator TextGenerator
}

// NewGenerator creates a subquery generator.
func NewGenerator() *Generator { return &Generator{} }

// WithGenerator attaches an optional text generator used to rephrase
// templated subqueries. Failures fall back to the template silently.
func (g *Generator) WithGenerator(tg TextGenerator) *Generator {
	g.generator = tg
	return g
}

// Budget returns the subquery budget implied by the complexity estimate:
// the estimated hop count, bounded by the configured hop range. The session
// uses it to cap how many subqueries each hop may issue.
func (g *Generator) Budget(c complexity.Complexity, bounds Bounds) int {
	bounds = bounds.Normalize()
	n := c.EstimatedHops()
	if n < bounds.MinHops {
		n = bounds.MinHops
	}
	if n > bounds.MaxHops {
		n = bounds.MaxHops
	}
	return n
}

// Generate is the non-adaptive path: template subqueries for the detected
// question type, deduplicated and capped at a fixed count regardless of
// complexity.
func (g *Generator) Generate(question string) []string {
	terms := keyTerms(question)
	if terms == "" {
		return []string{fallbackSubquery(question, "")}
	}
	qt := detectQuestionType(strings.ToLower(question))

	seen := make(map[string]struct{})
	var out []string
	for _, tmpl := range fixedTemplates[qt] {
		sq := strings.TrimSpace(fmt.Sprintf(tmpl, terms))
		if sq == "" {
			continue
		}
		if _, dup := seen[sq]; dup {
			continue
		}
		seen[sq] = struct{}{}
		out = append(out, sq)
		if len(out) >= maxFixedSubqueries {
			break
		}
	}

	if len(out) == 0 {
		out = append(out, fallbackSubquery(question, ""))
	}
	return out
}

// GenerateForAspects is the adaptive path: one subquery per uncovered
// aspect, core aspects first in their original order, stopping at
// maxSubqueries. Aspects without keywords still yield a valid subquery.
func (g *Generator) GenerateForAspects(
	ctx context.Context, question string, aspects []aspect.Aspect, maxSubqueries int,
) []AspectSubquery {
	if maxSubqueries <= 0 {
		return nil
	}

	ordered := make([]*aspect.Aspect, 0, len(aspects))
	for i := range aspects {
		if aspects[i].IsCore() {
			ordered = append(ordered, &aspects[i])
		}
	}
	for i := range aspects {
		if !aspects[i].IsCore() {
			ordered = append(ordered, &aspects[i])
		}
	}

	seen := make(map[string]struct{})
	var out []AspectSubquery
	for _, a := range ordered {
		if len(out) >= maxSubqueries {
			break
		}
		sq := g.subqueryFor(ctx, question, a)
		if _, dup := seen[sq]; dup {
			continue
		}
		seen[sq] = struct{}{}
		out = append(out, AspectSubquery{Subquery: sq, Aspect: a.Name()})
	}
	return out
}

// subqueryFor phrases one subquery for an aspect. The subquery is built from
// keywords, never from the aspect name, so arbitrarily long names are fine.
func (g *Generator) subqueryFor(ctx context.Context, question string, a *aspect.Aspect) string {
	kw := strings.Join(a.Keywords(), " ")
	if kw == "" {
		return fallbackSubquery(question, a.Name())
	}

	tmpl, ok := aspectTemplates[a.Type()]
	if !ok {
		tmpl = aspectTemplates[aspect.General]
	}
	sq := fmt.Sprintf(tmpl, kw)

	if g.generator != nil && g.generator.IsAvailable() {
		if refined := g.rephrase(ctx, sq); refined != "" {
			return refined
		}
	}
	return sq
}

const rephraseSystemPrompt = "You rewrite a search query to be more precise. " +
	"Reply with the rewritten query only."

func (g *Generator) rephrase(ctx context.Context, sq string) string {
	resp, err := g.generator.GenerateText(ctx, sq, rephraseSystemPrompt, 48)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(resp), `"`))
}

// fallbackSubquery guarantees a short, non-empty subquery for degenerate
// input.
func fallbackSubquery(question, aspectName string) string {
	if terms := keyTerms(question); terms != "" {
		return "Background information on " + terms
	}
	if aspectName != "" {
		return "Background information on " + aspectName
	}
	return "Background information"
}

// keyTerms joins the question's content words into a search phrase.
func keyTerms(question string) string {
	return strings.Join(contentWords(question), " ")
}

// detectQuestionType classifies the question for the fixed template tables.
// First match wins; default is definition.
func detectQuestionType(lower string) questionType {
	switch {
	case containsPhrase(lower, "vs") || containsPhrase(lower, "versus") ||
		containsPhrase(lower, "compare") || strings.Contains(lower, "difference between"):
		return qtComparison
	case strings.Contains(lower, "how does") || strings.Contains(lower, "how do") ||
		strings.Contains(lower, "how to"):
		return qtProcess
	case containsPhrase(lower, "why"):
		return qtCausal
	case containsPhrase(lower, "best") || containsPhrase(lower, "recommend") ||
		strings.Contains(lower, "should i"):
		return qtRecommendation
	case containsPhrase(lower, "example") || containsPhrase(lower, "examples"):
		return qtExample
	case containsPhrase(lower, "trend") || containsPhrase(lower, "trends") ||
		containsPhrase(lower, "future"):
		return qtTrend
	default:
		return qtDefinition
	}
}
