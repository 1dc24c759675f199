package planner

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/hoplite/internal/domain/plan/aspect"
	"github.com/kailas-cloud/hoplite/internal/domain/plan/coverage"
)

// Extractor decomposes a question into the aspects a complete answer must
// cover. The rule set is heuristic and ordered; rules are non-exclusive, so
// one question can yield aspects from several rules.
type Extractor struct {
	generator TextGenerator
	rules     []aspectRule
}

// aspectRule maps a question pattern to the aspects it implies.
type aspectRule struct {
	name  string
	apply func(question, lower string) []aspect.Aspect
}

var (
	compareAndRegex  = regexp.MustCompile(`(?i)\bcompare\s+(.+?)\s+(?:and|with|to)\s+(.+)$`)
	diffBetweenRegex = regexp.MustCompile(`(?i)\bdifference(?:s)?\s+between\s+(.+?)\s+and\s+(.+)$`)
	vsRegex          = regexp.MustCompile(`(?i)^(.*?)\s+(?:vs\.?|versus)\s+(.+)$`)
)

// NewExtractor creates an aspect extractor with the default rule set.
func NewExtractor() *Extractor {
	e := &Extractor{}
	e.rules = []aspectRule{
		{name: "comparison", apply: comparisonAspects},
		{name: "definition", apply: definitionAspects},
		{name: "process", apply: processAspects},
		{name: "causal", apply: causalAspects},
		{name: "evaluation", apply: evaluationAspects},
	}
	return e
}

// WithGenerator attaches an optional text generator used to refine the
// heuristic aspects. The heuristic path stays authoritative: refinement only
// ever adds, and any generator failure is ignored.
func (e *Extractor) WithGenerator(g TextGenerator) *Extractor {
	e.generator = g
	return e
}

// Extract decomposes the question and returns the initial coverage state
// with all scores at zero. Never returns zero aspects: a question matching
// no rule falls back to a single general aspect.
func (e *Extractor) Extract(ctx context.Context, question string) *coverage.Coverage {
	lower := strings.ToLower(strings.TrimSpace(question))

	var aspects []aspect.Aspect
	seen := make(map[string]struct{})
	for _, r := range e.rules {
		for _, a := range r.apply(question, lower) {
			if _, dup := seen[a.Name()]; dup {
				continue
			}
			seen[a.Name()] = struct{}{}
			aspects = append(aspects, a)
		}
	}

	if len(aspects) == 0 {
		general, _ := aspect.New("general", aspect.General, 1.0, contentWords(lower))
		aspects = append(aspects, general)
	}

	if e.generator != nil && e.generator.IsAvailable() {
		aspects = e.refine(ctx, question, aspects, seen)
	}

	return coverage.New(aspects)
}

// comparisonAspects handles "X vs Y", "compare X and Y" and
// "difference between X and Y": one definition aspect per side plus a
// comparison aspect over the combined keywords, all mandatory.
func comparisonAspects(_, lower string) []aspect.Aspect {
	left, right, ok := splitComparison(lower)
	if !ok {
		return nil
	}

	leftKW := contentWords(left)
	rightKW := contentWords(right)

	var out []aspect.Aspect
	if len(leftKW) > 0 {
		a, err := aspect.New("definition: "+strings.Join(leftKW, " "), aspect.Definition, 1.0, leftKW)
		if err == nil {
			out = append(out, a)
		}
	}
	if len(rightKW) > 0 {
		a, err := aspect.New("definition: "+strings.Join(rightKW, " "), aspect.Definition, 1.0, rightKW)
		if err == nil {
			out = append(out, a)
		}
	}

	combined := append(append([]string{}, leftKW...), rightKW...)
	name := fmt.Sprintf("comparison: %s versus %s", strings.Join(leftKW, " "), strings.Join(rightKW, " "))
	if cmp, err := aspect.New(name, aspect.Comparison, 1.0, combined); err == nil {
		out = append(out, cmp)
	}
	return out
}

func splitComparison(lower string) (left, right string, ok bool) {
	for _, re := range []*regexp.Regexp{vsRegex, compareAndRegex, diffBetweenRegex} {
		if m := re.FindStringSubmatch(lower); m != nil && strings.TrimSpace(m[1]) != "" && strings.TrimSpace(m[2]) != "" {
			return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
		}
	}
	return "", "", false
}

// definitionAspects handles "what is ..." and "define ...".
func definitionAspects(_, lower string) []aspect.Aspect {
	var span string
	switch {
	case strings.Contains(lower, "what is"):
		span = after(lower, "what is")
	case strings.Contains(lower, "what are"):
		span = after(lower, "what are")
	case containsPhrase(lower, "define"):
		span = after(lower, "define")
	default:
		return nil
	}

	kw := contentWords(span)
	if len(kw) == 0 {
		kw = contentWords(lower)
	}
	if len(kw) == 0 {
		return nil
	}
	a, err := aspect.New("definition: "+strings.Join(kw, " "), aspect.Definition, 1.0, kw)
	if err != nil {
		return nil
	}
	return []aspect.Aspect{a}
}

// processAspects handles "how does ..." / "how do ...".
func processAspects(_, lower string) []aspect.Aspect {
	var span string
	switch {
	case strings.Contains(lower, "how does"):
		span = after(lower, "how does")
	case strings.Contains(lower, "how do"):
		span = after(lower, "how do")
	default:
		return nil
	}

	kw := contentWords(span)
	if len(kw) == 0 {
		kw = contentWords(lower)
	}
	if len(kw) == 0 {
		return nil
	}
	a, err := aspect.New("process: "+strings.Join(kw, " "), aspect.Process, 0.8, kw)
	if err != nil {
		return nil
	}
	return []aspect.Aspect{a}
}

// causalAspects handles "why ..." questions.
func causalAspects(_, lower string) []aspect.Aspect {
	if !containsPhrase(lower, "why") {
		return nil
	}
	span := after(lower, "why")
	kw := contentWords(span)
	if len(kw) == 0 {
		kw = contentWords(lower)
	}
	if len(kw) == 0 {
		return nil
	}
	a, err := aspect.New("causal: "+strings.Join(kw, " "), aspect.Causal, 0.8, kw)
	if err != nil {
		return nil
	}
	return []aspect.Aspect{a}
}

// evaluationAspects handles "pros and cons" / "advantages and disadvantages".
func evaluationAspects(_, lower string) []aspect.Aspect {
	if !strings.Contains(lower, "pros and cons") &&
		!strings.Contains(lower, "advantages and disadvantages") {
		return nil
	}
	kw := contentWords(lower)
	if len(kw) == 0 {
		return nil
	}
	a, err := aspect.New("evaluation: "+strings.Join(kw, " "), aspect.Evaluation, 0.7, kw)
	if err != nil {
		return nil
	}
	return []aspect.Aspect{a}
}

// after returns the remainder of s past the first occurrence of phrase.
func after(s, phrase string) string {
	i := strings.Index(s, phrase)
	if i < 0 {
		return s
	}
	return strings.TrimSpace(s[i+len(phrase):])
}

const refineSystemPrompt = "You suggest short search facets for a question. " +
	"Reply with up to three comma-separated noun phrases, nothing else."

// refine asks the generator for extra facets and appends any that the
// heuristic rules did not already produce, as optional application aspects.
func (e *Extractor) refine(
	ctx context.Context, question string, aspects []aspect.Aspect, seen map[string]struct{},
) []aspect.Aspect {
	resp, err := e.generator.GenerateText(ctx,
		"Question: "+question, refineSystemPrompt, 64)
	if err != nil {
		return aspects
	}

	for _, facet := range strings.Split(resp, ",") {
		kw := contentWords(facet)
		if len(kw) == 0 {
			continue
		}
		name := "application: " + strings.Join(kw, " ")
		if _, dup := seen[name]; dup {
			continue
		}
		a, err := aspect.New(name, aspect.Application, 0.5, kw)
		if err != nil {
			continue
		}
		seen[name] = struct{}{}
		aspects = append(aspects, a)
	}
	return aspects
}
