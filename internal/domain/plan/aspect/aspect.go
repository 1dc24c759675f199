// Package aspect defines the question facets a complete answer must cover.
package aspect

import "fmt"

// Type classifies what kind of facet an aspect is.
type Type string

const (
	// Definition asks what something is.
	Definition Type = "definition"
	// Comparison asks how two things differ.
	Comparison Type = "comparison"
	// Process asks how something works.
	Process Type = "process"
	// Causal asks why something happens.
	Causal Type = "causal"
	// Evaluation asks for advantages and disadvantages.
	Evaluation Type = "evaluation"
	// Application asks what something is used for.
	Application Type = "application"
	// General is the fallback facet covering the whole question.
	General Type = "general"
)

// Validate checks that t is a known aspect type.
func (t Type) Validate() error {
	switch t {
	case Definition, Comparison, Process, Causal, Evaluation, Application, General:
		return nil
	default:
		return fmt.Errorf("unknown aspect type %q", string(t))
	}
}

// CoreImportance is the importance threshold above which an aspect is
// mandatory for stopping.
const CoreImportance = 0.8

// Aspect is an immutable facet of a question (value object).
type Aspect struct {
	name       string
	typ        Type
	importance float64
	keywords   []string
}

// New validates and creates an Aspect. Importance is clamped to [0,1].
func New(name string, typ Type, importance float64, keywords []string) (Aspect, error) {
	if name == "" {
		return Aspect{}, fmt.Errorf("aspect name is required")
	}
	if err := typ.Validate(); err != nil {
		return Aspect{}, err
	}
	if importance < 0 {
		importance = 0
	}
	if importance > 1 {
		importance = 1
	}
	return Aspect{
		name:       name,
		typ:        typ,
		importance: importance,
		keywords:   cloneStrings(keywords),
	}, nil
}

// Reconstruct creates an Aspect without validation (trusted callers only).
func Reconstruct(name string, typ Type, importance float64, keywords []string) Aspect {
	return Aspect{name: name, typ: typ, importance: importance, keywords: keywords}
}

// Name returns the unique aspect key.
func (a *Aspect) Name() string { return a.name }

// Type returns the aspect classification.
func (a *Aspect) Type() Type { return a.typ }

// Importance returns the aspect weight in [0,1].
func (a *Aspect) Importance() float64 { return a.importance }

// Keywords returns the content words describing this aspect, in question order.
func (a *Aspect) Keywords() []string { return a.keywords }

// IsCore reports whether the aspect is mandatory for stopping.
func (a *Aspect) IsCore() bool { return a.importance >= CoreImportance }

func cloneStrings(ss []string) []string {
	if ss == nil {
		return nil
	}
	c := make([]string, len(ss))
	copy(c, ss)
	return c
}
