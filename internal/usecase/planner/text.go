package planner

import "strings"

// stopWords are function words excluded from keyword extraction.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "do": {}, "does": {}, "did": {},
	"have": {}, "has": {}, "had": {}, "will": {}, "would": {}, "can": {},
	"could": {}, "should": {}, "may": {}, "might": {}, "shall": {},
	"what": {}, "which": {}, "who": {}, "whom": {}, "whose": {}, "when": {},
	"where": {}, "why": {}, "how": {}, "and": {}, "or": {}, "but": {},
	"not": {}, "no": {}, "nor": {}, "of": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "from": {}, "by": {}, "with": {}, "about": {},
	"between": {}, "into": {}, "through": {}, "as": {}, "it": {}, "its": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "there": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "we": {}, "they": {},
	"me": {}, "my": {}, "your": {}, "their": {}, "our": {},
	"vs": {}, "versus": {},
}

// tokenize splits text into lowercased word tokens, stripping punctuation
// from token edges.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		t := strings.Trim(f, ".,;:!?\"'()[]{}")
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// tokenSet builds a membership set from tokenized text.
func tokenSet(text string) map[string]struct{} {
	tokens := tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// contentWords returns the tokens of text with stop words removed,
// preserving order and dropping duplicates.
func contentWords(text string) []string {
	tokens := tokenize(text)
	seen := make(map[string]struct{}, len(tokens))
	var out []string
	for _, t := range tokens {
		if _, stop := stopWords[t]; stop {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// containsPhrase reports whether the lowercased text contains the phrase as
// a word-bounded substring.
func containsPhrase(lower, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		beforeOK := start == 0 || !isWordByte(lower[start-1])
		afterOK := end == len(lower) || !isWordByte(lower[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
