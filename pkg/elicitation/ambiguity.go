package elicitation

import (
	"fmt"
	"strings"
)

// Finding kinds.
const (
	KindVagueTerm  = "vague term"
	KindWeakPhrase = "weak phrase"
)

// Finding is a single ambiguity hit in a piece of requirement text.
type Finding struct {
	Kind string `json:"kind"`
	Term string `json:"term"`
}

// String renders the finding in the report form shown to users,
// e.g. `Vague term: 'fast'`.
func (f Finding) String() string {
	switch f.Kind {
	case KindVagueTerm:
		return fmt.Sprintf("Vague term: '%s'", f.Term)
	case KindWeakPhrase:
		return fmt.Sprintf("Weak phrase: '%s'", f.Term)
	default:
		return fmt.Sprintf("%s: '%s'", f.Kind, f.Term)
	}
}

// Lexicon holds the word lists driving ambiguity detection. Both lists are
// matched as case-insensitive substrings.
type Lexicon struct {
	VagueTerms  []string `toml:"vague_terms"`
	WeakPhrases []string `toml:"weak_phrases"`
}

// DefaultLexicon returns the built-in vague-term and weak-phrase lists.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		VagueTerms: []string{
			"fast", "slow", "quick", "efficient", "user-friendly",
			"easy", "simple", "reliable", "robust", "scalable",
			"flexible", "intuitive", "appropriate", "adequate",
			"reasonable", "normal", "usual", "typical",
		},
		WeakPhrases: []string{
			"if possible", "as appropriate", "as needed", "if required",
			"when necessary", "to the extent possible", "where applicable",
		},
	}
}

// Detect returns every lexicon entry present in text. Matching is substring
// membership on the lowercased text, in lexicon order, vague terms first.
func (l *Lexicon) Detect(text string) []Finding {
	lower := strings.ToLower(text)
	findings := []Finding{}

	for _, term := range l.VagueTerms {
		if strings.Contains(lower, term) {
			findings = append(findings, Finding{Kind: KindVagueTerm, Term: term})
		}
	}

	for _, phrase := range l.WeakPhrases {
		if strings.Contains(lower, phrase) {
			findings = append(findings, Finding{Kind: KindWeakPhrase, Term: phrase})
		}
	}

	return findings
}
