// Package transcript provides optional post-processing of raw transcripts
// before they reach the output sink.
//
// Whisper output is rarely perfect for user-specific vocabulary such as
// project names or jargon. A [DictionaryCorrector] aligns misheard words to
// a user-supplied term list by pronunciation similarity. Correction is
// purely local and fast enough to sit on the synchronous STOP path.
package transcript

import (
	"strings"
	"unicode"
)

// Correction records one word-level substitution.
type Correction struct {
	// Original is the token as produced by the STT provider.
	Original string

	// Corrected is the dictionary term that replaced it.
	Corrected string

	// Confidence is the similarity score of the match (0.0–1.0].
	Confidence float64
}

// Corrector rewrites a transcript, returning the corrected text and an
// itemised record of substitutions. Implementations must be safe for
// concurrent use.
type Corrector interface {
	Correct(text string) (string, []Correction)
}

// Matcher resolves a single word (or space-separated phrase) to a known
// dictionary term by pronunciation similarity. Implemented by
// [phonetic.Matcher].
type Matcher interface {
	Match(word string, terms []string) (corrected string, confidence float64, matched bool)
}

// Compile-time assertion that DictionaryCorrector satisfies Corrector.
var _ Corrector = (*DictionaryCorrector)(nil)

// DictionaryCorrector corrects transcripts against a fixed term list using a
// [Matcher]. Read-only after construction, safe for concurrent use.
type DictionaryCorrector struct {
	terms        []string
	matcher      Matcher
	maxTermWords int
}

// NewDictionaryCorrector builds a corrector over terms. Terms may contain
// spaces; multi-word terms are matched against sliding token windows of the
// same width.
func NewDictionaryCorrector(terms []string, matcher Matcher) *DictionaryCorrector {
	maxWords := 1
	clean := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		clean = append(clean, term)
		if n := len(strings.Fields(term)); n > maxWords {
			maxWords = n
		}
	}
	return &DictionaryCorrector{
		terms:        clean,
		matcher:      matcher,
		maxTermWords: maxWords,
	}
}

// Correct tokenises text on whitespace and replaces tokens (and multi-token
// windows, widest first) that phonetically match a dictionary term.
// Punctuation adjacent to a token is preserved around the replacement.
// When no corrections apply, the returned text equals the input.
func (c *DictionaryCorrector) Correct(text string) (string, []Correction) {
	if len(c.terms) == 0 || strings.TrimSpace(text) == "" {
		return text, nil
	}

	tokens := strings.Fields(text)
	var corrections []Correction

	for width := c.maxTermWords; width >= 1; width-- {
		for i := 0; i+width <= len(tokens); i++ {
			window := tokens[i : i+width]
			core, prefix, suffix := stripPunct(strings.Join(window, " "))
			if core == "" || c.isKnownTerm(core) {
				continue
			}

			corrected, confidence, matched := c.matcher.Match(core, c.terms)
			if !matched || strings.EqualFold(corrected, core) {
				continue
			}

			corrections = append(corrections, Correction{
				Original:   core,
				Corrected:  corrected,
				Confidence: confidence,
			})

			// Collapse the window into a single replacement token.
			replacement := prefix + corrected + suffix
			tokens = append(tokens[:i], append([]string{replacement}, tokens[i+width:]...)...)
		}
	}

	return strings.Join(tokens, " "), corrections
}

// isKnownTerm reports whether word already equals a dictionary term
// (case-insensitive), so it must not be "corrected" away.
func (c *DictionaryCorrector) isKnownTerm(word string) bool {
	for _, term := range c.terms {
		if strings.EqualFold(term, word) {
			return true
		}
	}
	return false
}

// stripPunct splits leading and trailing punctuation from s, returning the
// core word with the stripped runes.
func stripPunct(s string) (core, prefix, suffix string) {
	runes := []rune(s)

	i := 0
	for i < len(runes) && isPunct(runes[i]) {
		i++
	}
	j := len(runes)
	for j > i && isPunct(runes[j-1]) {
		j--
	}
	return string(runes[i:j]), string(runes[:i]), string(runes[j:])
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
