// Package match implements the normalized, typo-tolerant token matching used
// by the fallback search backend.
package match

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	porterstemmer "github.com/blevesearch/go-porterstemmer"
)

// DefaultThreshold is the minimum edit similarity for a fuzzy token match.
// It is high enough that "caar" and "scar" do not match "car".
const DefaultThreshold = 0.9

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "in": {}, "is": {}, "it": {}, "of": {},
	"on": {}, "or": {}, "the": {}, "to": {}, "with": {},
}

// Matcher scores query text against document fields.
type Matcher struct {
	threshold float64
}

// New creates a Matcher. A non-positive threshold selects DefaultThreshold.
func New(threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the fuzzy similarity cut-off.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Match reports whether every query token matches some token drawn from
// fields. Confidence is the mean of the per-token best similarity.
func (m *Matcher) Match(query string, fields ...string) (float64, bool) {
	qTokens := Normalize(query)
	if len(qTokens) == 0 {
		return 0, false
	}

	set := make(map[string]struct{})
	for _, f := range fields {
		for _, tok := range Normalize(f) {
			set[tok] = struct{}{}
		}
	}
	if len(set) == 0 {
		return 0, false
	}

	var total float64
	for _, q := range qTokens {
		best := m.best(q, set)
		if best < m.threshold {
			return 0, false
		}
		total += best
	}
	return total / float64(len(qTokens)), true
}

func (m *Matcher) best(q string, set map[string]struct{}) float64 {
	if _, ok := set[q]; ok {
		return 1
	}
	qLen := utf8.RuneCountInString(q)
	var best float64
	for tok := range set {
		tLen := utf8.RuneCountInString(tok)
		longest := max(qLen, tLen)
		if 1-float64(abs(qLen-tLen))/float64(longest) < m.threshold {
			continue
		}
		if s := Similarity(q, tok); s > best {
			best = s
		}
	}
	return best
}

// Similarity is 1 - levenshtein(a, b) / max(len(a), len(b)).
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// Normalize lowercases, tokenizes, drops stopwords, singularizes and stems s.
// If only stopwords remain they are kept.
func Normalize(s string) []string {
	raw := Tokenize(s)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		out = append(out, stem(tok))
	}
	if len(out) == 0 {
		for _, tok := range raw {
			out = append(out, stem(tok))
		}
	}
	return out
}

// Tokenize splits lowercased s on every non-alphanumeric rune.
func Tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func stem(tok string) string {
	return porterstemmer.StemString(Singularize(tok))
}

// Singularize applies simple English plural rules.
func Singularize(w string) string {
	n := len(w)
	switch {
	case n > 4 && strings.HasSuffix(w, "ies"):
		return w[:n-3] + "y"
	case n > 4 && (strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "shes")):
		return w[:n-2]
	case n > 3 && (strings.HasSuffix(w, "ses") || strings.HasSuffix(w, "xes") || strings.HasSuffix(w, "zes")):
		return w[:n-2]
	case n > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us"):
		return w[:n-1]
	default:
		return w
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
