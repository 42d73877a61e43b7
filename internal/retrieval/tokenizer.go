// Package retrieval implements the hybrid retrieval pipeline: query
// normalization for the exact-match path, the metadata search contract, and
// the merge/prefix/source-extraction stage that feeds answer synthesis.  The
// vector index, reranker and scan backends are consumed through interfaces
// implemented by infrastructure adapters.
package retrieval

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// reWordRun matches maximal runs of Hangul syllables, Latin letters and
// digits.  Everything else is a token boundary.
var reWordRun = regexp.MustCompile(`[가-힣A-Za-z0-9]+`)

// particles are the trailing grammatical suffixes stripped from tokens before
// stopword filtering.  Checked in this fixed order; the first suffix match
// wins and exactly one occurrence is stripped.
var particles = []string{
	"은", "는", "이", "가", "을", "를", "의", "에", "에서", "으로", "와", "과", "도", "만",
}

// stopwords are query filler terms carrying no retrieval signal in this
// domain.  Compared after particle stripping.
var stopwords = map[string]struct{}{
	"하다":  {},
	"해줘":  {},
	"알려줘": {},
	"찾아줘": {},
	"관련":  {},
	"특허":  {},
	"발명":  {},
	"발명한": {},
}

// NormalizeQuery tokenizes a free-text query for the exact-match metadata
// path.  Each word run is particle-stripped, then dropped if it is a stopword
// or at most one character long.  Token order and duplicates are preserved.
func NormalizeQuery(query string) []string {
	raw := reWordRun.FindAllString(query, -1)

	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		tok = stripParticle(tok)
		if utf8.RuneCountInString(tok) <= 1 {
			continue
		}
		if _, ok := stopwords[tok]; ok {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// stripParticle removes one trailing particle from tok when the remainder is
// non-empty; otherwise tok is returned unchanged.
func stripParticle(tok string) string {
	for _, p := range particles {
		if !strings.HasSuffix(tok, p) {
			continue
		}
		rest := strings.TrimSuffix(tok, p)
		if rest == "" {
			continue
		}
		return rest
	}
	return tok
}
