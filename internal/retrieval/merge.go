package retrieval

import (
	"fmt"
	"strings"

	"github.com/turtacn/KeyIP-Chat/internal/domain/document"
)

// Markers delimiting the metadata prefix block injected into candidate text
// before synthesis.  The open marker doubles as the idempotence guard.
const (
	metaPrefixOpen  = "[META]\n"
	metaPrefixClose = "[/META]\n\n"
)

// MergeCandidates concatenates reranked vector candidates followed by
// metadata candidates.  Order matters downstream: the synthesizer sees
// vector-ranked evidence first, exact-match evidence appended.
func MergeCandidates(reranked, metadata []document.Candidate) []document.Candidate {
	merged := make([]document.Candidate, 0, len(reranked)+len(metadata))
	merged = append(merged, reranked...)
	merged = append(merged, metadata...)
	return merged
}

// ApplyMetaPrefix prepends a structured metadata block to every candidate's
// text in place.  A candidate whose text already starts with the open marker
// is left untouched, so reprocessing never stacks prefixes.
func ApplyMetaPrefix(candidates []document.Candidate) {
	for _, c := range candidates {
		u := c.Unit()
		if strings.HasPrefix(u.Text, metaPrefixOpen) {
			continue
		}
		md := u.Metadata
		prefix := fmt.Sprintf("%s- 공개번호: %s\n- 출원번호: %s\n- 제목: %s\n%s",
			metaPrefixOpen, md.PatentNo, md.ApplicationNumber, md.Title, metaPrefixClose)
		u.Text = prefix + u.Text
	}
}

// ExtractSources collects the deduplicated citation list from a merged
// candidate list.  Candidates whose identity triple is entirely empty are
// skipped; duplicates (exact triple equality) keep only their first
// occurrence, preserving order.
func ExtractSources(candidates []document.Candidate) []document.Source {
	seen := make(map[document.Source]struct{}, len(candidates))
	var sources []document.Source
	for _, c := range candidates {
		md := c.Unit().Metadata
		s := document.Source{
			PatentNo:      md.PatentNo,
			ApplicationNo: md.ApplicationNumber,
			Title:         md.Title,
		}
		if s.IsEmpty() {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		sources = append(sources, s)
	}
	return sources
}
