// Package ingest turns raw patent text files into indexable units.  The
// pipeline is a composition of small splitters: section segmentation, claim
// splitting, chunk-tag splitting and DOC_META extraction feed the assembler,
// which emits the final unit list consumed by the indexer.
package ingest

import (
	"regexp"
	"strings"
)

// reSectionHeader matches a section header line: "### NAME".  The name runs to
// end of line with surrounding whitespace trimmed.
var reSectionHeader = regexp.MustCompile(`^###\s+(.+?)\s*$`)

// Section is one named region of a raw document.
type Section struct {
	Name string
	Body string
}

// SegmentSections splits raw document text into ordered (name, body) pairs.
// A section starts at a header line and continues until the next header or end
// of input.  Text before the first header belongs to no section and is
// discarded.  Bodies are trimmed of leading/trailing blank lines; sections
// whose trimmed body is empty are dropped.  Duplicate section names are kept
// as separate entries in order of appearance.
func SegmentSections(raw string) []Section {
	lines := strings.Split(raw, "\n")

	var sections []Section
	var name string
	var body []string
	inSection := false

	flush := func() {
		if !inSection {
			return
		}
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if text != "" {
			sections = append(sections, Section{Name: name, Body: text})
		}
	}

	for _, line := range lines {
		if m := reSectionHeader.FindStringSubmatch(line); m != nil {
			flush()
			name = m[1]
			body = body[:0]
			inSection = true
			continue
		}
		if inSection {
			body = append(body, line)
		}
	}
	flush()

	return sections
}
