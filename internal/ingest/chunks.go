package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

// reChunkTag matches an inline chunk tag line: "[TAG N]" where TAG is 1–6
// uppercase letters.  The marker must be the only content on its line.
var reChunkTag = regexp.MustCompile(`^\[([A-Z]{1,6})\s+(\d+)\]\s*$`)

// Chunk is one tagged sub-chunk of a section.
type Chunk struct {
	Tag  string
	No   int
	Text string
}

// SplitChunks splits a section body on bracketed tag markers.  A nil result
// signals that the section carries no tagging convention and the caller should
// fall back to paragraph splitting.  Content before the first tag is
// discarded; chunks whose body trims to empty are dropped.
func SplitChunks(body string) []Chunk {
	lines := strings.Split(body, "\n")

	var chunks []Chunk
	var cur *Chunk
	var buf []string

	flush := func() {
		if cur == nil {
			return
		}
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		if text != "" {
			cur.Text = text
			chunks = append(chunks, *cur)
		}
	}

	for _, line := range lines {
		if m := reChunkTag.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			no, _ := strconv.Atoi(m[2])
			cur = &Chunk{Tag: m[1], No: no}
			buf = buf[:0]
			continue
		}
		if cur != nil {
			buf = append(buf, line)
		}
	}
	flush()

	return chunks
}

// reParagraphBreak matches one or more blank lines separating paragraphs.
var reParagraphBreak = regexp.MustCompile(`\n\s*\n+`)

// SplitParagraphs splits a body on blank-line boundaries, dropping paragraphs
// that trim to empty.
func SplitParagraphs(body string) []string {
	parts := reParagraphBreak.Split(body, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
