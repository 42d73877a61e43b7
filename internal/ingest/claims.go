package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

// reClaimMarker matches a claim boundary line: "[Claim N]" or "[Claim N-M]",
// case-insensitive.  The marker must be the only content on its line.
var reClaimMarker = regexp.MustCompile(`(?i)^\[claim\s+(\d+)(?:-(\d+))?\]\s*$`)

// Claim is one numbered claim cut from a CLAIMS section.  SubNo is nil when
// the marker carried no "-M" suffix.
type Claim struct {
	No    int
	SubNo *int
	Text  string
}

// SplitClaims splits a CLAIMS section body into individually numbered claims.
// Lines before the first marker are discarded; claims whose body trims to
// empty are dropped.
func SplitClaims(body string) []Claim {
	lines := strings.Split(body, "\n")

	var claims []Claim
	var cur *Claim
	var buf []string

	flush := func() {
		if cur == nil {
			return
		}
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		if text != "" {
			cur.Text = text
			claims = append(claims, *cur)
		}
	}

	for _, line := range lines {
		if m := reClaimMarker.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			no, _ := strconv.Atoi(m[1])
			cur = &Claim{No: no}
			if m[2] != "" {
				sub, _ := strconv.Atoi(m[2])
				cur.SubNo = &sub
			}
			buf = buf[:0]
			continue
		}
		if cur != nil {
			buf = append(buf, line)
		}
	}
	flush()

	return claims
}
