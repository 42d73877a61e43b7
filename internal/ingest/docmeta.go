package ingest

import (
	"regexp"
	"strings"
)

// reMetaLine matches a "key : value" DOC_META line.  Keys are restricted to
// letters, digits, spaces and underscores; anything else means the line is
// prose and is ignored.
var reMetaLine = regexp.MustCompile(`^\s*([A-Za-z0-9 _]+?)\s*:\s*(.+?)\s*$`)

// DocMeta is the intermediate parse of a DOC_META section: the normalized
// key-value map plus the ordered party lists collected from repeated
// Applicant/Inventor/Agent lines.
type DocMeta struct {
	Fields     map[string]string
	Applicants []string
	Inventors  []string
	Agents     []string
}

// normalizeMetaKey lower-cases a raw field name and replaces spaces with
// underscores, so "Application Number" and "application number" both resolve
// to "application_number".
func normalizeMetaKey(raw string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
}

// ExtractDocMeta parses a DOC_META section body.  Lines matching "key : value"
// populate the normalized field map; repeated keys overwrite so the last
// occurrence wins.  Independently, the raw lines are scanned for keys starting
// with "applicant", "inventor" or "agent" (case-insensitive) and the value
// after the first colon is collected into ordered lists, preserving duplicates
// and input order.
func ExtractDocMeta(body string) DocMeta {
	meta := DocMeta{Fields: make(map[string]string)}

	for _, line := range strings.Split(body, "\n") {
		if m := reMetaLine.FindStringSubmatch(line); m != nil {
			meta.Fields[normalizeMetaKey(m[1])] = m[2]
		}

		// Party collection works on the raw line so numbered variants like
		// "Applicant 2: ..." are captured even though they also land in the
		// field map under distinct keys.
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch {
		case strings.HasPrefix(key, "applicant"):
			meta.Applicants = append(meta.Applicants, value)
		case strings.HasPrefix(key, "inventor"):
			meta.Inventors = append(meta.Inventors, value)
		case strings.HasPrefix(key, "agent"):
			meta.Agents = append(meta.Agents, value)
		}
	}

	return meta
}
